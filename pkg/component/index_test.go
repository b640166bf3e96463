package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/viewkit/pkg/errors"
	viewtest "github.com/go-drift/viewkit/pkg/testing"
)

func TestIndexOwnership(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	page := host.NewPage("page", nil)
	v := host.NewView(page, "v", nil)

	idx := NewIndex()
	a, b := &Controller{}, &Controller{}

	idx.Associate(v, a)
	assert.Same(t, a, idx.Owner(v))
	assert.Nil(t, idx.Owner(page))
	assert.Nil(t, idx.Owner(nil))

	assert.False(t, idx.Remove(v, b), "only the recorded owner can remove its association")
	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Remove(v, a))
	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Remove(v, a))
}

func TestIndexClosestAndAncestor(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	page := host.NewPage("page", nil)
	outer := host.NewView(page, "outer", nil)
	mid := host.NewView(outer, "mid", nil)
	leaf := host.NewView(mid, "leaf", nil)

	idx := NewIndex()
	pageOwner, outerOwner, leafOwner := &Controller{}, &Controller{}, &Controller{}
	idx.Associate(page, pageOwner)
	idx.Associate(outer, outerOwner)
	idx.Associate(leaf, leafOwner)

	got, err := idx.Closest(leaf, 0, nil)
	require.NoError(t, err)
	assert.Same(t, leafOwner, got)

	got, err = idx.Closest(leaf, 0, func(c Component) bool { return c == pageOwner })
	require.NoError(t, err)
	assert.Same(t, pageOwner, got)

	got, err = idx.Ancestor(leaf, 0, leafOwner)
	require.NoError(t, err)
	assert.Same(t, outerOwner, got)

	got, err = idx.Ancestor(page, 0, pageOwner)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIndexClosestBoundsCycles(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	page := host.NewPage("page", nil)
	a := host.NewView(page, "a", nil)
	b := host.NewView(a, "b", nil)
	a.SetParent(b)

	_, err := NewIndex().Closest(b, 10, nil)
	var bound *errors.TraversalBoundError
	require.ErrorAs(t, err, &bound)
	assert.Equal(t, 10, bound.Limit)
}

func TestReservedAttributes(t *testing.T) {
	for _, name := range []string{"", "_private", "exports", "xmlns", "xmlns:ui"} {
		assert.True(t, reservedAttribute(name), name)
	}
	for _, name := range []string{"record", "fieldName", "xmlnsish"} {
		assert.False(t, reservedAttribute(name), name)
	}
}
