package registry

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-drift/viewkit/pkg/component"
	"github.com/go-drift/viewkit/pkg/errors"
	viewtest "github.com/go-drift/viewkit/pkg/testing"
	"github.com/go-drift/viewkit/pkg/view"
)

type counter struct {
	component.Controller
	disposed int
}

func (c *counter) Dispose() {
	c.disposed++
	c.Controller.Dispose()
}

func (c *counter) increment(args view.EventData) (any, error) {
	n, _ := c.Get("count")
	next := 1
	if v, ok := n.(int); ok {
		next = v + 1
	}
	return next, c.Set("count", next)
}

type recorder struct {
	mu   sync.Mutex
	errs []*errors.ComponentError
}

func (r *recorder) HandleError(err *errors.ComponentError) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder) HandlePanic(*errors.PanicError) {}

func (r *recorder) kinds() []errors.ErrorKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]errors.ErrorKind, len(r.errs))
	for i, e := range r.errs {
		out[i] = e.Kind
	}
	return out
}

func captureErrors(t *testing.T) *recorder {
	t.Helper()
	rec := &recorder{}
	errors.SetHandler(rec)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return rec
}

func newCounterRegistry(t *testing.T, singleton bool, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithIndex(component.NewIndex())}, opts...)
	r, err := New(Definition{
		Name:      "counter",
		New:       func() component.Component { return &counter{} },
		Singleton: singleton,
		Methods: map[string]Method{
			"increment": MethodOf((*counter).increment),
		},
	}, opts...)
	require.NoError(t, err)
	return r
}

func TestOneInstancePerView(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, false)
	mod := r.Module()

	page := host.NewPage("page", nil)
	var views []*viewtest.View
	for i := range 3 {
		v := host.NewView(page, fmt.Sprintf("card%d", i), nil)
		v.Bind(mod)
		views = append(views, v)
	}
	require.NoError(t, host.LoadTree(page))
	require.Equal(t, 3, r.Len())

	ids := map[string]bool{}
	for _, inst := range r.Instances() {
		ids[inst.Base().ID()] = true
	}
	assert.Len(t, ids, 3)

	// A second hook on a bound view reuses its instance.
	_, err := mod[HookLoaded](view.EventData{EventName: view.EventLoaded, Object: views[0]})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	removed := r.Instances()[1].(*counter)
	host.Unload(views[1])
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, removed.disposed)
	assert.True(t, removed.IsDisposed())
	for _, inst := range r.Instances() {
		assert.NotSame(t, removed, inst)
	}
	assert.Equal(t, 0, views[1].SubscriberCount(view.EventUnloaded))
}

func TestSingletonSurvivesUnload(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, true)
	mod := r.Module()

	_, err := mod["increment"](view.EventData{EventName: "increment"})
	var ambiguous *errors.AmbiguousInstanceError
	require.ErrorAs(t, err, &ambiguous, "the singleton does not exist before its first hook")

	page := host.NewPage("page", nil)
	a := host.NewView(page, "a", nil)
	b := host.NewView(page, "b", nil)
	a.Bind(mod)
	b.Bind(mod)
	require.NoError(t, host.LoadTree(page))
	require.Equal(t, 1, r.Len())

	inst := r.Instances()[0].(*counter)
	assert.True(t, inst.IsSingleton())

	host.UnloadTree(page)
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, inst.disposed)

	got, err := mod["increment"](view.EventData{EventName: "increment"})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestMethodResolvesNearestInstance(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, false)
	mod := r.Module()

	page := host.NewPage("page", nil)
	first := host.NewView(page, "first", nil)
	button := host.NewView(first, "button", nil)
	second := host.NewView(page, "second", nil)
	first.Bind(mod)
	second.Bind(mod)
	require.NoError(t, host.LoadTree(page))

	got, err := host.Call(button, "increment")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	got, err = host.Call(button, "increment")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = host.Call(second, "increment")
	require.NoError(t, err)
	assert.Equal(t, 1, got, "each view has its own instance state")
}

func TestMethodWithoutOwner(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, false)

	page := host.NewPage("page", nil)
	loose := host.NewView(page, "loose", nil)
	loose.Bind(r.Module())

	_, err := host.Call(loose, "increment")
	var ambiguous *errors.AmbiguousInstanceError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "increment", ambiguous.Method)

	_, err = r.Module()["increment"](view.EventData{})
	require.ErrorAs(t, err, &ambiguous)
}

func TestMethodIgnoresOtherRegistries(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	idx := component.NewIndex()
	outer := newCounterRegistry(t, false, WithIndex(idx))
	inner, err := New(Definition{
		Name: "label",
		New:  func() component.Component { return &counter{} },
	}, WithIndex(idx))
	require.NoError(t, err)

	page := host.NewPage("page", nil)
	outerView := host.NewView(page, "outer", nil)
	innerView := host.NewView(outerView, "inner", nil)
	outerView.Bind(outer.Module())
	innerView.Bind(inner.Module())
	require.NoError(t, host.LoadTree(page))

	// innerView is owned by a label instance; the counter method must skip it.
	got, err := host.Call(innerView, "increment")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	count, _ := outer.Instances()[0].Base().Get("count")
	assert.Equal(t, 1, count)
}

func TestMethodTraversalBound(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, false, WithMaxDepth(8))

	page := host.NewPage("page", nil)
	a := host.NewView(page, "a", nil)
	b := host.NewView(a, "b", nil)
	a.SetParent(b)

	_, err := r.Module()["increment"](view.EventData{Object: b})
	var bound *errors.TraversalBoundError
	require.ErrorAs(t, err, &bound)
	assert.Equal(t, 8, bound.Limit)

	var ce *errors.ComponentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindLookup, ce.Kind)
}

func TestMethodPanicIsReturned(t *testing.T) {
	host := viewtest.NewHostWithT(t)
	r, err := New(Definition{
		Name: "fragile",
		New:  func() component.Component { return &counter{} },
		Methods: map[string]Method{
			"explode": func(component.Component, view.EventData) (any, error) { panic("boom") },
		},
	}, WithIndex(component.NewIndex()))
	require.NoError(t, err)

	page := host.NewPage("page", nil)
	v := host.NewView(page, "v", nil)
	v.Bind(r.Module())
	require.NoError(t, host.LoadTree(page))

	_, err = host.Call(v, "explode")
	var pe *errors.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
}

func TestTeardownAnomaliesAreReported(t *testing.T) {
	t.Run("owner mismatch", func(t *testing.T) {
		rec := captureErrors(t)
		host := viewtest.NewHostWithT(t)
		idx := component.NewIndex()
		r := newCounterRegistry(t, false, WithIndex(idx))

		page := host.NewPage("page", nil)
		v := host.NewView(page, "v", nil)
		v.Bind(r.Module())
		require.NoError(t, host.LoadTree(page))

		intruder := &counter{}
		idx.Associate(v, intruder)
		assert.NotPanics(t, func() { host.Unload(v) })
		assert.Equal(t, []errors.ErrorKind{errors.KindTeardown}, rec.kinds())
		assert.Equal(t, 1, r.Len(), "a mismatched owner is left alone")
	})

	t.Run("missing association", func(t *testing.T) {
		rec := captureErrors(t)
		host := viewtest.NewHostWithT(t)
		idx := component.NewIndex()
		r := newCounterRegistry(t, false, WithIndex(idx))

		page := host.NewPage("page", nil)
		v := host.NewView(page, "v", nil)
		v.Bind(r.Module())
		require.NoError(t, host.LoadTree(page))

		inst := r.Instances()[0].(*counter)
		idx.Remove(v, inst)
		assert.NotPanics(t, func() { host.Unload(v) })
		assert.Equal(t, []errors.ErrorKind{errors.KindTeardown}, rec.kinds())
		assert.Equal(t, 0, r.Len(), "an unassociated instance is still dropped")
		assert.Equal(t, 1, inst.disposed)
	})

	t.Run("missing binding context", func(t *testing.T) {
		rec := captureErrors(t)
		host := viewtest.NewHostWithT(t)
		r := newCounterRegistry(t, false)

		page := host.NewPage("page", nil)
		v := host.NewView(page, "v", nil)
		v.Bind(r.Module())
		require.NoError(t, host.LoadTree(page))

		v.SetBindingContext(nil)
		host.Unload(v)
		assert.Equal(t, []errors.ErrorKind{errors.KindTeardown}, rec.kinds())
		assert.Equal(t, 0, r.Len(), "teardown continues without a context")
	})
}

func TestRemoveTwiceIsReported(t *testing.T) {
	rec := captureErrors(t)
	host := viewtest.NewHostWithT(t)
	idx := component.NewIndex()
	r := newCounterRegistry(t, false, WithIndex(idx))

	page := host.NewPage("page", nil)
	v := host.NewView(page, "v", nil)
	v.Bind(r.Module())
	require.NoError(t, host.LoadTree(page))

	inst := r.Instances()[0].(*counter)
	r.remove(v, inst)
	require.Empty(t, rec.kinds())

	idx.Associate(v, inst)
	r.remove(v, inst)
	assert.Equal(t, []errors.ErrorKind{errors.KindTeardown}, rec.kinds())
	assert.Equal(t, 1, inst.disposed)
}

type selfUnloading struct {
	component.Controller
	host *viewtest.Host
}

func (s *selfUnloading) OnLoaded(args view.EventData) error {
	s.host.Unload(args.Object.(*viewtest.View))
	return nil
}

func TestUnloadDuringHookLeavesNoAssociation(t *testing.T) {
	rec := captureErrors(t)
	host := viewtest.NewHostWithT(t)
	idx := component.NewIndex()
	r, err := New(Definition{
		Name: "flash",
		New:  func() component.Component { return &selfUnloading{host: host} },
	}, WithIndex(idx))
	require.NoError(t, err)

	page := host.NewPage("page", nil)
	page.SetBindingContext(map[string]any{})
	v := host.NewView(page, "v", nil)
	v.Bind(r.Module())
	require.NoError(t, host.Load(v))

	assert.Equal(t, []errors.ErrorKind{errors.KindTeardown}, rec.kinds())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, idx.Len(), "a removed instance is not associated after its hook")
}

func TestHookWithoutView(t *testing.T) {
	r := newCounterRegistry(t, false)
	_, err := r.Module()[HookLoaded](view.EventData{EventName: view.EventLoaded})
	var ce *errors.ComponentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindLifecycle, ce.Kind)
	assert.Zero(t, r.Len())
}

func TestModuleExports(t *testing.T) {
	r := newCounterRegistry(t, false)
	var names []string
	for name := range r.Module() {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"increment", HookLoaded, HookNavigatedTo, HookNavigatingTo, HookShownModally}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
}

func TestDefinitionValidation(t *testing.T) {
	ok := func(component.Component, view.EventData) (any, error) { return nil, nil }
	newFn := func() component.Component { return &counter{} }

	tests := []struct {
		name string
		def  Definition
	}{
		{"no constructor", Definition{Name: "x"}},
		{"empty method", Definition{New: newFn, Methods: map[string]Method{"": ok}}},
		{"internal method", Definition{New: newFn, Methods: map[string]Method{"_hidden": ok}}},
		{"hook collision", Definition{New: newFn, Methods: map[string]Method{HookLoaded: ok}}},
		{"nil method", Definition{New: newFn, Methods: map[string]Method{"save": nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(tt.def)
			assert.Error(t, err)
			assert.Panics(t, func() { MustExport(tt.def) })
		})
	}

	r, err := New(Definition{New: newFn})
	require.NoError(t, err)
	assert.Equal(t, "component", r.Definition().Name)
}

func TestMethodOfTypeMismatch(t *testing.T) {
	m := MethodOf((*counter).increment)
	_, err := m(&component.Controller{}, view.EventData{})
	assert.Error(t, err)
}

func TestDefaultMaxDepth(t *testing.T) {
	SetDefaultMaxDepth(12)
	defer SetDefaultMaxDepth(0)

	r, err := New(Definition{New: func() component.Component { return &counter{} }})
	require.NoError(t, err)
	assert.Equal(t, 12, r.maxDepth)

	SetDefaultMaxDepth(0)
	assert.Equal(t, view.DefaultMaxDepth, getDefaultMaxDepth())
}

func TestLifecycleIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	host := viewtest.NewHostWithT(t)
	r := newCounterRegistry(t, false)
	page := host.NewPage("page", nil)
	v := host.NewView(page, "v", nil)
	v.Bind(r.Module())
	require.NoError(t, host.LoadTree(page))
	host.Unload(v)

	assert.Equal(t, 1, logs.FilterMessage("component created").Len())
	assert.Equal(t, 1, logs.FilterMessage("component removed").Len())
}
