package component

import (
	"sync"

	"github.com/go-drift/viewkit/pkg/view"
)

// Index maps root views to the component that owns them. It replaces
// writing a marker into the binding context: lookups are keyed by view
// identity and never touch the context payload.
type Index struct {
	mu     sync.RWMutex
	owners map[view.View]Component
}

// DefaultIndex is the process-wide owner index shared by all registries.
var DefaultIndex = NewIndex()

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{owners: make(map[view.View]Component)}
}

// Associate records c as the owner of v, replacing any previous owner.
func (i *Index) Associate(v view.View, c Component) {
	if v == nil || c == nil {
		return
	}
	i.mu.Lock()
	i.owners[v] = c
	i.mu.Unlock()
}

// Owner returns the component owning v, or nil.
func (i *Index) Owner(v view.View) Component {
	if v == nil {
		return nil
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.owners[v]
}

// Remove deletes the association for v if it is owned by c. It reports
// whether an association was removed.
func (i *Index) Remove(v view.View, c Component) bool {
	if v == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	owner, ok := i.owners[v]
	if !ok || owner != c {
		return false
	}
	delete(i.owners, v)
	return true
}

// Len returns the number of associations.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.owners)
}

// Closest walks from v (inclusive) toward the root and returns the first
// owner for which match returns true. A nil match accepts any owner.
func (i *Index) Closest(v view.View, limit int, match func(Component) bool) (Component, error) {
	var found Component
	if _, err := view.Closest(v, limit, i.owned(match, &found)); err != nil {
		return nil, err
	}
	return found, nil
}

// Ancestor returns the nearest component owning a view strictly above v,
// skipping self.
func (i *Index) Ancestor(v view.View, limit int, self Component) (Component, error) {
	var found Component
	notSelf := func(c Component) bool { return c != self }
	if _, err := view.ClosestAncestor(v, limit, i.owned(notSelf, &found)); err != nil {
		return nil, err
	}
	return found, nil
}

// owned adapts an owner predicate to a view predicate, storing the accepted
// owner in *found.
func (i *Index) owned(match func(Component) bool, found *Component) func(view.View) bool {
	return func(candidate view.View) bool {
		owner := i.Owner(candidate)
		if owner == nil || (match != nil && !match(owner)) {
			return false
		}
		*found = owner
		return true
	}
}
