// Package binding provides the binding-context capability used by components
// and helpers that read and write contexts regardless of their concrete shape.
//
// Two shapes are supported everywhere: a [Context] (such as [Observable]),
// which routes writes through Set so listeners are notified, and a plain
// map[string]any, which is mutated directly. Lookup additionally reads
// exported struct fields.
package binding

import (
	"sort"
	"sync"
)

// Context is a key/value store with accessor methods.
type Context interface {
	Get(name string) any
	Set(name string, value any)
}

// PropertyChange describes a single Set on an Observable.
type PropertyChange struct {
	Name     string
	Value    any
	OldValue any
}

// Observable is a Context that notifies listeners when a property changes.
// It is safe for concurrent use, but listeners run on the goroutine that
// called Set.
type Observable struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners map[int]func(PropertyChange)
	nextID    int
}

// NewObservable creates an Observable seeded with the given values.
func NewObservable(initial map[string]any) *Observable {
	o := &Observable{
		values:    make(map[string]any, len(initial)),
		listeners: make(map[int]func(PropertyChange)),
	}
	for k, v := range initial {
		o.values[k] = v
	}
	return o
}

// Get returns the named value or nil.
func (o *Observable) Get(name string) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.values[name]
}

// Set stores the value and notifies listeners if it changed.
func (o *Observable) Set(name string, value any) {
	o.mu.Lock()
	old, existed := o.values[name]
	o.values[name] = value
	if existed && equal(old, value) {
		o.mu.Unlock()
		return
	}
	listeners := make([]func(PropertyChange), 0, len(o.listeners))
	ids := make([]int, 0, len(o.listeners))
	for id := range o.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, o.listeners[id])
	}
	o.mu.Unlock()

	change := PropertyChange{Name: name, Value: value, OldValue: old}
	for _, fn := range listeners {
		fn(change)
	}
}

// Has reports whether the named property has been set.
func (o *Observable) Has(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.values[name]
	return ok
}

// Keys returns the property names in sorted order.
func (o *Observable) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddListener registers fn for property changes and returns an unsubscribe
// function. Listeners are called in registration order.
func (o *Observable) AddListener(fn func(PropertyChange)) func() {
	if fn == nil {
		return func() {}
	}
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// ListenerCount returns the number of registered listeners.
func (o *Observable) ListenerCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.listeners)
}

// equal compares values without panicking on uncomparable types.
func equal(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
