package view

import "github.com/go-drift/viewkit/pkg/errors"

// DefaultMaxDepth bounds ancestor walks so a malformed tree with a parent
// cycle fails instead of looping forever.
const DefaultMaxDepth = 500

// Closest walks from v (inclusive) up through its parents and returns the
// first view for which match returns true. It returns nil when the root is
// reached without a match, and a *errors.TraversalBoundError when more than
// limit hops are taken. A limit of zero or less uses DefaultMaxDepth.
func Closest(v View, limit int, match func(View) bool) (View, error) {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	hops := 0
	for current := v; current != nil; current = current.Parent() {
		if match(current) {
			return current, nil
		}
		hops++
		if hops > limit {
			return nil, &errors.TraversalBoundError{Limit: limit}
		}
	}
	return nil, nil
}

// ClosestAncestor is like Closest but starts at v's parent.
func ClosestAncestor(v View, limit int, match func(View) bool) (View, error) {
	if v == nil {
		return nil, nil
	}
	return Closest(v.Parent(), limit, match)
}

// ParentContext returns the binding context of v's parent, or nil for a root
// view. Host implementations that panic on a missing context are treated as
// having none.
func ParentContext(v View) (ctx any) {
	if v == nil {
		return nil
	}
	parent := v.Parent()
	if parent == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
		}
	}()
	return parent.BindingContext()
}
