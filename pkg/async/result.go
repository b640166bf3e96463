// Package async provides the deferred result used for modal completion and
// the component init ordering chain.
//
// A [Result] settles exactly once, either resolved with a value or rejected
// with an error. Continuations registered with [Result.Then] run
// synchronously on the goroutine that settles the result, or immediately if
// it has already settled. This mirrors the single-threaded host: when a
// result is settled from a background goroutine, route the settlement
// through [Dispatch] so continuations run on the UI thread.
package async

import (
	"context"
	"sync"
)

// Result is a single-shot deferred value.
type Result struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	value    any
	err      error
	handlers []func(any, error)
}

// New creates a pending Result.
func New() *Result {
	return &Result{done: make(chan struct{})}
}

// Resolved returns a Result already resolved with value.
func Resolved(value any) *Result {
	r := New()
	r.Resolve(value)
	return r
}

// Rejected returns a Result already rejected with err.
func Rejected(err error) *Result {
	r := New()
	r.Reject(err)
	return r
}

// Resolve settles the result with value. It reports false if the result had
// already settled.
func (r *Result) Resolve(value any) bool {
	return r.settle(value, nil)
}

// Reject settles the result with err. It reports false if the result had
// already settled.
func (r *Result) Reject(err error) bool {
	return r.settle(nil, err)
}

func (r *Result) settle(value any, err error) bool {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return false
	}
	r.settled = true
	r.value = value
	r.err = err
	handlers := r.handlers
	r.handlers = nil
	close(r.done)
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(value, err)
	}
	return true
}

// Then registers fn to run once the result settles. If it already has, fn
// runs immediately on the calling goroutine.
func (r *Result) Then(fn func(value any, err error)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	if !r.settled {
		r.handlers = append(r.handlers, fn)
		r.mu.Unlock()
		return
	}
	value, err := r.value, r.err
	r.mu.Unlock()
	fn(value, err)
}

// Settled reports whether the result has been resolved or rejected.
func (r *Result) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}

// Done returns a channel closed when the result settles.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Value returns the settled value and error. Both are zero while pending.
func (r *Result) Value() (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.err
}

// Await blocks until the result settles or ctx is done. It must not be
// called on the UI thread when the settlement is dispatched there.
func (r *Result) Await(ctx context.Context) (any, error) {
	select {
	case <-r.done:
		return r.Value()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FromCallback returns a pending Result and a single-shot completion
// callback that settles it: a non-nil err rejects, otherwise result
// resolves. Calls after the first are ignored.
func FromCallback() (*Result, func(err error, result any)) {
	r := New()
	return r, func(err error, result any) {
		if err != nil {
			r.Reject(err)
			return
		}
		r.Resolve(result)
	}
}
