package component

import (
	"sync"

	"github.com/go-drift/viewkit/pkg/async"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/view"
)

// scheduleInit arranges for Init to run after every ancestor component's
// Init has completed. The host fires loaded events innermost first, so the
// ancestor lookup is deferred until the page itself has loaded, by which
// time every enclosing component exists.
func (c *Controller) scheduleInit() error {
	if c.orderingArmed {
		return nil
	}
	c.orderingArmed = true

	page := c.view.Page()
	if page != nil && view.IsPageRoot(c.view) && page.IsLoaded() {
		return c.runInit()
	}
	if page == nil || page.IsLoaded() {
		// Inserted after the page loaded; its loaded event will not fire again.
		c.order()
		return nil
	}

	var once sync.Once
	var off func()
	fired := false
	off = page.On(view.EventLoaded, func(view.EventData) {
		once.Do(func() {
			fired = true
			if off != nil {
				off()
			}
			c.order()
		})
	})
	if fired {
		off()
		return nil
	}
	c.OnDispose(func() {
		once.Do(func() {})
		off()
	})
	return nil
}

// order chains Init behind the nearest ancestor component's Init.
func (c *Controller) order() {
	ancestor, err := c.opts.Index.Ancestor(c.view, c.opts.MaxDepth, c.outer())
	if err != nil {
		errors.Report(&errors.ComponentError{
			Op:        "component.order",
			Kind:      errors.KindLookup,
			Component: c.opts.Name,
			Err:       err,
		})
	}
	if ancestor == nil {
		c.runInitReported()
		return
	}
	// The ancestor's outcome is ignored: a failed parent must not block
	// its children.
	ancestor.Base().initFuture().Then(func(any, error) {
		c.runInitReported()
	})
}

func (c *Controller) initFuture() *async.Result {
	c.ensure()
	return c.initDone
}

// InitCalled reports whether Init has been invoked for this instance.
func (c *Controller) InitCalled() bool {
	return c.initCalled
}

// InitDone returns a Result that settles once this instance's Init, and the
// Result it returned, have completed.
func (c *Controller) InitDone() *async.Result {
	return c.initFuture()
}

func (c *Controller) runInitReported() {
	if err := c.runInit(); err != nil {
		if ce, ok := err.(*errors.ComponentError); ok {
			errors.Report(ce)
			return
		}
		errors.Report(&errors.ComponentError{Op: "component.Init", Kind: errors.KindInit, Component: c.opts.Name, Err: err})
	}
}

// runInit invokes Init at most once. A synchronous failure is returned to
// the caller; an asynchronous one is reported when its Result rejects.
// Either way the init future settles so descendants proceed.
func (c *Controller) runInit() error {
	if c.initCalled || c.IsDisposed() {
		return nil
	}
	c.initCalled = true
	done := c.initFuture()

	var value any
	res, err := c.callInit()
	if err == nil && res != nil {
		if !res.Settled() {
			res.Then(func(value any, err error) {
				if err != nil {
					errors.Report(c.initError(err))
					done.Reject(err)
					return
				}
				done.Resolve(value)
			})
			return nil
		}
		value, err = res.Value()
	}
	if err != nil {
		done.Reject(err)
		return c.initError(err)
	}
	done.Resolve(value)
	return nil
}

func (c *Controller) callInit() (res *async.Result, err error) {
	defer errors.CapturePanic("component.Init", &err)
	return c.outer().Init(), nil
}

func (c *Controller) initError(err error) *errors.ComponentError {
	return &errors.ComponentError{
		Op:        "component.Init",
		Kind:      errors.KindInit,
		Component: c.opts.Name,
		Err:       err,
	}
}
