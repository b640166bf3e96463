package component

import (
	"github.com/go-drift/viewkit/pkg/async"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/frame"
	"github.com/go-drift/viewkit/pkg/validate"
)

// ModalOptions configures [Controller.ShowModal].
type ModalOptions struct {
	// Modal is the module to open. Required.
	Modal string `bind:"modal"`

	// Context is delivered to the modal's OnShownModally hook and copied
	// onto its binding context.
	Context any `bind:"context"`

	// Fullscreen requests a fullscreen presentation.
	Fullscreen bool `bind:"fullscreen"`
}

// ShowModal opens opts.Modal on the topmost frame. The returned Result
// resolves with the value the modal closes with, or rejects with the error
// it closes with. Validation and frame failures reject immediately.
//
// When a dispatcher is registered with [async.RegisterDispatch], the
// settlement is marshalled onto the UI thread.
//
// Example:
//
//	c.ShowModal(component.ModalOptions{Modal: "components/picker/picker"}).
//	    Then(func(value any, err error) {
//	        if err == nil {
//	            c.Set("choice", value)
//	        }
//	    })
func (c *Controller) ShowModal(opts ModalOptions) *async.Result {
	result := async.New()
	validate.ValidateAsync(opts, "modal").Then(func(_ any, err error) {
		if err != nil {
			result.Reject(err)
			return
		}
		f := frame.Topmost()
		if f == nil {
			result.Reject(frame.ErrNoFrame)
			return
		}
		done := func(err error, value any) {
			async.Run(func() {
				if err != nil {
					result.Reject(err)
					return
				}
				result.Resolve(value)
			})
		}
		if err := f.ShowModal(opts.Modal, opts.Context, done, opts.Fullscreen); err != nil {
			result.Reject(&errors.ComponentError{
				Op:        "component.ShowModal",
				Kind:      errors.KindModal,
				Component: c.opts.Name,
				Err:       err,
			})
		}
	})
	return result
}

// CloseModal closes the modal this controller was shown in, passing args to
// the opener's completion callback.
func (c *Controller) CloseModal(args ...any) error {
	if c.closeCallback == nil {
		return &errors.NotModalError{}
	}
	c.closeCallback(args...)
	return nil
}
