package testing

import (
	"fmt"

	"github.com/go-drift/viewkit/pkg/frame"
	"github.com/go-drift/viewkit/pkg/view"
)

// Frame is a recording frame.Frame.
type Frame struct {
	host    *Host
	current *View

	// Entries records every Navigate call.
	Entries []frame.Entry
	// Modals records every ShowModal call.
	Modals []*Modal

	// NavigateErr, when set, is returned by Navigate.
	NavigateErr error
	// ShowModalErr, when set, is returned by ShowModal.
	ShowModalErr error
}

var _ frame.Frame = (*Frame)(nil)

// CurrentPage returns the most recently navigated page.
func (f *Frame) CurrentPage() view.Page {
	if f.current == nil {
		return nil
	}
	return f.current
}

// Navigate records entry.
func (f *Frame) Navigate(entry frame.Entry) error {
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.Entries = append(f.Entries, entry)
	return nil
}

// ShowModal records a modal request.
func (f *Frame) ShowModal(moduleName string, context any, done func(err error, result any), fullscreen bool) error {
	if f.ShowModalErr != nil {
		return f.ShowModalErr
	}
	f.Modals = append(f.Modals, &Modal{
		ModuleName: moduleName,
		Context:    context,
		Fullscreen: fullscreen,
		done:       done,
	})
	return nil
}

// LastModal returns the most recent modal request, or nil.
func (f *Frame) LastModal() *Modal {
	if len(f.Modals) == 0 {
		return nil
	}
	return f.Modals[len(f.Modals)-1]
}

// Modal is a recorded modal request.
type Modal struct {
	ModuleName string
	Context    any
	Fullscreen bool
	// Page is the page the modal was shown in, once ShowModally has run.
	Page *View

	done   func(err error, result any)
	closed bool
}

// Close completes the modal the way a host close callback does: the first
// argument is an error (or nil) and the second the result. Closing twice is
// a no-op.
func (m *Modal) Close(args ...any) {
	if m.closed || m.done == nil {
		return
	}
	m.closed = true

	var err error
	var result any
	if len(args) > 0 && args[0] != nil {
		if e, ok := args[0].(error); ok {
			err = e
		} else {
			err = fmt.Errorf("modal closed with %v", args[0])
		}
	}
	if len(args) > 1 {
		result = args[1]
	}
	m.done(err, result)
}

// Closed reports whether Close has been called.
func (m *Modal) Closed() bool {
	return m.closed
}
