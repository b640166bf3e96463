// Package frame defines the page-navigation primitive components delegate to.
//
// The host registers its topmost frame with [SetTopmost]; components reach it
// through [Topmost] when navigating or opening modals:
//
//	frame.Topmost().Navigate(frame.Entry{ModuleName: "pages/detail"})
package frame

import (
	"errors"
	"sync"

	"github.com/go-drift/viewkit/pkg/view"
)

// ErrNoFrame is returned by the package-level helpers when no frame has
// been registered.
var ErrNoFrame = errors.New("frame: no topmost frame registered")

// Entry describes a navigation target.
type Entry struct {
	// ModuleName is the host module to load (e.g., "pages/home/home").
	ModuleName string

	// Component names a component whose module lives at the conventional
	// components path. Components rewrite it into ModuleName before
	// delegating to the frame.
	Component string

	// Context is passed to the target page as its navigation context.
	Context any

	// Animated requests a transition animation.
	Animated bool

	// ClearHistory removes the back stack after navigating.
	ClearHistory bool
}

// Frame is the host's navigation container.
type Frame interface {
	// CurrentPage returns the page on top of the stack, or nil.
	CurrentPage() view.Page

	// Navigate pushes a new page described by entry.
	Navigate(entry Entry) error

	// ShowModal opens moduleName as a modal. done must be called exactly
	// once when the modal closes, with an error or a result.
	ShowModal(moduleName string, context any, done func(err error, result any), fullscreen bool) error
}

type scope struct {
	mu      sync.Mutex
	topmost Frame
}

var globalScope = &scope{}

// SetTopmost registers f as the topmost frame and returns a function that
// restores the previously registered frame.
func SetTopmost(f Frame) (restore func()) {
	globalScope.mu.Lock()
	prev := globalScope.topmost
	globalScope.topmost = f
	globalScope.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			globalScope.mu.Lock()
			if globalScope.topmost == f {
				globalScope.topmost = prev
			}
			globalScope.mu.Unlock()
		})
	}
}

// Topmost returns the registered topmost frame, or nil.
func Topmost() Frame {
	globalScope.mu.Lock()
	defer globalScope.mu.Unlock()
	return globalScope.topmost
}

// CurrentPage returns the topmost frame's current page, or nil.
func CurrentPage() view.Page {
	f := Topmost()
	if f == nil {
		return nil
	}
	return f.CurrentPage()
}
