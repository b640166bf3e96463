// Package view defines the narrow contract viewkit consumes from the host
// UI framework: views with binding contexts, pages, and lifecycle events.
//
// Hosts implement [View] and [Page] for their own view types. Implementations
// must be pointer types (or otherwise comparable) because views are used as
// identity keys by the component owner index.
package view

// Lifecycle event names fired by the host.
const (
	EventLoaded       = "loaded"
	EventUnloaded     = "unloaded"
	EventNavigatingTo = "navigatingTo"
	EventNavigatedTo  = "navigatedTo"
	EventShownModally = "shownModally"
)

// View is a node in the host view tree.
type View interface {
	// BindingContext returns the context the view's bindings resolve
	// against. Hosts typically return the parent's context when none has
	// been set on the view itself.
	BindingContext() any

	// SetBindingContext assigns a context to this view.
	SetBindingContext(ctx any)

	// NavigationContext returns the payload passed when navigating to the
	// view's page, or nil.
	NavigationContext() any

	// Parent returns the parent view, or nil for a root view.
	Parent() View

	// Page returns the page containing the view, or nil when detached.
	Page() Page

	// Attributes returns the properties the host placed on the view from
	// declarative markup. The returned map must not be mutated.
	Attributes() map[string]any

	// On subscribes to a named event and returns a function that removes
	// the subscription.
	On(event string, handler func(EventData)) (off func())
}

// Page is the root view of a navigable screen.
type Page interface {
	View

	// IsLoaded reports whether the page has fired its loaded event.
	IsLoaded() bool
}

// EventData is the payload of a lifecycle event.
type EventData struct {
	// EventName is one of the Event* constants.
	EventName string

	// Object is the view that fired the event.
	Object View

	// Context is the modal context for shownModally events.
	Context any

	// CloseCallback closes the modal for shownModally events.
	CloseCallback func(args ...any)
}

// Same reports whether a and b refer to the same view.
func Same(a, b View) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// IsPageRoot reports whether v is the root view of its page.
func IsPageRoot(v View) bool {
	if v == nil {
		return false
	}
	page := v.Page()
	if page == nil {
		return false
	}
	return Same(v, page)
}
