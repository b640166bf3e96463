// Package errors provides structured error handling for viewkit components
// and the registry that dispatches host lifecycle events to them.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLifecycle indicates a lifecycle hook was misused or failed.
	KindLifecycle
	// KindBinding indicates a binding-context read or write failure.
	KindBinding
	// KindModal indicates a modal open or close failure.
	KindModal
	// KindLookup indicates an owning controller could not be resolved.
	KindLookup
	// KindTeardown indicates an unload that did not match a tracked instance.
	KindTeardown
	// KindInit indicates a component Init hook failed.
	KindInit
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindBinding:
		return "binding"
	case KindModal:
		return "modal"
	case KindLookup:
		return "lookup"
	case KindTeardown:
		return "teardown"
	case KindInit:
		return "init"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ErrNotPageRoot is returned when a navigation hook fires for a view that is
// not the root view of its page.
var ErrNotPageRoot = stderrors.New("navigation hooks are only valid on the page root view")

// ComponentError represents a structured error raised by a component or the
// registry.
type ComponentError struct {
	// Op is the operation that failed (e.g., "registry.unload").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Component is the name of the component definition, if known.
	Component string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ComponentError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s [%s] component=%s: %v", e.Op, e.Kind, e.Component, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "component.Init").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// NotInitializedError is returned when a controller's view is accessed
// before any lifecycle hook has run for it.
type NotInitializedError struct {
	// Op is the accessor that was called.
	Op string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s: controller is not initialized, no lifecycle hook has run yet", e.Op)
}

// UninitializedContextError is returned by Get and Set while the controller's
// binding context is nil.
type UninitializedContextError struct {
	// Name is the property that was read or written.
	Name string
}

func (e *UninitializedContextError) Error() string {
	return fmt.Sprintf("binding context is undefined, cannot access %q; a lifecycle hook must run first", e.Name)
}

// NotModalError is returned by CloseModal when the controller was never shown
// modally.
type NotModalError struct{}

func (e *NotModalError) Error() string {
	return "closeModal called on a component that was not shown modally"
}

// AmbiguousInstanceError is returned when a dispatched method cannot be
// routed to a live controller instance.
type AmbiguousInstanceError struct {
	// Component is the component definition name.
	Component string
	// Method is the exported method being dispatched.
	Method string
	// Reason describes why resolution failed.
	Reason string
}

func (e *AmbiguousInstanceError) Error() string {
	return fmt.Sprintf("cannot resolve %s instance for %s: %s", e.Component, e.Method, e.Reason)
}

// TraversalBoundError is returned when an ancestor walk exceeds its hop limit.
type TraversalBoundError struct {
	// Limit is the maximum number of hops allowed.
	Limit int
}

func (e *TraversalBoundError) Error() string {
	return fmt.Sprintf("view ancestor walk exceeded %d hops; the view tree may contain a cycle", e.Limit)
}

// MissingParameterError is returned by parameter validation when a required
// option is absent.
type MissingParameterError struct {
	// Name is the missing parameter.
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Name)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ErrorHandler receives errors reported by components and the registry.
type ErrorHandler interface {
	// HandleError is called when a recoverable error is reported.
	HandleError(err *ComponentError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
