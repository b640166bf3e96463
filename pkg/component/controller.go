package component

import (
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/viewkit/pkg/async"
	"github.com/go-drift/viewkit/pkg/binding"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/view"
)

// Component is satisfied by any struct that embeds Controller.
type Component interface {
	// Base returns the embedded Controller.
	Base() *Controller

	// Init runs once per instance after every ancestor component's Init
	// has completed. Return nil when done synchronously, or a Result that
	// descendants wait on.
	Init() *async.Result

	OnLoaded(args view.EventData) error
	OnNavigatingTo(args view.EventData) error
	OnNavigatedTo(args view.EventData) error
	OnShownModally(args view.EventData) error

	// Dispose releases the instance when its view unloads.
	Dispose()
}

// Options configures a Controller when the registry attaches it.
type Options struct {
	// Name is the component definition name, used in reported errors.
	Name string

	// Index is the owner index used to find ancestor components.
	// Defaults to DefaultIndex.
	Index *Index

	// Singleton marks the instance as the sole, never-disposed instance of
	// its definition.
	Singleton bool

	// MaxDepth bounds ancestor walks. Zero uses view.DefaultMaxDepth.
	MaxDepth int

	// NewContext creates the private binding context assigned on first
	// bind. Defaults to an empty binding.Observable.
	NewContext func() any
}

// Controller is the base type for components. Embed it in a struct and
// register the struct with the registry; the zero value is usable.
//
// Controller is NOT thread-safe. Hooks and accessors must only be called
// from the host's UI thread.
type Controller struct {
	id   string
	self Component
	opts Options

	view  view.View
	bound bool

	modalContext  any
	closeCallback func(args ...any)

	orderingArmed bool
	initCalled    bool
	initDone      *async.Result

	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// Base returns c. It lets the registry reach the embedded Controller through
// the Component interface.
func (c *Controller) Base() *Controller { return c }

// Attach wires the controller to the outer component value so hooks can
// call overridden methods such as Init. This method is called automatically
// by the registry.
func (c *Controller) Attach(self Component, opts Options) {
	c.self = self
	c.opts = opts
	c.ensure()
}

func (c *Controller) ensure() {
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.opts.Index == nil {
		c.opts.Index = DefaultIndex
	}
	if c.opts.NewContext == nil {
		c.opts.NewContext = func() any { return binding.NewObservable(nil) }
	}
	if c.initDone == nil {
		c.initDone = async.New()
	}
}

// outer returns the component value hooks should dispatch to.
func (c *Controller) outer() Component {
	if c.self != nil {
		return c.self
	}
	return c
}

// ID returns the instance's unique identifier.
func (c *Controller) ID() string {
	c.ensure()
	return c.id
}

// Name returns the component definition name, or "" when unregistered.
func (c *Controller) Name() string {
	return c.opts.Name
}

// IsSingleton reports whether this instance is its definition's singleton.
func (c *Controller) IsSingleton() bool {
	return c.opts.Singleton
}

// View returns the root view this controller is bound to.
func (c *Controller) View() (view.View, error) {
	if c.view == nil {
		return nil, &errors.NotInitializedError{Op: "View"}
	}
	return c.view, nil
}

// BindingContext returns the root view's binding context, or nil before the
// first lifecycle hook.
func (c *Controller) BindingContext() (ctx any) {
	if c.view == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
		}
	}()
	return c.view.BindingContext()
}

// SetBindingContext replaces the root view's binding context.
func (c *Controller) SetBindingContext(ctx any) error {
	if c.view == nil {
		return &errors.NotInitializedError{Op: "SetBindingContext"}
	}
	c.view.SetBindingContext(ctx)
	return nil
}

// NavigationContext returns the root view's navigation context, or nil.
func (c *Controller) NavigationContext() any {
	if c.view == nil {
		return nil
	}
	return c.view.NavigationContext()
}

// ModalContext returns the context the controller was shown modally with.
func (c *Controller) ModalContext() any {
	return c.modalContext
}

// Get reads a property from the binding context. A missing property yields
// nil without error.
func (c *Controller) Get(name string) (any, error) {
	ctx := c.BindingContext()
	if ctx == nil {
		return nil, &errors.UninitializedContextError{Name: name}
	}
	v, _ := binding.Lookup(ctx, name)
	return v, nil
}

// Set writes a property to the binding context. Observable contexts notify
// their listeners; plain maps are mutated in place.
func (c *Controller) Set(name string, value any) error {
	ctx := c.BindingContext()
	if ctx == nil {
		return &errors.UninitializedContextError{Name: name}
	}
	if err := binding.Assign(ctx, name, value); err != nil {
		return &errors.ComponentError{
			Op:        "component.Set",
			Kind:      errors.KindBinding,
			Component: c.opts.Name,
			Err:       err,
		}
	}
	return nil
}

// Init is a no-op default implementation.
// Override this method to initialize your component.
func (c *Controller) Init() *async.Result {
	return nil
}

// OnDispose registers a cleanup function to be called when the controller is
// disposed. Returns an unregister function. If the controller is already
// disposed, cleanup runs immediately.
func (c *Controller) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		cleanup()
		return func() {}
	}
	index := len(c.disposers)
	c.disposers = append(c.disposers, cleanup)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if index < len(c.disposers) {
			c.disposers[index] = nil
		}
	}
}

// Dispose runs registered disposers in reverse order. Override it for
// custom cleanup, but always call c.Controller.Dispose() in your override.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	disposers := c.disposers
	c.disposers = nil
	c.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}

	// Descendants chained on an Init that will never run are released.
	if !c.initCalled {
		c.initFuture().Resolve(nil)
	}
}

// IsDisposed reports whether Dispose has run.
func (c *Controller) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
