// Package registry turns a component definition into the flat module
// exports a host expects, one function per lifecycle event or method.
//
// Each exported function maps the originating view back to the component
// instance that owns it, creating the instance on the first recognized
// lifecycle hook and discarding it when the view unloads:
//
//	var Module = registry.MustExport(registry.Definition{
//	    Name: "user-form",
//	    New:  func() component.Component { return &userForm{} },
//	    Methods: map[string]registry.Method{
//	        "onSave": registry.MethodOf((*userForm).save),
//	    },
//	})
//
// The public operation set is declared explicitly in Definition.Methods;
// nothing is discovered by reflection.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-drift/viewkit/pkg/component"
	"github.com/go-drift/viewkit/pkg/view"
)

// Names of the exports that create and bind component instances.
const (
	HookLoaded       = "onLoaded"
	HookNavigatingTo = "onNavigatingTo"
	HookNavigatedTo  = "onNavigatedTo"
	HookShownModally = "onShownModally"
)

// Handler is a single module export.
type Handler = func(args view.EventData) (any, error)

// Module is the flat export table handed to the host.
type Module map[string]Handler

// Method is a component operation reachable through a module export.
type Method func(c component.Component, args view.EventData) (any, error)

// MethodOf adapts a method on a concrete component type to a Method.
func MethodOf[T component.Component](fn func(T, view.EventData) (any, error)) Method {
	return func(c component.Component, args view.EventData) (any, error) {
		typed, ok := c.(T)
		if !ok {
			var want T
			return nil, fmt.Errorf("registry: component %T is not a %T", c, want)
		}
		return fn(typed, args)
	}
}

// Definition declares a component class.
type Definition struct {
	// Name identifies the component in errors, logs and traces.
	Name string

	// New creates a fresh, unattached instance. Required.
	New func() component.Component

	// Singleton keeps exactly one instance for the process lifetime. It is
	// created on the first lifecycle hook and never torn down.
	Singleton bool

	// Methods lists the component's public operations by export name.
	Methods map[string]Method

	// NewContext overrides the private binding context factory.
	NewContext func() any
}

var (
	defaultMaxDepth   = view.DefaultMaxDepth
	defaultMaxDepthMu sync.RWMutex
)

// SetDefaultMaxDepth changes the ancestor-walk bound used by registries
// created afterwards. Zero or less restores view.DefaultMaxDepth.
func SetDefaultMaxDepth(n int) {
	if n <= 0 {
		n = view.DefaultMaxDepth
	}
	defaultMaxDepthMu.Lock()
	defaultMaxDepth = n
	defaultMaxDepthMu.Unlock()
}

func getDefaultMaxDepth() int {
	defaultMaxDepthMu.RLock()
	defer defaultMaxDepthMu.RUnlock()
	return defaultMaxDepth
}

// Option configures a Registry.
type Option func(*Registry)

// WithIndex uses idx instead of component.DefaultIndex.
func WithIndex(idx *component.Index) Option {
	return func(r *Registry) {
		if idx != nil {
			r.index = idx
		}
	}
}

// WithMaxDepth bounds ancestor walks to n hops.
func WithMaxDepth(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// Registry tracks the live instances of one component definition.
type Registry struct {
	def      Definition
	index    *component.Index
	maxDepth int

	mu        sync.Mutex
	instances []component.Component
	roots     map[component.Component]view.View
}

// New validates def and creates its registry.
func New(def Definition, opts ...Option) (*Registry, error) {
	if def.New == nil {
		return nil, fmt.Errorf("registry: definition %q has no constructor", def.Name)
	}
	if def.Name == "" {
		def.Name = "component"
	}
	for name := range def.Methods {
		if err := checkMethodName(name); err != nil {
			return nil, fmt.Errorf("registry: definition %q: %w", def.Name, err)
		}
		if def.Methods[name] == nil {
			return nil, fmt.Errorf("registry: definition %q: method %q is nil", def.Name, name)
		}
	}

	r := &Registry{
		def:      def,
		index:    component.DefaultIndex,
		maxDepth: getDefaultMaxDepth(),
		roots:    make(map[component.Component]view.View),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func checkMethodName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty method name")
	case strings.HasPrefix(name, "_"):
		return fmt.Errorf("method %q is internal", name)
	case isHook(name):
		return fmt.Errorf("method %q collides with a lifecycle hook", name)
	}
	return nil
}

func isHook(name string) bool {
	switch name {
	case HookLoaded, HookNavigatingTo, HookNavigatedTo, HookShownModally:
		return true
	}
	return false
}

// Export builds the module exports for def.
func Export(def Definition, opts ...Option) (Module, error) {
	r, err := New(def, opts...)
	if err != nil {
		return nil, err
	}
	return r.Module(), nil
}

// MustExport is like Export but panics on an invalid definition. It is
// meant for package-level module variables.
func MustExport(def Definition, opts ...Option) Module {
	m, err := Export(def, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Module returns the export table: the four lifecycle hooks plus one entry
// per declared method.
func (r *Registry) Module() Module {
	m := Module{
		HookLoaded: r.hookHandler(HookLoaded, func(c component.Component, args view.EventData) error {
			return c.OnLoaded(args)
		}),
		HookNavigatingTo: r.hookHandler(HookNavigatingTo, func(c component.Component, args view.EventData) error {
			return c.OnNavigatingTo(args)
		}),
		HookNavigatedTo: r.hookHandler(HookNavigatedTo, func(c component.Component, args view.EventData) error {
			return c.OnNavigatedTo(args)
		}),
		HookShownModally: r.hookHandler(HookShownModally, func(c component.Component, args view.EventData) error {
			return c.OnShownModally(args)
		}),
	}
	for name, method := range r.def.Methods {
		m[name] = r.methodHandler(name, method)
	}
	return m
}

// Definition returns the registry's component definition.
func (r *Registry) Definition() Definition {
	return r.def
}

// Instances returns the live instances in creation order.
func (r *Registry) Instances() []component.Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]component.Component(nil), r.instances...)
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

func (r *Registry) tracks(c component.Component) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.roots[c]
	return ok
}

func (r *Registry) singleton() component.Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.instances) == 0 {
		return nil
	}
	return r.instances[0]
}
