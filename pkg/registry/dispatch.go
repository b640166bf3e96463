package registry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/go-drift/viewkit/pkg/component"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/view"
)

const instrumentationName = "github.com/go-drift/viewkit/pkg/registry"

func (r *Registry) startSpan(export string) trace.Span {
	_, span := otel.Tracer(instrumentationName).Start(context.Background(), "viewkit.dispatch "+export,
		trace.WithAttributes(
			attribute.String("viewkit.component", r.def.Name),
			attribute.String("viewkit.export", export),
		))
	return span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// hookHandler resolves or creates the instance owning the event's view and
// forwards the hook to it.
func (r *Registry) hookHandler(export string, call func(component.Component, view.EventData) error) Handler {
	return func(args view.EventData) (result any, err error) {
		span := r.startSpan(export)
		defer func() { endSpan(span, err) }()

		v := args.Object
		if v == nil {
			return nil, &errors.ComponentError{
				Op:        "registry." + export,
				Kind:      errors.KindLifecycle,
				Component: r.def.Name,
				Err:       fmt.Errorf("event carries no view"),
			}
		}

		inst := r.owner(v)
		created := false
		if inst == nil {
			inst = r.create(v)
			created = true
		}
		span.SetAttributes(
			attribute.String("viewkit.instance", inst.Base().ID()),
			attribute.Bool("viewkit.created", created),
		)

		err = r.safeCall(export, func() error { return call(inst, args) })

		// Associated after the hook so attribute binding never sees its own
		// view as already owned.
		if created && r.tracks(inst) {
			r.index.Associate(v, inst)
		}
		return nil, err
	}
}

// methodHandler routes a declared method to the instance owning the nearest
// enclosing view.
func (r *Registry) methodHandler(export string, method Method) Handler {
	return func(args view.EventData) (result any, err error) {
		span := r.startSpan(export)
		defer func() { endSpan(span, err) }()

		inst, err := r.resolve(export, args.Object)
		if err != nil {
			return nil, err
		}
		err = r.safeCall(export, func() error {
			var callErr error
			result, callErr = method(inst, args)
			return callErr
		})
		return result, err
	}
}

// owner returns the instance already bound to v, falling back to the
// singleton.
func (r *Registry) owner(v view.View) component.Component {
	if c := r.index.Owner(v); c != nil && r.tracks(c) {
		return c
	}
	if r.def.Singleton {
		return r.singleton()
	}
	return nil
}

func (r *Registry) resolve(export string, v view.View) (component.Component, error) {
	if r.def.Singleton {
		if c := r.singleton(); c != nil {
			return c, nil
		}
		return nil, &errors.AmbiguousInstanceError{
			Component: r.def.Name,
			Method:    export,
			Reason:    "singleton has not been created by a lifecycle hook yet",
		}
	}
	if v == nil {
		return nil, &errors.AmbiguousInstanceError{
			Component: r.def.Name,
			Method:    export,
			Reason:    "event carries no view",
		}
	}
	c, err := r.index.Closest(v, r.maxDepth, r.tracks)
	if err != nil {
		return nil, &errors.ComponentError{
			Op:        "registry." + export,
			Kind:      errors.KindLookup,
			Component: r.def.Name,
			Err:       err,
		}
	}
	if c == nil {
		return nil, &errors.AmbiguousInstanceError{
			Component: r.def.Name,
			Method:    export,
			Reason:    "no enclosing view is owned by a live instance",
		}
	}
	return c, nil
}

func (r *Registry) create(v view.View) component.Component {
	inst := r.def.New()
	inst.Base().Attach(inst, component.Options{
		Name:       r.def.Name,
		Index:      r.index,
		Singleton:  r.def.Singleton,
		MaxDepth:   r.maxDepth,
		NewContext: r.def.NewContext,
	})

	r.mu.Lock()
	r.instances = append(r.instances, inst)
	r.roots[inst] = v
	count := len(r.instances)
	r.mu.Unlock()

	if !r.def.Singleton {
		var once sync.Once
		var off func()
		off = v.On(view.EventUnloaded, func(args view.EventData) {
			once.Do(func() {
				if off != nil {
					off()
				}
				r.remove(v, inst)
			})
		})
	}

	Logger().Debug("component created",
		zap.String("component", r.def.Name),
		zap.String("id", inst.Base().ID()),
		zap.Int("live", count))
	return inst
}

// remove tears down inst after its view unloaded. Mismatches are reported,
// never raised, so one malformed view cannot break event handling.
func (r *Registry) remove(v view.View, inst component.Component) {
	if bindingContextOf(v) == nil {
		r.reportTeardown(fmt.Errorf("unloaded view has no binding context"))
	}

	// An unassociated view still drops its instance; only a view claimed by
	// another instance is left alone.
	switch owner := r.index.Owner(v); {
	case owner == nil:
		r.reportTeardown(fmt.Errorf("unloaded view is not associated with instance %s", inst.Base().ID()))
	case owner != inst:
		r.reportTeardown(fmt.Errorf("unloaded view is owned by instance %s, expected %s", owner.Base().ID(), inst.Base().ID()))
		return
	default:
		r.index.Remove(v, inst)
	}

	r.mu.Lock()
	pos := -1
	for i, c := range r.instances {
		if c == inst {
			pos = i
			break
		}
	}
	if pos < 0 {
		r.mu.Unlock()
		r.reportTeardown(fmt.Errorf("instance %s was already removed", inst.Base().ID()))
		return
	}
	r.instances = append(r.instances[:pos:pos], r.instances[pos+1:]...)
	delete(r.roots, inst)
	count := len(r.instances)
	r.mu.Unlock()

	func() {
		defer errors.Recover("registry.dispose")
		inst.Dispose()
	}()

	Logger().Debug("component removed",
		zap.String("component", r.def.Name),
		zap.String("id", inst.Base().ID()),
		zap.Int("live", count))
}

func (r *Registry) reportTeardown(err error) {
	errors.Report(&errors.ComponentError{
		Op:        "registry.unload",
		Kind:      errors.KindTeardown,
		Component: r.def.Name,
		Err:       err,
	})
}

// safeCall converts a panic in component code into a returned error.
func (r *Registry) safeCall(export string, fn func() error) (err error) {
	defer errors.CapturePanic(r.def.Name+"."+export, &err)
	return fn()
}

func bindingContextOf(v view.View) (ctx any) {
	defer func() {
		if recover() != nil {
			ctx = nil
		}
	}()
	return v.BindingContext()
}
