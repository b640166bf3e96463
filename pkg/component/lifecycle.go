package component

import (
	"fmt"
	"strings"

	"github.com/go-drift/viewkit/pkg/binding"
	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/view"
)

// OnLoaded binds the controller to the loaded view and schedules Init.
// Every nested component needs it.
func (c *Controller) OnLoaded(args view.EventData) error {
	return c.hook("OnLoaded", args)
}

// OnNavigatingTo binds the controller to its page root view and schedules
// Init. It is only valid on the page root.
func (c *Controller) OnNavigatingTo(args view.EventData) error {
	if err := c.requirePageRoot("OnNavigatingTo", args.Object); err != nil {
		return err
	}
	return c.hook("OnNavigatingTo", args)
}

// OnNavigatedTo is like OnNavigatingTo for the navigatedTo event.
func (c *Controller) OnNavigatedTo(args view.EventData) error {
	if err := c.requirePageRoot("OnNavigatedTo", args.Object); err != nil {
		return err
	}
	return c.hook("OnNavigatedTo", args)
}

// OnShownModally binds the controller like OnLoaded, captures the modal
// context and close callback, and copies the modal context's properties
// onto the binding context before Init is scheduled.
func (c *Controller) OnShownModally(args view.EventData) error {
	if err := c.bindOnce("OnShownModally", args.Object); err != nil {
		return err
	}
	c.modalContext = args.Context
	c.closeCallback = args.CloseCallback
	c.copyInto(binding.Fields(args.Context), "component.OnShownModally")
	return c.scheduleInit()
}

func (c *Controller) hook(op string, args view.EventData) error {
	if err := c.bindOnce(op, args.Object); err != nil {
		return err
	}
	return c.scheduleInit()
}

func (c *Controller) requirePageRoot(op string, v view.View) error {
	if v == nil || view.IsPageRoot(v) {
		return nil
	}
	return &errors.ComponentError{
		Op:        "component." + op,
		Kind:      errors.KindLifecycle,
		Component: c.opts.Name,
		Err:       errors.ErrNotPageRoot,
	}
}

func (c *Controller) bindOnce(op string, v view.View) error {
	c.ensure()
	if v == nil {
		return &errors.ComponentError{
			Op:        "component." + op,
			Kind:      errors.KindLifecycle,
			Component: c.opts.Name,
			Err:       fmt.Errorf("event carries no view"),
		}
	}
	if c.bound {
		return nil
	}
	c.bind(v)
	return nil
}

// bind records v as the root view and seeds a private binding context from
// the declarative attributes and the navigation context.
func (c *Controller) bind(v view.View) {
	c.view = v
	c.bound = true

	own := c.BindingContext()
	parent := view.ParentContext(v)

	attrs := declaredAttributes(v)
	resolved := make(map[string]any, len(attrs))
	for name, literal := range attrs {
		resolved[name] = resolveAttribute(name, literal, own, parent)
	}

	if own == nil || binding.Same(own, parent) {
		v.SetBindingContext(c.opts.NewContext())
	}

	c.copyInto(resolved, "component.bind")
	c.copyInto(binding.Fields(v.NavigationContext()), "component.bind")
}

// resolveAttribute prefers a value already bound on the view's own context
// (a dynamic attribute the host resolved ahead of us), then the parent's
// context, then the literal the host placed on the view.
func resolveAttribute(name string, literal, own, parent any) any {
	if v, ok := lookupSafe(own, name); ok && !binding.IsEmpty(v) {
		return v
	}
	if v, ok := lookupSafe(parent, name); ok && !binding.IsEmpty(v) {
		return v
	}
	return literal
}

func lookupSafe(ctx any, name string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	return binding.Lookup(ctx, name)
}

func (c *Controller) copyInto(values map[string]any, op string) {
	if len(values) == 0 {
		return
	}
	ctx := c.BindingContext()
	for _, name := range binding.SortedKeys(values) {
		if err := binding.Assign(ctx, name, values[name]); err != nil {
			errors.Report(&errors.ComponentError{
				Op:        op,
				Kind:      errors.KindBinding,
				Component: c.opts.Name,
				Err:       err,
			})
		}
	}
}

// declaredAttributes returns the host-assigned attributes of v minus
// reserved names.
func declaredAttributes(v view.View) map[string]any {
	attrs := v.Attributes()
	out := make(map[string]any, len(attrs))
	for name, value := range attrs {
		if reservedAttribute(name) {
			continue
		}
		out[name] = value
	}
	return out
}

func reservedAttribute(name string) bool {
	switch {
	case name == "":
		return true
	case strings.HasPrefix(name, "_"):
		return true
	case name == "exports":
		return true
	case name == "xmlns", strings.HasPrefix(name, "xmlns:"):
		return true
	}
	return false
}
