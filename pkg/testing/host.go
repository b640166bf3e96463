package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/viewkit/pkg/binding"
	"github.com/go-drift/viewkit/pkg/frame"
	"github.com/go-drift/viewkit/pkg/view"
)

// Handler is a module export invoked for an event or a method call.
type Handler = func(args view.EventData) (any, error)

// Expr is a dynamic attribute value: a property path resolved against the
// parent's binding context when the view loads. The result is assigned onto
// the view's own context when it has one, and otherwise replaces the Expr in
// Attributes so an inherited context is never written to.
type Expr string

// Host drives lifecycle events over a tree of fake views.
type Host struct {
	frame   *Frame
	restore func()
}

// NewHost creates a host and installs its Frame as the topmost frame.
// Call Cleanup() when done, or use NewHostWithT() instead.
func NewHost() *Host {
	h := &Host{}
	h.frame = &Frame{host: h}
	h.restore = frame.SetTopmost(h.frame)
	return h
}

// NewHostWithT creates a host that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewHostWithT(t *testing.T) *Host {
	host := NewHost()
	t.Cleanup(host.Cleanup)
	return host
}

// Cleanup restores the previously registered topmost frame.
func (h *Host) Cleanup() {
	if h.restore != nil {
		h.restore()
		h.restore = nil
	}
}

// Frame returns the host's recording frame.
func (h *Host) Frame() *Frame {
	return h.frame
}

// NewPage creates a page root view. navigationContext is returned by every
// view on the page from NavigationContext.
func (h *Host) NewPage(name string, navigationContext any) *View {
	p := newView(name, nil, nil)
	p.page = p
	p.navigationContext = navigationContext
	if h.frame.current == nil {
		h.frame.current = p
	}
	return p
}

// NewView creates a view under parent with the given declarative
// attributes. Expr values are resolved at load time.
func (h *Host) NewView(parent *View, name string, attrs map[string]any) *View {
	v := newView(name, parent, attrs)
	if parent != nil {
		v.page = parent.page
		parent.children = append(parent.children, v)
	}
	return v
}

// Detach removes v from its parent's children. The view keeps its parent
// pointer so late events can still walk the tree.
func (h *Host) Detach(v *View) {
	if v.parent == nil {
		return
	}
	siblings := v.parent.children
	for i, c := range siblings {
		if c == v {
			v.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			return
		}
	}
}

// Navigate fires navigatingTo on page, loads its tree, then fires
// navigatedTo.
func (h *Host) Navigate(page *View) error {
	h.frame.current = page
	var errs []error
	errs = append(errs, h.fire(page, view.EventNavigatingTo, "onNavigatingTo", view.EventData{}))
	errs = append(errs, h.LoadTree(page))
	errs = append(errs, h.fire(page, view.EventNavigatedTo, "onNavigatedTo", view.EventData{}))
	return errors.Join(errs...)
}

// LoadTree loads root and its descendants innermost first. Each view's
// module onLoaded export runs before the view's loaded subscribers.
func (h *Host) LoadTree(root *View) error {
	var errs []error
	root.walkPostOrder(func(v *View) {
		errs = append(errs, h.Load(v))
	})
	return errors.Join(errs...)
}

// Load loads a single view: dynamic attributes are resolved, onLoaded runs,
// and the loaded event fires.
func (h *Host) Load(v *View) error {
	if v.loaded {
		return nil
	}
	v.resolveExpressions()
	v.loaded = true
	return h.fire(v, view.EventLoaded, "onLoaded", view.EventData{})
}

// UnloadTree unloads root and its descendants innermost first.
func (h *Host) UnloadTree(root *View) {
	root.walkPostOrder(h.Unload)
}

// Unload fires the unloaded event on v.
func (h *Host) Unload(v *View) {
	if !v.loaded {
		return
	}
	v.loaded = false
	v.emit(view.EventData{EventName: view.EventUnloaded, Object: v})
}

// ShowModally fires shownModally on page with the modal's context and
// close callback, then loads the page's tree.
func (h *Host) ShowModally(page *View, m *Modal) error {
	m.Page = page
	data := view.EventData{Context: m.Context, CloseCallback: m.Close}
	return errors.Join(
		h.fire(page, view.EventShownModally, "onShownModally", data),
		h.LoadTree(page),
	)
}

// Call invokes a module export on v as if triggered by an event on v.
func (h *Host) Call(v *View, export string) (any, error) {
	fn := v.lookupHandler(export)
	if fn == nil {
		return nil, errors.New("testing: no export " + export + " bound on " + v.name + " or its ancestors")
	}
	return fn(view.EventData{EventName: export, Object: v})
}

func (h *Host) fire(v *View, event, export string, data view.EventData) error {
	data.EventName = event
	data.Object = v
	var err error
	if fn := v.module[export]; fn != nil {
		_, err = fn(data)
	}
	v.emit(data)
	return err
}

// View is a fake host view. It satisfies both view.View and view.Page.
type View struct {
	name              string
	parent            *View
	page              *View
	children          []*View
	attrs             map[string]any
	resolved          map[string]any
	ctx               any
	ctxSet            bool
	navigationContext any
	loaded            bool
	module            map[string]Handler
	handlers          map[string][]*subscription
}

type subscription struct {
	fn func(view.EventData)
}

func newView(name string, parent *View, attrs map[string]any) *View {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &View{
		name:     name,
		parent:   parent,
		attrs:    attrs,
		handlers: make(map[string][]*subscription),
	}
}

// Name returns the name the view was created with.
func (v *View) Name() string { return v.name }

// Children returns the view's children in creation order.
func (v *View) Children() []*View { return v.children }

// Bind attaches module exports (typically a registry.Module) to the view.
func (v *View) Bind(module map[string]Handler) {
	v.module = module
}

// BindingContext returns the view's own context, or its parent's when none
// has been set.
func (v *View) BindingContext() any {
	if v.ctxSet {
		return v.ctx
	}
	if v.parent != nil {
		return v.parent.BindingContext()
	}
	return nil
}

// SetBindingContext assigns the view's own context. Passing nil reverts to
// inheriting the parent's context.
func (v *View) SetBindingContext(ctx any) {
	v.ctx = ctx
	v.ctxSet = ctx != nil
}

// NavigationContext returns the page's navigation context.
func (v *View) NavigationContext() any {
	if v.page == nil {
		return nil
	}
	return v.page.navigationContext
}

// Parent returns the parent view, or nil.
func (v *View) Parent() view.View {
	if v.parent == nil {
		return nil
	}
	return v.parent
}

// SetParent re-parents v without touching children lists. Tests use it to
// build malformed trees.
func (v *View) SetParent(parent *View) {
	v.parent = parent
}

// Page returns the view's page, or nil when detached.
func (v *View) Page() view.Page {
	if v.page == nil {
		return nil
	}
	return v.page
}

// IsLoaded reports whether the view has loaded.
func (v *View) IsLoaded() bool { return v.loaded }

// Attributes returns the declarative attributes, with Expr values replaced
// by what they resolved to at load.
func (v *View) Attributes() map[string]any {
	if len(v.resolved) == 0 {
		return v.attrs
	}
	attrs := make(map[string]any, len(v.attrs))
	for name, value := range v.attrs {
		attrs[name] = value
	}
	for name, value := range v.resolved {
		attrs[name] = value
	}
	return attrs
}

// On subscribes to an event. The returned function is idempotent.
func (v *View) On(event string, handler func(view.EventData)) func() {
	sub := &subscription{fn: handler}
	v.handlers[event] = append(v.handlers[event], sub)
	return func() {
		subs := v.handlers[event]
		for i, s := range subs {
			if s == sub {
				v.handlers[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of subscriptions for event.
func (v *View) SubscriberCount(event string) int {
	return len(v.handlers[event])
}

func (v *View) emit(data view.EventData) {
	subs := append([]*subscription(nil), v.handlers[data.EventName]...)
	for _, s := range subs {
		s.fn(data)
	}
}

func (v *View) walkPostOrder(fn func(*View)) {
	for _, c := range v.children {
		c.walkPostOrder(fn)
	}
	fn(v)
}

func (v *View) resolveExpressions() {
	for name, value := range v.attrs {
		expr, ok := value.(Expr)
		if !ok {
			continue
		}
		var parentCtx any
		if v.parent != nil {
			parentCtx = v.parent.BindingContext()
		}
		resolved, _ := binding.Lookup(parentCtx, string(expr))
		if v.ctxSet {
			_ = binding.Assign(v.ctx, name, resolved)
			continue
		}
		if v.resolved == nil {
			v.resolved = make(map[string]any)
		}
		v.resolved[name] = resolved
	}
}

func (v *View) lookupHandler(export string) Handler {
	for current := v; current != nil; current = current.parent {
		if fn := current.module[export]; fn != nil {
			return fn
		}
	}
	return nil
}
