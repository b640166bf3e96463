// Package component provides the controller base type for viewkit
// components.
//
// A component is a struct that embeds [Controller]. The registry creates one
// instance per host view and forwards lifecycle events to it:
//
//	type userForm struct {
//	    component.Controller
//	}
//
//	func (f *userForm) Init() *async.Result {
//	    record, _ := f.Get("record")
//	    // prepare state children depend on
//	    return nil
//	}
//
// # Lifecycle
//
// The first lifecycle hook to reach an instance (OnLoaded, OnNavigatingTo,
// OnNavigatedTo or OnShownModally) binds it to its view: declarative
// attributes are resolved, a private binding context is assigned when the
// view would otherwise share its parent's, and the navigation context is
// copied in. Init then runs outside-in: an ancestor component's Init, and
// the Result it returns, settle before any descendant's Init begins, even
// though the host fires loaded events innermost first.
//
// Components overriding a hook must call the embedded Controller's version:
//
//	func (f *userForm) OnLoaded(args view.EventData) error {
//	    if err := f.Controller.OnLoaded(args); err != nil {
//	        return err
//	    }
//	    // extra work
//	    return nil
//	}
//
// # State
//
// Get and Set read and write the binding context, which is either an
// observable [binding.Context] (writes notify listeners) or a plain
// map[string]any.
package component
