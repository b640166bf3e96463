// Package testing provides an in-memory host for testing viewkit components
// without a real UI framework.
//
// # Quick Start
//
// Build a view tree, bind component modules to views, and fire lifecycle
// events the way a host would:
//
//	func TestUserForm(t *testing.T) {
//	    host := viewtest.NewHostWithT(t)
//	    page := host.NewPage("main", nil)
//	    form := host.NewView(page, "form", map[string]any{
//	        "fieldName": "firstName",
//	        "record":    viewtest.Expr("user"),
//	    })
//	    form.Bind(registry.MustExport(userFormDefinition))
//
//	    page.SetBindingContext(map[string]any{"user": user})
//	    if err := host.LoadTree(page); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// LoadTree fires loaded events innermost first, like real hosts do, and
// marks the page loaded last. Unload fires unloaded events the same way.
//
// # Frames and Modals
//
// The host installs a recording [Frame] as the topmost frame. Navigation
// entries and modal requests are recorded; [Modal.Close] completes a modal
// with (error, result) arguments.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import viewtest "github.com/go-drift/viewkit/pkg/testing"
package testing
