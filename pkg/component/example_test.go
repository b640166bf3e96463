package component_test

import (
	"fmt"

	"github.com/go-drift/viewkit/pkg/async"
	"github.com/go-drift/viewkit/pkg/component"
	"github.com/go-drift/viewkit/pkg/registry"
	viewtest "github.com/go-drift/viewkit/pkg/testing"
)

type form struct {
	component.Controller
}

func (f *form) Init() *async.Result {
	fmt.Println("form ready")
	return nil
}

type field struct {
	component.Controller
}

func (f *field) Init() *async.Result {
	name, _ := f.Get("fieldName")
	fmt.Println("field ready:", name)
	return nil
}

// This example shows that Init runs outside-in even though the host loads
// views innermost first.
func ExampleController_Init() {
	host := viewtest.NewHost()
	defer host.Cleanup()

	idx := component.NewIndex()
	formModule := registry.MustExport(registry.Definition{
		Name: "form",
		New:  func() component.Component { return &form{} },
	}, registry.WithIndex(idx))
	fieldModule := registry.MustExport(registry.Definition{
		Name: "field",
		New:  func() component.Component { return &field{} },
	}, registry.WithIndex(idx))

	page := host.NewPage("signup", nil)
	formView := host.NewView(page, "form", nil)
	formView.Bind(formModule)
	emailView := host.NewView(formView, "email", map[string]any{"fieldName": "email"})
	emailView.Bind(fieldModule)

	if err := host.LoadTree(page); err != nil {
		fmt.Println("error:", err)
	}

	// Output:
	// form ready
	// field ready: email
}
