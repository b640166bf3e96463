package component

import (
	"fmt"
	"path"
	"sync"

	"golang.org/x/mod/module"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/frame"
)

// DefaultComponentsDir is the directory component modules live under.
const DefaultComponentsDir = "components"

var (
	componentsDir   = DefaultComponentsDir
	componentsDirMu sync.RWMutex
)

// SetComponentsDir changes the directory used by ComponentModule. An empty
// dir restores DefaultComponentsDir.
func SetComponentsDir(dir string) {
	if dir == "" {
		dir = DefaultComponentsDir
	}
	componentsDirMu.Lock()
	componentsDir = dir
	componentsDirMu.Unlock()
}

// ComponentModule returns the conventional module path of the named
// component, "<dir>/<name>/<name>".
func ComponentModule(name string) (string, error) {
	componentsDirMu.RLock()
	dir := componentsDir
	componentsDirMu.RUnlock()

	p := path.Join(dir, name, name)
	if err := module.CheckFilePath(p); err != nil {
		return "", fmt.Errorf("invalid component name %q: %w", name, err)
	}
	return p, nil
}

// Navigate pushes entry on the topmost frame. An entry naming a Component
// is rewritten to that component's module path first.
func (c *Controller) Navigate(entry frame.Entry) error {
	if entry.Component != "" {
		moduleName, err := ComponentModule(entry.Component)
		if err != nil {
			return &errors.ComponentError{
				Op:        "component.Navigate",
				Kind:      errors.KindLifecycle,
				Component: c.opts.Name,
				Err:       err,
			}
		}
		entry.ModuleName = moduleName
		entry.Component = ""
	}
	f := frame.Topmost()
	if f == nil {
		return frame.ErrNoFrame
	}
	return f.Navigate(entry)
}
