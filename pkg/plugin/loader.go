package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ModuleLoader maps a plugin id to the path of its module source.
type ModuleLoader interface {
	// Resolve returns the module path for the plugin id, or
	// ErrModuleNotFound when no module exists.
	Resolve(pluginID string) (string, error)
}

// pluginIDPattern keeps ids to a flat name space so they cannot name
// anything outside the module root.
var pluginIDPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?$`)

// DirLoader resolves plugin modules as <root>/<id>.js files.
type DirLoader struct {
	root string
}

// NewDirLoader creates a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{root: dir}
}

func (l *DirLoader) Resolve(pluginID string) (string, error) {
	if !pluginIDPattern.MatchString(pluginID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPluginID, pluginID)
	}

	path := filepath.Join(l.root, pluginID+".js")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, pluginID)
	}
	return path, nil
}
