// Package theme resolves the templates and static assets a site is rendered with.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Template names known to the renderer.
const (
	PageTemplate      = "page"
	DirectoryTemplate = "directory"
	Extension         = ".template"
)

//go:embed default
var builtin embed.FS

// Template returns the file name of the named theme template.
func Template(name string) string {
	return name + Extension
}

// Theme is either the built-in theme or a directory on disk containing
// templates/ and assets/.
type Theme struct {
	dir  string
	fsys fs.FS
}

// Builtin returns the theme compiled into the binary.
func Builtin() *Theme {
	sub, err := fs.Sub(builtin, "default")
	if err != nil {
		panic(err)
	}
	return &Theme{fsys: sub}
}

// Load opens the theme at dir. An empty dir selects the built-in theme.
func Load(dir string) (*Theme, error) {
	if dir == "" {
		return Builtin(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("theme %s: not a directory", dir)
	}
	return &Theme{dir: dir, fsys: os.DirFS(dir)}, nil
}

// Dir is the on-disk location, or "" for the built-in theme.
func (t *Theme) Dir() string { return t.dir }

func (t *Theme) IsBuiltin() bool { return t.dir == "" }

// Templates returns the theme's template directory.
func (t *Theme) Templates() fs.FS {
	return sub(t.fsys, "templates")
}

// Assets returns the theme's static asset directory, if it has one.
func (t *Theme) Assets() (fs.FS, bool) {
	info, err := fs.Stat(t.fsys, "assets")
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return sub(t.fsys, "assets"), true
}

// SearchPath returns the template lookup order for t: its own templates
// followed by the built-in templates.
func (t *Theme) SearchPath() []fs.FS {
	if t.IsBuiltin() {
		return []fs.FS{t.Templates()}
	}
	return []fs.FS{t.Templates(), Builtin().Templates()}
}

func sub(fsys fs.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		return emptyFS{}
	}
	return s
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: errors.ErrUnsupported}
}
