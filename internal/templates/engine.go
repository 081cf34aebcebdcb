// Package templates expands text/template files found on a search path.
//
// A template identifier is looked up in each loader in order. Absolute host
// paths are read directly. Parsed templates are cached for the life of the
// Engine, which matches a single build.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"text/template"
)

// ErrTemplateNotFound is returned when no loader has the requested identifier.
var ErrTemplateNotFound = errors.New("template not found")

const maxIncludeDepth = 32

// Error reports a template that failed to parse or execute.
type Error struct {
	ID  string
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + " template " + e.ID + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Engine renders templates from an ordered list of loaders.
type Engine struct {
	loaders []fs.FS
	cache   map[string]*template.Template
	funcs   template.FuncMap
	depth   int
}

// NewEngine creates an engine searching loaders in order.
func NewEngine(loaders ...fs.FS) *Engine {
	e := &Engine{
		loaders: loaders,
		cache:   make(map[string]*template.Template),
	}
	e.funcs = funcMap(e)
	return e
}

// Render expands the template id with data.
func (e *Engine) Render(id string, data map[string]any) (string, error) {
	return e.execute(id, data)
}

func (e *Engine) execute(id string, data any) (string, error) {
	tpl, err := e.load(id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", &Error{ID: id, Op: "render", Err: err}
	}
	return buf.String(), nil
}

func (e *Engine) include(id string, data any) (string, error) {
	if e.depth >= maxIncludeDepth {
		return "", fmt.Errorf("include %s: nesting deeper than %d", id, maxIncludeDepth)
	}
	e.depth++
	defer func() { e.depth-- }()
	return e.execute(id, data)
}

func (e *Engine) load(id string) (*template.Template, error) {
	if tpl, ok := e.cache[id]; ok {
		return tpl, nil
	}
	src, err := e.read(id)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(id).Option("missingkey=zero").Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return nil, &Error{ID: id, Op: "parse", Err: err}
	}
	e.cache[id] = tpl
	return tpl, nil
}

func (e *Engine) read(id string) ([]byte, error) {
	if filepath.IsAbs(id) {
		// #nosec G304 -- absolute ids come from the configured source tree.
		data, err := os.ReadFile(id)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return data, err
	}
	name := path.Clean(filepath.ToSlash(id))
	if fs.ValidPath(name) {
		for _, loader := range e.loaders {
			data, err := fs.ReadFile(loader, name)
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, errors.ErrUnsupported) {
				return nil, fmt.Errorf("read template %s: %w", id, err)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}
