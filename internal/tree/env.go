package tree

import (
	"io/fs"
	"maps"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
)

// TemplateRenderer expands a template identifier with a data mapping.
type TemplateRenderer interface {
	Render(id string, data map[string]any) (string, error)
}

// PageConverter turns a markdown source file into a page value.
type PageConverter interface {
	ConvertFile(fsys fs.FS, name string) (*markdown.Page, error)
}

// Output is the destination tree. Paths are virtual, rooted at "/".
type Output interface {
	MkdirAll(p string) error
	WriteFile(p string, data []byte) error
	CopyFile(src fs.FS, name, dst string) error
}

// Env carries the collaborators a node needs to render itself.
type Env struct {
	Source    fs.FS
	Output    Output
	Templates TemplateRenderer
	Pages     PageConverter
	// Globals are visible to every template, typically "config" and "build".
	Globals map[string]any
	// DirIndex is the file name a directory index is written to.
	DirIndex string
}

// DirectoryContext tells a template where it is being rendered.
type DirectoryContext struct {
	Root *Directory
	Path string
}

func renderTemplate(env *Env, self Node, template string, context, extra map[string]any, root *Directory, outPath string) error {
	data := make(map[string]any, len(env.Globals)+len(context)+len(extra)+2)
	maps.Copy(data, env.Globals)
	maps.Copy(data, context)
	maps.Copy(data, extra)
	data["node"] = self
	data["directory_context"] = DirectoryContext{Root: root, Path: outPath}

	out, err := env.Templates.Render(template, data)
	if err != nil {
		return err
	}
	return env.Output.WriteFile(outPath, []byte(out))
}
