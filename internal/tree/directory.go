package tree

import (
	"path"
	"slices"
)

// Directory is a node with ordered, uniquely named children.
type Directory struct {
	base
	parent   *Directory
	names    []string
	children map[string]Node
	template string
	context  map[string]any
}

// NewDirectory creates a directory rendered with template. When parent is
// non-nil the directory is attached to it under name.
func NewDirectory(src string, parent *Directory, name, template string) *Directory {
	d := &Directory{
		base:     newBase(src),
		children: make(map[string]Node),
		template: template,
		context:  make(map[string]any),
	}
	if parent != nil {
		parent.AddChild(name, d)
	}
	return d
}

// Parent returns the enclosing directory, or nil for the root.
func (d *Directory) Parent() *Directory { return d.parent }

// Root walks parent links up to the directory with no parent.
func (d *Directory) Root() *Directory {
	cur := d
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (d *Directory) Template() string { return d.template }

// Context returns the values passed to the index template.
func (d *Directory) Context() map[string]any { return d.context }

// Child returns the child called name, or nil.
func (d *Directory) Child(name string) Node { return d.children[name] }

func (d *Directory) Len() int { return len(d.names) }

// Names returns child names in insertion order.
func (d *Directory) Names() []string { return slices.Clone(d.names) }

// Entry is one child as seen by templates.
type Entry struct {
	Name  string
	Node  Node
	IsDir bool
}

// Entries returns the children in insertion order.
func (d *Directory) Entries() []Entry {
	entries := make([]Entry, 0, len(d.names))
	for _, name := range d.names {
		n := d.children[name]
		_, isDir := n.(*Directory)
		entries = append(entries, Entry{Name: name, Node: n, IsDir: isDir})
	}
	return entries
}

// AddChild inserts node under name, replacing any existing child in place.
// A nil node is a programming error.
func (d *Directory) AddChild(name string, node Node) {
	if node == nil {
		panic("tree: AddChild called with nil node")
	}
	if _, exists := d.children[name]; !exists {
		d.names = append(d.names, name)
	}
	d.children[name] = node
	if sub, ok := node.(*Directory); ok {
		sub.parent = d
	}
}

// RemoveChild detaches name. Removing a missing child is a no-op.
func (d *Directory) RemoveChild(name string) {
	if _, exists := d.children[name]; !exists {
		return
	}
	delete(d.children, name)
	d.names = slices.DeleteFunc(d.names, func(n string) bool { return n == name })
}

// Render creates the output directory and writes its index page.
func (d *Directory) Render(env *Env, root *Directory, outPath string) error {
	if err := env.Output.MkdirAll(outPath); err != nil {
		return err
	}
	return renderTemplate(env, d, d.template, d.context, nil, root, path.Join(outPath, env.DirIndex))
}
