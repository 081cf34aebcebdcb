// Package tree is the in-memory model of the output site.
//
// A Directory owns its children by name. Leaves are TemplateNode, PageNode,
// FileCopyNode and LinkNode. Every node renders itself to an output path;
// directories render their index page.
package tree

import (
	"maps"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/theme"
)

// Node is one entry of the output tree.
type Node interface {
	// Source is the slash-separated path relative to the source root.
	Source() string
	Timestamp() time.Time
	Render(env *Env, root *Directory, outPath string) error
}

type base struct {
	src string
	ts  time.Time
}

func newBase(src string) base {
	return base{src: src, ts: time.Now()}
}

func (b base) Source() string       { return b.src }
func (b base) Timestamp() time.Time { return b.ts }

// TemplateNode renders a template to a single output file.
type TemplateNode struct {
	base
	template string
	context  map[string]any
}

// NewTemplateNode creates a node rendering template with context.
func NewTemplateNode(src, template string, context map[string]any) *TemplateNode {
	return &TemplateNode{base: newBase(src), template: template, context: maps.Clone(context)}
}

func (n *TemplateNode) Template() string { return n.template }

// Context returns the node's own template values.
func (n *TemplateNode) Context() map[string]any { return n.context }

func (n *TemplateNode) Render(env *Env, root *Directory, outPath string) error {
	return renderTemplate(env, n, n.template, n.context, nil, root, outPath)
}

// PageNode renders a markdown source through the theme's page template.
type PageNode struct {
	TemplateNode
}

func NewPageNode(src string) *PageNode {
	return &PageNode{TemplateNode: TemplateNode{base: newBase(src), template: theme.Template(theme.PageTemplate)}}
}

func (n *PageNode) Render(env *Env, root *Directory, outPath string) error {
	page, err := env.Pages.ConvertFile(env.Source, n.src)
	if err != nil {
		return err
	}
	return renderTemplate(env, n, n.template, n.context, map[string]any{"page": page}, root, outPath)
}

// FileCopyNode copies its source verbatim.
type FileCopyNode struct {
	base
}

// NewFileCopyNode creates a copy node stamped with the source's modification time.
func NewFileCopyNode(src string, modTime time.Time) *FileCopyNode {
	return &FileCopyNode{base: base{src: src, ts: modTime}}
}

func (n *FileCopyNode) Render(env *Env, _ *Directory, outPath string) error {
	return env.Output.CopyFile(env.Source, n.src, outPath)
}

// LinkNode records a symbolic link. It produces no output.
type LinkNode struct {
	base
	target string
}

func NewLinkNode(src, target string) *LinkNode {
	return &LinkNode{base: newBase(src), target: target}
}

func (n *LinkNode) Target() string { return n.target }

func (n *LinkNode) Render(*Env, *Directory, string) error { return nil }

// Kind names the variant of n for logs and metrics.
func Kind(n Node) string {
	switch n.(type) {
	case *Directory:
		return "directory"
	case *PageNode:
		return "page"
	case *TemplateNode:
		return "template"
	case *FileCopyNode:
		return "copy"
	case *LinkNode:
		return "link"
	default:
		return "unknown"
	}
}
