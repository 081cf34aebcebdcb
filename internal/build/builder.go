package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/internal/tree"
)

// Counts tallies discovered nodes by tree.Kind.
type Counts map[string]int

// Total is the number of nodes, directories included.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Builder classifies source files into tree nodes.
type Builder struct {
	// sourceDir prefixes template identifiers so the engine can read them from disk.
	sourceDir          string
	dirIndexTemplates  []string
	pageExtensions     []string
	templateExtensions []string
	// exclude is a source-relative directory left out of the tree.
	exclude string
}

// NewBuilder creates a builder for cfg. sourceDir is the host path of the
// source tree and becomes the prefix of every source template identifier.
func NewBuilder(cfg *config.Config, sourceDir string) *Builder {
	return &Builder{
		sourceDir:          sourceDir,
		dirIndexTemplates:  cfg.DirIndexTemplates,
		pageExtensions:     cfg.PageExtensions,
		templateExtensions: cfg.TemplateExtensions,
	}
}

// Exclude leaves the source-relative directory rel out of the tree. It is
// used when the destination lives inside the source.
func (b *Builder) Exclude(rel string) *Builder {
	b.exclude = rel
	return b
}

type dirState struct {
	dir *tree.Directory
	// index is the file consumed as the directory's index template, if any.
	index string
}

// Build walks fsys top-down and returns the root directory.
func (b *Builder) Build(ctx context.Context, fsys fs.FS) (*tree.Directory, Counts, error) {
	var root *tree.Directory
	dirs := make(map[string]*dirState)
	counts := Counts{}

	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", rel, err)
		}

		if d.IsDir() {
			if b.exclude != "" && rel == b.exclude {
				return fs.SkipDir
			}
			var parent *tree.Directory
			name := ""
			if rel != "." {
				parent = dirs[path.Dir(rel)].dir
				name = path.Base(rel)
			}
			template, index := b.indexTemplate(fsys, rel)
			dir := tree.NewDirectory(rel, parent, name, template)
			if root == nil {
				root = dir
			}
			dirs[rel] = &dirState{dir: dir, index: index}
			counts[tree.Kind(dir)]++
			observability.DebugContext(ctx, "Discovered directory", logfields.Source(rel), logfields.Template(template))
			return nil
		}

		state := dirs[path.Dir(rel)]
		name := path.Base(rel)
		if name == state.index {
			return nil
		}

		info, err := b.resolve(fsys, rel, d)
		if err != nil {
			observability.WarnContext(ctx, "Skipping unreadable entry", logfields.Source(rel), logfields.Error(err))
			return nil
		}
		if info.IsDir() {
			observability.DebugContext(ctx, "Skipping symlinked directory", logfields.Source(rel))
			return nil
		}

		childName, node := b.classify(rel, info)
		state.dir.AddChild(childName, node)
		counts[tree.Kind(node)]++
		observability.DebugContext(ctx, "Discovered file", logfields.Source(rel), logfields.Kind(tree.Kind(node)))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, errors.New("source tree is empty")
	}
	return root, counts, nil
}

// resolve returns file info for rel, following a symlink.
func (b *Builder) resolve(fsys fs.FS, rel string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		return fs.Stat(fsys, rel)
	}
	return d.Info()
}

func (b *Builder) classify(rel string, info fs.FileInfo) (string, tree.Node) {
	name := path.Base(rel)
	stem, ext := splitExt(name)

	switch {
	case ext != "" && slices.Contains(b.pageExtensions, ext):
		return stem + ".html", tree.NewPageNode(rel)
	case ext != "" && slices.Contains(b.templateExtensions, ext):
		return stem, tree.NewTemplateNode(rel, b.templateID(rel), nil)
	default:
		return name, tree.NewFileCopyNode(rel, info.ModTime())
	}
}

// splitExt splits name at its last dot. Leading dots belong to the stem, so
// ".md" and "..template" have no extension.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 || strings.TrimLeft(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// indexTemplate picks the first configured index template present in dir.
func (b *Builder) indexTemplate(fsys fs.FS, dir string) (template, consumed string) {
	for _, name := range b.dirIndexTemplates {
		rel := path.Join(dir, name)
		info, err := fs.Stat(fsys, rel)
		if err != nil || info.IsDir() {
			continue
		}
		return b.templateID(rel), name
	}
	return theme.Template(theme.DirectoryTemplate), ""
}

func (b *Builder) templateID(rel string) string {
	return filepath.Join(b.sourceDir, filepath.FromSlash(rel))
}
