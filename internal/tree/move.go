package tree

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/internal/vpath"
)

// Move relocates the node at source. When target ends in a separator the node
// keeps its name inside that directory; otherwise it is renamed to target's
// basename inside target's parent. Missing target directories are created
// with the theme's directory template when makeDirs is set.
//
// All checks run before the tree is modified, so a failed Move leaves the
// tree unchanged.
func (d *Directory) Move(source, target string, makeDirs bool) error {
	if vpath.IsRoot(source) {
		return fmt.Errorf("%w: cannot move the root", ErrInvalidArgument)
	}
	source = strings.TrimRight(source, vpath.Sep)
	srcName := vpath.Base(source)
	if srcName == "." || srcName == ".." {
		return fmt.Errorf("%w: cannot move %q", ErrInvalidArgument, source)
	}

	found, err := d.LookupPath(vpath.Dir(source))
	if err != nil {
		return err
	}
	srcDir, ok := found.(*Directory)
	switch {
	case found == nil:
		return fmt.Errorf("%w: %s", ErrPathNotFound, vpath.Dir(source))
	case !ok:
		return fmt.Errorf("%w: %s", ErrNotADirectory, vpath.Dir(source))
	}
	node := srcDir.children[srcName]
	if node == nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, source)
	}

	dirPath, name := splitTarget(target, srcName)
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: bad target name in %q", ErrInvalidArgument, target)
	}

	dest, create, err := d.resolveTargetDir(dirPath)
	if err != nil {
		return err
	}
	if len(create) > 0 && !makeDirs {
		return fmt.Errorf("%w: %s", ErrPathNotFound, dirPath)
	}
	if sub, ok := node.(*Directory); ok && sub.isAncestorOf(dest) {
		return fmt.Errorf("%w: cannot move %s into itself", ErrInvalidArgument, source)
	}
	if len(create) == 0 && dest == srcDir && name == srcName {
		return nil
	}

	for _, elem := range create {
		dest = NewDirectory("", dest, elem, theme.Template(theme.DirectoryTemplate))
	}
	srcDir.RemoveChild(srcName)
	dest.AddChild(name, node)
	return nil
}

func splitTarget(target, srcName string) (dir, name string) {
	switch {
	case vpath.IsRoot(target) && target != "":
		return vpath.Sep, srcName
	case vpath.IsDirPath(target):
		return strings.TrimRight(target, vpath.Sep), srcName
	default:
		return vpath.Dir(target), vpath.Base(target)
	}
}

// resolveTargetDir finds the deepest existing directory on dirPath and the
// names still missing below it. It never modifies the tree.
func (d *Directory) resolveTargetDir(dirPath string) (*Directory, []string, error) {
	var (
		dest   = d
		create []string
	)
	steps := d.StepPath(dirPath, false)
	for {
		step, ok, err := steps.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		if step.Node == nil {
			switch step.Elem {
			case ".":
				continue
			case "..", "":
				return nil, nil, fmt.Errorf("%w: cannot create %q below a missing directory", ErrInvalidArgument, dirPath)
			}
			create = append(create, step.Elem)
			continue
		}
		sub, isDir := step.Node.(*Directory)
		if !isDir {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotADirectory, dirPath)
		}
		dest = sub
	}
	return dest, create, nil
}

func (d *Directory) isAncestorOf(other *Directory) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == d {
			return true
		}
	}
	return false
}
