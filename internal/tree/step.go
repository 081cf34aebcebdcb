package tree

import (
	"fmt"
	"iter"
	"path"

	"git.home.luguber.info/inful/sitegen/internal/vpath"
)

// Step is one element consumed while resolving a path. Node is nil once
// resolution has left the tree.
type Step struct {
	Elem string
	Node Node
}

// Stepper resolves a path one element at a time.
type Stepper struct {
	start      *Directory
	elems      []string
	base       string
	stopAtNone bool

	i       int
	cur     *Directory
	walked  []string
	missing bool
	done    bool
}

// StepPath starts resolving p relative to d. Every directory element yields
// one step, then the basename yields a final step. "." elements are skipped,
// as is ".." at a directory with no parent.
// With stopAtNone the sequence ends after the first missing element.
func (d *Directory) StepPath(p string, stopAtNone bool) *Stepper {
	var elems []string
	for _, e := range vpath.Split(vpath.Dir(p), false) {
		if e != "." {
			elems = append(elems, e)
		}
	}
	return &Stepper{
		start:      d,
		elems:      elems,
		base:       vpath.Base(p),
		stopAtNone: stopAtNone,
		cur:        d,
	}
}

// Next returns the next step. ok is false when the sequence is exhausted.
func (s *Stepper) Next() (step Step, ok bool, err error) {
	if s.done {
		return Step{}, false, nil
	}
	for s.i < len(s.elems) {
		elem := s.elems[s.i]
		s.i++
		if elem == ".." && !s.missing && s.cur.parent == nil {
			continue
		}
		return s.stepDir(elem)
	}
	s.done = true
	if s.missing {
		return Step{Elem: s.base}, true, nil
	}
	return Step{Elem: s.base, Node: s.resolveBase()}, true, nil
}

func (s *Stepper) stepDir(elem string) (Step, bool, error) {
	s.walked = append(s.walked, elem)
	if s.missing {
		return Step{Elem: elem}, true, nil
	}
	switch elem {
	case vpath.Sep:
		s.cur = s.start.Root()
	case "..":
		s.cur = s.cur.parent
	default:
		switch child := s.cur.children[elem].(type) {
		case *Directory:
			s.cur = child
		case nil:
			s.missing = true
			s.done = s.stopAtNone
			return Step{Elem: elem}, true, nil
		default:
			s.done = true
			return Step{}, false, fmt.Errorf("%w: %s", ErrNotADirectory, vpath.Join(s.walked...))
		}
	}
	return Step{Elem: elem, Node: s.cur}, true, nil
}

func (s *Stepper) resolveBase() Node {
	switch s.base {
	case "", ".":
		return s.cur
	case "..":
		if s.cur.parent != nil {
			return s.cur.parent
		}
		return s.cur
	default:
		return s.cur.children[s.base]
	}
}

// Steps is StepPath as a range-over-func sequence. A non-nil error is the last value.
func (d *Directory) Steps(p string, stopAtNone bool) iter.Seq2[Step, error] {
	return func(yield func(Step, error) bool) {
		s := d.StepPath(p, stopAtNone)
		for {
			step, ok, err := s.Next()
			if err != nil {
				yield(Step{}, err)
				return
			}
			if !ok || !yield(step, nil) {
				return
			}
		}
	}
}

// LookupPath resolves p relative to d. It returns nil when p does not exist.
func (d *Directory) LookupPath(p string) (Node, error) {
	var last Node
	for step, err := range d.Steps(p, true) {
		if err != nil {
			return nil, err
		}
		last = step.Node
	}
	return last, nil
}

// Path returns the absolute output path of d, found by walking parent links.
func (d *Directory) Path() string {
	var names []string
	for cur := d; cur.parent != nil; cur = cur.parent {
		names = append(names, cur.parent.nameOf(cur))
	}
	p := "/"
	for i := len(names) - 1; i >= 0; i-- {
		p = path.Join(p, names[i])
	}
	return p
}

func (d *Directory) nameOf(n Node) string {
	for _, name := range d.names {
		if d.children[name] == n {
			return name
		}
	}
	return ""
}
