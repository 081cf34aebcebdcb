package build

import (
	"context"
	"fmt"
	"path"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/tree"
)

// RenderAll renders root and every descendant in pre-order starting at "/".
// Each node receives the overall root and its output path.
func RenderAll(ctx context.Context, env *tree.Env, root *tree.Directory, recorder metrics.Recorder) error {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	r := &renderer{ctx: ctx, env: env, root: root, recorder: recorder}
	return r.dir(root, "/")
}

type renderer struct {
	ctx      context.Context
	env      *tree.Env
	root     *tree.Directory
	recorder metrics.Recorder
}

func (r *renderer) dir(dir *tree.Directory, outPath string) error {
	if err := r.node(dir, outPath); err != nil {
		return err
	}
	for _, entry := range dir.Entries() {
		childPath := path.Join(outPath, entry.Name)
		if sub, ok := entry.Node.(*tree.Directory); ok {
			if err := r.dir(sub, childPath); err != nil {
				return err
			}
			continue
		}
		if err := r.node(entry.Node, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) node(n tree.Node, outPath string) error {
	kind := tree.Kind(n)
	observability.DebugContext(r.ctx, "Rendering", logfields.Path(outPath), logfields.Kind(kind))
	if err := n.Render(r.env, r.root, outPath); err != nil {
		return &RenderError{Path: outPath, Source: n.Source(), Kind: kind, Err: err}
	}
	r.recorder.IncNodeRendered(kind)
	return nil
}

// RenderError identifies the node that failed to render.
type RenderError struct {
	Path   string
	Source string
	Kind   string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s %s (from %s): %v", e.Kind, e.Path, e.Source, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
