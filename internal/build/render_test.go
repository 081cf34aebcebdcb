package build

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/templates"
	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/internal/tree"
)

// orderedOutput records the sequence of output paths.
type orderedOutput struct {
	*output.FS
	order []string
}

func (o *orderedOutput) MkdirAll(p string) error {
	o.order = append(o.order, "mkdir "+p)
	return o.FS.MkdirAll(p)
}

func (o *orderedOutput) WriteFile(p string, data []byte) error {
	o.order = append(o.order, "write "+p)
	return o.FS.WriteFile(p, data)
}

func (o *orderedOutput) CopyFile(src fs.FS, name, dst string) error {
	o.order = append(o.order, "copy "+dst)
	return o.FS.CopyFile(src, name, dst)
}

type countingRecorder struct {
	metrics.NoopRecorder
	nodes map[string]int
}

func (r *countingRecorder) IncNodeRendered(kind string) {
	if r.nodes == nil {
		r.nodes = map[string]int{}
	}
	r.nodes[kind]++
}

func newTestEnv(src fs.FS, out tree.Output) *tree.Env {
	loaders := append(theme.Builtin().SearchPath(), src)
	return &tree.Env{
		Source:    src,
		Output:    out,
		Templates: templates.NewEngine(loaders...),
		Pages:     markdown.NewConverter(),
		Globals:   map[string]any{"config": testConfig().AsMap()},
		DirIndex:  "index.html",
	}
}

func TestRenderAll_PreOrder(t *testing.T) {
	src := sampleSource()
	root, _, err := NewBuilder(testConfig(), "").Build(t.Context(), src)
	require.NoError(t, err)

	out := &orderedOutput{FS: output.NewMemory()}
	rec := &countingRecorder{}
	require.NoError(t, RenderAll(t.Context(), newTestEnv(src, out), root, rec))

	assert.Equal(t, []string{
		"mkdir /",
		"write /index.html",
		"write /about.html",
		"mkdir /blog",
		"write /blog/index.html",
		"write /blog/feed.xml",
		"write /blog/post.html",
		"mkdir /img",
		"write /img/index.html",
		"copy /img/logo.png",
	}, out.order)
	assert.Equal(t, map[string]int{"directory": 3, "page": 2, "template": 1, "copy": 1}, rec.nodes)

	home, err := util.ReadFile(out.Billy(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "home 3", string(home))

	post, err := util.ReadFile(out.Billy(), "blog/post.html")
	require.NoError(t, err)
	assert.Contains(t, string(post), "<title>Post</title>")
	assert.Contains(t, string(post), "<p>Hello</p>")

	blogIndex, err := util.ReadFile(out.Billy(), "blog/index.html")
	require.NoError(t, err)
	assert.Contains(t, string(blogIndex), `<a href="post.html">post.html</a>`)
}

func TestRenderAll_ErrorIdentifiesNode(t *testing.T) {
	src := sampleSource()
	src["broken.template"] = &fstest.MapFile{Data: []byte("{{ .x | nosuchfunc }}")}
	root, _, err := NewBuilder(testConfig(), "").Build(t.Context(), src)
	require.NoError(t, err)

	err = RenderAll(t.Context(), newTestEnv(src, output.NewMemory()), root, nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "/broken", renderErr.Path)
	assert.Equal(t, "broken.template", renderErr.Source)
	assert.Equal(t, "template", renderErr.Kind)

	var tplErr *templates.Error
	assert.True(t, errors.As(err, &tplErr))
}
