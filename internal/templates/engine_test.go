package templates

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/tree"
)

func TestEngine_SearchOrder(t *testing.T) {
	themeFS := fstest.MapFS{"page.template": {Data: []byte("theme page")}}
	builtinFS := fstest.MapFS{
		"page.template":      {Data: []byte("builtin page")},
		"directory.template": {Data: []byte("builtin dir")},
	}
	cwd := fstest.MapFS{"site/custom.template": {Data: []byte("from cwd")}}

	e := NewEngine(themeFS, builtinFS, cwd)

	out, err := e.Render("page.template", nil)
	require.NoError(t, err)
	assert.Equal(t, "theme page", out)

	out, err = e.Render("directory.template", nil)
	require.NoError(t, err)
	assert.Equal(t, "builtin dir", out)

	out, err = e.Render("site/custom.template", nil)
	require.NoError(t, err)
	assert.Equal(t, "from cwd", out)

	_, err = e.Render("missing.template", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = e.Render("../escape.template", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestEngine_AbsolutePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "index.html.template")
	require.NoError(t, os.WriteFile(file, []byte("Hello {{ .name }}"), 0o600))

	e := NewEngine()
	out, err := e.Render(file, map[string]any{"name": "abs"})
	require.NoError(t, err)
	assert.Equal(t, "Hello abs", out)

	_, err = e.Render(filepath.Join(filepath.Dir(file), "missing.template"), nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestEngine_CachesParsedTemplates(t *testing.T) {
	fsys := fstest.MapFS{"x.template": {Data: []byte("one")}}
	e := NewEngine(fsys)

	out, err := e.Render("x.template", nil)
	require.NoError(t, err)
	require.Equal(t, "one", out)

	fsys["x.template"] = &fstest.MapFile{Data: []byte("two")}
	out, err = e.Render("x.template", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)
}

func TestEngine_Funcs(t *testing.T) {
	fsys := fstest.MapFS{
		"f.template": {Data: []byte(`{{ title .s }}|{{ upper .s }}|{{ lower "AB" }}|{{ join "/assets" "style.css" }}|{{ dirname "/blog/index.html" }}|{{ basename "/blog/post.html" }}|{{ .missing | default "none" }}`)},
	}
	out, err := NewEngine(fsys).Render("f.template", map[string]any{"s": "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World|HELLO WORLD|ab|/assets/style.css|/blog|post.html|none", out)
}

func TestEngine_Include(t *testing.T) {
	fsys := fstest.MapFS{
		"page.template":   {Data: []byte(`<body>{{ include "footer.template" . }}</body>`)},
		"footer.template": {Data: []byte(`<footer>{{ .year }}</footer>`)},
		"loop.template":   {Data: []byte(`{{ include "loop.template" . }}`)},
	}
	e := NewEngine(fsys)

	out, err := e.Render("page.template", map[string]any{"year": 2024})
	require.NoError(t, err)
	assert.Equal(t, "<body><footer>2024</footer></body>", out)

	_, err = e.Render("loop.template", nil)
	require.ErrorContains(t, err, "nesting deeper than")
}

func TestEngine_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.template":  {Data: []byte("{{ .x ")},
		"exec.template": {Data: []byte("{{ .x.y.z }}")},
	}
	e := NewEngine(fsys)

	_, err := e.Render("bad.template", nil)
	require.ErrorContains(t, err, "parse template bad.template")
	var tplErr *Error
	require.ErrorAs(t, err, &tplErr)
	assert.Equal(t, "parse", tplErr.Op)

	_, err = e.Render("exec.template", map[string]any{"x": 3})
	require.ErrorContains(t, err, "render template exec.template")
}

func TestIsDir(t *testing.T) {
	dir := tree.NewDirectory("", nil, "", "directory.template")
	assert.True(t, isDir(dir))
	assert.False(t, isDir(tree.NewLinkNode("a", "b")))
	assert.True(t, isDir(tree.Entry{Name: "blog", IsDir: true}))
	assert.True(t, isDir("/blog/"))
	assert.True(t, isDir("/"))
	assert.False(t, isDir("/blog/post.html"))
	assert.False(t, isDir(42))
}
