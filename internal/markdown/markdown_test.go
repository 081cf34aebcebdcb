package markdown

import (
	"testing"
	"testing/fstest"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

func TestConvert_YAMLFrontmatter(t *testing.T) {
	src := []byte("---\nTitle: Hello World\nAuthor: Ann\ndate: 2024-01-02\ntags: [a, b]\n---\n# Heading\n\nSome *text*.\n")

	page, err := NewConverter().Convert(src, "hello.md")
	require.NoError(t, err)

	assert.Equal(t, "Hello World", page.Title)
	assert.Equal(t, "Ann", page.Meta["author"])
	assert.Equal(t, "Ann", page.Get("Author"))
	assert.Equal(t, "2024-01-02", page.Meta["date"])
	assert.Equal(t, "a, b", page.Meta["tags"])
	assert.Equal(t, []string{"author", "date", "tags", "title"}, page.Keys())
	assert.Contains(t, page.Content, `<h1 id="heading">Heading</h1>`)
	assert.Contains(t, page.Content, "<em>text</em>")
}

func TestConvert_MetaHeaders(t *testing.T) {
	src := []byte("Title: Meta Page\nSummary: first line\n    second line\n\nBody text.\n")

	page, err := NewConverter().Convert(src, "meta.md")
	require.NoError(t, err)

	assert.Equal(t, "Meta Page", page.Title)
	assert.Equal(t, "first line\nsecond line", page.Meta["summary"])
	assert.Equal(t, "<p>Body text.</p>\n", page.Content)
}

func TestConvert_TitleFallbacks(t *testing.T) {
	c := NewConverter()

	page, err := c.Convert([]byte("# The *First* Heading\n\n# Second\n"), "x.md")
	require.NoError(t, err)
	assert.Equal(t, "The First Heading", page.Title)

	page, err = c.Convert([]byte("just text\n"), "getting-started.md")
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", page.Title)
	assert.Empty(t, page.Meta)
}

func TestConvert_GFMAndRawHTML(t *testing.T) {
	src := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n<div class=\"note\">raw</div>\n")

	page, err := NewConverter().Convert(src, "gfm.md")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "<table>")
	assert.Contains(t, page.Content, "<del>gone</del>")
	assert.Contains(t, page.Content, `<div class="note">raw</div>`)
}

func TestConvert_Fingerprint(t *testing.T) {
	src := []byte("---\ntitle: x\n---\nbody\n")

	page, err := NewConverter().Convert(src, "x.md")
	require.NoError(t, err)
	assert.Equal(t, mdfp.CalculateFingerprintFromParts("title: x\n", "body\n"), page.Fingerprint)

	other, err := NewConverter().Convert([]byte("---\ntitle: x\n---\nchanged\n"), "x.md")
	require.NoError(t, err)
	assert.NotEqual(t, page.Fingerprint, other.Fingerprint)
}

func TestConvert_BadFrontmatter(t *testing.T) {
	_, err := NewConverter().Convert([]byte("---\ntitle: x\nno closing\n"), "x.md")
	require.ErrorIs(t, err, ErrInvalidPage)
	require.ErrorIs(t, err, frontmatter.ErrMissingClosingDelimiter)

	_, err = NewConverter().Convert([]byte("---\ntitle: [x\n---\n"), "x.md")
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestConvertFile(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/post.md": {Data: []byte("Title: Post\n\nHi\n")},
	}

	page, err := NewConverter().ConvertFile(fsys, "blog/post.md")
	require.NoError(t, err)
	assert.Equal(t, "Post", page.Title)

	_, err = NewConverter().ConvertFile(fsys, "blog/missing.md")
	require.Error(t, err)
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "Index", TitleFromName("index.md"))
	assert.Equal(t, "Release Notes", TitleFromName("dir/release_notes.md"))
}
