package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Hello\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_EmptyFrontmatter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplit_ClosingFenceAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Hello\ntags:\n  - a\n  - b\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", fields["title"])
	assert.Equal(t, []any{"a", "b"}, fields["tags"])

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseYAML([]byte("title: [unclosed"))
	require.Error(t, err)
}

func TestSplitMeta(t *testing.T) {
	input := []byte("Title: My Page\nAuthor: Ann\n    Bob\nDate: 2024-01-01\n\n# Heading\n")

	meta, order, body := SplitMeta(input)
	assert.Equal(t, []string{"Title", "Author", "Date"}, order)
	assert.Equal(t, []string{"My Page"}, meta["Title"])
	assert.Equal(t, []string{"Ann", "Bob"}, meta["Author"])
	assert.Equal(t, []byte("# Heading\n"), body)
}

func TestSplitMeta_NoHeaders(t *testing.T) {
	for _, input := range []string{
		"# Heading\n\ntext\n",
		"\nTitle: not a header\n",
		"Just a sentence: with a colon in it\n",
	} {
		meta, order, body := SplitMeta([]byte(input))
		assert.Empty(t, meta, input)
		assert.Empty(t, order, input)
		assert.Equal(t, []byte(input), body, input)
	}
}

func TestSplitMeta_HeaderOnlyDocument(t *testing.T) {
	meta, order, body := SplitMeta([]byte("Title: Only"))
	assert.Equal(t, []string{"Title"}, order)
	assert.Equal(t, []string{"Only"}, meta["Title"])
	assert.Empty(t, body)
}
