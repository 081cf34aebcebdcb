package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type format int

const (
	formatText format = iota
	formatJSON
)

func TestNormalizer(t *testing.T) {
	n := New("log format", map[string]format{"text": formatText, "json": formatJSON}, formatText)

	tests := []struct {
		raw  string
		want format
	}{
		{"json", formatJSON},
		{"  JSON ", formatJSON},
		{"Text", formatText},
		{"", formatText},
		{"yaml", formatText},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalizer_Parse(t *testing.T) {
	n := New("log format", map[string]format{"text": formatText, "json": formatJSON}, formatText)

	got, err := n.Parse(" Json")
	require.NoError(t, err)
	assert.Equal(t, formatJSON, got)

	got, err = n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, formatText, got)

	_, err = n.Parse("yaml")
	require.Error(t, err)
	assert.Equal(t, `invalid log format "yaml", valid options: json, text`, err.Error())

	assert.Equal(t, []string{"json", "text"}, n.Keys())
}
