package markdown

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Page is a converted markdown document as seen by templates.
type Page struct {
	// Content is the rendered HTML body.
	Content string
	// Meta holds header fields with lower-cased keys.
	Meta map[string]string
	Title string
	// Fingerprint identifies the raw header and body, see github.com/inful/mdfp.
	Fingerprint string
}

// Get returns a metadata value, or "" when the key is absent.
func (p *Page) Get(key string) string {
	return p.Meta[strings.ToLower(key)]
}

// Keys returns the metadata keys in sorted order.
func (p *Page) Keys() []string {
	keys := make([]string, 0, len(p.Meta))
	for k := range p.Meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
