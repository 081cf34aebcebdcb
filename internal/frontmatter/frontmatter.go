// Package frontmatter separates document metadata from a markdown body.
//
// Two header styles are recognised: a YAML block fenced by "---" lines, and
// MultiMarkdown style "Key: value" lines ending at the first blank line.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter from the body. had is false and body is
// the whole input when the document does not start with "---".
func Split(content []byte) (frontmatter, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing fence on the last line without a newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			return content[start : len(content)-len("---")], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// SplitMeta consumes MultiMarkdown style header lines. Lines indented by four
// or more spaces continue the previous key. Parsing stops at the first blank
// line, which is consumed; a line that is not a header ends the block and the
// whole input is returned as body when no header was read.
func SplitMeta(content []byte) (meta map[string][]string, order []string, body []byte) {
	meta = map[string][]string{}
	rest := content
	var last string
	for len(rest) > 0 {
		line, next, _ := bytes.Cut(rest, []byte("\n"))
		text := strings.TrimRight(string(line), "\r")

		if strings.TrimSpace(text) == "" {
			if len(order) > 0 {
				rest = next
			}
			break
		}
		if last != "" && strings.HasPrefix(text, "    ") {
			meta[last] = append(meta[last], strings.TrimSpace(text))
			rest = next
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		key = strings.TrimSpace(key)
		if !ok || !validMetaKey(key) {
			break
		}
		if _, seen := meta[key]; !seen {
			order = append(order, key)
		}
		meta[key] = append(meta[key], strings.TrimSpace(value))
		last = key
		rest = next
	}
	if len(order) == 0 {
		return meta, nil, content
	}
	return meta, order, rest
}

func validMetaKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
