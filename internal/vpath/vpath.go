// Package vpath classifies and decomposes slash-separated virtual tree paths.
//
// Virtual paths always use "/" regardless of the host separator. An absolute
// path decomposes with a leading "/" element:
//
//	Split("/blog/post.html", false) == []string{"/", "blog", "post.html"}
//	Split("blog/", true)            == []string{"blog", ""}
package vpath

import (
	"path/filepath"
	"strings"
)

// Sep is the virtual tree separator.
const Sep = "/"

// IsRoot reports whether p is empty after stripping trailing separators.
func IsRoot(p string) bool {
	return strings.TrimRight(p, Sep) == ""
}

// IsDirPath reports whether p names a directory: it ends in a separator and is not the root.
func IsDirPath(p string) bool {
	stripped := strings.TrimRight(p, Sep)
	return stripped != "" && stripped != p
}

// Split decomposes p into root-to-leaf elements. With keepTrailing set and p a
// directory path, an empty sentinel element closes the sequence.
func Split(p string, keepTrailing bool) []string {
	return split(p, Sep, keepTrailing)
}

func split(p, sep string, keepTrailing bool) []string {
	if p == "" {
		return []string{}
	}
	trailing := keepTrailing && isDirPathSep(p, sep)

	var elems []string
	if strings.HasPrefix(p, sep) {
		elems = append(elems, Sep)
	}
	for _, e := range strings.Split(p, sep) {
		if e != "" {
			elems = append(elems, e)
		}
	}
	if trailing {
		elems = append(elems, "")
	}
	return elems
}

func isDirPathSep(p, sep string) bool {
	stripped := strings.TrimRight(p, sep)
	return stripped != "" && stripped != p
}

// Join is the inverse of Split.
func Join(elems ...string) string {
	if len(elems) == 0 {
		return ""
	}
	var b strings.Builder
	rest := elems
	if rest[0] == Sep {
		b.WriteString(Sep)
		rest = rest[1:]
	}
	trailing := len(rest) > 0 && rest[len(rest)-1] == ""
	if trailing {
		rest = rest[:len(rest)-1]
	}
	b.WriteString(strings.Join(rest, Sep))
	if trailing && len(rest) > 0 {
		b.WriteString(Sep)
	}
	return b.String()
}

// Dir returns everything but the last element of p, POSIX dirname style.
func Dir(p string) string {
	p = stripTrailing(p)
	i := strings.LastIndex(p, Sep)
	switch {
	case i < 0:
		return "."
	case strings.TrimRight(p[:i], Sep) == "":
		return Sep
	default:
		return strings.TrimRight(p[:i], Sep)
	}
}

// Base returns the last element of p, ignoring trailing separators. The root yields "".
func Base(p string) string {
	p = stripTrailing(p)
	if p == "" || p == Sep {
		return ""
	}
	return p[strings.LastIndex(p, Sep)+1:]
}

func stripTrailing(p string) string {
	if IsRoot(p) {
		if p == "" {
			return ""
		}
		return Sep
	}
	return strings.TrimRight(p, Sep)
}

// FromOS converts a host path to a virtual path.
func FromOS(p string) string {
	return Join(split(p, string(filepath.Separator), true)...)
}

// ToOS converts a virtual path to a host path.
func ToOS(p string) string {
	elems := Split(p, true)
	if len(elems) == 0 {
		return ""
	}
	var b strings.Builder
	rest := elems
	if rest[0] == Sep {
		b.WriteRune(filepath.Separator)
		rest = rest[1:]
	}
	trailing := len(rest) > 0 && rest[len(rest)-1] == ""
	if trailing {
		rest = rest[:len(rest)-1]
	}
	b.WriteString(strings.Join(rest, string(filepath.Separator)))
	if trailing && len(rest) > 0 {
		b.WriteRune(filepath.Separator)
	}
	return b.String()
}

// Rel strips the leading separator so p can be used as an fs.FS or billy name.
// The root maps to ".".
func Rel(p string) string {
	elems := Split(p, false)
	if len(elems) > 0 && elems[0] == Sep {
		elems = elems[1:]
	}
	if len(elems) == 0 {
		return "."
	}
	return strings.Join(elems, Sep)
}
