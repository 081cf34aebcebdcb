package templates

import (
	"path"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/tree"
	"git.home.luguber.info/inful/sitegen/internal/vpath"
)

func funcMap(e *Engine) template.FuncMap {
	title := cases.Title(language.English)
	return template.FuncMap{
		"title":    title.String,
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"join":     path.Join,
		"dirname":  vpath.Dir,
		"basename": vpath.Base,
		"include":  e.include,
		"isdir":    isDir,
		"default": func(def string, v any) any {
			if s, ok := v.(string); (ok && s == "") || v == nil {
				return def
			}
			return v
		},
	}
}

// isDir accepts a tree node, a directory entry or a virtual path.
func isDir(v any) bool {
	switch x := v.(type) {
	case *tree.Directory:
		return true
	case tree.Entry:
		return x.IsDir
	case string:
		return vpath.IsRoot(x) || vpath.IsDirPath(x)
	default:
		return false
	}
}
