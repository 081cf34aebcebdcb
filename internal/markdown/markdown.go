// Package markdown converts markdown sources into pages for the page template.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// ErrInvalidPage wraps header errors that make a source unconvertible.
var ErrInvalidPage = errors.New("invalid page")

// Converter renders markdown with GitHub flavoured extensions.
type Converter struct {
	md goldmark.Markdown
}

func NewConverter() *Converter {
	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// ConvertFile reads name from fsys and converts it.
func (c *Converter) ConvertFile(fsys fs.FS, name string) (*Page, error) {
	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	page, err := c.Convert(source, path.Base(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return page, nil
}

// Convert renders source. name is used as the title of last resort.
func (c *Converter) Convert(source []byte, name string) (*Page, error) {
	header, body, had, err := frontmatter.Split(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}

	meta := map[string]string{}
	if had {
		fields, err := frontmatter.ParseYAML(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		for k, v := range fields {
			meta[strings.ToLower(k)] = stringify(v)
		}
	} else {
		headers, order, rest := frontmatter.SplitMeta(body)
		for _, k := range order {
			meta[strings.ToLower(k)] = strings.Join(headers[k], "\n")
		}
		header = body[:len(body)-len(rest)]
		body = rest
	}

	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	page := &Page{
		Content:     buf.String(),
		Meta:        meta,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(header), string(body)),
	}
	page.Title = meta["title"]
	if page.Title == "" {
		page.Title = firstHeading(page.Content)
	}
	if page.Title == "" {
		page.Title = TitleFromName(name)
	}
	return page, nil
}

// TitleFromName turns a file name like "getting-started.md" into "Getting Started".
func TitleFromName(name string) string {
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(strings.TrimSpace(stem))
}

func firstHeading(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.H1 {
			found = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(textOf(found))
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textOf(child))
	}
	return b.String()
}
