// Package render produces complete SCO pages from segmented content.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	sprig "github.com/go-task/slim-sprig/v3"
)

//go:embed page.html.tmpl
var defaultTemplate []byte

// DefaultTemplate returns copy of built-in page template.
func DefaultTemplate() []byte {
	return bytes.Clone(defaultTemplate)
}

// Page is everything available to page template.
type Page struct {
	Title       string
	CourseTitle string
	// node markup, inserted as is
	Content template.HTML
	// verbatim <style>/<link> and <script> tags
	CSS template.HTML
	JS  template.HTML
	// neighbour page filenames, empty for the first and the last pages
	Prev string
	Next string
	// 1 based position in reading sequence
	Index int
	Total int
}

// Renderer turns page into full document text.
type Renderer interface {
	Render(p Page) (string, error)
}

// Template is Renderer backed by html/template with sprig functions.
type Template struct {
	tmpl *template.Template
}

// New parses page template source.
func New(name string, src []byte) (*Template, error) {
	tmpl, err := template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("unable to parse page template %s: %w", name, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// FromFile loads page template from path, empty path selects built-in one.
func FromFile(path string) (*Template, error) {
	if path == "" {
		return New("default", defaultTemplate)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read page template: %w", err)
	}
	return New(path, src)
}

func (t *Template) Render(p Page) (string, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, p); err != nil {
		return "", fmt.Errorf("unable to render page %q: %w", p.Title, err)
	}
	return buf.String(), nil
}
