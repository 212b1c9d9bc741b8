package lipbalm

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// NoFormatTag marks content that is only shown without color support
const NoFormatTag = "no-format"

// StyleMap maps tag names to styles
type StyleMap map[string]lipgloss.Style

var (
	mu       sync.RWMutex
	renderer *lipgloss.Renderer
)

// SetDefaultRenderer sets the renderer whose color profile decides whether
// styles are applied. It also becomes lipgloss's default renderer.
func SetDefaultRenderer(r *lipgloss.Renderer) {
	mu.Lock()
	defer mu.Unlock()
	renderer = r
	lipgloss.SetDefaultRenderer(r)
}

func colorEnabled() bool {
	mu.RLock()
	r := renderer
	mu.RUnlock()
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return r.ColorProfile() != termenv.Ascii
}

// Render executes tmpl with data and expands the style tags in the result
func Render(tmpl string, data interface{}, styles StyleMap) (string, error) {
	t, err := template.New("lipbalm").Funcs(FuncMap()).Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "template parse failed")
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "template execution failed")
	}
	return ExpandTags(buf.String(), styles)
}

// FuncMap returns the template helpers available to Render.
// esc escapes text so it cannot be mistaken for a tag.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"esc": template.HTMLEscapeString,
	}
}

// ExpandTags replaces style tags with styled text. Tags without a style
// are dropped and keep their text. Input that is not well formed is
// returned unchanged.
func ExpandTags(s string, styles StyleMap) (string, error) {
	if s == "" {
		return "", nil
	}
	root, ok := parse(s)
	if !ok {
		return s, nil
	}
	var b strings.Builder
	expand(&b, root, styles, colorEnabled())
	return b.String(), nil
}

// StripTags removes every tag and keeps the text, no-format content included
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	root, ok := parse(s)
	if !ok {
		return s
	}
	var b strings.Builder
	strip(&b, root)
	return b.String()
}

func parse(s string) (*etree.Element, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<lipbalm>" + s + "</lipbalm>"); err != nil {
		return nil, false
	}
	root := doc.Root()
	return root, root != nil
}

func expand(b *strings.Builder, el *etree.Element, styles StyleMap, color bool) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			if t.Tag == NoFormatTag {
				if !color {
					strip(b, t)
				}
				continue
			}
			var inner strings.Builder
			expand(&inner, t, styles, color)
			style, ok := styles[t.Tag]
			if !ok || !color {
				b.WriteString(inner.String())
				continue
			}
			b.WriteString(style.Render(inner.String()))
		}
	}
}

func strip(b *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			strip(b, t)
		}
	}
}
