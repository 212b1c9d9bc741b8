// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"text/template"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	"github.com/arthur-debert/solidhdf5/pkg/store"
	"github.com/arthur-debert/solidhdf5/pkg/ui/lipbalm"
	"github.com/arthur-debert/solidhdf5/pkg/ui/styles"
	"github.com/charmbracelet/lipgloss"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer runs results through templates and expands the style tags
type Renderer struct {
	output    io.Writer
	templates *template.Template
}

func funcs() template.FuncMap {
	fm := lipbalm.FuncMap()
	fm["attrs"] = func(a container.Attrs) string {
		return template.HTMLEscapeString(a.Format())
	}
	fm["shape"] = container.FormatShape
	fm["rows"] = func(a *container.Array) []string {
		var out []string
		for _, row := range a.Rows() {
			out = append(out, container.FormatRow(row, "\t"))
		}
		return out
	}
	return fm
}

// New creates a terminal renderer writing to w
func New(w io.Writer) (*Renderer, error) {
	lipbalm.SetDefaultRenderer(lipgloss.NewRenderer(w))

	tmpl, err := template.New("terminal").Funcs(funcs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{output: w, templates: tmpl}, nil
}

func (r *Renderer) execute(name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	logger := logging.GetLogger("ui.terminal")
	logger.Trace().Str("template", name).Str("output", buf.String()).Msg("Template executed")

	out, err := lipbalm.ExpandTags(buf.String(), styles.StyleRegistry)
	if err != nil {
		return fmt.Errorf("failed to expand tags: %w", err)
	}
	_, err = io.WriteString(r.output, out)
	return err
}

// RenderResult renders the results of store, load and show
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *store.StoreResult:
		return r.execute("store.tmpl", v)
	case []*store.StoreResult:
		for _, res := range v {
			if err := r.execute("store.tmpl", res); err != nil {
				return err
			}
		}
		return nil
	case *store.LoadResult:
		return r.execute("load.tmpl", v)
	case *store.Report:
		return r.execute("report.tmpl", v)
	case []*store.Report:
		for i, rep := range v {
			if i > 0 {
				if _, err := fmt.Fprintln(r.output); err != nil {
					return err
				}
			}
			if err := r.execute("report.tmpl", rep); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error in the error style
func (r *Renderer) RenderError(err error) error {
	msg := styles.GetStyle("Error").Render("Error:") + " " + err.Error()
	_, werr := fmt.Fprintln(r.output, msg)
	return werr
}

// RenderMessage renders a message in the info style
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.GetStyle("Info").Render(msg))
	return err
}
