// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/store"
)

// Renderer writes the plain layouts: store notes, the show listing and
// loaded arrays as tab separated rows
type Renderer struct {
	output io.Writer
}

// New creates a text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.output, s)
	return err
}

// RenderResult renders the results of store, load and show
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *store.StoreResult:
		return r.renderStore(v)
	case []*store.StoreResult:
		for i, res := range v {
			if i > 0 {
				if err := r.println(""); err != nil {
					return err
				}
			}
			if err := r.renderStore(res); err != nil {
				return err
			}
		}
		return nil
	case *store.LoadResult:
		return r.renderLoad(v)
	case *store.Report:
		return r.renderReport(v)
	case []*store.Report:
		for i, rep := range v {
			if i > 0 {
				if err := r.println(""); err != nil {
					return err
				}
			}
			if len(v) > 1 {
				if err := r.println("==> " + rep.Container + " <=="); err != nil {
					return err
				}
			}
			if err := r.renderReport(rep); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderStore(res *store.StoreResult) error {
	for _, note := range res.Notes {
		if err := r.println(note); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderReport(rep *store.Report) error {
	for line := range rep.Lines() {
		if err := r.println(line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderLoad(res *store.LoadResult) error {
	switch res.Outcome {
	case store.NotFound:
		return r.println(store.NoteNoData)
	case store.Inaccessible:
		return r.println(store.NoteNotAccessible)
	}

	lines := []string{
		"Path: " + res.Path,
		"Shape: " + container.FormatShape(res.Array.Shape),
		"Attributes: " + res.Attrs.Format(),
	}
	for _, l := range lines {
		if err := r.println(l); err != nil {
			return err
		}
	}
	for _, row := range res.Array.Rows() {
		if err := r.println(container.FormatRow(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.println(msg)
}
