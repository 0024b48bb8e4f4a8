// Package render formats command results for the terminal. Commands
// hand it model values; the plain renderer knows how to lay them out,
// the JSON and XML renderers are shape-generic.
package render

import "io"

// Format selects the output renderer.
type Format int

const (
	Plain Format = iota
	JSON
	XML
)

// Renderer writes one command result.
type Renderer interface {
	Render(v any) error
}

// New returns the renderer for format writing to w.
func New(format Format, w io.Writer) Renderer {
	switch format {
	case JSON:
		return &jsonRenderer{w: w}
	case XML:
		return &xmlRenderer{w: w}
	default:
		return &plainRenderer{w: w}
	}
}
