// Package redact finds and undoes superficial redaction in page content.
//
// Two policies are available. Background analyses draw order: a fill
// painted over earlier text is removed, and text drawn on a fill of its
// own color is recolored. Simple removes rectangular fills in a size range
// and recolors text of listed colors without looking at draw order.
package redact

import (
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/model"
)

// Policy rewrites the operations of one page.
type Policy interface {
	Apply(ops []contentstream.Operation, overrides graphicsstate.Overrides) ([]contentstream.Operation, Findings)
}

// RemovedFill records a fill replaced by n.
type RemovedFill struct {
	ID    int64
	BBox  model.BBox
	Color graphicsstate.Color
}

// RecoloredText records a text-showing operator wrapped in a highlight.
type RecoloredText struct {
	ID       int64
	Operator string
	Origin   model.Point
	Color    graphicsstate.Color // color the text was drawn in
	Raw      []byte              // shown string bytes, undecoded
}

// Findings is what a policy changed on one page.
type Findings struct {
	Removed   []RemovedFill
	Recolored []RecoloredText
	Warnings  []error // malformed operands and invalid resources
}

// Changed reports whether the page was modified.
func (f Findings) Changed() bool {
	return len(f.Removed) > 0 || len(f.Recolored) > 0
}

// IsTextShow reports whether the operator shows text.
func IsTextShow(operator string) bool {
	switch operator {
	case "Tj", "TJ", "'", "\"":
		return true
	}
	return false
}

// ShownBytes returns the string bytes a text-showing operator draws. TJ
// strings are concatenated and its kerning numbers dropped.
func ShownBytes(op contentstream.Operation) []byte {
	if len(op.Operands) == 0 {
		return nil
	}
	switch last := op.Operands[len(op.Operands)-1].(type) {
	case core.String:
		return []byte(last)
	case core.Array:
		var out []byte
		for _, elem := range last {
			if s, ok := elem.(core.String); ok {
				out = append(out, string(s)...)
			}
		}
		return out
	}
	return nil
}

// fillBox returns the bounding box of the current path, or the zero box
// when it has no area.
func fillBox(state *graphicsstate.PageState) model.BBox {
	box, _ := state.Path.BBox()
	return box
}

// recolor wraps op so it is drawn in highlight and the previous non-stroke
// color is restored afterwards.
func recolor(op contentstream.Operation, state *graphicsstate.PageState, highlight graphicsstate.Color, mode graphicsstate.EmitMode) []contentstream.Operation {
	return []contentstream.Operation{
		highlight.Emit(false, mode),
		op,
		state.Graphics.Color.NonStroke.Emit(false, mode),
	}
}

var noPaint = contentstream.Operation{Operator: "n"}
