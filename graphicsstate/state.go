package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/model"
)

// GraphicsState represents the PDF graphics state. Values are copied on q,
// so every field must be safe to copy with Clone.
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	Color ColorState
	Text  TextState
	Line  LineStyle

	StrokeAdjustment bool    // SA
	StrokeAlpha      float64 // CA
	NonStrokeAlpha   float64 // ca
	AlphaSource      bool    // AIS
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() GraphicsState {
	return GraphicsState{
		CTM:            model.Identity(),
		Color:          NewColorState(),
		Text:           NewTextState(),
		Line:           NewLineStyle(),
		StrokeAlpha:    1,
		NonStrokeAlpha: 1,
	}
}

// Clone creates a deep copy of the graphics state
func (gs GraphicsState) Clone() GraphicsState {
	gs.Line = gs.Line.Clone()
	return gs
}

// Observe applies cm and every color, text and line operator. q, Q and gs
// are handled by PageState, which owns the stack and the override table.
func (gs *GraphicsState) Observe(op contentstream.Operation) error {
	if op.Operator == "cm" {
		nums, err := numbers(op, 6)
		if err != nil {
			return err
		}
		m := model.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
		gs.CTM = m.Multiply(gs.CTM)
		return nil
	}

	if err := gs.Color.Observe(op); err != nil {
		return err
	}
	if err := gs.Text.Observe(op); err != nil {
		return err
	}
	return gs.Line.Observe(op)
}

// Merge copies every field present in ext into the state.
func (gs *GraphicsState) Merge(ext ExtGState) {
	if ext.LineWidth != nil {
		gs.Line.Width = *ext.LineWidth
	}
	if ext.LineCap != nil {
		gs.Line.Cap = *ext.LineCap
	}
	if ext.LineJoin != nil {
		gs.Line.Join = *ext.LineJoin
	}
	if ext.MiterLimit != nil {
		gs.Line.MiterLimit = *ext.MiterLimit
	}
	if ext.Dash != nil {
		gs.Line.Dash = append([]float64(nil), ext.Dash.Array...)
		gs.Line.DashPhase = ext.Dash.Phase
	}
	if ext.FontSize != nil {
		gs.Text.FontSize = *ext.FontSize
	}
	if ext.Knockout != nil {
		gs.Text.Knockout = *ext.Knockout
	}
	if ext.StrokeAlpha != nil {
		gs.StrokeAlpha = *ext.StrokeAlpha
	}
	if ext.NonStrokeAlpha != nil {
		gs.NonStrokeAlpha = *ext.NonStrokeAlpha
	}
	if ext.AlphaSource != nil {
		gs.AlphaSource = *ext.AlphaSource
	}
	if ext.StrokeAdjustment != nil {
		gs.StrokeAdjustment = *ext.StrokeAdjustment
	}
}

// numbers returns exactly want numeric operands or a malformed operands
// error.
func numbers(op contentstream.Operation, want int) ([]float64, error) {
	if len(op.Operands) != want {
		return nil, malformed(op, "expected %d operands, got %d", want, len(op.Operands))
	}
	nums, ok := op.Numbers()
	if !ok {
		return nil, malformed(op, "operands must be numbers")
	}
	return nums, nil
}

// malformed builds an error whose Index is filled in by PageState.
func malformed(op contentstream.Operation, format string, args ...interface{}) error {
	return &core.MalformedOperandsError{
		Operator: op.Operator,
		Index:    -1,
		Reason:   fmt.Sprintf(format, args...),
	}
}
