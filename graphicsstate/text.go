package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/model"
)

// RenderingMode is the text rendering mode set by Tr.
type RenderingMode int

const (
	RenderFill RenderingMode = iota
	RenderStroke
	RenderFillStroke
	RenderInvisible
	RenderFillClip
	RenderStrokeClip
	RenderFillStrokeClip
	RenderClip
)

var renderingModeNames = [...]string{
	"Fill", "Stroke", "FillAndStroke", "Invisible",
	"FillClip", "StrokeClip", "FillStrokeClip", "Clip",
}

func (m RenderingMode) String() string {
	if m < 0 || int(m) >= len(renderingModeNames) {
		return fmt.Sprintf("RenderingMode(%d)", int(m))
	}
	return renderingModeNames[m]
}

// renderingModeFromInt maps a Tr operand to a mode. Out of range values
// fall back to Fill.
func renderingModeFromInt(v int64) RenderingMode {
	if v < 0 || v >= int64(len(renderingModeNames)) {
		return RenderFill
	}
	return RenderingMode(v)
}

// TextState represents text-specific state
type TextState struct {
	CharSpacing       float64 // Tc
	WordSpacing       float64 // Tw
	HorizontalScaling float64 // Tz, percent
	Leading           float64 // TL
	FontSize          float64 // Tf; the font itself is not tracked
	RenderingMode     RenderingMode
	Rise              float64 // Ts
	Knockout          bool    // ExtGState TK

	// LineMatrix is the text line matrix. Glyph advance is not modelled, so
	// the text matrix always equals it.
	LineMatrix model.Matrix
}

// NewTextState returns the initial text state.
func NewTextState() TextState {
	return TextState{
		HorizontalScaling: 100,
		Knockout:          true,
		LineMatrix:        model.Identity(),
	}
}

// Origin returns the start of the current line in text space.
func (ts *TextState) Origin() model.Point {
	return model.Point{X: ts.LineMatrix[4], Y: ts.LineMatrix[5]}
}

// translate moves the line matrix by (tx, ty) in its own frame.
func (ts *TextState) translate(tx, ty float64) {
	ts.LineMatrix = model.Translate(tx, ty).Multiply(ts.LineMatrix)
}

// Observe applies a text state or positioning operator.
func (ts *TextState) Observe(op contentstream.Operation) error {
	switch op.Operator {
	case "Tc", "Tw", "Tz", "TL", "Ts":
		nums, err := numbers(op, 1)
		if err != nil {
			return err
		}
		switch op.Operator {
		case "Tc":
			ts.CharSpacing = nums[0]
		case "Tw":
			ts.WordSpacing = nums[0]
		case "Tz":
			ts.HorizontalScaling = nums[0]
		case "TL":
			ts.Leading = nums[0]
		case "Ts":
			ts.Rise = nums[0]
		}

	case "Tf":
		if len(op.Operands) != 2 {
			return malformed(op, "expected 2 operands, got %d", len(op.Operands))
		}
		if _, ok := op.Name(0); !ok {
			return malformed(op, "font operand is %T, not a name", op.Operands[0])
		}
		size, ok := op.Number(1)
		if !ok {
			return malformed(op, "size operand is %T, not a number", op.Operands[1])
		}
		ts.FontSize = size

	case "Tr":
		if len(op.Operands) != 1 {
			return malformed(op, "expected 1 operand, got %d", len(op.Operands))
		}
		mode, ok := op.Int(0)
		if !ok {
			return malformed(op, "operand is %T, not an integer", op.Operands[0])
		}
		ts.RenderingMode = renderingModeFromInt(mode)

	case "BT", "ET":
		ts.LineMatrix = model.Identity()

	case "Td", "TD":
		nums, err := numbers(op, 2)
		if err != nil {
			return err
		}
		ts.translate(nums[0], nums[1])
		if op.Operator == "TD" {
			ts.Leading = -nums[1]
		}

	case "Tm":
		nums, err := numbers(op, 6)
		if err != nil {
			return err
		}
		ts.LineMatrix = model.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}

	case "T*":
		ts.translate(0, -ts.Leading)

	case "'":
		if len(op.Operands) != 1 {
			return malformed(op, "expected 1 operand, got %d", len(op.Operands))
		}
		ts.translate(0, -ts.Leading)

	case "\"":
		if len(op.Operands) != 3 {
			return malformed(op, "expected 3 operands, got %d", len(op.Operands))
		}
		aw, ok1 := op.Number(0)
		ac, ok2 := op.Number(1)
		if !ok1 || !ok2 {
			return malformed(op, "spacing operands must be numbers")
		}
		ts.WordSpacing = aw
		ts.CharSpacing = ac
	}
	return nil
}
