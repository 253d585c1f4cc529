package graphicsstate

import (
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
)

// LineCap is the shape at the open ends of stroked paths.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the shape at the corners of stroked paths.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// LineStyle holds the stroke parameters. They are tracked so the state is
// complete but play no part in redaction decisions.
type LineStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
	Dash       []float64
	DashPhase  float64
}

// NewLineStyle returns the PDF defaults.
func NewLineStyle() LineStyle {
	return LineStyle{Width: 1, Cap: CapButt, Join: JoinMiter, MiterLimit: 10}
}

// Clone returns a copy that shares no memory with ls.
func (ls LineStyle) Clone() LineStyle {
	if ls.Dash != nil {
		ls.Dash = append([]float64(nil), ls.Dash...)
	}
	return ls
}

func lineCapFromInt(v int64) LineCap {
	if v < int64(CapButt) || v > int64(CapSquare) {
		return CapButt
	}
	return LineCap(v)
}

func lineJoinFromInt(v int64) LineJoin {
	if v < int64(JoinMiter) || v > int64(JoinBevel) {
		return JoinMiter
	}
	return LineJoin(v)
}

// dashFromArray converts a dash array. It reports false if any element is
// not a number.
func dashFromArray(arr core.Array) ([]float64, bool) {
	dash := make([]float64, 0, len(arr))
	for _, elem := range arr {
		f, ok := core.ToFloat(elem)
		if !ok {
			return nil, false
		}
		dash = append(dash, f)
	}
	return dash, true
}

// Observe applies a line style operator.
func (ls *LineStyle) Observe(op contentstream.Operation) error {
	switch op.Operator {
	case "w", "M":
		nums, err := numbers(op, 1)
		if err != nil {
			return err
		}
		if op.Operator == "w" {
			ls.Width = nums[0]
		} else {
			ls.MiterLimit = nums[0]
		}

	case "J", "j":
		if len(op.Operands) != 1 {
			return malformed(op, "expected 1 operand, got %d", len(op.Operands))
		}
		v, ok := op.Int(0)
		if !ok {
			return malformed(op, "operand is %T, not an integer", op.Operands[0])
		}
		if op.Operator == "J" {
			ls.Cap = lineCapFromInt(v)
		} else {
			ls.Join = lineJoinFromInt(v)
		}

	case "d":
		if len(op.Operands) != 2 {
			return malformed(op, "expected 2 operands, got %d", len(op.Operands))
		}
		arr, ok := op.Operands[0].(core.Array)
		if !ok {
			return malformed(op, "dash operand is %T, not an array", op.Operands[0])
		}
		dash, ok := dashFromArray(arr)
		if !ok {
			return malformed(op, "dash array contains a non-number")
		}
		phase, ok := op.Number(1)
		if !ok {
			return malformed(op, "phase operand is %T, not a number", op.Operands[1])
		}
		ls.Dash = dash
		ls.DashPhase = phase
	}
	return nil
}
