package graphicsstate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
)

// ColorSpace identifies the device color space a Color is expressed in.
type ColorSpace int

const (
	DeviceGray ColorSpace = iota
	DeviceRGB
	DeviceCMYK
)

// String returns the PDF name of the color space.
func (cs ColorSpace) String() string {
	switch cs {
	case DeviceGray:
		return "DeviceGray"
	case DeviceRGB:
		return "DeviceRGB"
	case DeviceCMYK:
		return "DeviceCMYK"
	default:
		return fmt.Sprintf("ColorSpace(%d)", int(cs))
	}
}

// colorEpsilon is the single-precision machine epsilon. Colors are compared
// after conversion with this tolerance.
const colorEpsilon = 0x1p-23

// whiteTolerance is the looser tolerance used by IsWhite.
const whiteTolerance = 1e-6

// Color is a device color. Only the first Space.Components() entries of C
// are meaningful.
type Color struct {
	Space ColorSpace
	C     [4]float64
}

// Gray returns a DeviceGray color.
func Gray(g float64) Color {
	return Color{Space: DeviceGray, C: [4]float64{g}}
}

// RGB returns a DeviceRGB color.
func RGB(r, g, b float64) Color {
	return Color{Space: DeviceRGB, C: [4]float64{r, g, b}}
}

// CMYK returns a DeviceCMYK color.
func CMYK(c, m, y, k float64) Color {
	return Color{Space: DeviceCMYK, C: [4]float64{c, m, y, k}}
}

// Components returns the number of components for the color space.
func (cs ColorSpace) Components() int {
	switch cs {
	case DeviceRGB:
		return 3
	case DeviceCMYK:
		return 4
	default:
		return 1
	}
}

// ToRGB maps the color onto the common RGB approximation used for
// comparison. CMYK lands in a 0..255 range while gray and RGB stay in 0..1;
// recorded results depend on this exact mapping.
func (c Color) ToRGB() (r, g, b float64) {
	switch c.Space {
	case DeviceRGB:
		return c.C[0], c.C[1], c.C[2]
	case DeviceCMYK:
		k := 1 - c.C[3]
		return 255 * (1 - c.C[0]) * k, 255 * (1 - c.C[1]) * k, 255 * (1 - c.C[2]) * k
	default:
		return c.C[0], c.C[0], c.C[0]
	}
}

// Equals reports whether two colors map to the same RGB approximation.
func (c Color) Equals(other Color) bool {
	r1, g1, b1 := c.ToRGB()
	r2, g2, b2 := other.ToRGB()
	return math.Abs(r1-r2) <= colorEpsilon &&
		math.Abs(g1-g2) <= colorEpsilon &&
		math.Abs(b1-b2) <= colorEpsilon
}

// IsWhite reports whether the color is white in its own color space.
func (c Color) IsWhite() bool {
	near := func(v, want float64) bool { return math.Abs(v-want) <= whiteTolerance }
	switch c.Space {
	case DeviceRGB:
		return near(c.C[0], 1) && near(c.C[1], 1) && near(c.C[2], 1)
	case DeviceCMYK:
		return near(c.C[0], 0) && near(c.C[1], 0) && near(c.C[2], 0) && near(c.C[3], 0)
	default:
		return near(c.C[0], 1)
	}
}

// String renders the color in the literal form accepted on the command
// line, e.g. "rgb(1,0,0)".
func (c Color) String() string {
	var name string
	switch c.Space {
	case DeviceRGB:
		name = "rgb"
	case DeviceCMYK:
		name = "cmyk"
	default:
		name = "gray"
	}
	parts := make([]string, c.Space.Components())
	for i := range parts {
		parts[i] = strconv.FormatFloat(c.C[i], 'f', -1, 64)
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// EmitMode selects how a Color is written back as an operator.
type EmitMode int

const (
	// EmitCorrected writes g/G, rg/RG or k/K according to the color space.
	EmitCorrected EmitMode = iota
	// EmitLegacy reproduces older output: gray is written with the k/K
	// token and CMYK with the cs/CS token.
	EmitLegacy
)

// Emit returns the operator that sets this color as the stroke or
// non-stroke color.
func (c Color) Emit(stroke bool, mode EmitMode) contentstream.Operation {
	n := c.Space.Components()
	operands := make([]core.Object, n)
	for i := 0; i < n; i++ {
		operands[i] = core.Real(c.C[i])
	}

	var op string
	switch c.Space {
	case DeviceRGB:
		op = "rg"
	case DeviceCMYK:
		op = "k"
		if mode == EmitLegacy {
			op = "cs"
		}
	default:
		op = "g"
		if mode == EmitLegacy {
			op = "k"
		}
	}
	if stroke {
		op = strings.ToUpper(op)
	}
	return contentstream.Operation{Operator: op, Operands: operands}
}

// ColorState holds the current stroke and non-stroke colors.
type ColorState struct {
	Stroke    Color
	NonStroke Color
}

// NewColorState returns black for both stroke and non-stroke.
func NewColorState() ColorState {
	return ColorState{Stroke: Gray(0), NonStroke: Gray(0)}
}

// Observe applies a color operator. Operators it does not recognise are
// ignored. Malformed operands leave the state unchanged and are reported.
func (s *ColorState) Observe(op contentstream.Operation) error {
	var target *Color
	switch op.Operator {
	case "G", "RG", "K", "CS":
		target = &s.Stroke
	case "g", "rg", "k", "cs":
		target = &s.NonStroke
	default:
		return nil
	}

	switch op.Operator {
	case "g", "G":
		nums, err := numbers(op, 1)
		if err != nil {
			return err
		}
		*target = Gray(nums[0])
	case "rg", "RG":
		nums, err := numbers(op, 3)
		if err != nil {
			return err
		}
		*target = RGB(nums[0], nums[1], nums[2])
	case "k", "K":
		nums, err := numbers(op, 4)
		if err != nil {
			return err
		}
		*target = CMYK(nums[0], nums[1], nums[2], nums[3])
	case "cs", "CS":
		if len(op.Operands) != 1 {
			return malformed(op, "expected 1 operand, got %d", len(op.Operands))
		}
		name, ok := op.Name(0)
		if !ok {
			return malformed(op, "operand is %T, not a name", op.Operands[0])
		}
		switch name {
		case "DeviceGray":
			*target = Gray(0)
		case "DeviceRGB":
			*target = RGB(0, 0, 0)
		case "DeviceCMYK":
			*target = CMYK(0, 0, 0, 1)
		}
	}
	return nil
}
