package redact

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/pdfreveal/graphicsstate"
)

var (
	// ErrColorSyntax is returned for text that is not a color literal.
	ErrColorSyntax = errors.New("cannot parse the color, make sure it looks like rgb(0.1,0.7,0.8)")
	// ErrColorParams is returned when a color literal has the wrong number
	// of components for its space.
	ErrColorParams = errors.New("the number of parameters is wrong")

	// ErrRangeSyntax is returned for text that is not a range literal.
	ErrRangeSyntax = errors.New("range must have the form <number>..<number>")
	// ErrRangeBounds is returned when a range does not satisfy
	// 0 < lower <= upper.
	ErrRangeBounds = errors.New("range must satisfy 0 < lower <= upper")
)

var colorLiteral = regexp.MustCompile(`^(gray|rgb|cmyk)\(((?:[0-9.]+,? *)*)\)$`)

// ParseColor parses gray(g), rgb(r,g,b) or cmyk(c,m,y,k).
func ParseColor(s string) (graphicsstate.Color, error) {
	m := colorLiteral.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return graphicsstate.Color{}, fmt.Errorf("%q: %w", s, ErrColorSyntax)
	}

	var params []float64
	for _, field := range strings.Split(m[2], ",") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
			params = append(params, v)
		}
	}

	switch {
	case m[1] == "gray" && len(params) == 1:
		return graphicsstate.Gray(params[0]), nil
	case m[1] == "rgb" && len(params) == 3:
		return graphicsstate.RGB(params[0], params[1], params[2]), nil
	case m[1] == "cmyk" && len(params) == 4:
		return graphicsstate.CMYK(params[0], params[1], params[2], params[3]), nil
	}
	return graphicsstate.Color{}, fmt.Errorf("%q: %w", s, ErrColorParams)
}

// Range is a half-open interval [Lower, Upper) of edge lengths.
type Range struct {
	Lower float64
	Upper float64
}

// DefaultRange returns 20..400.
func DefaultRange() Range {
	return Range{Lower: 20, Upper: 400}
}

func (r Range) String() string {
	return strconv.FormatFloat(r.Lower, 'f', -1, 64) + ".." + strconv.FormatFloat(r.Upper, 'f', -1, 64)
}

// ParseRange parses lower..upper.
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "..")
	if !ok {
		return Range{}, fmt.Errorf("%q: %w", s, ErrRangeSyntax)
	}
	lower, err1 := strconv.ParseFloat(lo, 64)
	upper, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil {
		return Range{}, fmt.Errorf("%q: %w", s, ErrRangeSyntax)
	}
	if !(0 < lower && lower <= upper) {
		return Range{}, fmt.Errorf("%q: %w", s, ErrRangeBounds)
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// Set implements flag.Value.
func (r *Range) Set(s string) error {
	parsed, err := ParseRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ColorList collects repeated color flags. It implements flag.Value.
type ColorList []graphicsstate.Color

func (l *ColorList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, c := range *l {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Set implements flag.Value.
func (l *ColorList) Set(s string) error {
	c, err := ParseColor(s)
	if err != nil {
		return err
	}
	*l = append(*l, c)
	return nil
}
