package graphicsstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/model"
)

func observeText(t *testing.T, ts *TextState, content string) {
	t.Helper()
	for _, op := range mustDecode(t, content) {
		require.NoError(t, ts.Observe(op), "operator %s", op)
	}
}

func TestTextStateDefaults(t *testing.T) {
	ts := NewTextState()
	assert.Equal(t, 100.0, ts.HorizontalScaling)
	assert.True(t, ts.Knockout)
	assert.Equal(t, RenderFill, ts.RenderingMode)
	assert.True(t, ts.LineMatrix.IsIdentity())
	assert.Equal(t, model.Point{}, ts.Origin())
}

func TestTextStateFields(t *testing.T) {
	ts := NewTextState()
	observeText(t, &ts, "0.5 Tc 2 Tw 80 Tz 14 TL /F1 9 Tf 3 Tr 1.5 Ts")

	assert.Equal(t, 0.5, ts.CharSpacing)
	assert.Equal(t, 2.0, ts.WordSpacing)
	assert.Equal(t, 80.0, ts.HorizontalScaling)
	assert.Equal(t, 14.0, ts.Leading)
	assert.Equal(t, 9.0, ts.FontSize)
	assert.Equal(t, RenderInvisible, ts.RenderingMode)
	assert.Equal(t, 1.5, ts.Rise)
}

func TestTextRenderingModeOutOfRange(t *testing.T) {
	ts := NewTextState()
	observeText(t, &ts, "7 Tr")
	assert.Equal(t, RenderClip, ts.RenderingMode)
	observeText(t, &ts, "9 Tr")
	assert.Equal(t, RenderFill, ts.RenderingMode)
	assert.Equal(t, "Fill", ts.RenderingMode.String())
}

func TestTextPositioning(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.Point
		leading float64
	}{
		{"Td", "BT 10 20 Td", model.Point{X: 10, Y: 20}, 0},
		{"Td accumulates", "BT 10 20 Td 5 -5 Td", model.Point{X: 15, Y: 15}, 0},
		{"Td in scaled frame", "BT 2 0 0 2 100 100 Tm 5 5 Td", model.Point{X: 110, Y: 110}, 0},
		{"TD sets leading", "BT 0 700 Td 0 -14 TD", model.Point{X: 0, Y: 686}, 14},
		{"T* uses leading", "BT 0 700 Td 12 TL T* T*", model.Point{X: 0, Y: 676}, 12},
		{"quote moves down", "BT 0 700 Td 10 TL (a) '", model.Point{X: 0, Y: 690}, 10},
		{"double quote does not move", "BT 0 700 Td 10 TL 1 2 (a) \"", model.Point{X: 0, Y: 700}, 10},
		{"Tm replaces", "BT 50 50 Td 1 0 0 1 7 8 Tm", model.Point{X: 7, Y: 8}, 0},
		{"BT resets", "BT 50 50 Td ET BT", model.Point{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTextState()
			observeText(t, &ts, tt.content)
			assert.InDelta(t, tt.want.X, ts.Origin().X, 1e-9)
			assert.InDelta(t, tt.want.Y, ts.Origin().Y, 1e-9)
			assert.Equal(t, tt.leading, ts.Leading)
		})
	}
}

func TestTextDoubleQuoteSpacing(t *testing.T) {
	ts := NewTextState()
	observeText(t, &ts, "3 1 (x) \"")
	assert.Equal(t, 3.0, ts.WordSpacing)
	assert.Equal(t, 1.0, ts.CharSpacing)
}

func TestTextStateMalformed(t *testing.T) {
	for _, content := range []string{"9 Tf", "/F1 Tf", "1 Td", "1 2 3 Tm", "(a) Tr", "1 (x) \""} {
		t.Run(content, func(t *testing.T) {
			ts := NewTextState()
			ops := mustDecode(t, content)
			require.Len(t, ops, 1)

			err := ts.Observe(ops[0])
			var mErr *core.MalformedOperandsError
			require.True(t, errors.As(err, &mErr), "got %v", err)
			assert.Equal(t, NewTextState(), ts)
		})
	}
}
