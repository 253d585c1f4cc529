package graphicsstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/model"
)

func mustDecode(t *testing.T, content string) []contentstream.Operation {
	t.Helper()
	ops, err := contentstream.Decode([]byte(content))
	require.NoError(t, err)
	return ops
}

// TestNewGraphicsState tests initial state
func TestNewGraphicsState(t *testing.T) {
	gs := NewGraphicsState()

	assert.True(t, gs.CTM.IsIdentity())
	assert.Equal(t, Gray(0), gs.Color.Stroke)
	assert.Equal(t, Gray(0), gs.Color.NonStroke)
	assert.Equal(t, 1.0, gs.Line.Width)
	assert.Equal(t, 10.0, gs.Line.MiterLimit)
	assert.Equal(t, 1.0, gs.StrokeAlpha)
	assert.Equal(t, 1.0, gs.NonStrokeAlpha)
	assert.False(t, gs.StrokeAdjustment)
	assert.False(t, gs.AlphaSource)
}

func TestConcatenateMatrix(t *testing.T) {
	gs := NewGraphicsState()
	for _, op := range mustDecode(t, "2 0 0 2 0 0 cm 1 0 0 1 10 10 cm") {
		require.NoError(t, gs.Observe(op))
	}

	assert.Equal(t, model.Matrix{2, 0, 0, 2, 20, 20}, gs.CTM)
	assert.Equal(t, model.Point{X: 22, Y: 22}, gs.CTM.Transform(model.Point{X: 1, Y: 1}))
}

func TestConcatenateMatrixMalformed(t *testing.T) {
	gs := NewGraphicsState()
	ops := mustDecode(t, "1 0 0 1 cm")
	assert.Error(t, gs.Observe(ops[0]))
	assert.True(t, gs.CTM.IsIdentity())
}

func TestGraphicsStateDelegates(t *testing.T) {
	gs := NewGraphicsState()
	for _, op := range mustDecode(t, "1 0 0 rg 4 w BT 5 6 Td") {
		require.NoError(t, gs.Observe(op))
	}
	assert.Equal(t, RGB(1, 0, 0), gs.Color.NonStroke)
	assert.Equal(t, 4.0, gs.Line.Width)
	assert.Equal(t, model.Point{X: 5, Y: 6}, gs.Text.Origin())
}

func TestGraphicsStateMergeIsPartial(t *testing.T) {
	gs := NewGraphicsState()
	gs.Line.Width = 7
	gs.Text.FontSize = 11

	alpha := 0.5
	knockout := false
	gs.Merge(ExtGState{NonStrokeAlpha: &alpha, Knockout: &knockout})

	assert.Equal(t, 0.5, gs.NonStrokeAlpha)
	assert.Equal(t, 1.0, gs.StrokeAlpha)
	assert.False(t, gs.Text.Knockout)
	assert.Equal(t, 7.0, gs.Line.Width)
	assert.Equal(t, 11.0, gs.Text.FontSize)
}

func TestGraphicsStateCloneIsDeep(t *testing.T) {
	gs := NewGraphicsState()
	gs.Line.Dash = []float64{1, 2}

	clone := gs.Clone()
	clone.Line.Dash[0] = 5

	assert.Equal(t, []float64{1, 2}, gs.Line.Dash)
}
