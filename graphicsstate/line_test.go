package graphicsstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineStyleObserve(t *testing.T) {
	ls := NewLineStyle()
	for _, op := range mustDecode(t, "3 w 1 J 2 j 4 M [2 1] 0.5 d") {
		require.NoError(t, ls.Observe(op))
	}

	assert.Equal(t, LineStyle{
		Width:      3,
		Cap:        CapRound,
		Join:       JoinBevel,
		MiterLimit: 4,
		Dash:       []float64{2, 1},
		DashPhase:  0.5,
	}, ls)
}

func TestLineStyleUnknownEnums(t *testing.T) {
	ls := NewLineStyle()
	ls.Cap, ls.Join = CapSquare, JoinRound
	for _, op := range mustDecode(t, "7 J -1 j") {
		require.NoError(t, ls.Observe(op))
	}
	assert.Equal(t, CapButt, ls.Cap)
	assert.Equal(t, JoinMiter, ls.Join)
}

func TestLineStyleMalformedDash(t *testing.T) {
	ls := NewLineStyle()
	for _, content := range []string{"[2 1] d", "[(a)] 0 d", "2 0 d"} {
		ops := mustDecode(t, content)
		require.Len(t, ops, 1)
		assert.Error(t, ls.Observe(ops[0]), content)
	}
	assert.Equal(t, NewLineStyle(), ls)
}

func TestLineStyleClone(t *testing.T) {
	ls := NewLineStyle()
	ls.Dash = []float64{3, 3}
	clone := ls.Clone()
	clone.Dash[0] = 9
	assert.Equal(t, 3.0, ls.Dash[0])
}
