package pdfreveal

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/redact"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, ModeRectangle, cfg.Mode)
	assert.False(t, cfg.RemoveRectangles)
	assert.Equal(t, 20.0, cfg.EdgeLower)
	assert.Equal(t, 400.0, cfg.EdgeUpper)
	assert.True(t, cfg.Highlight.Equals(graphicsstate.RGB(0, 0, 1)))
	assert.Equal(t, graphicsstate.EmitCorrected, cfg.EmitMode)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.LessOrEqual(t, cfg.Workers, 64)
	assert.Equal(t, 2, cfg.MaxConcurrentDocs)
	assert.True(t, cfg.Compress)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "sideways" }, "Mode"},
		{"zero lower edge", func(c *Config) { c.EdgeLower = 0 }, "EdgeLower"},
		{"upper below lower", func(c *Config) { c.EdgeUpper = 10 }, "EdgeUpper"},
		{"unknown emit mode", func(c *Config) { c.EmitMode = 7 }, "EmitMode"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "Workers"},
		{"too many workers", func(c *Config) { c.Workers = 65 }, "Workers"},
		{"no documents", func(c *Config) { c.MaxConcurrentDocs = 0 }, "MaxConcurrentDocs"},
		{"too many documents", func(c *Config) { c.MaxConcurrentDocs = 17 }, "MaxConcurrentDocs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestConfigValidateEqualEdges(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.EdgeLower, cfg.EdgeUpper = 50, 50
	assert.NoError(t, cfg.Validate())
}

func TestConfigPolicy(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Mode = ModeBackground
	cfg.EmitMode = graphicsstate.EmitLegacy

	bg, ok := cfg.Policy().(*redact.Background)
	require.True(t, ok)
	assert.Equal(t, graphicsstate.EmitLegacy, bg.EmitMode)

	cfg = NewDefaultConfig()
	cfg.RemoveRectangles = true
	cfg.StrictRectangle = true
	cfg.EdgeLower, cfg.EdgeUpper = 5, 50
	cfg.TargetColors = []graphicsstate.Color{graphicsstate.Gray(0)}

	simple, ok := cfg.Policy().(*redact.Simple)
	require.True(t, ok)
	assert.True(t, simple.RemoveRectangles)
	assert.True(t, simple.Strict)
	assert.Equal(t, redact.Range{Lower: 5, Upper: 50}, simple.Range)
	require.Len(t, simple.TargetColors, 1)

	// the policy owns its color list
	simple.TargetColors[0] = graphicsstate.Gray(1)
	assert.True(t, cfg.TargetColors[0].Equals(graphicsstate.Gray(0)))
}

func TestConfigClone(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.TargetColors = []graphicsstate.Color{graphicsstate.Gray(0)}
	cfg.Workers = 2

	copied := cfg.clone()
	copied.TargetColors[0] = graphicsstate.Gray(1)
	copied.Workers = 3

	assert.True(t, cfg.TargetColors[0].Equals(graphicsstate.Gray(0)))
	assert.Equal(t, 2, cfg.Workers)
}
