package pdfreveal

import (
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/logger"
	"github.com/tsawler/pdfreveal/redact"
)

// Mode selects the redaction policy.
type Mode string

const (
	// ModeBackground removes fills drawn over earlier text and recolors
	// text drawn on a fill of its own color.
	ModeBackground Mode = "background"
	// ModeRectangle removes rectangular fills by size and recolors text of
	// listed colors.
	ModeRectangle Mode = "rectangle"
)

// Config holds every setting of a run.
type Config struct {
	Mode Mode `validate:"oneof=background rectangle"`

	// Rectangle mode only.
	RemoveRectangles bool
	EdgeLower        float64 `validate:"gt=0"`
	EdgeUpper        float64 `validate:"gtefield=EdgeLower"`
	StrictRectangle  bool
	TargetColors     []graphicsstate.Color `validate:"dive"`

	Highlight graphicsstate.Color
	EmitMode  graphicsstate.EmitMode `validate:"oneof=0 1"`

	Workers           int `validate:"min=1,max=64"`
	MaxConcurrentDocs int `validate:"min=1,max=16"`
	Compress          bool
	Logger            logger.LogFunc
}

// NewDefaultConfig returns a rectangle-mode config that changes nothing
// until rectangles or target colors are enabled.
func NewDefaultConfig() *Config {
	return &Config{
		Mode:              ModeRectangle,
		EdgeLower:         20,
		EdgeUpper:         400,
		Highlight:         graphicsstate.RGB(0, 0, 1),
		EmitMode:          graphicsstate.EmitCorrected,
		Workers:           defaultWorkers(),
		MaxConcurrentDocs: 2,
		Compress:          true,
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 64 {
		return 64
	}
	return n
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}

// Policy builds the redaction policy the config describes.
func (cfg *Config) Policy() redact.Policy {
	if cfg.Mode == ModeBackground {
		return &redact.Background{Highlight: cfg.Highlight, EmitMode: cfg.EmitMode}
	}
	return &redact.Simple{
		RemoveRectangles: cfg.RemoveRectangles,
		Range:            redact.Range{Lower: cfg.EdgeLower, Upper: cfg.EdgeUpper},
		Strict:           cfg.StrictRectangle,
		TargetColors:     append([]graphicsstate.Color(nil), cfg.TargetColors...),
		Highlight:        cfg.Highlight,
		EmitMode:         cfg.EmitMode,
	}
}

// clone copies the config, including its color list.
func (cfg Config) clone() Config {
	if cfg.TargetColors != nil {
		cfg.TargetColors = append([]graphicsstate.Color(nil), cfg.TargetColors...)
	}
	return cfg
}
