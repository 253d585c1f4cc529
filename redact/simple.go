package redact

import (
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/rewriter"
)

// Simple removes rectangular fills whose sides fall within Range and
// recolors text drawn in any of TargetColors.
type Simple struct {
	RemoveRectangles bool
	Range            Range
	// Strict also requires four perpendicular edges; otherwise only the
	// bounding box of the fill is checked.
	Strict       bool
	TargetColors []graphicsstate.Color
	Highlight    graphicsstate.Color
	EmitMode     graphicsstate.EmitMode
}

// NewSimple returns a Simple policy with the default range that neither
// removes nor recolors anything until configured.
func NewSimple() *Simple {
	return &Simple{Range: DefaultRange(), Highlight: graphicsstate.RGB(0, 0, 1)}
}

// Apply implements Policy.
func (s *Simple) Apply(ops []contentstream.Operation, overrides graphicsstate.Overrides) ([]contentstream.Operation, Findings) {
	var findings Findings
	out, warnings := rewriter.Rewrite(ops, overrides, func(op contentstream.Operation, state *graphicsstate.PageState) []contentstream.Operation {
		switch {
		case graphicsstate.IsFillOperator(op.Operator):
			if s.RemoveRectangles && s.isRectangle(state.Path) {
				findings.Removed = append(findings.Removed, RemovedFill{
					ID:    state.ID(),
					BBox:  fillBox(state),
					Color: state.Graphics.Color.NonStroke,
				})
				return []contentstream.Operation{noPaint}
			}

		case IsTextShow(op.Operator):
			current := state.Graphics.Color.NonStroke
			if s.isTarget(current) {
				findings.Recolored = append(findings.Recolored, RecoloredText{
					ID:       state.ID(),
					Operator: op.Operator,
					Origin:   state.Graphics.Text.Origin(),
					Color:    current,
					Raw:      ShownBytes(op),
				})
				return recolor(op, state, s.Highlight, s.EmitMode)
			}
		}
		return []contentstream.Operation{op}
	})
	findings.Warnings = warnings
	return out, findings
}

func (s *Simple) isRectangle(p *graphicsstate.Path) bool {
	if s.Strict {
		return p.IsStrictRectangle(s.Range.Lower, s.Range.Upper)
	}
	return p.IsRectangle(s.Range.Lower, s.Range.Upper)
}

func (s *Simple) isTarget(c graphicsstate.Color) bool {
	for _, target := range s.TargetColors {
		if target.Equals(c) {
			return true
		}
	}
	return false
}
