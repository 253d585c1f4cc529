package redact

import (
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/model"
	"github.com/tsawler/pdfreveal/rewriter"
)

// fillRecord is a fill seen during analysis.
type fillRecord struct {
	id     int64
	region graphicsstate.Region
	color  graphicsstate.Color
}

// originRecord is the origin of a text-showing operator seen during
// analysis.
type originRecord struct {
	id    int64
	point model.Point
}

// Background removes fills painted over earlier text and reveals text
// drawn in the same color as the fill beneath it. It needs two passes over
// the page: one to record fills and text origins, one to rewrite.
type Background struct {
	Highlight graphicsstate.Color
	EmitMode  graphicsstate.EmitMode
}

// NewBackground returns a Background policy that highlights in blue.
func NewBackground() *Background {
	return &Background{Highlight: graphicsstate.RGB(0, 0, 1)}
}

// Apply implements Policy.
func (b *Background) Apply(ops []contentstream.Operation, overrides graphicsstate.Overrides) ([]contentstream.Operation, Findings) {
	var fills []fillRecord
	var origins []originRecord

	rewriter.Observe(ops, overrides, func(op contentstream.Operation, state *graphicsstate.PageState) {
		switch {
		case graphicsstate.IsFillOperator(op.Operator):
			region := state.Path.Region(graphicsstate.FillRuleFor(op.Operator))
			if len(region.Subpaths) > 0 {
				fills = append(fills, fillRecord{id: state.ID(), region: region, color: state.Graphics.Color.NonStroke})
			}
		case IsTextShow(op.Operator):
			origins = append(origins, originRecord{id: state.ID(), point: state.Graphics.Text.Origin()})
		}
	})

	var findings Findings
	out, warnings := rewriter.Rewrite(ops, overrides, func(op contentstream.Operation, state *graphicsstate.PageState) []contentstream.Operation {
		switch {
		case graphicsstate.IsFillOperator(op.Operator):
			if occludesText(origins, state, op) {
				findings.Removed = append(findings.Removed, RemovedFill{
					ID:    state.ID(),
					BBox:  fillBox(state),
					Color: state.Graphics.Color.NonStroke,
				})
				return []contentstream.Operation{noPaint}
			}

		case IsTextShow(op.Operator):
			origin := state.Graphics.Text.Origin()
			bg, ok := latestFillUnder(fills, state.ID(), origin)
			if ok && bg.color.Equals(state.Graphics.Color.NonStroke) {
				findings.Recolored = append(findings.Recolored, RecoloredText{
					ID:       state.ID(),
					Operator: op.Operator,
					Origin:   origin,
					Color:    state.Graphics.Color.NonStroke,
					Raw:      ShownBytes(op),
				})
				return recolor(op, state, b.Highlight, b.EmitMode)
			}
		}
		return []contentstream.Operation{op}
	})
	findings.Warnings = warnings
	return out, findings
}

// occludesText reports whether the fill op covers the origin of any text
// drawn before it.
func occludesText(origins []originRecord, state *graphicsstate.PageState, op contentstream.Operation) bool {
	rule := graphicsstate.FillRuleFor(op.Operator)
	for _, o := range origins {
		if o.id >= state.ID() {
			break
		}
		if state.Path.Contains(o.point, rule) {
			return true
		}
	}
	return false
}

// latestFillUnder returns the most recent fill before id whose region
// contains p.
func latestFillUnder(fills []fillRecord, id int64, p model.Point) (fillRecord, bool) {
	for i := len(fills) - 1; i >= 0; i-- {
		f := fills[i]
		if f.id < id && f.region.Contains(p) {
			return f, true
		}
	}
	return fillRecord{}, false
}
