// Package rewriter replays a page's operations through a PageState and
// lets a caller decide what to emit in place of each one.
package rewriter

import (
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/logger"
)

// DecisionFunc returns the operations to emit for op. state has already
// observed op, so state.ID() is op's draw-order id. Returning nil drops the
// operation.
type DecisionFunc func(op contentstream.Operation, state *graphicsstate.PageState) []contentstream.Operation

// VisitFunc inspects op after state has observed it.
type VisitFunc func(op contentstream.Operation, state *graphicsstate.PageState)

// Keep is a DecisionFunc that emits every operation unchanged.
func Keep(op contentstream.Operation, _ *graphicsstate.PageState) []contentstream.Operation {
	return []contentstream.Operation{op}
}

// Rewrite feeds each operation to a fresh PageState built from overrides
// and collects whatever decide returns, in order. Warnings from the state
// (malformed operands, unknown resources) are returned; they never stop
// the rewrite.
func Rewrite(ops []contentstream.Operation, overrides graphicsstate.Overrides, decide DecisionFunc) ([]contentstream.Operation, []error) {
	state := graphicsstate.NewPageState(overrides)
	out := make([]contentstream.Operation, 0, len(ops))
	var warnings []error

	for _, op := range ops {
		if err := state.Observe(op); err != nil {
			warnings = append(warnings, err)
			logger.Debug("operator skipped by state tracking", "id", state.ID(), "error", err)
		}
		out = append(out, decide(op, state)...)
	}
	return out, warnings
}

// Observe is Rewrite without output: visit is called for each operation.
func Observe(ops []contentstream.Operation, overrides graphicsstate.Overrides, visit VisitFunc) []error {
	state := graphicsstate.NewPageState(overrides)
	var warnings []error

	for _, op := range ops {
		if err := state.Observe(op); err != nil {
			warnings = append(warnings, err)
			logger.Debug("operator skipped by state tracking", "id", state.ID(), "error", err)
		}
		visit(op, state)
	}
	return warnings
}
