package graphicsstate

import (
	"errors"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
)

// PageState is the full interpreter state for one page: the graphics
// state, its q/Q stack, the current path, the page's ExtGState overrides
// and the draw-order id of the last observed operator.
type PageState struct {
	Graphics GraphicsState
	Path     *Path

	overrides Overrides
	stack     []GraphicsState
	id        int64
}

// NewPageState returns the state before the first operator of a page.
// overrides may be nil.
func NewPageState(overrides Overrides) *PageState {
	return &PageState{
		Graphics:  NewGraphicsState(),
		Path:      NewPath(),
		overrides: overrides,
		id:        -1,
	}
}

// ID returns the draw-order id of the last observed operator, starting at
// 0 for the first one. It is -1 before any operator has been observed.
func (ps *PageState) ID() int64 {
	return ps.id
}

// Depth returns the number of saved graphics states.
func (ps *PageState) Depth() int {
	return len(ps.stack)
}

// Observe advances the state by one operator. Every operator receives a
// new id, recognised or not. The returned error is a warning: a
// *core.MalformedOperandsError or *core.InvalidResourceError after which
// the state is left as it was and processing may continue.
func (ps *PageState) Observe(op contentstream.Operation) error {
	ps.id++

	var err error
	switch op.Operator {
	case "q":
		ps.stack = append(ps.stack, ps.Graphics.Clone())
	case "Q":
		// An unbalanced Q is ignored
		if n := len(ps.stack); n > 0 {
			ps.Graphics = ps.stack[n-1]
			ps.stack = ps.stack[:n-1]
		}
	case "gs":
		err = ps.applyOverride(op)
	default:
		if err = ps.Graphics.Observe(op); err == nil {
			err = ps.Path.Observe(op)
		}
	}

	var mErr *core.MalformedOperandsError
	if errors.As(err, &mErr) {
		mErr.Index = ps.id
	}
	return err
}

func (ps *PageState) applyOverride(op contentstream.Operation) error {
	if len(op.Operands) != 1 {
		return malformed(op, "expected 1 operand, got %d", len(op.Operands))
	}
	name, ok := op.Name(0)
	if !ok {
		return malformed(op, "operand is %T, not a name", op.Operands[0])
	}
	ext, ok := ps.overrides[string(name)]
	if !ok {
		return &core.InvalidResourceError{Name: string(name), Reason: "not declared in the page's /ExtGState resources"}
	}
	ps.Graphics.Merge(ext)
	return nil
}
