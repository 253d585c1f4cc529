package contentstream

import (
	"fmt"

	"github.com/tsawler/pdfreveal/core"
)

// Operation represents a single content stream operation consisting of an
// operator and its operands. Operands are PDF objects that precede the operator.
type Operation struct {
	Operator string        // e.g. "Tj", "cm", "q"
	Operands []core.Object // in stream order

	// ImageData holds the raw bytes between ID and EI for a BI operation,
	// whose single operand is the inline image dictionary.
	ImageData []byte
}

// NewOperation builds an operation from an operator and operands.
func NewOperation(operator string, operands ...core.Object) Operation {
	return Operation{Operator: operator, Operands: operands}
}

// String renders the operation in content stream syntax, for logs.
func (op Operation) String() string {
	out, err := encodeOne(op)
	if err != nil {
		return fmt.Sprintf("%s <%v>", op.Operator, err)
	}
	return string(out)
}

// Numbers returns every operand as float64. It reports false if any operand
// is not a number.
func (op Operation) Numbers() ([]float64, bool) {
	nums := make([]float64, len(op.Operands))
	for i, operand := range op.Operands {
		f, ok := core.ToFloat(operand)
		if !ok {
			return nil, false
		}
		nums[i] = f
	}
	return nums, true
}

// Number returns operand i as a float64.
func (op Operation) Number(i int) (float64, bool) {
	if i < 0 || i >= len(op.Operands) {
		return 0, false
	}
	return core.ToFloat(op.Operands[i])
}

// Name returns operand i as a name.
func (op Operation) Name(i int) (core.Name, bool) {
	if i < 0 || i >= len(op.Operands) {
		return "", false
	}
	n, ok := op.Operands[i].(core.Name)
	return n, ok
}

// Int returns operand i as an integer. Reals with no fractional part are
// accepted.
func (op Operation) Int(i int) (int64, bool) {
	if i < 0 || i >= len(op.Operands) {
		return 0, false
	}
	return core.ToInt(op.Operands[i])
}
