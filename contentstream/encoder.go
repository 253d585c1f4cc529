package contentstream

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pdfreveal/core"
)

// Encode serializes operations back into content stream syntax, one
// operation per line. Failures are reported as *core.EncodeError naming the
// offending operation.
func Encode(ops []Operation) ([]byte, error) {
	var buf bytes.Buffer
	for i, op := range ops {
		line, err := encodeOne(op)
		if err != nil {
			return nil, &core.EncodeError{Page: -1, Index: i, Operator: op.Operator, Err: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func encodeOne(op Operation) ([]byte, error) {
	if op.Operator == "" {
		return nil, fmt.Errorf("empty operator")
	}
	for i := 0; i < len(op.Operator); i++ {
		if !isRegular(op.Operator[i]) {
			return nil, fmt.Errorf("operator %q contains %q", op.Operator, op.Operator[i])
		}
	}

	if op.Operator == "BI" {
		return encodeInlineImage(op)
	}

	var buf bytes.Buffer
	for _, operand := range op.Operands {
		if err := writeOperand(&buf, operand); err != nil {
			return nil, err
		}
		buf.WriteByte(' ')
	}
	buf.WriteString(op.Operator)
	return buf.Bytes(), nil
}

func encodeInlineImage(op Operation) ([]byte, error) {
	if len(op.Operands) != 1 {
		return nil, fmt.Errorf("inline image needs one dictionary operand, got %d", len(op.Operands))
	}
	dict, ok := op.Operands[0].(core.Dict)
	if !ok {
		return nil, fmt.Errorf("inline image operand is %T, not a dictionary", op.Operands[0])
	}

	var buf bytes.Buffer
	buf.WriteString("BI")
	for _, key := range dict.Keys() {
		buf.WriteByte(' ')
		core.WriteName(&buf, key)
		buf.WriteByte(' ')
		if err := writeOperand(&buf, dict[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteString(" ID ")
	buf.Write(op.ImageData)
	buf.WriteString("\nEI")
	return buf.Bytes(), nil
}

// writeOperand writes an operand, rejecting object kinds that cannot occur
// inside a content stream.
func writeOperand(buf *bytes.Buffer, obj core.Object) error {
	if err := checkOperand(obj); err != nil {
		return err
	}
	return core.WriteObject(buf, obj)
}

func checkOperand(obj core.Object) error {
	switch v := obj.(type) {
	case nil:
		return fmt.Errorf("nil operand")
	case *core.Stream:
		return fmt.Errorf("stream objects are not valid operands")
	case core.IndirectRef:
		return fmt.Errorf("indirect reference %s is not a valid operand", v)
	case core.Array:
		for _, elem := range v {
			if err := checkOperand(elem); err != nil {
				return err
			}
		}
	case core.Dict:
		for _, elem := range v {
			if err := checkOperand(elem); err != nil {
				return err
			}
		}
	}
	return nil
}
