package core

import (
	"errors"
	"fmt"
)

// ErrEncrypted is returned when a document declares an /Encrypt dictionary.
var ErrEncrypted = errors.New("encrypted documents are not supported")

// DecodeError reports input that could not be parsed: a malformed content
// stream or broken file structure. It is fatal for the document.
type DecodeError struct {
	Page   int   // 0-based page index, -1 when not page specific
	Offset int64 // byte offset within the stream or file
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("decode error on page %d at offset %d: %v", e.Page, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports an operation that could not be serialized.
type EncodeError struct {
	Page     int // 0-based page index, -1 when not page specific
	Index    int // index of the operation within the rewritten sequence
	Operator string
	Err      error
}

func (e *EncodeError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("encode error on page %d, operation %d (%s): %v", e.Page, e.Index, e.Operator, e.Err)
	}
	return fmt.Sprintf("encode error at operation %d (%s): %v", e.Index, e.Operator, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// InvalidResourceError reports an external graphics state entry that was
// skipped.
type InvalidResourceError struct {
	Name   string
	Reason string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("invalid resource /%s: %s", e.Name, e.Reason)
}

// MalformedOperandsError reports a recognised operator whose operands had
// the wrong count or type. The operator is still passed through.
type MalformedOperandsError struct {
	Operator string
	Index    int64 // draw-order id of the operator
	Reason   string
}

func (e *MalformedOperandsError) Error() string {
	return fmt.Sprintf("malformed operands for %q at operator %d: %s", e.Operator, e.Index, e.Reason)
}

// IOError wraps a failure to read or write a file.
type IOError struct {
	Op   string // "open", "read", "write", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
