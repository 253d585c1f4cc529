package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Serialize returns the PDF syntax for obj.
func Serialize(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteObject(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteObject writes obj in PDF syntax. Dictionary keys are written in
// sorted order so output is reproducible. Streams are written with their
// current Data; /Length is set to match.
func WriteObject(w io.Writer, obj Object) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	if err := writeObject(bw, obj); err != nil {
		return err
	}
	return bw.Flush()
}

func writeObject(w *bufio.Writer, obj Object) error {
	switch v := obj.(type) {
	case nil, Null:
		w.WriteString("null")
	case Bool:
		w.WriteString(strconv.FormatBool(bool(v)))
	case Int:
		w.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		w.WriteString(FormatReal(float64(v)))
	case String:
		WriteString(w, []byte(v))
	case Name:
		WriteName(w, string(v))
	case Array:
		w.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				w.WriteByte(' ')
			}
			if err := writeObject(w, elem); err != nil {
				return err
			}
		}
		w.WriteByte(']')
	case Dict:
		w.WriteString("<<")
		for _, key := range v.Keys() {
			WriteName(w, key)
			w.WriteByte(' ')
			if err := writeObject(w, v[key]); err != nil {
				return err
			}
		}
		w.WriteString(">>")
	case *Stream:
		dict := v.Dict.Clone()
		dict.Set("Length", Int(len(v.Data)))
		if err := writeObject(w, dict); err != nil {
			return err
		}
		w.WriteString("\nstream\n")
		w.Write(v.Data)
		w.WriteString("\nendstream")
	case IndirectRef:
		fmt.Fprintf(w, "%d %d R", v.Number, v.Generation)
	default:
		return fmt.Errorf("cannot serialize object of type %T", obj)
	}
	return nil
}

// WriteString writes s as a literal string. Parentheses and backslashes
// are escaped, as are bytes outside printable ASCII (as octal), so the
// output survives any transport.
func WriteString(w io.ByteWriter, s []byte) {
	w.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			w.WriteByte('\\')
			w.WriteByte(c)
		case '\n':
			w.WriteByte('\\')
			w.WriteByte('n')
		case '\r':
			w.WriteByte('\\')
			w.WriteByte('r')
		case '\t':
			w.WriteByte('\\')
			w.WriteByte('t')
		default:
			if c < 0x20 || c > 0x7e {
				w.WriteByte('\\')
				w.WriteByte('0' + c>>6)
				w.WriteByte('0' + (c>>3)&7)
				w.WriteByte('0' + c&7)
				continue
			}
			w.WriteByte(c)
		}
	}
	w.WriteByte(')')
}

// WriteName writes name with its leading slash, using #xx escapes for
// delimiters, whitespace, '#' and bytes outside printable ASCII.
func WriteName(w io.ByteWriter, name string) {
	const hexDigits = "0123456789ABCDEF"
	w.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter(c) {
			w.WriteByte('#')
			w.WriteByte(hexDigits[c>>4])
			w.WriteByte(hexDigits[c&0x0f])
			continue
		}
		w.WriteByte(c)
	}
}
