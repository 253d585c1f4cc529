package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is any PDF object. String renders it for diagnostics; see
// WriteObject for the serialized form.
type Object interface {
	String() string
}

// Null is the PDF null object.
type Null struct{}

// Bool is a PDF boolean.
type Bool bool

// Int is a PDF integer.
type Int int64

// Real is a PDF real number.
type Real float64

// String holds the bytes of a literal or hex string after escapes are
// resolved. It is not necessarily valid UTF-8.
type String string

// Name is a PDF name without its leading slash.
type Name string

// Array is a PDF array.
type Array []Object

// Dict is a PDF dictionary keyed by name.
type Dict map[string]Object

// Stream is a stream dictionary together with its still-encoded data.
type Stream struct {
	Dict Dict
	Data []byte
}

// IndirectRef is an "n g R" reference.
type IndirectRef struct {
	Number     int
	Generation int
}

// IndirectObject is an object together with the reference it is stored
// under.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

func (Null) String() string          { return "null" }
func (b Bool) String() string        { return strconv.FormatBool(bool(b)) }
func (i Int) String() string         { return strconv.FormatInt(int64(i), 10) }
func (r Real) String() string        { return FormatReal(float64(r)) }
func (s String) String() string      { return string(s) }
func (n Name) String() string        { return "/" + string(n) }
func (r IndirectRef) String() string { return fmt.Sprintf("%d %d R", r.Number, r.Generation) }

func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, obj := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(obj.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// String lists the entries in key order.
func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for i, key := range d.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "/%s %s", key, d[key])
	}
	sb.WriteString(">>")
	return sb.String()
}

func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict, len(s.Data))
}

func lookup[T Object](d Dict, key string) (T, bool) {
	v, ok := d[key].(T)
	return v, ok
}

// Get returns the value under key, or nil.
func (d Dict) Get(key string) Object { return d[key] }

// GetName returns the value under key if it is a Name.
func (d Dict) GetName(key string) (Name, bool) { return lookup[Name](d, key) }

// GetInt returns the value under key if it is an Int.
func (d Dict) GetInt(key string) (Int, bool) { return lookup[Int](d, key) }

// GetDict returns the value under key if it is a Dict.
func (d Dict) GetDict(key string) (Dict, bool) { return lookup[Dict](d, key) }

// GetArray returns the value under key if it is an Array.
func (d Dict) GetArray(key string) (Array, bool) { return lookup[Array](d, key) }

// GetIndirectRef returns the value under key if it is a reference.
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) { return lookup[IndirectRef](d, key) }

func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Dict) Set(key string, value Object) { d[key] = value }

func (d Dict) Delete(key string) { delete(d, key) }

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy.
func (d Dict) Clone() Dict {
	c := make(Dict, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// ToFloat returns the value of an Int or Real.
func ToFloat(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// ToInt returns the value of an Int, or of a Real without a fractional
// part.
func ToInt(obj Object) (int64, bool) {
	switch v := obj.(type) {
	case Int:
		return int64(v), true
	case Real:
		if n := int64(v); float64(n) == float64(v) {
			return n, true
		}
	}
	return 0, false
}

// FormatReal formats f in plain decimal notation with the fewest digits
// that read back as f.
func FormatReal(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
