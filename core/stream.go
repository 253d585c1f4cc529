package core

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfreveal/internal/filters"
)

type decodeFunc func(data []byte, params filters.Params) ([]byte, error)

func noParams(fn func([]byte) ([]byte, error)) decodeFunc {
	return func(data []byte, _ filters.Params) ([]byte, error) { return fn(data) }
}

func passThrough(data []byte, _ filters.Params) ([]byte, error) { return data, nil }

// decoders maps filter names, full and abbreviated, to their decoders.
// Image codecs pass data through since content streams never use them.
var decoders = map[Name]decodeFunc{
	"FlateDecode":     filters.FlateDecode,
	"Fl":              filters.FlateDecode,
	"LZWDecode":       filters.LZWDecode,
	"LZW":             filters.LZWDecode,
	"CCITTFaxDecode":  filters.CCITTFaxDecode,
	"CCF":             filters.CCITTFaxDecode,
	"ASCIIHexDecode":  noParams(filters.ASCIIHexDecode),
	"AHx":             noParams(filters.ASCIIHexDecode),
	"ASCII85Decode":   noParams(filters.ASCII85Decode),
	"A85":             noParams(filters.ASCII85Decode),
	"RunLengthDecode": noParams(filters.RunLengthDecode),
	"RL":              noParams(filters.RunLengthDecode),
	"DCTDecode":       passThrough,
	"DCT":             passThrough,
	"JPXDecode":       passThrough,
}

// Decode returns the stream data with every filter in /Filter applied in
// order. Unfiltered streams return Data unchanged.
func (s *Stream) Decode() ([]byte, error) {
	var names Array
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return s.Data, nil
	case Name:
		names = Array{f}
	case Array:
		names = f
	default:
		return nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	parms := s.Dict.Get("DecodeParms")
	data := s.Data
	for i, obj := range names {
		name, ok := obj.(Name)
		if !ok {
			return nil, fmt.Errorf("filter %d is not a name: %T", i, obj)
		}
		p := parms
		if list, ok := parms.(Array); ok {
			p = nil
			if i < len(list) {
				p = list[i]
			}
		}

		var err error
		if data, err = applyFilter(name, data, p); err != nil {
			if len(names) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("filter %d (%s) failed: %w", i, name, err)
		}
	}
	return data, nil
}

func applyFilter(name Name, data []byte, parms Object) ([]byte, error) {
	switch name {
	case "Crypt":
		return nil, ErrEncrypted
	case "JBIG2Decode":
		return nil, errors.New("JBIG2Decode is not supported")
	}
	decode, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter: %s", name)
	}
	return decode(data, filterParams(parms))
}

// filterParams flattens a DecodeParms dictionary into Go values.
func filterParams(obj Object) filters.Params {
	dict, ok := obj.(Dict)
	if !ok {
		return nil
	}
	params := make(filters.Params, len(dict))
	for key, value := range dict {
		switch v := value.(type) {
		case Int:
			params[key] = int(v)
		case Real:
			params[key] = float64(v)
		case Bool:
			params[key] = bool(v)
		case Name:
			params[key] = string(v)
		case String:
			params[key] = string(v)
		default:
			params[key] = v
		}
	}
	return params
}

// SetContent stores content as the stream data, Flate encoded when compress
// is set. Previous filters and decode parameters are dropped.
func (s *Stream) SetContent(content []byte, compress bool) error {
	if s.Dict == nil {
		s.Dict = Dict{}
	}
	s.Dict.Delete("Filter")
	s.Dict.Delete("DecodeParms")

	if compress {
		encoded, err := filters.FlateEncode(content)
		if err != nil {
			return err
		}
		content = encoded
		s.Dict.Set("Filter", Name("FlateDecode"))
	}
	s.Data = content
	s.Dict.Set("Length", Int(len(content)))
	return nil
}

// NewContentStream returns a stream holding content.
func NewContentStream(content []byte, compress bool) (*Stream, error) {
	s := &Stream{Dict: Dict{}}
	if err := s.SetContent(content, compress); err != nil {
		return nil, err
	}
	return s, nil
}
