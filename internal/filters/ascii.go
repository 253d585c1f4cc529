package filters

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
)

// ASCIIHexDecode decodes hexadecimal digits up to the '>' marker.
// Whitespace is skipped and a final odd digit is read as if followed by 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	if end := bytes.IndexByte(data, '>'); end >= 0 {
		data = data[:end]
	}
	digits := stripWhitespace(data)
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("ASCIIHexDecode: %w", err)
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data up to the '~>' marker. An optional
// leading '<~' is skipped, 'z' stands for four zero bytes and a short last
// group yields one byte less than its digit count.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(stripWhitespace(data), []byte("<~"))
	if end := bytes.Index(data, []byte("~>")); end >= 0 {
		data = data[:end]
	}

	// 'z' is the densest encoding: one byte for four
	out := make([]byte, 4*len(data))
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		return nil, fmt.Errorf("ASCII85Decode: %w", err)
	}
	return out[:n], nil
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func stripWhitespace(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, c := range data {
		if !isWhitespace(c) {
			out = append(out, c)
		}
	}
	return out
}
