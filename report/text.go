package report

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// DecodeText makes a best effort at turning the bytes of a PDF string into
// readable text. Strings with a UTF-16 byte order mark are decoded as
// UTF-16, valid UTF-8 is kept, and anything else is read as Windows-1252,
// which agrees with PDFDocEncoding for the printable range. Control
// characters become U+FFFD. Strings shown through fonts with custom
// encodings come out garbled; no font program is consulted.
func DecodeText(raw []byte) string {
	var text string
	switch {
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		text = decodeUTF16(raw, xunicode.BigEndian)
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		text = decodeUTF16(raw, xunicode.LittleEndian)
	case utf8.Valid(raw):
		text = string(raw)
	default:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			decoded = raw
		}
		text = string(decoded)
	}

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == ' ' {
			return r
		}
		if !unicode.IsPrint(r) {
			return utf8.RuneError
		}
		return r
	}, text)
	return norm.NFC.String(text)
}

func decodeUTF16(raw []byte, order xunicode.Endianness) string {
	decoded, err := xunicode.UTF16(order, xunicode.ExpectBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
