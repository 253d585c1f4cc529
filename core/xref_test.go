package core

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildClassicPDF assembles a small file with a classic xref table. The
// offsets are computed so the table is valid.
func buildClassicPDF(objects []string, trailerExtra string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailerExtra, xref)
	return buf.Bytes()
}

func TestParseClassicXRef(t *testing.T) {
	data := buildClassicPDF([]string{"<< /Type /Catalog >>", "(two)"}, " /Info << /Producer (x) >>")

	tables, err := NewXRefParser(bytes.NewReader(data)).ParseAllXRefs()
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, 3, table.Size())

	entry, ok := table.Get(2)
	require.True(t, ok)
	assert.True(t, entry.InUse())
	assert.Equal(t, int64(bytes.Index(data, []byte("2 0 obj"))), entry.Offset)

	free, _ := table.Get(0)
	assert.False(t, free.InUse())

	info, ok := table.Trailer.GetDict("Info")
	require.True(t, ok, "nested trailer dictionary should parse")
	assert.Equal(t, String("x"), info["Producer"])
}

func TestParseXRefCarriageReturns(t *testing.T) {
	data := buildClassicPDF([]string{"<< /Type /Catalog >>"}, "")
	data = bytes.ReplaceAll(data, []byte(" \n"), []byte("\r\n"))
	data = bytes.ReplaceAll(data, []byte("\n"), []byte("\r"))
	data = bytes.ReplaceAll(data, []byte("\r\r"), []byte("\r\n"))

	table, err := NewXRefParser(bytes.NewReader(data)).ParseXRefFromEOF()
	require.NoError(t, err)
	entry, ok := table.Get(1)
	require.True(t, ok)
	assert.True(t, entry.InUse())
}

func TestFindXRefErrors(t *testing.T) {
	_, err := NewXRefParser(strings.NewReader("%PDF-1.4\nno trailer here")).FindXRef()
	assert.Error(t, err)

	_, err = NewXRefParser(strings.NewReader("%PDF-1.4\nstartxref\n99999\n%%EOF")).FindXRef()
	assert.Error(t, err, "offset beyond end of file")
}

func TestDecodeXRefStream(t *testing.T) {
	// W [1 2 1]: one free, one in use at 0x0110 gen 0, one compressed in
	// stream 5 at index 2. Index selects objects 0-1 and 7.
	data := []byte{
		0, 0x00, 0x00, 0xff,
		1, 0x01, 0x10, 0x00,
		2, 0x00, 0x05, 0x02,
	}
	stream := &Stream{
		Dict: Dict{
			"Type":  Name("XRef"),
			"W":     Array{Int(1), Int(2), Int(1)},
			"Index": Array{Int(0), Int(2), Int(7), Int(1)},
			"Size":  Int(8),
			"Root":  IndirectRef{Number: 1},
		},
		Data: data,
	}

	table, err := DecodeXRefStream(stream)
	require.NoError(t, err)

	e0, _ := table.Get(0)
	assert.Equal(t, EntryFree, e0.Type)

	e1, _ := table.Get(1)
	assert.Equal(t, EntryInUse, e1.Type)
	assert.Equal(t, int64(0x110), e1.Offset)

	e7, ok := table.Get(7)
	require.True(t, ok)
	assert.Equal(t, EntryCompressed, e7.Type)
	assert.Equal(t, 5, e7.StreamNum)
	assert.Equal(t, 2, e7.Index)

	assert.False(t, table.Trailer.Has("W"))
	assert.True(t, table.Trailer.Has("Root"))
}

func TestDecodeXRefStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		dict Dict
		data []byte
	}{
		{"missing W", Dict{"Size": Int(1)}, nil},
		{"zero widths", Dict{"W": Array{Int(0), Int(0), Int(0)}, "Size": Int(1)}, nil},
		{"odd Index", Dict{"W": Array{Int(1), Int(1), Int(1)}, "Index": Array{Int(0)}}, nil},
		{"truncated", Dict{"W": Array{Int(1), Int(2), Int(1)}, "Size": Int(2)}, []byte{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeXRefStream(&Stream{Dict: tt.dict, Data: tt.data})
			assert.Error(t, err)
		})
	}
}

func TestParseXRefStreamAtOffset(t *testing.T) {
	entries := []byte{1, 0x00, 0x09, 0}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /XRef /W [1 2 1] /Index [1 1] /Size 3 /Root 1 0 R /Length %d >>\nstream\n", len(entries))
	buf.Write(entries)
	fmt.Fprintf(&buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xref)

	table, err := NewXRefParser(bytes.NewReader(buf.Bytes())).ParseXRefFromEOF()
	require.NoError(t, err)

	entry, ok := table.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(9), entry.Offset)
	root, _ := table.Trailer.GetIndirectRef("Root")
	assert.Equal(t, 1, root.Number)
}

func TestParseAllXRefsFollowsPrev(t *testing.T) {
	base := buildClassicPDF([]string{"<< /Type /Catalog >>", "(old)"}, "")
	firstXRef := bytes.LastIndex(base, []byte("xref\n0"))

	var buf bytes.Buffer
	buf.Write(base)
	updated := buf.Len()
	buf.WriteString("2 0 obj\n(new)\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n2 1\n%010d 00000 n \ntrailer\n<< /Size 3 /Root 1 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", updated, firstXRef, xref)

	tables, err := NewXRefParser(bytes.NewReader(buf.Bytes())).ParseAllXRefs()
	require.NoError(t, err)
	require.Len(t, tables, 2)

	merged := MergeXRefTables(tables...)
	entry, _ := merged.Get(2)
	assert.Equal(t, int64(updated), entry.Offset, "newer section wins")
	assert.False(t, merged.Trailer.Has("Prev"))
}

func TestParseAllXRefsDetectsLoop(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", xref, xref)

	_, err := NewXRefParser(bytes.NewReader(buf.Bytes())).ParseAllXRefs()
	assert.ErrorContains(t, err, "loops")
}
