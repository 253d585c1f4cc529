// Package pdftest builds small PDF files in memory for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pdfreveal/core"
)

// Page describes one page of a generated document.
type Page struct {
	Content   string
	Resources core.Dict // nil for a page without resources
}

// Object numbers used by the generated documents.
const (
	CatalogNum = 1
	PagesNum   = 2
	InfoNum    = 3
)

// PageNum returns the object number of the i'th page dictionary.
func PageNum(i int) int { return 4 + 2*i }

// ContentNum returns the object number of the i'th page's content stream.
func ContentNum(i int) int { return 5 + 2*i }

func objects(t testing.TB, pages []Page) map[int]core.Object {
	t.Helper()

	kids := make(core.Array, len(pages))
	objs := map[int]core.Object{
		CatalogNum: core.Dict{"Type": core.Name("Catalog"), "Pages": core.IndirectRef{Number: PagesNum}},
		InfoNum:    core.Dict{"Title": core.String("Test Document"), "Producer": core.String("pdftest")},
	}
	for i, p := range pages {
		kids[i] = core.IndirectRef{Number: PageNum(i)}
		page := core.Dict{
			"Type":     core.Name("Page"),
			"Parent":   core.IndirectRef{Number: PagesNum},
			"Contents": core.IndirectRef{Number: ContentNum(i)},
		}
		if p.Resources != nil {
			page["Resources"] = p.Resources
		}
		objs[PageNum(i)] = page

		stream, err := core.NewContentStream([]byte(p.Content), i%2 == 0)
		if err != nil {
			t.Fatalf("content stream %d: %v", i, err)
		}
		objs[ContentNum(i)] = stream
	}
	objs[PagesNum] = core.Dict{
		"Type":     core.Name("Pages"),
		"Kids":     kids,
		"Count":    core.Int(len(pages)),
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
	}
	return objs
}

func trailer() core.Dict {
	return core.Dict{
		"Root": core.IndirectRef{Number: CatalogNum},
		"Info": core.IndirectRef{Number: InfoNum},
	}
}

// Build returns a document with a classic xref table holding the pages in
// order. Even-numbered pages have Flate-compressed content.
func Build(t testing.TB, pages ...Page) []byte {
	t.Helper()

	w := core.NewDocumentWriter("1.7")
	for num, obj := range objects(t, pages) {
		w.Add(core.IndirectRef{Number: num}, obj)
	}
	w.SetTrailer(trailer())

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return buf.Bytes()
}

// BuildCompressed returns the same document as Build, but with every
// dictionary stored in an object stream and an xref stream in place of the
// classic table.
func BuildCompressed(t testing.TB, pages ...Page) []byte {
	t.Helper()

	objs := objects(t, pages)
	size := ContentNum(len(pages)-1) + 1
	if len(pages) == 0 {
		size = InfoNum + 1
	}
	objStmNum := size
	xrefNum := size + 1

	var out bytes.Buffer
	out.WriteString("%PDF-1.5\n")
	offsets := map[int]int{}

	writeTop := func(num int, obj core.Object) {
		offsets[num] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", num)
		body, err := core.Serialize(obj)
		if err != nil {
			t.Fatalf("serialize %d: %v", num, err)
		}
		out.Write(body)
		out.WriteString("\nendobj\n")
	}

	var (
		header  strings.Builder
		body    bytes.Buffer
		indexOf = map[int]int{}
		packed  []int
	)
	for num := 1; num < size; num++ {
		obj, ok := objs[num]
		if !ok {
			continue
		}
		if _, isStream := obj.(*core.Stream); isStream {
			writeTop(num, obj)
			continue
		}
		serialized, err := core.Serialize(obj)
		if err != nil {
			t.Fatalf("serialize %d: %v", num, err)
		}
		indexOf[num] = len(packed)
		packed = append(packed, num)
		fmt.Fprintf(&header, "%d %d ", num, body.Len())
		body.Write(serialized)
		body.WriteByte('\n')
	}

	first := header.Len()
	objStm := &core.Stream{
		Dict: core.Dict{"Type": core.Name("ObjStm"), "N": core.Int(len(packed)), "First": core.Int(first)},
		Data: append([]byte(header.String()), body.Bytes()...),
	}
	writeTop(objStmNum, objStm)

	// W [1 4 2]: type, offset or stream number, generation or index
	xrefOffset := out.Len()
	var rows bytes.Buffer
	for num := 0; num < xrefNum+1; num++ {
		switch {
		case num == xrefNum:
			writeRow(&rows, 1, xrefOffset, 0)
		case offsets[num] > 0:
			writeRow(&rows, 1, offsets[num], 0)
		default:
			if idx, ok := indexOf[num]; ok {
				writeRow(&rows, 2, objStmNum, idx)
			} else {
				writeRow(&rows, 0, 0, 0)
			}
		}
	}
	xref := &core.Stream{Dict: trailer(), Data: rows.Bytes()}
	xref.Dict["Type"] = core.Name("XRef")
	xref.Dict["Size"] = core.Int(xrefNum + 1)
	xref.Dict["W"] = core.Array{core.Int(1), core.Int(4), core.Int(2)}
	writeTop(xrefNum, xref)

	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return out.Bytes()
}

func writeRow(w *bytes.Buffer, typ, field2, field3 int) {
	w.WriteByte(byte(typ))
	w.Write([]byte{byte(field2 >> 24), byte(field2 >> 16), byte(field2 >> 8), byte(field2)})
	w.Write([]byte{byte(field3 >> 8), byte(field3)})
}

// WriteFile writes data to a file in a fresh temporary directory and
// returns its path.
func WriteFile(t testing.TB, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
