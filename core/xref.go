package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
)

// XRefEntryType distinguishes the three kinds of cross-reference entry.
type XRefEntryType int

const (
	EntryFree       XRefEntryType = iota // f entries, type 0 in xref streams
	EntryInUse                           // n entries, type 1
	EntryCompressed                      // type 2: stored inside an object stream
)

// XRefEntry locates one object. Offset and Generation apply to free and
// in-use entries; StreamNum and Index to compressed ones.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
	StreamNum  int
	Index      int
}

// InUse reports whether the entry refers to a live object.
func (e *XRefEntry) InUse() bool {
	return e.Type != EntryFree
}

// XRefTable is one cross-reference section, or several merged, together
// with its trailer.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: map[int]*XRefEntry{}, Trailer: Dict{}}
}

func (t *XRefTable) Get(num int) (*XRefEntry, bool) {
	e, ok := t.Entries[num]
	return e, ok
}

func (t *XRefTable) Set(num int, e *XRefEntry) { t.Entries[num] = e }

// Size is the number of object numbers with an entry.
func (t *XRefTable) Size() int { return len(t.Entries) }

// tailSize is how far back from the end of the file startxref is searched.
const tailSize = 1024

// XRefParser reads cross-reference sections, classic tables as well as
// xref streams, from a seekable source.
type XRefParser struct {
	src io.ReadSeeker
}

func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{src: r}
}

// FindXRef returns the offset named by the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to determine file size: %w", err)
	}
	n := min(size, tailSize)
	if _, err := x.src.Seek(size-n, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to file tail: %w", err)
	}
	tail, err := io.ReadAll(io.LimitReader(x.src, n))
	if err != nil {
		return 0, fmt.Errorf("failed to read file tail: %w", err)
	}

	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, errors.New("startxref keyword not found")
	}
	tok, err := NewLexer(bytes.NewReader(tail[i+len("startxref"):])).NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, errors.New("startxref is not followed by an offset")
	}
	offset, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad startxref offset: %w", err)
	}
	if offset < 0 || offset >= size {
		return 0, fmt.Errorf("xref offset %d outside file of %d bytes", offset, size)
	}
	return offset, nil
}

// ParseXRef reads the section at offset. A classic table whose trailer has
// /XRefStm (a hybrid file) also picks up the entries of that stream for
// objects the table leaves free or unlisted.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if _, err := x.src.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref at %d: %w", offset, err)
	}
	p := NewParser(x.src)
	if !p.tok.is(TokenKeyword, "xref") {
		return x.readStream(p, offset)
	}

	table, err := readTable(p)
	if err != nil {
		return nil, fmt.Errorf("xref table at %d: %w", offset, err)
	}
	hybrid, ok := table.Trailer.GetInt("XRefStm")
	if !ok {
		return table, nil
	}
	if _, err := x.src.Seek(int64(hybrid), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to /XRefStm: %w", err)
	}
	stm, err := x.readStream(NewParser(x.src), int64(hybrid))
	if err != nil {
		return nil, fmt.Errorf("hybrid xref stream: %w", err)
	}
	for num, e := range stm.Entries {
		if old, ok := table.Entries[num]; !ok || !old.InUse() {
			table.Entries[num] = e
		}
	}
	return table, nil
}

// readTable parses "xref", its subsections and the trailer dictionary.
// Entries are read as tokens, so field widths and line endings are not
// checked.
func readTable(p *Parser) (*XRefTable, error) {
	if err := p.expectKeyword("xref"); err != nil {
		return nil, err
	}
	table := NewXRefTable()
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.tok == nil || p.tok.Type == TokenEOF {
			return nil, errors.New("missing trailer")
		}
		if p.tok.is(TokenKeyword, "trailer") {
			p.shift()
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			dict, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is %T, not a dictionary", obj)
			}
			table.Trailer = dict
			return table, nil
		}

		first, err := p.expectInt("subsection start")
		if err != nil {
			return nil, err
		}
		count, err := p.expectInt("subsection count")
		if err != nil {
			return nil, err
		}
		for num := first; num < first+count; num++ {
			e, err := readEntry(p)
			if err != nil {
				return nil, fmt.Errorf("entry for object %d: %w", num, err)
			}
			table.Entries[num] = e
		}
	}
}

// readEntry reads "offset generation n|f".
func readEntry(p *Parser) (*XRefEntry, error) {
	off, err := p.expectInt("offset")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation")
	if err != nil {
		return nil, err
	}
	e := &XRefEntry{Offset: int64(off), Generation: gen}
	switch {
	case p.tok.is(TokenKeyword, "n"):
		e.Type = EntryInUse
	case p.tok.is(TokenKeyword, "f"):
		e.Type = EntryFree
	default:
		return nil, fmt.Errorf("expected n or f, got %v", p.tok)
	}
	p.shift()
	return e, nil
}

func (x *XRefParser) readStream(p *Parser, offset int64) (*XRefTable, error) {
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("no xref table or stream at %d: %w", offset, err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object at %d is %T, not an xref stream", offset, obj.Object)
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("stream at %d has /Type %q, expected /XRef", offset, typ)
	}
	return DecodeXRefStream(stream)
}

// xrefStreamKeys are the stream dictionary entries that describe the stream
// itself rather than the document.
var xrefStreamKeys = []string{"Length", "Filter", "DecodeParms", "W", "Index", "Type"}

// DecodeXRefStream unpacks the fixed-width rows of an xref stream according
// to /W and /Index. Rows of unknown type are skipped.
func DecodeXRefStream(stream *Stream) (*XRefTable, error) {
	var w [3]int
	arr, _ := stream.Dict.GetArray("W")
	if len(arr) != 3 {
		return nil, errors.New("xref stream /W must hold three integers")
	}
	for i, v := range arr {
		n, ok := ToInt(v)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("bad /W width %v", v)
		}
		w[i] = int(n)
	}
	row := w[0] + w[1] + w[2]
	if row == 0 {
		return nil, errors.New("xref stream /W widths are all zero")
	}

	ranges, err := xrefRanges(stream.Dict)
	if err != nil {
		return nil, err
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = stream.Dict.Clone()
	for _, k := range xrefStreamKeys {
		table.Trailer.Delete(k)
	}

	for r := 0; r < len(ranges); r += 2 {
		for num := ranges[r]; num < ranges[r]+ranges[r+1]; num++ {
			if len(data) < row {
				return nil, fmt.Errorf("xref stream ends before object %d", num)
			}
			f1, f2, f3 := field(data[:w[0]], 1), field(data[w[0]:w[0]+w[1]], 0), field(data[w[0]+w[1]:row], 0)
			data = data[row:]

			switch f1 {
			case 0:
				table.Entries[num] = &XRefEntry{Type: EntryFree, Offset: f2, Generation: int(f3)}
			case 1:
				table.Entries[num] = &XRefEntry{Type: EntryInUse, Offset: f2, Generation: int(f3)}
			case 2:
				table.Entries[num] = &XRefEntry{Type: EntryCompressed, StreamNum: int(f2), Index: int(f3)}
			}
		}
	}
	return table, nil
}

// xrefRanges returns /Index as flat (first, count) pairs, defaulting to
// [0 Size].
func xrefRanges(d Dict) ([]int, error) {
	arr, ok := d.GetArray("Index")
	if !ok {
		size, _ := d.GetInt("Size")
		return []int{0, int(size)}, nil
	}
	if len(arr)%2 != 0 {
		return nil, fmt.Errorf("xref stream /Index has odd length %d", len(arr))
	}
	out := make([]int, len(arr))
	for i, v := range arr {
		n, ok := ToInt(v)
		if !ok || n < 0 {
			return nil, fmt.Errorf("bad /Index entry %v", v)
		}
		out[i] = int(n)
	}
	return out, nil
}

// field decodes a big-endian field; an absent (zero width) field takes def.
func field(b []byte, def int64) int64 {
	if len(b) == 0 {
		return def
	}
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// ParseXRefFromEOF parses the section startxref points at.
func (x *XRefParser) ParseXRefFromEOF() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}
	return x.ParseXRef(offset)
}

// ParseAllXRefs returns the newest section and every section reachable
// from it through /Prev, oldest first. A /Prev chain that revisits an
// offset is an error.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}
	var chain []*XRefTable
	seen := map[int64]struct{}{}
	for {
		if _, dup := seen[offset]; dup {
			return nil, fmt.Errorf("xref /Prev chain loops at offset %d", offset)
		}
		seen[offset] = struct{}{}

		section, err := x.ParseXRef(offset)
		if err != nil {
			return nil, err
		}
		chain = append(chain, section)

		prev, ok := ToInt(section.Trailer.Get("Prev"))
		if !ok {
			break
		}
		offset = prev
	}
	slices.Reverse(chain)
	return chain, nil
}

// MergeXRefTables layers sections given oldest first, so entries and
// trailer keys from later sections replace earlier ones. The chaining keys
// /Prev and /XRefStm are dropped from the result.
func MergeXRefTables(sections ...*XRefTable) *XRefTable {
	out := NewXRefTable()
	for _, s := range sections {
		maps.Copy(out.Entries, s.Entries)
		maps.Copy(out.Trailer, s.Trailer)
	}
	out.Trailer.Delete("Prev")
	out.Trailer.Delete("XRefStm")
	return out
}
