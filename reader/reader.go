package reader

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/pages"
)

// Reader loads objects from a PDF on demand and caches them. It is not
// safe for concurrent use.
type Reader struct {
	src       io.ReaderAt
	closer    io.Closer
	fileSize  int64
	version   PDFVersion
	xrefTable *core.XRefTable
	trailer   core.Dict

	objects  map[int]core.Object
	objStms  map[int]*core.ObjectStream
	pageTree *pages.PageTree
}

var _ pages.ObjectResolver = (*Reader)(nil)

// fail wraps a structural problem as a DecodeError not tied to a page.
func fail(offset int64, format string, args ...any) error {
	return &core.DecodeError{Page: -1, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// NewReader reads the header and cross-reference data of the size bytes
// in src. Encrypted files are refused with core.ErrEncrypted.
func NewReader(src io.ReaderAt, size int64) (*Reader, error) {
	r := &Reader{src: src, fileSize: size}
	r.ClearCache()

	var err error
	if r.version, err = r.parseHeader(); err != nil {
		return nil, fail(0, "failed to parse header: %w", err)
	}
	if r.xrefTable, err = r.loadXRef(); err != nil {
		return nil, fail(0, "failed to load xref: %w", err)
	}
	r.trailer = r.xrefTable.Trailer
	if r.trailer.Has("Encrypt") {
		return nil, core.ErrEncrypted
	}
	return r, nil
}

// Open opens a file on disk. Close releases it.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &core.IOError{Op: "open", Path: filename, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &core.IOError{Op: "stat", Path: filename, Err: err}
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Close closes the file opened by Open. It is safe to call more than once.
func (r *Reader) Close() error {
	c := r.closer
	r.closer = nil
	if c == nil {
		return nil
	}
	return c.Close()
}

// loadXRef reads the newest cross-reference section and, when it has a
// /Prev, merges every older one beneath it.
func (r *Reader) loadXRef() (*core.XRefTable, error) {
	p := core.NewXRefParser(io.NewSectionReader(r.src, 0, r.fileSize))
	table, err := p.ParseXRefFromEOF()
	if err != nil {
		return nil, err
	}
	if table.Trailer.Get("Prev") == nil {
		return table, nil
	}
	all, err := p.ParseAllXRefs()
	if err != nil {
		return nil, err
	}
	return core.MergeXRefTables(all...), nil
}

func (r *Reader) Version() PDFVersion { return r.version }
func (r *Reader) Trailer() core.Dict  { return r.trailer }
func (r *Reader) FileSize() int64     { return r.fileSize }

// NumObjects returns the trailer /Size, one more than the highest object
// number in use.
func (r *Reader) NumObjects() int {
	n, _ := core.ToInt(r.trailer.Get("Size"))
	return int(n)
}

// ClearCache drops every loaded object.
func (r *Reader) ClearCache() {
	r.objects = map[int]core.Object{}
	r.objStms = map[int]*core.ObjectStream{}
}

// CacheSize returns the number of cached objects.
func (r *Reader) CacheSize() int { return len(r.objects) }

// GetObject returns object num, loading it on first use.
func (r *Reader) GetObject(num int) (core.Object, error) {
	if obj, ok := r.objects[num]; ok {
		return obj, nil
	}
	entry, ok := r.xrefTable.Get(num)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", num)
	}

	var obj core.Object
	var err error
	switch entry.Type {
	case core.EntryInUse:
		obj, err = r.readObject(num, entry.Offset)
	case core.EntryCompressed:
		obj, err = r.readCompressed(num, entry.StreamNum, entry.Index)
	default:
		return nil, fmt.Errorf("object %d is not in use", num)
	}
	if err != nil {
		return nil, err
	}
	r.objects[num] = obj
	return obj, nil
}

// readObject parses the object at offset. Every call gets its own section
// reader, so resolving an indirect /Length in the middle is safe.
func (r *Reader) readObject(num int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.fileSize {
		return nil, fail(offset, "object %d offset out of range", num)
	}
	p := core.NewParser(io.NewSectionReader(r.src, offset, r.fileSize-offset))
	p.SetReferenceResolver(r)

	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fail(offset, "failed to parse object %d: %w", num, err)
	}
	if ind.Ref.Number != num {
		return nil, fail(offset, "object number mismatch: expected %d, got %d", num, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) objectStream(num int) (*core.ObjectStream, error) {
	if stm, ok := r.objStms[num]; ok {
		return stm, nil
	}
	obj, err := r.GetObject(num)
	if err != nil {
		return nil, err
	}
	s, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("is %T, not a stream", obj)
	}
	stm, err := core.NewObjectStream(s)
	if err != nil {
		return nil, err
	}
	r.objStms[num] = stm
	return stm, nil
}

func (r *Reader) readCompressed(num, stmNum, index int) (core.Object, error) {
	stm, err := r.objectStream(stmNum)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", stmNum, err)
	}
	got, obj, err := stm.Object(index)
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", num, stmNum, err)
	}
	if got != num {
		return nil, fmt.Errorf("object stream %d index %d holds object %d, not %d", stmNum, index, got, num)
	}
	return obj, nil
}

// ResolveReference loads the object ref points to. Generations are not
// checked.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve loads obj if it is a reference and returns it unchanged
// otherwise.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.GetObject(ref.Number)
	}
	return obj, nil
}

// trailerDict resolves a trailer entry that must be a dictionary.
func (r *Reader) trailerDict(key string) (core.Dict, bool, error) {
	v := r.trailer.Get(key)
	if v == nil {
		return nil, false, nil
	}
	obj, err := r.Resolve(v)
	if err != nil {
		return nil, true, fmt.Errorf("failed to resolve /%s: %w", key, err)
	}
	d, ok := obj.(core.Dict)
	if !ok {
		return nil, true, fmt.Errorf("/%s is not a dictionary: %T", key, obj)
	}
	return d, true, nil
}

// GetCatalog returns the /Root dictionary.
func (r *Reader) GetCatalog() (core.Dict, error) {
	d, found, err := r.trailerDict("Root")
	if !found {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	return d, err
}

// GetInfo returns the /Info dictionary, or nil when the file has none.
func (r *Reader) GetInfo() (core.Dict, error) {
	d, _, err := r.trailerDict("Info")
	return d, err
}

// Objects lists every in-use object by number. Objects inside object
// streams always have generation 0.
func (r *Reader) Objects() []core.IndirectRef {
	var refs []core.IndirectRef
	for num, e := range r.xrefTable.Entries {
		if num == 0 || !e.InUse() {
			continue
		}
		ref := core.IndirectRef{Number: num, Generation: e.Generation}
		if e.Type == core.EntryCompressed {
			ref.Generation = 0
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Number < refs[j].Number })
	return refs
}
