package document

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/logger"
	"github.com/tsawler/pdfreveal/pages"
	"github.com/tsawler/pdfreveal/reader"
	"github.com/tsawler/pdfreveal/resolver"
)

// Option configures a Document.
type Option func(*Document)

// WithCompression controls whether replacement content streams are Flate
// encoded. The default is true.
func WithCompression(compress bool) Option {
	return func(d *Document) {
		d.compress = compress
	}
}

// Document is a loaded PDF whose page content can be replaced and written
// back out. All methods are safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	path     string
	r        *reader.Reader
	res      *resolver.ObjectResolver
	pages    []*pages.Page
	byNum    map[int]*pages.Page
	compress bool

	nextNum  int                 // next free object number
	replaced map[int]core.Dict   // page object number -> rewritten page dict
	streams  map[int]int         // page object number -> its new content stream number
	added    map[int]core.Object // objects created since load
	content  map[int][]byte      // page object number -> replacement content
}

// Load opens and parses the PDF at path.
func Load(path string, opts ...Option) (*Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		logger.Error("failed to open document", "path", path, "error", err)
		return nil, err
	}

	d, err := newDocument(r, path, opts)
	if err != nil {
		r.Close()
		logger.Error("failed to load document", "path", path, "error", err)
		return nil, err
	}
	return d, nil
}

// New parses a PDF held in src.
func New(src io.ReaderAt, size int64, opts ...Option) (*Document, error) {
	r, err := reader.NewReader(src, size)
	if err != nil {
		return nil, err
	}
	return newDocument(r, "", opts)
}

func newDocument(r *reader.Reader, path string, opts []Option) (*Document, error) {
	all, err := r.Pages()
	if err != nil {
		return nil, &core.DecodeError{Page: -1, Err: fmt.Errorf("failed to read page tree: %w", err)}
	}

	d := &Document{
		path:     path,
		r:        r,
		res:      resolver.NewResolver(r),
		pages:    all,
		byNum:    make(map[int]*pages.Page, len(all)),
		compress: true,
		replaced: make(map[int]core.Dict),
		streams:  make(map[int]int),
		added:    make(map[int]core.Object),
		content:  make(map[int][]byte),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, p := range all {
		d.byNum[p.Ref.Number] = p
	}

	d.nextNum = r.NumObjects()
	for _, ref := range r.Objects() {
		if ref.Number >= d.nextNum {
			d.nextNum = ref.Number + 1
		}
	}

	logger.Debug("loaded document", "path", path, "version", r.Version().String(), "pages", len(all), true)
	return d, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Close()
}

// Path returns the file the document was loaded from, or "".
func (d *Document) Path() string {
	return d.path
}

// Version returns the PDF version, e.g. "1.7". A catalog /Version newer
// than the header wins.
func (d *Document) Version() string {
	v := d.r.Version().String()
	if cv := d.r.CatalogVersion(); cv > v {
		return cv
	}
	return v
}

// PageIDs returns the page references in document order.
func (d *Document) PageIDs() []core.IndirectRef {
	ids := make([]core.IndirectRef, len(d.pages))
	for i, p := range d.pages {
		ids[i] = p.Ref
	}
	return ids
}

// PageIndex returns the 0-based position of id, or -1.
func (d *Document) PageIndex(id core.IndirectRef) int {
	if p, ok := d.byNum[id.Number]; ok {
		return p.Index
	}
	return -1
}

func (d *Document) page(id core.IndirectRef) (*pages.Page, error) {
	p, ok := d.byNum[id.Number]
	if !ok {
		return nil, fmt.Errorf("object %d is not a page of this document", id.Number)
	}
	return p, nil
}

// Resources returns the page's resources dictionary, inherited from the
// page tree when the page has none of its own. It is nil when absent.
func (d *Document) Resources(id core.IndirectRef) (core.Dict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(id)
	if err != nil {
		return nil, err
	}
	res, err := p.Resources()
	if err != nil {
		return nil, &core.DecodeError{Page: p.Index, Err: err}
	}
	return res, nil
}

// Overrides builds the page's table of named external graphics states.
// Invalid entries are skipped and reported in the returned slice.
func (d *Document) Overrides(id core.IndirectRef) (graphicsstate.Overrides, []error) {
	res, err := d.Resources(id)
	if err != nil {
		return graphicsstate.Overrides{}, []error{err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return graphicsstate.BuildOverrides(res, d.res)
}

// Content returns the page's content streams decoded and joined with a
// newline. After ReplaceContent it returns the replacement.
func (d *Document) Content(id core.IndirectRef) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(id)
	if err != nil {
		return nil, err
	}
	if data, ok := d.content[id.Number]; ok {
		return bytes.Clone(data), nil
	}

	streams, err := p.Contents()
	if err != nil {
		return nil, &core.DecodeError{Page: p.Index, Err: err}
	}

	parts := make([][]byte, 0, len(streams))
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, &core.DecodeError{Page: p.Index, Err: fmt.Errorf("content stream %d: %w", i, err)}
		}
		parts = append(parts, data)
	}
	return bytes.Join(parts, []byte("\n")), nil
}

// ReplaceContent stores data as the page's only content stream. Calling it
// again for the same page reuses the stream object.
func (d *Document) ReplaceContent(id core.IndirectRef, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(id)
	if err != nil {
		return err
	}

	stream, err := core.NewContentStream(data, d.compress)
	if err != nil {
		return &core.EncodeError{Page: p.Index, Index: -1, Err: err}
	}

	num, ok := d.streams[id.Number]
	if !ok {
		num = d.nextNum
		d.nextNum++
		d.streams[id.Number] = num
	}
	d.added[num] = stream

	dict := p.Dict().Clone()
	dict.Set("Contents", core.IndirectRef{Number: num})
	d.replaced[id.Number] = dict
	d.content[id.Number] = bytes.Clone(data)

	logger.Debug("replaced page content", "page", p.Index, "object", num, "bytes", len(data))
	return nil
}

// Info returns the document information dictionary with every reference
// resolved, or nil when the document has none.
func (d *Document) Info() (core.Dict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := d.r.GetInfo()
	if err != nil || info == nil {
		return nil, err
	}
	return d.res.ResolveDict(info)
}

// WriteTo writes the whole document, with replaced content, as a single
// revision using a classic cross-reference table. Objects held in object
// streams are written as ordinary objects.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := core.NewDocumentWriter(d.Version())
	for _, ref := range d.r.Objects() {
		if dict, ok := d.replaced[ref.Number]; ok {
			out.Add(ref, dict)
			continue
		}

		obj, err := d.r.GetObject(ref.Number)
		if err != nil {
			return 0, &core.DecodeError{Page: -1, Err: err}
		}
		if isContainer(obj) {
			continue
		}
		out.Add(ref, obj)
	}
	for num, obj := range d.added {
		out.Add(core.IndirectRef{Number: num}, obj)
	}

	trailer := d.r.Trailer().Clone()
	if !trailer.Has("ID") {
		trailer.Set("ID", fileID(trailer, d.r.FileSize()))
	}
	out.SetTrailer(trailer)

	return out.WriteTo(w)
}

// isContainer reports whether obj only exists to hold other objects or
// cross-reference data, which the rewrite lays out afresh.
func isContainer(obj core.Object) bool {
	s, ok := obj.(*core.Stream)
	if !ok {
		return false
	}
	t, _ := s.Dict.GetName("Type")
	return t == "ObjStm" || t == "XRef"
}

// fileID derives a file identifier for documents that lack one.
func fileID(trailer core.Dict, size int64) core.Array {
	body, _ := core.Serialize(trailer)
	sum := md5.Sum(append(body, fmt.Sprint(size)...))
	id := core.String(sum[:])
	return core.Array{id, id}
}

// Save writes the document to path through a temporary file in the same
// directory, so an existing file is only replaced by a complete one.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfreveal-*")
	if err != nil {
		return &core.IOError{Op: "create", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		var decodeErr *core.DecodeError
		if errors.As(err, &decodeErr) {
			return err
		}
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &core.IOError{Op: "rename", Path: path, Err: err}
	}

	logger.Debug("saved document", "path", path, true)
	return nil
}
