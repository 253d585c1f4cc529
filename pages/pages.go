package pages

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfreveal/core"
)

// ObjectResolver turns a possibly indirect object into a direct one.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// inheritable lists the page attributes a /Pages node passes to its
// descendants.
var inheritable = [...]string{"Resources", "MediaBox", "CropBox", "Rotate"}

func resolveAs[T core.Object](r ObjectResolver, obj core.Object, what string) (T, error) {
	var zero T
	direct, err := r.Resolve(obj)
	if err != nil {
		return zero, fmt.Errorf("failed to resolve %s: %w", what, err)
	}
	v, ok := direct.(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s type: %T", what, direct)
	}
	return v, nil
}

// Catalog is the document catalog, the /Root of the trailer.
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Pages returns the root node of the page tree.
func (c *Catalog) Pages() (core.Dict, error) {
	ref := c.dict.Get("Pages")
	if ref == nil {
		return nil, errors.New("catalog missing /Pages entry")
	}
	return resolveAs[core.Dict](c.resolver, ref, "/Pages")
}

// Version returns the catalog /Version, or "" when the header governs.
func (c *Catalog) Version() string {
	v, _ := c.dict.GetName("Version")
	return string(v)
}

// PageTree flattens a page tree into document order. The walk happens
// once, on first use.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the root /Count, which may disagree with the number of
// leaves actually reachable.
func (t *PageTree) Count() (int, error) {
	n, ok := core.ToInt(t.root.Get("Count"))
	if !ok {
		return 0, errors.New("page tree missing or invalid /Count entry")
	}
	return int(n), nil
}

// GetPage returns the page at a 0-based index.
func (t *PageTree) GetPage(index int) (*Page, error) {
	all, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(all) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(all))
	}
	return all[index], nil
}

// Pages returns every reachable page in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}
	w := treeWalk{resolver: t.resolver, seen: map[int]bool{}, pages: []*Page{}}
	if err := w.node(core.IndirectRef{}, t.root, nil); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = w.pages
	return t.pages, nil
}

type treeWalk struct {
	resolver ObjectResolver
	seen     map[int]bool
	pages    []*Page
}

// node visits one tree node; inherited holds what its ancestors set.
func (w *treeWalk) node(ref core.IndirectRef, node, inherited core.Dict) error {
	kind, _ := node.GetName("Type")
	if kind == "" && !node.Has("Kids") {
		// leaves without /Type are common enough to accept
		kind = "Page"
	}

	switch kind {
	case "Page":
		w.pages = append(w.pages, NewPage(ref, len(w.pages), node, inherited, w.resolver))
		return nil
	case "Pages":
	default:
		return fmt.Errorf("unexpected page node type: %s", kind)
	}

	scope := core.Dict{}
	for k, v := range inherited {
		scope[k] = v
	}
	for _, key := range inheritable {
		if v := node.Get(key); v != nil {
			scope[key] = v
		}
	}

	kids, err := resolveAs[core.Array](w.resolver, node.Get("Kids"), "/Kids")
	if err != nil {
		return err
	}
	for i, kid := range kids {
		kidRef, ok := kid.(core.IndirectRef)
		if !ok {
			return fmt.Errorf("kid %d is %T, not a reference", i, kid)
		}
		if w.seen[kidRef.Number] {
			return fmt.Errorf("page tree loops at object %d", kidRef.Number)
		}
		w.seen[kidRef.Number] = true

		child, err := resolveAs[core.Dict](w.resolver, kidRef, fmt.Sprintf("kid %d", i))
		if err != nil {
			return err
		}
		if err := w.node(kidRef, child, scope); err != nil {
			return err
		}
	}
	return nil
}

// Page is one leaf of the page tree.
type Page struct {
	Ref   core.IndirectRef // the page dictionary
	Index int              // 0-based, document order

	dict      core.Dict
	inherited core.Dict
	resolver  ObjectResolver
}

func NewPage(ref core.IndirectRef, index int, dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{Ref: ref, Index: index, dict: dict, inherited: inherited, resolver: resolver}
}

// Dict returns the page dictionary as stored in the file.
func (p *Page) Dict() core.Dict { return p.dict }

func (p *Page) attr(key string) core.Object {
	if v := p.dict.Get(key); v != nil {
		return v
	}
	return p.inherited.Get(key)
}

// MediaBox returns [llx lly urx ury].
func (p *Page) MediaBox() ([]float64, error) { return p.box("MediaBox") }

// CropBox returns the crop box, or the media box when there is none.
func (p *Page) CropBox() ([]float64, error) {
	if box, err := p.box("CropBox"); err == nil {
		return box, nil
	}
	return p.MediaBox()
}

func (p *Page) box(key string) ([]float64, error) {
	obj := p.attr(key)
	if obj == nil {
		return nil, fmt.Errorf("%s not found", key)
	}
	arr, err := resolveAs[core.Array](p.resolver, obj, key)
	if err != nil {
		return nil, err
	}
	if len(arr) != 4 {
		return nil, fmt.Errorf("invalid %s: %v", key, arr)
	}
	box := make([]float64, 4)
	for i, elem := range arr {
		v, ok := core.ToFloat(elem)
		if !ok {
			return nil, fmt.Errorf("invalid %s element type: %T", key, elem)
		}
		box[i] = v
	}
	return box, nil
}

// Rotate returns /Rotate, 0 when unset.
func (p *Page) Rotate() int {
	n, _ := core.ToInt(p.attr("Rotate"))
	return int(n)
}

// Resources returns the nearest /Resources on the page or its ancestors.
// A page without resources gets nil and no error.
func (p *Page) Resources() (core.Dict, error) {
	obj := p.attr("Resources")
	if obj == nil {
		return nil, nil
	}
	direct, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	switch v := direct.(type) {
	case core.Dict:
		return v, nil
	case core.Null, nil:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid Resources type: %T", direct)
}

// Contents returns the page content streams in drawing order.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj := p.dict.Get("Contents")
	if obj == nil {
		return nil, nil
	}
	direct, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	var parts core.Array
	switch v := direct.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Null:
		return nil, nil
	case core.Array:
		parts = v
	default:
		return nil, fmt.Errorf("invalid Contents type: %T", direct)
	}

	streams := make([]*core.Stream, len(parts))
	for i, part := range parts {
		s, err := resolveAs[*core.Stream](p.resolver, part, fmt.Sprintf("contents[%d]", i))
		if err != nil {
			return nil, err
		}
		streams[i] = s
	}
	return streams, nil
}
