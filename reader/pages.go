package reader

import (
	"fmt"

	"github.com/tsawler/pdfreveal/pages"
)

func (r *Reader) tree() (*pages.PageTree, error) {
	if r.pageTree != nil {
		return r.pageTree, nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := pages.NewCatalog(catalog, r).Pages()
	if err != nil {
		return nil, err
	}
	r.pageTree = pages.NewPageTree(root, r)
	return r.pageTree, nil
}

// Pages returns every page in document order.
func (r *Reader) Pages() ([]*pages.Page, error) {
	t, err := r.tree()
	if err != nil {
		return nil, err
	}
	return t.Pages()
}

// GetPage returns the page at a 0-based index.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	t, err := r.tree()
	if err != nil {
		return nil, err
	}
	return t.GetPage(index)
}

// PageCount counts the pages actually reachable, which may differ from
// the root /Count.
func (r *Reader) PageCount() (int, error) {
	all, err := r.Pages()
	return len(all), err
}

// CatalogVersion returns the catalog /Version, or "".
func (r *Reader) CatalogVersion() string {
	catalog, err := r.GetCatalog()
	if err != nil {
		return ""
	}
	return pages.NewCatalog(catalog, r).Version()
}
