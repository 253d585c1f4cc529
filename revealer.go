package pdfreveal

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/document"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/logger"
	"github.com/tsawler/pdfreveal/redact"
	"github.com/tsawler/pdfreveal/report"
	"golang.org/x/sync/errgroup"
)

// Revealer provides a fluent interface for revealing redacted content.
// Each configuration method returns a new Revealer, so a partially
// configured Revealer can be shared and extended.
type Revealer struct {
	// Source
	filename string

	// Lifecycle
	doc     *document.Document
	ownsDoc bool // true if we loaded the document and should close it

	config Config
	pages  []int // 1-indexed, nil means all pages

	// Accumulated error (fail-fast)
	err error
}

// pageJob carries one page through decode, analysis and encode.
type pageJob struct {
	index     int
	id        core.IndirectRef
	ops       []contentstream.Operation
	overrides graphicsstate.Overrides
	warnings  []error

	findings redact.Findings
	content  []byte // re-encoded content, nil when unchanged
}

// clone creates a shallow copy of the Revealer with its own config and
// page list.
func (r *Revealer) clone() *Revealer {
	return &Revealer{
		filename: r.filename,
		doc:      r.doc,
		ownsDoc:  r.ownsDoc,
		config:   r.config.clone(),
		pages:    append([]int(nil), r.pages...),
		err:      r.err,
	}
}

// ensureDocument loads the document if not already loaded.
func (r *Revealer) ensureDocument() error {
	if r.doc != nil {
		return nil
	}
	if r.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	doc, err := document.Load(r.filename, document.WithCompression(r.config.Compress))
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	r.doc = doc
	r.ownsDoc = true
	return nil
}

// Close releases the document if the Revealer loaded it.
// It is safe to call Close multiple times.
func (r *Revealer) Close() error {
	if r.ownsDoc && r.doc != nil {
		err := r.doc.Close()
		r.doc = nil
		r.ownsDoc = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Revealer instance)
// ============================================================================

// Pages restricts processing to the given pages (1-indexed). Other pages
// are written out unchanged. Multiple calls are cumulative.
//
// Example:
//
//	summary, err := pdfreveal.Open("doc.pdf").Pages(1, 3).Background().Save(ctx, "out.pdf")
func (r *Revealer) Pages(pages ...int) *Revealer {
	next := r.clone()
	next.pages = append(next.pages, pages...)
	return next
}

// PageRange restricts processing to a range of pages (1-indexed, inclusive).
func (r *Revealer) PageRange(start, end int) *Revealer {
	next := r.clone()
	if start > end {
		next.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return next
	}
	for i := start; i <= end; i++ {
		next.pages = append(next.pages, i)
	}
	return next
}

// WithConfig replaces the whole configuration.
func (r *Revealer) WithConfig(cfg Config) *Revealer {
	next := r.clone()
	next.config = cfg.clone()
	return next
}

// Background selects draw-order analysis.
func (r *Revealer) Background() *Revealer {
	next := r.clone()
	next.config.Mode = ModeBackground
	return next
}

// RemoveRectangles selects rectangle mode and removes rectangular fills
// whose width and height fall in rng.
func (r *Revealer) RemoveRectangles(rng redact.Range) *Revealer {
	next := r.clone()
	next.config.Mode = ModeRectangle
	next.config.RemoveRectangles = true
	next.config.EdgeLower = rng.Lower
	next.config.EdgeUpper = rng.Upper
	return next
}

// StrictRectangles also requires removed fills to have four perpendicular
// edges.
func (r *Revealer) StrictRectangles() *Revealer {
	next := r.clone()
	next.config.StrictRectangle = true
	return next
}

// TargetColors selects rectangle mode and recolors text drawn in any of
// colors. Multiple calls are cumulative.
func (r *Revealer) TargetColors(colors ...graphicsstate.Color) *Revealer {
	next := r.clone()
	next.config.Mode = ModeRectangle
	next.config.TargetColors = append(next.config.TargetColors, colors...)
	return next
}

// Highlight sets the color revealed text is drawn in.
func (r *Revealer) Highlight(c graphicsstate.Color) *Revealer {
	next := r.clone()
	next.config.Highlight = c
	return next
}

// LegacyEmit writes colors the way older releases did.
func (r *Revealer) LegacyEmit() *Revealer {
	next := r.clone()
	next.config.EmitMode = graphicsstate.EmitLegacy
	return next
}

// Workers sets how many pages are analysed at once.
func (r *Revealer) Workers(n int) *Revealer {
	next := r.clone()
	next.config.Workers = n
	return next
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document.
// This does NOT close the document.
func (r *Revealer) PageCount() (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if err := r.ensureDocument(); err != nil {
		return 0, err
	}
	return len(r.doc.PageIDs()), nil
}

// Analyze reports what a run would change without modifying anything.
// This is a terminal operation that closes a document opened by Open.
func (r *Revealer) Analyze(ctx context.Context) (report.Summary, error) {
	defer r.Close()
	return r.run(ctx, false)
}

// Reveal rewrites the selected pages of the document in memory. It is
// meant for documents passed to FromDocument; the caller saves them.
func (r *Revealer) Reveal(ctx context.Context) (report.Summary, error) {
	return r.run(ctx, true)
}

// Save rewrites the selected pages and writes the whole document to path.
// Nothing is written if any page fails.
// This is a terminal operation that closes a document opened by Open.
func (r *Revealer) Save(ctx context.Context, path string) (report.Summary, error) {
	defer r.Close()

	summary, err := r.run(ctx, true)
	if err != nil {
		return summary, err
	}
	if err := r.doc.Save(path); err != nil {
		logger.Error("failed to save document", "path", path, "error", err)
		return summary, err
	}
	summary.Output = path
	return summary, nil
}

func (r *Revealer) run(ctx context.Context, apply bool) (report.Summary, error) {
	if r.err != nil {
		return report.Summary{}, r.err
	}
	if err := r.config.Validate(); err != nil {
		return report.Summary{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := r.ensureDocument(); err != nil {
		return report.Summary{}, err
	}

	summary := report.Summary{
		Input:   r.doc.Path(),
		Version: r.doc.Version(),
		Mode:    string(r.config.Mode),
	}
	if info, err := r.doc.Info(); err == nil {
		if title, ok := info["Title"].(core.String); ok {
			summary.Title = report.DecodeText([]byte(title))
		}
	}

	indices, err := r.resolvePages()
	if err != nil {
		return summary, err
	}

	jobs, err := r.loadJobs(indices)
	if err != nil {
		logger.Error("failed to read pages", "path", summary.Input, "error", err)
		return summary, err
	}

	if err := r.analyze(ctx, jobs, apply); err != nil {
		logger.Error("failed to rewrite pages", "path", summary.Input, "error", err)
		return summary, err
	}

	for _, job := range jobs {
		if apply && job.content != nil {
			if err := r.doc.ReplaceContent(job.id, job.content); err != nil {
				logger.Error("failed to replace page content", "page", job.index, "error", err)
				return summary, err
			}
		}
		summary.Pages = append(summary.Pages, report.PageResult{Index: job.index, Findings: job.findings})
	}

	removed, recolored, warnings := summary.Totals()
	logger.Debug("run finished", "path", summary.Input, "mode", summary.Mode, "pages", len(jobs),
		"removed", removed, "recolored", recolored, "warnings", warnings, true)
	return summary, nil
}

// loadJobs reads and decodes the selected pages one at a time; the
// document reader is not safe for concurrent use.
func (r *Revealer) loadJobs(indices []int) ([]*pageJob, error) {
	ids := r.doc.PageIDs()
	jobs := make([]*pageJob, 0, len(indices))

	for _, index := range indices {
		id := ids[index]
		data, err := r.doc.Content(id)
		if err != nil {
			return nil, atPage(err, index)
		}
		ops, err := contentstream.Decode(data)
		if err != nil {
			return nil, atPage(err, index)
		}
		overrides, warnings := r.doc.Overrides(id)
		for _, w := range warnings {
			logger.Debug("skipped graphics state resource", "page", index, "error", w)
		}

		jobs = append(jobs, &pageJob{
			index:     index,
			id:        id,
			ops:       ops,
			overrides: overrides,
			warnings:  warnings,
		})
	}
	return jobs, nil
}

// analyze runs the policy over every job concurrently. Each page gets its
// own policy and page state.
func (r *Revealer) analyze(ctx context.Context, jobs []*pageJob, apply bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, findings := r.config.Policy().Apply(job.ops, job.overrides)
			findings.Warnings = append(append([]error(nil), job.warnings...), findings.Warnings...)
			job.findings = findings

			logger.Debug("page analysed", "page", job.index, "ops", len(job.ops),
				"removed", len(findings.Removed), "recolored", len(findings.Recolored))

			if !apply || !findings.Changed() {
				return nil
			}
			data, err := contentstream.Encode(out)
			if err != nil {
				return atPage(err, job.index)
			}
			job.content = data
			return nil
		})
	}
	return g.Wait()
}

// resolvePages converts the 1-indexed selection to sorted, unique
// 0-indexed pages.
func (r *Revealer) resolvePages() ([]int, error) {
	pageCount := len(r.doc.PageIDs())

	if len(r.pages) == 0 {
		all := make([]int, pageCount)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, p := range r.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p-1] {
			seen[p-1] = true
			indices = append(indices, p-1)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// atPage fills in the page index of decode and encode errors.
func atPage(err error, page int) error {
	var decodeErr *core.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Page < 0 {
		decodeErr.Page = page
		return err
	}
	var encodeErr *core.EncodeError
	if errors.As(err, &encodeErr) && encodeErr.Page < 0 {
		encodeErr.Page = page
	}
	return err
}
