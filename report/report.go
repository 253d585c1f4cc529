// Package report renders what a run changed, as plain text or as an HTML
// page.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tsawler/pdfreveal/model"
	"github.com/tsawler/pdfreveal/redact"
)

// PageResult holds the findings for one page.
type PageResult struct {
	Index    int // 0-based
	Findings redact.Findings
}

// Summary describes one processed document.
type Summary struct {
	Input   string
	Output  string
	Version string
	Title   string
	Mode    string
	Pages   []PageResult
}

// Totals sums the findings of every page.
func (s Summary) Totals() (removed, recolored, warnings int) {
	for _, p := range s.Pages {
		removed += len(p.Findings.Removed)
		recolored += len(p.Findings.Recolored)
		warnings += len(p.Findings.Warnings)
	}
	return removed, recolored, warnings
}

// Changed reports whether any page was modified.
func (s Summary) Changed() bool {
	for _, p := range s.Pages {
		if p.Findings.Changed() {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBox(b model.BBox) string {
	return fmt.Sprintf("[%s %s %s %s]", formatNumber(b.X), formatNumber(b.Y), formatNumber(b.Right()), formatNumber(b.Top()))
}

func formatPoint(p model.Point) string {
	return fmt.Sprintf("(%s, %s)", formatNumber(p.X), formatNumber(p.Y))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// WriteText writes a line per page with changes, then one line per change
// and a closing total.
func WriteText(w io.Writer, s Summary) error {
	ew := &errWriter{w: w}

	ew.printf("%s", s.Input)
	if s.Output != "" {
		ew.printf(" -> %s", s.Output)
	}
	if s.Version != "" {
		ew.printf(" (PDF %s)", s.Version)
	}
	ew.printf("\n")
	if s.Title != "" {
		ew.printf("title: %s\n", s.Title)
	}
	if s.Mode != "" {
		ew.printf("mode: %s\n", s.Mode)
	}

	for _, p := range s.Pages {
		f := p.Findings
		if !f.Changed() && len(f.Warnings) == 0 {
			continue
		}
		ew.printf("page %d: %s removed, %s recolored, %s\n", p.Index+1,
			plural(len(f.Removed), "fill"), plural(len(f.Recolored), "text"), plural(len(f.Warnings), "warning"))
		for _, r := range f.Removed {
			ew.printf("  removed fill #%d %s %s\n", r.ID, formatBox(r.BBox), r.Color)
		}
		for _, r := range f.Recolored {
			ew.printf("  revealed #%d %s at %s %s: %q\n", r.ID, r.Operator, formatPoint(r.Origin), r.Color, DecodeText(r.Raw))
		}
		for _, warning := range f.Warnings {
			ew.printf("  warning: %v\n", warning)
		}
	}

	removed, recolored, warnings := s.Totals()
	ew.printf("total: %s removed, %s recolored, %s\n",
		plural(removed, "fill"), plural(recolored, "text"), plural(warnings, "warning"))
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
