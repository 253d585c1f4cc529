// Package pdfreveal undoes superficial redaction in PDF files: black boxes
// drawn over text and text drawn in the color of its background.
//
// Basic usage:
//
//	summary, err := pdfreveal.Open("redacted.pdf").
//	    Background().
//	    Save(ctx, "revealed.pdf")
//	if err != nil {
//	    // handle error
//	}
//	report.WriteText(os.Stdout, summary)
//
// Rectangle mode removes fills by size and recolors text of chosen colors:
//
//	summary, err := pdfreveal.Open("redacted.pdf").
//	    Pages(1, 2).
//	    RemoveRectangles(redact.DefaultRange()).
//	    TargetColors(graphicsstate.Gray(1)).
//	    Save(ctx, "revealed.pdf")
//
// Processor runs many documents with a bound on how many are open at once.
// For lower-level work, the document package is also available.
package pdfreveal

import (
	"github.com/tsawler/pdfreveal/document"
)

// Open returns a Revealer for the named file. The file is opened on the
// first terminal operation and closed by Save, Analyze or Close.
//
// Example:
//
//	summary, err := pdfreveal.Open("redacted.pdf").Background().Analyze(ctx)
func Open(filename string) *Revealer {
	return &Revealer{
		filename: filename,
		config:   *NewDefaultConfig(),
	}
}

// FromDocument returns a Revealer over an already loaded document. The
// caller keeps ownership and must close it.
//
// Example:
//
//	doc, err := document.Load("redacted.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	summary, err := pdfreveal.FromDocument(doc).Background().Reveal(ctx)
func FromDocument(doc *document.Document) *Revealer {
	return &Revealer{
		doc:    doc,
		config: *NewDefaultConfig(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfreveal.Must(pdfreveal.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
