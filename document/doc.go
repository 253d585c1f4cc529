// Package document is the container layer: it loads a PDF, hands out each
// page's resources, external graphics states and decoded content, accepts
// replacement content, and writes the result back out.
//
//	doc, err := document.Load("in.pdf")
//	if err != nil {
//	    return err
//	}
//	defer doc.Close()
//
//	for _, id := range doc.PageIDs() {
//	    data, _ := doc.Content(id)
//	    // ... rewrite data ...
//	    doc.ReplaceContent(id, data)
//	}
//	err = doc.Save("out.pdf")
//
// Saving always produces a single revision with a classic cross-reference
// table, whatever layout the input used.
package document
