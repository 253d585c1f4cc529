package report

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const stylesheet = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}
td.text{font-family:monospace}
tr.removed td.kind{color:#a00}
tr.recolored td.kind{color:#00a}
tr.warning td.kind{color:#a60}`

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// withText appends a text child to n and returns n.
func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(textNode(s))
	return n
}

func row(class string, cells ...string) *html.Node {
	tr := element(atom.Tr, "class", class)
	for i, c := range cells {
		td := element(atom.Td)
		switch i {
		case 1:
			td.Attr = append(td.Attr, html.Attribute{Key: "class", Val: "kind"})
		case len(cells) - 1:
			td.Attr = append(td.Attr, html.Attribute{Key: "class", Val: "text"})
		}
		tr.AppendChild(withText(td, c))
	}
	return tr
}

// WriteHTML writes a standalone HTML page with one table row per change.
// All document text is escaped by the renderer.
func WriteHTML(w io.Writer, s Summary) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "lang", "en")
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), "pdfreveal: "+s.Input))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), s.Input))

	meta := element(atom.Dl)
	addMeta := func(term, value string) {
		if value == "" {
			return
		}
		meta.AppendChild(withText(element(atom.Dt), term))
		meta.AppendChild(withText(element(atom.Dd), value))
	}
	addMeta("Output", s.Output)
	addMeta("Title", s.Title)
	addMeta("PDF version", s.Version)
	addMeta("Mode", s.Mode)
	removed, recolored, warnings := s.Totals()
	addMeta("Fills removed", strconv.Itoa(removed))
	addMeta("Texts recolored", strconv.Itoa(recolored))
	addMeta("Warnings", strconv.Itoa(warnings))
	body.AppendChild(meta)

	table := element(atom.Table)
	header := element(atom.Tr)
	for _, h := range []string{"Page", "Change", "Operator #", "Location", "Color", "Text"} {
		header.AppendChild(withText(element(atom.Th), h))
	}
	thead := element(atom.Thead)
	thead.AppendChild(header)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, p := range s.Pages {
		page := strconv.Itoa(p.Index + 1)
		for _, r := range p.Findings.Removed {
			tbody.AppendChild(row("removed", page, "fill removed", strconv.FormatInt(r.ID, 10), formatBox(r.BBox), r.Color.String(), ""))
		}
		for _, r := range p.Findings.Recolored {
			tbody.AppendChild(row("recolored", page, "text recolored", strconv.FormatInt(r.ID, 10), formatPoint(r.Origin), r.Color.String(), DecodeText(r.Raw)))
		}
		for _, warning := range p.Findings.Warnings {
			tbody.AppendChild(row("warning", page, "warning", "", "", "", fmt.Sprint(warning)))
		}
	}
	table.AppendChild(tbody)
	body.AppendChild(table)

	if !s.Changed() {
		body.AppendChild(withText(element(atom.P), "No hidden content was found."))
	}

	return html.Render(w, doc)
}
