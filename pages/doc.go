// Package pages flattens the page tree of a document.
//
//	tree := pages.NewPageTree(root, r)
//	all, err := tree.Pages()
//	first, err := tree.GetPage(0)
//
// Each [Page] keeps the indirect reference of its dictionary, which is
// how a rewritten content stream is attached back to the right page.
//
// /Resources, /MediaBox, /CropBox and /Rotate set on a /Pages node apply
// to every page below it unless a nearer node sets them too. A page with
// no resources anywhere on its path has none; that is not an error.
//
// References are followed through an [ObjectResolver], normally a
// *reader.Reader.
package pages
