// Package core provides the PDF object model and the file-level syntax
// needed to load and save a document.
//
// # Object Types
//
// Every PDF value satisfies the [Object] interface: [Null], [Bool], [Int],
// [Real], [String], [Name], [Array], [Dict], [Stream] and [IndirectRef].
//
// # Reading
//
// [Lexer] tokenizes file syntax and [Parser] builds objects and indirect
// object definitions from it. [XRefParser] reads classic cross-reference
// tables, xref streams and hybrid files, following /Prev chains of
// incremental updates. [ObjectStream] gives access to objects stored in
// compressed object streams. [Stream.Decode] applies a stream's filters.
//
// # Writing
//
// [Serialize] and [WriteObject] produce PDF syntax for any object.
// [DocumentWriter] writes a complete file with a classic xref table.
// [Stream.SetContent] replaces stream data, Flate compressing on request.
//
// # Errors
//
// [DecodeError], [EncodeError], [InvalidResourceError],
// [MalformedOperandsError] and [IOError] classify the failures reported by
// the packages built on top of core.
package core
