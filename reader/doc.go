// Package reader loads the objects of an existing PDF file.
//
//	r, err := reader.Open("in.pdf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
// [NewReader] accepts any io.ReaderAt of known size instead of a path.
//
// Classic cross-reference tables, xref streams, hybrid files and /Prev
// chains of incremental updates are all read. Objects kept in object
// streams load like any other. Encrypted files are refused with
// [core.ErrEncrypted].
//
// Besides the trailer, catalog, info dictionary and flattened page list,
// a Reader hands out single objects by number ([Reader.GetObject]) or by
// reference ([Reader.ResolveReference]), and lists every live object
// ([Reader.Objects]) so a document can be written back in full.
//
// Loaded objects are cached until [Reader.ClearCache]. A Reader is not
// safe for concurrent use.
package reader
