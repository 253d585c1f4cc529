// Package filters implements the PDF stream filters needed to read page
// content and cross-reference data, plus Flate encoding for rewritten
// content streams.
//
//	decoded, err := filters.FlateDecode(data, filters.Params{"Predictor": 12, "Columns": 5})
//	encoded, err := filters.FlateEncode(content)
//
// Decoders: FlateDecode and LZWDecode (both with TIFF and PNG predictors),
// ASCIIHexDecode, ASCII85Decode, RunLengthDecode and CCITTFaxDecode.
package filters
