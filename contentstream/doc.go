// Package contentstream decodes PDF content streams into operations and
// encodes operations back into stream syntax.
//
//	ops, err := contentstream.Decode(data)
//	// ... inspect or replace operations ...
//	out, err := contentstream.Encode(ops)
//
// Decoding keeps every operator, including ones it does not understand, so
// Encode(Decode(x)) renders the same page as x. Inline images (BI ... ID
// ... EI) become one BI [Operation] whose operand is the image dictionary
// and whose ImageData holds the raw image bytes.
//
// Decode failures are *core.DecodeError values with the byte offset of the
// bad token; encode failures are *core.EncodeError values with the index of
// the operation.
package contentstream
