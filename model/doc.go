// Package model holds the plane geometry shared by the content-stream
// trackers: points, axis-aligned boxes and PDF transformation matrices.
//
// Matrices follow the PDF convention of row vectors, so a point is mapped
// by [x y 1] × M and
//
//	ctm = model.Translate(10, 20).Multiply(ctm)
//
// is what the cm operator does to the current transformation matrix.
package model
