package model

import "math"

// Point is a position or a vector in user space.
type Point struct {
	X, Y float64
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Dot returns the dot product of p and other.
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// BBox is an axis-aligned box. X and Y are the lower-left corner, y up.
type BBox struct {
	X, Y          float64
	Width, Height float64
}

// NewBBoxFromPoints returns the bounds of points, or false if there are
// none.
func NewBBoxFromPoints(points ...Point) (BBox, bool) {
	if len(points) == 0 {
		return BBox{}, false
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = Point{math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)}
		hi = Point{math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)}
	}
	return BBox{X: lo.X, Y: lo.Y, Width: hi.X - lo.X, Height: hi.Y - lo.Y}, true
}

func (b BBox) Right() float64 { return b.X + b.Width }
func (b BBox) Top() float64   { return b.Y + b.Height }
func (b BBox) Area() float64  { return b.Width * b.Height }

// Contains reports whether p lies inside b or on its border.
func (b BBox) Contains(p Point) bool {
	return b.X <= p.X && p.X <= b.Right() && b.Y <= p.Y && p.Y <= b.Top()
}

// Matrix is an affine transform [a b c d e f]. Points are row vectors:
// x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a transform moving points by (tx, ty).
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a transform scaling x by sx and y by sy.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

func (m Matrix) IsIdentity() bool { return m == Identity() }

// Transform maps p through m.
func (m Matrix) Transform(p Point) Point {
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return Point{a*p.X + c*p.Y + e, b*p.X + d*p.Y + f}
}

// Multiply returns m × n, the transform applying m first and n second.
// The cm operator computes M.Multiply(CTM).
func (m Matrix) Multiply(n Matrix) Matrix {
	var r Matrix
	r[0] = m[0]*n[0] + m[1]*n[2]
	r[1] = m[0]*n[1] + m[1]*n[3]
	r[2] = m[2]*n[0] + m[3]*n[2]
	r[3] = m[2]*n[1] + m[3]*n[3]
	r[4] = m[4]*n[0] + m[5]*n[2] + n[4]
	r[5] = m[4]*n[1] + m[5]*n[3] + n[5]
	return r
}
