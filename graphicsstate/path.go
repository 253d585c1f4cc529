package graphicsstate

import (
	"math"

	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/model"
)

// PathSegmentType identifies the kind of path segment
type PathSegmentType int

const (
	PathMoveTo  PathSegmentType = iota // m
	PathLineTo                         // l
	PathCurveTo                        // c, v, y
	PathClose                          // h
)

// curveSteps is the number of chords used to flatten a Bézier curve.
const curveSteps = 16

// rightAngleTolerance bounds |cos θ| between consecutive edges of a strict
// rectangle.
const rightAngleTolerance = 1e-3

// PathSegment represents a segment of a path. MoveTo and LineTo carry one
// point, CurveTo carries two control points and the end point, Close none.
type PathSegment struct {
	Type   PathSegmentType
	Points []model.Point
}

// Subpath is a sequence of segments starting with a MoveTo.
type Subpath struct {
	Segments []PathSegment
}

// Start returns the point the subpath begins at.
func (sp Subpath) Start() model.Point {
	if len(sp.Segments) == 0 || len(sp.Segments[0].Points) == 0 {
		return model.Point{}
	}
	return sp.Segments[0].Points[0]
}

// Closed reports whether the subpath ends with a close segment.
func (sp Subpath) Closed() bool {
	n := len(sp.Segments)
	return n > 0 && sp.Segments[n-1].Type == PathClose
}

// Flatten returns the subpath as a polygon with curves replaced by chords.
// The closing edge back to the first point is implicit.
func (sp Subpath) Flatten() []model.Point {
	var pts []model.Point
	var cur model.Point
	for _, seg := range sp.Segments {
		switch seg.Type {
		case PathMoveTo, PathLineTo:
			cur = seg.Points[0]
			pts = append(pts, cur)
		case PathCurveTo:
			p0, p1, p2, p3 := cur, seg.Points[0], seg.Points[1], seg.Points[2]
			for i := 1; i <= curveSteps; i++ {
				pts = append(pts, cubicPoint(p0, p1, p2, p3, float64(i)/curveSteps))
			}
			cur = p3
		}
	}
	return pts
}

func cubicPoint(p0, p1, p2, p3 model.Point, t float64) model.Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return model.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// BBox returns the bounding box of the flattened subpath.
func (sp Subpath) BBox() (model.BBox, bool) {
	return model.NewBBoxFromPoints(sp.Flatten()...)
}

// qualifies reports whether the subpath has geometry enclosing some area.
func (sp Subpath) qualifies() bool {
	box, ok := sp.BBox()
	return ok && box.Area() > 0
}

// Contains tests whether p lies inside the subpath, closing it implicitly.
func (sp Subpath) Contains(p model.Point, rule FillRule) bool {
	return Region{Subpaths: []Subpath{sp}, Rule: rule}.Contains(p)
}

// windings returns the winding number of the subpath around p and the
// number of edges crossed by a ray from p towards +X.
func (sp Subpath) windings(p model.Point) (winding, crossings int) {
	poly := sp.Flatten()
	if len(poly) < 3 {
		return 0, 0
	}
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if a.Y <= p.Y {
			if b.Y > p.Y && isLeft(a, b, p) > 0 {
				winding++
				crossings++
			}
		} else if b.Y <= p.Y && isLeft(a, b, p) < 0 {
			winding--
			crossings++
		}
	}
	return winding, crossings
}

// isLeft is positive when p is left of the directed line a→b.
func isLeft(a, b, p model.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

// corners returns the vertices of a subpath made only of straight lines,
// dropping a final vertex that returns to the start. It reports false if
// the subpath contains a curve.
func (sp Subpath) corners() ([]model.Point, bool) {
	var pts []model.Point
	for _, seg := range sp.Segments {
		switch seg.Type {
		case PathCurveTo:
			return nil, false
		case PathMoveTo, PathLineTo:
			pts = append(pts, seg.Points[0])
		}
	}
	if n := len(pts); n > 1 && pts[n-1] == pts[0] {
		pts = pts[:n-1]
	}
	return pts, true
}

// FillRule selects how the interior of a path is determined.
type FillRule int

const (
	FillNonZero FillRule = iota
	FillEvenOdd
)

// FillRuleFor returns the fill rule used by a painting operator.
func FillRuleFor(operator string) FillRule {
	switch operator {
	case "f*", "B*", "b*":
		return FillEvenOdd
	default:
		return FillNonZero
	}
}

// IsFillOperator reports whether the operator fills the current path
// without stroking it.
func IsFillOperator(operator string) bool {
	switch operator {
	case "f", "F", "f*":
		return true
	}
	return false
}

// Path accumulates the subpaths of the current path. Painting does not
// discard them: the next construction operator that arrives without a
// current point starts a fresh path, so every painting operator sees all
// subpaths built since the previous one.
type Path struct {
	subpaths   []Subpath
	current    model.Point
	hasCurrent bool
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

// Clone returns an independent copy of the path.
func (p *Path) Clone() *Path {
	clone := *p
	clone.subpaths = make([]Subpath, len(p.subpaths))
	for i, sp := range p.subpaths {
		clone.subpaths[i] = Subpath{Segments: append([]PathSegment(nil), sp.Segments...)}
	}
	return &clone
}

// CurrentPoint returns the current point, if there is one.
func (p *Path) CurrentPoint() (model.Point, bool) {
	return p.current, p.hasCurrent
}

// Observe applies a path construction or painting operator.
func (p *Path) Observe(op contentstream.Operation) error {
	switch op.Operator {
	case "m", "l", "c", "v", "y", "re", "h":
		return p.construct(op)

	case "s", "b", "b*":
		p.closeLast()
		p.hasCurrent = false
	case "S", "f", "F", "f*", "B", "B*", "n":
		p.hasCurrent = false
	}
	return nil
}

// begin drops a painted path once a construction operator has been
// accepted; a rejected one leaves the path as it was.
func (p *Path) begin() {
	if !p.hasCurrent {
		p.subpaths = nil
	}
}

func (p *Path) construct(op contentstream.Operation) error {
	switch op.Operator {
	case "m":
		nums, err := numbers(op, 2)
		if err != nil {
			return err
		}
		pt := model.Point{X: nums[0], Y: nums[1]}
		p.begin()
		p.subpaths = append(p.subpaths, Subpath{Segments: []PathSegment{{Type: PathMoveTo, Points: []model.Point{pt}}}})
		p.current, p.hasCurrent = pt, true

	case "l":
		nums, err := numbers(op, 2)
		if err != nil {
			return err
		}
		if !p.hasCurrent {
			return malformed(op, "no current point")
		}
		pt := model.Point{X: nums[0], Y: nums[1]}
		p.appendSegment(PathSegment{Type: PathLineTo, Points: []model.Point{pt}})
		p.current = pt

	case "c", "v", "y":
		want := 6
		if op.Operator != "c" {
			want = 4
		}
		nums, err := numbers(op, want)
		if err != nil {
			return err
		}
		if !p.hasCurrent {
			return malformed(op, "no current point")
		}
		var c1, c2, end model.Point
		switch op.Operator {
		case "c":
			c1, c2, end = model.Point{X: nums[0], Y: nums[1]}, model.Point{X: nums[2], Y: nums[3]}, model.Point{X: nums[4], Y: nums[5]}
		case "v":
			c1, c2, end = p.current, model.Point{X: nums[0], Y: nums[1]}, model.Point{X: nums[2], Y: nums[3]}
		case "y":
			c1, end = model.Point{X: nums[0], Y: nums[1]}, model.Point{X: nums[2], Y: nums[3]}
			c2 = end
		}
		p.appendSegment(PathSegment{Type: PathCurveTo, Points: []model.Point{c1, c2, end}})
		p.current = end

	case "re":
		nums, err := numbers(op, 4)
		if err != nil {
			return err
		}
		x, y, w, h := nums[0], nums[1], nums[2], nums[3]
		p.begin()
		p.subpaths = append(p.subpaths, Subpath{Segments: []PathSegment{
			{Type: PathMoveTo, Points: []model.Point{{X: x, Y: y}}},
			{Type: PathLineTo, Points: []model.Point{{X: x + w, Y: y}}},
			{Type: PathLineTo, Points: []model.Point{{X: x + w, Y: y + h}}},
			{Type: PathLineTo, Points: []model.Point{{X: x, Y: y + h}}},
			{Type: PathClose},
		}})
		p.current, p.hasCurrent = model.Point{X: x, Y: y}, true

	case "h":
		p.begin()
		if start, ok := p.closeLast(); ok {
			p.current = start
		}
	}
	return nil
}

// appendSegment adds seg to the open subpath, starting a new one at the
// current point when the last subpath is closed.
func (p *Path) appendSegment(seg PathSegment) {
	n := len(p.subpaths)
	if n == 0 || p.subpaths[n-1].Closed() {
		p.subpaths = append(p.subpaths, Subpath{Segments: []PathSegment{{Type: PathMoveTo, Points: []model.Point{p.current}}}})
		n++
	}
	p.subpaths[n-1].Segments = append(p.subpaths[n-1].Segments, seg)
}

func (p *Path) closeLast() (model.Point, bool) {
	n := len(p.subpaths)
	if n == 0 {
		return model.Point{}, false
	}
	last := &p.subpaths[n-1]
	if !last.Closed() {
		last.Segments = append(last.Segments, PathSegment{Type: PathClose})
	}
	return last.Start(), true
}

// Subpaths returns the accumulated subpaths that enclose a non-zero area.
func (p *Path) Subpaths() []Subpath {
	var out []Subpath
	for _, sp := range p.subpaths {
		if sp.qualifies() {
			out = append(out, sp)
		}
	}
	return out
}

// IsRectangle reports whether exactly one qualifying subpath remains and
// its bounding box has width and height in [lower, upper). Only the
// bounding box is inspected.
func (p *Path) IsRectangle(lower, upper float64) bool {
	subpaths := p.Subpaths()
	if len(subpaths) != 1 {
		return false
	}
	box, _ := subpaths[0].BBox()
	return inRange(box.Width, lower, upper) && inRange(box.Height, lower, upper)
}

// IsStrictRectangle is IsRectangle with the additional requirement that
// the subpath has four straight edges meeting at right angles, each with a
// length in [lower, upper).
func (p *Path) IsStrictRectangle(lower, upper float64) bool {
	if !p.IsRectangle(lower, upper) {
		return false
	}
	pts, ok := p.Subpaths()[0].corners()
	if !ok || len(pts) != 4 {
		return false
	}
	for i := range pts {
		e1 := pts[(i+1)%4].Sub(pts[i])
		e2 := pts[(i+2)%4].Sub(pts[(i+1)%4])
		l1, l2 := math.Hypot(e1.X, e1.Y), math.Hypot(e2.X, e2.Y)
		if l1 == 0 || l2 == 0 {
			return false
		}
		if !inRange(l1, lower, upper) || !inRange(l2, lower, upper) {
			return false
		}
		if math.Abs(e1.Dot(e2))/(l1*l2) > rightAngleTolerance {
			return false
		}
	}
	return true
}

// Region returns the qualifying subpaths as a fillable region.
func (p *Path) Region(rule FillRule) Region {
	return Region{Subpaths: p.Subpaths(), Rule: rule}
}

// Contains reports whether pt is inside the area the current path would
// fill under rule.
func (p *Path) Contains(pt model.Point, rule FillRule) bool {
	return p.Region(rule).Contains(pt)
}

// BBox returns the bounding box of all qualifying subpaths.
func (p *Path) BBox() (model.BBox, bool) {
	return p.Region(FillNonZero).BBox()
}

// Region is a set of subpaths filled together with one fill rule.
type Region struct {
	Subpaths []Subpath
	Rule     FillRule
}

// Contains reports whether pt is inside the region.
func (r Region) Contains(pt model.Point) bool {
	winding, crossings := 0, 0
	for _, sp := range r.Subpaths {
		w, c := sp.windings(pt)
		winding += w
		crossings += c
	}
	if r.Rule == FillEvenOdd {
		return crossings%2 == 1
	}
	return winding != 0
}

// BBox returns the bounding box of the region.
func (r Region) BBox() (model.BBox, bool) {
	var pts []model.Point
	for _, sp := range r.Subpaths {
		pts = append(pts, sp.Flatten()...)
	}
	return model.NewBBoxFromPoints(pts...)
}

func inRange(v, lower, upper float64) bool {
	return lower <= v && v < upper
}
