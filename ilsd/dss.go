package ilsd

import (
	"math"
	"sort"
)

// ConvexHull returns the vertices of the convex hull of a set of lattice
// points, in counter-clockwise order, using Andrew's monotone chain. Points
// are deduplicated; collinear runs collapse to their two extremes.
func ConvexHull(points []Pt2i) []Pt2i {
	if len(points) == 0 {
		return nil
	}
	pts := append([]Pt2i(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	uniq := pts[:1]
	for _, p := range pts[1:] {
		if !p.Equals(uniq[len(uniq)-1]) {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b Pt2i) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	lower := make([]Pt2i, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]Pt2i, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// hullThickness returns the polygon's width: the minimum, over every hull
// edge, of the perpendicular distance from the farthest hull vertex to the
// line through that edge — the antipodal edge-vertex pairs of rotating
// calipers (spec.md §4.1).
func hullThickness(hull []Pt2i) float64 {
	if len(hull) < 2 {
		return 0
	}
	if len(hull) == 2 {
		return 0
	}
	best := math.Inf(1)
	n := len(hull)
	for i := 0; i < n; i++ {
		p := hull[i]
		q := hull[(i+1)%n]
		dx, dy := float64(q.X-p.X), float64(q.Y-p.Y)
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		maxd := 0.0
		for _, r := range hull {
			d := math.Abs(dx*float64(r.Y-p.Y)-dy*float64(r.X-p.X)) / norm
			if d > maxd {
				maxd = d
			}
		}
		if maxd < best {
			best = maxd
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

func gcdInt(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// DSS is a digital straight segment of fixed width: the frozen support of a
// plateau or a bump trend. All member lattice points satisfy
// A*x + B*y in [C, C+Width).
type DSS struct {
	A, B           int
	C              int
	Width          int
	Period         int
	Xmin, Ymin     int
	Xmax, Ymax     int
	hasPoints      bool
}

// Contains reports whether a lattice point lies within the segment's band.
func (d DSS) Contains(p Pt2i) bool {
	v := d.A*p.X + d.B*p.Y
	return v >= d.C && v < d.C+d.Width
}

// SupportVector returns the segment's (a, b) band coefficients.
func (d DSS) SupportVector() Vr2i { return Vr2i{X: d.A, Y: d.B} }

// Slope returns |dy/dx| of the segment's carrying direction, used by
// Plateau.track to reject an over-tilted DSS (spec.md §4.2 step 5). The
// carrying direction is orthogonal to the band normal (A, B).
func (d DSS) Slope() float64 {
	// direction orthogonal to (A,B) is (-B, A)
	dx, dy := float64(-d.B), float64(d.A)
	if dx == 0 {
		return math.Inf(1)
	}
	return math.Abs(dy / dx)
}

// StartEnd returns the segment's two extreme points along its carrying
// direction, projected to the lattice bounding box corners.
func (d DSS) StartEnd() (Pt2i, Pt2i) {
	return Pt2i{X: d.Xmin, Y: d.Ymin}, Pt2i{X: d.Xmax, Y: d.Ymax}
}

// SegmentBuilder grows the widest subset of a point set that still lies
// within a digital straight band of bounded width, one point at a time from
// either end — the DSB of spec.md §4.1 (grounded on
// original_source/src/BlurredSegment/bsproto.h; its ConvexHull and
// DigitalStraightLine collaborators were not retrieved with the original
// source, so the hull maintenance and band-fitting below are a fresh
// design built directly from the algorithmic description in spec.md §4.1).
type SegmentBuilder struct {
	maxWidth float64
	center   Pt2i
	left     []Pt2i // nearest-first order of points added on the left
	right    []Pt2i // nearest-first order of points added on the right
}

// NewSegmentBuilder starts a segment from a single lattice point.
func NewSegmentBuilder(maxWidth float64, center Pt2i) *SegmentBuilder {
	return &SegmentBuilder{maxWidth: maxWidth, center: center}
}

func (b *SegmentBuilder) allPoints() []Pt2i {
	pts := make([]Pt2i, 0, len(b.left)+len(b.right)+1)
	pts = append(pts, b.center)
	pts = append(pts, b.left...)
	pts = append(pts, b.right...)
	return pts
}

// MaxWidth returns the currently assigned maximal width.
func (b *SegmentBuilder) MaxWidth() float64 { return b.maxWidth }

// SetMaxWidth tightens (or loosens) the allowed width; used by pinching.
func (b *SegmentBuilder) SetMaxWidth(w float64) { b.maxWidth = w }

// Thickness returns the current strict thickness of the built segment.
func (b *SegmentBuilder) Thickness() float64 {
	return hullThickness(ConvexHull(b.allPoints()))
}

// PointCount returns the number of points currently held.
func (b *SegmentBuilder) PointCount() int { return len(b.left) + len(b.right) + 1 }

// IsExtending reports whether the segment has at least two points.
func (b *SegmentBuilder) IsExtending() bool { return b.PointCount() >= 2 }

func (b *SegmentBuilder) tryAdd(side *[]Pt2i, p Pt2i) bool {
	trial := append(append([]Pt2i(nil), *side...), p)
	full := make([]Pt2i, 0, len(trial)+len(b.left)+len(b.right)+1)
	full = append(full, b.center)
	if side == &b.left {
		full = append(full, trial...)
		full = append(full, b.right...)
	} else {
		full = append(full, b.left...)
		full = append(full, trial...)
	}
	th := hullThickness(ConvexHull(full))
	if th > b.maxWidth {
		return false
	}
	*side = trial
	return true
}

// AddLeft tries to extend on the left; rolled back (returns false) if the
// resulting strict thickness would exceed MaxWidth.
func (b *SegmentBuilder) AddLeft(p Pt2i) bool { return b.tryAdd(&b.left, p) }

// AddRight tries to extend on the right; rolled back on overflow.
func (b *SegmentBuilder) AddRight(p Pt2i) bool { return b.tryAdd(&b.right, p) }

// AddLeftSorted adds a monotonically-ordered point on the left. A point
// coinciding with the current leftmost (or the center, if the left side is
// still empty) is always accepted without a width check.
func (b *SegmentBuilder) AddLeftSorted(p Pt2i) bool {
	last := b.center
	if len(b.left) > 0 {
		last = b.left[len(b.left)-1]
	}
	if p.Equals(last) {
		b.left = append(b.left, p)
		return true
	}
	return b.AddLeft(p)
}

// AddRightSorted adds a monotonically-ordered point on the right.
func (b *SegmentBuilder) AddRightSorted(p Pt2i) bool {
	last := b.center
	if len(b.right) > 0 {
		last = b.right[len(b.right)-1]
	}
	if p.Equals(last) {
		b.right = append(b.right, p)
		return true
	}
	return b.AddRight(p)
}

// RemoveLeft drops the last n additions on the left.
func (b *SegmentBuilder) RemoveLeft(n int) {
	if n > len(b.left) {
		n = len(b.left)
	}
	b.left = b.left[:len(b.left)-n]
}

// RemoveRight drops the last n additions on the right.
func (b *SegmentBuilder) RemoveRight(n int) {
	if n > len(b.right) {
		n = len(b.right)
	}
	b.right = b.right[:len(b.right)-n]
}

// LastLeft returns the most recently added point on the left, or the
// center if the left side is empty.
func (b *SegmentBuilder) LastLeft() Pt2i {
	if len(b.left) == 0 {
		return b.center
	}
	return b.left[len(b.left)-1]
}

// LastRight returns the most recently added point on the right, or the
// center if the right side is empty.
func (b *SegmentBuilder) LastRight() Pt2i {
	if len(b.right) == 0 {
		return b.center
	}
	return b.right[len(b.right)-1]
}

// AntipodalVertex returns the hull vertex farthest from the segment's
// thinnest hull edge: the rotating-calipers antipode of the edge that sets
// the segment's width. Plateau.Track withdraws a trailing point that
// coincides with this vertex, since it contributes nothing beyond the
// segment's own width (spec.md §4.2 step 4).
func (b *SegmentBuilder) AntipodalVertex() Pt2i {
	pts := b.allPoints()
	hull := ConvexHull(pts)
	if len(hull) < 3 {
		return b.center
	}
	best := math.Inf(1)
	antipode := hull[0]
	n := len(hull)
	for i := 0; i < n; i++ {
		p := hull[i]
		q := hull[(i+1)%n]
		dx, dy := float64(q.X-p.X), float64(q.Y-p.Y)
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		maxd := 0.0
		var far Pt2i
		for _, r := range hull {
			d := math.Abs(dx*float64(r.Y-p.Y)-dy*float64(r.X-p.X)) / norm
			if d > maxd {
				maxd = d
				far = r
			}
		}
		if maxd < best {
			best = maxd
			antipode = far
		}
	}
	return antipode
}

// EndOfBirth finalizes the builder: computes the support vector, offset,
// period and width, and freezes the segment. Returns ok=false if the
// segment currently holds fewer than two points (center included).
func (b *SegmentBuilder) EndOfBirth() (DSS, bool) {
	pts := b.allPoints()
	if len(pts) < 2 {
		return DSS{}, false
	}
	hull := ConvexHull(pts)

	var dx, dy int
	if len(hull) < 3 {
		dx = hull[len(hull)-1].X - hull[0].X
		dy = hull[len(hull)-1].Y - hull[0].Y
	} else {
		bestThick := math.Inf(1)
		n := len(hull)
		for i := 0; i < n; i++ {
			p := hull[i]
			q := hull[(i+1)%n]
			ex, ey := float64(q.X-p.X), float64(q.Y-p.Y)
			norm := math.Hypot(ex, ey)
			if norm == 0 {
				continue
			}
			maxd := 0.0
			for _, r := range hull {
				d := math.Abs(ex*float64(r.Y-p.Y)-ey*float64(r.X-p.X)) / norm
				if d > maxd {
					maxd = d
				}
			}
			if maxd < bestThick {
				bestThick = maxd
				dx, dy = q.X-p.X, q.Y-p.Y
			}
		}
	}
	if dx == 0 && dy == 0 {
		dx = 1
	}
	g := gcdInt(dx, dy)
	dx, dy = dx/g, dy/g
	a, bcoef := -dy, dx

	minProj, maxProj := a*pts[0].X+bcoef*pts[0].Y, a*pts[0].X+bcoef*pts[0].Y
	xmin, ymin, xmax, ymax := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts {
		v := a*p.X + bcoef*p.Y
		if v < minProj {
			minProj = v
		}
		if v > maxProj {
			maxProj = v
		}
		if p.X < xmin {
			xmin = p.X
		}
		if p.X > xmax {
			xmax = p.X
		}
		if p.Y < ymin {
			ymin = p.Y
		}
		if p.Y > ymax {
			ymax = p.Y
		}
	}
	period := abs(a)
	if abs(bcoef) > period {
		period = abs(bcoef)
	}
	return DSS{
		A: a, B: bcoef, C: minProj, Width: maxProj - minProj + 1, Period: period,
		Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax, hasPoints: true,
	}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
