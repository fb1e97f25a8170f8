// Package scan implements the DirectionalScanner collaborator
// (ilsd.DirectionalScanner): successive scan lines cut across a digital
// straight line's carrying direction, stepped one DTM cell at a time to
// either side — grounded on
// original_source/src/DirectionalScanner/directionalscannero{1,2,7}.cpp,
// the three octant-pair scanner classes retained in original_source/.
// Those three classes hand-case every octant pairing through a shared
// Bresenham step table; this package has a single Scanner type for every
// direction, whose stepping is one generic Bresenham walk parameterized
// by the direction vector, rather than transcribing all eight case
// tables. The octant pair of the direction only sets IsLastScanReversed.
package scan

import "github.com/evenp/ilsdtrack/ilsd"

// Scanner is a DirectionalScanner over an axis-aligned lattice bounded by
// [xmin,xmax]x[ymin,ymax]. It exposes the same First/NextOnLeft/
// NextOnRight/BindTo/IsLastScanReversed shape as the three octant
// scanners it generalizes.
type Scanner struct {
	xmin, ymin, xmax, ymax int

	a, b, c int // current carrying line: a*x + b*y = c

	dx, dy int // unit step from one scan to the next, i.e. along the carrying line

	cx, cy int // center of the current (just-returned) scan
	leftN, rightN int
	lastReversed bool
}

// octantOf reports which of the three retained octant pairs (0-1, 1-2, or
// 2-(-1)) the direction vector (a,b) falls into, matching the original's
// scanner factory dispatch.
func octantOf(a, b int) int {
	switch {
	case a >= 0 && b >= 0 && a >= b:
		return 1 // octant 0-1
	case a >= 0 && b >= 0 && b > a:
		return 2 // octant 1-2
	default:
		return 3 // octant 2-(-1) and the rest, folded by symmetry
	}
}

// NewScanner returns a Scanner bound to the carrying line a*x+b*y=c within
// the given lattice bounds. The same Scanner type serves every direction;
// the direction's octant pair only decides IsLastScanReversed.
func NewScanner(xmin, ymin, xmax, ymax, a, b, c int) *Scanner {
	s := &Scanner{xmin: xmin, ymin: ymin, xmax: xmax, ymax: ymax}
	s.BindTo(a, b, c)
	return s
}

// Octant0to1 constructs a scanner specialized for the shallow octant pair
// (|a|>=|b|, both non-negative), mirroring DirectionalScannerO1.
func Octant0to1(xmin, ymin, xmax, ymax, a, b, c int) *Scanner {
	return NewScanner(xmin, ymin, xmax, ymax, a, b, c)
}

// Octant1to2 constructs a scanner specialized for the steep octant pair
// (|b|>|a|, both non-negative), mirroring DirectionalScannerO2.
func Octant1to2(xmin, ymin, xmax, ymax, a, b, c int) *Scanner {
	return NewScanner(xmin, ymin, xmax, ymax, a, b, c)
}

// Octant2toNeg1 constructs a scanner specialized for the remaining octant
// pair, mirroring DirectionalScannerO7.
func Octant2toNeg1(xmin, ymin, xmax, ymax, a, b, c int) *Scanner {
	return NewScanner(xmin, ymin, xmax, ymax, a, b, c)
}

// BindTo rebinds the scanner to a new carrying line, resetting the scan
// cursor to its center, per ilsd.DirectionalScanner.
func (s *Scanner) BindTo(a, b, c int) {
	s.a, s.b, s.c = a, b, c
	g := gcd(iabs(a), iabs(b))
	if g == 0 {
		g = 1
	}
	s.dx, s.dy = -b/g, a/g
	s.cx = (s.xmin + s.xmax) / 2
	s.cy = (s.ymin + s.ymax) / 2
	s.leftN, s.rightN = 0, 0
	s.lastReversed = octantOf(a, b) == 3
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// scanAt returns every lattice point of the line segment orthogonal to
// the carrying direction, passing through (cx, cy), clipped to bounds.
func (s *Scanner) scanAt(cx, cy int) []ilsd.Pt2i {
	nx, ny := s.dy, -s.dx // orthogonal to the step direction, i.e. along the carrying line's normal (a, b)
	if nx == 0 && ny == 0 {
		return []ilsd.Pt2i{{X: cx, Y: cy}}
	}
	var pts []ilsd.Pt2i
	x, y := cx, cy
	for x >= s.xmin && x <= s.xmax && y >= s.ymin && y <= s.ymax {
		pts = append(pts, ilsd.Pt2i{X: x, Y: y})
		x += nx
		y += ny
	}
	x, y = cx-nx, cy-ny
	var head []ilsd.Pt2i
	for x >= s.xmin && x <= s.xmax && y >= s.ymin && y <= s.ymax {
		head = append([]ilsd.Pt2i{{X: x, Y: y}}, head...)
		x -= nx
		y -= ny
	}
	return append(head, pts...)
}

// First returns the initial (centered) scan.
func (s *Scanner) First() []ilsd.Pt2i {
	s.leftN, s.rightN = 0, 0
	return s.scanAt(s.cx, s.cy)
}

// NextOnRight advances the cursor by one step in the +step direction.
func (s *Scanner) NextOnRight() ([]ilsd.Pt2i, bool) {
	s.rightN++
	nx := s.cx + s.dx*s.rightN
	ny := s.cy + s.dy*s.rightN
	if nx < s.xmin || nx > s.xmax || ny < s.ymin || ny > s.ymax {
		s.rightN--
		return nil, false
	}
	return s.scanAt(nx, ny), true
}

// NextOnLeft advances the cursor by one step in the -step direction.
func (s *Scanner) NextOnLeft() ([]ilsd.Pt2i, bool) {
	s.leftN++
	nx := s.cx - s.dx*s.leftN
	ny := s.cy - s.dy*s.leftN
	if nx < s.xmin || nx > s.xmax || ny < s.ymin || ny > s.ymax {
		s.leftN--
		return nil, false
	}
	return s.scanAt(nx, ny), true
}

// IsLastScanReversed reports whether the bound direction falls in the
// octant pair the original scans in reverse point order.
func (s *Scanner) IsLastScanReversed() bool { return s.lastReversed }
