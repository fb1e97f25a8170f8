// Package ilsd implements the linear-structure tracking engine: it fits
// plateau and bump cross-section primitives to successive LiDAR scans and
// propagates them along a user-drawn stroke to recover the centerline of a
// carriage track or a ridge/hollow.
package ilsd

import "math"

// Lattice_scale is the fixed-point resolution used by digital-geometry
// primitives: every continuous meter position is multiplied by this value
// and rounded to the nearest integer before being handed to the digital
// segment builder. 1000 gives 1 mm resolution on the lattice.
const Lattice_scale = 1000

// Pt2f is a point in the Euclidean plane, in meters.
type Pt2f struct {
	X float32
	Y float32
}

// Distance returns the Euclidean distance to another point.
func (p Pt2f) Distance(q Pt2f) float32 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// VectorTo returns the vector from p to q.
func (p Pt2f) VectorTo(q Pt2f) Vr2f {
	return Vr2f{X: q.X - p.X, Y: q.Y - p.Y}
}

// Vr2f is a vector in the Euclidean plane, in meters.
type Vr2f struct {
	X float32
	Y float32
}

// Norm2 returns the squared norm of the vector.
func (v Vr2f) Norm2() float32 { return v.X*v.X + v.Y*v.Y }

// ScalarProduct returns the scalar product with another vector.
func (v Vr2f) ScalarProduct(w Vr2f) float32 { return v.X*w.X + v.Y*w.Y }

// Pt2i is a point on the integer lattice (1 mm resolution once scaled).
type Pt2i struct {
	X int
	Y int
}

// Equals reports whether two lattice points coincide.
func (p Pt2i) Equals(q Pt2i) bool { return p.X == q.X && p.Y == q.Y }

// Vr2i is a vector on the integer lattice.
type Vr2i struct {
	X int
	Y int
}

// Norm2 returns the squared norm of the vector.
func (v Vr2i) Norm2() int { return v.X*v.X + v.Y*v.Y }

// ToLattice rounds a meter value onto the millimeter lattice, matching the
// original's `(int) (v * 1000 + (v < 0 ? -0.5f : 0.5f))` rounding rule.
func ToLattice(v float32) int {
	scaled := v * Lattice_scale
	if scaled < 0 {
		return int(scaled - 0.5)
	}
	return int(scaled + 0.5)
}

// FloorLattice floors a meter value onto the millimeter lattice, matching
// the original's `floor (v * 1000)` rule used while scanning a profile.
func FloorLattice(v float32) int {
	return int(math.Floor(float64(v) * Lattice_scale))
}

// FromLattice converts a millimeter-lattice value back to meters.
func FromLattice(v int) float32 {
	return float32(v) / Lattice_scale
}

// Point3 is one LiDAR return in meter units (x, y along the DTM plane, z
// elevation), as returned by a TileSet.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// Cell is an integer DTM cell coordinate.
type Cell struct {
	I int
	J int
}
