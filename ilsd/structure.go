package ilsd

import "math"

// assembly is the shared scaffolding of an assembled linear structure: one
// central primitive fitted on the seed scan, plus two sections growing
// away from it in either direction along the stroke (spec.md §4.5/§4.6;
// grounded on original_source/src/ASDetector/carriagetrack.h, whose
// CarriageTrack holds parallel rights/lefts vectors of CTrackSection*
// around a seed plateau). CarriageTrack and Ridge each wrap an assembly
// instantiated on their own primitive type, so the signed-index
// accounting below is written once.
type assembly[P primitive] struct {
	central P
	hasCentral bool

	rights *section[P] // increasing signed index, away from seedP1 toward seedP2 and beyond
	lefts  *section[P] // decreasing signed index

	seedP1, seedP2 Pt2f
	cellSize       float32

	status StructureStatus
}

func newAssembly[P primitive](seedP1, seedP2 Pt2f, cellSize float32) assembly[P] {
	return assembly[P]{
		rights:   newSection[P](false),
		lefts:    newSection[P](true),
		seedP1:   seedP1,
		seedP2:   seedP2,
		cellSize: cellSize,
	}
}

// SetCentral records the seed scan's primitive.
func (a *assembly[P]) SetCentral(p P, ok bool) {
	a.central = p
	a.hasCentral = ok
	if ok {
		p.Accept()
	}
}

// Status, SetStatus access the structure's terminal status.
func (a *assembly[P]) Status() StructureStatus    { return a.status }
func (a *assembly[P]) SetStatus(s StructureStatus) { a.status = s }

// Length returns the total count of scans spanned, central included.
func (a *assembly[P]) Length() int {
	n := a.rights.Len() + a.lefts.Len()
	if a.hasCentral {
		n++
	}
	return n
}

// NbHoles returns the total count of scans with no accepted primitive
// across both sections (the seed scan is always present).
func (a *assembly[P]) NbHoles() int { return a.rights.Holes() + a.lefts.Holes() }

// At returns the primitive at a signed scan index: 0 is the central
// (seed) primitive, positive indices run into rights, negative into
// lefts. ok is false for an index with no accepted primitive, or one
// beyond either section's recorded extent.
func (a *assembly[P]) At(index int) (p P, ok bool) {
	switch {
	case index == 0:
		return a.central, a.hasCentral
	case index > 0:
		i := index - 1
		if i >= a.rights.Len() {
			var zero P
			return zero, false
		}
		return a.rights.At(i)
	default:
		i := -index - 1
		if i >= a.lefts.Len() {
			var zero P
			return zero, false
		}
		return a.lefts.At(i)
	}
}

// LeftEnd, RightEnd return the smallest and largest signed indices
// recorded (inclusive), matching CarriageTrack::leftEnd/rightEnd.
func (a *assembly[P]) LeftEnd() int  { return -a.lefts.Len() }
func (a *assembly[P]) RightEnd() int { return a.rights.Len() }

// LastValidBeforeIndex walks backward (toward 0) from a signed index and
// returns the nearest accepted primitive and its index, used by trackers
// to re-seed a reference after a run of holes.
func (a *assembly[P]) LastValidBeforeIndex(index int) (p P, idx int, ok bool) {
	for i := index; ; {
		if i > 0 {
			i--
		} else if i < 0 {
			i++
		} else {
			break
		}
		if v, vok := a.At(i); vok {
			return v, i, true
		}
		if i == 0 {
			break
		}
	}
	if v, vok := a.At(0); vok {
		return v, 0, true
	}
	var zero P
	return zero, 0, false
}

// Spread returns the section's side-to-side signed-index width.
func (a *assembly[P]) Spread() int { return a.RightEnd() - a.LeftEnd() }

// PruneTails applies the tail-shortening rule to both sections.
func (a *assembly[P]) PruneTails(tailMinSize int) {
	a.rights.PruneDoubtfulTail(tailMinSize)
	a.lefts.PruneDoubtfulTail(tailMinSize)
}

// RelativeShiftLength returns the larger of the two sections'
// ShiftLength(), scaled by the scan cell size, matching
// CarriageTrack::relativeShiftLength (used by the max-shift-length pruning
// rule, spec.md §4.5).
func (a *assembly[P]) RelativeShiftLength() float32 {
	r, l := a.rights.ShiftLength(), a.lefts.ShiftLength()
	n := r
	if l > n {
		n = l
	}
	return float32(n) * a.cellSize
}

// Density returns the weighted fraction of accepted scans across both
// sections (spec.md §4.5's "density" pruning rule).
func (a *assembly[P]) Density() float64 {
	rn, ln := a.rights.Len(), a.lefts.Len()
	if rn+ln == 0 {
		return 1
	}
	return (a.rights.Density()*float64(rn) + a.lefts.Density()*float64(ln)) / float64(rn+ln)
}

// CarriageTrack is an assembled carriage track: a central plateau on the
// seed scan plus a run of tracked plateaux to either side (spec.md §3,
// §4.5; grounded on original_source/src/ASDetector/carriagetrack.h).
type CarriageTrack struct {
	assembly[*Plateau]
}

// NewCarriageTrack starts a carriage track from its seed stroke.
func NewCarriageTrack(seedP1, seedP2 Pt2f, cellSize float32) *CarriageTrack {
	return &CarriageTrack{assembly: newAssembly[*Plateau](seedP1, seedP2, cellSize)}
}

// ConnectedPoints reconstructs the track's centerline, in increasing
// signed-index order, from every accepted plateau's estimated center
// projected back onto the scan position (spec.md §4.6 "connected-point
// reconstruction").
func (c *CarriageTrack) ConnectedPoints() []Pt2f {
	var pts []Pt2f
	for i := c.LeftEnd(); i <= c.RightEnd(); i++ {
		p, ok := c.At(i)
		if !ok {
			continue
		}
		pts = append(pts, Pt2f{X: float32(i) * c.cellSize, Y: p.EstimatedCenter()})
	}
	return pts
}

// MeanWidth returns the mean plateau width over every accepted scan.
func (c *CarriageTrack) MeanWidth() float32 {
	var sum float32
	n := 0
	for i := c.LeftEnd(); i <= c.RightEnd(); i++ {
		p, ok := c.At(i)
		if !ok {
			continue
		}
		sum += p.EstimatedWidth()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// MeanHeight returns the mean plateau reference height (the minimal
// height of its detected band) over every accepted scan.
func (c *CarriageTrack) MeanHeight() float32 {
	var sum float32
	n := 0
	for i := c.LeftEnd(); i <= c.RightEnd(); i++ {
		p, ok := c.At(i)
		if !ok {
			continue
		}
		sum += p.MinHeight()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// SlopeOverSection returns the mean height change per meter between index
// `from` and `to` (the scan count between them times the cell size), used
// to characterize longitudinal grade.
func (c *CarriageTrack) SlopeOverSection(from, to int) float32 {
	pf, okf := c.At(from)
	pt, okt := c.At(to)
	if !okf || !okt || to == from {
		return 0
	}
	return (pt.MinHeight() - pf.MinHeight()) / (float32(to-from) * c.cellSize)
}

// Volume integrates width*height over the track's length by the
// trapezoidal rule, an estimate of the total material volume removed
// (hollow) or banked (embankment) along the tracked run.
func (c *CarriageTrack) Volume() float64 {
	var vol float64
	var prevW, prevH float32
	have := false
	for i := c.LeftEnd(); i <= c.RightEnd(); i++ {
		p, ok := c.At(i)
		if !ok {
			have = false
			continue
		}
		w, h := p.EstimatedWidth(), p.MinHeight()
		if have {
			vol += float64(c.cellSize) * float64(prevW*prevH+w*h) / 2
		}
		prevW, prevH, have = w, h, true
	}
	return vol
}

// Ridge is an assembled ridge or hollow: a central bump on the seed scan
// plus a run of tracked bumps to either side (spec.md §3, §4.5; grounded
// on the same carriagetrack.h shape, generalized to the bump primitive
// per original_source/src/ASDetector/ridge.h).
type Ridge struct {
	assembly[*Bump]
	over bool
}

// NewRidge starts a ridge (or, if over is false, a hollow) from its seed
// stroke.
func NewRidge(seedP1, seedP2 Pt2f, cellSize float32, over bool) *Ridge {
	return &Ridge{assembly: newAssembly[*Bump](seedP1, seedP2, cellSize), over: over}
}

// Over reports whether this is a ridge (true) or a hollow (false).
func (r *Ridge) Over() bool { return r.over }

// ConnectedPoints reconstructs the ridge's centerline from every accepted
// bump's measure line.
func (r *Ridge) ConnectedPoints() []Pt2f {
	var pts []Pt2f
	for i := r.LeftEnd(); i <= r.RightEnd(); i++ {
		b, ok := r.At(i)
		if !ok {
			continue
		}
		m := b.MeasureLine()
		pts = append(pts, Pt2f{X: float32(i) * r.cellSize, Y: m.Y})
	}
	return pts
}

// MeanWidth returns the mean and standard deviation of bump width at height
// ratio r across every accepted scan (spec.md §4.6): for each bump, walk
// outward from the summit on both sides until the height drops below
// ratio*h_est, interpolating the two feet.
func (r *Ridge) MeanWidth(ratio float32) (mean, stddev float32) {
	var widths []float32
	for i := r.LeftEnd(); i <= r.RightEnd(); i++ {
		b, ok := r.At(i)
		if !ok {
			continue
		}
		w, ok := b.WidthAtHeightRatio(ratio)
		if !ok {
			continue
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return 0, 0
	}
	var sum float32
	for _, w := range widths {
		sum += w
	}
	mean = sum / float32(len(widths))
	var sq float32
	for _, w := range widths {
		d := w - mean
		sq += d * d
	}
	stddev = float32(math.Sqrt(float64(sq) / float64(len(widths))))
	return mean, stddev
}

// MeanHeight returns the mean bump height over every accepted scan.
func (r *Ridge) MeanHeight() float32 {
	var sum float32
	n := 0
	for i := r.LeftEnd(); i <= r.RightEnd(); i++ {
		b, ok := r.At(i)
		if !ok {
			continue
		}
		sum += b.EstimatedHeight()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// Volume integrates each accepted bump's cross-sectional area over the
// ridge's length by the trapezoidal rule, reporting the mean (midpoint of
// each scan's [areaLower, areaUpper]) alongside lower/upper bounds obtained
// by integrating those bounds independently (spec.md §4.6).
func (r *Ridge) Volume() (mean, lower, upper float64) {
	var prevMean, prevLo, prevHi float64
	have := false
	for i := r.LeftEnd(); i <= r.RightEnd(); i++ {
		b, ok := r.At(i)
		if !ok {
			have = false
			continue
		}
		loA, hiA := b.AreaBounds()
		a := (loA + hiA) / 2
		if have {
			cs := float64(r.cellSize)
			mean += cs * (prevMean + a) / 2
			lower += cs * (prevLo + loA) / 2
			upper += cs * (prevHi + hiA) / 2
		}
		prevMean, prevLo, prevHi, have = a, loA, hiA, true
	}
	return mean, lower, upper
}
