package ilsd

import "math"

// Bump is the cross section of a ridge or hollow: a convex (or concave, for
// a hollow) relief rising above (or sinking below) a locally estimated
// baseline within one scan (spec.md §3, §4.3). Grounded on
// original_source/src/ASDetector/bump.h / bump.cpp (bumpmodel.cpp for its
// tunables, captured in BumpModel).
type Bump struct {
	model *BumpModel

	status   BumpStatus
	accepted bool

	// baseline: y = baseSlope*x + baseIntercept, fit by convex-hull
	// elimination of the points below (resp. above, for a hollow) the
	// current hull (spec.md §4.3 step 1).
	baseSlope     float64
	baseIntercept float64

	summitIdx    int
	summit       Pt2f
	far1, far2   Pt2f // the two baseline support points bracketing the summit

	// points retains the fitted profile so the measure line can later
	// re-intersect it without re-running Detect/Track (spec.md §4.3).
	points []Pt2f

	area         float64
	massCenter   Pt2f
	surfaceCtr   Pt2f
	areaUpper    float64
	areaLower    float64

	hasTrend     bool
	trendA, trendB float64 // flank trend line y = trendA*x + trendB, optional

	// measureT, measureR are the translation/tilt ratios (of heightEst)
	// applied to the baseline to obtain the adjustable measure line
	// (spec.md §4.3's "measure line": 0<=measureT<=0.8, |measureR|<=0.95,
	// |measureR+measureT|<=0.95). measureFeet1/2, measureSummitIdx and
	// measureArea are the re-intersection of that adjusted line with the
	// profile, recomputed by recomputeMeasureLine.
	measureT, measureR float64
	measureFeet1, measureFeet2 Pt2f
	measureSummitIdx           int
	measureArea                float64

	sRef, eRef float32
	posRef     float32
	altRef     float32
	widthRef   float32
	heightRef  float32

	posEst, altEst, widthEst, heightEst float32

	posOK, altOK, widthOK, heightOK bool

	devEst, slopeEst float32
}

// NewBump creates an unfitted bump governed by the given model.
func NewBump(model *BumpModel) *Bump {
	return &Bump{model: model}
}

func (b *Bump) Status() BumpStatus { return b.status }
func (b *Bump) Accepted() bool     { return b.accepted }
func (b *Bump) Accept()            { b.accepted = true }
func (b *Bump) Prune()             { b.accepted = false }

// Reliable reports whether all four consistency axes (position, altitude,
// width, height) pass.
func (b *Bump) Reliable() bool { return b.posOK && b.altOK && b.widthOK && b.heightOK }

// Possible reports whether at least position or altitude passes.
func (b *Bump) Possible() bool { return b.posOK || b.altOK }

func (b *Bump) Summit() Pt2f      { return b.summit }
func (b *Bump) Area() float64     { return b.area }
func (b *Bump) MassCenter() Pt2f  { return b.massCenter }
func (b *Bump) SurfaceCenter() Pt2f { return b.surfaceCtr }
func (b *Bump) AreaBounds() (lo, hi float64) { return b.areaLower, b.areaUpper }
func (b *Bump) HasTrend() bool    { return b.hasTrend }

func (b *Bump) EstimatedDeviation() float32 { return b.devEst }
func (b *Bump) SetDeviation(v float32)      { b.devEst = v }
func (b *Bump) EstimatedSlope() float32     { return b.slopeEst }
func (b *Bump) SetSlope(v float32)          { b.slopeEst = v }

func (b *Bump) EstimatedCenter() float32 { return b.posEst }
func (b *Bump) EstimatedWidth() float32  { return b.widthEst }
func (b *Bump) EstimatedHeight() float32 { return b.heightEst }

// hasHole reports whether the largest inter-point gap of the scan exceeds
// the model's hole tolerance relative to the stroke length, per spec.md
// §4.3 step 0.
func (b *Bump) hasHole(points []Pt2f, l12 float32) bool {
	if len(points) < 2 {
		return false
	}
	max := float32(0)
	for i := 1; i < len(points); i++ {
		d := points[i].X - points[i-1].X
		if d > max {
			max = d
		}
	}
	return max > b.model.HoleMaxRelativeLength*l12
}

// Detect fits a bump to a scan with no reference (spec.md §4.3), grounded
// on Bump::detect in the original.
func (b *Bump) Detect(points []Pt2f, l12 float32) bool {
	if len(points) < b.model.MinCountOfPoints {
		b.status = BumpNotEnoughInputPoints
		return false
	}
	if b.hasHole(points, l12) {
		b.status = BumpHoleInInputPoints
		return false
	}
	return b.fit(points)
}

// Track fits a bump to a scan given a reference from the previous accepted
// bump (spec.md §4.3, tracking path).
func (b *Bump) Track(points []Pt2f, ref *Bump, confDist int, l12 float32) bool {
	if ref != nil {
		b.sRef, b.eRef = ref.sRef, ref.eRef
		b.posRef = ref.posEst + ref.devEst
		b.altRef = ref.altEst + ref.slopeEst
		b.widthRef = ref.widthEst
		b.heightRef = ref.heightEst
	}
	if len(points) < b.model.MinCountOfPoints {
		b.status = BumpNotEnoughInputPoints
		return false
	}
	if b.hasHole(points, l12) {
		b.status = BumpHoleInInputPoints
		return false
	}
	if !b.fit(points) {
		return false
	}
	if confDist >= 0 {
		b.checkConsistency()
	}
	return b.status == BumpOK
}

// fit runs the shared baseline/summit/area computation used by both Detect
// and Track (spec.md §4.3 steps 1-4).
func (b *Bump) fit(points []Pt2f) bool {
	b.fitBaseline(points)

	// summit: farthest point from the baseline, on the bump's polarity.
	bestIdx := -1
	bestDist := 0.0
	for i, p := range points {
		base := b.baseSlope*float64(p.X) + b.baseIntercept
		d := float64(p.Y) - base
		if !b.model.Over {
			d = -d
		}
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		b.status = BumpNoBumpLine
		return false
	}
	b.summitIdx = bestIdx
	b.summit = points[bestIdx]

	height := bestDist
	if height < float64(b.model.MinHeight) {
		b.status = BumpTooLow
		return false
	}

	width := points[len(points)-1].X - points[0].X
	if width < b.model.MinWidth {
		b.status = BumpTooNarrow
		return false
	}

	b.far1, b.far2 = points[0], points[len(points)-1]
	b.points = points
	b.computeAreaAndCenters(points)

	b.posEst = b.summit.X
	b.altEst = b.summit.Y
	b.widthEst = width
	b.heightEst = float32(height)

	if b.model.WithTrend {
		b.fitTrend(points, bestIdx)
	}

	// the measure line starts coincident with the raw fit (translation
	// and tilt both zero); recomputeMeasureLine re-intersects with the
	// now-current profile so MeasureFeet/MeasureSummitIndex/MeasureArea
	// are valid without requiring a separate SetMeasureLine call.
	b.measureT, b.measureR = 0, 0
	b.recomputeMeasureLine()

	b.status = BumpOK
	b.accepted = true
	return true
}

// fitBaseline fits the bump's baseline by convex-hull elimination (spec.md
// §4.1's "baseline by convex-hull elimination"): the lower hull (resp.
// upper, for a hollow) of the scan's points is computed, and the baseline
// is the chord between the hull's two extreme points, i.e. the segment
// that would remain once every point lying strictly above (below) it has
// been iteratively pared away.
func (b *Bump) fitBaseline(points []Pt2f) {
	lattice := make([]Pt2i, len(points))
	for i, p := range points {
		y := p.Y
		if !b.model.Over {
			y = -y
		}
		lattice[i] = Pt2i{X: ToLattice(p.X), Y: ToLattice(y)}
	}
	hull := ConvexHull(lattice)
	// lower hull chain: scan for the two points minimizing y at the
	// extremes of x, matching the "eliminate points above the growing
	// hull" construction.
	lo := hull[0]
	hi := hull[0]
	for _, p := range hull {
		if p.X < lo.X || (p.X == lo.X && p.Y < lo.Y) {
			lo = p
		}
		if p.X > hi.X || (p.X == hi.X && p.Y < hi.Y) {
			hi = p
		}
	}
	if hi.X == lo.X {
		b.baseSlope, b.baseIntercept = 0, FromLatticeF(lo.Y)
		return
	}
	slope := float64(hi.Y-lo.Y) / float64(hi.X-lo.X)
	intercept := FromLatticeF(lo.Y) - slope*FromLatticeF(lo.X)
	if !b.model.Over {
		slope, intercept = -slope, -intercept
	}
	b.baseSlope, b.baseIntercept = slope, intercept
}

// FromLatticeF converts a millimeter-lattice value back to meters as a
// float64, for use in the baseline/area arithmetic.
func FromLatticeF(v int) float64 { return float64(v) / Lattice_scale }

// areaStrip is one trapezoidal strip of the profile relative to the
// baseline, clipped to non-negative height on the bump's polarity, kept
// alongside the raw (unclipped) endpoints so later passes (surface center,
// area bounds) can re-walk the same decomposition without re-deriving it.
type areaStrip struct {
	x0, x1         float64
	rawY0, rawY1   float64
	h0, h1         float64 // baseline-relative height, clipped >= 0
	a              float64 // trapezoidal area of the strip
}

// computeAreaAndCenters integrates the bump's cross-sectional area above
// (below) the baseline by trapezoidal rule (spec.md §4.3 step 3), then
// derives:
//   - massCenter: the area centroid, by the exact trapezoid-strip moment
//     formulas (first moment of area, not of the boundary curve);
//   - surfaceCtr: the point where the vertical line bisecting the signed
//     area meets the profile (spec.md §4.3's "surface center"), found by
//     walking the strips until half the total area is enclosed and solving
//     for the exact crossing within the straddling strip;
//   - areaUpper/areaLower: the areas of the two flanks either side of the
//     summit, each doubled: areaUpper from the flank before the summit in
//     scan order (baseline-to-summit), areaLower from the flank after it
//     (summit-to-baseline). This
//     is exactly area_est for a profile symmetric about the summit and so
//     satisfies the zero-measure-line idempotence invariant (spec.md §8)
//     while still giving a real (non-fabricated) envelope for asymmetric
//     ones.
func (b *Bump) computeAreaAndCenters(points []Pt2f) {
	strips := make([]areaStrip, 0, len(points)-1)
	var area, momentX, momentY float64
	for i := 1; i < len(points); i++ {
		x0, x1 := float64(points[i-1].X), float64(points[i].X)
		rawY0, rawY1 := float64(points[i-1].Y), float64(points[i].Y)
		h0 := rawY0 - (b.baseSlope*x0 + b.baseIntercept)
		h1 := rawY1 - (b.baseSlope*x1 + b.baseIntercept)
		if !b.model.Over {
			h0, h1 = -h0, -h1
		}
		if h0 < 0 {
			h0 = 0
		}
		if h1 < 0 {
			h1 = 0
		}
		dx := x1 - x0
		segArea := (h0 + h1) / 2 * dx
		area += segArea
		if dx > 0 {
			momentX += x0*segArea + dx*dx*(h0+2*h1)/6
			momentY += dx * (h0*h0 + h0*h1 + h1*h1) / 6
		}
		strips = append(strips, areaStrip{x0: x0, x1: x1, rawY0: rawY0, rawY1: rawY1, h0: h0, h1: h1, a: segArea})
	}
	b.area = area
	if area > 0 {
		cx := momentX / area
		b.massCenter = Pt2f{X: float32(cx), Y: float32(momentY/area) + b.baseAt(float32(cx))}
	} else {
		b.massCenter = b.summit
	}

	b.surfaceCtr = b.summit
	if area > 0 {
		target := area / 2
		acc := 0.0
		for _, s := range strips {
			if acc+s.a >= target {
				segLen := s.x1 - s.x0
				dx := solveStripOffset(s.h0, s.h1, segLen, target-acc)
				t := 0.0
				if segLen > 0 {
					t = dx / segLen
				}
				b.surfaceCtr = Pt2f{X: float32(s.x0 + dx), Y: float32(s.rawY0 + t*(s.rawY1-s.rawY0))}
				break
			}
			acc += s.a
		}
	}

	summitX := float64(b.summit.X)
	var lowerFlank, upperFlank float64
	for _, s := range strips {
		switch {
		case s.x1 <= summitX:
			upperFlank += s.a
		case s.x0 >= summitX:
			lowerFlank += s.a
		default:
			segLen := s.x1 - s.x0
			if segLen > 0 {
				t := (summitX - s.x0) / segLen
				hMid := s.h0 + t*(s.h1-s.h0)
				upperFlank += (s.h0 + hMid) / 2 * (summitX - s.x0)
				lowerFlank += (hMid + s.h1) / 2 * (s.x1 - summitX)
			}
		}
	}
	b.areaUpper = 2 * upperFlank
	b.areaLower = 2 * lowerFlank
}

// solveStripOffset returns the x-offset (0<=dx<=segLen) from a strip's left
// edge at which the area accumulated so far within the strip reaches
// target, given the strip's clipped heights h0 (left) and h1 (right). The
// height is linear in x within a strip, so accumulated area is quadratic.
func solveStripOffset(h0, h1, segLen, target float64) float64 {
	if segLen <= 0 {
		return 0
	}
	if target <= 0 {
		return 0
	}
	if h0 == h1 {
		if h0 <= 0 {
			return 0
		}
		dx := target / h0
		if dx > segLen {
			dx = segLen
		}
		return dx
	}
	a := (h1 - h0) / (2 * segLen)
	disc := h0*h0 - 4*a*(-target)
	if disc < 0 {
		disc = 0
	}
	dx := (-h0 + math.Sqrt(disc)) / (2 * a)
	if dx < 0 {
		dx = 0
	}
	if dx > segLen {
		dx = segLen
	}
	return dx
}

func (b *Bump) baseAt(x float32) float32 {
	return float32(b.baseSlope*float64(x) + b.baseIntercept)
}

// baselineHeight returns the profile point's signed height above the
// baseline, on the bump's polarity (positive inside the bump).
func (b *Bump) baselineHeight(p Pt2f) float64 {
	h := float64(p.Y) - (b.baseSlope*float64(p.X) + b.baseIntercept)
	if !b.model.Over {
		h = -h
	}
	return h
}

// WidthAtHeightRatio walks outward from the summit on both sides of the
// fitted profile until the height drops below ratio*heightEst, linearly
// interpolating the crossing, and returns the distance between the two
// crossings (spec.md §4.6's "mean width at height ratio r"). A side whose
// height never drops below the threshold ends at the profile's outermost
// point on that side. ok is false when the bump has no profile or the two
// crossings enclose no positive width.
func (b *Bump) WidthAtHeightRatio(ratio float32) (width float32, ok bool) {
	pts := b.points
	if len(pts) == 0 {
		return 0, false
	}
	threshold := float64(ratio) * math.Abs(float64(b.heightEst))

	interp := func(i, j int) float64 {
		hi, hj := b.baselineHeight(pts[i]), b.baselineHeight(pts[j])
		t := 0.0
		if hj != hi {
			t = (threshold - hi) / (hj - hi)
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		return float64(pts[i].X) + t*float64(pts[j].X-pts[i].X)
	}

	leftX := float64(pts[0].X)
	for i := b.summitIdx; i > 0; i-- {
		if b.baselineHeight(pts[i-1]) < threshold {
			leftX = interp(i-1, i)
			break
		}
		leftX = float64(pts[i-1].X)
	}
	rightX := float64(pts[len(pts)-1].X)
	for i := b.summitIdx; i < len(pts)-1; i++ {
		if b.baselineHeight(pts[i+1]) < threshold {
			rightX = interp(i, i+1)
			break
		}
		rightX = float64(pts[i+1].X)
	}
	if rightX <= leftX {
		return 0, false
	}
	return float32(rightX - leftX), true
}

// fitTrend fits a straight flank trend on the rising (or falling) side of
// the summit, kept only if it spans at least MinTrendSize points and its
// own digital thickness pinches below TrendMinPinch (spec.md §4.3's
// optional "trend" refinement, TREND_PERSISTENCE/DEFAULT_TREND_MIN_PINCH
// in the original bumpmodel.cpp).
func (b *Bump) fitTrend(points []Pt2f, summitIdx int) {
	if summitIdx+1 < b.model.MinTrendSize {
		b.hasTrend = false
		return
	}
	flank := points[:summitIdx+1]
	lattice := make([]Pt2i, len(flank))
	for i, p := range flank {
		lattice[i] = Pt2i{X: ToLattice(p.X), Y: ToLattice(p.Y)}
	}
	builder := NewSegmentBuilder(float64(b.model.TrendMinPinch), lattice[0])
	ok := true
	for _, p := range lattice[1:] {
		if !builder.AddRightSorted(p) {
			ok = false
		}
	}
	dss, fitted := builder.EndOfBirth()
	if !fitted || !ok {
		b.hasTrend = false
		return
	}
	b.hasTrend = true
	if dss.B != 0 {
		b.trendA = -float64(dss.A) / float64(dss.B)
		b.trendB = float64(dss.C) / float64(dss.B) / Lattice_scale
	}
}

// checkConsistency evaluates the four tracking axes (position, altitude,
// width, height) against the reference, each under its own tolerance mode
// (spec.md §4.3's DEF_POSITION/ALTITUDE/WIDTH/HEIGHT control families).
func (b *Bump) checkConsistency() {
	b.posOK = checkAxis(b.model.PositionControl, float64(b.posEst), float64(b.posRef), float64(b.model.PositionTolerance), float64(b.model.PositionRelTolerance))
	b.altOK = checkAxis(b.model.AltitudeControl, float64(b.altEst), float64(b.altRef), float64(b.model.AltitudeTolerance), float64(b.model.AltitudeRelTolerance))
	b.widthOK = checkAxis(b.model.WidthControl, float64(b.widthEst), float64(b.widthRef), float64(b.model.WidthTolerance), float64(b.model.WidthRelTolerance))
	b.heightOK = checkAxis(b.model.HeightControl, float64(b.heightEst), float64(b.heightRef), float64(b.model.HeightTolerance), float64(b.model.HeightRelTolerance))

	if !b.posOK && !b.altOK {
		b.status = BumpNoBumpLine
		return
	}
	if !b.widthOK {
		ratio := 0.0
		if b.widthRef != 0 {
			ratio = math.Abs(float64(b.widthEst-b.widthRef)) / float64(b.widthRef)
		}
		if ratio > float64(b.model.MaxHeightRatio) {
			b.status = BumpAngular
			return
		}
	}
	if b.hasTrend && math.Abs(b.trendA) < 1e-6 {
		b.status = BumpLinear
		return
	}
	b.status = BumpOK
}

func checkAxis(mode ToleranceMode, got, ref, abs_, rel float64) bool {
	switch mode {
	case ToleranceOff:
		return true
	case ToleranceAbsolute:
		return math.Abs(got-ref) <= abs_
	case ToleranceRelative:
		bound := rel * math.Abs(ref)
		if bound < abs_ {
			bound = abs_
		}
		return math.Abs(got-ref) <= bound
	default:
		return true
	}
}

// MeasureLine returns the bump's adjustable measure line anchor: the
// profile point at the re-intersected summit index (spec.md §4.3's
// "adjustable measure line"). Ridge.ConnectedPoints uses it as the
// centerline anchor of every accepted bump.
func (b *Bump) MeasureLine() Pt2f {
	if b.measureSummitIdx >= 0 && b.measureSummitIdx < len(b.points) {
		return b.points[b.measureSummitIdx]
	}
	return b.summit
}

// MeasureFeet returns the two points where the adjusted measure line
// re-intersects the profile, bracketing the relocated summit.
func (b *Bump) MeasureFeet() (Pt2f, Pt2f) { return b.measureFeet1, b.measureFeet2 }

// MeasureSummitIndex returns the profile index nearest the relocated
// summit under the adjusted measure line.
func (b *Bump) MeasureSummitIndex() int { return b.measureSummitIdx }

// MeasureArea returns the area between the adjusted measure line and the
// profile, restricted to [MeasureFeet()].
func (b *Bump) MeasureArea() float64 { return b.measureArea }

// SetMeasureLine translates the baseline upward by t*heightEst and tilts it
// by r*heightEst (spec.md §4.3's "measure line": 0<=t<=0.8, |r|<=0.95,
// |r+t|<=0.95 — out-of-range values are clamped into bounds, translation
// first, then the tilt is reduced until |r+t|<=0.95 holds),
// then re-intersects the adjusted line with the fitted profile to relocate
// the feet and summit index and recompute the measured area. It does not
// re-run Detect/Track: the original fit's Summit/Area/MassCenter/
// SurfaceCenter/AreaBounds are untouched; the adjusted quantities are
// exposed via MeasureFeet, MeasureSummitIndex, MeasureArea and MeasureLine.
func (b *Bump) SetMeasureLine(t, r float64) {
	if t < 0 {
		t = 0
	}
	if t > 0.8 {
		t = 0.8
	}
	if r > 0.95 {
		r = 0.95
	}
	if r < -0.95 {
		r = -0.95
	}
	if r+t > 0.95 {
		r = 0.95 - t
	}
	if r+t < -0.95 {
		r = -0.95 - t
	}
	b.measureT, b.measureR = t, r
	b.recomputeMeasureLine()
}

// measureLineAt returns the adjusted measure line's elevation at horizontal
// position x: the baseline moved toward the bump (up for a ridge, down for
// a hollow) by a uniform lift of measureT*heightEst plus a tilt of
// measureR*heightEst that is zero at the profile's midpoint and reaches its
// full value at the feet.
func (b *Bump) measureLineAt(x float64) float64 {
	h := math.Abs(float64(b.heightEst))
	half := float64(b.far2.X-b.far1.X) / 2
	mid := float64(b.far1.X+b.far2.X) / 2
	frac := 0.0
	if half != 0 {
		frac = (x - mid) / half
	}
	adj := b.measureT*h + b.measureR*h*frac
	base := b.baseSlope*x + b.baseIntercept
	if !b.model.Over {
		return base - adj
	}
	return base + adj
}

// recomputeMeasureLine re-intersects the current measureT/measureR line
// with the stored profile, relocating the feet, the summit index and the
// measured area (spec.md §4.3). Called once by fit (with measureT=measureR=0,
// so the result starts out coincident with far1/far2/summitIdx/area) and
// again whenever SetMeasureLine changes the adjustment.
func (b *Bump) recomputeMeasureLine() {
	pts := b.points
	if len(pts) == 0 {
		return
	}

	signedGap := func(p Pt2f) float64 {
		d := float64(p.Y) - b.measureLineAt(float64(p.X))
		if !b.model.Over {
			d = -d
		}
		return d
	}
	crossing := func(i, j int) Pt2f {
		p0, p1 := pts[i], pts[j]
		d0, d1 := signedGap(p0), signedGap(p1)
		t := 0.0
		if d1 != d0 {
			t = d0 / (d0 - d1)
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		return Pt2f{X: p0.X + float32(t)*(p1.X-p0.X), Y: p0.Y + float32(t)*(p1.Y-p0.Y)}
	}

	feet1 := pts[0]
	for i := b.summitIdx; i > 0; i-- {
		d0, d1 := signedGap(pts[i-1]), signedGap(pts[i])
		if (d0 <= 0 && d1 >= 0) || (d0 >= 0 && d1 <= 0) {
			feet1 = crossing(i-1, i)
			break
		}
		feet1 = pts[i-1]
	}
	feet2 := pts[len(pts)-1]
	for i := b.summitIdx; i < len(pts)-1; i++ {
		d0, d1 := signedGap(pts[i]), signedGap(pts[i+1])
		if (d0 <= 0 && d1 >= 0) || (d0 >= 0 && d1 <= 0) {
			feet2 = crossing(i, i+1)
			break
		}
		feet2 = pts[i+1]
	}
	b.measureFeet1, b.measureFeet2 = feet1, feet2

	bestIdx := b.summitIdx
	bestGap := math.Inf(-1)
	for i, p := range pts {
		if p.X < feet1.X || p.X > feet2.X {
			continue
		}
		if g := signedGap(p); g > bestGap {
			bestGap = g
			bestIdx = i
		}
	}
	b.measureSummitIdx = bestIdx

	area := 0.0
	prevX, prevH := 0.0, 0.0
	has := false
	for _, p := range pts {
		if p.X < feet1.X || p.X > feet2.X {
			continue
		}
		x := float64(p.X)
		h := signedGap(p)
		if h < 0 {
			h = 0
		}
		if has {
			area += (prevH + h) / 2 * (x - prevX)
		}
		prevX, prevH, has = x, h, true
	}
	b.measureArea = area
}
