package ilsd

import "sort"

// Plateau is the cross section of a carriage track: a flat segment at a
// consistent elevation within one scan (spec.md §3, §4.2). It owns its
// enclosing DSS. The previous accepted plateau used as its tracking
// template is passed to Track and only read there; the plateau does not
// keep a reference to it.
type Plateau struct {
	model *PlateauModel

	status   PlateauStatus
	accepted bool

	dss       *DSS
	locHeight float32

	hRef float32
	hMin float32

	sRef, eRef float32
	scanShift  int
	sNum, eNum int

	sInt, eInt float32
	sExt, eExt float32
	sEst, eEst float32

	sDist, eDist float32
	sOK, eOK, wOK bool

	widthChange int
	slopeEst    float32
	devEst      float32
}

// NewPlateau creates an unfitted plateau governed by the given model.
func NewPlateau(model *PlateauModel) *Plateau {
	return &Plateau{model: model, sDist: model.MaxLength, eDist: model.MaxLength}
}

// Status returns the detection/tracking status.
func (p *Plateau) Status() PlateauStatus { return p.status }

// Accepted reports whether the plateau was accepted into its track.
func (p *Plateau) Accepted() bool { return p.accepted }

// Accept integrates the plateau into its carriage track.
func (p *Plateau) Accept() { p.accepted = true }

// Prune refuses the plateau.
func (p *Plateau) Prune() { p.accepted = false }

// Reliable reports whether all three consistency tests (start, end,
// width) pass.
func (p *Plateau) Reliable() bool { return p.sOK && p.eOK && p.wOK }

// Possible reports whether at least one side consistency test passes.
func (p *Plateau) Possible() bool { return p.sOK || p.eOK }

// Bounded reports whether both bounds are finely detected.
func (p *Plateau) Bounded() bool { return p.sOK && p.eOK }

// EstimatedStart, EstimatedEnd, EstimatedCenter, EstimatedWidth return the
// plateau's estimated band.
func (p *Plateau) EstimatedStart() float32  { return p.sEst }
func (p *Plateau) EstimatedEnd() float32    { return p.eEst }
func (p *Plateau) EstimatedCenter() float32 { return (p.sEst + p.eEst) / 2 }
func (p *Plateau) EstimatedWidth() float32  { return p.eEst - p.sEst }

// MinHeight returns the plateau's smallest height (the lower edge of its
// detected height interval).
func (p *Plateau) MinHeight() float32 { return p.hMin }

// EstimatedDeviation, EstimatedSlope are the predictor-fed corrections
// applied to the next plateau's reference template.
func (p *Plateau) EstimatedDeviation() float32    { return p.devEst }
func (p *Plateau) SetDeviation(v float32)         { p.devEst = v }
func (p *Plateau) EstimatedSlope() float32        { return p.slopeEst }
func (p *Plateau) SetSlope(v float32)             { p.slopeEst = v }

// Contains reports whether a position lies within the plateau's external
// bounds.
func (p *Plateau) Contains(pos float32) bool { return pos > p.sExt && pos < p.eExt }

// DSS returns the plateau's enclosing digital straight segment, or nil.
func (p *Plateau) DSS() *DSS { return p.dss }

// indexedPoint pairs a scan's point with its original
// (along-stroke) index, so the original order can be recovered after
// sorting by elevation.
type indexedPoint struct {
	pt  Pt2f
	idx int
}

// Detect fits a plateau to a scan with no prior reference (spec.md §4.2,
// "Detection (no reference)"), grounded on
// original_source/src/ASDetector/plateau.cpp (Plateau::detect).
func (p *Plateau) Detect(points []Pt2f) bool {
	if len(points) < p.model.MinCountOfPoints {
		p.status = PlateauNotEnoughInputPoints
		return false
	}

	sorted := make([]indexedPoint, len(points))
	for i, pt := range points {
		sorted[i] = indexedPoint{pt: pt, idx: i}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].pt.Y < sorted[j].pt.Y })

	tol := p.model.ThicknessTolerance
	best := 0
	bestCount := 0
	lo := 0
	for hi := range sorted {
		for sorted[hi].pt.Y-sorted[lo].pt.Y > tol {
			lo++
		}
		if hi-lo+1 > bestCount {
			bestCount = hi - lo + 1
			best = lo
		}
	}
	hMin := sorted[best].pt.Y
	p.hMin = hMin

	if bestCount < p.model.MinCountOfPoints {
		p.status = PlateauNotEnoughSameAltitudePoints
		return false
	}

	// longest contiguous run, in original order, within [hMin, hMin+tol)
	inRun := false
	runStart := 0
	bestStart, bestEnd := -1, -1
	for i, pt := range points {
		if pt.Y >= hMin && pt.Y < hMin+tol {
			if !inRun {
				inRun = true
				runStart = i
			}
			if bestStart == -1 || i-runStart > bestEnd-bestStart {
				bestStart, bestEnd = runStart, i
			}
		} else {
			inRun = false
		}
	}
	if bestStart == -1 {
		p.status = PlateauNotEnoughConnectedPoints
		return false
	}
	p.sNum, p.eNum = bestStart, bestEnd
	p.sInt, p.eInt = points[bestStart].X, points[bestEnd].X

	if p.eInt-p.sInt < p.model.MinLength {
		p.status = PlateauTooNarrow
		return false
	}
	if bestEnd-bestStart+1 < p.model.MinCountOfPoints {
		p.status = PlateauNotEnoughConnectedPoints
		return false
	}
	if float32(bestEnd-bestStart+1) < p.model.OptHeightMinUse*float32(bestCount) {
		p.status = PlateauOptimalHeightUnderused
		return false
	}

	if bestStart == 0 {
		p.sExt = p.sInt - p.model.MaxLength
		p.sOK = false
	} else {
		p.sExt = points[bestStart-1].X
		p.sDist = p.sInt - p.sExt
		p.sOK = p.sDist <= p.model.BoundAccuracy
	}
	if bestEnd == len(points)-1 {
		p.eExt = p.eInt + p.model.MaxLength
		p.eOK = false
	} else {
		p.eExt = points[bestEnd+1].X
		p.eDist = p.eExt - p.eInt
		p.eOK = p.eDist <= p.model.BoundAccuracy
	}

	switch {
	case p.sOK && p.eOK:
		p.sEst = p.sInt - p.sDist/2
		p.eEst = p.eInt + p.eDist/2
		p.status = PlateauOK
	case p.sOK:
		p.sEst = p.sInt - p.sDist/2
		p.eEst = p.sInt + p.model.StartLength
		p.status = PlateauOK
	case p.eOK:
		p.sEst = p.eInt - p.model.StartLength
		p.eEst = p.eInt + p.eDist/2
		p.status = PlateauOK
	default:
		p.status = PlateauNoBoundPosition
	}
	p.wOK = p.sOK && p.eOK
	p.accepted = true
	return p.status == PlateauOK
}

// Track fits a plateau to a scan given a predicted reference band
// (spec.md §4.2, "Tracking (with reference)"), grounded on
// original_source/src/ASDetector/plateau.cpp (Plateau::track, AMRELnet
// overload). ref is the previous accepted plateau (nil for the seed
// scan); confDist is the count of scans since the last accepted plateau
// (0 for the seed scan); cShift is an along-scan offset (m) that Track adds
// to the reference center before picking the seed point; l12 is the stroke
// length, used only for the seed scan.
func (p *Plateau) Track(points []Pt2f, ref *Plateau, confDist int, cShift float32, l12 float32) bool {
	if confDist == 0 {
		p.sRef, p.eRef = 0, l12
		p.sEst, p.eEst = p.sRef, p.eRef
		if len(points) == 0 {
			p.fillEmptyReference()
			p.status = PlateauNotEnoughInputPoints
			return false
		}
		p.hRef = (points[0].Y+points[len(points)-1].Y)/2 - p.model.ThicknessTolerance/2
	} else {
		if ref.Possible() {
			p.sRef, p.eRef = ref.sEst, ref.eEst
		} else {
			p.sRef, p.eRef = ref.sRef, ref.eRef
		}
		if p.model.DeviationPredictionOn || !ref.Possible() {
			p.sRef += ref.devEst
			p.eRef += ref.devEst
		}
		p.sEst, p.eEst = p.sRef, p.eRef
		if ref.status == PlateauOK {
			p.hRef = ref.hMin
		} else {
			p.hRef = ref.hRef
		}
		if p.model.SlopePredictionOn || ref.status != PlateauOK {
			p.hRef += ref.slopeEst
		}
		if len(points) == 0 {
			p.hMin = p.hRef
			p.fillEmptyReference()
			p.status = PlateauNotEnoughInputPoints
			return false
		}
	}
	p.sDist, p.eDist = 0, 0
	lastIdx := len(points) - 1

	if len(points) < p.model.MinCountOfPoints {
		return p.trackSparse(points, confDist)
	}

	center := (p.sEst+p.eEst)/2 + cShift
	iCenter := ToLattice(center)
	lattice := make([]Pt2i, len(points))
	p.locHeight = points[0].Y
	ifirst := 0
	searching := true
	for i, pt := range points {
		x := FloorLattice(pt.X)
		if searching && x > iCenter {
			searching = false
			if i == 0 {
				ifirst = 0
			} else if x-iCenter > iCenter-lattice[i-1].X {
				ifirst = i - 1
			} else {
				ifirst = i
			}
		}
		lattice[i] = Pt2i{X: x, Y: FloorLattice(pt.Y - p.locHeight)}
	}

	if confDist != 0 {
		lo := p.hRef - float32(confDist)*p.model.SlopeTolerance
		hi := p.hRef + p.model.ThicknessTolerance + float32(confDist)*p.model.SlopeTolerance
		if points[ifirst].Y < lo || points[ifirst].Y > hi {
			p.sInt, p.eInt = points[ifirst].X, points[ifirst].X
			p.sExt = boundOr(ifirst == 0, p.sInt-p.model.MaxLength, func() float32 { return points[ifirst-1].X }())
			p.eExt = boundOr(ifirst == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[ifirst+1].X }())
			p.sEst = (p.sInt + p.sExt) / 2
			p.eEst = (p.eInt + p.eExt) / 2
			p.status = PlateauOutOfHeightReference
			return false
		}
	}

	stol := float64(ToLattice(p.model.ThicknessTolerance))
	builder := NewSegmentBuilder(stol, lattice[ifirst])
	sNum, eNum := ifirst-1, ifirst+1
	myEnd := len(lattice)
	pinchLen := ToLattice(p.model.MinLength)
	lStop, rStop := 0, 0
	scanningRight := sNum >= 0
	scanningLeft := eNum < myEnd
	lExtent, rExtent := 0, 0
	isLarge := true
	var added []int
	for scanningRight || scanningLeft {
		for scanningRight && (rExtent <= lExtent || !scanningLeft) {
			ok := builder.AddRightSorted(lattice[sNum])
			rExtent = lattice[ifirst].X - lattice[sNum].X
			if isLarge && rExtent+lExtent > pinchLen {
				nth := float64(p.model.BSpinchMargin) + builder.Thickness()
				if nth < stol {
					builder.SetMaxWidth(nth)
				}
				isLarge = false
			}
			if ok {
				rStop = 0
				added = append(added, sNum)
			} else {
				rStop++
				if rStop > p.model.MaxInterruption {
					scanningRight = false
				}
			}
			sNum--
			if sNum < 0 {
				scanningRight = false
			}
		}
		for scanningLeft && (lExtent <= rExtent || !scanningRight) {
			ok := builder.AddLeftSorted(lattice[eNum])
			lExtent = lattice[eNum].X - lattice[ifirst].X
			if isLarge && rExtent+lExtent > pinchLen {
				nth := float64(p.model.BSpinchMargin) + builder.Thickness()
				if nth < stol {
					builder.SetMaxWidth(nth)
				}
				isLarge = false
			}
			if ok {
				lStop = 0
				added = append(added, eNum)
			} else {
				lStop++
				if lStop > p.model.MaxInterruption {
					scanningLeft = false
				}
			}
			eNum++
			if eNum >= myEnd {
				scanningLeft = false
			}
		}
	}
	if rStop > 0 {
		builder.RemoveRight(rStop)
	}
	if lStop > 0 {
		builder.RemoveLeft(lStop)
	}
	sNum += rStop + 1
	eNum -= lStop + 1
	p.sNum, p.eNum = sNum, eNum

	p.sExt = boundOr(sNum == 0, points[0].X-p.model.MaxLength, func() float32 { return points[sNum-1].X }())
	p.eExt = boundOr(eNum == lastIdx, points[lastIdx].X+p.model.MaxLength, func() float32 { return points[eNum+1].X }())
	if p.eExt-p.sExt < p.model.MinLength {
		p.sInt, p.eInt = points[sNum].X, points[eNum].X
		p.sEst = (p.sInt + p.sExt) / 2
		p.eEst = (p.eInt + p.eExt) / 2
		p.status = PlateauTooNarrow
		return false
	}
	if 1+eNum-sNum < p.model.MinCountOfPoints {
		p.sInt, p.eInt = points[sNum].X, points[eNum].X
		p.sEst = (p.sInt + p.sExt) / 2
		p.eEst = (p.eInt + p.eExt) / 2
		p.status = PlateauNotEnoughSameAltitudePoints
		return false
	}

	// Shorten the built segment on either side by withdrawing a trailing
	// point that coincides with the last antipodal vertex (spec.md §4.2
	// step 4): such a point lies exactly on the edge that sets the
	// segment's width and contributes nothing to it once withdrawn.
	if antipode := builder.AntipodalVertex(); sNum < eNum {
		if builder.LastRight().Equals(antipode) {
			builder.RemoveRight(1)
			sNum++
		} else if builder.LastLeft().Equals(antipode) {
			builder.RemoveLeft(1)
			eNum--
		}
		p.sNum, p.eNum = sNum, eNum
	}
	dss, ok := builder.EndOfBirth()
	if !ok {
		p.status = PlateauNoDSS
		p.sInt, p.eInt = points[sNum].X, points[eNum].X
		p.sExt = boundOr(sNum == 0, p.sInt-p.model.MaxLength, func() float32 { return points[sNum-1].X }())
		p.eExt = boundOr(eNum == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[eNum+1].X }())
		p.sEst = (p.sInt + p.sExt) / 2
		p.eEst = (p.eInt + p.eExt) / 2
		return false
	}
	if dss.Slope()*100 > float64(p.model.BSmaxTilt) {
		p.status = PlateauTooTiltedDSS
		p.sInt, p.eInt = points[sNum].X, points[eNum].X
		p.sExt = boundOr(sNum == 0, p.sInt-p.model.MaxLength, func() float32 { return points[sNum-1].X }())
		p.eExt = boundOr(eNum == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[eNum+1].X }())
		p.sEst = (p.sInt + p.sExt) / 2
		p.eEst = (p.eInt + p.eExt) / 2
		return false
	}
	p.dss = &dss
	ihmin := 0
	if dss.B != 0 {
		ihmin = (dss.C-dss.A*iCenter)/dss.B - int(stol)/2
	}
	p.hMin = p.locHeight + float32(ihmin)*1.0/Lattice_scale

	p.status = PlateauOK
	if confDist == 0 {
		p.setFirstBounds(points)
	} else {
		p.setBounds(points)
		p.setPosition(float32(confDist) * p.model.WidthMoveTolerance)
	}
	return p.status == PlateauOK
}

func boundOr(cond bool, ifTrue float32, ifFalse float32) float32 {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func (p *Plateau) fillEmptyReference() {
	p.sInt, p.eInt = p.sRef, p.eRef
	p.sExt = p.sRef - p.model.MaxLength
	p.eExt = p.eRef + p.model.MaxLength
}

// trackSparse handles Track's "too few points" path, when a scan yields
// fewer points than MinCountOfPoints, mirroring
// the original's short-sequence salvage logic: the plateau still reports
// estimated bounds (for display/pruning continuity) but always fails.
func (p *Plateau) trackSparse(points []Pt2f, confDist int) bool {
	lastIdx := len(points) - 1
	center := (p.sRef + p.eRef) / 2
	sNum, eNum := 0, 0
	if confDist == 0 {
		nearest := 0
		best := float32(1e9)
		for i, pt := range points {
			d := center - pt.X
			if d < 0 {
				d = -d
			}
			if d < best {
				best = d
				nearest = i
			}
		}
		sNum, eNum = nearest, nearest
		p.hMin = points[nearest].Y
		p.hRef = p.hMin
	} else {
		lo := p.hRef - float32(confDist)*p.model.SlopeTolerance
		hi := p.hRef + p.model.ThicknessTolerance + float32(confDist)*p.model.SlopeTolerance
		in, out := false, false
		for i, pt := range points {
			if pt.Y < lo || pt.Y > hi {
				if in && !out {
					out = true
					eNum = i - 1
				}
			} else if !in || (out && pt.X < center) {
				in = true
				out = false
				sNum = i
			}
			if in && !out {
				out = true
				eNum = lastIdx
			}
		}
	}
	p.sNum, p.eNum = sNum, eNum
	p.sInt, p.eInt = points[sNum].X, points[eNum].X
	p.sExt = boundOr(sNum == 0, p.sInt-p.model.MaxLength, func() float32 { return points[sNum-1].X }())
	p.eExt = boundOr(eNum == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[eNum+1].X }())
	p.sEst = (p.sInt + p.sExt) / 2
	p.eEst = (p.eInt + p.eExt) / 2
	if p.eExt-p.sExt < p.model.MinLength {
		p.status = PlateauTooNarrow
		return false
	}
	p.status = PlateauNotEnoughInputPoints
	return false
}

// setFirstBounds sets the seed plateau's bound consistency flags: the
// first scan has no predecessor to compare against, so bounds are always
// marked consistent once detected.
func (p *Plateau) setFirstBounds(points []Pt2f) {
	lastIdx := len(points) - 1
	p.sInt, p.eInt = points[p.sNum].X, points[p.eNum].X
	p.sExt = boundOr(p.sNum == 0, p.sInt-p.model.MaxLength, func() float32 { return points[p.sNum-1].X }())
	p.eExt = boundOr(p.eNum == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[p.eNum+1].X }())
	p.sOK, p.eOK, p.wOK = true, true, true
	p.setPosition(p.model.WidthMoveTolerance)
}

// setBounds compares the detected interval against the reference band to
// decide s_ok / e_ok / w_ok and the width_change flag (spec.md §4.2 step
// 6).
func (p *Plateau) setBounds(points []Pt2f) {
	lastIdx := len(points) - 1
	p.sInt, p.eInt = points[p.sNum].X, points[p.eNum].X
	p.sExt = boundOr(p.sNum == 0, p.sInt-p.model.MaxLength, func() float32 { return points[p.sNum-1].X }())
	p.eExt = boundOr(p.eNum == lastIdx, p.eInt+p.model.MaxLength, func() float32 { return points[p.eNum+1].X }())

	sShift := p.sInt - p.sRef
	if sShift < 0 {
		sShift = -sShift
	}
	eShift := p.eInt - p.eRef
	if eShift < 0 {
		eShift = -eShift
	}
	p.sOK = sShift <= p.model.SideShiftTolerance
	p.eOK = eShift <= p.model.SideShiftTolerance

	refWidth := p.eRef - p.sRef
	gotWidth := p.eInt - p.sInt
	widthDelta := gotWidth - refWidth
	limit := p.model.WidthMoveTolerance
	switch {
	case widthDelta > limit:
		p.widthChange = 1
		p.wOK = false
	case widthDelta < -limit:
		p.widthChange = -1
		p.wOK = false
	default:
		p.widthChange = 0
		p.wOK = true
	}
}

// setPosition picks the estimated [s_est, e_est] band per the decision
// table of spec.md §4.2 step 7.
func (p *Plateau) setPosition(wmt float32) {
	sRefLeft := p.sRef < p.sExt
	eRefRight := p.eRef > p.eExt
	sRefInside := p.sRef >= p.sExt && p.sRef <= p.eExt
	eRefInside := p.eRef >= p.sExt && p.eRef <= p.eExt
	eRefLeft := p.eRef < p.sInt

	switch {
	case sRefLeft && eRefRight:
		p.sEst, p.eEst = p.sExt, p.eExt
		if p.eEst-p.sEst < p.model.MinLength {
			p.status = PlateauTooLargeNarrowing
		}
	case sRefLeft && (eRefInside || eRefRight):
		p.sEst = p.sExt
		p.eEst = p.eRef
		if p.eEst-p.sEst < p.model.MinLength {
			p.eEst = p.sEst + p.model.MinLength
		}
	case sRefInside && eRefInside:
		p.sEst, p.eEst = p.sRef, p.eRef
		if p.eEst-p.sEst > p.model.MaxLength {
			p.status = PlateauTooLargeWidening
		}
	case sRefInside && eRefLeft:
		p.sEst = p.sInt
		p.eEst = p.eRef
		if p.eEst-p.sEst < p.model.MinLength {
			p.eEst = p.sEst + p.model.MinLength
		}
	default: // sRef right of external bounds: mirror of the left-hand rules
		p.sEst = p.sRef
		p.eEst = p.eExt
		if p.eEst-p.sEst < p.model.MinLength {
			p.sEst = p.eEst - p.model.MinLength
		}
	}
	_ = wmt
}
