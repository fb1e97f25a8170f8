package ilsd

// TrackerModel holds the tunables shared by the CarriageTrack and Ridge
// drivers: lack tolerance, register sizes, pruning thresholds (spec.md
// §4.5; grounded on
// original_source/src/ASDetector/ctrackdetector.h / .cpp).
type TrackerModel struct {
	MaxTrackWidth float32 // hard floor on the seed stroke length (m)

	PlateauLackTolerance int // max consecutive sparse-scan failures, and separately max consecutive other rejections, tolerated before giving up a side
	NoBoundsTolerance    int // max consecutive no-bound-position failures tolerated
	InitialTrackExtent   int // scans probed on first call before committing to a side

	RegisterSize            int // position/height predictor register size
	UnstabilityRegisterSize int // trend-instability register size

	MinDensity     float64 // min fraction of accepted scans to keep a structure
	MaxShiftLength float32 // max tolerated trailing run of unaccepted scans (m)

	LnUnstab float64 // instability slope magnitude threshold
	NbUnstab int     // min count of unstable slots to flag instability

	PosIncr     float32 // re-centering step, multiplied by the trial count, applied while the deviation register is unstable
	NbSideTrials int    // max re-centering trials per side
}

// NewTrackerModel returns a model populated with the defaults from the
// original carriage-track detector (reused, unscaled, by the ridge
// detector: spec.md names no distinct ridge tracking constants).
func NewTrackerModel() *TrackerModel {
	return &TrackerModel{
		MaxTrackWidth:            6.0,
		PlateauLackTolerance:     11,
		NoBoundsTolerance:        10,
		InitialTrackExtent:       6,
		RegisterSize:             8,
		UnstabilityRegisterSize:  6,
		MinDensity:               0.60,
		MaxShiftLength:           1.65,
		LnUnstab:                 0.25,
		NbUnstab:                 2,
		PosIncr:                  0.05,
		NbSideTrials:             11,
	}
}

// side identifies which section of the structure a driver pass is
// growing.
type side int

const (
	sideRight side = iota
	sideLeft
)

// lackState tracks the consecutive-failure counters a driver pass gates
// retroactive acceptance and abandonment on (spec.md §4.5 "lack-tolerance
// gating"): sparse-point failures never add to the rejection run (they
// reset it), and are counted in a run of their own; each run is capped by
// PlateauLackTolerance.
type lackState struct {
	sparseRun int // consecutive HasEnoughPoints()==false results
	lackRun   int // consecutive rejections with enough points
	noBounds  int // consecutive PlateauNoBoundPosition / BumpNoBumpLine results
}

// recordPlateau folds one Plateau outcome into the lack state and reports
// whether the side should keep scanning.
func (l *lackState) recordPlateau(model *TrackerModel, st PlateauStatus, ok bool) bool {
	if !st.HasEnoughPoints() {
		l.sparseRun++
		l.lackRun = 0
		return l.sparseRun <= model.PlateauLackTolerance
	}
	l.sparseRun = 0
	if st == PlateauNoBoundPosition {
		l.noBounds++
	} else {
		l.noBounds = 0
	}
	if ok {
		l.lackRun = 0
		return true
	}
	l.lackRun++
	if l.noBounds > model.NoBoundsTolerance {
		return false
	}
	return l.lackRun <= model.PlateauLackTolerance
}

// recordBump is recordPlateau's counterpart for the ridge driver.
func (l *lackState) recordBump(model *TrackerModel, st BumpStatus, ok bool) bool {
	if !st.HasEnoughPoints() {
		l.sparseRun++
		l.lackRun = 0
		return l.sparseRun <= model.PlateauLackTolerance
	}
	l.sparseRun = 0
	if st == BumpNoBumpLine {
		l.noBounds++
	} else {
		l.noBounds = 0
	}
	if ok {
		l.lackRun = 0
		return true
	}
	l.lackRun++
	if l.noBounds > model.NoBoundsTolerance {
		return false
	}
	return l.lackRun <= model.PlateauLackTolerance
}

// interpolatePlateau retroactively fills a run of rejected scans once
// tracking resumes, linearly interpolating the estimated band between the
// last accepted plateau before the gap and the newly accepted one after
// it (spec.md §4.5 "retroactive acceptance via linear interpolation").
func interpolatePlateau(before, after *Plateau, steps int) []*Plateau {
	out := make([]*Plateau, steps)
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		p := NewPlateau(before.model)
		p.sEst = before.sEst + t*(after.sEst-before.sEst)
		p.eEst = before.eEst + t*(after.eEst-before.eEst)
		p.hMin = before.hMin + t*(after.hMin-before.hMin)
		p.status = PlateauOK
		p.accepted = true
		out[i-1] = p
	}
	return out
}

// interpolateBump is interpolatePlateau's counterpart for bumps.
func interpolateBump(before, after *Bump, steps int) []*Bump {
	out := make([]*Bump, steps)
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		b := NewBump(before.model)
		b.posEst = before.posEst + t*(after.posEst-before.posEst)
		b.altEst = before.altEst + t*(after.altEst-before.altEst)
		b.widthEst = before.widthEst + t*(after.widthEst-before.widthEst)
		b.heightEst = before.heightEst + t*(after.heightEst-before.heightEst)
		b.summit = Pt2f{X: b.posEst, Y: b.altEst}
		b.status = BumpOK
		b.accepted = true
		out[i-1] = b
	}
	return out
}

// isUnstable reports whether a register's last NbUnstab entries all carry
// a slope whose magnitude exceeds LnUnstab, the signal the driver uses to
// shift the next scan's search center by PosIncr per trial (spec.md §4.4's "special onset-of-curvature
// detection", applied here at the tracker level).
func isUnstable(model *TrackerModel, reg *Predictor) bool {
	count := 0
	for i := len(reg.slots) - 1; i >= 0 && count < model.NbUnstab; i-- {
		if !reg.slots[i].reliable {
			continue
		}
		v := reg.slots[i].value
		if v < 0 {
			v = -v
		}
		if v <= model.LnUnstab {
			return false
		}
		count++
	}
	return count >= model.NbUnstab
}
