package ilsd

import "context"

// RidgeDetector drives Bump detection/tracking scan by scan along a seed
// stroke, assembling the result into a Ridge (spec.md §4.5, generalized
// to the bump primitive per
// original_source/src/ASDetector/ridgedetector.h, which mirrors
// ctrackdetector.h with the primitive swapped).
type RidgeDetector struct {
	Bump     *BumpModel
	Tracker  *TrackerModel
	CellSize float32
}

// NewRidgeDetector returns a detector for a ridge (over=true) or a hollow
// (over=false), with the given tracker tunables. tmod may be nil to use
// defaults.
func NewRidgeDetector(over bool, tmod *TrackerModel) *RidgeDetector {
	if tmod == nil {
		tmod = NewTrackerModel()
	}
	return &RidgeDetector{Bump: NewBumpModel(over), Tracker: tmod, CellSize: defaultCellSize}
}

// Detect tracks a ridge (or hollow) outward from the stroke p1->p2, with
// the same probe/grow/prune shape as CarriageTrackDetector.Detect.
func (d *RidgeDetector) Detect(ctx context.Context, tiles TileSet, scanner DirectionalScanner, p1, p2 Pt2f) (*Ridge, error) {
	l12 := p1.Distance(p2)
	ridge := NewRidge(p1, p2, d.CellSize, d.Bump.Over)
	if l12 < d.Tracker.MaxTrackWidth {
		ridge.SetStatus(StructureTooNarrowInput)
		return ridge, nil
	}

	a, b, c := lineCoeffs(p1, p2)
	scanner.BindTo(a, b, c)

	first := scanner.First()
	profile, err := gatherProfile(ctx, first, tiles)
	if err != nil {
		return nil, err
	}
	if len(profile) == 0 {
		ridge.SetStatus(StructureNoAvailableScan)
		return ridge, nil
	}

	central := NewBump(d.Bump)
	ok := central.Detect(profile, l12)
	ridge.SetCentral(central, ok)
	if !ok {
		ridge.SetStatus(StructureNoCentralPrimitive)
		return ridge, nil
	}

	d.runSide(ctx, tiles, scanner, ridge, sideRight, central, l12)
	d.runSide(ctx, tiles, scanner, ridge, sideLeft, central, l12)

	ridge.PruneTails(d.Bump.MinTrendSize)
	if ridge.RelativeShiftLength() > d.Tracker.MaxShiftLength {
		ridge.SetStatus(StructureTooHecticPlateaux)
		return ridge, nil
	}
	if ridge.Density() < d.Tracker.MinDensity {
		ridge.SetStatus(StructureTooSparsePlateaux)
		return ridge, nil
	}
	ridge.SetStatus(StructureOK)
	return ridge, nil
}

func (d *RidgeDetector) runSide(ctx context.Context, tiles TileSet, scanner DirectionalScanner, ridge *Ridge, s side, seed *Bump, l12 float32) {
	sec := ridge.rights
	next := scanner.NextOnRight
	if s == sideLeft {
		sec = ridge.lefts
		next = scanner.NextOnLeft
	}

	devReg := NewPredictor(d.Tracker.RegisterSize)
	slopeReg := NewPredictor(d.Tracker.RegisterSize)
	ref := seed
	confDist := 0
	var lack lackState
	lastAcceptedIdx := -1

	for {
		pts, ok := next()
		if !ok {
			break
		}
		profile, err := gatherProfile(ctx, pts, tiles)
		if err != nil {
			break
		}
		confDist++
		b := NewBump(d.Bump)
		accepted := b.Track(profile, ref, confDist, l12)

		keepGoing := lack.recordBump(d.Tracker, b.Status(), accepted)
		idx := sec.Len()
		sec.Add(b, accepted)
		if !accepted {
			if !keepGoing {
				break
			}
			if idx+1 == d.Tracker.InitialTrackExtent && lastAcceptedIdx < 0 {
				break
			}
			continue
		}

		if gap := idx - lastAcceptedIdx - 1; gap > 0 && gap <= d.Tracker.PlateauLackTolerance {
			sec.FillGap(lastAcceptedIdx+1, interpolateBump(ref, b, gap))
		}
		lastAcceptedIdx = idx

		devReg.Update(float64(b.EstimatedCenter()-ref.EstimatedCenter()), true)
		slopeReg.Update(float64(b.EstimatedHeight()-ref.EstimatedHeight()), true)
		b.SetDeviation(float32(devReg.Trend()))
		b.SetSlope(float32(slopeReg.Trend()))

		ref = b
		confDist = 0
		if !keepGoing {
			break
		}
	}
}
