package ilsd

import (
	"context"

	"github.com/samber/lo"
)

// defaultCellSize is the DTM cell size, in meters, assumed when a caller
// does not otherwise specify the tile set's resolution (spec.md §3's 1mm
// lattice rides on top of this coarser along-stroke scan spacing).
const defaultCellSize = 1.0

// gatherProfile turns one scan's lattice cell positions into a height
// profile by averaging every LiDAR return recorded in each cell, in
// scan order (spec.md §6's TileSet.collect_points contract). Cells with
// no loaded points are skipped, matching the original's tolerance for
// scan-line gaps.
func gatherProfile(ctx context.Context, scanPts []Pt2i, tiles TileSet) ([]Pt2f, error) {
	profile := make([]Pt2f, 0, len(scanPts))
	for i, c := range scanPts {
		pts, found, err := tiles.CollectPoints(ctx, c.X, c.Y)
		if err != nil {
			return nil, err
		}
		if !found || len(pts) == 0 {
			continue
		}
		zs := lo.Map(pts, func(p Point3, _ int) float64 { return p.Z })
		profile = append(profile, Pt2f{X: float32(i), Y: float32(lo.Mean(zs))})
	}
	return profile, nil
}

// CarriageTrackDetector drives Plateau detection/tracking scan by scan
// along a seed stroke, assembling the result into a CarriageTrack
// (spec.md §4.5; grounded on
// original_source/src/ASDetector/ctrackdetector.h / .cpp).
type CarriageTrackDetector struct {
	Plateau *PlateauModel
	Tracker *TrackerModel
	CellSize float32
}

// NewCarriageTrackDetector returns a detector with the given tunables.
// Either may be nil to use defaults.
func NewCarriageTrackDetector(pmod *PlateauModel, tmod *TrackerModel) *CarriageTrackDetector {
	if pmod == nil {
		pmod = NewPlateauModel()
	}
	if tmod == nil {
		tmod = NewTrackerModel()
	}
	return &CarriageTrackDetector{Plateau: pmod, Tracker: tmod, CellSize: defaultCellSize}
}

// lineCoeffs returns the integer carrying-line coefficients a*x+b*y=c for
// the line through p1 and p2, on the millimeter lattice.
func lineCoeffs(p1, p2 Pt2f) (a, b, c int) {
	dx := ToLattice(p2.X) - ToLattice(p1.X)
	dy := ToLattice(p2.Y) - ToLattice(p1.Y)
	a, b = -dy, dx
	c = a*ToLattice(p1.X) + b*ToLattice(p1.Y)
	return
}

// Detect tracks a carriage track outward from the stroke p1->p2 (spec.md
// §4.5): it probes the seed (central) scan, then grows the rights and
// lefts sections independently until each side's lack tolerance is
// exhausted, the scanner runs out of scans, or the structure's density or
// shift-length rules call for pruning.
func (d *CarriageTrackDetector) Detect(ctx context.Context, tiles TileSet, scanner DirectionalScanner, p1, p2 Pt2f) (*CarriageTrack, error) {
	l12 := p1.Distance(p2)
	track := NewCarriageTrack(p1, p2, d.CellSize)
	if l12 < d.Tracker.MaxTrackWidth {
		track.SetStatus(StructureTooNarrowInput)
		return track, nil
	}

	a, b, c := lineCoeffs(p1, p2)
	scanner.BindTo(a, b, c)

	first := scanner.First()
	profile, err := gatherProfile(ctx, first, tiles)
	if err != nil {
		return nil, err
	}
	if len(profile) == 0 {
		track.SetStatus(StructureNoAvailableScan)
		return track, nil
	}

	central := NewPlateau(d.Plateau)
	ok := central.Detect(profile)
	track.SetCentral(central, ok)
	if !ok {
		track.SetStatus(StructureNoCentralPrimitive)
		return track, nil
	}

	d.runSide(ctx, tiles, scanner, track, sideRight, central, l12)
	d.runSide(ctx, tiles, scanner, track, sideLeft, central, l12)

	track.PruneTails(d.Plateau.TailMinSize)
	if track.RelativeShiftLength() > d.Tracker.MaxShiftLength {
		track.SetStatus(StructureTooHecticPlateaux)
		return track, nil
	}
	if track.Density() < d.Tracker.MinDensity {
		track.SetStatus(StructureTooSparsePlateaux)
		return track, nil
	}
	track.SetStatus(StructureOK)
	return track, nil
}

// runSide grows one section of the track by repeatedly calling the
// scanner's NextOnLeft/NextOnRight, tracking a Plateau against the last
// accepted one, and gating continuation on the shared lack-tolerance
// state (spec.md §4.5).
func (d *CarriageTrackDetector) runSide(ctx context.Context, tiles TileSet, scanner DirectionalScanner, track *CarriageTrack, s side, seed *Plateau, l12 float32) {
	sec := track.rights
	next := scanner.NextOnRight
	if s == sideLeft {
		sec = track.lefts
		next = scanner.NextOnLeft
	}

	devReg := NewPredictor(d.Tracker.RegisterSize)
	slopeReg := NewPredictor(d.Tracker.RegisterSize)
	ref := seed
	confDist := 0
	var lack lackState
	lastAcceptedIdx := -1
	trial := 0

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

		cShift := float32(0)
		if isUnstable(d.Tracker, devReg) && trial < d.Tracker.NbSideTrials {
			trial++
			if devReg.Trend() < 0 {
				cShift = -d.Tracker.PosIncr * float32(trial)
			} else {
				cShift = d.Tracker.PosIncr * float32(trial)
			}
		} else {
			trial = 0
		}

		p := NewPlateau(d.Plateau)
		accepted := p.Track(profile, ref, confDist, cShift, l12)

		keepGoing := lack.recordPlateau(d.Tracker, p.Status(), accepted)
		idx := sec.Len()
		sec.Add(p, accepted)
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
			sec.FillGap(lastAcceptedIdx+1, interpolatePlateau(ref, p, gap))
		}
		lastAcceptedIdx = idx
		trial = 0

		devReg.Update(float64(p.EstimatedCenter()-ref.EstimatedCenter()), true)
		slopeReg.Update(float64(p.MinHeight()-ref.MinHeight()), true)
		p.SetDeviation(float32(devReg.Trend()))
		p.SetSlope(float32(slopeReg.Trend()))

		ref = p
		confDist = 0
		if !keepGoing {
			break
		}
	}
}
