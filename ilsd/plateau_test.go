package ilsd

import "testing"

// flatBandProfile builds a synthetic cross section: a flat plateau of
// width bandWidth centered at x=0, height hFlat, flanked on either side by
// a rising slope out to +/-span.
func flatBandProfile(span, bandWidth, hFlat float32) []Pt2f {
	var pts []Pt2f
	step := float32(0.2)
	for x := -span; x <= span; x += step {
		y := hFlat
		if x < -bandWidth/2 {
			y = hFlat + (-bandWidth/2-x)*0.3
		} else if x > bandWidth/2 {
			y = hFlat + (x-bandWidth/2)*0.3
		}
		pts = append(pts, Pt2f{X: x, Y: y})
	}
	return pts
}

func TestPlateauDetectFindsFlatBand(t *testing.T) {
	model := NewPlateauModel()
	pts := flatBandProfile(4, 2, 10)
	p := NewPlateau(model)
	ok := p.Detect(pts)
	if !ok {
		t.Fatalf("expected plateau detection to succeed, status=%v", p.Status())
	}
	if p.EstimatedWidth() < model.MinLength {
		t.Errorf("detected width %v should be at least MinLength %v", p.EstimatedWidth(), model.MinLength)
	}
	if p.EstimatedCenter() < -1 || p.EstimatedCenter() > 1 {
		t.Errorf("expected plateau centered near 0, got %v", p.EstimatedCenter())
	}
}

func TestPlateauDetectTooFewPoints(t *testing.T) {
	model := NewPlateauModel()
	p := NewPlateau(model)
	ok := p.Detect([]Pt2f{{X: 0, Y: 1}, {X: 1, Y: 1}})
	if ok {
		t.Fatal("expected detection to fail with too few points")
	}
	if p.Status() != PlateauNotEnoughInputPoints {
		t.Errorf("expected PlateauNotEnoughInputPoints, got %v", p.Status())
	}
}

func TestPlateauTrackFollowsSeed(t *testing.T) {
	model := NewPlateauModel()
	seedPts := flatBandProfile(4, 2, 10)
	seed := NewPlateau(model)
	if !seed.Detect(seedPts) {
		t.Fatalf("seed detection failed: status=%v", seed.Status())
	}

	nextPts := flatBandProfile(4, 2, 10.02)
	next := NewPlateau(model)
	ok := next.Track(nextPts, seed, 1, 0, 10)
	if !ok {
		t.Fatalf("expected tracking to succeed, status=%v", next.Status())
	}
	if next.EstimatedWidth() < model.MinLength {
		t.Errorf("tracked width %v should be at least MinLength", next.EstimatedWidth())
	}
}

func TestPlateauReliableRequiresBothBounds(t *testing.T) {
	model := NewPlateauModel()
	p := NewPlateau(model)
	p.sOK, p.eOK, p.wOK = true, false, true
	if p.Reliable() {
		t.Error("Reliable() should require sOK, eOK and wOK all true")
	}
	if !p.Possible() {
		t.Error("Possible() should hold when at least one of sOK/eOK holds")
	}
}
