package ilsd

import "testing"

func TestCarriageTrackSignedIndex(t *testing.T) {
	model := NewPlateauModel()
	track := NewCarriageTrack(Pt2f{X: 0, Y: 0}, Pt2f{X: 10, Y: 0}, 1.0)

	central := NewPlateau(model)
	central.sEst, central.eEst = -1, 1
	track.SetCentral(central, true)

	r1 := NewPlateau(model)
	r1.sEst, r1.eEst = -0.9, 1.1
	track.rights.Add(r1, true)

	l1 := NewPlateau(model)
	l1.sEst, l1.eEst = -1.1, 0.9
	track.lefts.Add(l1, true)

	if _, ok := track.At(0); !ok {
		t.Fatal("expected a central primitive at index 0")
	}
	if p, ok := track.At(1); !ok || p != r1 {
		t.Error("expected index +1 to resolve to the first rights entry")
	}
	if p, ok := track.At(-1); !ok || p != l1 {
		t.Error("expected index -1 to resolve to the first lefts entry")
	}
	if _, ok := track.At(2); ok {
		t.Error("expected index +2 to be unrecorded")
	}
	if got := track.LeftEnd(); got != -1 {
		t.Errorf("expected LeftEnd() == -1, got %d", got)
	}
	if got := track.RightEnd(); got != 1 {
		t.Errorf("expected RightEnd() == 1, got %d", got)
	}
}

func TestCarriageTrackMeanWidth(t *testing.T) {
	model := NewPlateauModel()
	track := NewCarriageTrack(Pt2f{X: 0, Y: 0}, Pt2f{X: 10, Y: 0}, 1.0)

	central := NewPlateau(model)
	central.sEst, central.eEst = -1, 1 // width 2
	track.SetCentral(central, true)

	r1 := NewPlateau(model)
	r1.sEst, r1.eEst = -2, 2 // width 4
	track.rights.Add(r1, true)

	if got := track.MeanWidth(); got != 3 {
		t.Errorf("expected mean width 3, got %v", got)
	}
}

func TestCarriageTrackConnectedPointsSkipsHoles(t *testing.T) {
	model := NewPlateauModel()
	track := NewCarriageTrack(Pt2f{X: 0, Y: 0}, Pt2f{X: 10, Y: 0}, 1.0)
	central := NewPlateau(model)
	track.SetCentral(central, true)
	track.rights.Add(NewPlateau(model), false)
	r2 := NewPlateau(model)
	track.rights.Add(r2, true)

	pts := track.ConnectedPoints()
	if len(pts) != 2 {
		t.Fatalf("expected 2 connected points (hole skipped), got %d", len(pts))
	}
}

func TestRidgeOverFlag(t *testing.T) {
	r := NewRidge(Pt2f{X: 0, Y: 0}, Pt2f{X: 10, Y: 0}, 1.0, false)
	if r.Over() {
		t.Error("expected Over() to be false for a hollow")
	}
}
