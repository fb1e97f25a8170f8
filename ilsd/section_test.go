package ilsd

import "testing"

func TestSectionAddAndShiftLength(t *testing.T) {
	model := NewPlateauModel()
	s := newSection[*Plateau](false)
	s.Add(NewPlateau(model), true)
	s.Add(NewPlateau(model), false)
	s.Add(NewPlateau(model), false)

	if s.Len() != 3 {
		t.Fatalf("expected 3 recorded slots, got %d", s.Len())
	}
	if s.Holes() != 2 {
		t.Errorf("expected 2 holes, got %d", s.Holes())
	}
	if got := s.ShiftLength(); got != 2 {
		t.Errorf("expected trailing unaccepted run of 2, got %d", got)
	}
}

func TestSectionLastAccepted(t *testing.T) {
	model := NewPlateauModel()
	s := newSection[*Plateau](false)
	first := NewPlateau(model)
	first.sEst = 1
	s.Add(first, true)
	s.Add(NewPlateau(model), false)

	last, ok := s.LastAccepted()
	if !ok {
		t.Fatal("expected a last-accepted plateau")
	}
	if last.sEst != 1 {
		t.Errorf("expected the first (only accepted) plateau, got sEst=%v", last.sEst)
	}
}

func TestSectionPruneDoubtfulTail(t *testing.T) {
	model := NewPlateauModel()
	s := newSection[*Plateau](false)
	s.Add(NewPlateau(model), true)
	for i := 0; i < 5; i++ {
		s.Add(NewPlateau(model), false)
	}
	s.PruneDoubtfulTail(3)
	if s.Len() != 1 {
		t.Errorf("expected trailing run of >=3 unaccepted scans pruned, got length %d", s.Len())
	}
}

func TestSectionFillGap(t *testing.T) {
	model := NewPlateauModel()
	s := newSection[*Plateau](false)
	first := NewPlateau(model)
	first.sEst = 0
	s.Add(first, true)
	s.Add(NewPlateau(model), false)
	s.Add(NewPlateau(model), false)
	last := NewPlateau(model)
	last.sEst = 3
	s.Add(last, true)

	if got := s.Holes(); got != 2 {
		t.Fatalf("expected 2 holes before filling, got %d", got)
	}

	filled := interpolatePlateau(first, last, 2)
	s.FillGap(1, filled)

	if got := s.Holes(); got != 0 {
		t.Errorf("expected no holes after filling the gap, got %d", got)
	}
	if got := s.Density(); got != 1 {
		t.Errorf("expected full density after filling the gap, got %v", got)
	}
	p, ok := s.At(1)
	if !ok {
		t.Fatal("expected slot 1 to be marked accepted after FillGap")
	}
	if p.sEst <= first.sEst || p.sEst >= last.sEst {
		t.Errorf("expected an interpolated sEst strictly between endpoints, got %v", p.sEst)
	}
}

func TestSectionDensity(t *testing.T) {
	model := NewPlateauModel()
	s := newSection[*Plateau](false)
	s.Add(NewPlateau(model), true)
	s.Add(NewPlateau(model), true)
	s.Add(NewPlateau(model), false)
	s.Add(NewPlateau(model), false)
	if got := s.Density(); got != 0.5 {
		t.Errorf("expected density 0.5, got %v", got)
	}
}
