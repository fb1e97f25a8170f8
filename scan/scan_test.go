package scan

import "testing"

func TestScannerFirstIsCenteredOnBounds(t *testing.T) {
	s := NewScanner(-5, -5, 5, 5, 0, 1, 0)
	first := s.First()
	if len(first) == 0 {
		t.Fatal("expected the initial scan to yield at least one point")
	}
}

func TestScannerAdvancesBothWays(t *testing.T) {
	s := NewScanner(-5, -5, 5, 5, 0, 1, 0)
	s.First()
	if _, ok := s.NextOnRight(); !ok {
		t.Error("expected a scan available to the right within bounds")
	}
	if _, ok := s.NextOnLeft(); !ok {
		t.Error("expected a scan available to the left within bounds")
	}
}

func TestScannerExhaustsAtBounds(t *testing.T) {
	s := NewScanner(-2, -2, 2, 2, 0, 1, 0)
	s.First()
	ok := true
	for i := 0; i < 20 && ok; i++ {
		_, ok = s.NextOnRight()
	}
	if ok {
		t.Error("expected the scanner to exhaust once it runs past the lattice bounds")
	}
}

func TestScannerRebind(t *testing.T) {
	s := NewScanner(-5, -5, 5, 5, 0, 1, 0)
	s.BindTo(1, 0, 0)
	first := s.First()
	if len(first) == 0 {
		t.Fatal("expected a scan after rebinding to a new carrying line")
	}
}

func TestOctantConstructors(t *testing.T) {
	if Octant0to1(-5, -5, 5, 5, 3, 1, 0) == nil {
		t.Error("Octant0to1 should return a scanner")
	}
	if Octant1to2(-5, -5, 5, 5, 1, 3, 0) == nil {
		t.Error("Octant1to2 should return a scanner")
	}
	if Octant2toNeg1(-5, -5, 5, 5, -1, 2, 0) == nil {
		t.Error("Octant2toNeg1 should return a scanner")
	}
}
