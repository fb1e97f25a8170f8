package ilsd

import "testing"

// triangularBump builds a synthetic symmetric ridge cross section rising
// to height h at x=0 from a flat baseline at y=0.
func triangularBump(halfWidth, h float32) []Pt2f {
	var pts []Pt2f
	step := float32(0.1)
	n := int(2*halfWidth/step + 0.5)
	for i := 0; i <= n; i++ {
		x := -halfWidth + float32(i)*step
		rel := 1 - abs32(x)/halfWidth
		pts = append(pts, Pt2f{X: x, Y: h * rel})
	}
	return pts
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestBumpDetectFindsRidge(t *testing.T) {
	model := NewBumpModel(true)
	pts := triangularBump(3, 1.0)
	b := NewBump(model)
	ok := b.Detect(pts, 10)
	if !ok {
		t.Fatalf("expected bump detection to succeed, status=%v", b.Status())
	}
	if b.EstimatedHeight() < model.MinHeight {
		t.Errorf("detected height %v should be at least MinHeight %v", b.EstimatedHeight(), model.MinHeight)
	}
	if abs32(b.Summit().X) > 0.2 {
		t.Errorf("expected summit near x=0, got %v", b.Summit().X)
	}
}

func TestBumpDetectTooLow(t *testing.T) {
	model := NewBumpModel(true)
	pts := triangularBump(3, 0.05)
	b := NewBump(model)
	ok := b.Detect(pts, 10)
	if ok {
		t.Fatal("expected a shallow bump to fail the minimum height check")
	}
	if b.Status() != BumpTooLow {
		t.Errorf("expected BumpTooLow, got %v", b.Status())
	}
}

func TestBumpDetectHoleRejected(t *testing.T) {
	model := NewBumpModel(true)
	pts := []Pt2f{{X: 0, Y: 0}, {X: 0.1, Y: 0.2}, {X: 0.2, Y: 0.3}, {X: 0.3, Y: 0.2}, {X: 0.4, Y: 0.1}, {X: 8, Y: 0}}
	b := NewBump(model)
	ok := b.Detect(pts, 10)
	if ok {
		t.Fatal("expected detection to fail when the scan has a large gap")
	}
	if b.Status() != BumpHoleInInputPoints {
		t.Errorf("expected BumpHoleInInputPoints, got %v", b.Status())
	}
}

// TestBumpAreaAndCenters checks the scenario-3 symmetric triangular bump
// (spec.md §8): area, mass center and surface center all have closed-form
// values for a triangle of base 2*halfWidth and height h.
func TestBumpAreaAndCenters(t *testing.T) {
	model := NewBumpModel(true)
	pts := triangularBump(2, 1.0)
	b := NewBump(model)
	if ok := b.Detect(pts, 10); !ok {
		t.Fatalf("expected bump detection to succeed, status=%v", b.Status())
	}

	const tol = 0.05
	if got, want := b.Area(), 2.0; absF(got-want) > tol {
		t.Errorf("expected area %v, got %v", want, got)
	}

	mc := b.MassCenter()
	if abs32(mc.X) > float32(tol) {
		t.Errorf("expected mass center x near 0, got %v", mc.X)
	}
	if abs32(mc.Y-1.0/3.0) > float32(tol) {
		t.Errorf("expected mass center y near 1/3, got %v", mc.Y)
	}

	sc := b.SurfaceCenter()
	if abs32(sc.X) > float32(tol) {
		t.Errorf("expected surface center x near 0 (coincident with the summit for a symmetric profile), got %v", sc.X)
	}
	if abs32(sc.Y-1.0) > float32(tol) {
		t.Errorf("expected surface center y near the summit height 1, got %v", sc.Y)
	}
}

// TestBumpMeasureLineIdempotence checks the spec.md §8 invariant: a measure
// line at zero translation/rotation leaves area_est, area_up and area_low
// equal (modulo tolerance), and leaves the re-intersected feet and summit
// index coincident with the raw fit's.
func TestBumpMeasureLineIdempotence(t *testing.T) {
	model := NewBumpModel(true)
	pts := triangularBump(2, 1.0)
	b := NewBump(model)
	if ok := b.Detect(pts, 10); !ok {
		t.Fatalf("expected bump detection to succeed, status=%v", b.Status())
	}

	const tol = 0.05
	area := b.Area()
	lower, upper := b.AreaBounds()
	if absF(lower-area) > tol {
		t.Errorf("expected area_low == area_est (%v), got %v", area, lower)
	}
	if absF(upper-area) > tol {
		t.Errorf("expected area_up == area_est (%v), got %v", area, upper)
	}

	b.SetMeasureLine(0, 0)
	f1, f2 := b.MeasureFeet()
	if abs32(f1.X-b.far1.X) > float32(tol) || abs32(f2.X-b.far2.X) > float32(tol) {
		t.Errorf("expected measure feet to coincide with far1/far2 at zero translation/rotation, got (%v, %v) want (%v, %v)", f1.X, f2.X, b.far1.X, b.far2.X)
	}
	if b.MeasureSummitIndex() != b.summitIdx {
		t.Errorf("expected measure summit index %d to coincide with summitIdx, got %d", b.summitIdx, b.MeasureSummitIndex())
	}
	if absF(b.MeasureArea()-area) > tol {
		t.Errorf("expected measure area to coincide with area_est (%v), got %v", area, b.MeasureArea())
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestCheckAxisModes(t *testing.T) {
	if !checkAxis(ToleranceOff, 100, 0, 0, 0) {
		t.Error("ToleranceOff should always pass")
	}
	if checkAxis(ToleranceAbsolute, 5, 0, 1, 0) {
		t.Error("ToleranceAbsolute should reject a 5-unit deviation against a 1-unit tolerance")
	}
	if !checkAxis(ToleranceRelative, 11, 10, 0.5, 0.2) {
		t.Error("ToleranceRelative should accept a 10% deviation against a 20% relative tolerance")
	}
}
