package ilsd

import "testing"

func TestPredictorTrendFewerThanTwo(t *testing.T) {
	p := NewPredictor(8)
	if got := p.Trend(); got != 0 {
		t.Errorf("empty register: got %v, want 0", got)
	}
	p.Update(1.0, true)
	if got := p.Trend(); got != 0 {
		t.Errorf("single reliable entry: got %v, want 0", got)
	}
}

func TestPredictorTrendTwoReliable(t *testing.T) {
	p := NewPredictor(8)
	p.Update(0.0, true)
	p.Update(1.0, false)
	p.Update(2.0, true)
	// reliable entries at positions 0 and 2: slope = (2-0)/(2-0) = 1
	if got := p.Trend(); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}

func TestPredictorTrendLinearIsOverall(t *testing.T) {
	p := NewPredictor(8)
	for i := 0; i < 5; i++ {
		p.Update(float64(i), true)
	}
	if got := p.Trend(); got != 1 {
		t.Errorf("perfectly linear register: got %v, want 1", got)
	}
}

func TestPredictorTrendCatchesOnsetOfCurvature(t *testing.T) {
	p := NewPredictor(8)
	// flat, then a late upswing: every intermediate slope-to-last should
	// exceed the overall trend in the same direction, so the sharpest
	// (most recent) deviating slope is reported instead of the overall.
	values := []float64{0, 0, 0, 0, 3}
	for _, v := range values {
		p.Update(v, true)
	}
	overall := (3.0 - 0.0) / 4.0
	got := p.Trend()
	if got == overall {
		t.Errorf("expected onset-of-curvature slope, got overall trend %v", overall)
	}
}

func TestPredictorRegisterSizeEviction(t *testing.T) {
	p := NewPredictor(3)
	p.Update(1, true)
	p.Update(2, true)
	p.Update(3, true)
	p.Update(4, true)
	if len(p.slots) != 3 {
		t.Fatalf("register should cap at size 3, got %d slots", len(p.slots))
	}
	if p.slots[0].value != 2 {
		t.Errorf("oldest slot should have been evicted, got %v", p.slots[0].value)
	}
}

func TestPredictorReset(t *testing.T) {
	p := NewPredictor(0)
	p.Update(1, true)
	p.Update(2, true)
	p.Reset()
	if len(p.slots) != 0 {
		t.Errorf("reset should clear the register")
	}
	if p.size != Default_register_size {
		t.Errorf("size 0 should fall back to the default of %d, got %d", Default_register_size, p.size)
	}
}
