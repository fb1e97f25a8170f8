package ilsd

import "testing"

func TestConvexHullSquare(t *testing.T) {
	pts := []Pt2i{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected 4 hull vertices for a square plus an interior point, got %d: %v", len(hull), hull)
	}
}

func TestConvexHullDedup(t *testing.T) {
	pts := []Pt2i{{0, 0}, {0, 0}, {1, 0}, {1, 1}, {0, 1}}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected duplicate points collapsed, got %d vertices: %v", len(hull), hull)
	}
}

func TestHullThicknessCollinear(t *testing.T) {
	pts := []Pt2i{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	hull := ConvexHull(pts)
	if got := hullThickness(hull); got != 0 {
		t.Errorf("collinear points should have zero thickness, got %v", got)
	}
}

func TestHullThicknessSquare(t *testing.T) {
	pts := []Pt2i{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	hull := ConvexHull(pts)
	if got := hullThickness(hull); got != 10 {
		t.Errorf("expected thickness 10 for a 10x10 square, got %v", got)
	}
}

func TestSegmentBuilderGrowsWithinWidth(t *testing.T) {
	b := NewSegmentBuilder(1.5, Pt2i{X: 0, Y: 0})
	for x := 1; x <= 5; x++ {
		if !b.AddRightSorted(Pt2i{X: x, Y: 0}) {
			t.Fatalf("expected point (%d,0) to be accepted on a flat line", x)
		}
	}
	if b.PointCount() != 6 {
		t.Errorf("expected 6 points, got %d", b.PointCount())
	}
	dss, ok := b.EndOfBirth()
	if !ok {
		t.Fatal("expected EndOfBirth to succeed")
	}
	if dss.Slope() != 0 {
		t.Errorf("expected a flat segment's slope to be 0, got %v", dss.Slope())
	}
}

func TestSegmentBuilderRejectsOverWidth(t *testing.T) {
	b := NewSegmentBuilder(0.5, Pt2i{X: 0, Y: 0})
	if !b.AddRight(Pt2i{X: 1, Y: 0}) {
		t.Fatal("first addition on a flat line should be accepted")
	}
	if b.AddRight(Pt2i{X: 2, Y: 5}) {
		t.Error("a far-off point should be rejected once it would blow the max width")
	}
	if b.PointCount() != 2 {
		t.Errorf("rejected point must not be retained, got %d points", b.PointCount())
	}
}

func TestSegmentBuilderRemove(t *testing.T) {
	b := NewSegmentBuilder(2.0, Pt2i{X: 0, Y: 0})
	b.AddRightSorted(Pt2i{X: 1, Y: 0})
	b.AddRightSorted(Pt2i{X: 2, Y: 0})
	b.RemoveRight(1)
	if b.PointCount() != 2 {
		t.Errorf("expected 2 points after removing 1, got %d", b.PointCount())
	}
	if got := b.LastRight(); got != (Pt2i{X: 1, Y: 0}) {
		t.Errorf("expected last right point (1,0), got %v", got)
	}
}

func TestDSSContains(t *testing.T) {
	d := DSS{A: 0, B: 1, C: 0, Width: 3}
	if !d.Contains(Pt2i{X: 100, Y: 1}) {
		t.Error("expected point within band to be contained")
	}
	if d.Contains(Pt2i{X: 100, Y: 5}) {
		t.Error("expected point outside band to be rejected")
	}
}
