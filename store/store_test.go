package store

import (
	"context"
	"testing"

	"github.com/evenp/ilsdtrack/ilsd"
)

func TestMemTileSetCollectPoints(t *testing.T) {
	ts := NewMemTileSet()
	ts.Put(1, 2, []ilsd.Point3{{X: 1, Y: 2, Z: 3}})

	pts, found, err := ts.CollectPoints(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected cell to be found")
	}
	if len(pts) != 1 || pts[0].Z != 3 {
		t.Errorf("unexpected points: %v", pts)
	}
}

func TestMemTileSetUnloadedCell(t *testing.T) {
	ts := NewMemTileSet()
	_, found, err := ts.CollectPoints(context.Background(), 9, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected an unloaded cell to report found=false")
	}
}

func TestMemTileSetAddAccumulates(t *testing.T) {
	ts := NewMemTileSet()
	ts.Add(0, 0, ilsd.Point3{X: 0, Y: 0, Z: 1})
	ts.Add(0, 0, ilsd.Point3{X: 0, Y: 0, Z: 2})

	pts, found, _ := ts.CollectPoints(context.Background(), 0, 0)
	if !found || len(pts) != 2 {
		t.Fatalf("expected 2 accumulated points, got %v (found=%v)", pts, found)
	}
}

func TestMemTileSetRespectsCancellation(t *testing.T) {
	ts := NewMemTileSet()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ts.CollectPoints(ctx, 0, 0)
	if err == nil {
		t.Error("expected a cancelled context to surface an error")
	}
}
