// Package store implements the TileSet collaborator (ilsd.TileSet):
// a point cloud, bucketed by DTM cell, that a tracker reads scans through.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/evenp/ilsdtrack/ilsd"
)

var ErrCellIndexOutOfRange = errors.New("store: cell index out of range")

type cellKey struct{ I, J int }

// MemTileSet is an in-memory TileSet: every cell's point bucket lives in a
// map, grounded on
// original_source/src/PointCloud/ipttileset.h's per-cell point bucket
// design, minus its on-disk tile paging (everything here is resident).
// It is what the ilsd package's own tests are driven against.
type MemTileSet struct {
	mu    sync.RWMutex
	cells map[cellKey][]ilsd.Point3
}

// NewMemTileSet returns an empty in-memory tile set.
func NewMemTileSet() *MemTileSet {
	return &MemTileSet{cells: make(map[cellKey][]ilsd.Point3)}
}

// Put records points as belonging to one cell, replacing any points
// already there.
func (m *MemTileSet) Put(cellI, cellJ int, points []ilsd.Point3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[cellKey{cellI, cellJ}] = points
}

// Add appends points to whatever is already recorded for one cell.
func (m *MemTileSet) Add(cellI, cellJ int, points ...ilsd.Point3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cellKey{cellI, cellJ}
	m.cells[k] = append(m.cells[k], points...)
}

// CollectPoints implements ilsd.TileSet.
func (m *MemTileSet) CollectPoints(ctx context.Context, cellI, cellJ int) ([]ilsd.Point3, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	pts, ok := m.cells[cellKey{cellI, cellJ}]
	if !ok {
		return nil, false, nil
	}
	out := make([]ilsd.Point3, len(pts))
	copy(out, pts)
	return out, true, nil
}
