package ilsd

import "context"

// TileSet is the point-cloud collaborator a tracker reads scans through
// (spec.md §6). Implementations live in package store; the ilsd package
// depends only on this interface so its core stays free of any storage
// backend.
type TileSet interface {
	// CollectPoints returns every LiDAR return recorded in DTM cell
	// (cellI, cellJ). found is false if the cell was never loaded; err is
	// reserved for genuine IO/storage failures (ErrCellUnloaded is
	// reported through found, not err).
	CollectPoints(ctx context.Context, cellI, cellJ int) (points []Point3, found bool, err error)
}

// DirectionalScanner is the point-cursor collaborator a tracker advances
// one scan at a time, orthogonally to the current stroke direction
// (spec.md §6). Implementations live in package scan.
type DirectionalScanner interface {
	// First returns the initial scan's lattice points, centered on the
	// seed stroke.
	First() []Pt2i
	// NextOnLeft, NextOnRight advance the cursor by one scan to either
	// side and return its points; ok is false once the next scan would
	// fall outside the scanner's bounds.
	NextOnLeft() (points []Pt2i, ok bool)
	NextOnRight() (points []Pt2i, ok bool)
	// BindTo rebinds the scanner to a new carrying line a*x + b*y = c,
	// used when the tracker re-centers after a shift.
	BindTo(a, b, c int)
	// IsLastScanReversed reports whether the most recently returned scan
	// was produced by a reversed octant pair. Plateau and Bump do not
	// branch on it.
	IsLastScanReversed() bool
}
