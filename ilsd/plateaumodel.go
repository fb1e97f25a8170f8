package ilsd

// PlateauModel holds every tunable used by Plateau detection and tracking,
// replacing the original's static const class members (spec.md §9) with a
// single value object the tracker holds a reference to. Defaults and
// bounds are grounded on
// original_source/src/ASDetector/plateaumodel.cpp.
type PlateauModel struct {
	ThicknessTolerance  float32 // max vertical thickness of a plateau (m)
	SlopeTolerance      float32 // max height difference between successive plateaux (m)
	MinLength           float32 // minimal plateau length (m)
	MaxLength           float32 // maximal plateau length (m)
	SideShiftTolerance  float32 // max side shift between successive plateaux bounds (m)
	WidthMoveTolerance  float32 // max width difference between successive plateaux (m)
	OptHeightMinUse     float32 // min fraction of the optimal-height point count that must be used
	BoundAccuracy       float32 // required accuracy for bound sharpness (m)
	BSmaxTilt           int     // max blurred segment tilt, percent
	MaxInterruption     int     // max successive addition refusals on one side
	BSpinchMargin       int     // blurred segment thickness margin after pinching (lattice mm)
	TailMinSize         int     // min size of ending successive plateaux run
	StartLength         float32 // awaited length if a bound is undetected (m)
	CriticalLength      float32 // min gap enforced between MinLength and MaxLength (m)
	SearchDistance      float32 // search distance for a lost plateau (m)
	MinCountOfPoints    int     // min points to attempt a detection

	DeviationPredictionOn bool
	SlopePredictionOn     bool
}

// NewPlateauModel returns a model populated with the defaults from the
// original ILSD plateau detector.
func NewPlateauModel() *PlateauModel {
	return &PlateauModel{
		ThicknessTolerance: 0.23,
		SlopeTolerance:     0.15,
		MinLength:          0.8,
		MaxLength:          6.0,
		SideShiftTolerance: 1.3,
		WidthMoveTolerance: 0.5,
		OptHeightMinUse:    0.7,
		BoundAccuracy:      0.5,
		BSmaxTilt:          14,
		MaxInterruption:    0,
		BSpinchMargin:      50,
		TailMinSize:        10,
		StartLength:        3.0,
		CriticalLength:     1.0,
		SearchDistance:     1.0,
		MinCountOfPoints:   6,
	}
}
