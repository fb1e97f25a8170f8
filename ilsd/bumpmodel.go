package ilsd

// ToleranceMode selects how a bump tracking axis (position, altitude,
// width, height) is checked against its reference: off, an absolute
// distance, or a distance relative to the reference value (spec.md §4.3).
type ToleranceMode int

const (
	ToleranceOff ToleranceMode = iota
	ToleranceAbsolute
	ToleranceRelative
)

// BumpModel holds every tunable used by Bump detection and tracking,
// grounded on original_source/src/ASDetector/bumpmodel.cpp.
type BumpModel struct {
	Over bool // true for ridge (raised bump), false for hollow

	MinWidth  float32
	MinHeight float32

	PositionControl ToleranceMode
	AltitudeControl ToleranceMode
	WidthControl    ToleranceMode
	HeightControl   ToleranceMode

	PositionTolerance float32
	AltitudeTolerance float32
	WidthTolerance    float32
	HeightTolerance   float32

	PositionRelTolerance float32
	AltitudeRelTolerance float32
	WidthRelTolerance    float32
	HeightRelTolerance   float32

	HoleMaxRelativeLength float32 // largest tolerated inter-point gap, as a fraction of L12
	MaxHeightRatio        float32 // max relative width change from the reference before a bump is rejected as BumpAngular

	WithTrend     bool
	TrendMinPinch int // lattice mm
	MinTrendSize  int

	DeviationPredictionOn bool
	SlopePredictionOn     bool

	MinCountOfPoints int
}

// NewBumpModel returns a model populated with the defaults from the
// original ILSD ridge detector.
func NewBumpModel(over bool) *BumpModel {
	return &BumpModel{
		Over:                  over,
		MinWidth:              1.0,
		MinHeight:             0.4,
		PositionControl:       ToleranceAbsolute,
		AltitudeControl:       ToleranceAbsolute,
		WidthControl:          ToleranceRelative,
		HeightControl:         ToleranceRelative,
		PositionTolerance:     1.1,
		AltitudeTolerance:     0.1,
		WidthTolerance:        2.0,
		HeightTolerance:       0.1,
		PositionRelTolerance:  0.16,
		AltitudeRelTolerance:  0.125,
		WidthRelTolerance:     0.26,
		HeightRelTolerance:    0.05,
		HoleMaxRelativeLength: 0.6,
		MaxHeightRatio:        0.9,
		WithTrend:             false,
		TrendMinPinch:         136,
		MinTrendSize:          6,
		DeviationPredictionOn: true,
		SlopePredictionOn:     true,
		MinCountOfPoints:      6,
	}
}
