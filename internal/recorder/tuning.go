package recorder

import "time"

// Tuning holds the per-activity filter thresholds. The values are empirical,
// not derived, so they are fields rather than constants.
type Tuning struct {
	// AccuracyM is the worst reported fix accuracy accepted outright.
	AccuracyM float64
	// MinMoveM filters stationary jitter: movement below it is discarded.
	MinMoveM float64
	// MaxJumpM drops implausible instantaneous jumps during continuous tracking.
	MaxJumpM float64
	// MaxSpeedKmh validates implied speed across time-gapped jumps.
	MaxSpeedKmh float64

	// GapSpeedFactor relaxes MaxSpeedKmh when re-acquiring after a GPS gap.
	GapSpeedFactor float64

	// FallbackAccuracyM, when > 0, admits fixes up to this accuracy once
	// FallbackAfter has elapsed since the last accepted point. Used for
	// vehicle travel where losing all data beats losing precision.
	FallbackAccuracyM float64
	FallbackAfter     time.Duration

	// AcceptLongGaps treats gaps beyond LongGap as legitimate route
	// continuation rather than jitter (bikes and vehicles).
	AcceptLongGaps bool
	LongGap        time.Duration
}

const (
	gapThreshold     = 30 * time.Second
	maxRoutePoints   = 1000
	recentKeepPoints = 100
)

// TuningFor returns the default thresholds for an activity type. Stricter
// accuracy for foot activities, looser for anything fast.
func TuningFor(t ActivityType) Tuning {
	base := Tuning{
		GapSpeedFactor: 1.5,
		LongGap:        60 * time.Second,
	}

	switch t {
	case TypeWalk:
		base.AccuracyM = 30
		base.MinMoveM = 0.5
		base.MaxJumpM = 100
		base.MaxSpeedKmh = 10
	case TypeHike:
		base.AccuracyM = 30
		base.MinMoveM = 0.5
		base.MaxJumpM = 150
		base.MaxSpeedKmh = 12
	case TypeClimb:
		base.AccuracyM = 30
		base.MinMoveM = 0.3
		base.MaxJumpM = 100
		base.MaxSpeedKmh = 8
	case TypeRun:
		base.AccuracyM = 50
		base.MinMoveM = 1
		base.MaxJumpM = 200
		base.MaxSpeedKmh = 25
	case TypePaddleboard:
		base.AccuracyM = 75
		base.MinMoveM = 1
		base.MaxJumpM = 300
		base.MaxSpeedKmh = 20
	case TypeBike:
		base.AccuracyM = 75
		base.MinMoveM = 2
		base.MaxJumpM = 500
		base.MaxSpeedKmh = 60
		base.AcceptLongGaps = true
	default: // vehicle-like / unclassified
		base.AccuracyM = 100
		base.MinMoveM = 5
		base.MaxJumpM = 10000
		base.MaxSpeedKmh = 200
		base.AcceptLongGaps = true
		base.FallbackAccuracyM = 200
		base.FallbackAfter = 60 * time.Second
	}
	return base
}
