package recorder

import "time"

// ActivityType selects the filter tuning used while recording.
type ActivityType string

const (
	TypeBike        ActivityType = "bike"
	TypeRun         ActivityType = "run"
	TypeWalk        ActivityType = "walk"
	TypeHike        ActivityType = "hike"
	TypePaddleboard ActivityType = "paddleboard"
	TypeClimb       ActivityType = "climb"
	TypeOther       ActivityType = "other"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeBike, TypeRun, TypeWalk, TypeHike, TypePaddleboard, TypeClimb, TypeOther:
		return true
	}
	return false
}

// LocationFix is one raw reading from the device location service. Only
// accepted fixes survive as route points; everything else is discarded.
type LocationFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	AccuracyM float64   `json:"accuracy_m,omitempty"` // <= 0 means unknown
	AltitudeM float64   `json:"altitude_m,omitempty"`
	SpeedMps  float64   `json:"speed_mps,omitempty"`
}

// RoutePoint is a fix accepted into the route. Points are kept in arrival
// order; the sequence is only rewritten by bounded downsampling.
type RoutePoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	AltitudeM float64   `json:"altitude_m,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the recorder lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
	StatePaused   State = "paused"
)

// GPSStatus is the live signal classification surfaced to callers.
type GPSStatus string

const (
	GPSActive    GPSStatus = "active"
	GPSSearching GPSStatus = "searching"
	GPSStale     GPSStatus = "stale"
	GPSError     GPSStatus = "error"
)

// SignalEvent is an advisory, one-shot notification obligation about GPS
// quality. It never affects what ends up in the route.
type SignalEvent string

const (
	SignalNone     SignalEvent = ""
	SignalPoor     SignalEvent = "poor_signal"
	SignalRestored SignalEvent = "signal_restored"
)

// Decision is the outcome of processing a single fix.
type Decision struct {
	Accepted bool
	Signal   SignalEvent
}

// Stats is a live snapshot of the recording session.
type Stats struct {
	State           State         `json:"state"`
	DistanceM       float64       `json:"distance_m"`
	Duration        time.Duration `json:"-"`
	DurationSec     int64         `json:"duration_sec"`
	PointCount      int           `json:"point_count"`
	CurrentSpeedMps float64       `json:"current_speed_mps"`
	MaxSpeedMps     float64       `json:"max_speed_mps"`
}

// Result is the finalized output of a recording session, handed off for
// persistence as an Activity.
type Result struct {
	Type        ActivityType
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    time.Duration
	DistanceM   float64
	Route       []RoutePoint
	AvgSpeedMps float64
	MaxSpeedMps float64
}
