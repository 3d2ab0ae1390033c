package recorder

import (
	"errors"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/shared/geo"
)

var (
	ErrAlreadyTracking = errors.New("recording already in progress")
	ErrNotTracking     = errors.New("no recording in progress")
	ErrNotPaused       = errors.New("recording is not paused")
	ErrNoActivityData  = errors.New("no activity data to save")
)

const (
	poorAccuracyFactor = 3
	poorAlertQuiet     = 5 * time.Minute
	poorRestoreAfter   = 60 * time.Second
	staleAfter         = 60 * time.Second
	degradedAfter      = 30 * time.Second
)

// Recorder turns a stream of noisy location fixes into a clean route with
// running distance and speed statistics. All session state lives here; one
// recorder owns one recording session and is the single writer of its route.
type Recorder struct {
	activityType ActivityType
	tuning       Tuning

	state       State
	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	route           []RoutePoint
	distanceM       float64
	currentSpeedMps float64
	maxSpeedMps     float64
	lastAcceptedAt  time.Time

	lastAccuracy float64
	poorSince    time.Time
	poorNotified bool
	lastAlertAt  time.Time

	now func() time.Time
}

// New returns an idle recorder tuned for the given activity type.
func New(t ActivityType) *Recorder {
	return NewWithTuning(t, TuningFor(t))
}

// NewWithTuning returns an idle recorder with explicit thresholds.
func NewWithTuning(t ActivityType, tuning Tuning) *Recorder {
	return &Recorder{
		activityType: t,
		tuning:       tuning,
		state:        StateIdle,
		now:          time.Now,
	}
}

func (r *Recorder) State() State { return r.state }

func (r *Recorder) ActivityType() ActivityType { return r.activityType }

// Start transitions Idle -> Tracking.
func (r *Recorder) Start() error {
	if r.state != StateIdle {
		return ErrAlreadyTracking
	}
	r.state = StateTracking
	r.startedAt = r.now()
	return nil
}

// Pause suspends sample acceptance and the duration clock.
func (r *Recorder) Pause() error {
	if r.state != StateTracking {
		return ErrNotTracking
	}
	r.state = StatePaused
	r.pausedAt = r.now()
	return nil
}

// Resume restarts the clock, crediting the elapsed pause time so it is
// excluded from the final duration.
func (r *Recorder) Resume() error {
	if r.state != StatePaused {
		return ErrNotPaused
	}
	r.pausedTotal += r.now().Sub(r.pausedAt)
	r.pausedAt = time.Time{}
	r.state = StateTracking
	return nil
}

// Stop finalizes the session and returns the recorder to Idle.
func (r *Recorder) Stop() (Result, error) {
	if r.state == StateIdle {
		return Result{}, ErrNotTracking
	}
	if r.startedAt.IsZero() {
		r.reset()
		return Result{}, ErrNoActivityData
	}

	endedAt := r.now()
	paused := r.pausedTotal
	if r.state == StatePaused {
		paused += endedAt.Sub(r.pausedAt)
	}
	duration := endedAt.Sub(r.startedAt) - paused
	if duration < 0 {
		duration = 0
	}

	avg := 0.0
	if duration > 0 {
		avg = r.distanceM / duration.Seconds()
	}

	res := Result{
		Type:        r.activityType,
		StartedAt:   r.startedAt,
		EndedAt:     endedAt,
		Duration:    duration,
		DistanceM:   r.distanceM,
		Route:       r.route,
		AvgSpeedMps: avg,
		MaxSpeedMps: r.maxSpeedMps,
	}
	r.reset()
	return res, nil
}

// Discard abandons the session without producing a result. Always succeeds.
func (r *Recorder) Discard() {
	r.reset()
}

func (r *Recorder) reset() {
	r.state = StateIdle
	r.startedAt = time.Time{}
	r.pausedAt = time.Time{}
	r.pausedTotal = 0
	r.route = nil
	r.distanceM = 0
	r.currentSpeedMps = 0
	r.maxSpeedMps = 0
	r.lastAcceptedAt = time.Time{}
	r.lastAccuracy = 0
	r.poorSince = time.Time{}
	r.poorNotified = false
	r.lastAlertAt = time.Time{}
}

// ProcessFix runs the acceptance algorithm for one incoming fix. It is
// synchronous and runs to completion; fixes arriving while paused or idle
// are dropped.
func (r *Recorder) ProcessFix(fix LocationFix) Decision {
	if r.state != StateTracking {
		return Decision{}
	}

	signal := r.trackSignal(fix)

	if fix.AccuracyM > 0 && fix.AccuracyM > r.tuning.AccuracyM {
		if !r.fallbackAccepts(fix) {
			return Decision{Signal: signal}
		}
	}

	if len(r.route) == 0 {
		r.accept(fix, 0)
		return Decision{Accepted: true, Signal: signal}
	}

	last := r.route[len(r.route)-1]
	dist := geo.HaversineM(last.Lat, last.Lng, fix.Lat, fix.Lng)
	elapsed := fix.Timestamp.Sub(last.Timestamp)

	if dist < r.tuning.MinMoveM {
		return Decision{Signal: signal}
	}

	maxSpeedMps := r.tuning.MaxSpeedKmh / 3.6

	if elapsed > gapThreshold {
		// GPS gap: accept the jump only at a plausible implied speed,
		// unless long gaps are treated as legitimate continuation.
		implied := dist / elapsed.Seconds()
		if implied > maxSpeedMps*r.tuning.GapSpeedFactor {
			if !(r.tuning.AcceptLongGaps && elapsed > r.tuning.LongGap) {
				return Decision{Signal: signal}
			}
		}
	} else {
		if dist > r.tuning.MaxJumpM {
			return Decision{Signal: signal}
		}
		if elapsed > 0 {
			implied := dist / elapsed.Seconds()
			if implied <= maxSpeedMps {
				r.currentSpeedMps = implied
				if implied > r.maxSpeedMps {
					r.maxSpeedMps = implied
				}
			}
		}
	}

	r.accept(fix, dist)
	return Decision{Accepted: true, Signal: signal}
}

func (r *Recorder) fallbackAccepts(fix LocationFix) bool {
	if r.tuning.FallbackAccuracyM <= 0 || fix.AccuracyM > r.tuning.FallbackAccuracyM {
		return false
	}
	if r.lastAcceptedAt.IsZero() {
		return true
	}
	return fix.Timestamp.Sub(r.lastAcceptedAt) >= r.tuning.FallbackAfter
}

func (r *Recorder) accept(fix LocationFix, dist float64) {
	r.route = append(r.route, RoutePoint{
		Lat:       fix.Lat,
		Lng:       fix.Lng,
		AltitudeM: fix.AltitudeM,
		Timestamp: fix.Timestamp,
	})
	r.distanceM += dist
	r.lastAcceptedAt = fix.Timestamp

	if len(r.route) > maxRoutePoints {
		r.route = downsample(r.route)
	}
}

// downsample bounds route memory: the first point and the most recent
// recentKeepPoints survive verbatim, the middle is thinned at a uniform
// stride so the total stays near maxRoutePoints.
func downsample(route []RoutePoint) []RoutePoint {
	if len(route) <= maxRoutePoints {
		return route
	}

	tailStart := len(route) - recentKeepPoints
	middle := route[1:tailStart]
	budget := maxRoutePoints - recentKeepPoints - 1

	stride := (len(middle) + budget - 1) / budget
	if stride < 1 {
		stride = 1
	}

	out := make([]RoutePoint, 0, maxRoutePoints)
	out = append(out, route[0])
	for i := 0; i < len(middle); i += stride {
		out = append(out, middle[i])
	}
	out = append(out, route[tailStart:]...)
	return out
}

// trackSignal maintains the sustained-poor-accuracy bookkeeping and returns
// the one-shot event owed to the caller, if any.
func (r *Recorder) trackSignal(fix LocationFix) SignalEvent {
	now := fix.Timestamp
	r.lastAccuracy = fix.AccuracyM

	poorBand := r.tuning.AccuracyM * poorAccuracyFactor
	if fix.AccuracyM > poorBand {
		if r.poorSince.IsZero() {
			r.poorSince = now
		}
		if !r.poorNotified && (r.lastAlertAt.IsZero() || now.Sub(r.lastAlertAt) >= poorAlertQuiet) {
			r.poorNotified = true
			r.lastAlertAt = now
			return SignalPoor
		}
		return SignalNone
	}

	if fix.AccuracyM > 0 && !r.poorSince.IsZero() {
		if r.poorNotified && now.Sub(r.poorSince) > poorRestoreAfter {
			r.poorSince = time.Time{}
			r.poorNotified = false
			return SignalRestored
		}
		// a brief poor spell that recovered; forget its start time so a
		// later good fix cannot report a restore off a stale spell
		r.poorSince = time.Time{}
	}
	return SignalNone
}

// Status classifies the live GPS signal for UI feedback. Meant to be polled
// periodically (the liveness check), not driven by a timer here.
func (r *Recorder) Status(now time.Time) GPSStatus {
	if r.state == StateIdle {
		return GPSSearching
	}
	if r.lastAcceptedAt.IsZero() {
		return GPSSearching
	}
	if r.lastAccuracy > r.tuning.AccuracyM*poorAccuracyFactor {
		return GPSError
	}
	since := now.Sub(r.lastAcceptedAt)
	switch {
	case since > staleAfter:
		return GPSStale
	case since > degradedAfter:
		return GPSSearching
	default:
		return GPSActive
	}
}

// Stats returns a live snapshot of the session.
func (r *Recorder) Stats() Stats {
	return Stats{
		State:           r.state,
		DistanceM:       r.distanceM,
		Duration:        r.elapsed(),
		DurationSec:     int64(r.elapsed().Seconds()),
		PointCount:      len(r.route),
		CurrentSpeedMps: r.currentSpeedMps,
		MaxSpeedMps:     r.maxSpeedMps,
	}
}

// Route returns the accepted points so far.
func (r *Recorder) Route() []RoutePoint { return r.route }

func (r *Recorder) elapsed() time.Duration {
	if r.startedAt.IsZero() {
		return 0
	}
	end := r.now()
	paused := r.pausedTotal
	if r.state == StatePaused {
		paused += end.Sub(r.pausedAt)
	}
	d := end.Sub(r.startedAt) - paused
	if d < 0 {
		return 0
	}
	return d
}
