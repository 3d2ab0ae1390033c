package recorder

import (
	"context"
	"time"
)

// WatchOptions configures a location subscription.
type WatchOptions struct {
	HighAccuracy bool
	MinInterval  time.Duration
	MinDistanceM float64
}

// LocationSource abstracts the device location service so the acceptance
// algorithm can be driven by a synthetic fix stream in tests.
type LocationSource interface {
	// Watch starts a subscription. The returned channel is closed when the
	// context is cancelled or the subscription ends.
	Watch(ctx context.Context, opts WatchOptions) (<-chan LocationFix, error)
	// BestEffortFix returns a possibly stale, possibly inaccurate cached
	// fix, if one exists within the given bounds.
	BestEffortFix(ctx context.Context, maxAge time.Duration, maxAccuracyM float64) (LocationFix, bool, error)
}

const (
	degradedMaxAge      = 60 * time.Second
	degradedMaxAccuracy = 1000.0
)

// InitialFix obtains a starting location without blocking tracking start
// indefinitely: first a degraded cached fix, then one fresh fix from a
// high-accuracy watch. Tracking proceeds with whatever is available.
func InitialFix(ctx context.Context, src LocationSource) (LocationFix, bool) {
	if fix, ok, err := src.BestEffortFix(ctx, degradedMaxAge, degradedMaxAccuracy); err == nil && ok {
		return fix, true
	}

	ch, err := src.Watch(ctx, WatchOptions{HighAccuracy: true})
	if err != nil {
		return LocationFix{}, false
	}
	select {
	case fix, ok := <-ch:
		return fix, ok
	case <-ctx.Done():
		return LocationFix{}, false
	}
}

// Run consumes fixes from the stream in arrival order until the channel is
// closed or the context is cancelled. Accepted points and signal events are
// reported through the callbacks; either may be nil.
func (r *Recorder) Run(ctx context.Context, fixes <-chan LocationFix, onAccept func(RoutePoint), onSignal func(SignalEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			d := r.ProcessFix(fix)
			if d.Accepted && onAccept != nil {
				onAccept(r.route[len(r.route)-1])
			}
			if d.Signal != SignalNone && onSignal != nil {
				onSignal(d.Signal)
			}
		}
	}
}
