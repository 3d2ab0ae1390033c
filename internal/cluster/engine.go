package cluster

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/shared/geo"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/spot"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"
)

// Prompter is the user-interaction gateway: every create-new-trip and
// cluster-review decision goes through it, never silently.
type Prompter interface {
	// Confirm presents a yes/no decision.
	Confirm(ctx context.Context, prompt string) (bool, error)
	// Choose presents a multiple-choice decision and returns the index of
	// the chosen option.
	Choose(ctx context.Context, prompt string, options []string) (int, error)
}

// Engine decides trip membership for items and discovers trip-shaped
// groupings among unassigned ones. Matching and clustering are advisory: a
// failed trip write never loses the underlying activity or spot, which is
// persisted independently beforehand.
type Engine struct {
	trips      *trip.Service
	activities *activity.Service
	spots      *spot.Service
	rejections *RejectionStore
	prompter   Prompter
	cfg        Config

	now func() time.Time
}

func NewEngine(trips *trip.Service, activities *activity.Service, spots *spot.Service,
	rejections *RejectionStore, prompter Prompter, cfg Config) *Engine {
	return &Engine{
		trips:      trips,
		activities: activities,
		spots:      spots,
		rejections: rejections,
		prompter:   prompter,
		cfg:        cfg,
		now:        time.Now,
	}
}

// MatchTrip finds an existing trip for an item, or nil. An item already in
// a trip, or within the home radius, never matches.
func (e *Engine) MatchTrip(ctx context.Context, userID string, item Item) (*trip.Trip, error) {
	existing, err := e.trips.ContainingTrip(ctx, item.Kind, item.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	if e.nearHome(item) {
		return nil, nil
	}

	return e.findCandidate(ctx, userID, item)
}

// findCandidate scans the user's trips in encounter order for the first
// one that is recent enough, covers the item's date with slack, and sits
// close enough spatially.
func (e *Engine) findCandidate(ctx context.Context, userID string, item Item) (*trip.Trip, error) {
	candidates, err := e.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxAge := time.Duration(e.cfg.MaxTripAgeDays) * 24 * time.Hour
	slack := time.Duration(e.cfg.DateSlackDays) * 24 * time.Hour
	for i := range candidates {
		cand := candidates[i]
		if e.now().Sub(cand.EndDate) > maxAge {
			continue
		}
		if item.Date.Before(cand.StartDate.Add(-slack)) || item.Date.After(cand.EndDate.Add(slack)) {
			continue
		}

		items, err := e.trips.Items(ctx, cand.ID)
		if err != nil {
			return nil, err
		}
		if !e.nearTripItems(item, items) {
			continue
		}
		// first match wins, encounter order
		return &cand, nil
	}
	return nil, nil
}

// nearTripItems permits a date-only match while the trip has no located
// items (or the item itself has no location).
func (e *Engine) nearTripItems(item Item, items []trip.TripItem) bool {
	if !item.HasLocation {
		return true
	}
	located := false
	for _, ti := range items {
		if !ti.HasLocation {
			continue
		}
		located = true
		if geo.WithinKm(ti.Lat, ti.Lng, item.Lat, item.Lng, e.cfg.TripProximityKm) {
			return true
		}
	}
	return !located
}

func (e *Engine) nearHome(item Item) bool {
	return e.cfg.HasHome && item.HasLocation &&
		geo.WithinKm(e.cfg.HomeLat, e.cfg.HomeLng, item.Lat, item.Lng, e.cfg.HomeRadiusKm)
}

// SmartAdd places an item into a matching trip, or offers to create a new
// one. Creation requires explicit confirmation through the prompter.
// Returns the trip the item ended up in (nil if the user declined) and
// whether a trip was created.
func (e *Engine) SmartAdd(ctx context.Context, userID string, item Item) (*trip.Trip, bool, error) {
	existing, err := e.trips.ContainingTrip(ctx, item.Kind, item.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	if e.nearHome(item) {
		return nil, false, nil
	}

	matched, err := e.findCandidate(ctx, userID, item)
	if err != nil {
		return nil, false, err
	}
	if matched != nil {
		if err := e.addItem(ctx, matched.ID, userID, item); err != nil {
			return nil, false, err
		}
		return matched, false, nil
	}

	if e.prompter == nil {
		return nil, false, nil
	}

	name := "Trip — " + item.Date.Format("Jan 2, 2006")
	ok, err := e.prompter.Confirm(ctx, `Start a new trip "`+name+`" for this?`)
	if err != nil || !ok {
		return nil, false, err
	}

	created, err := e.trips.CreateTrip(ctx, trip.Trip{
		Name:          name,
		StartDate:     item.Date,
		EndDate:       item.Date,
		CreatedBy:     userID,
		AutoGenerated: true,
	})
	if err != nil {
		return nil, false, err
	}
	if err := e.addItem(ctx, created.ID, userID, item); err != nil {
		return nil, false, err
	}
	return &created, true, nil
}

func (e *Engine) addItem(ctx context.Context, tripID, userID string, item Item) error {
	_, err := e.trips.AddItem(ctx, item.TripItem(tripID, userID))
	if errors.Is(err, trip.ErrItemAlreadyAdded) {
		// duplicate insert is a no-op, not a failure
		return nil
	}
	return err
}

// Detect gathers the lookback window's unassigned, unrejected items and
// groups them into candidate clusters.
func (e *Engine) Detect(ctx context.Context, userID string) ([]Cluster, error) {
	since := e.now().AddDate(0, 0, -e.cfg.LookbackDays)

	acts, err := e.activities.Unassigned(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	spots, err := e.spots.Unassigned(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	rejected, err := e.rejections.Rejected(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, a := range acts {
		it := FromActivity(a)
		if _, skip := rejected[it.key()]; !skip && !e.nearHome(it) {
			items = append(items, it)
		}
	}
	for _, sp := range spots {
		it := FromSpot(sp)
		if _, skip := rejected[it.key()]; !skip && !e.nearHome(it) {
			items = append(items, it)
		}
	}

	return buildClusters(items, e.cfg, e.now()), nil
}

// Materialize turns an accepted cluster into a real trip with its items.
func (e *Engine) Materialize(ctx context.Context, userID string, c Cluster) (trip.Trip, error) {
	created, err := e.trips.CreateTrip(ctx, trip.Trip{
		Name:          c.Name,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		CreatedBy:     userID,
		AutoGenerated: true,
	})
	if err != nil {
		return trip.Trip{}, err
	}
	for _, it := range c.Items {
		if err := e.addItem(ctx, created.ID, userID, it); err != nil {
			return trip.Trip{}, err
		}
	}
	return created, nil
}

// RunReview drives the full interactive detection flow: present clusters
// one at a time, then materialize every accepted cluster in one pass.
// A failed decision or a failed materialization only loses that cluster,
// not the run. Returns the number of trips created.
func (e *Engine) RunReview(ctx context.Context, userID string) (int, error) {
	// no prompter means no way to collect decisions
	if e.prompter == nil {
		return 0, nil
	}

	clusters, err := e.Detect(ctx, userID)
	if err != nil {
		return 0, err
	}

	review := NewReview(clusters)
	for {
		c, ok := review.Next()
		if !ok {
			break
		}

		choice, err := e.prompter.Choose(ctx, reviewPrompt(c),
			[]string{"Create trip", "Not now", "Don't ask again"})
		if err != nil {
			log.Printf("cluster review prompt failed, skipping %q: %v", c.Name, err)
			review.Resolve(DecisionSkip)
			continue
		}

		switch choice {
		case 0:
			review.Resolve(DecisionAccept)
		case 2:
			for _, it := range c.Items {
				if err := e.rejections.Add(ctx, userID, it.Kind, it.ID); err != nil {
					log.Printf("rejection write failed for %s: %v", it.key(), err)
				}
			}
			review.Resolve(DecisionReject)
		default:
			review.Resolve(DecisionSkip)
		}
	}

	created := 0
	for _, c := range review.Accepted() {
		if _, err := e.Materialize(ctx, userID, c); err != nil {
			log.Printf("could not create trip %q: %v", c.Name, err)
			continue
		}
		created++
	}
	return created, nil
}

func reviewPrompt(c Cluster) string {
	return `These look like they belong together. Create "` + c.Name + `"?`
}
