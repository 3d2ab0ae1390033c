package cluster

import (
	"encoding/json"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/spot"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"
)

// Item is the engine's uniform view of an activity or saved spot. The tagged
// Kind replaces ad-hoc probing of a dynamic payload.
type Item struct {
	Kind        trip.ItemKind   `json:"kind"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Date        time.Time       `json:"date"`
	Lat         float64         `json:"lat,omitempty"`
	Lng         float64         `json:"lng,omitempty"`
	HasLocation bool            `json:"has_location"`
	DistanceM   float64         `json:"distance_m,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

func (it Item) key() string {
	return string(it.Kind) + ":" + it.ID
}

// FromActivity converts an activity, using its first route point as the
// item location when a route exists.
func FromActivity(a activity.Activity) Item {
	it := Item{
		Kind:      trip.KindActivity,
		ID:        a.ID,
		Name:      a.Name,
		Date:      a.ActivityDate,
		DistanceM: a.DistanceM,
	}
	if lat, lng, ok := a.StartLocation(); ok {
		it.Lat, it.Lng, it.HasLocation = lat, lng, true
	}
	it.Data, _ = json.Marshal(a)
	return it
}

func FromSpot(sp spot.SavedSpot) Item {
	it := Item{
		Kind:        trip.KindSpot,
		ID:          sp.ID,
		Name:        sp.Name,
		Date:        sp.VisitedOn,
		Lat:         sp.Lat,
		Lng:         sp.Lng,
		HasLocation: true,
	}
	it.Data, _ = json.Marshal(sp)
	return it
}

// TripItem converts an engine item into a trip link.
func (it Item) TripItem(tripID, addedBy string) trip.TripItem {
	return trip.TripItem{
		TripID:      tripID,
		Kind:        it.Kind,
		ItemID:      it.ID,
		ItemDate:    it.Date,
		Lat:         it.Lat,
		Lng:         it.Lng,
		HasLocation: it.HasLocation,
		Data:        it.Data,
		AddedBy:     addedBy,
	}
}

// Cluster is a transient grouping of unassigned items proposed as a trip.
// It is never persisted; it is either discarded or materialized.
type Cluster struct {
	Items          []Item    `json:"items"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	ActivityCount  int       `json:"activity_count"`
	SpotCount      int       `json:"spot_count"`
	TotalDistanceM float64   `json:"total_distance_m"`
	Name           string    `json:"name"`
}

// Config holds the matching and discovery thresholds. All empirical, so
// tunable rather than constant.
type Config struct {
	// HasHome gates the home-radius exclusion; items recorded near home
	// are routine, not trip-worthy.
	HasHome      bool
	HomeLat      float64
	HomeLng      float64
	HomeRadiusKm float64

	// TripProximityKm bounds how far an item may be from an existing
	// trip's items and still match it.
	TripProximityKm float64
	// ClusterProximityKm bounds spatial growth during discovery.
	ClusterProximityKm float64

	DateSlackDays  int
	WideSlackDays  int
	MaxTripAgeDays int
	LookbackDays   int
	// StaleSingleDayDays drops single-day clusters whose newest item is
	// older than this; fresh ones are still worth proposing.
	StaleSingleDayDays int
}

func DefaultConfig() Config {
	return Config{
		HomeRadiusKm:       2,
		TripProximityKm:    100,
		ClusterProximityKm: 50,
		DateSlackDays:      7,
		WideSlackDays:      14,
		MaxTripAgeDays:     90,
		LookbackDays:       30,
		StaleSingleDayDays: 14,
	}
}
