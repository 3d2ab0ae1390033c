package activity

import (
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"
)

type Activity struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	Type         recorder.ActivityType `json:"type"`
	Name         string                `json:"name"`
	ActivityDate time.Time             `json:"activity_date"`
	StartedAt    time.Time             `json:"started_at"`
	EndedAt      time.Time             `json:"ended_at"`
	DurationSec  int64                 `json:"duration_sec"`
	DistanceM    float64               `json:"distance_m"`
	Route        []recorder.RoutePoint `json:"route,omitempty"`
	AvgSpeedMps  float64               `json:"avg_speed_mps"`
	MaxSpeedMps  float64               `json:"max_speed_mps"`
	Notes        string                `json:"notes,omitempty"`
	PhotoURLs    []string              `json:"photo_urls,omitempty"`
	IsManual     bool                  `json:"is_manual"`
	CreatedAt    time.Time             `json:"created_at"`
}

// StartLocation returns the first route point, if the activity has a route.
func (a Activity) StartLocation() (lat, lng float64, ok bool) {
	if len(a.Route) == 0 {
		return 0, 0, false
	}
	return a.Route[0].Lat, a.Route[0].Lng, true
}

// FromResult builds an Activity from a finalized recording session.
func FromResult(userID, name string, res recorder.Result) Activity {
	return Activity{
		UserID:       userID,
		Type:         res.Type,
		Name:         name,
		ActivityDate: res.StartedAt,
		StartedAt:    res.StartedAt,
		EndedAt:      res.EndedAt,
		DurationSec:  int64(res.Duration.Seconds()),
		DistanceM:    res.DistanceM,
		Route:        res.Route,
		AvgSpeedMps:  res.AvgSpeedMps,
		MaxSpeedMps:  res.MaxSpeedMps,
	}
}
