package trip

import (
	"encoding/json"
	"time"
)

// ItemKind discriminates what a TripItem wraps.
type ItemKind string

const (
	KindActivity ItemKind = "activity"
	KindSpot     ItemKind = "spot"
)

func (k ItemKind) Valid() bool {
	return k == KindActivity || k == KindSpot
}

type Trip struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedBy     string    `json:"created_by"`
	AutoGenerated bool      `json:"auto_generated"`
	// DatesLocked suppresses automatic date-range adjustment when items
	// are added or removed.
	DatesLocked bool      `json:"dates_locked"`
	MergedFrom  []string  `json:"merged_from,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripItem links an activity or spot into a trip, carrying a denormalized
// copy of the underlying payload at the time of addition. An underlying
// (kind, item id) pair lives in at most one trip at a time.
type TripItem struct {
	ID       string    `json:"id"`
	TripID   string    `json:"trip_id"`
	Kind     ItemKind  `json:"kind"`
	ItemID   string    `json:"item_id"`
	ItemDate time.Time `json:"item_date"`
	// Lat/Lng are zero and HasLocation false for items without a location.
	Lat         float64         `json:"lat,omitempty"`
	Lng         float64         `json:"lng,omitempty"`
	HasLocation bool            `json:"has_location"`
	Data        json.RawMessage `json:"data,omitempty"`
	AddedBy     string          `json:"added_by"`
	AddedAt     time.Time       `json:"added_at"`
}

type Collaborator struct {
	TripID  string    `json:"trip_id"`
	UserID  string    `json:"user_id"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}
