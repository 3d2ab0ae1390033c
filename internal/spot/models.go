package spot

import "time"

// SavedSpot is a place the user explicitly saved. VisitedOn is the date the
// place was visited, which is not necessarily the date it was saved.
type SavedSpot struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	VisitedOn   time.Time `json:"visited_on"`
	Rating      int       `json:"rating,omitempty"`
	PhotoURLs   []string  `json:"photo_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
