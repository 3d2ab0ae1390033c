package recording

import (
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"
)

// Session is the durable shell around an in-memory recorder. The route and
// statistics live in the recorder until the session is stopped; the row
// exists so interrupted sessions are visible after a restart.
type Session struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	Type       recorder.ActivityType `json:"activity_type"`
	StartedAt  time.Time             `json:"started_at"`
	EndedAt    time.Time             `json:"ended_at,omitempty"`
	Status     string                `json:"status"`
	ActivityID string                `json:"activity_id,omitempty"`
}

const (
	statusActive    = "active"
	statusSaved     = "saved"
	statusDiscarded = "discarded"
)

// StatusSnapshot is a point-in-time view of a running session.
type StatusSnapshot struct {
	SessionID string             `json:"session_id"`
	State     recorder.State     `json:"state"`
	GPS       recorder.GPSStatus `json:"gps"`
	Stats     recorder.Stats     `json:"stats"`
}

// FixResponse reports what the recorder did with one submitted fix.
type FixResponse struct {
	Accepted bool                 `json:"accepted"`
	Signal   recorder.SignalEvent `json:"signal,omitempty"`
	Stats    recorder.Stats       `json:"stats"`
}
