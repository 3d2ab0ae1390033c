package recording

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/stream"
)

var ErrSessionNotFound = errors.New("recording session not found")

// Service manages live recording sessions. Each session owns one recorder;
// accepted points and signal events are fanned out over the stream hub so
// a live map can follow along.
type Service struct {
	db         db.Querier
	hub        *stream.Hub
	activities *activity.Service

	mu       sync.Mutex
	sessions map[string]*liveSession

	now func() time.Time
}

// liveSession guards its recorder with its own mutex: fiber serves
// handlers concurrently, and the recorder expects a single writer.
type liveSession struct {
	Session
	mu  sync.Mutex
	rec *recorder.Recorder

	// set once the recorder is finalized; kept so a Stop whose activity
	// save failed can be retried without losing the route
	result *recorder.Result
}

func NewService(db db.Querier, hub *stream.Hub, activities *activity.Service) *Service {
	return &Service{
		db:         db,
		hub:        hub,
		activities: activities,
		sessions:   map[string]*liveSession{},
		now:        time.Now,
	}
}

// Start opens a session and its recorder.
func (s *Service) Start(ctx context.Context, userID string, t recorder.ActivityType) (Session, error) {
	if !t.Valid() {
		return Session{}, errors.New("invalid activity type")
	}

	rec := recorder.New(t)
	if err := rec.Start(); err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      t,
		StartedAt: s.now(),
		Status:    statusActive,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO recording_sessions (id, user_id, activity_type, started_at, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING started_at
	`, sess.ID, sess.UserID, sess.Type, sess.StartedAt, sess.Status)
	if err := row.Scan(&sess.StartedAt); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &liveSession{Session: sess, rec: rec}
	s.mu.Unlock()
	return sess, nil
}

// AddFix feeds one location fix to the session's recorder and broadcasts
// accepted points and signal transitions to stream subscribers.
func (s *Service) AddFix(userID, sessionID string, fix recorder.LocationFix) (FixResponse, error) {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return FixResponse{}, err
	}

	live.mu.Lock()
	decision := live.rec.ProcessFix(fix)
	stats := live.rec.Stats()
	live.mu.Unlock()

	if decision.Accepted {
		s.publish(sessionID, "point", recorder.RoutePoint{
			Lat: fix.Lat, Lng: fix.Lng, AltitudeM: fix.AltitudeM, Timestamp: fix.Timestamp,
		})
	}
	if decision.Signal != recorder.SignalNone {
		s.publish(sessionID, "signal", decision.Signal)
	}

	return FixResponse{
		Accepted: decision.Accepted,
		Signal:   decision.Signal,
		Stats:    stats,
	}, nil
}

func (s *Service) Pause(userID, sessionID string) error {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	live.mu.Lock()
	err = live.rec.Pause()
	live.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(sessionID, "paused", nil)
	return nil
}

func (s *Service) Resume(userID, sessionID string) error {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	live.mu.Lock()
	err = live.rec.Resume()
	live.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(sessionID, "resumed", nil)
	return nil
}

// Status reports the session's recorder state, GPS health, and running
// statistics.
func (s *Service) Status(userID, sessionID string) (StatusSnapshot, error) {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return StatusSnapshot{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return StatusSnapshot{
		SessionID: sessionID,
		State:     live.rec.State(),
		GPS:       live.rec.Status(s.now()),
		Stats:     live.rec.Stats(),
	}, nil
}

func (s *Service) Route(userID, sessionID string) ([]recorder.RoutePoint, error) {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	if live.result != nil {
		return live.result.Route, nil
	}
	return live.rec.Route(), nil
}

// Stop finalizes the session and persists its result as an activity. A
// session without any accepted points cannot be saved.
func (s *Service) Stop(ctx context.Context, userID, sessionID, name string) (activity.Activity, error) {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return activity.Activity{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if live.result == nil {
		res, err := live.rec.Stop()
		if err != nil {
			return activity.Activity{}, err
		}
		live.result = &res
	}
	if len(live.result.Route) == 0 {
		s.close(ctx, live, statusDiscarded, "")
		return activity.Activity{}, recorder.ErrNoActivityData
	}

	act, err := s.activities.Create(ctx, activity.FromResult(live.UserID, name, *live.result))
	if err != nil {
		// keep the session and its finalized result registered so the
		// caller can retry; only a successful save closes it
		return activity.Activity{}, err
	}

	if err := s.close(ctx, live, statusSaved, act.ID); err != nil {
		return activity.Activity{}, err
	}
	s.publish(sessionID, "ended", act.ID)
	return act, nil
}

// Discard abandons the session; nothing is saved.
func (s *Service) Discard(ctx context.Context, userID, sessionID string) error {
	live, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	live.mu.Lock()
	live.rec.Discard()
	live.result = nil
	live.mu.Unlock()
	if err := s.close(ctx, live, statusDiscarded, ""); err != nil {
		return err
	}
	s.publish(sessionID, "discarded", nil)
	return nil
}

// Active returns the user's live sessions.
func (s *Service) Active(userID string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Session
	for _, live := range s.sessions {
		if live.UserID == userID {
			out = append(out, live.Session)
		}
	}
	return out
}

// lookup resolves a session for its owner. A wrong owner gets the same
// not-found as a missing session, so session ids leak nothing.
func (s *Service) lookup(userID, sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[sessionID]
	if !ok || live.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return live, nil
}

func (s *Service) close(ctx context.Context, live *liveSession, status, activityID string) error {
	s.mu.Lock()
	delete(s.sessions, live.ID)
	s.mu.Unlock()

	var actID *string
	if activityID != "" {
		actID = &activityID
	}
	_, err := s.db.Exec(ctx, `
		UPDATE recording_sessions SET ended_at=$2, status=$3, activity_id=$4 WHERE id=$1
	`, live.ID, s.now(), status, actID)
	return err
}

func (s *Service) publish(sessionID, event string, data any) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		return
	}
	s.hub.Broadcast(sessionID, payload)
}
