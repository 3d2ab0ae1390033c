package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Activity) (Activity, error) {
	if input.UserID == "" || !input.Type.Valid() {
		return Activity{}, errors.New("user_id and a valid activity type required")
	}
	if input.ActivityDate.IsZero() {
		return Activity{}, errors.New("activity_date required")
	}

	input.ID = uuid.NewString()
	if input.Name == "" {
		input.Name = string(input.Type) + " " + input.ActivityDate.Format("Jan 2, 2006")
	}

	routeJSON, err := json.Marshal(input.Route)
	if err != nil {
		return Activity{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, type, name, activity_date, started_at, ended_at,
			duration_sec, distance_m, route, avg_speed_mps, max_speed_mps, notes, photo_urls, is_manual)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at
	`, input.ID, input.UserID, input.Type, input.Name, input.ActivityDate,
		timePtr(input.StartedAt), timePtr(input.EndedAt), input.DurationSec, input.DistanceM,
		routeJSON, input.AvgSpeedMps, input.MaxSpeedMps, input.Notes, input.PhotoURLs, input.IsManual)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Activity{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, type, name, activity_date, started_at, ended_at,
			duration_sec, distance_m, route, avg_speed_mps, max_speed_mps,
			COALESCE(notes,''), photo_urls, is_manual, created_at
		FROM activities WHERE id=$1
	`, id)
	return scanActivity(row)
}

func (s *Service) List(ctx context.Context, userID string, from, to time.Time) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, name, activity_date, started_at, ended_at,
			duration_sec, distance_m, route, avg_speed_mps, max_speed_mps,
			COALESCE(notes,''), photo_urls, is_manual, created_at
		FROM activities
		WHERE user_id=$1 AND activity_date >= $2 AND activity_date <= $3
		ORDER BY activity_date DESC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Unassigned returns the user's activities since the given date that are not
// linked to any trip. Used by cluster discovery's lookback window.
func (s *Service) Unassigned(ctx context.Context, userID string, since time.Time) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.user_id, a.type, a.name, a.activity_date, a.started_at, a.ended_at,
			a.duration_sec, a.distance_m, a.route, a.avg_speed_mps, a.max_speed_mps,
			COALESCE(a.notes,''), a.photo_urls, a.is_manual, a.created_at
		FROM activities a
		WHERE a.user_id=$1 AND a.activity_date >= $2
		AND NOT EXISTS (
			SELECT 1 FROM trip_items ti WHERE ti.item_kind='activity' AND ti.item_id=a.id
		)
		ORDER BY a.activity_date
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Service) UpdateNotes(ctx context.Context, id, notes string) error {
	_, err := s.db.Exec(ctx, `UPDATE activities SET notes=$2 WHERE id=$1`, id, notes)
	return err
}

// AttachPhotos appends durable photo references. Best-effort: callers treat
// a failure here as non-fatal since the core fields are already persisted.
func (s *Service) AttachPhotos(ctx context.Context, id string, urls []string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE activities SET photo_urls = photo_urls || $2 WHERE id=$1
	`, id, urls)
	return err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (Activity, error) {
	var a Activity
	var routeJSON []byte
	var startedAt, endedAt *time.Time
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Name, &a.ActivityDate, &startedAt, &endedAt,
		&a.DurationSec, &a.DistanceM, &routeJSON, &a.AvgSpeedMps, &a.MaxSpeedMps,
		&a.Notes, &a.PhotoURLs, &a.IsManual, &a.CreatedAt); err != nil {
		return Activity{}, err
	}
	if startedAt != nil {
		a.StartedAt = *startedAt
	}
	if endedAt != nil {
		a.EndedAt = *endedAt
	}
	if len(routeJSON) > 0 {
		var route []recorder.RoutePoint
		if err := json.Unmarshal(routeJSON, &route); err != nil {
			return Activity{}, err
		}
		a.Route = route
	}
	return a, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
