package spot

import (
	"context"
	"errors"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input SavedSpot) (SavedSpot, error) {
	if input.UserID == "" || input.Name == "" {
		return SavedSpot{}, errors.New("user_id and name required")
	}
	if input.VisitedOn.IsZero() {
		input.VisitedOn = time.Now()
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO saved_spots (id, user_id, name, description, category, location, visited_on, rating, photo_urls)
		VALUES ($1,$2,$3,$4,$5, ST_SetSRID(ST_MakePoint($6,$7), 4326)::geography, $8, $9, $10)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.Description, input.Category,
		input.Lng, input.Lat, input.VisitedOn, input.Rating, input.PhotoURLs)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return SavedSpot{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, id string, patch SavedSpot) (SavedSpot, error) {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return SavedSpot{}, err
	}
	if patch.Name != "" {
		sp.Name = patch.Name
	}
	if patch.Description != "" {
		sp.Description = patch.Description
	}
	if patch.Category != "" {
		sp.Category = patch.Category
	}
	if patch.Lat != 0 {
		sp.Lat = patch.Lat
	}
	if patch.Lng != 0 {
		sp.Lng = patch.Lng
	}
	if !patch.VisitedOn.IsZero() {
		sp.VisitedOn = patch.VisitedOn
	}
	if patch.Rating != 0 {
		sp.Rating = patch.Rating
	}

	_, err = s.db.Exec(ctx, `
		UPDATE saved_spots
		SET name=$2, description=$3, category=$4,
		    location=ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography,
		    visited_on=$7, rating=$8
		WHERE id=$1
	`, sp.ID, sp.Name, sp.Description, sp.Category, sp.Lng, sp.Lat, sp.VisitedOn, sp.Rating)
	if err != nil {
		return SavedSpot{}, err
	}
	return sp, nil
}

func (s *Service) Get(ctx context.Context, id string) (SavedSpot, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, COALESCE(description,''), category,
		       ST_Y(location::geometry), ST_X(location::geometry),
		       visited_on, COALESCE(rating,0), photo_urls, created_at
		FROM saved_spots WHERE id=$1
	`, id)
	var sp SavedSpot
	if err := row.Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Description, &sp.Category,
		&sp.Lat, &sp.Lng, &sp.VisitedOn, &sp.Rating, &sp.PhotoURLs, &sp.CreatedAt); err != nil {
		return SavedSpot{}, err
	}
	return sp, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]SavedSpot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, COALESCE(description,''), category,
		       ST_Y(location::geometry), ST_X(location::geometry),
		       visited_on, COALESCE(rating,0), photo_urls, created_at
		FROM saved_spots WHERE user_id=$1
		ORDER BY visited_on DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Unassigned returns spots visited since the given date that are not linked
// to any trip.
func (s *Service) Unassigned(ctx context.Context, userID string, since time.Time) ([]SavedSpot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sp.id, sp.user_id, sp.name, COALESCE(sp.description,''), sp.category,
		       ST_Y(sp.location::geometry), ST_X(sp.location::geometry),
		       sp.visited_on, COALESCE(sp.rating,0), sp.photo_urls, sp.created_at
		FROM saved_spots sp
		WHERE sp.user_id=$1 AND sp.visited_on >= $2
		AND NOT EXISTS (
			SELECT 1 FROM trip_items ti WHERE ti.item_kind='spot' AND ti.item_id=sp.id
		)
		ORDER BY sp.visited_on
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// AttachPhotos appends durable photo references. Best-effort, like the
// activity counterpart.
func (s *Service) AttachPhotos(ctx context.Context, id string, urls []string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE saved_spots SET photo_urls = photo_urls || $2 WHERE id=$1
	`, id, urls)
	return err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM saved_spots WHERE id=$1`, id)
	return err
}

func collect(rows pgx.Rows) ([]SavedSpot, error) {
	var out []SavedSpot
	for rows.Next() {
		var sp SavedSpot
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Description, &sp.Category,
			&sp.Lat, &sp.Lng, &sp.VisitedOn, &sp.Rating, &sp.PhotoURLs, &sp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}
