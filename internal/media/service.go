package media

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"
)

// Object maps a device-local photo reference to a durable URL. Activities
// and spots store only durable URLs; local refs die with the device.
type Object struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LocalRef  string    `json:"local_ref"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(db db.Querier, baseURL string) *Service {
	return &Service{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// Register records a local reference and mints its durable URL.
func (s *Service) Register(ctx context.Context, userID, localRef, kind string) (Object, error) {
	if localRef == "" {
		return Object{}, errors.New("local_ref required")
	}
	if kind == "" {
		kind = "photo"
	}

	obj := Object{
		ID:       uuid.NewString(),
		UserID:   userID,
		LocalRef: localRef,
		Kind:     kind,
	}
	obj.URL = s.baseURL + "/media/" + obj.ID
	row := s.db.QueryRow(ctx, `
		INSERT INTO media_objects (id, user_id, local_ref, url, kind)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, obj.ID, obj.UserID, obj.LocalRef, obj.URL, obj.Kind)
	if err := row.Scan(&obj.CreatedAt); err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (s *Service) Get(ctx context.Context, id string) (Object, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, local_ref, url, kind, created_at
		FROM media_objects WHERE id=$1
	`, id)
	var obj Object
	if err := row.Scan(&obj.ID, &obj.UserID, &obj.LocalRef, &obj.URL, &obj.Kind, &obj.CreatedAt); err != nil {
		return Object{}, err
	}
	return obj, nil
}
