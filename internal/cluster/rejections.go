package cluster

import (
	"context"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"
)

// RejectionStore remembers which items a user declined to auto-group. A
// rejected item is suppressed from all future cluster proposals for that
// user until rejections are cleared.
type RejectionStore struct {
	db db.Querier
}

func NewRejectionStore(db db.Querier) *RejectionStore {
	return &RejectionStore{db: db}
}

// Add records a rejection. Idempotent: a duplicate insert is success.
func (s *RejectionStore) Add(ctx context.Context, userID string, kind trip.ItemKind, itemID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO item_rejections (user_id, item_kind, item_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, item_kind, item_id) DO NOTHING
	`, userID, kind, itemID)
	return err
}

// Rejected returns the user's rejected item keys ("kind:id").
func (s *RejectionStore) Rejected(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, `
		SELECT item_kind, item_id FROM item_rejections WHERE user_id=$1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rejected := map[string]struct{}{}
	for rows.Next() {
		var kind, itemID string
		if err := rows.Scan(&kind, &itemID); err != nil {
			return nil, err
		}
		rejected[kind+":"+itemID] = struct{}{}
	}
	return rejected, rows.Err()
}

// Clear forgets all of the user's rejections.
func (s *RejectionStore) Clear(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM item_rejections WHERE user_id=$1`, userID)
	return err
}
