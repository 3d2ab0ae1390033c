package trip

import (
	"context"
	"errors"
	"time"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/db"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrItemAlreadyAdded signals a duplicate add. Callers surface it as an
	// "already added" notice, never as a crash.
	ErrItemAlreadyAdded = errors.New("item already added to a trip")
	ErrNotMergeable     = errors.New("trips cannot be merged")
)

const mergeProximityKm = 100

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	if input.Name == "" || input.CreatedBy == "" {
		return Trip{}, errors.New("name and created_by required")
	}

	input.StartDate = anchorDate(input.StartDate)
	input.EndDate = anchorDate(input.EndDate)
	if input.EndDate.Before(input.StartDate) {
		input.StartDate, input.EndDate = input.EndDate, input.StartDate
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, name, start_date, end_date, created_by, auto_generated, dates_locked, merged_from)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.Name, input.StartDate, input.EndDate, input.CreatedBy,
		input.AutoGenerated, input.DatesLocked, input.MergedFrom)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Trip{}, err
	}
	return input, nil
}

func (s *Service) UpdateTrip(ctx context.Context, id string, patch Trip) (Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if patch.Name != "" {
		trip.Name = patch.Name
	}
	if !patch.StartDate.IsZero() {
		trip.StartDate = anchorDate(patch.StartDate)
	}
	if !patch.EndDate.IsZero() {
		trip.EndDate = anchorDate(patch.EndDate)
	}
	if trip.EndDate.Before(trip.StartDate) {
		trip.StartDate, trip.EndDate = trip.EndDate, trip.StartDate
	}
	trip.DatesLocked = patch.DatesLocked

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET name=$2, start_date=$3, end_date=$4, dates_locked=$5
		WHERE id=$1
	`, trip.ID, trip.Name, trip.StartDate, trip.EndDate, trip.DatesLocked)
	if err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, start_date, end_date, created_by, auto_generated, dates_locked, merged_from, created_at
		FROM trips WHERE id=$1
	`, id)
	return scanTrip(row)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT t.id, t.name, t.start_date, t.end_date, t.created_by,
		       t.auto_generated, t.dates_locked, t.merged_from, t.created_at
		FROM trips t
		LEFT JOIN trip_collaborators tc ON tc.trip_id = t.id
		WHERE t.created_by=$1 OR tc.user_id=$1
		ORDER BY t.end_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

// AddItem links an item into a trip. Duplicate adds (the item already in
// this or any other trip) return ErrItemAlreadyAdded. Unless the trip's
// dates are locked, the range expands to include the item's date.
func (s *Service) AddItem(ctx context.Context, item TripItem) (TripItem, error) {
	if !item.Kind.Valid() {
		return TripItem{}, errors.New("item kind must be activity or spot")
	}
	if item.TripID == "" || item.ItemID == "" {
		return TripItem{}, errors.New("trip_id and item_id required")
	}

	item.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO trip_items (id, trip_id, item_kind, item_id, item_date, lat, lng, has_location, data, added_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (item_kind, item_id) DO NOTHING
		RETURNING added_at
	`, item.ID, item.TripID, item.Kind, item.ItemID, item.ItemDate,
		item.Lat, item.Lng, item.HasLocation, item.Data, item.AddedBy)
	if err := row.Scan(&item.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TripItem{}, ErrItemAlreadyAdded
		}
		return TripItem{}, err
	}

	if !item.ItemDate.IsZero() {
		if err := s.expandDates(ctx, item.TripID, item.ItemDate); err != nil {
			return TripItem{}, err
		}
	}
	return item, nil
}

// RemoveItem unlinks an item and, unless dates are locked, recomputes the
// trip range from the remaining items. A trip left without dated items
// keeps its current range.
func (s *Service) RemoveItem(ctx context.Context, tripID string, kind ItemKind, itemID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM trip_items WHERE trip_id=$1 AND item_kind=$2 AND item_id=$3
	`, tripID, kind, itemID)
	if err != nil {
		return err
	}

	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DatesLocked {
		return nil
	}

	var minDate, maxDate *time.Time
	row := s.db.QueryRow(ctx, `
		SELECT MIN(item_date), MAX(item_date) FROM trip_items WHERE trip_id=$1
	`, tripID)
	if err := row.Scan(&minDate, &maxDate); err != nil {
		return err
	}
	if minDate == nil || maxDate == nil {
		return nil
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips SET start_date=$2, end_date=$3 WHERE id=$1
	`, tripID, anchorDate(*minDate), anchorDate(*maxDate))
	return err
}

func (s *Service) Items(ctx context.Context, tripID string) ([]TripItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, item_kind, item_id, item_date, lat, lng, has_location, data, added_by, added_at
		FROM trip_items WHERE trip_id=$1
		ORDER BY added_at
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TripItem
	for rows.Next() {
		var it TripItem
		if err := rows.Scan(&it.ID, &it.TripID, &it.Kind, &it.ItemID, &it.ItemDate,
			&it.Lat, &it.Lng, &it.HasLocation, &it.Data, &it.AddedBy, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ContainingTrip returns the trip holding the given item, or nil.
func (s *Service) ContainingTrip(ctx context.Context, kind ItemKind, itemID string) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT t.id, t.name, t.start_date, t.end_date, t.created_by,
		       t.auto_generated, t.dates_locked, t.merged_from, t.created_at
		FROM trips t
		JOIN trip_items ti ON ti.trip_id = t.id
		WHERE ti.item_kind=$1 AND ti.item_id=$2
	`, kind, itemID)
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) AddCollaborator(ctx context.Context, tripID, userID, role string) (Collaborator, error) {
	if role == "" {
		role = "member"
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trip_collaborators (trip_id, user_id, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (trip_id, user_id) DO UPDATE SET role=EXCLUDED.role
		RETURNING added_at
	`, tripID, userID, role)
	collab := Collaborator{TripID: tripID, UserID: userID, Role: role}
	if err := row.Scan(&collab.AddedAt); err != nil {
		return Collaborator{}, err
	}
	return collab, nil
}

func (s *Service) Collaborators(ctx context.Context, tripID string) ([]Collaborator, error) {
	rows, err := s.db.Query(ctx, `
		SELECT trip_id, user_id, role, added_at
		FROM trip_collaborators WHERE trip_id=$1
		ORDER BY added_at
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collabs []Collaborator
	for rows.Next() {
		var cb Collaborator
		if err := rows.Scan(&cb.TripID, &cb.UserID, &cb.Role, &cb.AddedAt); err != nil {
			return nil, err
		}
		collabs = append(collabs, cb)
	}
	return collabs, rows.Err()
}

// Merge folds srcID into destID: date ranges must overlap and, when both
// trips have located items, at least one cross pair must be within 100 km.
// Items move over (global item uniqueness makes "copy missing" a move),
// provenance is recorded, and the source trip is deleted.
func (s *Service) Merge(ctx context.Context, destID, srcID string) (Trip, error) {
	dest, err := s.GetTrip(ctx, destID)
	if err != nil {
		return Trip{}, err
	}
	src, err := s.GetTrip(ctx, srcID)
	if err != nil {
		return Trip{}, err
	}
	destItems, err := s.Items(ctx, destID)
	if err != nil {
		return Trip{}, err
	}
	srcItems, err := s.Items(ctx, srcID)
	if err != nil {
		return Trip{}, err
	}

	if !Mergeable(dest, src, destItems, srcItems) {
		return Trip{}, ErrNotMergeable
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE trip_items SET trip_id=$1 WHERE trip_id=$2
	`, destID, srcID); err != nil {
		return Trip{}, err
	}

	dest.MergedFrom = append(dest.MergedFrom, srcID)
	if !dest.DatesLocked {
		if src.StartDate.Before(dest.StartDate) {
			dest.StartDate = src.StartDate
		}
		if src.EndDate.After(dest.EndDate) {
			dest.EndDate = src.EndDate
		}
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE trips SET start_date=$2, end_date=$3, merged_from=$4 WHERE id=$1
	`, destID, dest.StartDate, dest.EndDate, dest.MergedFrom); err != nil {
		return Trip{}, err
	}

	if err := s.DeleteTrip(ctx, srcID); err != nil {
		return Trip{}, err
	}
	return dest, nil
}

// Mergeable reports whether two trips qualify for merging.
func Mergeable(a, b Trip, aItems, bItems []TripItem) bool {
	if a.StartDate.After(b.EndDate) || b.StartDate.After(a.EndDate) {
		return false
	}

	aLocated := locatedItems(aItems)
	bLocated := locatedItems(bItems)
	if len(aLocated) == 0 || len(bLocated) == 0 {
		return true
	}
	for _, ai := range aLocated {
		for _, bi := range bLocated {
			if geo.WithinKm(ai.Lat, ai.Lng, bi.Lat, bi.Lng, mergeProximityKm) {
				return true
			}
		}
	}
	return false
}

func locatedItems(items []TripItem) []TripItem {
	var out []TripItem
	for _, it := range items {
		if it.HasLocation {
			out = append(out, it)
		}
	}
	return out
}

func (s *Service) expandDates(ctx context.Context, tripID string, date time.Time) error {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DatesLocked {
		return nil
	}

	anchored := anchorDate(date)
	changed := false
	if anchored.Before(trip.StartDate) {
		trip.StartDate = anchored
		changed = true
	}
	if anchored.After(trip.EndDate) {
		trip.EndDate = anchored
		changed = true
	}
	if !changed {
		return nil
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips SET start_date=$2, end_date=$3 WHERE id=$1
	`, tripID, trip.StartDate, trip.EndDate)
	return err
}

// anchorDate pins a date to noon UTC so timezone offsets cannot drift a
// trip's range across day boundaries.
func anchorDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 12, 0, 0, 0, time.UTC)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (Trip, error) {
	var t Trip
	if err := row.Scan(&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.CreatedBy,
		&t.AutoGenerated, &t.DatesLocked, &t.MergedFrom, &t.CreatedAt); err != nil {
		return Trip{}, err
	}
	return t, nil
}
