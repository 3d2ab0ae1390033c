package trip

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passthrough(c *fiber.Ctx) error { return c.Next() }

func TestTripHandlersCreateGetItems(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs(pgxmock.AnyArg(), "Summer Trip", pgxmock.AnyArg(), pgxmock.AnyArg(), "user-1",
			false, false, []string(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	mock.ExpectQuery(`SELECT id, name, start_date, end_date, created_by`).
		WithArgs("trip-1").
		WillReturnRows(tripRows().
			AddRow("trip-1", "Summer Trip", day(8), day(9), "user-1", false, false, []string(nil), createdAt))

	mock.ExpectQuery(`INSERT INTO trip_items`).
		WithArgs(pgxmock.AnyArg(), "trip-1", KindActivity, "act-1", pgxmock.AnyArg(),
			0.0, 0.0, false, pgxmock.AnyArg(), "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"added_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`SELECT id, name, start_date, end_date, created_by`).
		WithArgs("trip-1").
		WillReturnRows(tripRows().
			AddRow("trip-1", "Summer Trip", day(8), day(9), "user-1", false, true, []string(nil), createdAt))

	app := fiber.New()
	RegisterRoutes(app.Group("/trips"), NewService(mock), passthrough)

	body, _ := json.Marshal(Trip{Name: "Summer Trip", StartDate: day(8), EndDate: day(9), CreatedBy: "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/trips/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/trips/trip-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}

	itemBody, _ := json.Marshal(TripItem{Kind: KindActivity, ItemID: "act-1", ItemDate: day(9), AddedBy: "user-1"})
	req = httptest.NewRequest(http.MethodPost, "/trips/trip-1/items", bytes.NewReader(itemBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item status: %v %d", err, resp.StatusCode)
	}
}

func TestTripHandlersDuplicateItemConflict(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO trip_items`).
		WithArgs(pgxmock.AnyArg(), "trip-1", KindSpot, "spot-1", pgxmock.AnyArg(),
			0.0, 0.0, false, pgxmock.AnyArg(), "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"added_at"}))

	app := fiber.New()
	RegisterRoutes(app.Group("/trips"), NewService(mock), passthrough)

	itemBody, _ := json.Marshal(TripItem{Kind: KindSpot, ItemID: "spot-1", ItemDate: day(9), AddedBy: "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/items", bytes.NewReader(itemBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict for duplicate item, got %v %d", err, resp.StatusCode)
	}
}

func TestTripHandlersBadItemKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/trips"), NewService(mock), passthrough)

	req := httptest.NewRequest(http.MethodDelete, "/trips/trip-1/items/photo/x", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for invalid kind, got %v %d", err, resp.StatusCode)
	}
}
