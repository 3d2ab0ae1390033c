package recording

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"
)

func newTestApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	app := fiber.New()
	svc := NewService(mock, nil, activity.NewService(mock))
	RegisterRoutes(app.Group("/recording"), svc, func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	return app, mock
}

func TestRecordingHandlers(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`INSERT INTO recording_sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", recorder.TypeHike, pgxmock.AnyArg(), "active").
		WillReturnRows(pgxmock.NewRows([]string{"started_at"}).AddRow(time.Now()))

	body, _ := json.Marshal(map[string]string{"activity_type": "hike"})
	req := httptest.NewRequest(http.MethodPost, "/recording/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: %v (%d)", err, resp.StatusCode)
	}
	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	fix, _ := json.Marshal(recorder.LocationFix{Lat: 47.0, Lng: -122.0, Timestamp: time.Now(), AccuracyM: 5})
	req = httptest.NewRequest(http.MethodPost, "/recording/"+sess.ID+"/fixes", bytes.NewReader(fix))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("add fix: %v (%d)", err, resp.StatusCode)
	}
	var fixResp FixResponse
	if err := json.NewDecoder(resp.Body).Decode(&fixResp); err != nil || !fixResp.Accepted {
		t.Fatalf("fix response: %+v %v", fixResp, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/recording/"+sess.ID+"/status", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v (%d)", err, resp.StatusCode)
	}
	var snapshot StatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if snapshot.State != recorder.StateTracking || snapshot.Stats.PointCount != 1 {
		t.Fatalf("snapshot: %+v", snapshot)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordingHandlersUnknownSession(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/recording/missing/pause", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("pause on unknown session: %v (%d)", err, resp.StatusCode)
	}
}

func TestRecordingHandlersBadActivityType(t *testing.T) {
	app, _ := newTestApp(t)

	body, _ := json.Marshal(map[string]string{"activity_type": "rollerblade"})
	req := httptest.NewRequest(http.MethodPost, "/recording/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid activity type: %v (%d)", err, resp.StatusCode)
	}
}
