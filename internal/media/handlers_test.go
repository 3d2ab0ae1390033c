package media

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
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/spot"
)

func newMediaApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	app := fiber.New()
	RegisterRoutes(app.Group("/media"), NewService(mock, "https://media.example"),
		activity.NewService(mock), spot.NewService(mock),
		func(c *fiber.Ctx) error {
			c.Locals("user_id", "user-1")
			return c.Next()
		})
	return app, mock
}

func TestMediaRegisterHandler(t *testing.T) {
	app, mock := newMediaApp(t)

	mock.ExpectQuery(`INSERT INTO media_objects`).
		WithArgs(pgxmock.AnyArg(), "user-1", "file:///p.jpg", pgxmock.AnyArg(), "photo").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body, _ := json.Marshal(map[string]string{"local_ref": "file:///p.jpg", "kind": "photo"})
	req := httptest.NewRequest(http.MethodPost, "/media/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %v (%d)", err, resp.StatusCode)
	}
}

func TestMediaAttachToActivity(t *testing.T) {
	app, mock := newMediaApp(t)

	mock.ExpectExec(`UPDATE activities SET photo_urls`).
		WithArgs("act-1", []string{"https://media.example/media/obj-1"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body, _ := json.Marshal(map[string]any{
		"target_kind": "activity",
		"target_id":   "act-1",
		"urls":        []string{"https://media.example/media/obj-1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/media/attach", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("attach status: %v (%d)", err, resp.StatusCode)
	}
}

func TestMediaAttachFailureIsNonFatal(t *testing.T) {
	app, mock := newMediaApp(t)

	mock.ExpectExec(`UPDATE saved_spots SET photo_urls`).
		WithArgs("spot-1", []string{"u"}).
		WillReturnError(errSave)

	body, _ := json.Marshal(map[string]any{
		"target_kind": "spot",
		"target_id":   "spot-1",
		"urls":        []string{"u"},
	})
	req := httptest.NewRequest(http.MethodPost, "/media/attach", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("attach failure status: %v (%d)", err, resp.StatusCode)
	}
}

func TestMediaAttachBadTarget(t *testing.T) {
	app, _ := newMediaApp(t)

	body, _ := json.Marshal(map[string]any{"target_kind": "trip", "target_id": "t", "urls": []string{"u"}})
	req := httptest.NewRequest(http.MethodPost, "/media/attach", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad target status: %v (%d)", err, resp.StatusCode)
	}
}
