package analytics

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

func newAnalyticsApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := newAnalyticsMock(t)
	svc := NewService(mock, nil, 0)
	app := fiber.New()
	RegisterRoutes(app.Group("/analytics"), svc, passthrough)
	return app, mock
}

func TestInteractionHandler(t *testing.T) {
	app, mock := newAnalyticsApp(t)
	mock.ExpectQuery(`INSERT INTO artwork_interactions`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body, _ := json.Marshal(Interaction{MuseumID: "museum-1", ArtworkID: "art-1", Kind: KindNavigate})
	req := httptest.NewRequest(http.MethodPost, "/analytics/interactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestInteractionHandlerMissingFields(t *testing.T) {
	app, _ := newAnalyticsApp(t)

	body, _ := json.Marshal(Interaction{MuseumID: "museum-1"})
	req := httptest.NewRequest(http.MethodPost, "/analytics/interactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMuseumAnalyticsHandler(t *testing.T) {
	app, mock := newAnalyticsApp(t)
	expectAggregates(mock, 10, 7, 2)

	req := httptest.NewRequest(http.MethodGet, "/analytics/museums/museum-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out MuseumAnalytics
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalSessions != 10 {
		t.Fatalf("unexpected payload %+v", out)
	}
}
