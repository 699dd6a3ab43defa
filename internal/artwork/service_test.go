package artwork

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-artscope/internal/geo"

	"github.com/pashagolub/pgxmock/v3"
)

var errArtwork = errors.New("artwork failure")

func artworkRows() *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "museum_id", "title", "artist_name", "description", "lat", "lng", "floor_level", "room_name", "geofence_radius_m", "is_on_display", "created_at", "updated_at"}).
		AddRow("art-1", "museum-1", "Starry Night", "van Gogh", "oil on canvas", 48.8606, 2.3376, 1, "Gallery 3", 50.0, true, now, now)
}

func TestCreateArtwork(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO artworks`).
		WithArgs(pgxmock.AnyArg(), "museum-1", "Starry Night", "van Gogh", "", 2.3376, 48.8606, 1, "Gallery 3", 50.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	svc := NewService(mock)
	a, err := svc.Create(context.Background(), Artwork{
		MuseumID:   "museum-1",
		Title:      "Starry Night",
		ArtistName: "van Gogh",
		Lat:        48.8606, Lng: 2.3376,
		FloorLevel:  1,
		RoomName:    "Gallery 3",
		IsOnDisplay: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == "" || a.GeofenceRadiusM != 50 {
		t.Fatalf("expected id and default geofence radius, got %+v", a)
	}
}

func TestCreateArtworkBadCoordinate(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Create(context.Background(), Artwork{MuseumID: "m", Title: "t", Lat: 99, Lng: 0})
	if !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGetUpdateDelete(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, museum_id, title`).
		WithArgs("art-1").
		WillReturnRows(artworkRows())
	mock.ExpectExec(`UPDATE artworks`).
		WithArgs("art-1", "Starry Night (restored)", "van Gogh", "oil on canvas", 2.3376, 48.8606, 1, "Gallery 3", 50.0, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM artworks`).
		WithArgs("art-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	svc := NewService(mock)
	a, err := svc.Update(context.Background(), "art-1", Artwork{Title: "Starry Night (restored)", IsOnDisplay: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.Title != "Starry Night (restored)" {
		t.Fatalf("patch not applied")
	}

	if err := svc.Delete(context.Background(), "art-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNearby(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`ST_DWithin`).
		WithArgs(2.3376, 48.8606, 500.0).
		WillReturnRows(artworkRows())

	svc := NewService(mock)
	artworks, err := svc.Nearby(context.Background(), 48.8606, 2.3376, 500)
	if err != nil || len(artworks) != 1 {
		t.Fatalf("nearby: %v", err)
	}
}

func TestCheckGeofenceAllowed(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, museum_id, title`).
		WithArgs("art-1").
		WillReturnRows(artworkRows())

	svc := NewService(mock)
	result, err := svc.CheckGeofence(context.Background(), "art-1", 48.8606, 2.3376)
	if err != nil {
		t.Fatalf("geofence: %v", err)
	}
	if !result.Allowed || result.DistanceM != 0 {
		t.Fatalf("expected access granted at artwork position, got %+v", result)
	}
	if result.Message != "Access granted" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestCheckGeofenceDenied(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, museum_id, title`).
		WithArgs("art-1").
		WillReturnRows(artworkRows())

	svc := NewService(mock)
	// ~1.1km north of the artwork
	result, err := svc.CheckGeofence(context.Background(), "art-1", 48.8706, 2.3376)
	if err != nil {
		t.Fatalf("geofence: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected access denied")
	}
	if !strings.Contains(result.Message, "km away") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestCheckGeofenceBadVisitorCoordinate(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.CheckGeofence(context.Background(), "art-1", 91, 0); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate")
	}
}

func TestListError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, museum_id, title`).
		WithArgs("museum-1").
		WillReturnError(errArtwork)

	svc := NewService(mock)
	if _, err := svc.List(context.Background(), "museum-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDistanceMessageBands(t *testing.T) {
	cases := []struct {
		distance float64
		want     string
	}{
		{10, "very close"},
		{80, "nearby"},
		{600, "600m away"},
		{2500, "2.5km away"},
	}
	for _, tc := range cases {
		if msg := distanceMessage(tc.distance); !strings.Contains(msg, tc.want) {
			t.Fatalf("distance %v: got %q", tc.distance, msg)
		}
	}
}
