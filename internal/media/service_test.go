package media

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

var errMedia = errors.New("media failure")

func TestRegister(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO media_objects`).
		WithArgs(pgxmock.AnyArg(), "museum-1", "https://media.example/room3.mp4", "clip360").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock)
	handle, err := svc.Register(context.Background(), "museum-1", "https://media.example/room3.mp4", KindClip360)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if handle == "" {
		t.Fatalf("expected handle")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO media_objects`).
		WillReturnError(errMedia)

	svc := NewService(mock)
	if _, err = svc.Register(context.Background(), "museum-1", "url", KindVoice); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolve(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT url, kind FROM media_objects`).
		WithArgs("handle-1").
		WillReturnRows(pgxmock.NewRows([]string{"url", "kind"}).
			AddRow("https://media.example/room3.mp4", "clip360"))

	svc := NewService(mock)
	url, kind, err := svc.Resolve(context.Background(), "handle-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if url != "https://media.example/room3.mp4" || kind != "clip360" {
		t.Fatalf("unexpected media %s %s", url, kind)
	}
}
