package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches pq unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert league roster: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "40P01"}) {
			t.Fatalf("expected false for deadlock error")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(fakeErr("pq: duplicate key value violates unique constraint")) {
			t.Fatalf("expected false for non-pq error")
		}
	})
}

func TestNullableString(t *testing.T) {
	if got := nullableString(""); got.Valid {
		t.Fatalf("expected empty string to be null")
	}
	if got := stringFromNull(nullableString("7")); got != "7" {
		t.Fatalf("expected round trip, got %q", got)
	}
}

func TestChunkBounds(t *testing.T) {
	got := chunkBounds(5, 2)
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}}
	if len(got) != len(want) {
		t.Fatalf("unexpected bounds: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bounds %d: got %v want %v", i, got[i], want[i])
		}
	}
	if len(chunkBounds(0, 2)) != 0 {
		t.Fatalf("expected no chunks for empty input")
	}
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

var errFakeDB = errors.New("connection reset by peer")
