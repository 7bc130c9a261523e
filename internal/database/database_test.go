package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
)

// These tests cover the pure helpers; the queries themselves need a live
// PostgreSQL and are exercised through the store contract in integration.

func TestPrefixPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"MATH", "math%"},
		{"cs_1", `cs\_1%`},
		{"100%", `100\%%`},
		{`a\b`, `a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := prefixPattern(tt.term); got != tt.want {
				t.Errorf("prefixPattern(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}

func TestValidID(t *testing.T) {
	if !validID("3f1c9a52-7e0b-4a55-9a8e-1f2d3c4b5a69") {
		t.Error("valid UUID rejected")
	}
	for _, bad := range []string{"", "42", "not-a-uuid"} {
		if validID(bad) {
			t.Errorf("validID(%q) = true", bad)
		}
	}
}

func TestNotFoundMapping(t *testing.T) {
	if err := notFound("paper", sql.ErrNoRows); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ErrNoRows should map to ErrNotFound, got %v", err)
	}
	err := notFound("paper", fmt.Errorf("connection reset"))
	if errors.Is(err, apperrors.ErrNotFound) {
		t.Error("driver errors must not look like not-found")
	}
}

type fakeResult struct{ rows int64 }

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, nil }

func TestExpectOneRow(t *testing.T) {
	if err := expectOneRow(fakeResult{rows: 1}, "paper"); err != nil {
		t.Errorf("one row: %v", err)
	}
	if err := expectOneRow(fakeResult{rows: 0}, "paper"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("zero rows: %v, want ErrNotFound", err)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for version := range ups {
		if !downs[version] {
			t.Errorf("%s has no down migration", version)
		}
	}
}
