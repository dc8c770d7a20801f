package database

import (
	"path/filepath"
	"testing"
)

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn      string
		expected bool
	}{
		{dsn: "postgres://user:pw@localhost:5432/shop", expected: true},
		{dsn: "postgresql://localhost/shop", expected: true},
		{dsn: "host=localhost user=shop dbname=shop sslmode=disable", expected: true},
		{dsn: "storefront.db", expected: false},
		{dsn: "file::memory:?cache=shared", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			if got := IsPostgres(tt.dsn); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "shop.db"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Errorf("expected usable connection, got %v", err)
	}
	if err := Close(db); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if err := Close(nil); err != nil {
		t.Errorf("closing nil db should be a no-op, got %v", err)
	}
}
