package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func TestOpen(t *testing.T) {
	t.Run("sqlite absolute path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		conn, err := Open("sqlite://" + path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		conn.Close()
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		if _, err := Open("mysql://localhost/db"); err == nil {
			t.Error("expected error for unsupported scheme")
		}
	})

	t.Run("unparseable url", func(t *testing.T) {
		if _, err := Open("://nope"); err == nil {
			t.Error("expected error for unparseable URL")
		}
	})
}

func memoryDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrateUp(t *testing.T) {
	conn := memoryDB(t)

	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	// Idempotent: a second run applies nothing and fails nothing.
	if err := MigrateUp(conn); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}

	statuses, err := MigrateStatus(conn)
	if err != nil {
		t.Fatalf("MigrateStatus failed: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("MigrateStatus returned no migrations")
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("migration %s not applied", s.ID)
		}
		if s.Checksum == "" {
			t.Errorf("migration %s has empty checksum", s.ID)
		}
	}

	// The schema is actually present.
	var n int
	if err := conn.Get(&n, "SELECT COUNT(*) FROM tickets"); err != nil {
		t.Fatalf("tickets table missing after migration: %v", err)
	}
}

func TestQueries(t *testing.T) {
	conn := memoryDB(t)
	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	q, err := LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries failed: %v", err)
	}

	ctx := context.Background()

	t.Run("unknown query name", func(t *testing.T) {
		var dest []struct{}
		if err := q.Select(ctx, "no-such-query", &dest); err == nil {
			t.Error("expected error for unknown query name")
		}
	})

	t.Run("select in with empty batch", func(t *testing.T) {
		var dest []struct {
			RecordID int64 `db:"record_id"`
			TagID    int64 `db:"tag_id"`
		}
		if err := q.SelectIn(ctx, "ticket-taggings-by-tickets", &dest, nil); err != nil {
			t.Fatalf("SelectIn with empty ids failed: %v", err)
		}
		if len(dest) != 0 {
			t.Errorf("SelectIn with empty ids returned %d rows", len(dest))
		}
	})
}
