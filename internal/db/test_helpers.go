package db

import (
	"path/filepath"
	"testing"
	"time"
)

// openTestDB creates a migrated throwaway database under t.TempDir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// insertTestSession creates a session row and returns it.
func insertTestSession(t *testing.T, db *DB, id, personID string) *Session {
	t.Helper()

	s := &Session{
		ID:        id,
		PersonID:  personID,
		StartedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	if err := db.InsertSession(s); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	return s
}
