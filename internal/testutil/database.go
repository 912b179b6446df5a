package testutil

import (
	"testing"

	"ft-go/internal/database"
	"ft-go/internal/database/migrations"
)

// NewTestDatabase returns an in-memory record store with the schema
// applied, closed automatically when the test finishes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := migrations.MigrateUp(db.DB()); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
