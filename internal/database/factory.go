package database

import (
	"fmt"
	"os"
	"path/filepath"

	"ft-go/internal/config"
	"ft-go/internal/database/migrations"
	"ft-go/internal/ft"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. File-backed databases are migrated to the
// latest schema on open.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (ft.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "ft.db")
		db, err := NewSQLiteDatabase(dbPath)
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(db.DB()); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		// An in-memory database is always fresh, so apply the schema here.
		if err := migrations.MigrateUp(db.DB()); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
