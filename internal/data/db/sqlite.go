package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// NewSQLite opens a single-connection SQLite database. Used for local runs
// and tests; path ":memory:" gives a private in-memory database.
func NewSQLite(logg *logger.Logger, path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(withForeignKeys(path)), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// the job loops and request handlers.
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.Info("Opened SQLite database", "path", path)
	}
	return db, nil
}

// withForeignKeys turns on FK enforcement for every connection; SQLite
// ships with it off.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

// Open selects the backing store from DB_DRIVER ("postgres" or "sqlite").
func Open(logg *logger.Logger, driver, sqlitePath string) (*gorm.DB, error) {
	switch driver {
	case "", "postgres":
		pg, err := NewPostgresService(logg)
		if err != nil {
			return nil, err
		}
		return pg.DB(), nil
	case "sqlite":
		return NewSQLite(logg, sqlitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
