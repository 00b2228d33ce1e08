package database

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/username/budgetfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

// DB is the process-wide database handle, set by InitDB.
var DB *sql.DB

// InitDB opens the sqlite database and verifies the connection. Startup
// aborts on failure since nothing works without storage.
func InitDB(databasePath string) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	// A single connection sidesteps sqlite writer lock contention.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		stdlog.Fatalf("failed to ping database: %v", err)
	}
	DB = db
	logger.L.Info("Database connection established", "path", databasePath)
}

// RunMigrations applies any pending migrations from the db/migrations
// directory. MIGRATIONS_DIR overrides the location for container deploys.
func RunMigrations(databasePath string) {
	if DB == nil {
		stdlog.Fatal("database must be initialized before running migrations")
	}

	driver, err := sqlite.WithInstance(DB, &sqlite.Config{})
	if err != nil {
		stdlog.Fatalf("could not create sqlite migration driver: %v", err)
	}

	sourceURL, err := migrationsSource()
	if err != nil {
		stdlog.Fatalf("could not resolve migrations directory: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, databasePath, driver)
	if err != nil {
		logger.L.Error("Migration instance creation failed", "source", sourceURL, "error", err)
		stdlog.Fatalf("migration instance creation failed: %v", err)
	}

	logger.L.Info("Applying database migrations", "source", sourceURL)
	switch err = m.Up(); {
	case err == nil:
		logger.L.Info("Database migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		logger.L.Info("No new database migrations to apply")
	default:
		stdlog.Fatalf("failed to apply migrations: %v", err)
	}
}

func migrationsSource() (string, error) {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return "file://" + filepath.ToSlash(dir), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(filepath.Join(cwd, "db", "migrations")), nil
}
