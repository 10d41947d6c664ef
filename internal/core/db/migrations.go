package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	embeddedmigrations "github.com/aiba-2502/denco-notify/migrations"
	"github.com/jmoiron/sqlx"
)

// MigrationStatus represents the state of a single migration.
type MigrationStatus struct {
	ID        string
	Checksum  string
	Applied   bool
	AppliedAt *time.Time
}

// MigrateUp runs all pending migrations against the database.
// Detects driver type, selects appropriate embedded migrations, validates
// checksums of already-applied files, and applies pending migrations in
// lexical order inside one transaction each.
func MigrateUp(db *sqlx.DB) error {
	migrationsFS, dir, err := migrationsFor(db.DriverName())
	if err != nil {
		return err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	files, err := migrationFiles(migrationsFS, dir)
	if err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, file := range files {
		content, err := migrationsFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		checksum := fmt.Sprintf("%x", sha256.Sum256(content))

		if existing, ok := applied[file]; ok {
			// Applied migration files must never change after the fact
			if existing != checksum {
				return fmt.Errorf("migration %s checksum mismatch: applied=%s current=%s", file, existing, checksum)
			}
			continue
		}

		if err := applyMigration(db, file, string(content), checksum); err != nil {
			return err
		}
	}

	return nil
}

// MigrationStatuses reports every known migration and whether it is applied.
func MigrationStatuses(db *sqlx.DB) ([]MigrationStatus, error) {
	migrationsFS, dir, err := migrationsFor(db.DriverName())
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	files, err := migrationFiles(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		content, err := migrationsFS.ReadFile(dir + "/" + file)
		if err != nil {
			return nil, err
		}
		_, ok := applied[file]
		statuses = append(statuses, MigrationStatus{
			ID:       file,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			Applied:  ok,
		})
	}
	return statuses, nil
}

// migrationsFor selects the embedded migration set for the active driver.
func migrationsFor(driver string) (embed.FS, string, error) {
	switch driver {
	case "sqlite3":
		return embeddedmigrations.SqliteMigrations, "sqlite", nil
	case "postgres":
		return embeddedmigrations.PostgresMigrations, "postgres", nil
	default:
		return embed.FS{}, "", fmt.Errorf("no migrations for driver %s", driver)
	}
}

// migrationFiles lists .sql files in lexical (application) order.
func migrationFiles(migrationsFS embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ensureMigrationsTable creates the bookkeeping table on first run.
func ensureMigrationsTable(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns migration_id -> checksum for applied migrations.
func appliedMigrations(db *sqlx.DB) (map[string]string, error) {
	rows := []struct {
		ID       string `db:"migration_id"`
		Checksum string `db:"checksum"`
	}{}
	if err := db.Select(&rows, `SELECT migration_id, checksum FROM migrations`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	applied := make(map[string]string, len(rows))
	for _, r := range rows {
		applied[r.ID] = r.Checksum
	}
	return applied, nil
}

// applyMigration executes one migration file and records it, transactionally.
func applyMigration(db *sqlx.DB, id, content, checksum string) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", id, err)
	}

	if _, err := tx.Exec(content); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration %s failed: %w", id, err)
	}

	_, err = tx.Exec(db.Rebind(`INSERT INTO migrations (migration_id, checksum, applied_at) VALUES (?, ?, ?)`),
		id, checksum, time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", id, err)
	}

	return tx.Commit()
}
