// Package database creates and upgrades the SQLite schema of the platform
// and seeds its default rows. Every operation is idempotent.
package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"slices"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"alumni-setup/internal/logger"
)

// DriverName is the database/sql driver used for the local file.
const DriverName = "sqlite"

// Options controls the seed rows.
type Options struct {
	CohortYears   []int
	AdminUsername string
	AdminPassword string
}

// Result reports what a Provision call changed.
type Result struct {
	Migrated        bool     // schueler_daten existed before the call
	ColumnsAdded    []string // consent columns added to an existing table
	CohortsInserted int
	AdminCreated    bool
}

// HashPassword returns the lowercase hex SHA-256 digest the web
// application compares logins against.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Open opens the database file at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return db, nil
}

// Provision migrates and seeds the database file at path in one
// transaction. The file is created if it does not exist yet.
//
// Either every change is committed or none is: a failing statement rolls
// the whole transaction back, so a half-migrated schema is never left
// behind. The connection is closed before Provision returns, on every path.
func Provision(ctx context.Context, path string, opts Options) (res Result, err error) {
	db, err := Open(path)
	if err != nil {
		return Result{}, err
	}
	// Close the handle on every exit path; a close error is only reported
	// if nothing else went wrong first
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Undo everything if any statement below failed
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if res, err = provision(ctx, tx, opts); err != nil {
		return Result{}, err
	}
	if err = tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit: %w", err)
	}
	return res, nil
}

// provision runs the statements of Provision inside tx, in this order:
// migrate an existing schueler_daten, create missing tables, install the
// consent date trigger if needed, then seed cohorts and the admin.
func provision(ctx context.Context, tx *sql.Tx, opts Options) (Result, error) {
	var res Result

	// Only a table left by an older install needs migrating
	exists, err := TableExists(ctx, tx, TablePersons)
	if err != nil {
		return res, err
	}
	if exists {
		res.Migrated = true
		if res.ColumnsAdded, err = migrateConsent(ctx, tx); err != nil {
			return res, err
		}
	} else {
		logger.Debug("%s does not exist yet, skipping migration", TablePersons)
	}

	// CREATE TABLE IF NOT EXISTS leaves existing tables untouched
	for _, stmt := range createStatements {
		if _, err := tx.ExecContext(ctx, stmt.ddl); err != nil {
			return res, fmt.Errorf("failed to create table %s: %w", stmt.table, err)
		}
	}

	// A migrated consent date column has no default; the trigger fills it in.
	hasDefault, err := ColumnHasDefault(ctx, tx, TablePersons, ColumnConsentDate)
	if err != nil {
		return res, err
	}
	if !hasDefault {
		if _, err := tx.ExecContext(ctx, consentDateTrigger); err != nil {
			return res, fmt.Errorf("failed to create consent date trigger: %w", err)
		}
		logger.Debug("Ensured consent date trigger on %s", TablePersons)
	}

	// Seed the cohorts; years already present are ignored
	for _, year := range opts.CohortYears {
		r, err := tx.ExecContext(ctx, insertCohort, year)
		if err != nil {
			return res, fmt.Errorf("failed to seed cohort %d: %w", year, err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.CohortsInserted++
		}
	}

	// The admin row is only inserted once, a changed password survives re-runs
	r, err := tx.ExecContext(ctx, insertAdmin, opts.AdminUsername, HashPassword(opts.AdminPassword))
	if err != nil {
		return res, fmt.Errorf("failed to seed admin %s: %w", opts.AdminUsername, err)
	}
	if n, _ := r.RowsAffected(); n > 0 {
		res.AdminCreated = true
	}
	return res, nil
}

// migrateConsent adds the consent columns missing from schueler_daten.
// Existing columns and rows are left untouched.
func migrateConsent(ctx context.Context, tx *sql.Tx) ([]string, error) {
	cols, err := Columns(ctx, tx, TablePersons)
	if err != nil {
		return nil, err
	}

	var added []string // Columns added by this call, in migration order
	for _, m := range consentMigrations {
		if slices.Contains(cols, m.column) {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
			return added, fmt.Errorf("failed to add column %s: %w", m.column, err)
		}
		logger.Debug("Added column %s.%s", TablePersons, m.column)
		added = append(added, m.column)
	}

	// Existing rows get their creation time as consent date; without an
	// erstellt_am column there is nothing to copy and the value stays NULL
	if slices.Contains(added, ColumnConsentDate) && slices.Contains(cols, columnCreatedAt) {
		if _, err := tx.ExecContext(ctx, backfillConsentDate); err != nil {
			return added, fmt.Errorf("failed to backfill %s: %w", ColumnConsentDate, err)
		}
	}
	return added, nil
}

// Setup is the installer step: it provisions the database and reports
// the outcome on the console. Errors are logged, never returned.
func Setup(ctx context.Context, path string, opts Options) bool {
	logger.Info("Initializing database...")

	res, err := Provision(ctx, path, opts)
	if err != nil {
		logger.Error("Database initialization failed: %v", err)
		return false
	}

	// Report what changed, the console is the only record of the run
	if len(res.ColumnsAdded) > 0 {
		logger.Success("Added columns to %s: %v", TablePersons, res.ColumnsAdded)
	}
	logger.Success("Database initialized: %s", path)
	if len(opts.CohortYears) > 0 {
		logger.Success("Default cohorts (%d-%d) present, %d added",
			opts.CohortYears[0], opts.CohortYears[len(opts.CohortYears)-1], res.CohortsInserted)
	}
	if res.AdminCreated {
		logger.Success("Admin user created: %s/%s", opts.AdminUsername, opts.AdminPassword)
	} else {
		logger.Info("Admin user %s already exists, left unchanged", opts.AdminUsername)
	}
	return true
}
