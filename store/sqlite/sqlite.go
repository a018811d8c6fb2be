/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists work entries (with the breakdown the client computed for each
  day) and the worker's settings document. The summary service reads a
  month of entries from here and folds them.

INTERFACES IMPLEMENTED:
  summary.EntryStore:    Work entry CRUD and month range queries
  summary.SettingsStore: Settings load/save

KEY TABLES:
  work_entries: One row per logged day (unique on date)
  settings:     Single-row settings document, stored partial and merged
                over the defaults on load

DATES AND MONEY:
  Dates are stored as "YYYY-MM-DD" text, so range queries compare
  lexicographically. Amounts are stored as decimal strings, never floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging): readers don't
  block the single writer.

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Versioned SQL migrations (migrations/*.sql) are embedded and applied with
  golang-migrate on New().

SEE ALSO:
  - summary/service.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/metrics"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/settings"
)

const memoryPath = ":memory:"

// Store implements the entry and settings stores using SQLite.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	settings *factory.SettingsFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == memoryPath {
		dsn = dbPath + "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == memoryPath {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, settings: factory.NewSettingsFactory()}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection (used by /healthz).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// =============================================================================
// WORK ENTRIES
// =============================================================================

const entryColumns = `id, date, site_name, notes, is_standby_day, travel_allowance,
	meal_lunch_voucher, meal_lunch_cash, meal_dinner_voucher, meal_dinner_cash,
	interventions_json, breakdown_json, created_at, updated_at`

// SaveEntry inserts or updates an entry. A missing ID is generated. Saving a
// second entry for a date that already has one fails with ErrDuplicateEntry.
func (s *Store) SaveEntry(ctx context.Context, e monthly.WorkEntry) (monthly.WorkEntry, error) {
	defer observe("save_entry")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	interventions := e.Interventions
	if interventions == nil {
		interventions = []monthly.Intervention{}
	}
	interventionsJSON, err := json.Marshal(interventions)
	if err != nil {
		return monthly.WorkEntry{}, fmt.Errorf("failed to encode interventions: %w", err)
	}

	query := `
		INSERT INTO work_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			site_name = excluded.site_name,
			notes = excluded.notes,
			is_standby_day = excluded.is_standby_day,
			travel_allowance = excluded.travel_allowance,
			meal_lunch_voucher = excluded.meal_lunch_voucher,
			meal_lunch_cash = excluded.meal_lunch_cash,
			meal_dinner_voucher = excluded.meal_dinner_voucher,
			meal_dinner_cash = excluded.meal_dinner_cash,
			interventions_json = excluded.interventions_json,
			breakdown_json = excluded.breakdown_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		e.ID,
		e.Date.String(),
		nullString(e.SiteName),
		nullString(e.Notes),
		e.IsStandbyDay,
		e.TravelAllowance,
		e.MealLunchVoucher,
		e.MealLunchCash.String(),
		e.MealDinnerVoucher,
		e.MealDinnerCash.String(),
		string(interventionsJSON),
		nullString(string(e.Breakdown)),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return monthly.WorkEntry{}, fmt.Errorf("%w: %s", generic.ErrDuplicateEntry, e.Date)
		}
		return monthly.WorkEntry{}, fmt.Errorf("failed to save entry: %w", err)
	}
	return e, nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (monthly.WorkEntry, error) {
	defer observe("get_entry")()
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM work_entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return monthly.WorkEntry{}, fmt.Errorf("%w: %s", generic.ErrEntryNotFound, id)
	}
	if err != nil {
		return monthly.WorkEntry{}, err
	}
	return e, nil
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	defer observe("delete_entry")()
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM work_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEntryNotFound, id)
	}
	return nil
}

// EntriesInRange returns the entries of a period ordered by date.
func (s *Store) EntriesInRange(ctx context.Context, p generic.Period) ([]monthly.WorkEntry, error) {
	defer observe("entries_in_range")()
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM work_entries WHERE date >= ? AND date <= ? ORDER BY date",
		p.Start.String(), p.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []monthly.WorkEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (monthly.WorkEntry, error) {
	var (
		e                          monthly.WorkEntry
		date                       string
		siteName, notes, breakdown sql.NullString
		lunchCash, dinnerCash      string
		interventionsJSON          string
		createdAt, updatedAt       string
	)
	err := row.Scan(
		&e.ID, &date, &siteName, &notes, &e.IsStandbyDay, &e.TravelAllowance,
		&e.MealLunchVoucher, &lunchCash, &e.MealDinnerVoucher, &dinnerCash,
		&interventionsJSON, &breakdown, &createdAt, &updatedAt,
	)
	if err != nil {
		return monthly.WorkEntry{}, err
	}

	if e.Date, err = generic.ParseDate(date); err != nil {
		return monthly.WorkEntry{}, err
	}
	e.SiteName = siteName.String
	e.Notes = notes.String
	e.MealLunchCash = parseDecimal(lunchCash)
	e.MealDinnerCash = parseDecimal(dinnerCash)
	if err := json.Unmarshal([]byte(interventionsJSON), &e.Interventions); err != nil {
		return monthly.WorkEntry{}, fmt.Errorf("corrupt interventions for entry %s: %w", e.ID, err)
	}
	if len(e.Interventions) == 0 {
		e.Interventions = nil
	}
	if breakdown.Valid && breakdown.String != "" {
		e.Breakdown = json.RawMessage(breakdown.String)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// LoadSettings returns the effective settings: the stored document merged
// over the defaults, or the defaults when nothing was saved.
func (s *Store) LoadSettings(ctx context.Context) (settings.Settings, error) {
	defer observe("load_settings")()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT settings_json FROM settings WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return s.settings.Defaults(), nil
	}
	if err != nil {
		return settings.Settings{}, err
	}
	return s.settings.ParseSettings(doc)
}

// SaveSettings stores the full settings document.
func (s *Store) SaveSettings(ctx context.Context, st settings.Settings) error {
	defer observe("save_settings")()
	if err := st.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(s.settings.ToJSON(st))
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, settings_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = excluded.updated_at
	`, string(doc), time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"work_entries", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
