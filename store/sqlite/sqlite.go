/*
Package sqlite provides a SQLite-backed implementation of disbursement.TariffStore.

PURPOSE:
  Persists tariff profiles so operators can add or revise a port's tariff
  without a redeploy. Calculations are never stored: every calculation is
  recomputed from its inputs and a profile read from here.

INTERFACES IMPLEMENTED:
  disbursement.TariffStore: Save, Get, List, Delete

KEY TABLES:
  tariffs: One row per profile, the profile kept as a JSON tariff document
           (factory.TariffDocument) plus a version that increments on
           every save.

VERSIONING:
  Save is an upsert. Replacing a profile bumps its version and updated_at,
  created_at is kept. Records() exposes the versions for the API.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/pda.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc, err := disbursement.NewCalculator(*profile)

SEE ALSO:
  - disbursement/store.go: Interface definition
  - disbursement/store/memory.go: In-memory implementation for testing
  - factory/tariff.go: Document format of config_json
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/factory"
)

// Store implements disbursement.TariffStore using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.TariffFactory
}

// Compile-time check that Store implements disbursement.TariffStore
var _ disbursement.TariffStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewTariffFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tariffs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		port TEXT,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tariffs_port
		ON tariffs(port);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TARIFF STORE
// =============================================================================

// Save validates a profile and upserts it, bumping the version on replace.
func (s *Store) Save(ctx context.Context, profile disbursement.TariffProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	configJSON, err := s.factory.MarshalJSON(profile)
	if err != nil {
		return fmt.Errorf("failed to encode tariff %s: %w", profile.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO tariffs (id, name, port, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			port = excluded.port,
			config_json = excluded.config_json,
			version = tariffs.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, query,
		profile.ID, profile.Name, nullString(profile.Port), string(configJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save tariff %s: %w", profile.ID, err)
	}
	return nil
}

// Get retrieves a profile by ID.
func (s *Store) Get(ctx context.Context, id string) (*disbursement.TariffProfile, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decode(rec)
}

// List returns all profiles ordered by ID.
func (s *Store) List(ctx context.Context) ([]disbursement.TariffProfile, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]disbursement.TariffProfile, 0, len(recs))
	for _, rec := range recs {
		p, err := s.decode(&rec)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// Delete removes a profile.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM tariffs WHERE id = ?", id)
	return err
}

// =============================================================================
// TARIFF RECORDS - Raw rows with version metadata
// =============================================================================

// TariffRecord is a stored tariff with its JSON document.
type TariffRecord struct {
	ID         string
	Name       string
	Port       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Record retrieves one tariff row by ID.
func (s *Store) Record(ctx context.Context, id string) (*TariffRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, port, config_json, version, created_at, updated_at FROM tariffs WHERE id = ?",
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", disbursement.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Records returns every tariff row ordered by ID.
func (s *Store) Records(ctx context.Context) ([]TariffRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, port, config_json, version, created_at, updated_at FROM tariffs ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TariffRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// Reset clears all tariffs (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM tariffs")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*TariffRecord, error) {
	var (
		rec                  TariffRecord
		port                 sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &port, &rec.ConfigJSON, &rec.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Port = port.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &rec, nil
}

func (s *Store) decode(rec *TariffRecord) (*disbursement.TariffProfile, error) {
	p, err := s.factory.ParseJSON([]byte(rec.ConfigJSON))
	if err != nil {
		return nil, fmt.Errorf("stored tariff %s is corrupt: %w", rec.ID, err)
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
