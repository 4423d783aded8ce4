// internal/infra/database/state_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"extension_sunset/internal/domain/sunset"
)

var ErrNilDB = errors.New("state repository has no database handle")

const createStateTable = `CREATE TABLE IF NOT EXISTS sunset_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// dialect holds the statements that differ between drivers.
type dialect struct {
	name   string
	upsert string
}

const (
	postgresUpsert = `INSERT INTO sunset_state (key, value) VALUES ($1, $2)
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	sqliteUpsert = `INSERT INTO sunset_state (key, value) VALUES (?, ?)
               ON CONFLICT (key) DO UPDATE SET value = excluded.value`
)

var (
	postgresDialect = dialect{name: "postgres", upsert: postgresUpsert}
	sqliteDialect   = dialect{name: "sqlite", upsert: sqliteUpsert}
)

// StateRepository keeps sunset progress as two rows of a key-value table.
// Values are stored verbatim so that whatever is in the table reaches the domain reset policy untouched.
type StateRepository struct {
	db      *sql.DB
	dialect dialect
}

var _ sunset.StateStore = (*StateRepository)(nil)

func NewPostgresStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db, dialect: postgresDialect}
}

func NewSQLiteStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db, dialect: sqliteDialect}
}

// EnsureSchema creates the state table if it does not exist.
func (r *StateRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return ErrNilDB
	}
	if _, err := r.db.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("error creating %s state table: %w", r.dialect.name, err)
	}
	return nil
}

// Load returns the stored index and date. Missing rows yield empty strings.
func (r *StateRepository) Load(ctx context.Context) (sunset.RawState, error) {
	if r.db == nil {
		return sunset.RawState{}, ErrNilDB
	}
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM sunset_state`)
	if err != nil {
		return sunset.RawState{}, fmt.Errorf("error querying sunset state: %w", err)
	}
	defer rows.Close()

	var raw sunset.RawState
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return sunset.RawState{}, fmt.Errorf("error scanning sunset state row: %w", err)
		}
		switch key {
		case sunset.KeyIndex:
			raw.Index = value
		case sunset.KeyDate:
			raw.Date = value
		}
	}
	if err := rows.Err(); err != nil {
		return sunset.RawState{}, fmt.Errorf("error iterating sunset state rows: %w", err)
	}
	return raw, nil
}

// Save persists p.
func (r *StateRepository) Save(ctx context.Context, p sunset.Progress) error {
	return r.SaveRaw(ctx, p.Raw())
}

// SaveRaw writes both fields in one transaction.
func (r *StateRepository) SaveRaw(ctx context.Context, raw sunset.RawState) error {
	if r.db == nil {
		return ErrNilDB
	}
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for state save: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	for _, kv := range [][2]string{
		{sunset.KeyIndex, raw.Index},
		{sunset.KeyDate, raw.Date},
	} {
		if _, err := txn.ExecContext(ctx, r.dialect.upsert, kv[0], kv[1]); err != nil {
			return fmt.Errorf("error saving sunset state key %q: %w", kv[0], err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit state save: %w", err)
	}
	return nil
}
