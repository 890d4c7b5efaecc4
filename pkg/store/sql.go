package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"holdem-server/pkg/db"
	"holdem-server/pkg/holdem"
	"strings"
	"time"
)

// sqliteSchema mirrors sql/1_table_snapshots.up.sql, which only runs against postgres
var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS table_snapshots (
    table_id    TEXT PRIMARY KEY,
    status      TEXT    NOT NULL,
    hand_number INTEGER NOT NULL DEFAULT 0,
    data        TEXT    NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS table_snapshots_updated_at_idx ON table_snapshots (updated_at)`,
}

const upsertSnapshot = `
INSERT INTO table_snapshots (table_id, status, hand_number, data, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (table_id) DO UPDATE
SET status = excluded.status,
    hand_number = excluded.hand_number,
    data = excluded.data,
    updated_at = excluded.updated_at`

const selectSnapshot = `SELECT data FROM table_snapshots WHERE table_id = ?`

// SQL stores snapshots in postgres or sqlite
type SQL struct {
	db     *sql.DB
	driver string
	upsert string
	load   string
}

// NewSQL returns a store backed by dbh
// The sqlite schema is created if needed. Postgres is migrated by cmd/migrate.
func NewSQL(ctx context.Context, dbh *sql.DB, driver string) (*SQL, error) {
	switch driver {
	case db.SQLite:
		for _, stmt := range sqliteSchema {
			if _, err := dbh.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("could not create sqlite schema: %w", err)
			}
		}
	case db.Postgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	return &SQL{
		db:     dbh,
		driver: driver,
		upsert: rebind(driver, upsertSnapshot),
		load:   rebind(driver, selectSnapshot),
	}, nil
}

// SaveSnapshot implements Gateway
func (s *SQL) SaveSnapshot(ctx context.Context, snapshot *holdem.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return &PersistenceError{Op: "save", TableID: snapshot.TableID, Err: err}
	}

	if _, err := s.db.ExecContext(ctx, s.upsert,
		snapshot.TableID,
		string(snapshot.Status),
		snapshot.HandNumber,
		string(data),
		time.Now().UTC(),
	); err != nil {
		return &PersistenceError{Op: "save", TableID: snapshot.TableID, Err: err}
	}

	return nil
}

// LoadSnapshot implements Gateway
func (s *SQL) LoadSnapshot(ctx context.Context, tableID string) (*holdem.Snapshot, error) {
	var data []byte
	var row db.Scanner = s.db.QueryRowContext(ctx, s.load, tableID)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}

		return nil, &PersistenceError{Op: "load", TableID: tableID, Err: err}
	}

	var snapshot holdem.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, &PersistenceError{Op: "load", TableID: tableID, Err: err}
	}

	return &snapshot, nil
}

// rebind converts ? placeholders to $n for postgres
func rebind(driver, query string) string {
	if driver != db.Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
