// Package store persists table snapshots
package store

import (
	"context"
	"errors"
	"fmt"
	"holdem-server/pkg/holdem"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a table
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Gateway saves and loads table snapshots
type Gateway interface {
	SaveSnapshot(ctx context.Context, snapshot *holdem.Snapshot) error
	// LoadSnapshot returns ErrSnapshotNotFound if the table was never saved
	LoadSnapshot(ctx context.Context, tableID string) (*holdem.Snapshot, error)
}

// PersistenceError is returned when the snapshot store is unreachable or rejects a write
type PersistenceError struct {
	Op      string
	TableID string
	Err     error
}

func (p *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s snapshot for table %s: %v", p.Op, p.TableID, p.Err)
}

// Unwrap returns the underlying error
func (p *PersistenceError) Unwrap() error {
	return p.Err
}

// IsPersistenceError returns true if err is or wraps a PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
