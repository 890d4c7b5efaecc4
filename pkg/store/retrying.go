package store

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"holdem-server/pkg/holdem"
	"time"
)

// Retrying retries failed calls to another gateway with a linear backoff
type Retrying struct {
	next     Gateway
	attempts int
	backoff  time.Duration
	log      logrus.FieldLogger
}

// NewRetrying wraps next so each call is tried up to attempts times
func NewRetrying(next Gateway, attempts int, backoff time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}

	return &Retrying{
		next:     next,
		attempts: attempts,
		backoff:  backoff,
		log:      logrus.WithField("type", "persistence"),
	}
}

// SaveSnapshot implements Gateway
func (r *Retrying) SaveSnapshot(ctx context.Context, snapshot *holdem.Snapshot) error {
	return r.retry(ctx, "save", snapshot.TableID, func() error {
		return r.next.SaveSnapshot(ctx, snapshot)
	})
}

// LoadSnapshot implements Gateway
func (r *Retrying) LoadSnapshot(ctx context.Context, tableID string) (*holdem.Snapshot, error) {
	var snapshot *holdem.Snapshot
	err := r.retry(ctx, "load", tableID, func() error {
		var err error
		snapshot, err = r.next.LoadSnapshot(ctx, tableID)
		return err
	})

	return snapshot, err
}

func (r *Retrying) retry(ctx context.Context, op, tableID string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(); err == nil || errors.Is(err, ErrSnapshotNotFound) {
			return err
		}

		r.log.WithError(err).WithFields(logrus.Fields{
			"op":      op,
			"tableId": tableID,
			"attempt": attempt,
		}).Warn("snapshot store call failed")

		if attempt == r.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return &PersistenceError{Op: op, TableID: tableID, Err: ctx.Err()}
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}

	if IsPersistenceError(err) {
		return err
	}

	return &PersistenceError{Op: op, TableID: tableID, Err: err}
}
