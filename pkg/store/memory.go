package store

import (
	"context"
	"encoding/json"
	"holdem-server/pkg/holdem"
	"sync"
)

// Memory keeps encoded snapshots in a map
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	saves     int
	err       error
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string][]byte),
	}
}

// SetUnavailable makes every call fail with err until it is called with nil
func (m *Memory) SetUnavailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// Saves returns how many snapshots were written
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}

// SaveSnapshot implements Gateway
func (m *Memory) SaveSnapshot(ctx context.Context, snapshot *holdem.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return &PersistenceError{Op: "save", TableID: snapshot.TableID, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &PersistenceError{Op: "save", TableID: snapshot.TableID, Err: m.err}
	}

	m.snapshots[snapshot.TableID] = data
	m.saves++
	return nil
}

// LoadSnapshot implements Gateway
func (m *Memory) LoadSnapshot(ctx context.Context, tableID string) (*holdem.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, &PersistenceError{Op: "load", TableID: tableID, Err: m.err}
	}

	data, ok := m.snapshots[tableID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	var snapshot holdem.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, &PersistenceError{Op: "load", TableID: tableID, Err: err}
	}

	return &snapshot, nil
}
