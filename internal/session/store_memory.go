package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCheckpointStore is an in-process CheckpointStore used by tests and
// single-node development runs.
type MemoryCheckpointStore struct {
	mu        sync.Mutex
	snaps     map[string]*Snapshot
	clearedAt map[string]time.Time
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		snaps:     make(map[string]*Snapshot),
		clearedAt: make(map[string]time.Time),
	}
}

func (m *MemoryCheckpointStore) key(userID int, testID int64) string {
	return fmt.Sprintf("%d:%d", userID, testID)
}

// Save stores an encoded copy of the snapshot. Writes resolve by SavedAt:
// a snapshot older than the stored one, or not newer than the tombstone
// left by Clear, is dropped.
func (m *MemoryCheckpointStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	decoded, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.key(snap.UserID, snap.TestID)
	if cleared, ok := m.clearedAt[key]; ok {
		if !decoded.SavedAt.After(cleared) {
			return nil
		}
		delete(m.clearedAt, key)
	}
	if existing, ok := m.snaps[key]; ok && decoded.SavedAt.Before(existing.SavedAt) {
		return nil
	}
	m.snaps[key] = decoded
	return nil
}

// Load returns the stored snapshot, or nil when none exists.
func (m *MemoryCheckpointStore) Load(ctx context.Context, userID int, testID int64) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snaps[m.key(userID, testID)], nil
}

// Clear tombstones the stored snapshot at the current time.
func (m *MemoryCheckpointStore) Clear(ctx context.Context, userID int, testID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(userID, testID)
	delete(m.snaps, key)
	m.clearedAt[key] = time.Now()
	return nil
}
