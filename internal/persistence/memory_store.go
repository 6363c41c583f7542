package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/onboard/pkg/api"
)

// InMemoryStore is a goroutine-safe SnapshotStore and EventStore backed
// by maps. Snapshots are stored as deep copies so callers can keep
// mutating their profile after a save.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	events    []api.FlowEvent
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[string]*Snapshot),
	}
}

var _ SnapshotStore = (*InMemoryStore)(nil)

var _ EventStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.UserID] = copySnapshot(snap)
	return nil
}

func (s *InMemoryStore) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[userID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return copySnapshot(snap), nil
}

func (s *InMemoryStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Snapshot
	for _, snap := range s.snapshots {
		if filter.SchemaName != "" && snap.SchemaName != filter.SchemaName {
			continue
		}
		result = append(result, copySnapshot(snap))
	}
	return result, nil
}

func (s *InMemoryStore) DeleteSnapshot(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[userID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(s.snapshots, userID)
	return nil
}

func (s *InMemoryStore) AppendEvent(ctx context.Context, ev api.FlowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	return nil
}

func (s *InMemoryStore) ListEvents(ctx context.Context, runID string) ([]api.FlowEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []api.FlowEvent
	for _, ev := range s.events {
		if ev.RunID == runID {
			result = append(result, ev)
		}
	}
	return result, nil
}

func copySnapshot(snap *Snapshot) *Snapshot {
	copied := *snap
	copied.Profile = snap.Profile.Clone()
	copied.State.Completed = make(map[string]bool, len(snap.State.Completed))
	for k, v := range snap.State.Completed {
		copied.State.Completed[k] = v
	}
	return &copied
}
