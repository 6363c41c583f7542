package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/petrijr/onboard/pkg/api"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for a user.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Snapshot is the unit the persistence boundary stores: the profile
// collected so far plus the position it was collected at, keyed by user.
//
// Position is saved for audit and debugging but deliberately not
// restored on load; every run begins at the first section's first
// question regardless of prior progress.
type Snapshot struct {
	UserID        string        `json:"user_id"`
	SchemaName    string        `json:"schema_name"`
	SchemaVersion string        `json:"schema_version"`
	Profile       api.Profile   `json:"profile"`
	State         api.FlowState `json:"flow_state"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SnapshotFilter selects snapshots from a store. Empty fields mean
// "no filter".
type SnapshotFilter struct {
	SchemaName string
}

// SnapshotStore is the load/save contract of the persistence boundary.
// All engine calls into it are best-effort: a failing store degrades the
// flow to in-memory state, it never aborts it.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error)
	DeleteSnapshot(ctx context.Context, userID string) error
}

// EventStore is an append-only history store for flow events.
type EventStore interface {
	AppendEvent(ctx context.Context, ev api.FlowEvent) error
	ListEvents(ctx context.Context, runID string) ([]api.FlowEvent, error)
}

// NoopEventStore discards all events.
type NoopEventStore struct{}

func (NoopEventStore) AppendEvent(ctx context.Context, ev api.FlowEvent) error { return nil }
func (NoopEventStore) ListEvents(ctx context.Context, runID string) ([]api.FlowEvent, error) {
	return nil, nil
}

// Persistence bundles the store interfaces so the engine can depend on
// a single abstraction.
type Persistence struct {
	Snapshots SnapshotStore
	Events    EventStore
}
