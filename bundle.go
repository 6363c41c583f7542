package onboard

import (
	"context"
	"database/sql"

	"github.com/petrijr/onboard/internal/flow"
	"github.com/petrijr/onboard/internal/persistence"
	"github.com/petrijr/onboard/pkg/api"
	"github.com/petrijr/onboard/pkg/autosave"
)

// SaverBundle wires together an Engine and a background Saver sharing
// the same store, so accepted answers never block on disk.
//
// For now, we only provide a SQLite-backed bundle.
type SaverBundle struct {
	Engine Engine
	Saver  *autosave.Saver

	// events is kept unexported for now; it is primarily useful for
	// internal inspection and tests. The public API focuses on Engine
	// and Saver.
	events persistence.EventStore
}

// NewSQLiteBundle constructs a durable Engine + Saver combo sharing the
// same SQLite database. Profile snapshots and flow history are persisted
// in the provided *sql.DB; snapshot writes go through the Saver's
// background queue.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:onboard.db?_journal=WAL")
//	bundle, err := onboard.NewSQLiteBundle(db, autosave.Config{
//	    Retry: onboard.Retry(3).WithBackoff(100 * time.Millisecond).Policy(),
//	})
//	// register schemas on bundle.Engine
//	// bundle.Saver.Start(ctx) before starting runs
func NewSQLiteBundle(db *sql.DB, cfg autosave.Config) (*SaverBundle, error) {
	snaps, err := persistence.NewSQLiteSnapshotStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return nil, err
	}

	saver := autosave.New(snaps, cfg)
	eng := flow.NewEngineWithConfig(flow.Config{
		Persistence: persistence.Persistence{Snapshots: snaps, Events: events},
		Saver:       saver,
	})

	return &SaverBundle{
		Engine: eng,
		Saver:  saver,
		events: events,
	}, nil
}

// History returns the recorded flow events for a run, in append order.
func (b *SaverBundle) History(ctx context.Context, runID string) ([]api.FlowEvent, error) {
	return b.events.ListEvents(ctx, runID)
}
