package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/onboard/pkg/api"
)

// SQLiteEventStore is an append-only EventStore backed by SQLite.
// It can share an *sql.DB with SQLiteSnapshotStore.
type SQLiteEventStore struct {
	db *sql.DB
}

var _ EventStore = (*SQLiteEventStore)(nil)

// NewSQLiteEventStore initializes the events table and returns a store.
func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS flow_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			section_id TEXT,
			question_id TEXT,
			detail TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_flow_events_run ON flow_events(run_id, id);`,
	)
	return err
}

func (s *SQLiteEventStore) AppendEvent(ctx context.Context, ev api.FlowEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flow_events (run_id, user_id, at, type, section_id, question_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		ev.UserID,
		ev.At.UnixMilli(),
		string(ev.Type),
		ev.SectionID,
		ev.QuestionID,
		ev.Detail,
	)
	return err
}

func (s *SQLiteEventStore) ListEvents(ctx context.Context, runID string) ([]api.FlowEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, user_id, at, type, section_id, question_id, detail
		FROM flow_events
		WHERE run_id = ?
		ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []api.FlowEvent
	for rows.Next() {
		var ev api.FlowEvent
		var at int64
		var evType string
		if err := rows.Scan(&ev.RunID, &ev.UserID, &at, &evType, &ev.SectionID, &ev.QuestionID, &ev.Detail); err != nil {
			return nil, err
		}
		ev.At = time.UnixMilli(at)
		ev.Type = api.EventType(evType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
