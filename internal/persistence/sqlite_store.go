package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLiteSnapshotStore is a SnapshotStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteSnapshotStore struct {
	db *sql.DB
}

var _ SnapshotStore = (*SQLiteSnapshotStore)(nil)

// NewSQLiteSnapshotStore initializes the required schema in the given
// database and returns a new SQLiteSnapshotStore.
func NewSQLiteSnapshotStore(db *sql.DB) (*SQLiteSnapshotStore, error) {
	s := &SQLiteSnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSnapshotStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			user_id TEXT PRIMARY KEY,
			schema_name TEXT NOT NULL,
			schema_version TEXT NOT NULL,
			profile BLOB,
			flow_state BLOB,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteSnapshotStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	profile, err := EncodeProfile(snap.Profile)
	if err != nil {
		return err
	}

	state, err := EncodeFlowState(snap.State)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, schema_name, schema_version, profile, flow_state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			schema_name = excluded.schema_name,
			schema_version = excluded.schema_version,
			profile = excluded.profile,
			flow_state = excluded.flow_state,
			updated_at = excluded.updated_at`,
		snap.UserID,
		snap.SchemaName,
		snap.SchemaVersion,
		profile,
		state,
		snap.UpdatedAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteSnapshotStore) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, schema_name, schema_version, profile, flow_state, updated_at
		FROM snapshots
		WHERE user_id = ?`,
		userID,
	)

	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteSnapshotStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error) {
	query := `
		SELECT user_id, schema_name, schema_version, profile, flow_state, updated_at
		FROM snapshots`
	var args []any
	var clauses []string

	if filter.SchemaName != "" {
		clauses = append(clauses, "schema_name = ?")
		args = append(args, filter.SchemaName)
	}
	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s *SQLiteSnapshotStore) DeleteSnapshot(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func scanSnapshot(scan func(dest ...any) error) (*Snapshot, error) {
	var snap Snapshot
	var profile, state []byte
	var updatedAt int64

	if err := scan(&snap.UserID, &snap.SchemaName, &snap.SchemaVersion, &profile, &state, &updatedAt); err != nil {
		return nil, err
	}

	p, err := DecodeProfile(profile)
	if err != nil {
		return nil, err
	}
	snap.Profile = p

	fs, err := DecodeFlowState(state)
	if err != nil {
		return nil, err
	}
	snap.State = fs

	snap.UpdatedAt = time.UnixMilli(updatedAt)
	return &snap, nil
}
