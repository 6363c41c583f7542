package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/petrijr/onboard/pkg/api"
)

func newTestSQLiteStore(t *testing.T) *SQLiteSnapshotStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := NewSQLiteSnapshotStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteSnapshotStore failed: %v", err)
	}
	return store
}

func TestSQLiteSnapshotStore_SaveGetUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	snap := sampleSnapshot("user-1")
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := store.GetSnapshot(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.SchemaName != "wellness" || got.SchemaVersion != "v1" {
		t.Fatalf("unexpected schema fields: %+v", got)
	}
	if got.Profile.GetString(api.Field("life", "name")) != "Ada" {
		t.Fatalf("unexpected profile: %+v", got.Profile)
	}
	if !got.State.Completed["life"] {
		t.Fatalf("unexpected state: %+v", got.State)
	}

	// A second save for the same user overwrites in place.
	snap.Profile.Set(api.Field("life", "name"), "Grace")
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	got, err = store.GetSnapshot(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSnapshot after upsert failed: %v", err)
	}
	if got.Profile.GetString(api.Field("life", "name")) != "Grace" {
		t.Fatalf("upsert did not overwrite: %+v", got.Profile)
	}
}

func TestSQLiteSnapshotStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, err := store.GetSnapshot(ctx, "ghost"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("missing snapshot error = %v, want ErrSnapshotNotFound", err)
	}
	if err := store.DeleteSnapshot(ctx, "ghost"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("missing delete error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSQLiteSnapshotStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	a := sampleSnapshot("user-a")
	b := sampleSnapshot("user-b")
	b.SchemaName = "other"
	for _, snap := range []*Snapshot{a, b} {
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}

	filtered, err := store.ListSnapshots(ctx, SnapshotFilter{SchemaName: "wellness"})
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].UserID != "user-a" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	if err := store.DeleteSnapshot(ctx, "user-a"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if _, err := store.GetSnapshot(ctx, "user-a"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("deleted snapshot still readable: %v", err)
	}
}
