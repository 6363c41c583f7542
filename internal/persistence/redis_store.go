package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore is a SnapshotStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>snap:<userID>        => JSON-encoded Snapshot
//	<prefix>idx:all              => SET of all user IDs
//	<prefix>idx:schema:<name>    => SET of user IDs per schema
//
// The indexes are best-effort; they are always updated on save and
// ListSnapshots uses set membership for filtering.
type RedisSnapshotStore struct {
	client *redis.Client
	prefix string
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)

// NewRedisSnapshotStore creates a RedisSnapshotStore.
// prefix is optional but recommended (e.g. "onboard:").
func NewRedisSnapshotStore(client *redis.Client, prefix string) *RedisSnapshotStore {
	if prefix == "" {
		prefix = "onboard:"
	}
	return &RedisSnapshotStore{client: client, prefix: prefix}
}

func (s *RedisSnapshotStore) keySnapshot(userID string) string {
	return s.prefix + "snap:" + userID
}

func (s *RedisSnapshotStore) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisSnapshotStore) keySchema(name string) string {
	return s.prefix + "idx:schema:" + name
}

func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keySnapshot(snap.UserID), payload, 0)
	pipe.SAdd(ctx, s.keyAll(), snap.UserID)
	pipe.SAdd(ctx, s.keySchema(snap.SchemaName), snap.UserID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSnapshotStore) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	payload, err := s.client.Get(ctx, s.keySnapshot(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	if snap.State.Completed == nil {
		snap.State.Completed = make(map[string]bool)
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error) {
	key := s.keyAll()
	if filter.SchemaName != "" {
		key = s.keySchema(filter.SchemaName)
	}

	userIDs, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var snapshots []*Snapshot
	for _, userID := range userIDs {
		snap, err := s.GetSnapshot(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSnapshotNotFound) {
				// Index entry outlived the snapshot; skip it.
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (s *RedisSnapshotStore) DeleteSnapshot(ctx context.Context, userID string) error {
	snap, err := s.GetSnapshot(ctx, userID)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keySnapshot(userID))
	pipe.SRem(ctx, s.keyAll(), userID)
	pipe.SRem(ctx, s.keySchema(snap.SchemaName), userID)
	_, err = pipe.Exec(ctx)
	return err
}
