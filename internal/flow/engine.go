package flow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/petrijr/onboard/internal/persistence"
	"github.com/petrijr/onboard/pkg/api"
)

// Saver is the asynchronous save boundary. *autosave.Saver satisfies it;
// when no Saver is configured the engine saves synchronously,
// best-effort, after each accepted answer.
type Saver interface {
	Enqueue(snap *persistence.Snapshot)
	Flush(ctx context.Context) error
}

// Config describes how to construct an engine.
// Only used inside this package; external callers use the helper
// functions on the root package.
type Config struct {
	Persistence persistence.Persistence
	Observer    api.Observer
	Saver       Saver
}

type engineImpl struct {
	registry  *schemaRegistry
	snapshots persistence.SnapshotStore
	observer  api.Observer
	saver     Saver
}

var _ api.Engine = (*engineImpl)(nil)

// NewEngineWithConfig creates a new Engine using the given configuration.
// A configured event store is bridged into the observer chain so every
// run leaves an append-only history trail.
func NewEngineWithConfig(cfg Config) api.Engine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	if cfg.Persistence.Events != nil {
		obs = api.NewCompositeObserver(obs, api.NewEventRecorder(cfg.Persistence.Events))
	}
	return &engineImpl{
		registry:  newSchemaRegistry(),
		snapshots: cfg.Persistence.Snapshots,
		observer:  obs,
		saver:     cfg.Saver,
	}
}

// NewEngine returns an Engine backed by the given persistence bundle.
func NewEngine(p persistence.Persistence) api.Engine {
	return NewEngineWithConfig(Config{Persistence: p})
}

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine() api.Engine {
	mem := persistence.NewInMemoryStore()
	return NewEngine(persistence.Persistence{
		Snapshots: mem,
		Events:    mem,
	})
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the
// given Observer.
func NewInMemoryEngineWithObserver(obs api.Observer) api.Engine {
	mem := persistence.NewInMemoryStore()
	return NewEngineWithConfig(Config{
		Persistence: persistence.Persistence{Snapshots: mem, Events: mem},
		Observer:    obs,
	})
}

// NewSQLiteEngine returns an Engine that persists profile snapshots and
// flow history in a SQLite database.
func NewSQLiteEngine(db *sql.DB) (api.Engine, error) {
	return NewSQLiteEngineWithObserver(db, nil)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the
// given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, obs api.Observer) (api.Engine, error) {
	snaps, err := persistence.NewSQLiteSnapshotStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(Config{
		Persistence: persistence.Persistence{Snapshots: snaps, Events: events},
		Observer:    obs,
	}), nil
}

// NewRedisEngine returns an Engine that persists profile snapshots in
// Redis. History stays in memory.
func NewRedisEngine(client *redis.Client) api.Engine {
	return NewRedisEngineWithObserver(client, nil)
}

// NewRedisEngineWithObserver returns a Redis-backed Engine with the
// given Observer.
func NewRedisEngineWithObserver(client *redis.Client, obs api.Observer) api.Engine {
	snaps := persistence.NewRedisSnapshotStore(client, "onboard:")
	return NewEngineWithConfig(Config{
		Persistence: persistence.Persistence{
			Snapshots: snaps,
			Events:    persistence.NewInMemoryStore(),
		},
		Observer: obs,
	})
}

func (e *engineImpl) RegisterSchema(s *api.Schema) error {
	return e.registry.Register(s)
}

func (e *engineImpl) Schema(name, version string) (*api.Schema, error) {
	return e.registry.Get(name, version)
}

func (e *engineImpl) StartRun(ctx context.Context, name, version, userID string, opts ...api.RunOption) (api.Run, error) {
	schema, err := e.registry.Get(name, version)
	if err != nil {
		return nil, err
	}

	var options api.RunOptions
	for _, opt := range opts {
		opt(&options)
	}
	presenter := options.Presenter
	if presenter == nil {
		presenter = api.NoopPresenter{}
	}

	r := &runImpl{
		info: api.RunInfo{
			RunID:   "run-" + uuid.NewString(),
			UserID:  userID,
			Schema:  schema.Name,
			Version: schema.Version,
		},
		schema:    schema,
		profile:   api.NewProfile(schema),
		fs:        api.NewFlowState(),
		state:     api.StateTransitioning,
		presenter: presenter,
		observer:  e.observer,
		snapshots: e.snapshots,
		saver:     e.saver,
		now:       time.Now,
	}

	e.loadProfile(ctx, r)

	r.observer.OnRunStart(ctx, r.info)
	r.begin(ctx)
	return r, nil
}

// loadProfile merges any stored snapshot into the run's default profile.
// The stored position is deliberately not restored: every run starts at
// the first section's first question. All failures, including a schema
// version mismatch, degrade to pure defaults.
func (e *engineImpl) loadProfile(ctx context.Context, r *runImpl) {
	if e.snapshots == nil {
		return
	}

	snap, err := e.snapshots.GetSnapshot(ctx, r.info.UserID)
	if err != nil {
		if !errors.Is(err, persistence.ErrSnapshotNotFound) {
			e.observer.OnPersistenceError(ctx, r.info, "load", err)
		}
		return
	}
	if snap.SchemaName != r.schema.Name || snap.SchemaVersion != r.schema.Version {
		return
	}
	r.profile.Merge(snap.Profile)
}
