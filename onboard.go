package onboard

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/onboard/internal/flow"
	"github.com/petrijr/onboard/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine       = api.Engine
	Run          = api.Run
	RunOption    = api.RunOption
	RunInfo      = api.RunInfo
	Schema       = api.Schema
	Section      = api.Section
	Question     = api.Question
	QuestionType = api.QuestionType
	Option       = api.Option
	SliderRange  = api.SliderRange
	FieldRef     = api.FieldRef
	FieldMapping = api.FieldMapping
	Derivation   = api.Derivation
	Profile      = api.Profile
	FlowState    = api.FlowState
	RunState     = api.RunState
	AnswerResult = api.AnswerResult
	Completion   = api.Completion
	Presenter    = api.Presenter

	ParseFunc    = api.ParseFunc
	ValidateFunc = api.ValidateFunc
	RespondFunc  = api.RespondFunc
	ComputeFunc  = api.ComputeFunc

	Observer          = api.Observer
	LoggingObserver   = api.LoggingObserver
	CompositeObserver = api.CompositeObserver
	NoopObserver      = api.NoopObserver
	EventRecorder     = api.EventRecorder
	FlowEvent         = api.FlowEvent

	MatchTable = api.MatchTable
	MatchRule  = api.MatchRule

	RetryPolicy = api.RetryPolicy
)

// Re-export common helpers.

var (
	Field                = api.Field
	ParseFieldRef        = api.ParseFieldRef
	WithPresenter        = api.WithPresenter
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	NewEventRecorder     = api.NewEventRecorder
	MatchContains        = api.MatchContains

	ParseDate         = api.ParseDate
	Age               = api.Age
	ParseLocation     = api.ParseLocation
	ParseWeight       = api.ParseWeight
	ParseScaledNumber = api.ParseScaledNumber
	NonEmptyString    = api.NonEmptyString
)

// Re-export run state values for convenience.

const (
	StatePresenting    = api.StatePresenting
	StateAwaitingInput = api.StateAwaitingInput
	StateTransitioning = api.StateTransitioning
	StateComplete      = api.StateComplete
)

// Re-export question type values.

const (
	QuestionIntro       = api.QuestionIntro
	QuestionText        = api.QuestionText
	QuestionChoice      = api.QuestionChoice
	QuestionMultiselect = api.QuestionMultiselect
	QuestionSlider      = api.QuestionSlider
	QuestionOutro       = api.QuestionOutro
)

// Re-export sentinel errors.

var (
	ErrSchemaNotFound   = api.ErrSchemaNotFound
	ErrRunComplete      = api.ErrRunComplete
	ErrNotAwaitingInput = api.ErrNotAwaitingInput
	ErrUnknownSection   = api.ErrUnknownSection
)

// Engine constructors
// These wrap the internal/flow package so external callers never need
// to import internal packages.

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine() Engine {
	return flow.NewInMemoryEngine()
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(obs Observer) Engine {
	return flow.NewInMemoryEngineWithObserver(obs)
}

// NewSQLiteEngine returns an Engine that persists profile snapshots and
// flow history in a SQLite database. Schemas are kept in-memory.
func NewSQLiteEngine(db *sql.DB) (Engine, error) {
	return flow.NewSQLiteEngine(db)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, obs Observer) (Engine, error) {
	return flow.NewSQLiteEngineWithObserver(db, obs)
}

// NewRedisEngine returns an Engine that persists profile snapshots in Redis.
func NewRedisEngine(client *redis.Client) Engine {
	return flow.NewRedisEngine(client)
}

// NewRedisEngineWithObserver returns a Redis-backed Engine with the given Observer.
func NewRedisEngineWithObserver(client *redis.Client, obs Observer) Engine {
	return flow.NewRedisEngineWithObserver(client, obs)
}

// Convenience helpers that just forward to the underlying Engine.

// StartRun starts a run of a registered schema for the given user.
func StartRun(ctx context.Context, eng Engine, name, version, userID string, opts ...RunOption) (Run, error) {
	return eng.StartRun(ctx, name, version, userID, opts...)
}
