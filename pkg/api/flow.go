package api

import (
	"context"
	"errors"
)

// RunState is the controller's lifecycle state.
type RunState string

const (
	// StatePresenting means a question is being shown. For pure message
	// questions the controller advances out of this state on its own.
	StatePresenting RunState = "PRESENTING"

	// StateAwaitingInput means the current question owns a field and the
	// controller is waiting for a submitted raw answer. There is no
	// timeout; this state can persist indefinitely.
	StateAwaitingInput RunState = "AWAITING_INPUT"

	// StateTransitioning means the controller is between sections.
	StateTransitioning RunState = "TRANSITIONING"

	// StateComplete means the outro was reached and the profile has been
	// handed to the completion callbacks. Terminal.
	StateComplete RunState = "COMPLETE"
)

// FlowState is the engine's current position within the schema. It is
// persisted alongside the Profile but deliberately never restored on
// load: every run begins at the first section's first question.
type FlowState struct {
	SectionIndex  int             `json:"section_index"`
	QuestionIndex int             `json:"question_index"`
	Completed     map[string]bool `json:"completed_sections"`
}

// NewFlowState returns the initial position.
func NewFlowState() FlowState {
	return FlowState{Completed: make(map[string]bool)}
}

// AnswerResult reports the outcome of one submitted answer.
type AnswerResult struct {
	// Accepted is false when parsing or validation rejected the raw
	// answer. The profile and position are untouched in that case.
	Accepted bool

	// Value is the validated, stored value (accepted answers only).
	Value any

	// Response is the schema's templated acknowledgement, "" when the
	// question declares none.
	Response string

	// Reprompt carries the generic retry message for rejected answers.
	Reprompt string
}

// Completion is handed to completion callbacks when the run reaches the
// outro. Profile is a deep copy; Canonical is the flattened remapping
// built from the schema's remap table.
type Completion struct {
	RunID     string
	UserID    string
	Profile   Profile
	Canonical map[string]any
}

// RunInfo identifies a run in observer callbacks and events.
type RunInfo struct {
	RunID   string
	UserID  string
	Schema  string
	Version string
}

// Sentinel errors shared across the engine and its backends.
var (
	// ErrSchemaNotFound is returned when a schema name/version pair is
	// not registered.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrRunComplete is returned by run operations after the outro has
	// been reached.
	ErrRunComplete = errors.New("run already complete")

	// ErrNotAwaitingInput is returned by SubmitAnswer when the current
	// question does not take input.
	ErrNotAwaitingInput = errors.New("run is not awaiting input")

	// ErrUnknownSection is returned by JumpToSection for an id outside
	// the schema's section order.
	ErrUnknownSection = errors.New("unknown section")
)

// Engine registers schemas and starts runs.
type Engine interface {
	// RegisterSchema validates and registers a schema. Registering the
	// same name/version pair twice is an error.
	RegisterSchema(s *Schema) error

	// Schema looks up a registered schema.
	Schema(name, version string) (*Schema, error)

	// StartRun creates a run of the given schema for userID, loading any
	// stored profile through the persistence boundary (best-effort) and
	// presenting the first question. The returned run is live: its
	// presenter has already been asked to show the first affordance.
	StartRun(ctx context.Context, name, version, userID string, opts ...RunOption) (Run, error)
}

// RunOptions carries per-run collaborators.
type RunOptions struct {
	Presenter Presenter
}

// RunOption customizes a single run.
type RunOption func(*RunOptions)

// WithPresenter attaches the UI collaborator the run shows questions
// through. Defaults to NoopPresenter (headless).
func WithPresenter(p Presenter) RunOption {
	return func(o *RunOptions) { o.Presenter = p }
}

// Run is one live flow: a single FlowState plus the Profile it populates.
// Runs are safe for use from a single goroutine; calls are serialized
// internally so a late answer can never interleave with a jump.
type Run interface {
	// SubmitAnswer feeds one raw answer through the input pipeline.
	// A rejected answer returns Accepted=false with a reprompt and
	// leaves the position unchanged; it is not an error.
	SubmitAnswer(ctx context.Context, raw any) (*AnswerResult, error)

	// JumpToSection forces the flow to the target section's first
	// question, marking the current section completed even when it was
	// not finished.
	JumpToSection(ctx context.Context, sectionID string) error

	// Skip behaves as if the current section were finished and follows
	// the normal advance transition.
	Skip(ctx context.Context) error

	// Progress returns floor(100 * completedGlobalIndex / totalQuestions).
	Progress() int

	// CurrentQuestion returns the question being presented or awaited,
	// ok=false once the run is complete.
	CurrentQuestion() (Question, bool)

	// CurrentSection returns the section the flow is positioned in.
	CurrentSection() (Section, bool)

	// State returns the controller state.
	State() RunState

	// FlowState returns a copy of the current position.
	FlowState() FlowState

	// Profile returns a deep-copied snapshot of the collected answers.
	Profile() Profile

	// Info identifies this run.
	Info() RunInfo

	// OnComplete registers a callback invoked when the outro is reached.
	// Registering after completion invokes the callback immediately.
	OnComplete(fn func(Completion))

	// Abandon synchronously flushes the profile and position to the
	// persistence boundary. Meant to be called when the hosting surface
	// goes away mid-flow.
	Abandon(ctx context.Context) error
}
