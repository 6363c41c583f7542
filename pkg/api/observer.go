package api

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives callbacks from the flow controller for logging,
// metrics and history recording.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay the next transition.
type Observer interface {
	// OnRunStart is called once per run, before the first question is
	// presented.
	OnRunStart(ctx context.Context, info RunInfo)

	// OnQuestionPresented is called for every question shown, including
	// pure intro messages the controller advances past on its own.
	OnQuestionPresented(ctx context.Context, info RunInfo, sec Section, q Question)

	// OnAnswerAccepted is called after the pipeline stored a value.
	OnAnswerAccepted(ctx context.Context, info RunInfo, q Question, value any, response string)

	// OnAnswerRejected is called when parsing or validation rejected an
	// answer. The profile and position are unchanged.
	OnAnswerRejected(ctx context.Context, info RunInfo, q Question)

	// OnSectionCompleted is called when a section is marked completed,
	// whether by finishing its questions, by a jump, or by a skip.
	OnSectionCompleted(ctx context.Context, info RunInfo, sec Section, progress int)

	// OnJump is called when the flow is forced to another section.
	OnJump(ctx context.Context, info RunInfo, fromID, toID string)

	// OnSkip is called when the current section is skipped.
	OnSkip(ctx context.Context, info RunInfo, sec Section)

	// OnRunCompleted is called when the outro is reached.
	OnRunCompleted(ctx context.Context, info RunInfo, c Completion)

	// OnPersistenceError is called when a best-effort save or load
	// failed. The flow continues on in-memory state.
	OnPersistenceError(ctx context.Context, info RunInfo, op string, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, info RunInfo) {}
func (NoopObserver) OnQuestionPresented(ctx context.Context, info RunInfo, sec Section, q Question) {
}
func (NoopObserver) OnAnswerAccepted(ctx context.Context, info RunInfo, q Question, value any, response string) {
}
func (NoopObserver) OnAnswerRejected(ctx context.Context, info RunInfo, q Question) {}
func (NoopObserver) OnSectionCompleted(ctx context.Context, info RunInfo, sec Section, progress int) {
}
func (NoopObserver) OnJump(ctx context.Context, info RunInfo, fromID, toID string) {}
func (NoopObserver) OnSkip(ctx context.Context, info RunInfo, sec Section)          {}
func (NoopObserver) OnRunCompleted(ctx context.Context, info RunInfo, c Completion) {}
func (NoopObserver) OnPersistenceError(ctx context.Context, info RunInfo, op string, err error) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, info RunInfo) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, info)
	}
}

func (c *CompositeObserver) OnQuestionPresented(ctx context.Context, info RunInfo, sec Section, q Question) {
	for _, o := range c.observers {
		o.OnQuestionPresented(ctx, info, sec, q)
	}
}

func (c *CompositeObserver) OnAnswerAccepted(ctx context.Context, info RunInfo, q Question, value any, response string) {
	for _, o := range c.observers {
		o.OnAnswerAccepted(ctx, info, q, value, response)
	}
}

func (c *CompositeObserver) OnAnswerRejected(ctx context.Context, info RunInfo, q Question) {
	for _, o := range c.observers {
		o.OnAnswerRejected(ctx, info, q)
	}
}

func (c *CompositeObserver) OnSectionCompleted(ctx context.Context, info RunInfo, sec Section, progress int) {
	for _, o := range c.observers {
		o.OnSectionCompleted(ctx, info, sec, progress)
	}
}

func (c *CompositeObserver) OnJump(ctx context.Context, info RunInfo, fromID, toID string) {
	for _, o := range c.observers {
		o.OnJump(ctx, info, fromID, toID)
	}
}

func (c *CompositeObserver) OnSkip(ctx context.Context, info RunInfo, sec Section) {
	for _, o := range c.observers {
		o.OnSkip(ctx, info, sec)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, info RunInfo, comp Completion) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, info, comp)
	}
}

func (c *CompositeObserver) OnPersistenceError(ctx context.Context, info RunInfo, op string, err error) {
	for _, o := range c.observers {
		o.OnPersistenceError(ctx, info, op, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs flow lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is
// used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, info RunInfo) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("run_id", info.RunID),
		slog.String("user_id", info.UserID),
		slog.String("schema", info.Schema),
		slog.String("version", info.Version),
	)
}

func (o *LoggingObserver) OnQuestionPresented(ctx context.Context, info RunInfo, sec Section, q Question) {
	o.Logger.DebugContext(ctx, "question_presented",
		slog.String("run_id", info.RunID),
		slog.String("section", sec.ID),
		slog.String("question", q.ID),
		slog.String("type", string(q.Type)),
	)
}

func (o *LoggingObserver) OnAnswerAccepted(ctx context.Context, info RunInfo, q Question, value any, response string) {
	o.Logger.DebugContext(ctx, "answer_accepted",
		slog.String("run_id", info.RunID),
		slog.String("question", q.ID),
	)
}

func (o *LoggingObserver) OnAnswerRejected(ctx context.Context, info RunInfo, q Question) {
	o.Logger.DebugContext(ctx, "answer_rejected",
		slog.String("run_id", info.RunID),
		slog.String("question", q.ID),
	)
}

func (o *LoggingObserver) OnSectionCompleted(ctx context.Context, info RunInfo, sec Section, progress int) {
	o.Logger.InfoContext(ctx, "section_completed",
		slog.String("run_id", info.RunID),
		slog.String("section", sec.ID),
		slog.Int("progress", progress),
	)
}

func (o *LoggingObserver) OnJump(ctx context.Context, info RunInfo, fromID, toID string) {
	o.Logger.InfoContext(ctx, "jump",
		slog.String("run_id", info.RunID),
		slog.String("from", fromID),
		slog.String("to", toID),
	)
}

func (o *LoggingObserver) OnSkip(ctx context.Context, info RunInfo, sec Section) {
	o.Logger.InfoContext(ctx, "skip",
		slog.String("run_id", info.RunID),
		slog.String("section", sec.ID),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, info RunInfo, c Completion) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("run_id", info.RunID),
		slog.String("user_id", info.UserID),
	)
}

func (o *LoggingObserver) OnPersistenceError(ctx context.Context, info RunInfo, op string, err error) {
	o.Logger.ErrorContext(ctx, "persistence_error",
		slog.String("run_id", info.RunID),
		slog.String("op", op),
		slog.Any("error", err),
	)
}

// EventRecorder is an Observer that appends FlowEvents to an EventSink.
// Append errors are dropped; the flow never blocks on history.
type EventRecorder struct {
	Sink EventSink
	Now  func() time.Time
}

// NewEventRecorder creates an EventRecorder for the given sink.
func NewEventRecorder(sink EventSink) *EventRecorder {
	return &EventRecorder{Sink: sink, Now: time.Now}
}

func (r *EventRecorder) record(ctx context.Context, info RunInfo, t EventType, sectionID, questionID, detail string) {
	_ = r.Sink.AppendEvent(ctx, FlowEvent{
		RunID:      info.RunID,
		UserID:     info.UserID,
		At:         r.Now(),
		Type:       t,
		SectionID:  sectionID,
		QuestionID: questionID,
		Detail:     detail,
	})
}

func (r *EventRecorder) OnRunStart(ctx context.Context, info RunInfo) {
	r.record(ctx, info, EventRunStarted, "", "", info.Schema)
}

func (r *EventRecorder) OnQuestionPresented(ctx context.Context, info RunInfo, sec Section, q Question) {
	r.record(ctx, info, EventQuestionPresented, sec.ID, q.ID, string(q.Type))
}

func (r *EventRecorder) OnAnswerAccepted(ctx context.Context, info RunInfo, q Question, value any, response string) {
	r.record(ctx, info, EventAnswerAccepted, "", q.ID, "")
}

func (r *EventRecorder) OnAnswerRejected(ctx context.Context, info RunInfo, q Question) {
	r.record(ctx, info, EventAnswerRejected, "", q.ID, "")
}

func (r *EventRecorder) OnSectionCompleted(ctx context.Context, info RunInfo, sec Section, progress int) {
	r.record(ctx, info, EventSectionCompleted, sec.ID, "", "")
}

func (r *EventRecorder) OnJump(ctx context.Context, info RunInfo, fromID, toID string) {
	r.record(ctx, info, EventRunJumped, fromID, "", "to="+toID)
}

func (r *EventRecorder) OnSkip(ctx context.Context, info RunInfo, sec Section) {
	r.record(ctx, info, EventRunSkipped, sec.ID, "", "")
}

func (r *EventRecorder) OnRunCompleted(ctx context.Context, info RunInfo, c Completion) {
	r.record(ctx, info, EventRunCompleted, "", "", "")
}

func (r *EventRecorder) OnPersistenceError(ctx context.Context, info RunInfo, op string, err error) {
}
