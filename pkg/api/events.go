package api

import (
	"context"
	"time"
)

// EventType identifies a flow history event.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunJumped    EventType = "run.jumped"
	EventRunSkipped   EventType = "run.skipped"
	EventRunCompleted EventType = "run.completed"

	EventQuestionPresented EventType = "question.presented"
	EventAnswerAccepted    EventType = "answer.accepted"
	EventAnswerRejected    EventType = "answer.rejected"

	EventSectionCompleted EventType = "section.completed"
)

// FlowEvent is a minimal append-only history record for audit and
// debugging. Keep Detail low-volume: never dump answer payloads here.
type FlowEvent struct {
	RunID  string
	UserID string
	At     time.Time
	Type   EventType

	// Optional position context.
	SectionID  string
	QuestionID string

	// Small, human-oriented details (e.g. target section of a jump).
	Detail string
}

// EventSink accepts history events. The sqlite event store implements
// it; EventRecorder bridges observer callbacks into one.
type EventSink interface {
	AppendEvent(ctx context.Context, ev FlowEvent) error
}
