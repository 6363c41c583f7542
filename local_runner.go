package onboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/petrijr/onboard/pkg/api"
)

// LocalRunner bundles an in-memory Engine with a scripted answer driver
// to provide a simple "local runner" for development and debugging.
//
// Typical usage:
//
//	runner := onboard.NewLocalRunner()
//	if err := runner.Engine.RegisterSchema(sch); err != nil { ... }
//
//	done, err := runner.RunScript(ctx, sch.Name, sch.Version, "user-1", onboard.Script{
//	    "full-name": "Ada Lovelace",
//	    "energy":    7,
//	})
type LocalRunner struct {
	// Engine is the in-memory flow engine used by this runner.
	Engine Engine
}

// NewLocalRunner constructs a LocalRunner backed by an in-memory engine.
//
// This is intended for local development, tests, and simple
// single-process deployments.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{Engine: NewInMemoryEngine()}
}

// NewLocalRunnerWithObserver is like NewLocalRunner with an Observer
// attached, typically a LoggingObserver during development.
func NewLocalRunnerWithObserver(obs Observer) *LocalRunner {
	return &LocalRunner{Engine: NewInMemoryEngineWithObserver(obs)}
}

// Script maps question ids to the raw answer to submit for them.
// A slider question missing from the script submits nil, which the
// pipeline resolves to the slider's default.
type Script map[string]any

// RunScript starts a run and drives it to completion by answering every
// input question from the script. It returns the Completion handed to
// OnComplete callbacks.
//
// A question that takes input but has no script entry (sliders aside)
// or whose scripted answer is rejected by the pipeline fails the run.
func (r *LocalRunner) RunScript(ctx context.Context, schemaName, version, userID string, script Script) (*api.Completion, error) {
	pres := NewRecordingPresenter()
	run, err := r.Engine.StartRun(ctx, schemaName, version, userID, WithPresenter(pres))
	if err != nil {
		return nil, err
	}

	var done *api.Completion
	run.OnComplete(func(c api.Completion) { done = &c })

	// Every loop iteration consumes exactly one awaited question, so the
	// schema's question count bounds the loop. The extra headroom covers
	// auto-advanced messages.
	for i := 0; run.State() != api.StateComplete; i++ {
		if i > len(script)*2+64 {
			return nil, fmt.Errorf("onboard: script did not complete run %s", run.Info().RunID)
		}

		q, ok := run.CurrentQuestion()
		if !ok {
			break
		}

		raw, scripted := script[q.ID]
		if !scripted && q.Type != api.QuestionSlider {
			return nil, fmt.Errorf("onboard: no scripted answer for question %q", q.ID)
		}

		res, err := run.SubmitAnswer(ctx, raw)
		if err != nil {
			return nil, err
		}
		if !res.Accepted {
			return nil, fmt.Errorf("onboard: scripted answer for question %q was rejected", q.ID)
		}
	}

	if done == nil {
		return nil, fmt.Errorf("onboard: run %s ended without completing", run.Info().RunID)
	}
	return done, nil
}

// RecordingPresenter captures every presentation call for later
// inspection. Safe for concurrent use.
type RecordingPresenter struct {
	mu       sync.Mutex
	messages []string
	cleared  int
}

var _ api.Presenter = (*RecordingPresenter)(nil)

// NewRecordingPresenter returns an empty RecordingPresenter.
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) ShowMessage(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, text)
}

func (p *RecordingPresenter) ShowChoices(options []api.Option) {
	p.record("choices", options)
}

func (p *RecordingPresenter) ShowMultiselect(options []api.Option) {
	p.record("multiselect", options)
}

func (p *RecordingPresenter) ShowSlider(min, max, def int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, fmt.Sprintf("[slider %d..%d default %d]", min, max, def))
}

func (p *RecordingPresenter) ClearAffordance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

// Messages returns everything shown so far, in order. Affordances are
// recorded as bracketed placeholder lines.
func (p *RecordingPresenter) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	copy(out, p.messages)
	return out
}

// Cleared returns how many times the input affordance was removed.
func (p *RecordingPresenter) Cleared() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleared
}

func (p *RecordingPresenter) record(kind string, options []api.Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := "[" + kind
	for _, o := range options {
		line += " " + o.Value
	}
	p.messages = append(p.messages, line+"]")
}
