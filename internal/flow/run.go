package flow

import (
	"context"
	"sync"
	"time"

	"github.com/petrijr/onboard/internal/persistence"
	"github.com/petrijr/onboard/pkg/api"
)

// runImpl is the flow controller: one live run of one schema for one
// user. All public methods serialize on mu, so a late answer can never
// interleave with a jump or a second answer; completion callbacks are
// invoked outside the lock.
type runImpl struct {
	mu sync.Mutex

	info      api.RunInfo
	schema    *api.Schema
	profile   api.Profile
	fs        api.FlowState
	state     api.RunState
	presenter api.Presenter
	observer  api.Observer
	snapshots persistence.SnapshotStore
	saver     Saver
	now       func() time.Time

	completion    *api.Completion
	completionFns []func(api.Completion)
	pending       []func(api.Completion)
}

var _ api.Run = (*runImpl)(nil)

// begin presents the first section. Called once by the engine right
// after construction.
func (r *runImpl) begin(ctx context.Context) {
	r.mu.Lock()
	r.state = api.StateTransitioning
	r.showBanner(r.schema.Sections[0])
	r.advance(ctx)
	fns, comp := r.takePending()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(comp)
	}
}

// advance drives the controller forward from the current position until
// it needs input, shows the outro, or runs out of sections. Pure message
// questions are displayed and passed without consulting input.
// Must be called with mu held.
func (r *runImpl) advance(ctx context.Context) {
	for {
		if r.fs.SectionIndex >= len(r.schema.Sections) {
			r.complete(ctx)
			return
		}

		sec := r.schema.Sections[r.fs.SectionIndex]
		if r.fs.QuestionIndex >= len(sec.Questions) {
			r.finishSection(ctx, sec)
			continue
		}

		q := sec.Questions[r.fs.QuestionIndex]
		r.state = api.StatePresenting
		r.presenter.ShowMessage(q.Prompt)
		r.observer.OnQuestionPresented(ctx, r.info, sec, q)

		if q.Type == api.QuestionOutro {
			r.complete(ctx)
			return
		}

		if q.Field == nil {
			r.fs.QuestionIndex++
			continue
		}

		switch q.Type {
		case api.QuestionChoice:
			r.presenter.ShowChoices(q.Options)
		case api.QuestionMultiselect:
			r.presenter.ShowMultiselect(q.Options)
		case api.QuestionSlider:
			r.presenter.ShowSlider(q.Range.Min, q.Range.Max, q.Range.Default)
		}
		r.state = api.StateAwaitingInput
		return
	}
}

// finishSection marks the current section completed and moves to the
// next one. Must be called with mu held.
func (r *runImpl) finishSection(ctx context.Context, sec api.Section) {
	r.markCompleted(ctx, sec)
	r.fs.SectionIndex++
	r.fs.QuestionIndex = 0

	if r.fs.SectionIndex < len(r.schema.Sections) {
		r.state = api.StateTransitioning
		r.showBanner(r.schema.Sections[r.fs.SectionIndex])
	}
}

func (r *runImpl) markCompleted(ctx context.Context, sec api.Section) {
	if r.fs.Completed[sec.ID] {
		return
	}
	r.fs.Completed[sec.ID] = true
	r.observer.OnSectionCompleted(ctx, r.info, sec, progressPercent(r.schema, r.fs))
}

func (r *runImpl) showBanner(sec api.Section) {
	if sec.Title != "" {
		r.presenter.ShowMessage(sec.Title)
	}
	if sec.Description != "" {
		r.presenter.ShowMessage(sec.Description)
	}
}

// complete hands the finished profile to completion callbacks: the run
// is terminal from here on. Must be called with mu held.
func (r *runImpl) complete(ctx context.Context) {
	r.state = api.StateComplete

	// Park the position past the last section so progress reads 100 and
	// the final section counts as completed.
	if r.fs.SectionIndex < len(r.schema.Sections) {
		sec := r.schema.Sections[r.fs.SectionIndex]
		r.fs.SectionIndex = len(r.schema.Sections)
		r.fs.QuestionIndex = 0
		r.markCompleted(ctx, sec)
	}

	comp := api.Completion{
		RunID:     r.info.RunID,
		UserID:    r.info.UserID,
		Profile:   r.profile.Clone(),
		Canonical: canonicalProfile(r.schema, r.profile),
	}
	r.completion = &comp

	// Final snapshot is written synchronously: there is no later
	// transition to piggyback a retry on.
	if r.snapshots != nil {
		if err := r.snapshots.SaveSnapshot(ctx, r.snapshotLocked()); err != nil {
			r.observer.OnPersistenceError(ctx, r.info, "save", err)
		}
	}

	r.observer.OnRunCompleted(ctx, r.info, comp)
	r.pending = append(r.pending, r.completionFns...)
	r.completionFns = nil
}

func (r *runImpl) takePending() ([]func(api.Completion), api.Completion) {
	fns := r.pending
	r.pending = nil
	if r.completion == nil {
		return fns, api.Completion{}
	}
	return fns, *r.completion
}

func (r *runImpl) snapshotLocked() *persistence.Snapshot {
	fs := r.fs
	fs.Completed = make(map[string]bool, len(r.fs.Completed))
	for k, v := range r.fs.Completed {
		fs.Completed[k] = v
	}
	return &persistence.Snapshot{
		UserID:        r.info.UserID,
		SchemaName:    r.schema.Name,
		SchemaVersion: r.schema.Version,
		Profile:       r.profile.Clone(),
		State:         fs,
		UpdatedAt:     r.now(),
	}
}

// persist saves the current snapshot without blocking the flow: through
// the saver when one is configured, otherwise as a synchronous
// best-effort write whose failure only reaches the observer.
// Must be called with mu held.
func (r *runImpl) persist(ctx context.Context) {
	if r.saver != nil {
		r.saver.Enqueue(r.snapshotLocked())
		return
	}
	if r.snapshots == nil {
		return
	}
	if err := r.snapshots.SaveSnapshot(ctx, r.snapshotLocked()); err != nil {
		r.observer.OnPersistenceError(ctx, r.info, "save", err)
	}
}

func (r *runImpl) SubmitAnswer(ctx context.Context, raw any) (*api.AnswerResult, error) {
	r.mu.Lock()

	if r.state == api.StateComplete {
		r.mu.Unlock()
		return nil, api.ErrRunComplete
	}
	if r.state != api.StateAwaitingInput {
		r.mu.Unlock()
		return nil, api.ErrNotAwaitingInput
	}

	sec := r.schema.Sections[r.fs.SectionIndex]
	q := sec.Questions[r.fs.QuestionIndex]

	res := processAnswer(q, raw, r.profile)
	if !res.Accepted {
		r.observer.OnAnswerRejected(ctx, r.info, q)
		r.presenter.ShowMessage(res.Reprompt)
		r.mu.Unlock()
		return res, nil
	}

	r.presenter.ClearAffordance()
	if res.Response != "" {
		r.presenter.ShowMessage(res.Response)
	}
	r.observer.OnAnswerAccepted(ctx, r.info, q, res.Value, res.Response)

	r.fs.QuestionIndex++
	r.persist(ctx)
	r.advance(ctx)

	fns, comp := r.takePending()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(comp)
	}
	return res, nil
}

func (r *runImpl) JumpToSection(ctx context.Context, sectionID string) error {
	r.mu.Lock()

	if r.state == api.StateComplete {
		r.mu.Unlock()
		return api.ErrRunComplete
	}

	target, ok := r.schema.SectionIndex(sectionID)
	if !ok {
		r.mu.Unlock()
		return api.ErrUnknownSection
	}

	// The jump is a deliberate override: the section being left is
	// marked completed even when it was not finished.
	from := r.schema.Sections[r.fs.SectionIndex]
	r.markCompleted(ctx, from)

	r.presenter.ClearAffordance()
	r.fs.SectionIndex = target
	r.fs.QuestionIndex = 0
	r.state = api.StateTransitioning

	r.observer.OnJump(ctx, r.info, from.ID, sectionID)
	r.showBanner(r.schema.Sections[target])
	r.persist(ctx)
	r.advance(ctx)

	fns, comp := r.takePending()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(comp)
	}
	return nil
}

func (r *runImpl) Skip(ctx context.Context) error {
	r.mu.Lock()

	if r.state == api.StateComplete {
		r.mu.Unlock()
		return api.ErrRunComplete
	}

	sec := r.schema.Sections[r.fs.SectionIndex]
	r.observer.OnSkip(ctx, r.info, sec)
	r.presenter.ClearAffordance()

	// Behave as if the section were finished: force the index past the
	// end and follow the normal advance transition.
	r.fs.QuestionIndex = len(sec.Questions)
	r.persist(ctx)
	r.advance(ctx)

	fns, comp := r.takePending()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(comp)
	}
	return nil
}

func (r *runImpl) Progress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return progressPercent(r.schema, r.fs)
}

func (r *runImpl) CurrentQuestion() (api.Question, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fs.SectionIndex >= len(r.schema.Sections) {
		return api.Question{}, false
	}
	sec := r.schema.Sections[r.fs.SectionIndex]
	if r.fs.QuestionIndex >= len(sec.Questions) {
		return api.Question{}, false
	}
	return sec.Questions[r.fs.QuestionIndex], true
}

func (r *runImpl) CurrentSection() (api.Section, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fs.SectionIndex >= len(r.schema.Sections) {
		return api.Section{}, false
	}
	return r.schema.Sections[r.fs.SectionIndex], true
}

func (r *runImpl) State() api.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *runImpl) FlowState() api.FlowState {
	r.mu.Lock()
	defer r.mu.Unlock()

	fs := r.fs
	fs.Completed = make(map[string]bool, len(r.fs.Completed))
	for k, v := range r.fs.Completed {
		fs.Completed[k] = v
	}
	return fs
}

func (r *runImpl) Profile() api.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile.Clone()
}

func (r *runImpl) Info() api.RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

func (r *runImpl) OnComplete(fn func(api.Completion)) {
	r.mu.Lock()
	if r.completion != nil {
		comp := *r.completion
		r.mu.Unlock()
		fn(comp)
		return
	}
	r.completionFns = append(r.completionFns, fn)
	r.mu.Unlock()
}

// Abandon synchronously flushes the profile and position before the
// hosting surface unloads. With a saver configured the queue is drained;
// otherwise the snapshot is written directly.
func (r *runImpl) Abandon(ctx context.Context) error {
	r.mu.Lock()
	snap := r.snapshotLocked()
	saver, snaps := r.saver, r.snapshots
	r.mu.Unlock()

	if saver != nil {
		saver.Enqueue(snap)
		return saver.Flush(ctx)
	}
	if snaps != nil {
		return snaps.SaveSnapshot(ctx, snap)
	}
	return nil
}
