package flow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/petrijr/onboard/internal/persistence"
	"github.com/petrijr/onboard/pkg/api"
)

// testNow pins the derived-age computation so the tests don't rot.
var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testSchema is a compact two-section curriculum touching every
// question type: 7 questions total.
func testSchema() *api.Schema {
	return &api.Schema{
		Name:    "wellness-test",
		Version: "v1",
		Sections: []api.Section{
			{
				ID:    "life",
				Title: "About you",
				Questions: []api.Question{
					{ID: "name", Type: api.QuestionText, Prompt: "Name?",
						Field:    &api.FieldRef{Category: "life", Name: "name"},
						Validate: api.NonEmptyString,
						Respond: func(value any, p api.Profile) string {
							return fmt.Sprintf("Hi %v!", value)
						}},
					{ID: "birthdate", Type: api.QuestionText, Prompt: "Born when?",
						Field: &api.FieldRef{Category: "life", Name: "birthdate"},
						Parse: func(raw any) (any, bool) {
							return api.ParseDate(fmt.Sprint(raw))
						},
						Derived: []api.Derivation{{
							Field:   api.Field("life", "age"),
							Default: 0,
							Compute: func(raw, value any, p api.Profile) (any, bool) {
								return api.Age(value.(string), testNow), true
							},
						}}},
				},
			},
			{
				ID:          "prefs",
				Title:       "Preferences",
				Description: "Almost there.",
				Questions: []api.Question{
					{ID: "intro", Type: api.QuestionIntro, Prompt: "A few favorites now."},
					{ID: "color", Type: api.QuestionChoice, Prompt: "Color?",
						Field:   &api.FieldRef{Category: "prefs", Name: "color"},
						Options: []api.Option{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}}},
					{ID: "tags", Type: api.QuestionMultiselect, Prompt: "Tags?",
						Field:   &api.FieldRef{Category: "prefs", Name: "tags"},
						Options: []api.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}},
					{ID: "mood", Type: api.QuestionSlider, Prompt: "Mood?",
						Field: &api.FieldRef{Category: "prefs", Name: "mood"},
						Range: api.SliderRange{Min: 1, Max: 10, Default: 5}},
					{ID: "bye", Type: api.QuestionOutro, Prompt: "All done!"},
				},
			},
		},
		Remap: []api.FieldMapping{
			{From: api.Field("life", "name"), To: "name", Default: ""},
			{From: api.Field("life", "age"), To: "age", Default: 0},
			{From: api.Field("prefs", "color"), To: "favoriteColor", Default: "red"},
			{To: "sleepHours", Default: 8},
		},
	}
}

type countingObserver struct {
	api.NoopObserver

	started     int
	presented   []string
	accepted    int
	rejected    int
	sections    []string
	progress    []int
	jumps       int
	skips       int
	completed   int
	persistErrs []error
}

func (o *countingObserver) OnRunStart(ctx context.Context, info api.RunInfo) { o.started++ }

func (o *countingObserver) OnQuestionPresented(ctx context.Context, info api.RunInfo, sec api.Section, q api.Question) {
	o.presented = append(o.presented, q.ID)
}

func (o *countingObserver) OnAnswerAccepted(ctx context.Context, info api.RunInfo, q api.Question, value any, response string) {
	o.accepted++
}

func (o *countingObserver) OnAnswerRejected(ctx context.Context, info api.RunInfo, q api.Question) {
	o.rejected++
}

func (o *countingObserver) OnSectionCompleted(ctx context.Context, info api.RunInfo, sec api.Section, progress int) {
	o.sections = append(o.sections, sec.ID)
	o.progress = append(o.progress, progress)
}

func (o *countingObserver) OnJump(ctx context.Context, info api.RunInfo, fromID, toID string) {
	o.jumps++
}

func (o *countingObserver) OnSkip(ctx context.Context, info api.RunInfo, sec api.Section) {
	o.skips++
}

func (o *countingObserver) OnRunCompleted(ctx context.Context, info api.RunInfo, comp api.Completion) {
	o.completed++
}

func (o *countingObserver) OnPersistenceError(ctx context.Context, info api.RunInfo, op string, err error) {
	o.persistErrs = append(o.persistErrs, err)
}

func newTestRun(t *testing.T, obs api.Observer) api.Run {
	t.Helper()
	return newTestRunWithStore(t, obs, persistence.NewInMemoryStore())
}

func newTestRunWithStore(t *testing.T, obs api.Observer, store persistence.SnapshotStore) api.Run {
	t.Helper()

	eng := NewEngineWithConfig(Config{
		Persistence: persistence.Persistence{Snapshots: store},
		Observer:    obs,
	})
	if err := eng.RegisterSchema(testSchema()); err != nil {
		t.Fatalf("RegisterSchema failed: %v", err)
	}

	run, err := eng.StartRun(context.Background(), "wellness-test", "v1", "user-1")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	return run
}

func mustAccept(t *testing.T, run api.Run, raw any) *api.AnswerResult {
	t.Helper()
	res, err := run.SubmitAnswer(context.Background(), raw)
	if err != nil {
		t.Fatalf("SubmitAnswer(%v) failed: %v", raw, err)
	}
	if !res.Accepted {
		t.Fatalf("SubmitAnswer(%v) was rejected", raw)
	}
	return res
}

func TestRun_FirstAnswerStoresAndAdvances(t *testing.T) {
	run := newTestRun(t, nil)

	if got := run.State(); got != api.StateAwaitingInput {
		t.Fatalf("initial state = %s, want %s", got, api.StateAwaitingInput)
	}
	if got := run.Progress(); got != 0 {
		t.Fatalf("initial progress = %d, want 0", got)
	}

	res := mustAccept(t, run, "Ada Lovelace")
	if res.Value != "Ada Lovelace" {
		t.Fatalf("stored value = %v", res.Value)
	}
	if res.Response != "Hi Ada Lovelace!" {
		t.Fatalf("response = %q", res.Response)
	}

	if got := run.Profile().GetString(api.Field("life", "name")); got != "Ada Lovelace" {
		t.Fatalf("profile value = %q", got)
	}

	// 7 questions total, one answered: floor(100*1/7).
	if got := run.Progress(); got != 14 {
		t.Fatalf("progress = %d, want 14", got)
	}

	q, ok := run.CurrentQuestion()
	if !ok || q.ID != "birthdate" {
		t.Fatalf("current question = %v, want birthdate", q.ID)
	}
}

func TestRun_RejectionLeavesEverythingUntouched(t *testing.T) {
	obs := &countingObserver{}
	run := newTestRun(t, obs)

	before := run.FlowState()
	res, err := run.SubmitAnswer(context.Background(), "   ")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Accepted {
		t.Fatalf("whitespace name should be rejected")
	}
	if res.Reprompt == "" {
		t.Fatalf("rejection must carry a reprompt")
	}

	if got := run.FlowState(); got.QuestionIndex != before.QuestionIndex || got.SectionIndex != before.SectionIndex {
		t.Fatalf("rejection moved the position: %+v", got)
	}
	if got := run.Profile().GetString(api.Field("life", "name")); got != "" {
		t.Fatalf("rejection wrote to the profile: %q", got)
	}
	if obs.rejected != 1 || obs.accepted != 0 {
		t.Fatalf("observer counts: rejected=%d accepted=%d", obs.rejected, obs.accepted)
	}

	// The same question accepts a valid retry.
	mustAccept(t, run, "Ada")
}

func TestRun_DerivedSiblingWrite(t *testing.T) {
	run := newTestRun(t, nil)
	mustAccept(t, run, "Ada")

	res := mustAccept(t, run, "March 15, 1990")
	if res.Value != "1990-03-15" {
		t.Fatalf("parsed birthdate = %v, want ISO form", res.Value)
	}

	p := run.Profile()
	if got := p.GetString(api.Field("life", "birthdate")); got != "1990-03-15" {
		t.Fatalf("stored birthdate = %q", got)
	}
	if got := p.GetInt(api.Field("life", "age")); got != 33 {
		t.Fatalf("derived age = %d, want 33", got)
	}
}

func TestRun_IntroAutoAdvancesIntoChoice(t *testing.T) {
	obs := &countingObserver{}
	run := newTestRun(t, obs)
	mustAccept(t, run, "Ada")
	mustAccept(t, run, "1990-03-15")

	// The prefs intro was presented and passed without input; the run
	// now awaits the choice.
	q, ok := run.CurrentQuestion()
	if !ok || q.ID != "color" {
		t.Fatalf("current question = %v, want color", q.ID)
	}
	if got := run.State(); got != api.StateAwaitingInput {
		t.Fatalf("state = %s", got)
	}

	found := false
	for _, id := range obs.presented {
		if id == "intro" {
			found = true
		}
	}
	if !found {
		t.Fatalf("intro was never presented: %v", obs.presented)
	}

	// Finishing the first section fired the observer exactly once.
	if !reflect.DeepEqual(obs.sections, []string{"life"}) {
		t.Fatalf("completed sections = %v", obs.sections)
	}
}

func TestRun_ChoiceRejectsUnknownOption(t *testing.T) {
	run := newTestRun(t, nil)
	mustAccept(t, run, "Ada")
	mustAccept(t, run, "1990-03-15")

	res, err := run.SubmitAnswer(context.Background(), "green")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Accepted {
		t.Fatalf("unknown option must be rejected")
	}

	mustAccept(t, run, "blue")
	if got := run.Profile().GetString(api.Field("prefs", "color")); got != "blue" {
		t.Fatalf("stored color = %q", got)
	}
}

func TestRun_MultiselectAndSlider(t *testing.T) {
	run := newTestRun(t, nil)
	mustAccept(t, run, "Ada")
	mustAccept(t, run, "1990-03-15")
	mustAccept(t, run, "red")

	// Empty selection is a valid multiselect answer.
	res := mustAccept(t, run, []string{})
	if got, ok := res.Value.([]string); !ok || len(got) != 0 {
		t.Fatalf("empty selection value = %v", res.Value)
	}

	// Out-of-range slider input is rejected, nil takes the default.
	rejected, err := run.SubmitAnswer(context.Background(), 11)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if rejected.Accepted {
		t.Fatalf("out-of-range slider value must be rejected")
	}

	res, err = run.SubmitAnswer(context.Background(), nil)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if !res.Accepted || res.Value != 5 {
		t.Fatalf("nil slider answer = %+v, want default 5", res)
	}
	if got := run.Profile().GetInt(api.Field("prefs", "mood")); got != 5 {
		t.Fatalf("stored mood = %d", got)
	}
}

func TestRun_CompletionHandsOffCanonicalProfile(t *testing.T) {
	obs := &countingObserver{}
	run := newTestRun(t, obs)

	var done *api.Completion
	run.OnComplete(func(c api.Completion) { done = &c })

	mustAccept(t, run, "Ada")
	mustAccept(t, run, "1990-03-15")
	mustAccept(t, run, "blue")
	mustAccept(t, run, []string{"a"})
	mustAccept(t, run, 7)

	if got := run.State(); got != api.StateComplete {
		t.Fatalf("state = %s, want %s", got, api.StateComplete)
	}
	if done == nil {
		t.Fatalf("completion callback never fired")
	}
	if obs.completed != 1 {
		t.Fatalf("observer completed = %d", obs.completed)
	}

	want := map[string]any{
		"name":          "Ada",
		"age":           33,
		"favoriteColor": "blue",
		"sleepHours":    8,
	}
	if !reflect.DeepEqual(done.Canonical, want) {
		t.Fatalf("canonical = %#v, want %#v", done.Canonical, want)
	}

	if got := run.Progress(); got != 100 {
		t.Fatalf("final progress = %d, want 100", got)
	}

	// Terminal: further commands fail, late callbacks fire immediately.
	if _, err := run.SubmitAnswer(context.Background(), "late"); !errors.Is(err, api.ErrRunComplete) {
		t.Fatalf("SubmitAnswer after completion = %v, want ErrRunComplete", err)
	}
	if err := run.Skip(context.Background()); !errors.Is(err, api.ErrRunComplete) {
		t.Fatalf("Skip after completion = %v", err)
	}

	late := false
	run.OnComplete(func(c api.Completion) { late = true })
	if !late {
		t.Fatalf("late OnComplete registration did not fire immediately")
	}
}

func TestRun_JumpMarksCurrentSectionCompleted(t *testing.T) {
	obs := &countingObserver{}
	run := newTestRun(t, obs)

	if err := run.JumpToSection(context.Background(), "prefs"); err != nil {
		t.Fatalf("JumpToSection failed: %v", err)
	}

	fs := run.FlowState()
	if !fs.Completed["life"] {
		t.Fatalf("jump did not mark the left section completed: %+v", fs)
	}
	if obs.jumps != 1 {
		t.Fatalf("observer jumps = %d", obs.jumps)
	}

	q, ok := run.CurrentQuestion()
	if !ok || q.ID != "color" {
		t.Fatalf("current question after jump = %v, want color", q.ID)
	}

	if err := run.JumpToSection(context.Background(), "nope"); !errors.Is(err, api.ErrUnknownSection) {
		t.Fatalf("jump to unknown section = %v, want ErrUnknownSection", err)
	}

	// Jumping back to an earlier section legitimately lowers progress.
	if err := run.JumpToSection(context.Background(), "life"); err != nil {
		t.Fatalf("jump back failed: %v", err)
	}
	if got := run.Progress(); got != 0 {
		t.Fatalf("progress after jump back = %d, want 0", got)
	}
}

func TestRun_SkipSection(t *testing.T) {
	obs := &countingObserver{}
	run := newTestRun(t, obs)

	if err := run.Skip(context.Background()); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if obs.skips != 1 {
		t.Fatalf("observer skips = %d", obs.skips)
	}

	sec, ok := run.CurrentSection()
	if !ok || sec.ID != "prefs" {
		t.Fatalf("current section after skip = %v, want prefs", sec.ID)
	}
	if !run.FlowState().Completed["life"] {
		t.Fatalf("skipped section was not marked completed")
	}
}

func TestRun_UnknownSchemaFailsStart(t *testing.T) {
	eng := NewEngineWithConfig(Config{})
	_, err := eng.StartRun(context.Background(), "ghost", "v1", "user-1")
	if !errors.Is(err, api.ErrSchemaNotFound) {
		t.Fatalf("StartRun = %v, want ErrSchemaNotFound", err)
	}
}

func TestRun_DuplicateSchemaRegistration(t *testing.T) {
	eng := NewEngineWithConfig(Config{})
	if err := eng.RegisterSchema(testSchema()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := eng.RegisterSchema(testSchema()); err == nil {
		t.Fatalf("duplicate registration must fail")
	}
}
