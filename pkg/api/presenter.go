package api

// Presenter is the consumed UI collaborator. The engine calls it when a
// question is shown; answers come back through Run.SubmitAnswer, at most
// once per presented question.
//
// Timing is entirely the presenter's concern: the engine's transitions
// are logically instantaneous, and any typing-indicator or
// section-banner delay is applied by the presenter when it renders.
type Presenter interface {
	// ShowMessage displays plain text: prompts, intros, section banners,
	// response acknowledgements and reprompts.
	ShowMessage(text string)

	// ShowChoices displays a single-select affordance.
	ShowChoices(options []Option)

	// ShowMultiselect displays a multi-select affordance with a confirm.
	ShowMultiselect(options []Option)

	// ShowSlider displays a slider affordance.
	ShowSlider(min, max, def int)

	// ClearAffordance removes the current input affordance, guaranteeing
	// no second answer can reach the pipeline for the same question.
	ClearAffordance()
}

// NoopPresenter discards all presentation calls. It is the default when
// a run is driven headless (tests, scripted runs).
type NoopPresenter struct{}

func (NoopPresenter) ShowMessage(text string)            {}
func (NoopPresenter) ShowChoices(options []Option)       {}
func (NoopPresenter) ShowMultiselect(options []Option)   {}
func (NoopPresenter) ShowSlider(min, max, def int)       {}
func (NoopPresenter) ClearAffordance()                   {}
