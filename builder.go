package onboard

import (
	"fmt"

	"github.com/petrijr/onboard/pkg/api"
)

// SchemaBuilder provides a fluent API for defining onboarding schemas:
//
//	sch := onboard.New("wellness", "v1").
//	    Section("life", "About you", "The basics").
//	    Intro("welcome", "Hi! Let's get to know each other.").
//	    Text("full-name", "What's your full name?", onboard.Field("life", "fullName"),
//	        onboard.WithValidate(onboard.NonEmptyString)).
//	    Slider("energy", "How's your energy, 1-10?", onboard.Field("life", "energy"), 1, 10, 5).
//	    Outro("done", "That's everything, thanks!").
//	    MustBuild()
//
//	if err := engine.RegisterSchema(sch); err != nil {
//	    log.Fatal(err)
//	}
type SchemaBuilder struct {
	schema api.Schema
}

// New creates a new schema builder with the given name and version.
// An empty version defaults to "v1" at registration.
func New(name, version string) *SchemaBuilder {
	return &SchemaBuilder{
		schema: api.Schema{
			Name:    name,
			Version: version,
		},
	}
}

// Section starts a new section; subsequent question calls append to it.
func (b *SchemaBuilder) Section(id, title, description string) *SchemaBuilder {
	if id == "" {
		panic("onboard: section id must not be empty")
	}
	b.schema.Sections = append(b.schema.Sections, api.Section{
		ID:          id,
		Title:       title,
		Description: description,
	})
	return b
}

// Icon sets the presentational icon of the current section.
func (b *SchemaBuilder) Icon(icon string) *SchemaBuilder {
	sec := b.currentSection()
	sec.Icon = icon
	return b
}

// Intro appends a message-only question. It never writes to the profile
// and the controller advances past it without input.
func (b *SchemaBuilder) Intro(id, text string) *SchemaBuilder {
	return b.add(api.Question{ID: id, Type: api.QuestionIntro, Prompt: text})
}

// Outro appends the terminal message. Presenting it completes the run.
func (b *SchemaBuilder) Outro(id, text string) *SchemaBuilder {
	return b.add(api.Question{ID: id, Type: api.QuestionOutro, Prompt: text})
}

// Text appends a free-text question writing to field.
func (b *SchemaBuilder) Text(id, prompt string, field api.FieldRef, opts ...QuestionOption) *SchemaBuilder {
	return b.addWith(api.Question{
		ID:     id,
		Type:   api.QuestionText,
		Prompt: prompt,
		Field:  &field,
	}, opts)
}

// Choice appends a single-select question writing to field.
func (b *SchemaBuilder) Choice(id, prompt string, field api.FieldRef, options []api.Option, opts ...QuestionOption) *SchemaBuilder {
	return b.addWith(api.Question{
		ID:      id,
		Type:    api.QuestionChoice,
		Prompt:  prompt,
		Field:   &field,
		Options: options,
	}, opts)
}

// Multiselect appends a multi-select question writing to field.
// An empty selection is a valid answer unless WithRequireSelection is
// given.
func (b *SchemaBuilder) Multiselect(id, prompt string, field api.FieldRef, options []api.Option, opts ...QuestionOption) *SchemaBuilder {
	return b.addWith(api.Question{
		ID:      id,
		Type:    api.QuestionMultiselect,
		Prompt:  prompt,
		Field:   &field,
		Options: options,
	}, opts)
}

// Slider appends an integer slider question writing to field. def is
// submitted when the user never touches the control.
func (b *SchemaBuilder) Slider(id, prompt string, field api.FieldRef, min, max, def int, opts ...QuestionOption) *SchemaBuilder {
	return b.addWith(api.Question{
		ID:     id,
		Type:   api.QuestionSlider,
		Prompt: prompt,
		Field:  &field,
		Range:  api.SliderRange{Min: min, Max: max, Default: def},
	}, opts)
}

// Remap appends one row to the schema's canonical remap table.
func (b *SchemaBuilder) Remap(from api.FieldRef, to string, def any) *SchemaBuilder {
	b.schema.Remap = append(b.schema.Remap, api.FieldMapping{From: from, To: to, Default: def})
	return b
}

// RemapConst appends a hard-defaulted remap row: to always receives def,
// regardless of collected data.
func (b *SchemaBuilder) RemapConst(to string, def any) *SchemaBuilder {
	b.schema.Remap = append(b.schema.Remap, api.FieldMapping{To: to, Default: def})
	return b
}

// Build validates the schema and returns it.
func (b *SchemaBuilder) Build() (*api.Schema, error) {
	s := b.schema
	if s.Version == "" {
		s.Version = "v1"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// MustBuild is like Build but panics on error.
// Useful for schema definitions evaluated at init time.
func (b *SchemaBuilder) MustBuild() *api.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *SchemaBuilder) currentSection() *api.Section {
	if len(b.schema.Sections) == 0 {
		panic("onboard: call Section before adding questions")
	}
	return &b.schema.Sections[len(b.schema.Sections)-1]
}

func (b *SchemaBuilder) add(q api.Question) *SchemaBuilder {
	if q.ID == "" {
		panic("onboard: question id must not be empty")
	}
	sec := b.currentSection()
	sec.Questions = append(sec.Questions, q)
	return b
}

func (b *SchemaBuilder) addWith(q api.Question, opts []QuestionOption) *SchemaBuilder {
	for _, opt := range opts {
		opt(&q)
	}
	return b.add(q)
}

// QuestionOption customizes a question added through the builder.
type QuestionOption func(*api.Question)

// WithParse sets the question's parse function.
func WithParse(fn api.ParseFunc) QuestionOption {
	return func(q *api.Question) { q.Parse = fn }
}

// WithValidate sets the question's validation predicate.
func WithValidate(fn api.ValidateFunc) QuestionOption {
	return func(q *api.Question) { q.Validate = fn }
}

// WithRespond sets the question's response template function.
func WithRespond(fn api.RespondFunc) QuestionOption {
	return func(q *api.Question) { q.Respond = fn }
}

// WithDerived appends a derived sibling-field write: compute runs after
// the question's own field is stored and must target a different field.
func WithDerived(field api.FieldRef, def any, compute api.ComputeFunc) QuestionOption {
	return func(q *api.Question) {
		q.Derived = append(q.Derived, api.Derivation{Field: field, Default: def, Compute: compute})
	}
}

// WithDefault overrides the profile default for the question's field.
func WithDefault(def any) QuestionOption {
	return func(q *api.Question) { q.Default = def }
}

// WithRequireSelection rejects an empty multiselect answer.
func WithRequireSelection() QuestionOption {
	return func(q *api.Question) { q.RequireSelection = true }
}

// Options is a convenience for declaring option lists from value/label
// pairs:
//
//	onboard.Options("omnivore", "Omnivore", "vegan", "Vegan")
func Options(pairs ...string) []api.Option {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("onboard: Options wants value/label pairs, got %d strings", len(pairs)))
	}
	opts := make([]api.Option, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		opts = append(opts, api.Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return opts
}
