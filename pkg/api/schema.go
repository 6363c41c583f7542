package api

import (
	"fmt"
	"strings"
)

// QuestionType identifies the kind of prompt a Question presents and the
// input affordance (if any) it expects an answer from.
type QuestionType string

const (
	// QuestionIntro is a message-only question. It never writes to the
	// Profile and the controller advances past it without consulting input.
	QuestionIntro QuestionType = "intro"

	// QuestionText expects a free-text answer.
	QuestionText QuestionType = "text"

	// QuestionChoice expects exactly one value from Options.
	QuestionChoice QuestionType = "choice"

	// QuestionMultiselect expects a (possibly empty) set of values
	// from Options.
	QuestionMultiselect QuestionType = "multiselect"

	// QuestionSlider expects an integer within Range.
	QuestionSlider QuestionType = "slider"

	// QuestionOutro is the terminal message. Presenting it completes
	// the run.
	QuestionOutro QuestionType = "outro"
)

// FieldRef addresses one field inside a Profile category.
type FieldRef struct {
	Category string
	Name     string
}

// Field is a convenience constructor for FieldRef.
func Field(category, name string) FieldRef {
	return FieldRef{Category: category, Name: name}
}

// ParseFieldRef parses a "category.field" path into a FieldRef.
func ParseFieldRef(path string) (FieldRef, error) {
	parts := strings.SplitN(path, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return FieldRef{}, fmt.Errorf("invalid field path %q (want category.field)", path)
	}
	return FieldRef{Category: parts[0], Name: parts[1]}, nil
}

func (f FieldRef) String() string {
	return f.Category + "." + f.Name
}

// IsZero reports whether f is the zero FieldRef.
func (f FieldRef) IsZero() bool {
	return f.Category == "" && f.Name == ""
}

// ParseFunc converts a raw submitted answer into a typed value.
// ok=false signals a parse failure; the pipeline rejects the answer
// without touching the Profile.
type ParseFunc func(raw any) (value any, ok bool)

// ValidateFunc is a pure predicate over a parsed value.
type ValidateFunc func(value any) bool

// RespondFunc renders a templated acknowledgement for an accepted value.
// It may read the already-committed Profile (for example to greet the
// user by a previously stored name) but must never mutate it.
type RespondFunc func(value any, p Profile) string

// ComputeFunc derives a sibling-field value from an accepted answer.
// raw is the submitted input before parsing, value the parsed result.
// ok=false skips the derived write.
type ComputeFunc func(raw, value any, p Profile) (derived any, ok bool)

// Derivation describes a write to a field other than the Question's own,
// performed by the pipeline immediately after the primary store. Deriving
// into the Question's own field is a schema error.
type Derivation struct {
	Field   FieldRef
	Default any
	Compute ComputeFunc
}

// Option is one selectable value of a choice or multiselect Question.
type Option struct {
	Value string
	Label string
}

// SliderRange bounds a slider Question. Default is submitted when the
// user never interacts with the control.
type SliderRange struct {
	Min     int
	Max     int
	Default int
}

// Question is a single schema-defined prompt.
//
// A Question with a nil Field never writes to the Profile; the controller
// treats it as a pure message and auto-advances (intro) or completes the
// run (outro).
type Question struct {
	ID     string
	Type   QuestionType
	Prompt string

	// Field is the Profile slot this Question owns, nil for pure messages.
	Field *FieldRef

	// Default overrides the type-derived Profile default for Field.
	Default any

	Parse    ParseFunc
	Validate ValidateFunc
	Respond  RespondFunc
	Derived  []Derivation

	// Options applies to choice and multiselect questions.
	Options []Option

	// Range applies to slider questions.
	Range SliderRange

	// RequireSelection rejects an empty multiselect answer. The default
	// (false) accepts an empty set as a valid answer.
	RequireSelection bool
}

// HasOption reports whether v is one of the Question's declared options.
func (q Question) HasOption(v string) bool {
	for _, o := range q.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Section is a named, ordered group of Questions covering one profile
// category. Sections are immutable for the lifetime of a run.
type Section struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Questions   []Question
}

// FieldMapping is one row of a Schema's canonical remap table: the value
// at From (or Default when From is unset or the field is empty) lands at
// the flattened key To in the canonical profile.
type FieldMapping struct {
	From    FieldRef
	To      string
	Default any
}

// Schema is the full, ordered curriculum for one onboarding flow.
// It is pure data plus pure functions: loaded once, never mutated.
type Schema struct {
	Name    string
	Version string

	Sections []Section

	// Remap builds the canonical profile handed to the completion
	// collaborator. Entries with a zero From emit their Default
	// unconditionally.
	Remap []FieldMapping
}

// Validate checks the construction-time invariants of the schema:
// unique section ids, unique question ids within each section, sane
// slider ranges, options present where the type requires them, and no
// derivation targeting its own Question's field.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("schema %q has no sections", s.Name)
	}

	sectionIDs := make(map[string]bool, len(s.Sections))
	for _, sec := range s.Sections {
		if sec.ID == "" {
			return fmt.Errorf("schema %q: section with empty id", s.Name)
		}
		if sectionIDs[sec.ID] {
			return fmt.Errorf("schema %q: duplicate section id %q", s.Name, sec.ID)
		}
		sectionIDs[sec.ID] = true

		if len(sec.Questions) == 0 {
			return fmt.Errorf("section %q has no questions", sec.ID)
		}

		questionIDs := make(map[string]bool, len(sec.Questions))
		for _, q := range sec.Questions {
			if q.ID == "" {
				return fmt.Errorf("section %q: question with empty id", sec.ID)
			}
			if questionIDs[q.ID] {
				return fmt.Errorf("section %q: duplicate question id %q", sec.ID, q.ID)
			}
			questionIDs[q.ID] = true

			if err := validateQuestion(sec.ID, q); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateQuestion(sectionID string, q Question) error {
	switch q.Type {
	case QuestionIntro, QuestionOutro:
		if q.Field != nil {
			return fmt.Errorf("question %q/%q: %s questions must not own a field", sectionID, q.ID, q.Type)
		}
	case QuestionChoice, QuestionMultiselect:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q/%q: %s question needs options", sectionID, q.ID, q.Type)
		}
	case QuestionSlider:
		if q.Range.Min > q.Range.Max {
			return fmt.Errorf("question %q/%q: slider min %d > max %d", sectionID, q.ID, q.Range.Min, q.Range.Max)
		}
		if q.Range.Default < q.Range.Min || q.Range.Default > q.Range.Max {
			return fmt.Errorf("question %q/%q: slider default %d outside [%d, %d]",
				sectionID, q.ID, q.Range.Default, q.Range.Min, q.Range.Max)
		}
	case QuestionText:
		// no structural constraints
	default:
		return fmt.Errorf("question %q/%q: unknown type %q", sectionID, q.ID, q.Type)
	}

	for _, d := range q.Derived {
		if d.Field.IsZero() {
			return fmt.Errorf("question %q/%q: derivation with empty field", sectionID, q.ID)
		}
		if q.Field != nil && d.Field == *q.Field {
			return fmt.Errorf("question %q/%q: derivation targets the question's own field %s",
				sectionID, q.ID, d.Field)
		}
		if d.Compute == nil {
			return fmt.Errorf("question %q/%q: derivation %s has nil compute", sectionID, q.ID, d.Field)
		}
	}
	return nil
}

// TotalQuestions is the sum of question counts across all sections.
// The progress tracker divides by it.
func (s *Schema) TotalQuestions() int {
	total := 0
	for _, sec := range s.Sections {
		total += len(sec.Questions)
	}
	return total
}

// SectionIndex returns the position of the section with the given id.
func (s *Schema) SectionIndex(id string) (int, bool) {
	for i, sec := range s.Sections {
		if sec.ID == id {
			return i, true
		}
	}
	return 0, false
}

// SectionOrder returns the ordered section ids.
func (s *Schema) SectionOrder() []string {
	order := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		order[i] = sec.ID
	}
	return order
}
