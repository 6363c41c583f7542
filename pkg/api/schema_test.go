package api

import (
	"strings"
	"testing"
)

func validTestSchema() *Schema {
	return &Schema{
		Name:    "test",
		Version: "v1",
		Sections: []Section{
			{
				ID:    "one",
				Title: "One",
				Questions: []Question{
					{ID: "hello", Type: QuestionIntro, Prompt: "hi"},
					{ID: "name", Type: QuestionText, Prompt: "name?", Field: &FieldRef{"one", "name"}},
				},
			},
			{
				ID: "two",
				Questions: []Question{
					{ID: "color", Type: QuestionChoice, Prompt: "color?",
						Field:   &FieldRef{"two", "color"},
						Options: []Option{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}}},
					{ID: "mood", Type: QuestionSlider, Prompt: "mood?",
						Field: &FieldRef{"two", "mood"},
						Range: SliderRange{Min: 1, Max: 10, Default: 5}},
					{ID: "bye", Type: QuestionOutro, Prompt: "bye"},
				},
			},
		},
	}
}

func TestSchemaValidate(t *testing.T) {
	if err := validTestSchema().Validate(); err != nil {
		t.Fatalf("valid schema failed validation: %v", err)
	}
}

func TestSchemaValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(s *Schema)
		wantSub string
	}{
		{
			name:    "no name",
			mutate:  func(s *Schema) { s.Name = "" },
			wantSub: "name is required",
		},
		{
			name:    "no sections",
			mutate:  func(s *Schema) { s.Sections = nil },
			wantSub: "no sections",
		},
		{
			name:    "duplicate section id",
			mutate:  func(s *Schema) { s.Sections[1].ID = "one" },
			wantSub: "duplicate section id",
		},
		{
			name:    "duplicate question id",
			mutate:  func(s *Schema) { s.Sections[0].Questions[1].ID = "hello" },
			wantSub: "duplicate question id",
		},
		{
			name:    "choice without options",
			mutate:  func(s *Schema) { s.Sections[1].Questions[0].Options = nil },
			wantSub: "needs options",
		},
		{
			name:    "inverted slider range",
			mutate:  func(s *Schema) { s.Sections[1].Questions[1].Range = SliderRange{Min: 10, Max: 1, Default: 5} },
			wantSub: "slider min",
		},
		{
			name:    "slider default out of range",
			mutate:  func(s *Schema) { s.Sections[1].Questions[1].Range = SliderRange{Min: 1, Max: 10, Default: 11} },
			wantSub: "slider default",
		},
		{
			name: "intro owning a field",
			mutate: func(s *Schema) {
				s.Sections[0].Questions[0].Field = &FieldRef{"one", "oops"}
			},
			wantSub: "must not own a field",
		},
		{
			name: "self-targeting derivation",
			mutate: func(s *Schema) {
				q := &s.Sections[0].Questions[1]
				q.Derived = []Derivation{{
					Field:   *q.Field,
					Compute: func(raw, value any, p Profile) (any, bool) { return nil, false },
				}}
			},
			wantSub: "own field",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := validTestSchema()
			c.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), c.wantSub) {
				t.Fatalf("error %q does not mention %q", err, c.wantSub)
			}
		})
	}
}

func TestSchemaHelpers(t *testing.T) {
	s := validTestSchema()

	if got := s.TotalQuestions(); got != 5 {
		t.Fatalf("TotalQuestions = %d, want 5", got)
	}

	if i, ok := s.SectionIndex("two"); !ok || i != 1 {
		t.Fatalf("SectionIndex(two) = (%d, %v), want (1, true)", i, ok)
	}
	if _, ok := s.SectionIndex("nope"); ok {
		t.Fatalf("SectionIndex(nope) should not resolve")
	}

	order := s.SectionOrder()
	if len(order) != 2 || order[0] != "one" || order[1] != "two" {
		t.Fatalf("unexpected section order: %v", order)
	}
}

func TestParseFieldRef(t *testing.T) {
	ref, err := ParseFieldRef("life.fullName")
	if err != nil {
		t.Fatalf("ParseFieldRef failed: %v", err)
	}
	if ref != Field("life", "fullName") {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "life.fullName" {
		t.Fatalf("unexpected String(): %s", ref.String())
	}

	for _, bad := range []string{"", "life", "life.", ".fullName"} {
		if _, err := ParseFieldRef(bad); err == nil {
			t.Errorf("ParseFieldRef(%q) should fail", bad)
		}
	}
}
