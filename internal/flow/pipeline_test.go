package flow

import (
	"testing"

	"github.com/petrijr/onboard/pkg/api"
)

func TestProcessAnswer_PanickingValidatorRejects(t *testing.T) {
	q := api.Question{
		ID:       "q",
		Type:     api.QuestionText,
		Field:    &api.FieldRef{Category: "c", Name: "f"},
		Validate: func(value any) bool { panic("boom") },
	}
	p := api.Profile{}

	res := processAnswer(q, "anything", p)
	if res.Accepted {
		t.Fatalf("panicking validator must reject")
	}
	if _, ok := p.Get(api.Field("c", "f")); ok {
		t.Fatalf("rejected answer wrote to the profile")
	}
}

func TestProcessAnswer_PanickingDerivationSkipsWrite(t *testing.T) {
	q := api.Question{
		ID:    "q",
		Type:  api.QuestionText,
		Field: &api.FieldRef{Category: "c", Name: "f"},
		Derived: []api.Derivation{{
			Field:   api.Field("c", "derived"),
			Compute: func(raw, value any, p api.Profile) (any, bool) { panic("boom") },
		}},
	}
	p := api.Profile{}

	res := processAnswer(q, "x", p)
	if !res.Accepted {
		t.Fatalf("primary answer should still be accepted")
	}
	if got := p.GetString(api.Field("c", "f")); got != "x" {
		t.Fatalf("primary write missing: %q", got)
	}
	if _, ok := p.Get(api.Field("c", "derived")); ok {
		t.Fatalf("panicking derivation must not write")
	}
}

func TestProcessAnswer_MultiselectShapes(t *testing.T) {
	q := api.Question{
		ID:      "q",
		Type:    api.QuestionMultiselect,
		Field:   &api.FieldRef{Category: "c", Name: "f"},
		Options: []api.Option{{Value: "a"}, {Value: "b"}},
	}

	// []any with strings, the JSON shape, is normalized.
	res := processAnswer(q, []any{"a", "b"}, api.Profile{})
	if !res.Accepted {
		t.Fatalf("[]any selection rejected")
	}
	if got := res.Value.([]string); len(got) != 2 {
		t.Fatalf("normalized value = %v", res.Value)
	}

	// Off-list values are rejected no matter the shape.
	if res := processAnswer(q, []string{"z"}, api.Profile{}); res.Accepted {
		t.Fatalf("off-list selection accepted")
	}

	// RequireSelection turns the empty set into a rejection.
	q.RequireSelection = true
	if res := processAnswer(q, []string{}, api.Profile{}); res.Accepted {
		t.Fatalf("empty required selection accepted")
	}
}

func TestProcessAnswer_SliderShapes(t *testing.T) {
	q := api.Question{
		ID:    "q",
		Type:  api.QuestionSlider,
		Field: &api.FieldRef{Category: "c", Name: "f"},
		Range: api.SliderRange{Min: 1, Max: 10, Default: 5},
	}

	// float64 with integral value, the JSON shape, is accepted.
	if res := processAnswer(q, float64(7), api.Profile{}); !res.Accepted || res.Value != 7 {
		t.Fatalf("integral float64 = %+v", res)
	}
	if res := processAnswer(q, 7.5, api.Profile{}); res.Accepted {
		t.Fatalf("fractional slider value accepted")
	}
	if res := processAnswer(q, "7", api.Profile{}); res.Accepted {
		t.Fatalf("string slider value accepted")
	}
}
