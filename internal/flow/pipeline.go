package flow

import (
	"github.com/petrijr/onboard/pkg/api"
)

// repromptMessage is the generic retry line sent back for any rejected
// answer, regardless of which stage rejected it.
const repromptMessage = "Sorry, I didn't catch that. Could you try again?"

// processAnswer runs the parse, validate, store, respond pipeline for
// one raw answer against one question.
//
// Rejections return Accepted=false with the profile untouched: nothing
// is written until the value has passed both the type contract and the
// question's own validator. On acceptance the question's field receives
// exactly one write, followed by any declared derived sibling writes and
// the templated response.
func processAnswer(q api.Question, raw any, p api.Profile) *api.AnswerResult {
	value := raw
	if q.Parse != nil {
		parsed, ok := q.Parse(raw)
		if !ok {
			return reject()
		}
		value = parsed
	}

	value, ok := checkType(q, value)
	if !ok {
		return reject()
	}

	if q.Validate != nil && !safeValidate(q.Validate, value) {
		return reject()
	}

	if q.Field != nil {
		p.Set(*q.Field, value)
	}

	for _, d := range q.Derived {
		if derived, ok := derive(d, raw, value, p); ok {
			p.Set(d.Field, derived)
		}
	}

	response := ""
	if q.Respond != nil {
		response = q.Respond(value, p)
	}

	return &api.AnswerResult{
		Accepted: true,
		Value:    value,
		Response: response,
	}
}

func reject() *api.AnswerResult {
	return &api.AnswerResult{Accepted: false, Reprompt: repromptMessage}
}

// checkType enforces the per-type input contract. Choice and multiselect
// values are guaranteed in-range by their affordances, but the contract
// is still enforced here so a misbehaving host can never corrupt the
// profile. The possibly-normalized value is returned (multiselect
// arrays arrive as []any from some hosts, sliders as float64).
func checkType(q api.Question, value any) (any, bool) {
	switch q.Type {
	case api.QuestionChoice:
		s, ok := value.(string)
		if !ok || !q.HasOption(s) {
			return nil, false
		}
		return s, true

	case api.QuestionMultiselect:
		selected, ok := toStringSlice(value)
		if !ok {
			return nil, false
		}
		if q.RequireSelection && len(selected) == 0 {
			return nil, false
		}
		for _, s := range selected {
			if !q.HasOption(s) {
				return nil, false
			}
		}
		return selected, true

	case api.QuestionSlider:
		if value == nil {
			// Untouched control: the declared default is the answer.
			return q.Range.Default, true
		}
		n, ok := toInt(value)
		if !ok || n < q.Range.Min || n > q.Range.Max {
			return nil, false
		}
		return n, true

	default:
		return value, true
	}
}

func toStringSlice(value any) ([]string, bool) {
	switch vs := value.(type) {
	case nil:
		return []string{}, true
	case []string:
		return vs, true
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// safeValidate treats a panicking validator the same as one returning
// false.
func safeValidate(fn api.ValidateFunc, value any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return fn(value)
}

// derive guards a derivation the same way: a panic skips the write.
func derive(d api.Derivation, raw, value any, p api.Profile) (derived any, ok bool) {
	defer func() {
		if recover() != nil {
			derived, ok = nil, false
		}
	}()
	return d.Compute(raw, value, p)
}
