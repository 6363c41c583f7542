package api

import "strings"

// MatchRule is one (predicate, result) pair of a MatchTable.
type MatchRule struct {
	Match  func(s string) bool
	Result string
}

// MatchTable is an ordered keyword-dispatch table: rules are evaluated
// in declaration order and the first match wins, falling back to
// Default. Schemas use it for response templates keyed on free-text
// answers (occupations, city names) so the dispatch order is explicit
// and deterministic.
type MatchTable struct {
	Rules   []MatchRule
	Default string
}

// Lookup returns the first matching rule's result, or Default.
func (t MatchTable) Lookup(s string) string {
	for _, r := range t.Rules {
		if r.Match != nil && r.Match(s) {
			return r.Result
		}
	}
	return t.Default
}

// MatchContains builds a case-insensitive substring predicate that
// matches when any of the given fragments occurs in the input.
func MatchContains(fragments ...string) func(string) bool {
	lowered := make([]string, len(fragments))
	for i, f := range fragments {
		lowered[i] = strings.ToLower(f)
	}
	return func(s string) bool {
		s = strings.ToLower(s)
		for _, f := range lowered {
			if strings.Contains(s, f) {
				return true
			}
		}
		return false
	}
}
