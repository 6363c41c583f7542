package flow

import "github.com/petrijr/onboard/pkg/api"

// canonicalProfile applies the schema's remap table: the fixed,
// field-for-field reshaping of the collected profile into the canonical
// application format handed to completion callbacks.
//
// Rules, per mapping entry:
//   - zero From: the entry's Default is emitted unconditionally
//     (hard-defaulted fields like sleepHours).
//   - otherwise the collected value is copied; when it is still empty
//     and the entry declares a Default, the Default wins.
func canonicalProfile(s *api.Schema, p api.Profile) map[string]any {
	out := make(map[string]any, len(s.Remap))
	for _, m := range s.Remap {
		if m.From.IsZero() {
			out[m.To] = m.Default
			continue
		}
		v, ok := p.Get(m.From)
		if (!ok || isEmptyValue(v)) && m.Default != nil {
			out[m.To] = m.Default
			continue
		}
		out[m.To] = v
	}
	return out
}

func isEmptyValue(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case string:
		return n == ""
	case int:
		return n == 0
	case int64:
		return n == 0
	case float64:
		return n == 0
	case []string:
		return len(n) == 0
	case []any:
		return len(n) == 0
	}
	return false
}
