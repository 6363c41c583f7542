package api

// Profile is the structured, category-keyed collection of collected
// answers: category name to field name to typed value.
//
// A Profile is created with schema-derived defaults before the flow
// starts and mutated only by the input pipeline after validation. It is
// a plain map so it JSON-encodes cleanly for the persistence boundary.
type Profile map[string]map[string]any

// NewProfile builds a Profile pre-populated with category-appropriate
// defaults for every field the schema can write: the Question's Default
// when set, otherwise a zero value matching the question type (empty
// string, zero, empty string slice). Derivation targets get their
// declared Default, or nil when none is declared.
func NewProfile(s *Schema) Profile {
	p := make(Profile)
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			if q.Field != nil {
				p.ensure(*q.Field, defaultFor(q))
			}
			for _, d := range q.Derived {
				p.ensure(d.Field, d.Default)
			}
		}
	}
	return p
}

func defaultFor(q Question) any {
	if q.Default != nil {
		return q.Default
	}
	switch q.Type {
	case QuestionMultiselect:
		return []string{}
	case QuestionSlider:
		return 0
	default:
		return ""
	}
}

func (p Profile) ensure(f FieldRef, def any) {
	cat := p[f.Category]
	if cat == nil {
		cat = make(map[string]any)
		p[f.Category] = cat
	}
	if _, exists := cat[f.Name]; !exists {
		cat[f.Name] = def
	}
}

// Set writes value at f, overwriting any prior value. Arrays and
// structured values are replaced wholesale; there are no merge semantics
// at the field level.
func (p Profile) Set(f FieldRef, value any) {
	cat := p[f.Category]
	if cat == nil {
		cat = make(map[string]any)
		p[f.Category] = cat
	}
	cat[f.Name] = value
}

// Get returns the value at f, ok=false when the field was never declared.
func (p Profile) Get(f FieldRef) (any, bool) {
	cat, ok := p[f.Category]
	if !ok {
		return nil, false
	}
	v, ok := cat[f.Name]
	return v, ok
}

// GetString returns the string at f, or "" when absent or untyped.
func (p Profile) GetString(f FieldRef) string {
	v, ok := p.Get(f)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetInt returns the integer at f. JSON decoding turns numbers into
// float64, so both representations are accepted.
func (p Profile) GetInt(f FieldRef) int {
	v, ok := p.Get(f)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetFloat returns the number at f as float64.
func (p Profile) GetFloat(f FieldRef) float64 {
	v, ok := p.Get(f)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// GetStrings returns the string slice at f, tolerating the []any shape
// produced by JSON decoding.
func (p Profile) GetStrings(f FieldRef) []string {
	v, ok := p.Get(f)
	if !ok {
		return nil
	}
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clone returns a deep copy of the Profile. Slices are copied; scalar
// values are shared (they are immutable).
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for cat, fields := range p {
		copied := make(map[string]any, len(fields))
		for name, v := range fields {
			if vs, ok := v.([]string); ok {
				copied[name] = append([]string(nil), vs...)
			} else {
				copied[name] = v
			}
		}
		out[cat] = copied
	}
	return out
}

// Merge copies stored values from other into p for fields p already
// declares. Unknown categories and fields in other are ignored, so a
// stale or partially corrupt snapshot can never introduce fields the
// current schema does not know about.
func (p Profile) Merge(other Profile) {
	for cat, fields := range other {
		dst, ok := p[cat]
		if !ok {
			continue
		}
		for name, v := range fields {
			def, ok := dst[name]
			if !ok {
				continue
			}
			dst[name] = coerce(v, def)
		}
	}
}

// coerce reshapes a JSON-decoded value to match the default's type where
// the decoding was lossy (float64 for ints, []any for string slices).
// A value that cannot be reconciled keeps the default.
func coerce(v, def any) any {
	switch def.(type) {
	case int:
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
		return def
	case []string:
		switch vs := v.(type) {
		case []string:
			return vs
		case []any:
			out := make([]string, 0, len(vs))
			for _, item := range vs {
				s, ok := item.(string)
				if !ok {
					return def
				}
				out = append(out, s)
			}
			return out
		}
		return def
	case string:
		if s, ok := v.(string); ok {
			return s
		}
		return def
	default:
		return v
	}
}
