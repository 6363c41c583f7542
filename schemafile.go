package onboard

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petrijr/onboard/pkg/api"
)

// Schemas can be defined in YAML instead of Go. Behavior that cannot be
// serialized (parse, validate, respond, derive) is referenced by kind
// name and resolved against package-level registries; the built-in kinds
// cover the shared free-text parsers, and applications register their
// own before loading.
//
//	sections:
//	  - id: life
//	    title: About you
//	    questions:
//	      - id: birthdate
//	        type: text
//	        prompt: When were you born?
//	        field: life.birthdate
//	        parse: date
//	        derived:
//	          - field: life.age
//	            default: ""
//	            compute: age

var (
	kindMu        sync.RWMutex
	parseKinds    = map[string]api.ParseFunc{}
	validateKinds = map[string]api.ValidateFunc{}
	computeKinds  = map[string]api.ComputeFunc{}
)

func init() {
	RegisterParseKind("date", func(raw any) (any, bool) {
		return api.ParseDate(rawString(raw))
	})
	RegisterParseKind("scaled-number", func(raw any) (any, bool) {
		return api.ParseScaledNumber(rawString(raw)), true
	})
	RegisterParseKind("weight", func(raw any) (any, bool) {
		magnitude, _ := api.ParseWeight(rawString(raw))
		return magnitude, true
	})
	RegisterParseKind("location-city", func(raw any) (any, bool) {
		city, _ := api.ParseLocation(rawString(raw))
		return city, city != ""
	})
	RegisterParseKind("trim", func(raw any) (any, bool) {
		return strings.TrimSpace(rawString(raw)), true
	})

	RegisterValidateKind("nonempty", api.NonEmptyString)

	RegisterComputeKind("age", func(raw, value any, p api.Profile) (any, bool) {
		iso, ok := value.(string)
		if !ok || iso == "" {
			return nil, false
		}
		return api.Age(iso, time.Now()), true
	})
	RegisterComputeKind("location-region", func(raw, value any, p api.Profile) (any, bool) {
		_, region := api.ParseLocation(rawString(raw))
		return region, region != ""
	})
	RegisterComputeKind("weight-unit", func(raw, value any, p api.Profile) (any, bool) {
		_, unit := api.ParseWeight(rawString(raw))
		return unit, true
	})
}

// RegisterParseKind makes fn resolvable from YAML under the given name.
// Empty names and duplicates panic; registration is meant to happen at
// init time.
func RegisterParseKind(name string, fn api.ParseFunc) {
	registerKind("parse", name, fn == nil, func() bool {
		_, dup := parseKinds[name]
		if !dup {
			parseKinds[name] = fn
		}
		return dup
	})
}

// RegisterValidateKind makes fn resolvable from YAML under the given name.
func RegisterValidateKind(name string, fn api.ValidateFunc) {
	registerKind("validate", name, fn == nil, func() bool {
		_, dup := validateKinds[name]
		if !dup {
			validateKinds[name] = fn
		}
		return dup
	})
}

// RegisterComputeKind makes fn resolvable from YAML under the given name.
func RegisterComputeKind(name string, fn api.ComputeFunc) {
	registerKind("compute", name, fn == nil, func() bool {
		_, dup := computeKinds[name]
		if !dup {
			computeKinds[name] = fn
		}
		return dup
	})
}

func registerKind(what, name string, fnNil bool, store func() bool) {
	if name == "" {
		panic("onboard: " + what + " kind name must not be empty")
	}
	if fnNil {
		panic(fmt.Sprintf("onboard: %s kind %q must not be nil", what, name))
	}
	kindMu.Lock()
	defer kindMu.Unlock()
	if store() {
		panic(fmt.Sprintf("onboard: %s kind %q already registered", what, name))
	}
}

// LoadSchemaFile reads and parses a YAML schema definition from path.
func LoadSchemaFile(path string) (*api.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	s, err := ParseSchemaYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchemaYAML parses a YAML schema definition and resolves its
// named kinds. The result has passed Schema.Validate.
func ParseSchemaYAML(data []byte) (*api.Schema, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}

	s := api.Schema{
		Name:    doc.Name,
		Version: doc.Version,
	}
	if s.Name == "" {
		return nil, fmt.Errorf("schema has no name")
	}
	if s.Version == "" {
		s.Version = "v1"
	}

	for _, sd := range doc.Sections {
		sec := api.Section{
			ID:          sd.ID,
			Title:       sd.Title,
			Description: sd.Description,
			Icon:        sd.Icon,
		}
		for _, qd := range sd.Questions {
			q, err := qd.build()
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", sd.ID, err)
			}
			sec.Questions = append(sec.Questions, q)
		}
		s.Sections = append(s.Sections, sec)
	}

	for _, rd := range doc.Remap {
		m := api.FieldMapping{To: rd.To, Default: rd.Default}
		if rd.From != "" {
			ref, err := api.ParseFieldRef(rd.From)
			if err != nil {
				return nil, fmt.Errorf("remap %q: %w", rd.To, err)
			}
			m.From = ref
		}
		s.Remap = append(s.Remap, m)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

type schemaDoc struct {
	Name     string       `yaml:"name"`
	Version  string       `yaml:"version"`
	Sections []sectionDoc `yaml:"sections"`
	Remap    []remapDoc   `yaml:"remap"`
}

type sectionDoc struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Icon        string        `yaml:"icon"`
	Questions   []questionDoc `yaml:"questions"`
}

type questionDoc struct {
	ID               string       `yaml:"id"`
	Type             string       `yaml:"type"`
	Prompt           string       `yaml:"prompt"`
	Field            string       `yaml:"field"`
	Parse            string       `yaml:"parse"`
	Validate         string       `yaml:"validate"`
	Respond          string       `yaml:"respond"`
	RequireSelection bool         `yaml:"require_selection"`
	Options          []optionDoc  `yaml:"options"`
	Min              int          `yaml:"min"`
	Max              int          `yaml:"max"`
	Default          int          `yaml:"default"`
	Derived          []derivedDoc `yaml:"derived"`
}

type optionDoc struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type derivedDoc struct {
	Field   string `yaml:"field"`
	Default any    `yaml:"default"`
	Compute string `yaml:"compute"`
}

type remapDoc struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Default any    `yaml:"default"`
}

func (qd questionDoc) build() (api.Question, error) {
	q := api.Question{
		ID:               qd.ID,
		Type:             api.QuestionType(qd.Type),
		Prompt:           qd.Prompt,
		RequireSelection: qd.RequireSelection,
	}

	switch q.Type {
	case api.QuestionIntro, api.QuestionText, api.QuestionChoice,
		api.QuestionMultiselect, api.QuestionSlider, api.QuestionOutro:
	default:
		return q, fmt.Errorf("question %q: unknown type %q", qd.ID, qd.Type)
	}

	if qd.Field != "" {
		ref, err := api.ParseFieldRef(qd.Field)
		if err != nil {
			return q, fmt.Errorf("question %q: %w", qd.ID, err)
		}
		q.Field = &ref
	}

	for _, od := range qd.Options {
		q.Options = append(q.Options, api.Option{Value: od.Value, Label: od.Label})
	}
	if q.Type == api.QuestionSlider {
		q.Range = api.SliderRange{Min: qd.Min, Max: qd.Max, Default: qd.Default}
	}

	kindMu.RLock()
	defer kindMu.RUnlock()

	if qd.Parse != "" {
		fn, ok := parseKinds[qd.Parse]
		if !ok {
			return q, fmt.Errorf("question %q: unknown parse kind %q", qd.ID, qd.Parse)
		}
		q.Parse = fn
	}
	if qd.Validate != "" {
		fn, ok := validateKinds[qd.Validate]
		if !ok {
			return q, fmt.Errorf("question %q: unknown validate kind %q", qd.ID, qd.Validate)
		}
		q.Validate = fn
	}
	if qd.Respond != "" {
		q.Respond = respondTemplate(qd.Respond)
	}

	for _, dd := range qd.Derived {
		ref, err := api.ParseFieldRef(dd.Field)
		if err != nil {
			return q, fmt.Errorf("question %q derived: %w", qd.ID, err)
		}
		fn, ok := computeKinds[dd.Compute]
		if !ok {
			return q, fmt.Errorf("question %q: unknown compute kind %q", qd.ID, dd.Compute)
		}
		q.Derived = append(q.Derived, api.Derivation{Field: ref, Default: dd.Default, Compute: fn})
	}

	return q, nil
}

// respondTemplate renders a literal acknowledgement with "{value}"
// standing in for the stored answer.
func respondTemplate(tmpl string) api.RespondFunc {
	return func(value any, p api.Profile) string {
		return strings.ReplaceAll(tmpl, "{value}", fmt.Sprint(value))
	}
}

func rawString(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}
