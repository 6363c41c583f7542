package flow

import (
	"fmt"
	"sync"

	"github.com/petrijr/onboard/pkg/api"
)

type schemaRegistry struct {
	mu     sync.RWMutex
	byName map[string]map[string]*api.Schema
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		byName: make(map[string]map[string]*api.Schema),
	}
}

func (r *schemaRegistry) Register(s *api.Schema) error {
	if s.Version == "" {
		s.Version = "v1"
	}
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.byName[s.Name]
	if versions == nil {
		versions = make(map[string]*api.Schema)
		r.byName[s.Name] = versions
	}

	if _, exists := versions[s.Version]; exists {
		return fmt.Errorf("schema %q version %q already registered", s.Name, s.Version)
	}

	versions[s.Version] = s
	return nil
}

func (r *schemaRegistry) Get(name, version string) (*api.Schema, error) {
	if version == "" {
		version = "v1"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.byName[name]
	if versions == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrSchemaNotFound, name)
	}
	s, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s version %s", api.ErrSchemaNotFound, name, version)
	}
	return s, nil
}
