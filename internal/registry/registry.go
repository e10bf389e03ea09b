// Package registry loads the declarative reporting-standard schemas and
// serves them as immutable configuration. The registry is built once at
// process start and passed explicitly to the stages that need it; it is
// safe for concurrent reads.
package registry

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/orestack/minereport/internal/model"
)

//go:embed standards.yaml
var standardsYAML []byte

// Registry holds every supported standard schema in declaration order.
type Registry struct {
	standards []*model.StandardSchema
	byID      map[model.StandardID]*model.StandardSchema
}

type standardsFile struct {
	Standards []*model.StandardSchema `yaml:"standards"`
}

// New parses the embedded standard definitions and indexes them.
func New() (*Registry, error) {
	return Parse(standardsYAML)
}

// Parse builds a Registry from raw YAML. Exposed for tests and for callers
// that ship alternative schema sets.
func Parse(data []byte) (*Registry, error) {
	var f standardsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: parse standards")
	}
	if len(f.Standards) == 0 {
		return nil, eris.New("registry: no standards defined")
	}

	r := &Registry{
		standards: f.Standards,
		byID:      make(map[model.StandardID]*model.StandardSchema, len(f.Standards)),
	}
	for _, s := range f.Standards {
		if s.ID == "" {
			return nil, eris.New("registry: standard with empty id")
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, eris.Errorf("registry: duplicate standard %q", s.ID)
		}
		s.Index()
		r.byID[s.ID] = s
	}
	return r, nil
}

// Default returns the first-declared standard, used as the fallback schema
// when detection comes back unknown.
func (r *Registry) Default() *model.StandardSchema {
	return r.standards[0]
}

// SchemaFor returns the schema for the given standard. Unrecognized ids
// (including "unknown") fall back to the default so callers that must
// proceed regardless can; the degradation is logged, not hidden.
func (r *Registry) SchemaFor(id model.StandardID) *model.StandardSchema {
	if s, ok := r.byID[id]; ok {
		return s
	}
	zap.L().Warn("registry: unknown standard, falling back to default",
		zap.String("standard", string(id)),
		zap.String("default", string(r.Default().ID)),
	)
	return r.Default()
}

// Lookup returns the schema for the given standard without the default
// fallback. Callers that want to surface "unknown" use this.
func (r *Registry) Lookup(id model.StandardID) (*model.StandardSchema, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// AllStandards returns every schema in declaration order.
func (r *Registry) AllStandards() []*model.StandardSchema {
	return r.standards
}
