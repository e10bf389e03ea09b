package model

// StandardID names a supported reporting standard family.
type StandardID string

const (
	StandardJORC    StandardID = "jorc"
	StandardNI43101 StandardID = "ni43101"
	StandardCBRR    StandardID = "cbrr"
	StandardPERC    StandardID = "perc"
	StandardSAMREC  StandardID = "samrec"
	StandardUnknown StandardID = "unknown"
)

// FieldDefinition declares one field of a standard's schema: its canonical
// key, display label, whether the standard requires it, the label aliases it
// may appear under in source documents, its declared unit, and its type tag.
type FieldDefinition struct {
	CanonicalKey string    `json:"canonical_key" yaml:"key"`
	Label        string    `json:"label" yaml:"label"`
	Required     bool      `json:"required" yaml:"required"`
	Aliases      []string  `json:"aliases,omitempty" yaml:"aliases"`
	Unit         string    `json:"unit,omitempty" yaml:"unit"`
	Type         FieldType `json:"type" yaml:"type"`
	Section      string    `json:"section,omitempty" yaml:"section"`
}

// StandardSchema is a read-only registry entry describing one standard:
// ordered field definitions plus the lexical signature used by detection
// and the terminology the standard uses for classifications and the
// signing person. Loaded once at process start and never mutated.
type StandardSchema struct {
	ID                   StandardID                `json:"id" yaml:"id"`
	Name                 string                    `json:"name" yaml:"name"`
	RegulatoryBody       string                    `json:"regulatory_body,omitempty" yaml:"regulatory_body"`
	PersonRole           string                    `json:"person_role" yaml:"person_role"`
	Signatures           []string                  `json:"signatures" yaml:"signatures"`
	ClassificationLabels map[Classification]string `json:"classification_labels,omitempty" yaml:"classification_labels"`
	Fields               []FieldDefinition         `json:"fields" yaml:"fields"`

	byKey    map[string]*FieldDefinition
	required []*FieldDefinition
}

// Index builds the lookup tables. Called once by the registry after load.
func (s *StandardSchema) Index() {
	s.byKey = make(map[string]*FieldDefinition, len(s.Fields))
	s.required = nil
	for i := range s.Fields {
		f := &s.Fields[i]
		s.byKey[f.CanonicalKey] = f
		if f.Required {
			s.required = append(s.required, f)
		}
	}
}

// ByKey returns the field definition for a canonical key, or nil.
func (s *StandardSchema) ByKey(key string) *FieldDefinition {
	return s.byKey[key]
}

// Required returns the standard's required field definitions in order.
func (s *StandardSchema) Required() []*FieldDefinition {
	return s.required
}

// ClassificationLabel returns the standard's display label for a
// classification, falling back to the canonical name.
func (s *StandardSchema) ClassificationLabel(c Classification) string {
	if l, ok := s.ClassificationLabels[c]; ok {
		return l
	}
	return string(c)
}
