package model

import (
	"time"
)

// ReportStatus represents the lifecycle state of a canonical report.
type ReportStatus string

const (
	ReportStatusParsed      ReportStatus = "parsed"
	ReportStatusNeedsReview ReportStatus = "needs_review"
	ReportStatusReady       ReportStatus = "ready"
	// Audited is assigned by the external audit workflow, never by this
	// process; it is honored here only as a frozen state.
	ReportStatusAudited  ReportStatus = "audited"
	ReportStatusExported ReportStatus = "exported"
)

// Mutable reports whether the report may still be edited in place.
// Audited and exported reports are frozen; edits cut a new version.
func (s ReportStatus) Mutable() bool {
	return s != ReportStatusAudited && s != ReportStatusExported
}

// Commodity is the fixed vocabulary of supported commodities.
type Commodity string

const (
	CommodityGold      Commodity = "gold"
	CommodityCopper    Commodity = "copper"
	CommodityIron      Commodity = "iron"
	CommodityLithium   Commodity = "lithium"
	CommodityNickel    Commodity = "nickel"
	CommodityZinc      Commodity = "zinc"
	CommoditySilver    Commodity = "silver"
	CommodityBauxite   Commodity = "bauxite"
	CommodityPhosphate Commodity = "phosphate"
	CommodityUnknown   Commodity = "unknown"
)

// ParseCommodity maps free text onto the commodity vocabulary.
// Unrecognized input yields CommodityUnknown, never an error.
func ParseCommodity(s string) Commodity {
	switch normalizeToken(s) {
	case "gold", "au", "ouro":
		return CommodityGold
	case "copper", "cu", "cobre":
		return CommodityCopper
	case "iron", "fe", "ferro", "iron ore":
		return CommodityIron
	case "lithium", "li", "litio":
		return CommodityLithium
	case "nickel", "niquel":
		return CommodityNickel
	case "zinc", "zn", "zinco":
		return CommodityZinc
	case "silver", "ag", "prata":
		return CommoditySilver
	case "bauxite", "bauxita":
		return CommodityBauxite
	case "phosphate", "fosfato":
		return CommodityPhosphate
	default:
		return CommodityUnknown
	}
}

// Classification is a resource or reserve confidence category.
type Classification string

const (
	ClassMeasured  Classification = "measured"
	ClassIndicated Classification = "indicated"
	ClassInferred  Classification = "inferred"
	ClassProved    Classification = "proved"
	ClassProbable  Classification = "probable"
)

// Location identifies where a project sits. Lat/Lon are WGS84 degrees.
type Location struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Municipality string  `json:"municipality,omitempty"`
	Region       string  `json:"region,omitempty"`
	Country      string  `json:"country,omitempty"`
}

// Valid reports whether the coordinates fall in the WGS84 envelope.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// ResourceBucket is one tonnage/grade estimate tagged with a classification.
// ContainedMetal is derived (tonnage x grade, in grams) and is recomputed by
// the aggregator on every pass; it is never edited independently.
type ResourceBucket struct {
	Classification Classification `json:"classification"`
	Tonnage        float64        `json:"tonnage"` // metric tonnes
	Grade          float64        `json:"grade"`   // grams per tonne
	CutoffGrade    float64        `json:"cutoff_grade,omitempty"`
	ContainedMetal float64        `json:"contained_metal"` // grams, derived
	Confidence     float64        `json:"confidence"`
	SourceText     string         `json:"source_text,omitempty"`
}

// DrillingSummary aggregates drilling campaign figures.
type DrillingSummary struct {
	TotalHoles   *FieldValue `json:"total_holes,omitempty"`
	TotalMeters  *FieldValue `json:"total_meters,omitempty"`
	AverageDepth *FieldValue `json:"average_depth,omitempty"`
}

// SamplingSummary aggregates sampling and QA/QC figures.
type SamplingSummary struct {
	TotalSamples        *FieldValue `json:"total_samples,omitempty"`
	SampleIntervalM     *FieldValue `json:"sample_interval_m,omitempty"`
	RecoveryRatePercent *FieldValue `json:"recovery_rate_percent,omitempty"`
}

// CompetentPerson identifies the person signing off the estimates.
// The role label differs by standard (Competent Person vs Qualified Person).
type CompetentPerson struct {
	Name           string `json:"name,omitempty"`
	Affiliation    string `json:"affiliation,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Role           string `json:"role,omitempty"`
	Uncertain      bool   `json:"uncertain,omitempty"`
}

// SectionKey identifies a narrative section of the report.
type SectionKey string

// SectionContent is the extracted narrative for one section.
type SectionContent struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Uncertain bool   `json:"uncertain,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// ParseSummary describes how the pipeline scored a parse, kept with the
// report for reviewers.
type ParseSummary struct {
	TotalFields     int      `json:"total_fields"`
	UncertainFields int      `json:"uncertain_fields"`
	DocumentType    string   `json:"document_type"`
	DetectionScore  int      `json:"detection_score"`
	Warnings        []string `json:"warnings,omitempty"`
}

// CanonicalReport is the single internal, standard-agnostic representation
// of a mining technical report. It is created once per upload, mutated only
// by the pipeline stages in sequence, and frozen once audited or exported.
type CanonicalReport struct {
	ID                string                        `json:"id"`
	Version           int                           `json:"version"`
	ProjectName       *FieldValue                   `json:"project_name,omitempty"`
	Company           *FieldValue                   `json:"company,omitempty"`
	EffectiveDate     *FieldValue                   `json:"effective_date,omitempty"`
	Location          Location                      `json:"location"`
	Commodity         Commodity                     `json:"commodity"`
	ResourceEstimates []ResourceBucket              `json:"resource_estimates,omitempty"`
	Drilling          DrillingSummary               `json:"drilling"`
	Sampling          SamplingSummary               `json:"sampling"`
	CompetentPersons  []CompetentPerson             `json:"competent_persons,omitempty"`
	StandardDetected  StandardID                    `json:"standard_detected"`
	Sections          map[SectionKey]SectionContent `json:"sections,omitempty"`
	Fields            map[string]*FieldValue        `json:"fields,omitempty"`
	TotalTonnage      *float64                      `json:"total_tonnage,omitempty"`
	WeightedAvgGrade  *float64                      `json:"weighted_avg_grade,omitempty"`
	Status            ReportStatus                  `json:"status"`
	Summary           ParseSummary                  `json:"summary"`
	SourceFile        string                        `json:"source_file,omitempty"`
	CreatedAt         time.Time                     `json:"created_at"`
	UpdatedAt         time.Time                     `json:"updated_at"`
}

// Field returns the mapped value for a canonical key, or nil.
func (r *CanonicalReport) Field(key string) *FieldValue {
	return r.Fields[key]
}

// SetField stores a new FieldValue under a canonical key. Existing values
// are replaced, never mutated, so prior extractions stay auditable in the
// versioned history.
func (r *CanonicalReport) SetField(key string, v *FieldValue) {
	if r.Fields == nil {
		r.Fields = make(map[string]*FieldValue)
	}
	r.Fields[key] = v
}

// Clone returns a deep copy of the report, used when a new version is cut.
func (r *CanonicalReport) Clone() *CanonicalReport {
	cp := *r
	cp.ResourceEstimates = append([]ResourceBucket(nil), r.ResourceEstimates...)
	cp.CompetentPersons = append([]CompetentPerson(nil), r.CompetentPersons...)
	cp.Summary.Warnings = append([]string(nil), r.Summary.Warnings...)
	if r.Sections != nil {
		cp.Sections = make(map[SectionKey]SectionContent, len(r.Sections))
		for k, v := range r.Sections {
			cp.Sections[k] = v
		}
	}
	if r.Fields != nil {
		cp.Fields = make(map[string]*FieldValue, len(r.Fields))
		for k, v := range r.Fields {
			fv := *v
			cp.Fields[k] = &fv
		}
	}
	if r.TotalTonnage != nil {
		t := *r.TotalTonnage
		cp.TotalTonnage = &t
	}
	if r.WeightedAvgGrade != nil {
		g := *r.WeightedAvgGrade
		cp.WeightedAvgGrade = &g
	}
	return &cp
}
