package model

import (
	"strings"
	"time"
)

// FieldType tags the parsed representation held by a FieldValue.
type FieldType string

const (
	FieldTypeNumber FieldType = "number"
	FieldTypeText   FieldType = "text"
	FieldTypeDate   FieldType = "date"
	FieldTypeEnum   FieldType = "enum"
)

// Mapping confidence levels assigned by the normalizer. An exact alias hit
// with a well-typed value gets full confidence; values recovered from free
// text without a located label trail well behind.
const (
	ConfidenceExact    = 1.0
	ConfidenceFuzzy    = 0.6
	ConfidenceFreeText = 0.3
	ConfidenceMissing  = 0.0
)

// FieldValue wraps one extracted scalar with its provenance. Values are
// immutable once downstream aggregation has run; re-extraction or a review
// edit produces a new FieldValue rather than mutating this one.
type FieldValue struct {
	Type       FieldType  `json:"type"`
	Number     float64    `json:"number,omitempty"`
	Text       string     `json:"text,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	SourceText string     `json:"source_text,omitempty"`
	Confidence float64    `json:"confidence"`
}

// NumberValue builds a numeric FieldValue.
func NumberValue(v float64, unit, source string, confidence float64) *FieldValue {
	return &FieldValue{Type: FieldTypeNumber, Number: v, Unit: unit, SourceText: source, Confidence: confidence}
}

// TextValue builds a text FieldValue.
func TextValue(v, source string, confidence float64) *FieldValue {
	return &FieldValue{Type: FieldTypeText, Text: v, SourceText: source, Confidence: confidence}
}

// DateValue builds a date FieldValue.
func DateValue(v time.Time, source string, confidence float64) *FieldValue {
	return &FieldValue{Type: FieldTypeDate, Date: &v, SourceText: source, Confidence: confidence}
}

// MissingValue builds the zero-confidence placeholder recorded for a
// required field that could not be found.
func MissingValue(t FieldType) *FieldValue {
	return &FieldValue{Type: t, Confidence: ConfidenceMissing}
}

// IsMissing reports whether the value is absent or the zero-confidence
// placeholder.
func (v *FieldValue) IsMissing() bool {
	return v == nil || v.Confidence == ConfidenceMissing
}

// normalizeToken lowercases and collapses interior whitespace for vocabulary
// lookups.
func normalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
