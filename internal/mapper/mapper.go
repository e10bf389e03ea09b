// Package mapper normalizes extractor output into the canonical report
// using the detected standard's alias tables. Mapping is deterministic and
// side-effect free: identical input always yields the identical report.
package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/units"
)

// matchKind records how an alias lookup landed, which decides confidence.
type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchFuzzy
	matchFreeText
)

func (k matchKind) confidence() float64 {
	switch k {
	case matchExact:
		return model.ConfidenceExact
	case matchFuzzy:
		return model.ConfidenceFuzzy
	case matchFreeText:
		return model.ConfidenceFreeText
	default:
		return model.ConfidenceMissing
	}
}

// rawMatch is one located candidate value before typing.
type rawMatch struct {
	value  string
	unit   string // explicit unit from the source (header parens), if any
	kind   matchKind
	source string
}

// Normalize maps an extraction into the canonical schema for the given
// standard. Required fields that cannot be found are recorded at zero
// confidence; optional misses are omitted.
func Normalize(extraction *model.ExtractionResult, schema *model.StandardSchema, detection int) *model.CanonicalReport {
	report := &model.CanonicalReport{
		Version:          1,
		Commodity:        model.CommodityUnknown,
		StandardDetected: schema.ID,
		Status:           model.ReportStatusParsed,
		SourceFile:       extraction.FileName,
		Summary:          model.ParseSummary{DetectionScore: detection},
	}

	kv := collectLabeledValues(extraction)

	for i := range schema.Fields {
		def := &schema.Fields[i]
		m := findField(def, kv, extraction.RawText)
		if m.kind == matchNone {
			if def.Required {
				report.SetField(def.CanonicalKey, model.MissingValue(def.Type))
			}
			continue
		}

		fv := typeValue(def, m)
		if fv == nil {
			if def.Required {
				report.SetField(def.CanonicalKey, model.MissingValue(def.Type))
			}
			continue
		}
		report.SetField(def.CanonicalKey, fv)
	}

	mapAssayColumns(report, extraction)
	applyScalars(report, schema)
	report.ResourceEstimates = extractBuckets(extraction)
	report.CompetentPersons = extractPersons(extraction.RawText, schema)
	report.Sections = canonicalSections(extraction)

	summarize(report)

	zap.L().Debug("mapper: report normalized",
		zap.String("standard", string(schema.ID)),
		zap.Int("fields", len(report.Fields)),
		zap.Int("buckets", len(report.ResourceEstimates)),
	)
	return report
}

// labeledValue is one label/value pair harvested from tables or prose.
type labeledValue struct {
	label  string // normalized
	value  string
	unit   string
	source string
}

// collectLabeledValues flattens every place a labeled scalar can hide:
// two-column key/value tables, wide tables (header row + first data row),
// and "Label: value" lines in prose.
func collectLabeledValues(extraction *model.ExtractionResult) []labeledValue {
	var out []labeledValue

	for _, t := range extraction.Tables {
		if len(t.Headers) == 2 && len(t.Rows) > 0 && !looksNumeric(t.Headers[1]) {
			// Key/value layout: each row is a pair.
			for _, row := range t.Rows {
				if len(row) < 2 {
					continue
				}
				label, unit := SplitHeaderUnit(row[0])
				out = append(out, labeledValue{
					label:  normalizeLabel(label),
					value:  row[1],
					unit:   unit,
					source: row[0] + ": " + row[1],
				})
			}
			continue
		}
		// Wide layout: headers name the fields, first data row carries the
		// values.
		if len(t.Rows) == 0 {
			continue
		}
		first := t.Rows[0]
		for i, h := range t.Headers {
			if i >= len(first) || first[i] == "" {
				continue
			}
			label, unit := SplitHeaderUnit(h)
			out = append(out, labeledValue{
				label:  normalizeLabel(label),
				value:  first[i],
				unit:   unit,
				source: h + ": " + first[i],
			})
		}
	}

	for _, line := range strings.Split(extraction.RawText, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok || len(value) > 200 {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		l, unit := SplitHeaderUnit(label)
		out = append(out, labeledValue{
			label:  normalizeLabel(l),
			value:  value,
			unit:   unit,
			source: strings.TrimSpace(line),
		})
	}

	return out
}

// findField looks a definition up against the harvested label/value pairs:
// exact label or alias equality first, then containment either way, then a
// free-text sweep of the raw text.
func findField(def *model.FieldDefinition, kv []labeledValue, rawText string) rawMatch {
	labels := make([]string, 0, len(def.Aliases)+1)
	labels = append(labels, normalizeLabel(def.Label))
	for _, a := range def.Aliases {
		labels = append(labels, normalizeLabel(a))
	}

	for _, pair := range kv {
		for _, l := range labels {
			if pair.label == l {
				return rawMatch{value: pair.value, unit: pair.unit, kind: matchExact, source: pair.source}
			}
		}
	}
	for _, pair := range kv {
		for _, l := range labels {
			if l == "" || pair.label == "" {
				continue
			}
			if strings.Contains(pair.label, l) || strings.Contains(l, pair.label) {
				return rawMatch{value: pair.value, unit: pair.unit, kind: matchFuzzy, source: pair.source}
			}
		}
	}

	// Last resort: scan prose for "<label> <value>" without the colon that
	// collectLabeledValues relies on.
	if def.Type == model.FieldTypeNumber {
		for _, l := range labels {
			re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(l) + `[^\d\n-]{0,20}(-?\d[\d.,]*)`)
			if err != nil {
				continue
			}
			if m := re.FindStringSubmatch(rawText); m != nil {
				return rawMatch{value: m[1], kind: matchFreeText, source: strings.TrimSpace(m[0])}
			}
		}
	}
	return rawMatch{kind: matchNone}
}

// typeValue parses the raw match against the definition's declared type and
// converts numeric values into the canonical unit. An unparsable value is
// treated as no match.
func typeValue(def *model.FieldDefinition, m rawMatch) *model.FieldValue {
	conf := m.kind.confidence()
	switch def.Type {
	case model.FieldTypeNumber:
		v, err := ParseNumber(m.value)
		if err != nil {
			return nil
		}
		unit := m.unit
		if unit == "" {
			unit = def.Unit
		}
		if unit == "" {
			return model.NumberValue(v, "", m.source, conf)
		}
		// "%" on a percent-typed field is a ratio, not an assay grade; it
		// never canonicalizes to g/t.
		if unit == "%" && def.Unit == "%" {
			return model.NumberValue(v, "%", m.source, conf)
		}
		canonical, canonUnit, err := units.ToCanonical(v, unit)
		if err != nil {
			// Unknown unit text in the source: keep the raw number but
			// degrade to free-text confidence so a reviewer looks at it.
			zap.L().Warn("mapper: unconvertible unit",
				zap.String("field", def.CanonicalKey),
				zap.String("unit", unit),
			)
			return model.NumberValue(v, unit, m.source, model.ConfidenceFreeText)
		}
		return model.NumberValue(canonical, canonUnit, m.source, conf)

	case model.FieldTypeDate:
		t, err := ParseDate(m.value)
		if err != nil {
			return nil
		}
		return model.DateValue(t, m.source, conf)

	case model.FieldTypeEnum, model.FieldTypeText:
		return model.TextValue(strings.TrimSpace(m.value), m.source, conf)
	}
	return nil
}

// applyScalars lifts well-known canonical keys out of the field bag into
// the report's typed attributes.
func applyScalars(report *model.CanonicalReport, schema *model.StandardSchema) {
	report.ProjectName = presentField(report, "project_name")
	report.Company = presentField(report, "company")
	report.EffectiveDate = presentField(report, "effective_date")

	if lat, lon := presentField(report, "latitude"), presentField(report, "longitude"); lat != nil && lon != nil {
		loc := model.Location{Lat: lat.Number, Lon: lon.Number}
		if loc.Valid() {
			report.Location = loc
		} else {
			report.Summary.Warnings = append(report.Summary.Warnings,
				fmt.Sprintf("coordinates out of range: %.4f, %.4f", loc.Lat, loc.Lon))
		}
	}
	if m := presentField(report, "municipality"); m != nil {
		report.Location.Municipality = m.Text
	}
	if r := presentField(report, "region"); r != nil {
		report.Location.Region = r.Text
	}
	if c := presentField(report, "country"); c != nil {
		report.Location.Country = c.Text
	}

	if c := presentField(report, "commodity"); c != nil {
		report.Commodity = model.ParseCommodity(c.Text)
	}

	report.Drilling = model.DrillingSummary{
		TotalHoles:   presentField(report, "total_holes"),
		TotalMeters:  presentField(report, "total_meters"),
		AverageDepth: presentField(report, "average_depth"),
	}
	report.Sampling = model.SamplingSummary{
		TotalSamples:        presentField(report, "total_samples"),
		SampleIntervalM:     presentField(report, "sample_interval_m"),
		RecoveryRatePercent: presentField(report, "recovery_rate_percent"),
	}
}

// presentField returns the mapped value only when something was found.
func presentField(report *model.CanonicalReport, key string) *model.FieldValue {
	if v := report.Field(key); !v.IsMissing() {
		return v
	}
	return nil
}

// summarize counts mapped and uncertain fields for the parse summary.
func summarize(report *model.CanonicalReport) {
	total, uncertain := 0, 0
	for _, v := range report.Fields {
		total++
		if v.Confidence < model.ConfidenceFuzzy {
			uncertain++
		}
	}
	for _, b := range report.ResourceEstimates {
		total++
		if b.Confidence < model.ConfidenceFuzzy {
			uncertain++
		}
	}
	for _, p := range report.CompetentPersons {
		total++
		if p.Uncertain {
			uncertain++
		}
	}
	report.Summary.TotalFields = total
	report.Summary.UncertainFields = uncertain
	if report.Summary.DetectionScore == 0 {
		report.Summary.Warnings = append(report.Summary.Warnings, "reporting standard not detected")
	}
}

// looksNumeric reports whether a header cell is itself a number, which
// means the table has no header row worth trusting.
func looksNumeric(s string) bool {
	_, err := ParseNumber(s)
	return err == nil && numberRe.FindString(s) == strings.TrimSpace(s)
}
