package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
)

func jorcSchema(t *testing.T) *model.StandardSchema {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	schema, ok := reg.Lookup(model.StandardJORC)
	require.True(t, ok)
	return schema
}

// cleanReport builds a report with every JORC-required field present at
// full confidence and nothing uncertain.
func cleanReport(t *testing.T, schema *model.StandardSchema) *model.CanonicalReport {
	t.Helper()
	report := &model.CanonicalReport{
		ID:               "r-1",
		Version:          1,
		Status:           model.ReportStatusParsed,
		StandardDetected: schema.ID,
		CompetentPersons: []model.CompetentPerson{{Name: "John Smith", Role: "Competent Person"}},
	}
	for _, def := range schema.Required() {
		report.SetField(def.CanonicalKey, model.TextValue("value", "src", model.ConfidenceExact))
	}
	return report
}

func TestRouteReady(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)

	res := Route(report, schema, DefaultPolicy())

	assert.Equal(t, model.ReportStatusReady, res.Status)
	assert.Empty(t, res.Tickets)
}

func TestRouteMissingRequired(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.SetField("project_name", model.MissingValue(model.FieldTypeText))

	res := Route(report, schema, DefaultPolicy())

	assert.Equal(t, model.ReportStatusNeedsReview, res.Status)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, "project_name", res.Tickets[0].FieldKey)
	assert.Equal(t, model.TicketReasonMissingRequired, res.Tickets[0].Reason)
}

func TestRouteLowConfidence(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.SetField("cutoff_grade", model.NumberValue(0.5, "g/t", "src", model.ConfidenceFreeText))

	res := Route(report, schema, DefaultPolicy())

	assert.Equal(t, model.ReportStatusNeedsReview, res.Status)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, "cutoff_grade", res.Tickets[0].FieldKey)
	assert.Equal(t, model.TicketReasonLowConfidence, res.Tickets[0].Reason)
}

func TestRouteThresholdBoundary(t *testing.T) {
	schema := jorcSchema(t)

	// Fuzzy confidence (0.6) clears the default threshold (0.5).
	report := cleanReport(t, schema)
	report.SetField("cutoff_grade", model.NumberValue(0.5, "g/t", "src", model.ConfidenceFuzzy))
	res := Route(report, schema, DefaultPolicy())
	assert.Equal(t, model.ReportStatusReady, res.Status)

	// A stricter policy flags the same field.
	res = Route(report, schema, Policy{Threshold: 0.7})
	assert.Equal(t, model.ReportStatusNeedsReview, res.Status)
}

func TestRouteUncertainBucketsPersonsSections(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.ResourceEstimates = []model.ResourceBucket{
		{Classification: model.ClassInferred, Tonnage: 100, Grade: 1, Confidence: model.ConfidenceFreeText},
	}
	report.CompetentPersons = []model.CompetentPerson{{Role: "Competent Person", Uncertain: true}}
	report.Sections = map[model.SectionKey]model.SectionContent{
		"main": {Title: "Main Content", Uncertain: true, Hint: "no structured sections identified"},
	}

	res := Route(report, schema, DefaultPolicy())

	assert.Equal(t, model.ReportStatusNeedsReview, res.Status)
	keys := make(map[string]model.TicketReason, len(res.Tickets))
	for _, tk := range res.Tickets {
		keys[tk.FieldKey] = tk.Reason
	}
	assert.Equal(t, model.TicketReasonLowConfidence, keys["resource_estimates.inferred"])
	assert.Equal(t, model.TicketReasonUncertainValue, keys["competent_person"])
	assert.Equal(t, model.TicketReasonUncertainValue, keys["sections.main"])
}

func TestRouteExtraRequired(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)

	res := Route(report, schema, Policy{Threshold: 0.5, ExtraRequired: []string{"cutoff_grade"}})

	assert.Equal(t, model.ReportStatusNeedsReview, res.Status)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, "cutoff_grade", res.Tickets[0].FieldKey)
}

func TestResolveClearsTicketAndBumpsVersion(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.SetField("project_name", model.MissingValue(model.FieldTypeText))

	resolved, res, err := Resolve(report, schema, DefaultPolicy(), "project_name",
		model.TextValue("Boddington South", "reviewer", model.ConfidenceExact))
	require.NoError(t, err)

	assert.Equal(t, 2, resolved.Version)
	assert.Equal(t, model.ReportStatusReady, resolved.Status)
	assert.Empty(t, res.Tickets)
	assert.Equal(t, "Boddington South", resolved.Field("project_name").Text)
	require.NotNil(t, resolved.ProjectName)
	assert.Equal(t, "Boddington South", resolved.ProjectName.Text)

	// The input version is untouched for audit.
	assert.Equal(t, 1, report.Version)
	assert.True(t, report.Field("project_name").IsMissing())
}

func TestResolveBucketReaggregates(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.ResourceEstimates = []model.ResourceBucket{
		{Classification: model.ClassMeasured, Tonnage: 1000, Grade: 2, Confidence: model.ConfidenceFreeText},
	}

	resolved, res, err := Resolve(report, schema, DefaultPolicy(), "resource_estimates.measured",
		model.NumberValue(1000, "t", "reviewer", model.ConfidenceExact))
	require.NoError(t, err)

	assert.Equal(t, model.ReportStatusReady, resolved.Status)
	assert.Empty(t, res.Tickets)
	assert.Equal(t, model.ConfidenceExact, resolved.ResourceEstimates[0].Confidence)
	assert.InDelta(t, 2000, resolved.ResourceEstimates[0].ContainedMetal, 1e-9)
	require.NotNil(t, resolved.TotalTonnage)
	assert.InDelta(t, 1000, *resolved.TotalTonnage, 1e-9)
}

func TestResolveFrozenReport(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)
	report.Status = model.ReportStatusExported

	_, _, err := Resolve(report, schema, DefaultPolicy(), "project_name",
		model.TextValue("x", "reviewer", model.ConfidenceExact))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")
}

func TestResolveNilValue(t *testing.T) {
	schema := jorcSchema(t)
	report := cleanReport(t, schema)

	_, _, err := Resolve(report, schema, DefaultPolicy(), "project_name", nil)
	assert.Error(t, err)
}
