// Package review routes normalized reports to "ready" or "needs_review"
// based on per-field confidence and missing required fields, and applies
// reviewer resolutions.
package review

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/aggregate"
	"github.com/orestack/minereport/internal/model"
)

// DefaultThreshold is the confidence floor below which any field is
// ticketed for human confirmation.
const DefaultThreshold = 0.5

// Policy configures routing per standard; review burden differs by
// reporting regime.
type Policy struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	// ExtraRequired lists canonical keys required beyond the schema's own
	// required flags.
	ExtraRequired []string `yaml:"extra_required" mapstructure:"extra_required"`
}

// DefaultPolicy returns the baseline routing policy.
func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

// Route inspects every mapped field, bucket, person, and section of the
// report. Status is needs_review iff at least one ticket exists.
func Route(report *model.CanonicalReport, schema *model.StandardSchema, policy Policy) model.RouteResult {
	if policy.Threshold == 0 {
		policy.Threshold = DefaultThreshold
	}

	var tickets []model.ReviewTicket
	add := func(fieldKey string, reason model.TicketReason, hint string) {
		tickets = append(tickets, model.ReviewTicket{
			ID:        uuid.New().String(),
			ReportID:  report.ID,
			FieldKey:  fieldKey,
			Reason:    reason,
			Hint:      hint,
			CreatedAt: time.Now().UTC(),
		})
	}

	required := make(map[string]bool)
	for _, def := range schema.Required() {
		required[def.CanonicalKey] = true
	}
	for _, key := range policy.ExtraRequired {
		required[key] = true
	}

	for key := range required {
		v := report.Field(key)
		if v.IsMissing() {
			add(key, model.TicketReasonMissingRequired, "required by "+schema.Name)
		}
	}
	for key, v := range report.Fields {
		if v.IsMissing() {
			continue // already ticketed above if required
		}
		if v.Confidence < policy.Threshold {
			add(key, model.TicketReasonLowConfidence, "confirm value extracted from free text")
		}
	}
	for _, b := range report.ResourceEstimates {
		if b.Confidence < policy.Threshold {
			add(bucketFieldKey(b), model.TicketReasonLowConfidence, "confirm tonnage and grade")
		}
	}
	for i, p := range report.CompetentPersons {
		if p.Uncertain {
			add(personFieldKey(i), model.TicketReasonUncertainValue, schema.PersonRole+" not clearly identified")
		}
	}
	for key, s := range report.Sections {
		if s.Uncertain {
			add("sections."+string(key), model.TicketReasonUncertainValue, s.Hint)
		}
	}

	status := model.ReportStatusReady
	if len(tickets) > 0 {
		status = model.ReportStatusNeedsReview
	}

	zap.L().Info("review: report routed",
		zap.String("report", report.ID),
		zap.String("status", string(status)),
		zap.Int("tickets", len(tickets)),
	)
	return model.RouteResult{Status: status, Tickets: tickets}
}

// Resolve applies a reviewer's confirmed value for a field: a fresh
// FieldValue at full confidence replaces the uncertain one, then the
// aggregator and router re-run so the status reflects the edit. The
// returned report is a new version; the input is left intact for audit.
func Resolve(report *model.CanonicalReport, schema *model.StandardSchema, policy Policy, fieldKey string, value *model.FieldValue) (*model.CanonicalReport, model.RouteResult, error) {
	if !report.Status.Mutable() {
		return nil, model.RouteResult{}, eris.Errorf("review: report %s is %s and frozen", report.ID, report.Status)
	}
	if value == nil {
		return nil, model.RouteResult{}, eris.New("review: nil value")
	}

	next := report.Clone()
	next.Version = report.Version + 1
	next.UpdatedAt = time.Now().UTC()

	confirmed := *value
	confirmed.Confidence = model.ConfidenceExact
	next.SetField(fieldKey, &confirmed)
	resolveStructured(next, fieldKey, &confirmed)

	next = aggregate.Run(next)
	result := Route(next, schema, policy)
	next.Status = result.Status
	return next, result, nil
}

// resolveStructured mirrors a confirmed field back into the typed report
// attributes and clears matching uncertainty flags.
func resolveStructured(report *model.CanonicalReport, fieldKey string, v *model.FieldValue) {
	switch fieldKey {
	case "project_name":
		report.ProjectName = v
	case "company":
		report.Company = v
	case "effective_date":
		report.EffectiveDate = v
	case "commodity":
		report.Commodity = model.ParseCommodity(v.Text)
	case "latitude":
		report.Location.Lat = v.Number
	case "longitude":
		report.Location.Lon = v.Number
	}

	for i := range report.ResourceEstimates {
		if fieldKey == bucketFieldKey(report.ResourceEstimates[i]) {
			report.ResourceEstimates[i].Confidence = model.ConfidenceExact
		}
	}
	for i := range report.CompetentPersons {
		if fieldKey == personFieldKey(i) {
			report.CompetentPersons[i].Uncertain = false
			if v.Text != "" {
				report.CompetentPersons[i].Name = v.Text
			}
		}
	}
	if key, ok := sectionKeyFromField(fieldKey); ok {
		if s, present := report.Sections[key]; present {
			s.Uncertain = false
			s.Hint = ""
			if v.Text != "" {
				s.Text = v.Text
			}
			report.Sections[key] = s
		}
	}
}

func bucketFieldKey(b model.ResourceBucket) string {
	return "resource_estimates." + string(b.Classification)
}

func personFieldKey(i int) string {
	if i == 0 {
		return "competent_person"
	}
	return "competent_person." + strconv.Itoa(i)
}

func sectionKeyFromField(fieldKey string) (model.SectionKey, bool) {
	const prefix = "sections."
	if len(fieldKey) > len(prefix) && fieldKey[:len(prefix)] == prefix {
		return model.SectionKey(fieldKey[len(prefix):]), true
	}
	return "", false
}
