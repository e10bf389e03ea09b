// Package pipeline orchestrates ingestion of one uploaded document:
// extraction, standard detection, normalization, aggregation, and review
// routing, with the result persisted after every stage boundary.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/aggregate"
	"github.com/orestack/minereport/internal/config"
	"github.com/orestack/minereport/internal/detect"
	"github.com/orestack/minereport/internal/extract"
	"github.com/orestack/minereport/internal/mapper"
	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
	"github.com/orestack/minereport/internal/review"
	"github.com/orestack/minereport/internal/store"
)

// ErrNotTechnicalReport is returned when the uploaded document does not read
// like a mining technical report at all.
var ErrNotTechnicalReport = eris.New("pipeline: document is not a technical report")

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	registry *registry.Registry
	extract  *extract.Service
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, reg *registry.Registry, ex *extract.Service) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		registry: reg,
		extract:  ex,
	}
}

// Ingest runs the full pipeline for a single uploaded file and returns the
// persisted report together with its open review tickets. The failure of one
// upload never affects another; every error is scoped to this call.
func (p *Pipeline) Ingest(ctx context.Context, fileName string, data []byte, declaredType string) (*model.CanonicalReport, []model.ReviewTicket, error) {
	log := zap.L().With(zap.String("file", fileName))
	log.Info("pipeline: ingesting upload", zap.Int("bytes", len(data)))

	extraction, err := p.extract.Extract(ctx, fileName, data, declaredType)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: extract")
	}

	docType := detect.ClassifyExtraction(extraction)
	if docType != model.DocTypeTechnicalReport {
		log.Warn("pipeline: rejected upload", zap.String("document_type", string(docType)))
		return nil, nil, eris.Wrapf(ErrNotTechnicalReport, "%s classified as %s", fileName, docType)
	}

	detection := detect.Detect(extraction, p.registry)
	schema := p.registry.SchemaFor(detection.StandardID)

	report := mapper.Normalize(extraction, schema, detection.Score)
	report.ID = uuid.New().String()
	report.Summary.DocumentType = string(docType)
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	report = aggregate.Run(report)

	policy := p.cfg.Review.PolicyFor(string(schema.ID))
	route := review.Route(report, schema, policy)
	report.Status = route.Status
	for i := range route.Tickets {
		route.Tickets[i].ReportID = report.ID
	}

	if err := p.store.SaveReport(ctx, report); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: save report")
	}
	if err := p.store.ReplaceTickets(ctx, report.ID, route.Tickets); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: save tickets")
	}

	log.Info("pipeline: ingest complete",
		zap.String("report_id", report.ID),
		zap.String("standard", string(report.StandardDetected)),
		zap.String("status", string(report.Status)),
		zap.Int("tickets", len(route.Tickets)),
	)
	return report, route.Tickets, nil
}

// ResolveTicket applies a reviewer-confirmed value to one flagged field and
// re-routes the report. The resolved field is written at full confidence on a
// new report version; remaining tickets are recomputed from scratch.
func (p *Pipeline) ResolveTicket(ctx context.Context, reportID, fieldKey string, value *model.FieldValue) (*model.CanonicalReport, []model.ReviewTicket, error) {
	report, err := p.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: load report %s", reportID)
	}

	schema := p.registry.SchemaFor(report.StandardDetected)
	policy := p.cfg.Review.PolicyFor(string(report.StandardDetected))

	resolved, route, err := review.Resolve(report, schema, policy, fieldKey, value)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: resolve %s", fieldKey)
	}
	resolved.UpdatedAt = time.Now().UTC()
	for i := range route.Tickets {
		route.Tickets[i].ReportID = resolved.ID
	}

	if err := p.store.SaveReport(ctx, resolved); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: save resolved report")
	}
	if err := p.store.ReplaceTickets(ctx, resolved.ID, route.Tickets); err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: save tickets")
	}

	zap.L().Info("pipeline: ticket resolved",
		zap.String("report_id", resolved.ID),
		zap.String("field", fieldKey),
		zap.Int("version", resolved.Version),
		zap.String("status", string(resolved.Status)),
	)
	return resolved, route.Tickets, nil
}

// MarkExported freezes a ready report after a successful export by cutting a
// new version with exported status. Reports still under review export without
// a status change so their tickets stay resolvable; already-frozen reports
// pass through untouched.
func (p *Pipeline) MarkExported(ctx context.Context, reportID string) (*model.CanonicalReport, error) {
	report, err := p.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: load report %s", reportID)
	}
	if report.Status != model.ReportStatusReady {
		return report, nil
	}

	exported := report.Clone()
	exported.Version = report.Version + 1
	exported.Status = model.ReportStatusExported
	exported.UpdatedAt = time.Now().UTC()
	if err := p.store.SaveReport(ctx, exported); err != nil {
		return nil, eris.Wrap(err, "pipeline: save exported report")
	}

	zap.L().Info("pipeline: report exported",
		zap.String("report_id", exported.ID),
		zap.Int("version", exported.Version),
	)
	return exported, nil
}
