package store

import (
	"context"
	"errors"

	"github.com/orestack/minereport/internal/model"
)

// ErrNotFound is returned when a report or ticket does not exist.
var ErrNotFound = errors.New("store: not found")

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	Status   model.ReportStatus `json:"status,omitempty"`
	Standard model.StandardID   `json:"standard,omitempty"`
	Limit    int                `json:"limit,omitempty"`
	Offset   int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for the report pipeline. Reports
// are versioned: SaveReport appends an immutable row per (id, version) and
// GetReport returns the latest version.
type Store interface {
	// Reports
	SaveReport(ctx context.Context, report *model.CanonicalReport) error
	GetReport(ctx context.Context, reportID string) (*model.CanonicalReport, error)
	GetReportVersion(ctx context.Context, reportID string, version int) (*model.CanonicalReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.CanonicalReport, error)

	// Review tickets
	ReplaceTickets(ctx context.Context, reportID string, tickets []model.ReviewTicket) error
	ListTickets(ctx context.Context, reportID string) ([]model.ReviewTicket, error)
	ListOpenTickets(ctx context.Context, limit int) ([]model.ReviewTicket, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
