package model

import "time"

// TicketReason explains why a field was flagged for human review.
type TicketReason string

const (
	TicketReasonMissingRequired TicketReason = "missing_required"
	TicketReasonLowConfidence   TicketReason = "low_confidence"
	TicketReasonUncertainValue  TicketReason = "uncertain_value"
)

// ReviewTicket flags one field of a report for human confirmation. Tickets
// are created by the review router and deleted when a reviewer confirms or
// edits the field and resubmits.
type ReviewTicket struct {
	ID             string       `json:"id"`
	ReportID       string       `json:"report_id"`
	FieldKey       string       `json:"field_key"`
	Reason         TicketReason `json:"reason"`
	Hint           string       `json:"hint,omitempty"`
	SuggestedValue *FieldValue  `json:"suggested_value,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// RouteResult is the review router's verdict for one report.
type RouteResult struct {
	Status  ReportStatus   `json:"status"`
	Tickets []ReviewTicket `json:"tickets,omitempty"`
}
