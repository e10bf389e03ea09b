package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/orestack/minereport/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT NOT NULL,
	version    INTEGER NOT NULL,
	standard   TEXT NOT NULL DEFAULT 'unknown',
	status     TEXT NOT NULL DEFAULT 'parsed',
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (id, version)
);

CREATE TABLE IF NOT EXISTS review_tickets (
	id              TEXT PRIMARY KEY,
	report_id       TEXT NOT NULL,
	field_key       TEXT NOT NULL,
	reason          TEXT NOT NULL,
	hint            TEXT,
	suggested_value TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_reports_standard ON reports(standard);
CREATE INDEX IF NOT EXISTS idx_tickets_report_id ON review_tickets(report_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.CanonicalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, version, standard, status, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id, version) DO UPDATE SET
		 standard = excluded.standard, status = excluded.status,
		 body = excluded.body, updated_at = excluded.updated_at`,
		report.ID, report.Version, string(report.StandardDetected), string(report.Status),
		string(body), report.CreatedAt.UTC(), report.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save report %s v%d", report.ID, report.Version)
}

func (s *SQLiteStore) GetReport(ctx context.Context, reportID string) (*model.CanonicalReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM reports WHERE id = ? ORDER BY version DESC LIMIT 1`,
		reportID,
	)
	return scanReportBody(row, reportID)
}

func (s *SQLiteStore) GetReportVersion(ctx context.Context, reportID string, version int) (*model.CanonicalReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM reports WHERE id = ? AND version = ?`,
		reportID, version,
	)
	return scanReportBody(row, reportID)
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.CanonicalReport, error) {
	// Latest version per report id, then filter.
	query := `SELECT r.body FROM reports r
		JOIN (SELECT id, MAX(version) AS version FROM reports GROUP BY id) latest
		ON r.id = latest.id AND r.version = latest.version
		WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Standard != "" {
		query += ` AND r.standard = ?`
		args = append(args, string(filter.Standard))
	}
	query += ` ORDER BY r.created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []model.CanonicalReport
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		var r model.CanonicalReport
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

func (s *SQLiteStore) ReplaceTickets(ctx context.Context, reportID string, tickets []model.ReviewTicket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_tickets WHERE report_id = ?`, reportID); err != nil {
		return eris.Wrapf(err, "sqlite: clear tickets for %s", reportID)
	}
	for _, t := range tickets {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		var suggested sql.NullString
		if t.SuggestedValue != nil {
			data, err := json.Marshal(t.SuggestedValue)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal suggested value")
			}
			suggested = sql.NullString{String: string(data), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO review_tickets (id, report_id, field_key, reason, hint, suggested_value, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, reportID, t.FieldKey, string(t.Reason), t.Hint, suggested, t.CreatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert ticket %s", t.FieldKey)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tickets")
}

func (s *SQLiteStore) ListTickets(ctx context.Context, reportID string) ([]model.ReviewTicket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, field_key, reason, hint, suggested_value, created_at
		 FROM review_tickets WHERE report_id = ? ORDER BY created_at, field_key`,
		reportID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list tickets for %s", reportID)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *SQLiteStore) ListOpenTickets(ctx context.Context, limit int) ([]model.ReviewTicket, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, field_key, reason, hint, suggested_value, created_at
		 FROM review_tickets ORDER BY created_at LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list open tickets")
	}
	defer rows.Close()
	return collectTickets(rows)
}

func scanReportBody(row *sql.Row, reportID string) (*model.CanonicalReport, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "report %s", reportID)
		}
		return nil, eris.Wrapf(err, "sqlite: get report %s", reportID)
	}
	var r model.CanonicalReport
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &r, nil
}

func collectTickets(rows *sql.Rows) ([]model.ReviewTicket, error) {
	var tickets []model.ReviewTicket
	for rows.Next() {
		var t model.ReviewTicket
		var hint, suggested sql.NullString
		if err := rows.Scan(&t.ID, &t.ReportID, &t.FieldKey, &t.Reason, &hint, &suggested, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ticket")
		}
		t.Hint = hint.String
		if suggested.Valid {
			t.SuggestedValue = &model.FieldValue{}
			if err := json.Unmarshal([]byte(suggested.String), t.SuggestedValue); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal suggested value")
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, eris.Wrap(rows.Err(), "sqlite: tickets iterate")
}
