package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/orestack/minereport/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. Tests substitute a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"save_report": `INSERT INTO reports (id, version, standard, status, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id, version) DO UPDATE SET
		standard = excluded.standard, status = excluded.status,
		body = excluded.body, updated_at = excluded.updated_at`,
	"get_report":         `SELECT body FROM reports WHERE id = $1 ORDER BY version DESC LIMIT 1`,
	"get_report_version": `SELECT body FROM reports WHERE id = $1 AND version = $2`,
	"list_tickets": `SELECT id, report_id, field_key, reason, hint, suggested_value, created_at
		FROM review_tickets WHERE report_id = $1 ORDER BY created_at, field_key`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT NOT NULL,
	version    INTEGER NOT NULL,
	standard   TEXT NOT NULL DEFAULT 'unknown',
	status     TEXT NOT NULL DEFAULT 'parsed',
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (id, version)
);

CREATE TABLE IF NOT EXISTS review_tickets (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	report_id       TEXT NOT NULL,
	field_key       TEXT NOT NULL,
	reason          TEXT NOT NULL,
	hint            TEXT,
	suggested_value JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_reports_standard ON reports(standard);
CREATE INDEX IF NOT EXISTS idx_tickets_report_id ON review_tickets(report_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.CanonicalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (id, version, standard, status, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id, version) DO UPDATE SET
		standard = excluded.standard, status = excluded.status,
		body = excluded.body, updated_at = excluded.updated_at`,
		report.ID, report.Version, string(report.StandardDetected), string(report.Status),
		body, report.CreatedAt.UTC(), report.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save report %s v%d", report.ID, report.Version)
}

func (s *PostgresStore) GetReport(ctx context.Context, reportID string) (*model.CanonicalReport, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT body FROM reports WHERE id = $1 ORDER BY version DESC LIMIT 1`,
		reportID,
	)
	return scanPostgresReport(row, reportID)
}

func (s *PostgresStore) GetReportVersion(ctx context.Context, reportID string, version int) (*model.CanonicalReport, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT body FROM reports WHERE id = $1 AND version = $2`,
		reportID, version,
	)
	return scanPostgresReport(row, reportID)
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.CanonicalReport, error) {
	query := `SELECT r.body FROM reports r
		JOIN (SELECT id, MAX(version) AS version FROM reports GROUP BY id) latest
		ON r.id = latest.id AND r.version = latest.version
		WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND r.status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Standard != "" {
		query += fmt.Sprintf(` AND r.standard = $%d`, argIdx)
		args = append(args, string(filter.Standard))
		argIdx++
	}
	query += ` ORDER BY r.created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var reports []model.CanonicalReport
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		var r model.CanonicalReport
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

func (s *PostgresStore) ReplaceTickets(ctx context.Context, reportID string, tickets []model.ReviewTicket) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM review_tickets WHERE report_id = $1`, reportID); err != nil {
		return eris.Wrapf(err, "postgres: clear tickets for %s", reportID)
	}
	for _, t := range tickets {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		var suggested []byte
		if t.SuggestedValue != nil {
			data, err := json.Marshal(t.SuggestedValue)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal suggested value")
			}
			suggested = data
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO review_tickets (id, report_id, field_key, reason, hint, suggested_value, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, reportID, t.FieldKey, string(t.Reason), t.Hint, suggested, t.CreatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert ticket %s", t.FieldKey)
		}
	}
	return nil
}

func (s *PostgresStore) ListTickets(ctx context.Context, reportID string) ([]model.ReviewTicket, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, report_id, field_key, reason, hint, suggested_value, created_at
		FROM review_tickets WHERE report_id = $1 ORDER BY created_at, field_key`,
		reportID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list tickets for %s", reportID)
	}
	defer rows.Close()
	return collectPostgresTickets(rows)
}

func (s *PostgresStore) ListOpenTickets(ctx context.Context, limit int) ([]model.ReviewTicket, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, report_id, field_key, reason, hint, suggested_value, created_at
		FROM review_tickets ORDER BY created_at LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list open tickets")
	}
	defer rows.Close()
	return collectPostgresTickets(rows)
}

func scanPostgresReport(row pgx.Row, reportID string) (*model.CanonicalReport, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "report %s", reportID)
		}
		return nil, eris.Wrapf(err, "postgres: get report %s", reportID)
	}
	var r model.CanonicalReport
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &r, nil
}

func collectPostgresTickets(rows pgx.Rows) ([]model.ReviewTicket, error) {
	var tickets []model.ReviewTicket
	for rows.Next() {
		var t model.ReviewTicket
		var hint *string
		var suggested []byte
		if err := rows.Scan(&t.ID, &t.ReportID, &t.FieldKey, &t.Reason, &hint, &suggested, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ticket")
		}
		if hint != nil {
			t.Hint = *hint
		}
		if len(suggested) > 0 {
			t.SuggestedValue = &model.FieldValue{}
			if err := json.Unmarshal(suggested, t.SuggestedValue); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal suggested value")
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, eris.Wrap(rows.Err(), "postgres: tickets iterate")
}
