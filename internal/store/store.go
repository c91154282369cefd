package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS compliance_reports (
	id            UUID PRIMARY KEY,
	project_id    TEXT NOT NULL,
	overall_score INTEGER NOT NULL,
	critical_gaps INTEGER NOT NULL,
	summary       TEXT NOT NULL,
	timeline      TEXT NOT NULL,
	no_data       BOOLEAN NOT NULL DEFAULT FALSE,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_compliance_reports_project
	ON compliance_reports (project_id, created_at DESC);`

// DefaultListLimit bounds ListByProject when the caller passes no limit
const DefaultListLimit = 50

// Store persists compliance reports in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore connects to PostgreSQL and returns a report store
func NewStore(ctx context.Context, config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	logger.Info("Report store initialized",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates the reports table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save persists a report, assigning it an id when it has none
func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO compliance_reports
			(id, project_id, overall_score, critical_gaps, summary, timeline, no_data, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.ProjectID,
		r.OverallScore,
		r.CriticalGaps,
		r.Summary,
		r.Timeline,
		r.NoData,
		payload,
		r.GeneratedAt,
	)
	if err != nil {
		s.logger.Error("Failed to save report",
			zap.Error(err),
			zap.String("project_id", r.ProjectID))
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Debug("Report saved",
		zap.String("report_id", r.ID),
		zap.String("project_id", r.ProjectID),
		zap.Int("overall_score", r.OverallScore))

	return nil
}

// Get returns the full report with the given id, or nil when it does not exist
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM compliance_reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	var r report.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &r, nil
}

// ListByProject returns the newest reports for a project
func (s *Store) ListByProject(ctx context.Context, projectID string, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, project_id, overall_score, critical_gaps, summary, timeline, no_data, created_at
		FROM compliance_reports
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	summaries := make([]ReportSummary, 0)
	if err := s.db.SelectContext(ctx, &summaries, query, projectID, limit); err != nil {
		return nil, fmt.Errorf("failed to list reports for project %s: %w", projectID, err)
	}
	return summaries, nil
}

// Stats returns aggregate statistics across all stored reports
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total_reports,
			COUNT(DISTINCT project_id) AS total_projects,
			COALESCE(AVG(overall_score) FILTER (WHERE NOT no_data), 0) AS average_score,
			COALESCE(SUM(critical_gaps), 0) AS critical_gaps
		FROM compliance_reports`

	var stats Stats
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get report stats: %w", err)
	}
	return &stats, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks the password in a database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
