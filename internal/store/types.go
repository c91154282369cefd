package store

import (
	"time"
)

// ReportSummary is the listing view of a stored report
type ReportSummary struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"projectId"`
	OverallScore int       `db:"overall_score" json:"overallScore"`
	CriticalGaps int       `db:"critical_gaps" json:"criticalGaps"`
	Summary      string    `db:"summary" json:"summary"`
	Timeline     string    `db:"timeline" json:"timeline"`
	NoData       bool      `db:"no_data" json:"noData"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Stats represents report store statistics
type Stats struct {
	TotalReports  int64   `db:"total_reports" json:"total_reports"`
	TotalProjects int64   `db:"total_projects" json:"total_projects"`
	AverageScore  float64 `db:"average_score" json:"average_score"`
	CriticalGaps  int64   `db:"critical_gaps" json:"critical_gaps"`
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}
