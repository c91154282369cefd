package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
)

// ProjectRecord is one project row of an input dataset.
// Regulations and Locations are lists separated by commas or semicolons.
type ProjectRecord struct {
	ProjectID         string `csv:"project_id" parquet:"project_id" json:"project_id"`
	Regulations       string `csv:"regulations" parquet:"regulations" json:"regulations"`
	Locations         string `csv:"locations" parquet:"locations" json:"locations"`
	Encryption        bool   `csv:"encryption" parquet:"encryption" json:"encryption"`
	ConsentManagement bool   `csv:"consent_management" parquet:"consent_management" json:"consent_management"`
	AuditLogging      bool   `csv:"audit_logging" parquet:"audit_logging" json:"audit_logging"`
	AccessControls    bool   `csv:"access_controls" parquet:"access_controls" json:"access_controls"`
	DataSubjectRights bool   `csv:"data_subject_rights" parquet:"data_subject_rights" json:"data_subject_rights"`
	BreachResponse    bool   `csv:"breach_response" parquet:"breach_response" json:"breach_response"`
}

// Controls returns the record's control flags
func (r ProjectRecord) Controls() assessment.Controls {
	return assessment.Controls{
		Encryption:        r.Encryption,
		ConsentManagement: r.ConsentManagement,
		AuditLogging:      r.AuditLogging,
		AccessControls:    r.AccessControls,
		DataSubjectRights: r.DataSubjectRights,
		BreachResponse:    r.BreachResponse,
	}
}

// ProjectOutcome is the per-project result of a batch run
type ProjectOutcome struct {
	ProjectID    string   `json:"project_id"`
	ReportID     string   `json:"report_id,omitempty"`
	Regulations  []string `json:"regulations"`
	OverallScore int      `json:"overall_score"`
	CriticalGaps int      `json:"critical_gaps"`
	NoData       bool     `json:"no_data"`
}

// ProcessingResult represents the result of processing a dataset
type ProcessingResult struct {
	TotalRecords    int64            `json:"total_records"`
	ProcessedOK     int64            `json:"processed_ok"`
	ProcessedFailed int64            `json:"processed_failed"`
	Invalid         int64            `json:"invalid"`
	Persisted       int64            `json:"persisted"`
	NonCompliant    int64            `json:"non_compliant"`
	AverageScore    float64          `json:"average_score"`
	Duration        time.Duration    `json:"duration"`
	PersistTime     time.Duration    `json:"persist_time"`
	Outcomes        []ProjectOutcome `json:"outcomes,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
}

// Config contains batch pipeline configuration
type Config struct {
	BatchSize          int
	WorkerCount        int
	ValidateData       bool
	ProgressReport     int
	DefaultRegulations []string
	KeepOutcomes       bool
}

// ValidationError represents a data validation error
type ValidationError struct {
	Row     int64  `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension, defaulting to CSV
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".parquet":
		return FormatParquet
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatCSV
	}
}
