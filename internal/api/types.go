package api

import (
	"time"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/regulation"
	"github.com/raaihank/compliance-sentinel/internal/report"
	"github.com/raaihank/compliance-sentinel/internal/store"
)

// DetectRequest lists the locations a project touches
type DetectRequest struct {
	OperatingCountries      []string `json:"operatingCountries"`
	UserLocations           []string `json:"userLocations"`
	DataProcessingLocations []string `json:"dataProcessingLocations"`
}

func (d *DetectRequest) empty() bool {
	return d == nil || len(d.OperatingCountries)+len(d.UserLocations)+len(d.DataProcessingLocations) == 0
}

// AssessRequest asks for a project to be checked against regulations.
// Regulations are taken from Regulations, else detected from Jurisdictions,
// else the configured defaults.
type AssessRequest struct {
	ProjectID     string                   `json:"projectId"`
	ProjectConfig assessment.ProjectConfig `json:"projectConfig"`
	Regulations   []string                 `json:"regulations"`
	Jurisdictions *DetectRequest           `json:"jurisdictions,omitempty"`
}

// AssessResponse carries the assessments in requested order
type AssessResponse struct {
	RequestID          string                  `json:"requestId"`
	ProjectID          string                  `json:"projectId,omitempty"`
	Assessments        []assessment.Assessment `json:"assessments"`
	UnknownRegulations []string                `json:"unknownRegulations,omitempty"`
	Cached             bool                    `json:"cached"`
}

// ReportRequest asks for a project report. When Assessments is present (even
// empty) it is aggregated as-is; otherwise the project is assessed first.
type ReportRequest struct {
	AssessRequest
	Assessments []assessment.Assessment `json:"assessments"`
}

// ReportResponse wraps a generated report
type ReportResponse struct {
	RequestID string        `json:"requestId"`
	Report    report.Report `json:"report"`
	Persisted bool          `json:"persisted"`
}

// RegulationsResponse lists the supported regulations
type RegulationsResponse struct {
	Regulations []regulation.Regulation `json:"regulations"`
	Count       int                     `json:"count"`
}

// RulesResponse lists the rule matrix entries of one regulation
type RulesResponse struct {
	RegulationID string            `json:"regulationId"`
	Rules        []regulation.Rule `json:"rules"`
}

// DetectResponse wraps a jurisdiction detection
type DetectResponse struct {
	RequestID string `json:"requestId"`
	jurisdiction.Detection
}

// ReportListResponse lists stored reports for a project
type ReportListResponse struct {
	ProjectID string                `json:"projectId"`
	Reports   []store.ReportSummary `json:"reports"`
	Count     int                   `json:"count"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// InfoResponse is returned by /info
type InfoResponse struct {
	Name             string   `json:"name"`
	Version          string   `json:"version"`
	Regulations      []string `json:"regulations"`
	CacheEnabled     bool     `json:"cacheEnabled"`
	StoreEnabled     bool     `json:"storeEnabled"`
	WebSocketEnabled bool     `json:"websocketEnabled"`
	RateLimitEnabled bool     `json:"rateLimitEnabled"`
}
