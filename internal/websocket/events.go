package websocket

import (
	"time"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/report"
)

// NewAssessmentEvent builds an assessment_completed event
func NewAssessmentEvent(requestID, projectID string, assessments []assessment.Assessment, cached bool, took time.Duration) Event {
	data := AssessmentCompletedEvent{
		RequestID:    requestID,
		ProjectID:    projectID,
		Results:      make([]RegulationScore, 0, len(assessments)),
		Cached:       cached,
		ProcessingMS: float64(took.Microseconds()) / 1000,
	}
	for _, a := range assessments {
		data.Results = append(data.Results, RegulationScore{
			RegulationID: a.RegulationID,
			Score:        a.Score,
			Status:       string(a.Status),
			Gaps:         len(a.Gaps),
		})
		data.TotalGaps += len(a.Gaps)
		data.CriticalGaps += a.CriticalGaps()
	}

	return Event{
		Type:      EventTypeAssessmentCompleted,
		Timestamp: time.Now().UTC(),
		Data:      data,
		RequestID: requestID,
		ProjectID: projectID,
	}
}

// NewReportEvent builds a report_generated event
func NewReportEvent(requestID string, r report.Report, persisted bool) Event {
	return Event{
		Type:      EventTypeReportGenerated,
		Timestamp: time.Now().UTC(),
		Data: ReportGeneratedEvent{
			ReportID:     r.ID,
			ProjectID:    r.ProjectID,
			OverallScore: r.OverallScore,
			CriticalGaps: r.CriticalGaps,
			Timeline:     r.Timeline,
			NoData:       r.NoData,
			Persisted:    persisted,
		},
		RequestID: requestID,
		ProjectID: r.ProjectID,
	}
}

// NewSystemStatusEvent builds a system_status event
func NewSystemStatusEvent(status SystemStatusEvent) Event {
	return Event{
		Type:      EventTypeSystemStatus,
		Timestamp: time.Now().UTC(),
		Data:      status,
	}
}
