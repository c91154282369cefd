package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
)

const (
	// DefaultMaxActions caps the prioritized action list
	DefaultMaxActions = 10

	timelineCritical = "2-4 weeks for critical items"
	timelineStandard = "4-8 weeks for full compliance"

	noDataSummary  = "No compliance assessments available"
	noDataTimeline = "No timeline available"
)

// Report summarizes a project's assessments across regulations
type Report struct {
	ID                 string                      `json:"id,omitempty"`
	ProjectID          string                      `json:"projectId"`
	Summary            string                      `json:"summary"`
	OverallScore       int                         `json:"overallScore"`
	CriticalGaps       int                         `json:"criticalGaps"`
	PrioritizedActions []assessment.RequiredAction `json:"prioritizedActions"`
	Timeline           string                      `json:"timeline"`
	NoData             bool                        `json:"noData"`
	Assessments        []assessment.Assessment     `json:"assessments,omitempty"`
	GeneratedAt        time.Time                   `json:"generatedAt"`
}

// Aggregator builds project reports from assessments
type Aggregator struct {
	maxActions int
	now        func() time.Time
}

// NewAggregator creates an aggregator; maxActions <= 0 uses DefaultMaxActions
func NewAggregator(maxActions int) *Aggregator {
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}
	return &Aggregator{maxActions: maxActions, now: time.Now}
}

// Generate aggregates the assessments of a single project.
// An empty assessment list yields a report flagged NoData instead of a NaN score.
func (g *Aggregator) Generate(projectID string, assessments []assessment.Assessment) Report {
	r := Report{
		ProjectID:          projectID,
		PrioritizedActions: make([]assessment.RequiredAction, 0),
		Assessments:        assessments,
		GeneratedAt:        g.now().UTC(),
	}

	if len(assessments) == 0 {
		r.NoData = true
		r.Summary = noDataSummary
		r.Timeline = noDataTimeline
		return r
	}

	total := 0
	var actions []assessment.RequiredAction
	for _, a := range assessments {
		total += a.Score
		r.CriticalGaps += a.CriticalGaps()
		actions = append(actions, a.RequiredActions...)
	}

	r.OverallScore = roundHalfUp(float64(total) / float64(len(assessments)))
	r.PrioritizedActions = Prioritize(actions, g.maxActions)
	r.Summary = fmt.Sprintf("Compliance assessment for %d regulations. Overall score: %d%%", len(assessments), r.OverallScore)

	if r.CriticalGaps > 0 {
		r.Timeline = timelineCritical
	} else {
		r.Timeline = timelineStandard
	}

	return r
}

// Prioritize stable-sorts actions by priority rank and keeps at most limit of them.
// The input slice is left untouched.
func Prioritize(actions []assessment.RequiredAction, limit int) []assessment.RequiredAction {
	sorted := make([]assessment.RequiredAction, len(actions))
	copy(sorted, actions)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
