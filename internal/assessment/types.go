package assessment

// Severity grades how serious a compliance gap is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight is the number of score points a gap of this severity costs
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 25
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 8
	case SeverityLow:
		return 3
	default:
		return 0
	}
}

// baseWeeks is the remediation window before any stagger is applied
func (s Severity) baseWeeks() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityHigh:
		return 4
	case SeverityLow:
		return 12
	default:
		return 8
	}
}

// Priority orders remediation actions
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
)

// Rank returns the sort position of a priority; lower ranks come first
func (p Priority) Rank() int {
	switch p {
	case PriorityImmediate:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// priorityFor maps gap severity to action priority.
// Anything below high lands on medium, so low-severity gaps never produce low-priority actions.
func priorityFor(s Severity) Priority {
	switch s {
	case SeverityCritical:
		return PriorityImmediate
	case SeverityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Status buckets a compliance score
type Status string

const (
	StatusCompliant     Status = "compliant"
	StatusPartial       Status = "partial"
	StatusNonCompliant  Status = "non-compliant"
	StatusNotApplicable Status = "not-applicable"
)

// ActionStatus tracks remediation progress
type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in-progress"
	ActionCompleted  ActionStatus = "completed"
)

// Gap categories
const (
	CategoryDataProtection    = "Data Protection"
	CategoryConsentManagement = "Consent Management"
	CategoryAuditTrail        = "Audit Trail"
	CategoryAccessControls    = "Access Controls"
	CategoryDataSubjectRights = "Data Subject Rights"
	CategoryBreachResponse    = "Breach Response"
)

// Gap is a deficiency between a project's configuration and a regulation
type Gap struct {
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	Remediation     string   `json:"remediation"`
	EstimatedEffort string   `json:"estimatedEffort"`
}

// RequiredAction is a remediation task derived from a single gap
type RequiredAction struct {
	Action      string       `json:"action"`
	Priority    Priority     `json:"priority"`
	Responsible string       `json:"responsible"`
	Deadline    string       `json:"deadline"`
	Status      ActionStatus `json:"status"`
}

// Assessment is the result of checking one project against one regulation
type Assessment struct {
	RegulationID    string           `json:"regulationId"`
	Regulation      string           `json:"regulation"`
	Status          Status           `json:"status"`
	Score           int              `json:"score"`
	Gaps            []Gap            `json:"gaps"`
	Recommendations []string         `json:"recommendations"`
	RequiredActions []RequiredAction `json:"requiredActions"`
}

// CriticalGaps counts the critical gaps in the assessment
func (a Assessment) CriticalGaps() int {
	n := 0
	for _, g := range a.Gaps {
		if g.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
