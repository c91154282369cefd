package assessment

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/regulation"
)

const (
	// DefaultResponsibleParty owns every generated action unless configured otherwise
	DefaultResponsibleParty = "Compliance Team"
	// DefaultStaggerWeeks pushes each action's deadline one week past the previous one
	DefaultStaggerWeeks = 1

	deadlineLayout = "2006-01-02"
)

// Options configures an Assessor
type Options struct {
	ResponsibleParty string
	// StaggerWeeks is added per preceding action of the same assessment. Zero disables staggering.
	StaggerWeeks int
	// Now supplies the reference date for deadlines; time.Now when nil
	Now func() time.Time
}

// DefaultOptions returns the standard assessor options
func DefaultOptions() Options {
	return Options{
		ResponsibleParty: DefaultResponsibleParty,
		StaggerWeeks:     DefaultStaggerWeeks,
	}
}

// Assessor checks project configurations against regulations
type Assessor struct {
	registry *regulation.Registry
	options  Options
	logger   *zap.Logger
}

// NewAssessor creates an assessor over the given registry
func NewAssessor(registry *regulation.Registry, opts Options, logger *zap.Logger) *Assessor {
	if opts.ResponsibleParty == "" {
		opts.ResponsibleParty = DefaultResponsibleParty
	}
	if opts.StaggerWeeks < 0 {
		opts.StaggerWeeks = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		registry: registry,
		options:  opts,
		logger:   logger,
	}
}

// Assess evaluates cfg against each regulation id in order.
// Unknown ids are skipped; the result has one entry per known id.
func (a *Assessor) Assess(cfg ProjectConfig, regulationIDs []string) []Assessment {
	controls := cfg.Controls()
	today := a.options.Now().UTC()

	assessments := make([]Assessment, 0, len(regulationIDs))
	for _, id := range regulationIDs {
		reg, ok := a.registry.Get(id)
		if !ok {
			a.logger.Debug("Skipping unknown regulation", zap.String("regulation_id", id))
			continue
		}

		gaps := identifyGaps(controls, reg)
		score := Score(gaps)

		assessments = append(assessments, Assessment{
			RegulationID:    reg.ID,
			Regulation:      reg.Name,
			Status:          StatusForScore(score),
			Score:           score,
			Gaps:            gaps,
			Recommendations: recommendations(gaps, reg),
			RequiredActions: a.requiredActions(gaps, today),
		})
	}

	a.logger.Debug("Compliance assessment completed",
		zap.Int("requested", len(regulationIDs)),
		zap.Int("assessed", len(assessments)),
	)

	return assessments
}

// Score converts gaps into a 0-100 compliance score
func Score(gaps []Gap) int {
	deduction := 0
	for _, g := range gaps {
		deduction += g.Severity.Weight()
	}
	if deduction >= 100 {
		return 0
	}
	return 100 - deduction
}

// StatusForScore buckets a score: 90 and above is compliant, 60 and above partial
func StatusForScore(score int) Status {
	switch {
	case score >= 90:
		return StatusCompliant
	case score >= 60:
		return StatusPartial
	default:
		return StatusNonCompliant
	}
}

// gapCheck is one control every regulation expects
type gapCheck struct {
	category    string
	severity    Severity
	remediation string
	effort      string
	missing     func(Controls) bool
	describe    func(regulation.Regulation) string
}

// gapChecks runs in this order; action deadlines depend on it
var gapChecks = []gapCheck{
	{
		category:    CategoryDataProtection,
		severity:    SeverityCritical,
		remediation: "Implement AES-256 encryption for data at rest and TLS 1.3 for data in transit",
		effort:      "2-4 weeks",
		missing:     func(c Controls) bool { return !c.Encryption },
		describe: func(r regulation.Regulation) string {
			return fmt.Sprintf("%s requires encryption of personal/health data", r.Name)
		},
	},
	{
		category:    CategoryConsentManagement,
		severity:    SeverityCritical,
		remediation: "Implement consent management platform with granular preferences",
		effort:      "3-6 weeks",
		missing:     func(c Controls) bool { return !c.ConsentManagement },
		describe: func(r regulation.Regulation) string {
			return fmt.Sprintf("%s requires proper consent collection and management", r.Name)
		},
	},
	{
		category:    CategoryAuditTrail,
		severity:    SeverityHigh,
		remediation: "Implement immutable audit logs for all data access and modifications",
		effort:      "1-2 weeks",
		missing:     func(c Controls) bool { return !c.AuditLogging },
		describe: func(r regulation.Regulation) string {
			return fmt.Sprintf("%s requires comprehensive audit logging", r.Name)
		},
	},
	{
		category:    CategoryAccessControls,
		severity:    SeverityHigh,
		remediation: "Implement RBAC with principle of least privilege",
		effort:      "2-3 weeks",
		missing:     func(c Controls) bool { return !c.AccessControls },
		describe: func(r regulation.Regulation) string {
			return fmt.Sprintf("%s requires role-based access controls", r.Name)
		},
	},
	{
		category:    CategoryDataSubjectRights,
		severity:    SeverityHigh,
		remediation: "Implement self-service portal for access, correction, deletion requests",
		effort:      "4-6 weeks",
		missing:     func(c Controls) bool { return !c.DataSubjectRights },
		describe: func(r regulation.Regulation) string {
			return fmt.Sprintf("%s requires mechanisms for data subject rights", r.Name)
		},
	},
	{
		category:    CategoryBreachResponse,
		severity:    SeverityHigh,
		remediation: "Create and test breach response plan with notification procedures",
		effort:      "1-2 weeks",
		missing:     func(c Controls) bool { return !c.BreachResponse },
		describe: func(r regulation.Regulation) string {
			if r.BreachNotificationHours == 0 {
				return fmt.Sprintf("%s requires breach notification without undue delay", r.Name)
			}
			return fmt.Sprintf("%s requires breach notification within %d hours", r.Name, r.BreachNotificationHours)
		},
	},
}

func identifyGaps(controls Controls, reg regulation.Regulation) []Gap {
	gaps := make([]Gap, 0)
	for _, check := range gapChecks {
		if !check.missing(controls) {
			continue
		}
		gaps = append(gaps, Gap{
			Category:        check.category,
			Description:     check.describe(reg),
			Severity:        check.severity,
			Remediation:     check.remediation,
			EstimatedEffort: check.effort,
		})
	}
	return gaps
}

func recommendations(gaps []Gap, reg regulation.Regulation) []string {
	has := make(map[string]bool, len(gaps))
	for _, g := range gaps {
		has[g.Category] = true
	}

	var recs []string
	if has[CategoryDataProtection] {
		recs = append(recs, fmt.Sprintf("Implement %s-compliant encryption for all health data", reg.Name))
	}
	if has[CategoryConsentManagement] {
		recs = append(recs, fmt.Sprintf("Deploy consent management system meeting %s requirements", reg.Name))
	}
	if has[CategoryDataSubjectRights] {
		rights := reg.DataSubjectRights
		if len(rights) > 3 {
			rights = rights[:3]
		}
		recs = append(recs, "Create data subject rights portal supporting: "+strings.Join(rights, ", "))
	}

	recs = append(recs,
		fmt.Sprintf("Review and update privacy policy for %s compliance", reg.Name),
		fmt.Sprintf("Train staff on %s requirements", reg.Name),
	)
	return recs
}

func (a *Assessor) requiredActions(gaps []Gap, today time.Time) []RequiredAction {
	actions := make([]RequiredAction, len(gaps))
	for i, g := range gaps {
		actions[i] = RequiredAction{
			Action:      g.Remediation,
			Priority:    priorityFor(g.Severity),
			Responsible: a.options.ResponsibleParty,
			Deadline:    a.deadline(today, g.Severity, i),
			Status:      ActionPending,
		}
	}
	return actions
}

// deadline is today plus the severity's base window plus the stagger for the
// action's position within its assessment
func (a *Assessor) deadline(today time.Time, severity Severity, index int) string {
	weeks := severity.baseWeeks() + index*a.options.StaggerWeeks
	return today.AddDate(0, 0, weeks*7).Format(deadlineLayout)
}
