package regulation

// Regulation represents a privacy law and its reference metadata
type Regulation struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	FullName                 string   `json:"fullName"`
	Jurisdiction             string   `json:"jurisdiction"`
	Region                   string   `json:"region"`
	EffectiveDate            string   `json:"effectiveDate"`
	DataSubjectRights        []string `json:"dataSubjectRights"`
	ConsentRequirements      []string `json:"consentRequirements"`
	DataProtectionPrinciples []string `json:"dataProtectionPrinciples"`
	BreachNotificationHours  int      `json:"breachNotificationHours"` // 0 means "without undue delay"
	Penalties                Penalty  `json:"penalties"`
	CrossBorderTransferRules []string `json:"crossBorderTransferRules"`
	HealthcareSpecificRules  []string `json:"healthcareSpecificRules"`
	RequiredDocumentation    []string `json:"requiredDocumentation"`
}

// Penalty describes the maximum fine under a regulation
type Penalty struct {
	MaxFine          string `json:"maxFine"`
	CalculationBasis string `json:"calculationBasis"`
}

// RuleKind identifies a cross-regulation requirement area
type RuleKind string

const (
	RuleDataEncryption     RuleKind = "data-encryption"
	RuleConsentManagement  RuleKind = "consent-management"
	RuleBreachNotification RuleKind = "breach-notification"
)

// Rule is the requirement a single regulation imposes for one rule kind
type Rule struct {
	Kind       RuleKind          `json:"kind"`
	Required   bool              `json:"required"`
	Standard   string            `json:"standard,omitempty"`
	Timeframe  string            `json:"timeframe,omitempty"`
	Authority  string            `json:"authority,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// clone returns a deep copy so callers can never mutate the registry
func (r Regulation) clone() Regulation {
	c := r
	c.DataSubjectRights = cloneStrings(r.DataSubjectRights)
	c.ConsentRequirements = cloneStrings(r.ConsentRequirements)
	c.DataProtectionPrinciples = cloneStrings(r.DataProtectionPrinciples)
	c.CrossBorderTransferRules = cloneStrings(r.CrossBorderTransferRules)
	c.HealthcareSpecificRules = cloneStrings(r.HealthcareSpecificRules)
	c.RequiredDocumentation = cloneStrings(r.RequiredDocumentation)
	return c
}

func (r Rule) clone() Rule {
	c := r
	if r.Attributes != nil {
		c.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			c.Attributes[k] = v
		}
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
