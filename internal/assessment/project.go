package assessment

// ProjectConfig describes which privacy controls a project has in place.
// Every section is optional. An absent section, or a present one with its flag
// false, is treated as the control being missing, so it always produces a gap.
type ProjectConfig struct {
	Encryption        *Toggle      `json:"encryption,omitempty"`
	ConsentManagement *Toggle      `json:"consentManagement,omitempty"`
	AuditLogging      *Toggle      `json:"auditLogging,omitempty"`
	AccessControls    *Toggle      `json:"accessControls,omitempty"`
	DataSubjectRights *Implemented `json:"dataSubjectRights,omitempty"`
	BreachResponse    *BreachPlan  `json:"breachResponse,omitempty"`
}

// Toggle is a control that is either enabled or not
type Toggle struct {
	Enabled bool `json:"enabled"`
}

// Implemented marks a capability as built
type Implemented struct {
	Implemented bool `json:"implemented"`
}

// BreachPlan marks whether a breach response plan exists
type BreachPlan struct {
	Plan bool `json:"plan"`
}

// Controls is the resolved, flat view of a ProjectConfig
type Controls struct {
	Encryption        bool `json:"encryption"`
	ConsentManagement bool `json:"consent_management"`
	AuditLogging      bool `json:"audit_logging"`
	AccessControls    bool `json:"access_controls"`
	DataSubjectRights bool `json:"data_subject_rights"`
	BreachResponse    bool `json:"breach_response"`
}

// Controls resolves every section, applying the missing-means-absent default
func (c ProjectConfig) Controls() Controls {
	return Controls{
		Encryption:        c.Encryption != nil && c.Encryption.Enabled,
		ConsentManagement: c.ConsentManagement != nil && c.ConsentManagement.Enabled,
		AuditLogging:      c.AuditLogging != nil && c.AuditLogging.Enabled,
		AccessControls:    c.AccessControls != nil && c.AccessControls.Enabled,
		DataSubjectRights: c.DataSubjectRights != nil && c.DataSubjectRights.Implemented,
		BreachResponse:    c.BreachResponse != nil && c.BreachResponse.Plan,
	}
}

// ProjectConfig expands flat controls back into the sectioned form
func (c Controls) ProjectConfig() ProjectConfig {
	return ProjectConfig{
		Encryption:        &Toggle{Enabled: c.Encryption},
		ConsentManagement: &Toggle{Enabled: c.ConsentManagement},
		AuditLogging:      &Toggle{Enabled: c.AuditLogging},
		AccessControls:    &Toggle{Enabled: c.AccessControls},
		DataSubjectRights: &Implemented{Implemented: c.DataSubjectRights},
		BreachResponse:    &BreachPlan{Plan: c.BreachResponse},
	}
}
