package regulation

// Regulation identifiers. The set is closed.
const (
	HIPAA        = "hipaa"
	GDPR         = "gdpr"
	PIPEDA       = "pipeda"
	LGPD         = "lgpd"
	POPIA        = "popia"
	CCPA         = "ccpa"
	DPDP         = "dpdp"
	PrivacyActAU = "privacy-act-au"
)

// table holds every supported regulation in registry order
var table = []Regulation{
	{
		ID:            HIPAA,
		Name:          "HIPAA",
		FullName:      "Health Insurance Portability and Accountability Act",
		Jurisdiction:  "United States",
		Region:        "North America",
		EffectiveDate: "1996-08-21",
		DataSubjectRights: []string{
			"Right to access PHI",
			"Right to request amendments",
			"Right to accounting of disclosures",
			"Right to request restrictions",
			"Right to confidential communications",
		},
		ConsentRequirements: []string{
			"Authorization for use/disclosure of PHI",
			"Notice of Privacy Practices",
			"Minimum necessary standard",
		},
		DataProtectionPrinciples: []string{
			"Privacy Rule compliance",
			"Security Rule compliance",
			"Breach Notification Rule",
			"Minimum necessary standard",
			"Business Associate Agreements",
		},
		BreachNotificationHours: 1440,
		Penalties: Penalty{
			MaxFine:          "$1.5 million per violation category per year",
			CalculationBasis: "Per violation, tiered by knowledge",
		},
		CrossBorderTransferRules: []string{
			"BAA required with foreign entities",
			"Equivalent security measures required",
		},
		HealthcareSpecificRules: []string{
			"PHI encryption at rest and in transit",
			"Access controls and audit trails",
			"Workforce training requirements",
			"Risk analysis requirements",
		},
		RequiredDocumentation: []string{
			"Privacy policies and procedures",
			"Security policies and procedures",
			"Business Associate Agreements",
			"Risk assessments",
			"Training records",
		},
	},
	{
		ID:            GDPR,
		Name:          "GDPR",
		FullName:      "General Data Protection Regulation",
		Jurisdiction:  "European Union",
		Region:        "Europe",
		EffectiveDate: "2018-05-25",
		DataSubjectRights: []string{
			"Right to be informed",
			"Right of access",
			"Right to rectification",
			"Right to erasure (right to be forgotten)",
			"Right to restrict processing",
			"Right to data portability",
			"Right to object",
			"Rights related to automated decision making",
		},
		ConsentRequirements: []string{
			"Freely given consent",
			"Specific consent",
			"Informed consent",
			"Unambiguous consent",
			"Explicit consent for special categories (health data)",
		},
		DataProtectionPrinciples: []string{
			"Lawfulness, fairness and transparency",
			"Purpose limitation",
			"Data minimisation",
			"Accuracy",
			"Storage limitation",
			"Integrity and confidentiality",
			"Accountability",
		},
		BreachNotificationHours: 72,
		Penalties: Penalty{
			MaxFine:          "€20 million or 4% of annual global turnover",
			CalculationBasis: "Whichever is higher",
		},
		CrossBorderTransferRules: []string{
			"Adequacy decisions",
			"Standard Contractual Clauses (SCCs)",
			"Binding Corporate Rules",
			"Explicit consent with risks disclosed",
		},
		HealthcareSpecificRules: []string{
			"Special category data processing rules",
			"Article 9 derogations for health data",
			"Data Protection Impact Assessments",
			"Records of processing activities",
		},
		RequiredDocumentation: []string{
			"Records of processing activities",
			"Data Protection Impact Assessments",
			"Consent records",
			"Data Processing Agreements",
			"Privacy notices",
		},
	},
	{
		ID:            PIPEDA,
		Name:          "PIPEDA",
		FullName:      "Personal Information Protection and Electronic Documents Act",
		Jurisdiction:  "Canada",
		Region:        "North America",
		EffectiveDate: "2000-01-01",
		DataSubjectRights: []string{
			"Right to access personal information",
			"Right to challenge accuracy",
			"Right to complain to Privacy Commissioner",
			"Right to withdraw consent",
		},
		ConsentRequirements: []string{
			"Knowledge and consent",
			"Meaningful consent",
			"Express consent for sensitive information",
			"Opt-out for less sensitive information",
		},
		DataProtectionPrinciples: []string{
			"Accountability",
			"Identifying purposes",
			"Consent",
			"Limiting collection",
			"Limiting use, disclosure, and retention",
			"Accuracy",
			"Safeguards",
			"Openness",
			"Individual access",
			"Challenging compliance",
		},
		BreachNotificationHours: 0,
		Penalties: Penalty{
			MaxFine:          "$100,000 CAD per violation",
			CalculationBasis: "Per violation",
		},
		CrossBorderTransferRules: []string{
			"Comparable level of protection required",
			"Contractual protections",
			"Transparency about transfers",
		},
		HealthcareSpecificRules: []string{
			"Express consent for health information",
			"Professional secrecy obligations",
			"Provincial health privacy laws may apply",
		},
		RequiredDocumentation: []string{
			"Privacy policies",
			"Consent records",
			"Breach records",
			"Third-party agreements",
		},
	},
	{
		ID:            LGPD,
		Name:          "LGPD",
		FullName:      "Lei Geral de Proteção de Dados",
		Jurisdiction:  "Brazil",
		Region:        "South America",
		EffectiveDate: "2020-09-18",
		DataSubjectRights: []string{
			"Confirmation of processing",
			"Access to data",
			"Correction of data",
			"Anonymization or deletion",
			"Portability",
			"Information about sharing",
			"Information about consent denial",
			"Revocation of consent",
			"Opposition to processing",
			"Review of automated decisions",
		},
		ConsentRequirements: []string{
			"Free, informed and unambiguous consent",
			"Specific purpose consent",
			"Highlighted consent for sensitive data",
			"Parental consent for children",
		},
		DataProtectionPrinciples: []string{
			"Purpose",
			"Adequacy",
			"Necessity",
			"Free access",
			"Quality of data",
			"Transparency",
			"Security",
			"Prevention",
			"Non-discrimination",
			"Accountability",
		},
		BreachNotificationHours: 48,
		Penalties: Penalty{
			MaxFine:          "2% of revenue in Brazil, max R$50 million per violation",
			CalculationBasis: "Per violation",
		},
		CrossBorderTransferRules: []string{
			"Countries with adequate protection",
			"Standard contractual clauses",
			"Specific consent",
			"Corporate rules",
		},
		HealthcareSpecificRules: []string{
			"Sensitive data special protections",
			"Health data processing restrictions",
			"Research exemptions with anonymization",
		},
		RequiredDocumentation: []string{
			"Records of processing",
			"Data Protection Impact Reports",
			"Consent records",
			"Data transfer agreements",
		},
	},
	{
		ID:            POPIA,
		Name:          "POPIA",
		FullName:      "Protection of Personal Information Act",
		Jurisdiction:  "South Africa",
		Region:        "Africa",
		EffectiveDate: "2021-07-01",
		DataSubjectRights: []string{
			"Right to be notified",
			"Right to access",
			"Right to request correction",
			"Right to request deletion",
			"Right to object to processing",
			"Right not to be subject to automated decisions",
			"Right to complain to Information Regulator",
			"Right to institute civil proceedings",
		},
		ConsentRequirements: []string{
			"Voluntary consent",
			"Specific consent",
			"Informed consent",
			"Special consent for special categories",
		},
		DataProtectionPrinciples: []string{
			"Accountability",
			"Processing limitation",
			"Purpose specification",
			"Further processing limitation",
			"Information quality",
			"Openness",
			"Security safeguards",
			"Data subject participation",
		},
		BreachNotificationHours: 0,
		Penalties: Penalty{
			MaxFine:          "R10 million or imprisonment up to 10 years",
			CalculationBasis: "Per offense",
		},
		CrossBorderTransferRules: []string{
			"Adequate level of protection",
			"Binding corporate rules",
			"Consent of data subject",
			"Contract performance",
		},
		HealthcareSpecificRules: []string{
			"Special personal information protections",
			"Health professional exemptions",
			"Public health exemptions",
		},
		RequiredDocumentation: []string{
			"PAIA manual",
			"Privacy policies",
			"Processing records",
			"Consent records",
		},
	},
	{
		ID:            CCPA,
		Name:          "CCPA/CPRA",
		FullName:      "California Consumer Privacy Act / California Privacy Rights Act",
		Jurisdiction:  "California, United States",
		Region:        "North America",
		EffectiveDate: "2020-01-01",
		DataSubjectRights: []string{
			"Right to know",
			"Right to delete",
			"Right to opt-out of sale/sharing",
			"Right to non-discrimination",
			"Right to correct",
			"Right to limit use of sensitive PI",
			"Right to data portability",
		},
		ConsentRequirements: []string{
			"Opt-out for sale/sharing",
			"Opt-in for minors under 16",
			"Affirmative consent for sensitive PI",
		},
		DataProtectionPrinciples: []string{
			"Transparency",
			"Purpose limitation",
			"Data minimization",
			"Consumer control",
		},
		BreachNotificationHours: 0,
		Penalties: Penalty{
			MaxFine:          "$7,500 per intentional violation, $2,500 per unintentional",
			CalculationBasis: "Per violation",
		},
		CrossBorderTransferRules: []string{
			"Disclosure in privacy notice",
			"Contractual protections recommended",
		},
		HealthcareSpecificRules: []string{
			"HIPAA-covered entities partially exempt",
			"Medical information has special protections",
			"Clinical trial data exemptions",
		},
		RequiredDocumentation: []string{
			"Privacy policy",
			"Consumer request records",
			"Opt-out mechanisms",
			"Training records",
		},
	},
	{
		ID:            DPDP,
		Name:          "DPDP",
		FullName:      "Digital Personal Data Protection Act",
		Jurisdiction:  "India",
		Region:        "Asia",
		EffectiveDate: "2023-08-11",
		DataSubjectRights: []string{
			"Right to access information",
			"Right to correction and erasure",
			"Right to grievance redressal",
			"Right to nominate",
		},
		ConsentRequirements: []string{
			"Free, specific, informed consent",
			"Clear affirmative action",
			"Verifiable parental consent for children",
		},
		DataProtectionPrinciples: []string{
			"Lawful processing",
			"Purpose limitation",
			"Data minimization",
			"Accuracy",
			"Storage limitation",
			"Security safeguards",
		},
		BreachNotificationHours: 72,
		Penalties: Penalty{
			MaxFine:          "₹250 crore (approx. $30 million)",
			CalculationBasis: "Per violation",
		},
		CrossBorderTransferRules: []string{
			"Transfer to notified countries allowed",
			"Government may restrict certain transfers",
			"Significant Data Fiduciary additional obligations",
		},
		HealthcareSpecificRules: []string{
			"Health data as sensitive personal data",
			"Consent manager requirements",
			"Data Protection Officer requirements",
		},
		RequiredDocumentation: []string{
			"Consent records",
			"Processing records",
			"Data Protection Impact Assessments",
			"Breach notification records",
		},
	},
	{
		ID:            PrivacyActAU,
		Name:          "Privacy Act",
		FullName:      "Privacy Act 1988",
		Jurisdiction:  "Australia",
		Region:        "Oceania",
		EffectiveDate: "1988-12-21",
		DataSubjectRights: []string{
			"Right to access",
			"Right to correction",
			"Right to complain",
			"Right to anonymity/pseudonymity",
		},
		ConsentRequirements: []string{
			"Informed consent",
			"Voluntary consent",
			"Current and specific consent",
			"Capacity to consent",
		},
		DataProtectionPrinciples: []string{
			"Open and transparent management",
			"Anonymity and pseudonymity",
			"Collection limitation",
			"Dealing with unsolicited information",
			"Notification of collection",
			"Use and disclosure limitation",
			"Direct marketing restrictions",
			"Cross-border disclosure",
			"Government identifiers",
			"Quality of personal information",
			"Security of personal information",
			"Access to personal information",
			"Correction of personal information",
		},
		BreachNotificationHours: 720,
		Penalties: Penalty{
			MaxFine:          "AUD $50 million or 30% of turnover",
			CalculationBasis: "Per serious/repeated interference",
		},
		CrossBorderTransferRules: []string{
			"Reasonable steps for compliance",
			"Informed consent alternative",
			"Binding scheme participation",
			"Similar law in destination country",
		},
		HealthcareSpecificRules: []string{
			"Health information special provisions",
			"My Health Records Act requirements",
			"State health privacy laws may apply",
		},
		RequiredDocumentation: []string{
			"Privacy policy",
			"Collection notices",
			"Data breach response plan",
			"Privacy Impact Assessments",
		},
	},
}

// rules is the per-regulation requirement matrix, keyed by rule kind then regulation id
var rules = map[RuleKind]map[string]Rule{
	RuleDataEncryption: {
		HIPAA:        {Required: true, Standard: "AES-256"},
		GDPR:         {Required: true, Standard: "appropriate technical measures"},
		PIPEDA:       {Required: true, Standard: "appropriate security"},
		LGPD:         {Required: true, Standard: "technical and administrative measures"},
		POPIA:        {Required: true, Standard: "appropriate measures"},
		CCPA:         {Required: false, Standard: "reasonable security"},
		DPDP:         {Required: true, Standard: "reasonable security safeguards"},
		PrivacyActAU: {Required: true, Standard: "reasonable steps"},
	},
	RuleConsentManagement: {
		HIPAA:        {Required: true, Attributes: map[string]string{"type": "authorization", "explicit": "true"}},
		GDPR:         {Required: true, Attributes: map[string]string{"type": "explicit", "granular": "true", "withdrawable": "true"}},
		PIPEDA:       {Required: true, Attributes: map[string]string{"type": "meaningful", "express": "true"}},
		LGPD:         {Required: true, Attributes: map[string]string{"type": "free-informed", "specific": "true"}},
		POPIA:        {Required: true, Attributes: map[string]string{"type": "voluntary-specific", "informed": "true"}},
		CCPA:         {Required: true, Attributes: map[string]string{"type": "opt-out", "sensitive": "opt-in"}},
		DPDP:         {Required: true, Attributes: map[string]string{"type": "free-specific", "verifiable": "true"}},
		PrivacyActAU: {Required: true, Attributes: map[string]string{"type": "informed-voluntary", "current": "true"}},
	},
	RuleBreachNotification: {
		HIPAA:        {Required: true, Timeframe: "60 days", Authority: "HHS", Attributes: map[string]string{"affected": "true"}},
		GDPR:         {Required: true, Timeframe: "72 hours", Authority: "DPA", Attributes: map[string]string{"affected": "high risk"}},
		PIPEDA:       {Required: true, Timeframe: "as soon as feasible", Authority: "OPC", Attributes: map[string]string{"affected": "true"}},
		LGPD:         {Required: true, Timeframe: "reasonable time", Authority: "ANPD", Attributes: map[string]string{"affected": "true"}},
		POPIA:        {Required: true, Timeframe: "as soon as reasonably possible", Authority: "Information Regulator", Attributes: map[string]string{"affected": "true"}},
		CCPA:         {Required: true, Timeframe: "expedient", Authority: "AG", Attributes: map[string]string{"affected": "true"}},
		DPDP:         {Required: true, Timeframe: "72 hours", Authority: "Data Protection Board", Attributes: map[string]string{"affected": "true"}},
		PrivacyActAU: {Required: true, Timeframe: "30 days", Authority: "OAIC", Attributes: map[string]string{"affected": "true"}},
	},
}

// ruleKinds fixes the order rules are reported in
var ruleKinds = []RuleKind{RuleDataEncryption, RuleConsentManagement, RuleBreachNotification}
