package jurisdiction

import (
	"sort"
	"strings"

	"github.com/raaihank/compliance-sentinel/internal/regulation"
)

const (
	noRegulationsText = "No specific regulations detected"

	harmonizedText = `Harmonized approach: Apply the strictest requirement from each regulation.
Key principles:
- Use explicit opt-in consent (GDPR standard)
- Apply 72-hour breach notification (strictest timeline)
- Implement all data subject rights from all applicable regulations
- Use encryption for all health data (universal requirement)
- Maintain comprehensive audit trails (HIPAA + GDPR)
- Appoint DPO/Privacy Officer (GDPR + DPDP requirement)`
)

// locationRegulations maps a location name to the regulations it triggers.
// Lookups are exact: unrecognized spellings simply match nothing.
var locationRegulations = map[string][]string{
	"United States":  {regulation.HIPAA, regulation.CCPA},
	"California":     {regulation.CCPA},
	"European Union": {regulation.GDPR},
	"Germany":        {regulation.GDPR},
	"France":         {regulation.GDPR},
	"United Kingdom": {regulation.GDPR},
	"Canada":         {regulation.PIPEDA},
	"Brazil":         {regulation.LGPD},
	"South Africa":   {regulation.POPIA},
	"India":          {regulation.DPDP},
	"Australia":      {regulation.PrivacyActAU},
}

// knownConflict is a requirement on which two regulations disagree
type knownConflict struct {
	first, second string
	Conflict
}

// knownConflicts is checked in order; order is part of the output contract
var knownConflicts = []knownConflict{
	{
		first: regulation.GDPR, second: regulation.HIPAA,
		Conflict: Conflict{
			Requirement: "Breach Notification Timeline",
			Regulations: []string{"GDPR", "HIPAA"},
			Description: "GDPR requires 72-hour notification, HIPAA allows up to 60 days",
			Resolution:  "Apply stricter GDPR timeline of 72 hours",
		},
	},
	{
		first: regulation.GDPR, second: regulation.CCPA,
		Conflict: Conflict{
			Requirement: "Consent Mechanism",
			Regulations: []string{"GDPR", "CCPA"},
			Description: "GDPR requires opt-in, CCPA allows opt-out for sale",
			Resolution:  "Implement opt-in for all purposes (GDPR standard)",
		},
	},
	{
		first: regulation.DPDP, second: regulation.GDPR,
		Conflict: Conflict{
			Requirement: "Cross-border Transfer",
			Regulations: []string{"DPDP", "GDPR"},
			Description: "Different adequacy assessment frameworks",
			Resolution:  "Implement SCCs and additional safeguards for both",
		},
	},
}

// Detector resolves applicable regulations from location names
type Detector struct {
	locations map[string][]string
	conflicts []knownConflict
}

// NewDetector creates a detector over the built-in location and conflict tables
func NewDetector() *Detector {
	return &Detector{
		locations: locationRegulations,
		conflicts: knownConflicts,
	}
}

// Detect resolves the regulations that apply to a project operating in,
// serving users in, and processing data in the given locations.
func (d *Detector) Detect(operatingCountries, userLocations, dataProcessingLocations []string) Detection {
	locations := dedupe(operatingCountries, userLocations, dataProcessingLocations)

	applicable := make([]string, 0)
	seen := make(map[string]bool)
	for _, location := range locations {
		for _, id := range d.locations[location] {
			if !seen[id] {
				seen[id] = true
				applicable = append(applicable, id)
			}
		}
	}

	return Detection{
		DetectedJurisdictions:   locations,
		ApplicableRegulations:   applicable,
		ConflictingRequirements: d.detectConflicts(seen),
		HarmonizedApproach:      harmonizedApproach(applicable),
	}
}

// SupportedLocations returns the location names the detector recognizes, sorted
func (d *Detector) SupportedLocations() []string {
	out := make([]string, 0, len(d.locations))
	for location := range d.locations {
		out = append(out, location)
	}
	sort.Strings(out)
	return out
}

func (d *Detector) detectConflicts(present map[string]bool) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, known := range d.conflicts {
		if present[known.first] && present[known.second] {
			c := known.Conflict
			c.Regulations = append([]string(nil), known.Regulations...)
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func harmonizedApproach(applicable []string) string {
	switch len(applicable) {
	case 0:
		return noRegulationsText
	case 1:
		return "Follow " + strings.ToUpper(applicable[0]) + " requirements"
	default:
		return harmonizedText
	}
}

// dedupe concatenates the lists and drops repeats, keeping first occurrences in order
func dedupe(lists ...[]string) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, s := range list {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
