package jurisdiction

// Detection is the result of resolving regulations from a set of locations
type Detection struct {
	DetectedJurisdictions   []string   `json:"detectedJurisdictions"`
	ApplicableRegulations   []string   `json:"applicableRegulations"`
	ConflictingRequirements []Conflict `json:"conflictingRequirements"`
	HarmonizedApproach      string     `json:"harmonizedApproach"`
}

// Conflict describes a requirement on which two applicable regulations disagree
type Conflict struct {
	Requirement string   `json:"requirement"`
	Regulations []string `json:"regulations"`
	Description string   `json:"conflict"`
	Resolution  string   `json:"resolution"`
}
