package jurisdiction

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raaihank/compliance-sentinel/internal/regulation"
)

func TestDetectUnitedStates(t *testing.T) {
	d := NewDetector()

	result := d.Detect([]string{"United States"}, nil, nil)
	assert.Equal(t, []string{regulation.HIPAA, regulation.CCPA}, result.ApplicableRegulations)
	assert.Empty(t, result.ConflictingRequirements)
	assert.Equal(t, harmonizedText, result.HarmonizedApproach)
}

func TestDetectEmptyInput(t *testing.T) {
	result := NewDetector().Detect(nil, []string{}, nil)

	require.NotNil(t, result.ApplicableRegulations)
	assert.Empty(t, result.ApplicableRegulations)
	assert.Empty(t, result.DetectedJurisdictions)
	assert.Empty(t, result.ConflictingRequirements)
	assert.Equal(t, "No specific regulations detected", result.HarmonizedApproach)
}

func TestDetectSingleRegulation(t *testing.T) {
	result := NewDetector().Detect([]string{"Australia"}, nil, nil)
	assert.Equal(t, []string{regulation.PrivacyActAU}, result.ApplicableRegulations)
	assert.Equal(t, "Follow PRIVACY-ACT-AU requirements", result.HarmonizedApproach)
}

func TestDetectIgnoresUnknownLocations(t *testing.T) {
	result := NewDetector().Detect([]string{"Atlantis", "united states"}, []string{"Brazil"}, nil)

	assert.Equal(t, []string{"Atlantis", "united states", "Brazil"}, result.DetectedJurisdictions)
	assert.Equal(t, []string{regulation.LGPD}, result.ApplicableRegulations)
}

func TestDetectDedupesLocationsAndRegulations(t *testing.T) {
	result := NewDetector().Detect(
		[]string{"Germany", "California"},
		[]string{"France", "Germany"},
		[]string{"United States", "California"},
	)

	assert.Equal(t, []string{"Germany", "California", "France", "United States"}, result.DetectedJurisdictions)
	assert.Equal(t, []string{regulation.GDPR, regulation.CCPA, regulation.HIPAA}, result.ApplicableRegulations)
}

func TestDetectGDPRHIPAAConflictOnce(t *testing.T) {
	result := NewDetector().Detect([]string{"European Union"}, []string{"United States"}, nil)

	count := 0
	for _, c := range result.ConflictingRequirements {
		if c.Requirement == "Breach Notification Timeline" {
			count++
			assert.Equal(t, []string{"GDPR", "HIPAA"}, c.Regulations)
			assert.Equal(t, "Apply stricter GDPR timeline of 72 hours", c.Resolution)
		}
	}
	assert.Equal(t, 1, count)
}

func TestDetectConflictOrder(t *testing.T) {
	result := NewDetector().Detect([]string{"India", "United States", "Germany"}, nil, nil)

	require.Len(t, result.ConflictingRequirements, 3)
	assert.Equal(t, "Breach Notification Timeline", result.ConflictingRequirements[0].Requirement)
	assert.Equal(t, "Consent Mechanism", result.ConflictingRequirements[1].Requirement)
	assert.Equal(t, "Cross-border Transfer", result.ConflictingRequirements[2].Requirement)
}

func TestDetectIsDeterministic(t *testing.T) {
	d := NewDetector()
	in := []string{"Canada", "South Africa", "European Union"}

	first := d.Detect(in, in, nil)
	second := d.Detect(in, in, nil)
	assert.Equal(t, first, second)
}

func TestDetectConflictsDoNotShareBackingArrays(t *testing.T) {
	d := NewDetector()
	first := d.Detect([]string{"European Union", "United States"}, nil, nil)
	first.ConflictingRequirements[0].Regulations[0] = "tampered"

	second := d.Detect([]string{"European Union", "United States"}, nil, nil)
	assert.Equal(t, "GDPR", second.ConflictingRequirements[0].Regulations[0])
}

func TestSupportedLocationsResolve(t *testing.T) {
	d := NewDetector()
	for _, location := range d.SupportedLocations() {
		result := d.Detect([]string{location}, nil, nil)
		for _, id := range result.ApplicableRegulations {
			assert.True(t, regulation.Default().Has(id), "location %s maps to unknown regulation %s", location, id)
		}
	}
}

func TestSupportedLocationsAreSorted(t *testing.T) {
	d := NewDetector()
	first := d.SupportedLocations()

	assert.Len(t, first, len(locationRegulations))
	assert.True(t, sort.StringsAreSorted(first))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, d.SupportedLocations())
	}
}

func TestHarmonizedTextHasNoSourceIndentation(t *testing.T) {
	result := NewDetector().Detect([]string{"United States", "European Union"}, nil, nil)

	lines := strings.Split(result.HarmonizedApproach, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Harmonized approach: Apply the strictest requirement from each regulation.", lines[0])
	for _, line := range lines {
		assert.Equal(t, strings.TrimSpace(line), line)
	}
}
