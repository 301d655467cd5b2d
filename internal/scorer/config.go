// Package scorer combines signal checks and the text classifier into a
// credibility score for an announcement.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credibility-cli/internal/config"
)

// DefaultScorerConfig returns a config.ScoringConfig with the standard
// weights. Rule weights sum to 80; with the ML weight the total can exceed
// 100, in which case the score floors at 0.
func DefaultScorerConfig() config.ScoringConfig {
	return config.ScoringConfig{
		SensationalWeight:             20,
		HistoricalMismatchWeight:      25,
		PartnershipVerificationWeight: 20,
		PressureTacticsWeight:         10,
		LackOfSpecificsWeight:         5,
		MLWeight:                      35,

		MLFlagThreshold: 0.6,
		TopTerms:        5,
	}
}

// RuleWeightSum returns the sum of all rule weights, excluding the ML weight.
func RuleWeightSum(c config.ScoringConfig) int {
	return c.SensationalWeight + c.HistoricalMismatchWeight +
		c.PartnershipVerificationWeight + c.PressureTacticsWeight +
		c.LackOfSpecificsWeight
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	weights := []struct {
		name  string
		value int
	}{
		{"sensational", c.SensationalWeight},
		{"historical_mismatch", c.HistoricalMismatchWeight},
		{"partnership_verification", c.PartnershipVerificationWeight},
		{"pressure_tactics", c.PressureTacticsWeight},
		{"lack_of_specifics", c.LackOfSpecificsWeight},
		{"ml", c.MLWeight},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > InitialScore {
			errs = append(errs, fmt.Sprintf("%s weight must be between 0 and %d", w.name, InitialScore))
		}
	}

	if c.MLFlagThreshold < 0 || c.MLFlagThreshold > 1 {
		errs = append(errs, "ml_flag_threshold must be between 0 and 1")
	}
	if c.TopTerms < 0 {
		errs = append(errs, "top_terms must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
