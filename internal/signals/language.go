package signals

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Check identifiers.
const (
	IDSensationalLanguage     = "sensational_language"
	IDHistoricalMismatch      = "historical_mismatch"
	IDPartnershipVerification = "partnership_verification"
	IDPressureTactics         = "pressure_tactics"
	IDLackOfSpecifics         = "lack_of_specifics"
)

// Fixed flag texts.
const (
	FlagSensational     = "Use of sensational or overly promotional language."
	FlagPressureTactics = "Contains high-pressure language urging immediate action."
	FlagLackOfSpecifics = "Lacks specific data, figures, or metrics."
)

// SensationalKeywords trigger the sensational language check when matched as
// whole words, case-insensitively.
var SensationalKeywords = []string{
	"groundbreaking",
	"revolutionary",
	"guaranteed",
	"will double",
	"explosive growth",
	"once-in-a-lifetime",
}

// PressurePhrases trigger the pressure tactics check.
var PressurePhrases = []string{
	"act now",
	"limited time",
	"before it's too late",
	"don't miss out",
}

var (
	sensationalRe = regexp.MustCompile(`(?i)\b(?:` + alternation(SensationalKeywords) + `)\b`)
	pressureRe    = regexp.MustCompile(`(?i)(?:` + alternation(PressurePhrases) + `)`)
)

func alternation(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, "|")
}

// SensationalLanguage flags promotional wording.
type SensationalLanguage struct{}

func (SensationalLanguage) ID() string { return IDSensationalLanguage }
func (SensationalLanguage) Description() string {
	return "Sensational or overly promotional language"
}
func (SensationalLanguage) Requires() Requirement { return 0 }

func (SensationalLanguage) Evaluate(_ context.Context, in Input) []string {
	if sensationalRe.MatchString(in.Text) {
		return []string{FlagSensational}
	}
	return nil
}

// PressureTactics flags language that manufactures urgency.
type PressureTactics struct{}

func (PressureTactics) ID() string            { return IDPressureTactics }
func (PressureTactics) Description() string   { return "High-pressure urgency language" }
func (PressureTactics) Requires() Requirement { return 0 }

func (PressureTactics) Evaluate(_ context.Context, in Input) []string {
	if pressureRe.MatchString(in.Text) {
		return []string{FlagPressureTactics}
	}
	return nil
}

// MinDigits is the number of digit characters an announcement needs to avoid
// the lack of specifics flag.
const MinDigits = 2

// LackOfSpecifics flags announcements with almost no figures in them.
type LackOfSpecifics struct{}

func (LackOfSpecifics) ID() string            { return IDLackOfSpecifics }
func (LackOfSpecifics) Description() string   { return "No concrete figures or metrics" }
func (LackOfSpecifics) Requires() Requirement { return 0 }

func (LackOfSpecifics) Evaluate(_ context.Context, in Input) []string {
	digits := 0
	for _, r := range in.Text {
		if unicode.IsDigit(r) {
			digits++
			if digits >= MinDigits {
				return nil
			}
		}
	}
	return []string{FlagLackOfSpecifics}
}
