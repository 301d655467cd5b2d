package signals

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sells-group/credibility-cli/internal/model"
)

// FinancialsSource looks up company metrics by ticker symbol. It returns nil
// when no data could be obtained and never returns an error.
type FinancialsSource interface {
	CompanyFinancials(ctx context.Context, symbol string) *model.Financials
}

// PartnershipSource reports whether independent news coverage corroborates a
// partnership between two companies. It returns false whenever verification is
// impossible.
type PartnershipSource interface {
	VerifyPartnership(ctx context.Context, companyA, companyB string) bool
}

// LowMarginThreshold is the profit margin below which claims of huge profits
// are considered inconsistent.
const LowMarginThreshold = 0.05

var (
	profitClaimRe = regexp.MustCompile(`(?i)(massive|huge|unprecedented) profits`)
	partnershipRe = regexp.MustCompile(`(?i)partnership with ([\p{L}\p{N}_\s.]+)`)
)

// HistoricalMismatch compares claims of outsized profits against the
// company's reported profit margin.
type HistoricalMismatch struct {
	Financials FinancialsSource
}

func (HistoricalMismatch) ID() string { return IDHistoricalMismatch }
func (HistoricalMismatch) Description() string {
	return "Profit claims inconsistent with reported margin"
}
func (HistoricalMismatch) Requires() Requirement { return NeedsSymbol }

func (c HistoricalMismatch) Evaluate(ctx context.Context, in Input) []string {
	if c.Financials == nil || !profitClaimRe.MatchString(in.Text) {
		return nil
	}

	fin := c.Financials.CompanyFinancials(ctx, in.Symbol)
	if fin == nil {
		return nil
	}
	margin, ok := parseMetric(fin.ProfitMargin)
	if !ok || margin >= LowMarginThreshold {
		return nil
	}
	return []string{fmt.Sprintf(
		"Claims of huge profits are inconsistent with the company's reported profit margin of %.2f%%.",
		margin*100,
	)}
}

// parseMetric parses a provider metric, rejecting sentinels and non-finite
// values.
func parseMetric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, model.NotAvailable) || strings.EqualFold(raw, "None") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// PartnershipVerification flags partnership claims that no news coverage
// corroborates.
type PartnershipVerification struct {
	News PartnershipSource
}

func (PartnershipVerification) ID() string { return IDPartnershipVerification }
func (PartnershipVerification) Description() string {
	return "Unverified partnership claim"
}
func (PartnershipVerification) Requires() Requirement { return NeedsCompanyName }

func (c PartnershipVerification) Evaluate(ctx context.Context, in Input) []string {
	partner, ok := ExtractPartner(in.Text)
	if !ok {
		return nil
	}
	// An unnamed partner cannot be looked up and stays unconfirmed.
	if partner != "" && c.News != nil && c.News.VerifyPartnership(ctx, in.CompanyName, partner) {
		return nil
	}
	return []string{fmt.Sprintf(
		"No news articles found confirming the partnership between %s and %s.",
		in.CompanyName, partner,
	)}
}

// ExtractPartner returns the partner name following "partnership with",
// trimmed of surrounding whitespace and trailing periods. ok reports whether
// the text makes a partnership claim at all; the name is empty when the claim
// names nothing but punctuation.
func ExtractPartner(text string) (name string, ok bool) {
	m := partnershipRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name = strings.TrimRightFunc(strings.TrimSpace(m[1]), func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	return name, true
}
