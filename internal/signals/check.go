// Package signals implements the rule-based checks run against an announcement.
//
// Every check is stateless and must not fail on well-formed string input.
// Checks that rely on external context receive it through a small source
// interface and treat an unavailable source as "no usable evidence".
package signals

import (
	"context"
)

// Requirement declares which optional announcement fields a check reads.
// The text is always supplied.
type Requirement uint8

const (
	// NeedsCompanyName marks checks that read the company name.
	NeedsCompanyName Requirement = 1 << iota
	// NeedsSymbol marks checks that read the ticker symbol.
	NeedsSymbol
)

// Has reports whether r includes all bits of other.
func (r Requirement) Has(other Requirement) bool {
	return r&other == other
}

// Input carries the fields handed to a check. Fields the check did not
// declare in its Requirement are left empty.
type Input struct {
	Text        string
	CompanyName string
	Symbol      string
}

// Check is a single signal evaluated against an announcement. Evaluate
// returns zero or more human-readable flags; a non-empty result counts as one
// hit regardless of its length.
type Check interface {
	ID() string
	Description() string
	Requires() Requirement
	Evaluate(ctx context.Context, in Input) []string
}

// CheckFunc adapts a plain function into a Check.
type CheckFunc struct {
	Name     string
	Summary  string
	Needs    Requirement
	Function func(ctx context.Context, in Input) []string
}

func (c CheckFunc) ID() string            { return c.Name }
func (c CheckFunc) Description() string   { return c.Summary }
func (c CheckFunc) Requires() Requirement { return c.Needs }

func (c CheckFunc) Evaluate(ctx context.Context, in Input) []string {
	if c.Function == nil {
		return nil
	}
	return c.Function(ctx, in)
}

// InputFor builds the Input for check c, copying only the fields it requires.
func InputFor(c Check, text, companyName, symbol string) Input {
	in := Input{Text: text}
	req := c.Requires()
	if req.Has(NeedsCompanyName) {
		in.CompanyName = companyName
	}
	if req.Has(NeedsSymbol) {
		in.Symbol = symbol
	}
	return in
}
