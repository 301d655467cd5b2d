package signals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensationalLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"keyword", "A groundbreaking result for shareholders.", true},
		{"mixed case", "This is REVOLUTIONARY.", true},
		{"phrase", "Revenue will double next year.", true},
		{"hyphenated", "A once-in-a-lifetime opportunity.", true},
		{"explosive growth", "We expect Explosive Growth.", true},
		{"substring only", "Our guaranteedly safe fund.", false},
		{"prefix only", "The revolutionaryish design.", false},
		{"plain", "Quarterly revenue was $4.2 million.", false},
		{"empty", "", false},
	}

	check := SensationalLanguage{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flags := check.Evaluate(context.Background(), Input{Text: tt.text})
			if tt.want {
				assert.Equal(t, []string{FlagSensational}, flags)
			} else {
				assert.Empty(t, flags)
			}
		})
	}
}

func TestSensationalLanguage_SingleFlagForManyHits(t *testing.T) {
	t.Parallel()

	flags := SensationalLanguage{}.Evaluate(context.Background(), Input{
		Text: "Revolutionary, groundbreaking, guaranteed explosive growth.",
	})
	assert.Len(t, flags, 1)
}

func TestPressureTactics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"act now", "Act now!", true},
		{"limited time", "For a LIMITED TIME only.", true},
		{"too late", "Buy before it's too late.", true},
		{"miss out", "Don't miss out on this.", true},
		{"two phrases", "Act now, limited time offer.", true},
		{"calm", "The board will act on the proposal next quarter.", false},
		{"empty", "", false},
	}

	check := PressureTactics{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flags := check.Evaluate(context.Background(), Input{Text: tt.text})
			if tt.want {
				assert.Equal(t, []string{FlagPressureTactics}, flags)
			} else {
				assert.Empty(t, flags)
			}
		})
	}
}

func TestLackOfSpecifics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"no digits", "Great things are coming.", true},
		{"one digit", "We grew 5 percent.", true},
		{"two digits", "We grew 12 percent.", false},
		{"scattered digits", "Q3 up 4%.", false},
		{"empty", "", true},
	}

	check := LackOfSpecifics{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flags := check.Evaluate(context.Background(), Input{Text: tt.text})
			if tt.want {
				assert.Equal(t, []string{FlagLackOfSpecifics}, flags)
			} else {
				assert.Empty(t, flags)
			}
		})
	}
}

func TestCheckFunc(t *testing.T) {
	t.Parallel()

	c := CheckFunc{
		Name:    "always",
		Summary: "Always flags",
		Needs:   NeedsSymbol,
		Function: func(_ context.Context, in Input) []string {
			return []string{"saw " + in.Symbol}
		},
	}
	assert.Equal(t, "always", c.ID())
	assert.Equal(t, "Always flags", c.Description())
	assert.Equal(t, []string{"saw ACME"}, c.Evaluate(context.Background(), Input{Symbol: "ACME"}))

	assert.Nil(t, CheckFunc{Name: "empty"}.Evaluate(context.Background(), Input{}))
}

func TestInputFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		check Check
		want  Input
	}{
		{"text only", PressureTactics{}, Input{Text: "t"}},
		{"symbol", HistoricalMismatch{}, Input{Text: "t", Symbol: "ACME"}},
		{"company", PartnershipVerification{}, Input{Text: "t", CompanyName: "Acme"}},
		{"both", CheckFunc{Needs: NeedsCompanyName | NeedsSymbol}, Input{Text: "t", CompanyName: "Acme", Symbol: "ACME"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, InputFor(tt.check, "t", "Acme", "ACME"))
		})
	}
}

func TestRequirementHas(t *testing.T) {
	t.Parallel()

	both := NeedsCompanyName | NeedsSymbol
	assert.True(t, both.Has(NeedsSymbol))
	assert.True(t, both.Has(NeedsCompanyName))
	assert.False(t, NeedsSymbol.Has(NeedsCompanyName))
	assert.True(t, Requirement(0).Has(0))
}
