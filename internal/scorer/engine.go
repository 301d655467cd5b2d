package scorer

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credibility-cli/internal/config"
	"github.com/sells-group/credibility-cli/internal/model"
	"github.com/sells-group/credibility-cli/internal/signals"
)

// InitialScore is the score every analysis starts from.
const InitialScore = 100

// MLCheckID names the classifier deduction in a breakdown.
const MLCheckID = "ml_classifier"

// Predictor is the text model consulted after the rule checks.
type Predictor interface {
	PredictSuspicion(text string) float64
	ExplainTopTerms(text string, topK int) []model.TermWeight
}

// Rule registers a check with the penalty it deducts when it fires.
type Rule struct {
	Check  signals.Check
	Weight int
}

// Options tunes the classifier penalty and check evaluation.
type Options struct {
	MLWeight        int
	MLFlagThreshold float64
	TopTerms        int
	// Concurrent evaluates checks in parallel. Results are still combined in
	// registration order.
	Concurrent bool
}

// OptionsFromConfig extracts engine options from a ScoringConfig.
func OptionsFromConfig(c config.ScoringConfig) Options {
	return Options{
		MLWeight:        c.MLWeight,
		MLFlagThreshold: c.MLFlagThreshold,
		TopTerms:        c.TopTerms,
		Concurrent:      c.ConcurrentChecks,
	}
}

// DefaultRules returns the five standard checks in evaluation order with
// their weights from c. Either source may be nil.
func DefaultRules(c config.ScoringConfig, fin signals.FinancialsSource, news signals.PartnershipSource) []Rule {
	return []Rule{
		{Check: signals.SensationalLanguage{}, Weight: c.SensationalWeight},
		{Check: signals.HistoricalMismatch{Financials: fin}, Weight: c.HistoricalMismatchWeight},
		{Check: signals.PartnershipVerification{News: news}, Weight: c.PartnershipVerificationWeight},
		{Check: signals.PressureTactics{}, Weight: c.PressureTacticsWeight},
		{Check: signals.LackOfSpecifics{}, Weight: c.LackOfSpecificsWeight},
	}
}

// Engine scores announcements. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	rules     []Rule
	predictor Predictor
	opts      Options
}

// NewEngine creates an Engine evaluating rules in the given order.
func NewEngine(predictor Predictor, opts Options, rules ...Rule) (*Engine, error) {
	if predictor == nil {
		return nil, eris.New("scorer: predictor is required")
	}
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if r.Check == nil {
			return nil, eris.Errorf("scorer: rule %d has no check", i)
		}
		if r.Weight < 0 {
			return nil, eris.Errorf("scorer: rule %s has negative weight", r.Check.ID())
		}
		if _, dup := seen[r.Check.ID()]; dup {
			return nil, eris.Errorf("scorer: duplicate rule %s", r.Check.ID())
		}
		seen[r.Check.ID()] = struct{}{}
	}
	if opts.MLWeight < 0 {
		return nil, eris.New("scorer: ml weight must be >= 0")
	}

	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &Engine{rules: owned, predictor: predictor, opts: opts}, nil
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Analyze scores one announcement. It never fails; checks backed by
// unavailable external data simply do not fire.
func (e *Engine) Analyze(ctx context.Context, a model.Announcement) *model.AnalysisResult {
	result := &model.AnalysisResult{
		ID:        uuid.NewString(),
		Flags:     []string{},
		Breakdown: model.Breakdown{InitialScore: InitialScore, Deductions: []model.Deduction{}},
	}
	score := InitialScore

	for i, flags := range e.evaluate(ctx, a) {
		if len(flags) == 0 {
			continue
		}
		r := e.rules[i]
		score -= r.Weight
		result.Flags = append(result.Flags, flags...)
		result.Breakdown.Deductions = append(result.Breakdown.Deductions, model.Deduction{
			Check:    r.Check.ID(),
			Reason:   r.Check.Description(),
			Penalty:  r.Weight,
			Category: model.CategoryRule,
		})
	}

	prob := e.predictor.PredictSuspicion(a.Text)
	if penalty := MLPenalty(e.opts.MLWeight, prob); penalty > 0 {
		score -= penalty
		result.Breakdown.Deductions = append(result.Breakdown.Deductions, model.Deduction{
			Check:    MLCheckID,
			Reason:   fmt.Sprintf("Classifier suspicion probability %.2f", prob),
			Penalty:  penalty,
			Category: model.CategoryML,
		})
	}
	if prob > e.opts.MLFlagThreshold {
		result.Flags = append(result.Flags, MLFlag(prob))
	}

	result.Score = ClampScore(score)
	result.Credibility = model.CredibilityFor(result.Score)
	result.MLInsights = &model.MLInsights{
		SuspicionProbability: prob,
		TopTerms:             e.predictor.ExplainTopTerms(a.Text, e.opts.TopTerms),
	}

	zap.L().Debug("scorer: announcement analyzed",
		zap.String("id", result.ID),
		zap.String("symbol", a.Symbol),
		zap.Int("score", result.Score),
		zap.String("credibility", string(result.Credibility)),
		zap.Int("flags", len(result.Flags)),
		zap.Float64("suspicion", prob),
	)
	return result
}

// evaluate runs every check and returns their flags indexed by rule.
func (e *Engine) evaluate(ctx context.Context, a model.Announcement) [][]string {
	out := make([][]string, len(e.rules))
	if !e.opts.Concurrent {
		for i, r := range e.rules {
			out[i] = r.Check.Evaluate(ctx, signals.InputFor(r.Check, a.Text, a.CompanyName, a.Symbol))
		}
		return out
	}

	var g errgroup.Group
	for i, r := range e.rules {
		g.Go(func() error {
			out[i] = r.Check.Evaluate(ctx, signals.InputFor(r.Check, a.Text, a.CompanyName, a.Symbol))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// MLPenalty converts a suspicion probability into a score deduction.
func MLPenalty(weight int, prob float64) int {
	if math.IsNaN(prob) || prob <= 0 {
		return 0
	}
	return int(math.Round(float64(weight) * math.Min(prob, 1)))
}

// MLFlag is the flag raised when the classifier is confident the text is
// suspicious.
func MLFlag(prob float64) string {
	return fmt.Sprintf("ML model flags content as %d%% suspicious.", int(prob*100))
}

// ClampScore bounds score to [0, InitialScore].
func ClampScore(score int) int {
	return max(0, min(score, InitialScore))
}
