package model

// Credibility is the categorical verdict derived from a score.
type Credibility string

const (
	CredibilityHigh   Credibility = "High"
	CredibilityMedium Credibility = "Medium"
	CredibilityLow    Credibility = "Low"
)

// Score thresholds. A score below LowThreshold is Low, below
// MediumThreshold is Medium, anything else is High.
const (
	LowThreshold    = 50
	MediumThreshold = 75
)

// CredibilityFor maps a score onto its credibility level.
func CredibilityFor(score int) Credibility {
	switch {
	case score < LowThreshold:
		return CredibilityLow
	case score < MediumThreshold:
		return CredibilityMedium
	default:
		return CredibilityHigh
	}
}

// DeductionCategory tells rule penalties apart from the classifier penalty.
type DeductionCategory string

const (
	CategoryRule DeductionCategory = "rule"
	CategoryML   DeductionCategory = "ml"
)

// Deduction records one penalty subtracted from the initial score.
type Deduction struct {
	Check    string            `json:"check" yaml:"check"`
	Reason   string            `json:"reason" yaml:"reason"`
	Penalty  int               `json:"penalty" yaml:"penalty"`
	Category DeductionCategory `json:"category" yaml:"category"`
}

// Breakdown explains how the final score was reached.
type Breakdown struct {
	InitialScore int         `json:"initial_score" yaml:"initial_score"`
	Deductions   []Deduction `json:"deductions" yaml:"deductions"`
}

// TotalPenalty sums every deduction.
func (b Breakdown) TotalPenalty() int {
	var total int
	for _, d := range b.Deductions {
		total += d.Penalty
	}
	return total
}

// TermWeight is one term's normalized contribution toward the suspicious
// class.
type TermWeight struct {
	Term   string  `json:"term" yaml:"term"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// MLInsights surfaces the classifier output behind the ML penalty.
type MLInsights struct {
	SuspicionProbability float64      `json:"suspicion_probability" yaml:"suspicion_probability"`
	TopTerms             []TermWeight `json:"top_terms" yaml:"top_terms"`
}

// AnalysisResult is the outcome of analyzing one announcement.
type AnalysisResult struct {
	ID          string      `json:"id" yaml:"id"`
	Score       int         `json:"score" yaml:"score"`
	Credibility Credibility `json:"credibility" yaml:"credibility"`
	Flags       []string    `json:"flags" yaml:"flags"`
	Breakdown   Breakdown   `json:"breakdown" yaml:"breakdown"`
	MLInsights  *MLInsights `json:"ml_insights,omitempty" yaml:"ml_insights,omitempty"`
}

// Comparison pairs the results of two announcements analyzed side by side.
type Comparison struct {
	Left  *AnalysisResult `json:"left" yaml:"left"`
	Right *AnalysisResult `json:"right" yaml:"right"`
}
