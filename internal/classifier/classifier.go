// Package classifier implements the text model that estimates how closely an
// announcement resembles known suspicious announcements.
//
// A Classifier is trained once on construction and is read-only afterwards,
// so a single instance may be shared by concurrent callers.
package classifier

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credibility-cli/internal/model"
)

// Label is a training label.
type Label int

const (
	LabelNormal     Label = 0
	LabelSuspicious Label = 1
)

// Example is one labeled training document.
type Example struct {
	Text  string
	Label Label
}

// DefaultCorpus is the fixed training set: four normal and four suspicious
// announcements with vocabulary deliberately skewed toward promotional
// language.
var DefaultCorpus = []Example{
	{"Company reports record profits and expects strong future growth.", LabelNormal},
	{"We are pleased to announce a new strategic partnership.", LabelNormal},
	{"Quarterly earnings are in line with market expectations.", LabelNormal},
	{"Our new product launch has been a resounding success.", LabelNormal},
	{"Unprecedented returns guaranteed, this is a once-in-a-lifetime opportunity.", LabelSuspicious},
	{"Massive profits expected, stock value to skyrocket, insider information.", LabelSuspicious},
	{"Guaranteed high returns with no risk, act now before it's too late.", LabelSuspicious},
	{"This secret investment is sure to triple in value, limited slots available.", LabelSuspicious},
}

// Classifier pairs a fitted vectorizer with a fitted logistic model.
type Classifier struct {
	vec   *Vectorizer
	model *LogisticRegression
}

// New trains a Classifier on DefaultCorpus.
func New() (*Classifier, error) {
	return Train(DefaultCorpus, FitOptions{})
}

// Train fits a Classifier on corpus.
func Train(corpus []Example, opts FitOptions) (*Classifier, error) {
	docs := make([]string, len(corpus))
	labels := make([]int, len(corpus))
	for i, ex := range corpus {
		docs[i] = ex.Text
		labels[i] = int(ex.Label)
	}

	vec, err := FitVectorizer(docs)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: train")
	}

	features := make([][]float64, len(docs))
	for i, doc := range docs {
		features[i] = vec.Transform(doc)
	}

	lr, err := FitLogistic(features, labels, opts)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: train")
	}

	return &Classifier{vec: vec, model: lr}, nil
}

// PredictSuspicion returns the probability, in [0,1], that text belongs to
// the suspicious class. Text without any known term scores the model's base
// rate.
func (c *Classifier) PredictSuspicion(text string) float64 {
	return c.model.Probability(c.vec.Transform(text))
}

// ExplainTopTerms returns up to topK terms that push text toward the
// suspicious class, strongest first. Each term's contribution is its model
// weight times its feature value; weights are rescaled so the strongest term
// has weight 1.
func (c *Classifier) ExplainTopTerms(text string, topK int) []model.TermWeight {
	if topK <= 0 {
		return []model.TermWeight{}
	}

	x := c.vec.Transform(text)
	type contribution struct {
		index int
		value float64
	}
	var contribs []contribution
	for i, v := range x {
		if cv := c.model.Weights[i] * v; cv > 0 {
			contribs = append(contribs, contribution{index: i, value: cv})
		}
	}
	sort.SliceStable(contribs, func(a, b int) bool {
		return contribs[a].value > contribs[b].value
	})
	if len(contribs) > topK {
		contribs = contribs[:topK]
	}

	out := make([]model.TermWeight, 0, len(contribs))
	if len(contribs) == 0 || contribs[0].value <= 0 {
		return out
	}
	top := contribs[0].value
	for _, cv := range contribs {
		out = append(out, model.TermWeight{
			Term:   c.vec.terms[cv.index],
			Weight: cv.value / top,
		})
	}
	return out
}

// Vocabulary returns the fitted terms in feature order.
func (c *Classifier) Vocabulary() []string {
	return c.vec.Terms()
}

// TermWeight returns the model coefficient of term and whether the term is
// in the vocabulary.
func (c *Classifier) TermWeight(term string) (float64, bool) {
	i, ok := c.vec.index[term]
	if !ok {
		return 0, false
	}
	return c.model.Weights[i], true
}

// Intercept returns the model bias.
func (c *Classifier) Intercept() float64 {
	return c.model.Intercept
}
