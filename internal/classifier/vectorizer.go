package classifier

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
)

// tokenRe matches runs of two or more word characters.
var tokenRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into word tokens, dropping stop
// words. Single-character tokens are ignored.
func Tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if IsStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Vectorizer maps text onto TF-IDF weighted, L2-normalized feature vectors
// over a vocabulary fixed at fit time.
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

// FitVectorizer builds the vocabulary and smoothed inverse document
// frequencies from docs: idf(t) = ln((1+n)/(1+df(t))) + 1.
func FitVectorizer(docs []string) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, eris.New("classifier: fit vectorizer: no documents")
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, eris.New("classifier: fit vectorizer: empty vocabulary")
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		terms: terms,
		index: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, t := range terms {
		v.index[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v, nil
}

// Transform returns the feature vector for text. Terms outside the fitted
// vocabulary are ignored, so text with no known terms yields a zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, tok := range Tokenize(text) {
		if i, ok := v.index[tok]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] *= v.idf[i]
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// Terms returns the vocabulary in feature-index order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// IDF returns the inverse document frequency of term and whether it is in
// the vocabulary.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	i, ok := v.index[term]
	if !ok {
		return 0, false
	}
	return v.idf[i], true
}

// Len is the number of features.
func (v *Vectorizer) Len() int { return len(v.terms) }
