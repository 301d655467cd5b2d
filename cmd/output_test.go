package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credibility-cli/internal/model"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:          "id-1",
		Score:       55,
		Credibility: model.CredibilityMedium,
		Flags:       []string{"Sensational language detected."},
		Breakdown: model.Breakdown{
			InitialScore: 100,
			Deductions: []model.Deduction{
				{Check: "sensational_language", Reason: "Sensational wording", Penalty: 20, Category: model.CategoryRule},
				{Check: "ml_classifier", Reason: "Classifier suspicion probability 0.71", Penalty: 25, Category: model.CategoryML},
			},
		},
		MLInsights: &model.MLInsights{
			SuspicionProbability: 0.71,
			TopTerms:             []model.TermWeight{{Term: "guaranteed", Weight: 1}},
		},
	}
}

func TestWriteValue_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, formatJSON, sampleResult()))

	var got model.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 55, got.Score)
	assert.Equal(t, model.CredibilityMedium, got.Credibility)
}

func TestWriteValue_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, formatYAML, sampleResult()))
	assert.Contains(t, buf.String(), "credibility: Medium")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 55, got["score"])
}

func TestWriteValue_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeValue(&buf, "xml", sampleResult()))
}

func TestWriteResults_Table(t *testing.T) {
	r := sampleResult()
	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, formatTable, r, []string{"Acme"}, r))

	out := buf.String()
	assert.Contains(t, out, "== Acme ==")
	assert.Contains(t, out, "Score:")
	assert.Contains(t, out, "55")
	assert.Contains(t, out, "Medium")
	assert.Contains(t, out, "Sensational language detected.")
	assert.Contains(t, out, "-20")
	assert.Contains(t, out, "guaranteed (1.00)")
}
