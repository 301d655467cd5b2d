package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/credibility-cli/internal/classifier"
	"github.com/sells-group/credibility-cli/internal/model"
	"github.com/sells-group/credibility-cli/internal/scorer"
)

var explainFlags struct {
	text     string
	file     string
	encoding string
	top      int
	format   string
}

// explanation is the classifier's view of one text.
type explanation struct {
	SuspicionProbability float64            `json:"suspicion_probability" yaml:"suspicion_probability"`
	TopTerms             []model.TermWeight `json:"top_terms" yaml:"top_terms"`
}

func explain(p scorer.Predictor, text string, topK int) explanation {
	return explanation{
		SuspicionProbability: p.PredictSuspicion(text),
		TopTerms:             p.ExplainTopTerms(text, topK),
	}
}

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show the classifier's suspicion probability and strongest terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(explainFlags.text, explainFlags.file, explainFlags.encoding, cmd.InOrStdin())
		if err != nil {
			return err
		}

		clf, err := classifier.New()
		if err != nil {
			return err
		}

		top := explainFlags.top
		if !cmd.Flags().Changed("top") {
			top = cfg.Scoring.TopTerms
		}
		return writeValue(cmd.OutOrStdout(), explainFlags.format, explain(clf, text, top))
	},
}

func init() {
	f := explainCmd.Flags()
	f.StringVar(&explainFlags.text, "text", "", "text to explain")
	f.StringVar(&explainFlags.file, "file", "", "read text from file (- for stdin)")
	f.StringVar(&explainFlags.encoding, "encoding", "", "character encoding of --file (default UTF-8)")
	f.IntVar(&explainFlags.top, "top", 5, "number of terms to show (default from config)")
	f.StringVar(&explainFlags.format, "format", formatJSON, "output format: json or yaml")
	rootCmd.AddCommand(explainCmd)
}
