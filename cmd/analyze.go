package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/credibility-cli/internal/model"
)

var analyzeFlags struct {
	company  string
	symbol   string
	text     string
	file     string
	encoding string
	format   string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one announcement",
	Example: `  credibility-cli analyze --company "Acme Corp" --symbol ACME --text "Guaranteed returns, act now!"
  credibility-cli analyze --company "Acme Corp" --symbol ACME --file release.txt --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readText(analyzeFlags.text, analyzeFlags.file, analyzeFlags.encoding, cmd.InOrStdin())
		if err != nil {
			return err
		}
		a, err := normalize(model.Announcement{
			Text:        text,
			CompanyName: analyzeFlags.company,
			Symbol:      analyzeFlags.symbol,
		})
		if err != nil {
			return err
		}

		env, err := initScoring(ctx, cfg, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Engine.Analyze(ctx, a)
		return writeResults(cmd.OutOrStdout(), analyzeFlags.format, result, nil, result)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.company, "company", "", "company name")
	f.StringVar(&analyzeFlags.symbol, "symbol", "", "stock ticker symbol")
	f.StringVar(&analyzeFlags.text, "text", "", "announcement text")
	f.StringVar(&analyzeFlags.file, "file", "", "read announcement text from file (- for stdin)")
	f.StringVar(&analyzeFlags.encoding, "encoding", "", "character encoding of --file (default UTF-8)")
	f.StringVar(&analyzeFlags.format, "format", formatJSON, "output format: json, yaml or table")
	_ = analyzeCmd.MarkFlagRequired("company")
	_ = analyzeCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(analyzeCmd)
}
