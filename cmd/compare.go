package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credibility-cli/internal/model"
)

var compareFlags struct {
	companyA, symbolA, fileA string
	companyB, symbolB, fileB string
	encoding                 string
	format                   string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Score two announcements side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		left, err := announcementFromFile(compareFlags.companyA, compareFlags.symbolA, compareFlags.fileA, cmd)
		if err != nil {
			return err
		}
		right, err := announcementFromFile(compareFlags.companyB, compareFlags.symbolB, compareFlags.fileB, cmd)
		if err != nil {
			return err
		}

		env, err := initScoring(ctx, cfg, "compare")
		if err != nil {
			return err
		}
		defer env.Close()

		cmp := compareAnnouncements(ctx, env.Engine, left, right)
		return writeResults(cmd.OutOrStdout(), compareFlags.format, cmp,
			[]string{left.CompanyName, right.CompanyName}, cmp.Left, cmp.Right)
	},
}

func announcementFromFile(company, symbol, path string, cmd *cobra.Command) (model.Announcement, error) {
	text, err := readText("", path, compareFlags.encoding, cmd.InOrStdin())
	if err != nil {
		return model.Announcement{}, err
	}
	return normalize(model.Announcement{Text: text, CompanyName: company, Symbol: symbol})
}

// compareAnnouncements analyzes left and right concurrently.
func compareAnnouncements(ctx context.Context, az analyzer, left, right model.Announcement) *model.Comparison {
	var cmp model.Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cmp.Left = az.Analyze(gctx, left)
		return nil
	})
	g.Go(func() error {
		cmp.Right = az.Analyze(gctx, right)
		return nil
	})
	_ = g.Wait()
	return &cmp
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareFlags.companyA, "company-a", "", "first company name")
	f.StringVar(&compareFlags.symbolA, "symbol-a", "", "first stock symbol")
	f.StringVar(&compareFlags.fileA, "file-a", "", "first announcement file")
	f.StringVar(&compareFlags.companyB, "company-b", "", "second company name")
	f.StringVar(&compareFlags.symbolB, "symbol-b", "", "second stock symbol")
	f.StringVar(&compareFlags.fileB, "file-b", "", "second announcement file")
	f.StringVar(&compareFlags.encoding, "encoding", "", "character encoding of the files (default UTF-8)")
	f.StringVar(&compareFlags.format, "format", formatJSON, "output format: json, yaml or table")
	for _, name := range []string{"company-a", "symbol-a", "file-a", "company-b", "symbol-b", "file-b"} {
		_ = compareCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(compareCmd)
}
