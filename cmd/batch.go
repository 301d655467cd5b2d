package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credibility-cli/internal/model"
)

var batchFlags struct {
	input       string
	encoding    string
	concurrency int
	format      string
}

// batchItem is the outcome for one entry of a batch file.
type batchItem struct {
	Index       int                   `json:"index" yaml:"index"`
	CompanyName string                `json:"company_name" yaml:"company_name"`
	Symbol      string                `json:"symbol" yaml:"symbol"`
	Result      *model.AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error       string                `json:"error,omitempty" yaml:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score every announcement in a YAML or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		items, err := loadBatch(batchFlags.input, batchFlags.encoding)
		if err != nil {
			return err
		}

		env, err := initScoring(ctx, cfg, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		out := processBatch(ctx, items, batchFlags.concurrency, env.Engine)
		return writeValue(cmd.OutOrStdout(), batchFlags.format, out)
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.input, "input", "", "batch file (.yaml, .yml, .json, .csv or .xlsx)")
	f.StringVar(&batchFlags.encoding, "encoding", "", "character encoding of the batch file (default UTF-8)")
	f.IntVar(&batchFlags.concurrency, "concurrency", 4, "number of announcements analyzed in parallel")
	f.StringVar(&batchFlags.format, "format", formatJSON, "output format: json or yaml")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// processBatch analyzes items with at most concurrency in flight. Invalid
// entries are reported with an error and skipped. Output order matches
// input order.
func processBatch(ctx context.Context, items []model.Announcement, concurrency int, az analyzer) []batchItem {
	start := time.Now()
	out := make([]batchItem, len(items))
	var analyzed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, item := range items {
		out[i] = batchItem{Index: i, CompanyName: item.CompanyName, Symbol: item.Symbol}

		a, err := normalize(item)
		if err != nil {
			skipped.Add(1)
			out[i].Error = fmt.Sprintf("skipped: %v", err)
			zap.L().Warn("batch: skipping invalid entry", zap.Int("index", i), zap.Error(err))
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				out[i].Error = gctx.Err().Error()
				return nil
			}
			out[i].Result = az.Analyze(gctx, a)
			analyzed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int("total", len(items)),
		zap.Int64("analyzed", analyzed.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}
