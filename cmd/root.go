package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/config"
)

var (
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "credibility-cli",
	Short: "Score the credibility of corporate announcements",
	Long: `Combines language heuristics, company financials, news corroboration and a
text classifier into a 0-100 credibility score.

Settings are read from config.yaml in the working directory when present.
Any key can be overridden from the environment with the CREDIBILITY_ prefix,
dots replaced by underscores:

  CREDIBILITY_ALPHAVANTAGE_KEY   Alpha Vantage key for the financials check
  CREDIBILITY_NEWSAPI_KEY        NewsAPI key for partnership verification
  CREDIBILITY_CACHE_DRIVER       none, sqlite or postgres
  CREDIBILITY_LOG_LEVEL          debug, info, warn or error

Without provider keys the dependent checks degrade instead of failing.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return initConfig() },
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level for this run")
}

// initConfig loads configuration into cfg and installs the global logger.
func initConfig() error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
