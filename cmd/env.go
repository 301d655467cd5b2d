package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/classifier"
	"github.com/sells-group/credibility-cli/internal/config"
	"github.com/sells-group/credibility-cli/internal/provider"
	"github.com/sells-group/credibility-cli/internal/resilience"
	"github.com/sells-group/credibility-cli/internal/scorer"
	"github.com/sells-group/credibility-cli/internal/store"
	"github.com/sells-group/credibility-cli/pkg/alphavantage"
	"github.com/sells-group/credibility-cli/pkg/newsapi"
)

// scoringEnv holds the trained classifier, the scoring engine and the
// resources behind its providers.
type scoringEnv struct {
	Classifier *classifier.Classifier
	Engine     *scorer.Engine
	Cache      store.Cache // may be nil
}

// Close releases resources held by the environment.
func (se *scoringEnv) Close() {
	if se.Cache != nil {
		_ = se.Cache.Close()
	}
}

// initScoring validates c, trains the classifier and builds the engine with
// its providers. Callers should defer env.Close().
func initScoring(ctx context.Context, c *config.Config, mode string) (*scoringEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}
	if err := scorer.ValidateConfig(c.Scoring); err != nil {
		return nil, err
	}

	clf, err := classifier.New()
	if err != nil {
		return nil, eris.Wrap(err, "train classifier")
	}

	cache, err := store.Open(ctx, c.Cache)
	if err != nil {
		return nil, eris.Wrap(err, "open cache")
	}

	ttl := store.TTL(c.Cache)
	fin := provider.NewFinancials(alphaVantageClient(c),
		provider.WithGuard(resilience.NewGuard("alphavantage", c.Retry, c.Circuit)),
		provider.WithCache(cache, ttl),
	)
	news := provider.NewNews(newsAPIClient(c),
		provider.WithGuard(resilience.NewGuard("newsapi", c.Retry, c.Circuit)),
		provider.WithCache(cache, ttl),
	)

	engine, err := scorer.NewEngine(clf, scorer.OptionsFromConfig(c.Scoring),
		scorer.DefaultRules(c.Scoring, fin, news)...)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}

	zap.L().Debug("scoring environment ready",
		zap.Int("vocabulary", len(clf.Vocabulary())),
		zap.Bool("alphavantage", config.HasKey(c.AlphaVantage.Key)),
		zap.Bool("newsapi", config.HasKey(c.NewsAPI.Key)),
		zap.String("cache", c.Cache.Driver),
	)

	return &scoringEnv{Classifier: clf, Engine: engine, Cache: cache}, nil
}

// alphaVantageClient returns nil when no usable key is configured.
func alphaVantageClient(c *config.Config) alphavantage.Client {
	if !config.HasKey(c.AlphaVantage.Key) {
		return nil
	}
	opts := []alphavantage.Option{alphavantage.WithRequestsPerMinute(c.AlphaVantage.RequestsPerMinute)}
	if c.AlphaVantage.BaseURL != "" {
		opts = append(opts, alphavantage.WithBaseURL(c.AlphaVantage.BaseURL))
	}
	return alphavantage.NewClient(c.AlphaVantage.Key, opts...)
}

// newsAPIClient returns nil when no usable key is configured.
func newsAPIClient(c *config.Config) newsapi.Client {
	if !config.HasKey(c.NewsAPI.Key) {
		return nil
	}
	opts := []newsapi.Option{newsapi.WithDefaults(c.NewsAPI.Language, c.NewsAPI.SortBy)}
	if c.NewsAPI.BaseURL != "" {
		opts = append(opts, newsapi.WithBaseURL(c.NewsAPI.BaseURL))
	}
	return newsapi.NewClient(c.NewsAPI.Key, opts...)
}
