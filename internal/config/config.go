package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PlaceholderKey is the value shipped in sample env files. It is treated the
// same as an empty key.
const PlaceholderKey = "YOUR_API_KEY_HERE"

// Config holds the full application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage" mapstructure:"alphavantage"`
	NewsAPI      NewsAPIConfig      `yaml:"newsapi" mapstructure:"newsapi"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Retry        RetryConfig        `yaml:"retry" mapstructure:"retry"`
	Circuit      CircuitConfig      `yaml:"circuit" mapstructure:"circuit"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AlphaVantageConfig holds Alpha Vantage API settings for company financials.
type AlphaVantageConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// NewsAPIConfig holds NewsAPI settings for partnership verification.
type NewsAPIConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Language string `yaml:"language" mapstructure:"language"`
	SortBy   string `yaml:"sort_by" mapstructure:"sort_by"`
}

// CacheConfig configures the provider lookup cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// RetryConfig configures retries of provider calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the per-provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ScoringConfig holds the penalty weights of the scoring engine.
type ScoringConfig struct {
	SensationalWeight             int     `yaml:"sensational" mapstructure:"sensational"`
	HistoricalMismatchWeight      int     `yaml:"historical_mismatch" mapstructure:"historical_mismatch"`
	PartnershipVerificationWeight int     `yaml:"partnership_verification" mapstructure:"partnership_verification"`
	PressureTacticsWeight         int     `yaml:"pressure_tactics" mapstructure:"pressure_tactics"`
	LackOfSpecificsWeight         int     `yaml:"lack_of_specifics" mapstructure:"lack_of_specifics"`
	MLWeight                      int     `yaml:"ml" mapstructure:"ml"`
	MLFlagThreshold               float64 `yaml:"ml_flag_threshold" mapstructure:"ml_flag_threshold"`
	TopTerms                      int     `yaml:"top_terms" mapstructure:"top_terms"`
	ConcurrentChecks              bool    `yaml:"concurrent_checks" mapstructure:"concurrent_checks"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CREDIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout_secs", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("alphavantage.key", "")
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("alphavantage.requests_per_minute", 5)
	v.SetDefault("newsapi.key", "")
	v.SetDefault("newsapi.base_url", "https://newsapi.org")
	v.SetDefault("newsapi.language", "en")
	v.SetDefault("newsapi.sort_by", "relevancy")
	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("scoring.sensational", 20)
	v.SetDefault("scoring.historical_mismatch", 25)
	v.SetDefault("scoring.partnership_verification", 20)
	v.SetDefault("scoring.pressure_tactics", 10)
	v.SetDefault("scoring.lack_of_specifics", 5)
	v.SetDefault("scoring.ml", 35)
	v.SetDefault("scoring.ml_flag_threshold", 0.6)
	v.SetDefault("scoring.top_terms", 5)
	v.SetDefault("scoring.concurrent_checks", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// HasKey reports whether key is a usable API credential.
func HasKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderKey
}

// Validate checks the settings a command depends on. Provider keys are never
// required; missing keys degrade the corresponding checks.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Cache.TTLHours < 0 {
		errs = append(errs, "cache.ttl_hours must be >= 0")
	}
	switch c.Cache.Driver {
	case "", "none":
	case "sqlite", "postgres":
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, fmt.Sprintf("cache.database_url is required for driver %q", c.Cache.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.driver %q is not supported", c.Cache.Driver))
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.RequestTimeoutSecs < 0 {
			errs = append(errs, "server.request_timeout_secs must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
