package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Reverb    ReverbConfig    `yaml:"reverb" mapstructure:"reverb"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds text-generation settings. The fast profile serves
// intent analysis and knowledge elaboration; the full profile serves final
// recommendation generation.
type AnthropicConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	FastModel     string  `yaml:"fast_model" mapstructure:"fast_model"`
	FullModel     string  `yaml:"full_model" mapstructure:"full_model"`
	FastMaxTokens int64   `yaml:"fast_max_tokens" mapstructure:"fast_max_tokens"`
	FullMaxTokens int64   `yaml:"full_max_tokens" mapstructure:"full_max_tokens"`
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
}

// CatalogConfig selects the listing source chain.
type CatalogConfig struct {
	// Source is the primary listing source: "fixture", "store", or "reverb".
	Source string `yaml:"source" mapstructure:"source"`
	// Fallback is tried when the primary errors. Empty disables the fallback
	// and the retry hits the primary a second time instead.
	Fallback string `yaml:"fallback" mapstructure:"fallback"`
}

// ReverbConfig holds Reverb API settings.
type ReverbConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Token       string  `yaml:"token" mapstructure:"token"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// CacheConfig configures search-result caching in front of listing sources.
type CacheConfig struct {
	LRUSize    int    `yaml:"lru_size" mapstructure:"lru_size"`
	RedisAddr  string `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// PipelineConfig holds the tunable heuristics of the recommendation
// pipeline. Defaults preserve the documented contract values; deployments
// may tune them.
type PipelineConfig struct {
	BudgetFloor            float64  `yaml:"budget_floor" mapstructure:"budget_floor"`
	DefaultPriceMin        float64  `yaml:"default_price_min" mapstructure:"default_price_min"`
	DefaultPriceMax        float64  `yaml:"default_price_max" mapstructure:"default_price_max"`
	BeginnerPriceCap       float64  `yaml:"beginner_price_cap" mapstructure:"beginner_price_cap"`
	ProfessionalPriceFloor float64  `yaml:"professional_price_floor" mapstructure:"professional_price_floor"`
	MaxResults             int      `yaml:"max_results" mapstructure:"max_results"`
	CandidateLimit         int      `yaml:"candidate_limit" mapstructure:"candidate_limit"`
	OverlapThreshold       float64  `yaml:"overlap_threshold" mapstructure:"overlap_threshold"`
	CustomShopKeywords     []string `yaml:"custom_shop_keywords" mapstructure:"custom_shop_keywords"`
	PremiumBrands          []string `yaml:"premium_brands" mapstructure:"premium_brands"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.fast_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.full_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.fast_max_tokens", 800)
	v.SetDefault("anthropic.full_max_tokens", 2000)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("catalog.source", "fixture")
	v.SetDefault("catalog.fallback", "fixture")
	v.SetDefault("reverb.base_url", "https://api.reverb.com/api")
	v.SetDefault("reverb.timeout_secs", 10)
	v.SetDefault("reverb.rate_per_sec", 2)
	v.SetDefault("cache.lru_size", 128)
	v.SetDefault("cache.ttl_minutes", 15)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "guitar-scout.db")
	v.SetDefault("pipeline.budget_floor", 100)
	v.SetDefault("pipeline.default_price_min", 300)
	v.SetDefault("pipeline.default_price_max", 2000)
	v.SetDefault("pipeline.beginner_price_cap", 800)
	v.SetDefault("pipeline.professional_price_floor", 1000)
	v.SetDefault("pipeline.max_results", 25)
	v.SetDefault("pipeline.candidate_limit", 15)
	v.SetDefault("pipeline.overlap_threshold", 0.6)
	v.SetDefault("pipeline.custom_shop_keywords", []string{
		"custom shop", "ash body", "pau ferro", "quartersawn",
		"hipshot", "graph tech", "gotoh", "seymour duncan",
	})
	v.SetDefault("pipeline.premium_brands", []string{"fender"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks that the configuration can actually run a query. Missing
// credentials surface here, before any pipeline work starts.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic key is required (SCOUT_ANTHROPIC_KEY)")
	}
	switch c.Catalog.Source {
	case "fixture", "store", "reverb":
	default:
		return eris.Errorf("config: unknown catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.Fallback != "" {
		switch c.Catalog.Fallback {
		case "fixture", "store", "reverb":
		default:
			return eris.Errorf("config: unknown catalog fallback %q", c.Catalog.Fallback)
		}
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: database_url is required for the postgres driver")
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
