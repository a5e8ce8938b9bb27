package config

import (
	"time"

	"golang-stock-ranking/pkg/common"
	"golang-stock-ranking/pkg/config"
)

// Ranking holds ranking-service specific configuration.
type Ranking struct {
	// AmountDisplayUnit converts caller-side amounts into storage units.
	AmountDisplayUnit   int64         `mapstructure:"amount_display_unit"`
	DetailCacheTTL      time.Duration `mapstructure:"detail_cache_ttl"`
	LatestDateCacheTTL  time.Duration `mapstructure:"latest_date_cache_ttl"`
	RateLimitPerSecond  float64       `mapstructure:"rate_limit_per_second"`
	CacheBreakerTimeout time.Duration `mapstructure:"cache_breaker_timeout"`
}

// Config holds the full configuration for the ranking service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Ranking  Ranking         `mapstructure:"ranking"`
}

// Load loads the ranking service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ranking.AmountDisplayUnit <= 0 {
		c.Ranking.AmountDisplayUnit = common.DefaultAmountDisplayUnit
	}
	if c.Ranking.DetailCacheTTL <= 0 {
		c.Ranking.DetailCacheTTL = 10 * time.Minute
	}
	if c.Ranking.LatestDateCacheTTL <= 0 {
		c.Ranking.LatestDateCacheTTL = time.Minute
	}
	if c.Ranking.CacheBreakerTimeout <= 0 {
		c.Ranking.CacheBreakerTimeout = 30 * time.Second
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
}
