package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanggf8/travel-2026/internal/scraper"
)

// Config holds the full application configuration.
type Config struct {
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Navigate   NavigateConfig   `yaml:"navigate" mapstructure:"navigate"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the on-disk result cache.
type CacheConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// BrowserConfig configures the Chrome session.
type BrowserConfig struct {
	Headless  bool   `yaml:"headless" mapstructure:"headless"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Static switches to a plain HTTP fetch with no JavaScript. Only
	// useful for server-rendered OTAs; most need the real browser.
	Static bool `yaml:"static" mapstructure:"static"`
}

// NavigateConfig configures page navigation and settling.
type NavigateConfig struct {
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffBase     float64 `yaml:"backoff_base" mapstructure:"backoff_base"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SettleDelaySecs int     `yaml:"settle_delay_secs" mapstructure:"settle_delay_secs"`
}

// ValidationConfig holds the advisory price floors, in TWD.
type ValidationConfig struct {
	MinPerPerson int `yaml:"min_per_person" mapstructure:"min_per_person"`
	MinDatePrice int `yaml:"min_date_price" mapstructure:"min_date_price"`
}

// DataConfig points at the editable data files.
type DataConfig struct {
	SourcesFile string `yaml:"sources_file" mapstructure:"sources_file"`
	AreasFile   string `yaml:"areas_file" mapstructure:"areas_file"`
}

// BatchConfig configures batch scraping.
type BatchConfig struct {
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. The config file is
// optional; defaults cover a working local setup.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRAVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.static", false)
	v.SetDefault("navigate.max_retries", 3)
	v.SetDefault("navigate.backoff_base", 2.0)
	v.SetDefault("navigate.timeout_secs", 60)
	v.SetDefault("navigate.settle_delay_secs", 3)
	v.SetDefault("validation.min_per_person", 5000)
	v.SetDefault("validation.min_date_price", 1000)
	v.SetDefault("data.sources_file", "data/ota-sources.json")
	v.SetDefault("data.areas_file", "data/hotel-areas.yaml")
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("batch.rate_per_sec", 0.5)
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

// Validate checks the configuration for out-of-range values. It returns a
// single error listing every problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Cache.TTLHours < 0 {
		problems = append(problems, "cache.ttl_hours must be >= 0")
	}
	if c.Navigate.MaxRetries < 1 || c.Navigate.MaxRetries > 10 {
		problems = append(problems, "navigate.max_retries must be between 1 and 10")
	}
	if c.Navigate.BackoffBase < 1.0 {
		problems = append(problems, "navigate.backoff_base must be >= 1.0")
	}
	if c.Navigate.TimeoutSecs < 1 {
		problems = append(problems, "navigate.timeout_secs must be >= 1")
	}
	if c.Validation.MinPerPerson < 0 || c.Validation.MinDatePrice < 0 {
		problems = append(problems, "validation floors must be >= 0")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 20 {
		problems = append(problems, "batch.concurrency must be between 1 and 20")
	}
	if c.Batch.RatePerSec <= 0 {
		problems = append(problems, "batch.rate_per_sec must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Engine converts the file representation to the engine's form.
func (c NavigateConfig) Engine() scraper.NavigateConfig {
	return scraper.NavigateConfig{
		MaxRetries:  c.MaxRetries,
		BackoffBase: c.BackoffBase,
		Timeout:     time.Duration(c.TimeoutSecs) * time.Second,
	}
}

// SettleDelay returns the post-navigation settle delay.
func (c NavigateConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySecs) * time.Second
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
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
