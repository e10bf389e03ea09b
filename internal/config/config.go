package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orestack/minereport/internal/review"
	"github.com/orestack/minereport/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Review  ReviewConfig  `yaml:"review" mapstructure:"review"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ExtractConfig bounds document extraction.
type ExtractConfig struct {
	MaxBytes    int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
	TimeoutSecs int   `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the extraction deadline as a duration.
func (c ExtractConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ReviewConfig configures the review router. PerStandard overrides routing
// for a specific reporting standard.
type ReviewConfig struct {
	Threshold   float64                         `yaml:"threshold" mapstructure:"threshold"`
	PerStandard map[string]StandardReviewConfig `yaml:"per_standard" mapstructure:"per_standard"`
}

// StandardReviewConfig is one standard's routing override. A zero threshold
// keeps the global one; ExtraRequired names canonical keys required beyond
// the schema's own required flags.
type StandardReviewConfig struct {
	Threshold     float64  `yaml:"threshold" mapstructure:"threshold"`
	ExtraRequired []string `yaml:"extra_required" mapstructure:"extra_required"`
}

// PolicyFor builds the review policy applied to reports of one standard.
func (c ReviewConfig) PolicyFor(standard string) review.Policy {
	p := review.DefaultPolicy()
	if c.Threshold > 0 {
		p.Threshold = c.Threshold
	}
	if sc, ok := c.PerStandard[standard]; ok {
		if sc.Threshold > 0 {
			p.Threshold = sc.Threshold
		}
		p.ExtraRequired = sc.ExtraRequired
	}
	return p
}

// BatchConfig configures batch ingestion.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
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
	v.SetEnvPrefix("MINEREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "minereport.db")
	v.SetDefault("extract.max_bytes", int64(50*1024*1024))
	v.SetDefault("extract.timeout_secs", 120)
	v.SetDefault("review.threshold", review.DefaultThreshold)
	v.SetDefault("batch.max_concurrent_files", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.rate_burst", 20)
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
