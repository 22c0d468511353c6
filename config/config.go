// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Search   SearchConfig   `mapstructure:"search"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type OpenAIConfig struct {
	APIKey     string   `mapstructure:"api_key"`
	Model      string   `mapstructure:"model"`
	BaseURL    string   `mapstructure:"base_url"`
	Candidates []string `mapstructure:"model_candidates"`
}

type SearchConfig struct {
	APIKey string `mapstructure:"serp_api_key"`
}

type AnalysisConfig struct {
	MaxCompetitors int           `mapstructure:"max_competitors"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	SaveResults bool   `mapstructure:"save_results"`
	Format      string `mapstructure:"format"`
	Dir         string `mapstructure:"dir"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	// CheckpointBackend is one of none, memory, sqlite, postgres, redis.
	CheckpointBackend string `mapstructure:"checkpoint_backend"`
	SqlitePath        string `mapstructure:"sqlite_path"`
	PostgresDSN       string `mapstructure:"postgres_dsn"`
	RunArchivePath    string `mapstructure:"run_archive_path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("analysis.max_competitors", 5)
	v.SetDefault("analysis.timeout", 10*time.Minute)
	v.SetDefault("output.save_results", true)
	v.SetDefault("output.format", "json")
	v.SetDefault("output.dir", ".")
	v.SetDefault("cache.ttl", 6*time.Hour)
	v.SetDefault("storage.checkpoint_backend", "none")
	v.SetDefault("storage.sqlite_path", "langagent.db")
	v.SetDefault("storage.run_archive_path", "langagent.db")
	v.SetDefault("logging.level", "info")
}

// bindEnv maps the original environment variable names onto config keys.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "OPENAI_MODEL")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.model_candidates", "MODEL_CANDIDATES")
	_ = v.BindEnv("search.serp_api_key", "SERP_API_KEY")
	_ = v.BindEnv("analysis.max_competitors", "MAX_COMPETITORS")
	_ = v.BindEnv("analysis.timeout", "ANALYSIS_TIMEOUT")
	_ = v.BindEnv("output.save_results", "SAVE_RESULTS")
	_ = v.BindEnv("output.format", "OUTPUT_FORMAT")
	_ = v.BindEnv("output.dir", "OUTPUT_DIR")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")
	_ = v.BindEnv("storage.checkpoint_backend", "CHECKPOINT_BACKEND")
	_ = v.BindEnv("storage.sqlite_path", "SQLITE_PATH")
	_ = v.BindEnv("storage.postgres_dsn", "POSTGRES_DSN")
	_ = v.BindEnv("storage.run_archive_path", "RUN_ARCHIVE_PATH")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required, check your .env file")
	}
	switch c.Storage.CheckpointBackend {
	case "", "none", "memory", "sqlite", "redis":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres checkpoint backend")
		}
	default:
		return fmt.Errorf("unknown checkpoint backend %q", c.Storage.CheckpointBackend)
	}
	return nil
}

// ModelCandidates returns the configured candidate models, split on commas.
func (c *Config) ModelCandidates() []string {
	var out []string
	for _, cand := range c.OpenAI.Candidates {
		for _, part := range strings.Split(cand, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
