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
	Tavily    TavilyConfig    `yaml:"tavily" mapstructure:"tavily"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Jobs      JobsConfig      `yaml:"jobs" mapstructure:"jobs"`
	Archive   ArchiveConfig   `yaml:"archive" mapstructure:"archive"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	Model           string `yaml:"model" mapstructure:"model"`
	MaxOutputTokens int64  `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	MaxResults     int     `yaml:"max_results" mapstructure:"max_results"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	IncludeRawText bool    `yaml:"include_raw_text" mapstructure:"include_raw_text"`
}

// PipelineConfig configures stage behavior.
type PipelineConfig struct {
	MinContentLength    int `yaml:"min_content_length" mapstructure:"min_content_length"`
	MaxDocsPerTopic     int `yaml:"max_docs_per_topic" mapstructure:"max_docs_per_topic"`
	MaxDocLength        int `yaml:"max_doc_length" mapstructure:"max_doc_length"`
	PromptCharBudget    int `yaml:"prompt_char_budget" mapstructure:"prompt_char_budget"`
	BriefingConcurrency int `yaml:"briefing_concurrency" mapstructure:"briefing_concurrency"`
}

// JobsConfig configures in-memory job retention.
type JobsConfig struct {
	MaxJobs int `yaml:"max_jobs" mapstructure:"max_jobs"`
}

// ArchiveConfig configures the sqlite report archive. An empty path disables
// archiving.
type ArchiveConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP façade.
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
	v.SetEnvPrefix("BENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_output_tokens", 4096)
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.max_results", 5)
	v.SetDefault("tavily.rate_per_second", 5.0)
	v.SetDefault("tavily.rate_burst", 5)
	v.SetDefault("tavily.include_raw_text", true)
	v.SetDefault("pipeline.min_content_length", 200)
	v.SetDefault("pipeline.max_docs_per_topic", 10)
	v.SetDefault("pipeline.max_doc_length", 8000)
	v.SetDefault("pipeline.prompt_char_budget", 120000)
	v.SetDefault("pipeline.briefing_concurrency", 2)
	v.SetDefault("jobs.max_jobs", 256)
	v.SetDefault("archive.path", "")

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

// Validate checks that required settings are present for serving research
// jobs against the live collaborators.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required (BENCH_ANTHROPIC_KEY)")
	}
	if c.Tavily.Key == "" {
		return eris.New("config: tavily.key is required (BENCH_TAVILY_KEY)")
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
