package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Inbox    InboxConfig    `yaml:"inbox"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080" yaml:"port"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"5m" yaml:"timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdown_timeout"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"20" yaml:"throttle_limit"`
	MaxUploadBytes  int64         `env:"SERVER_MAX_UPLOAD_BYTES" envDefault:"67108864" yaml:"max_upload_bytes"`
}

type GeminiConfig struct {
	APIKey          string `env:"GEMINI_API_KEY" yaml:"api_key"`
	Model           string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-pro" yaml:"model"`
	BaseURL         string `env:"GEMINI_BASE_URL" yaml:"base_url"`
	MaxOutputTokens int32  `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"8192" yaml:"max_output_tokens"`
}

type PipelineConfig struct {
	// Pacing is slept between encoding and the model call so clients can observe
	// the analyzing step.
	Pacing   time.Duration `env:"PIPELINE_PACING" envDefault:"0s" yaml:"pacing"`
	Language string        `env:"PROMPT_LANGUAGE" envDefault:"en" yaml:"language"`
}

type SessionConfig struct {
	Store string        `env:"SESSION_STORE" envDefault:"memory" yaml:"store"`
	TTL   time.Duration `env:"SESSION_TTL" envDefault:"1h" yaml:"ttl"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"redis:6379" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB" envDefault:"0" yaml:"db"`
}

type InboxConfig struct {
	Input         string `env:"INBOX_INPUT" envDefault:"data/inbox" yaml:"input"`
	Output        string `env:"INBOX_OUTPUT" envDefault:"data/diagrams" yaml:"output"`
	MaxConcurrent int    `env:"INBOX_MAX_CONCURRENT" envDefault:"1" yaml:"max_concurrent"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
}

// Load reads the environment and then applies the YAML file named by
// AUDIOFLOW_CONFIG, if any. Keys present in the file win over the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if path := os.Getenv("AUDIOFLOW_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("session.store must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store)
	}
	switch c.Pipeline.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("pipeline.language must be en or ja, got %q", c.Pipeline.Language)
	}
	if c.Pipeline.Pacing < 0 {
		return fmt.Errorf("pipeline.pacing must not be negative")
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		return fmt.Errorf("gemini.max_output_tokens must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Inbox.MaxConcurrent <= 0 {
		c.Inbox.MaxConcurrent = 1
	}
	return nil
}

// RequireAPIKey is checked by the commands that talk to the model.
func (c *Config) RequireAPIKey() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}
