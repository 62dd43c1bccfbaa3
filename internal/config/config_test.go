package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUDIOFLOW_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %v, want %v", cfg.Server.Port, "8080")
	}
	if cfg.Gemini.MaxOutputTokens != 8192 {
		t.Errorf("MaxOutputTokens = %v, want %v", cfg.Gemini.MaxOutputTokens, 8192)
	}
	if cfg.Pipeline.Pacing != 0 {
		t.Errorf("Pacing = %v, want 0", cfg.Pipeline.Pacing)
	}
	if cfg.Session.Store != SessionStoreMemory {
		t.Errorf("Store = %v, want %v", cfg.Session.Store, SessionStoreMemory)
	}
	if cfg.Gemini.APIKey != "key" {
		t.Errorf("APIKey = %v, want %v", cfg.Gemini.APIKey, "key")
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audioflow.yaml")
	content := `
server:
  port: "9090"
pipeline:
  pacing: 1s
  language: ja
session:
  store: redis
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AUDIOFLOW_CONFIG", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %v, want %v", cfg.Server.Port, "9090")
	}
	if cfg.Pipeline.Pacing != time.Second {
		t.Errorf("Pacing = %v, want %v", cfg.Pipeline.Pacing, time.Second)
	}
	if cfg.Pipeline.Language != "ja" {
		t.Errorf("Language = %v, want %v", cfg.Pipeline.Language, "ja")
	}
	if cfg.Session.Store != SessionStoreRedis {
		t.Errorf("Store = %v, want %v", cfg.Session.Store, SessionStoreRedis)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %v, want %v", cfg.Log.Level, "debug")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("AUDIOFLOW_CONFIG", filepath.Join(t.TempDir(), "nonexistent.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Gemini:   GeminiConfig{MaxOutputTokens: 8192},
			Pipeline: PipelineConfig{Language: "en"},
			Session:  SessionConfig{Store: SessionStoreMemory},
			Server:   ServerConfig{MaxUploadBytes: 1 << 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Store = "etcd" }, wantErr: true},
		{name: "unknown language", mutate: func(c *Config) { c.Pipeline.Language = "fr" }, wantErr: true},
		{name: "negative pacing", mutate: func(c *Config) { c.Pipeline.Pacing = -time.Second }, wantErr: true},
		{name: "zero token budget", mutate: func(c *Config) { c.Gemini.MaxOutputTokens = 0 }, wantErr: true},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := Config{}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("RequireAPIKey() should fail without a key")
	}
	cfg.Gemini.APIKey = "key"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey() error = %v", err)
	}
}
