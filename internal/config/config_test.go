package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DB == "" {
		t.Error("Expected DB to be set")
	}
	if cfg.MaxDepth != 200 {
		t.Errorf("Expected MaxDepth to be 200, got %d", cfg.MaxDepth)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected Workers to be 4, got %d", cfg.Workers)
	}
	if cfg.Engine != EngineBuiltin {
		t.Errorf("Expected Engine to be builtin, got %s", cfg.Engine)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout to be 30s, got %v", cfg.Timeout)
	}
	if !cfg.Numbering {
		t.Error("Expected Numbering to be on")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "empty db", modify: func(c *Config) { c.DB = "" }, wantErr: true},
		{name: "zero max depth", modify: func(c *Config) { c.MaxDepth = 0 }, wantErr: true},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "library engine", modify: func(c *Config) { c.Engine = EngineLibrary }},
		{name: "unknown engine", modify: func(c *Config) { c.Engine = "pandoc" }, wantErr: true},
		{name: "warning level", modify: func(c *Config) { c.LogLevel = "WARNING" }},
		{name: "unknown level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "empty label", modify: func(c *Config) { c.Labels.Assistant = " " }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
workers: 8
timeout: 5s
engine: library
labels:
  user: Prompt
numbering: false
`))
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Engine != EngineLibrary {
		t.Errorf("Engine = %s, want library", cfg.Engine)
	}
	if cfg.Labels.User != "Prompt" || cfg.Labels.Assistant != "Answer" {
		t.Errorf("Labels = %+v", cfg.Labels)
	}
	if cfg.Numbering {
		t.Error("Numbering should be off")
	}
	if cfg.MaxDepth != 200 {
		t.Errorf("MaxDepth = %d, want default 200", cfg.MaxDepth)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("workers", 0)

	if _, err := Load(v); err == nil {
		t.Error("Load() should fail with zero workers")
	}
}

func TestExpandPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg := DefaultConfig()
	cfg.DB = "~/archive/exports.db"
	cfg.PlatformsFile = "platforms.yaml"

	if err := cfg.ExpandPaths(); err != nil {
		t.Fatalf("ExpandPaths() error: %v", err)
	}

	if want := filepath.Join(home, "archive", "exports.db"); cfg.DB != want {
		t.Errorf("DB = %s, want %s", cfg.DB, want)
	}
	if !filepath.IsAbs(cfg.PlatformsFile) {
		t.Errorf("PlatformsFile not absolute: %s", cfg.PlatformsFile)
	}
}

func TestDirOverride(t *testing.T) {
	original := Dir
	defer func() { Dir = original }()

	tmp := t.TempDir()
	Dir = func() string { return tmp }

	if got := DefaultConfig().DB; got != filepath.Join(tmp, "exports.db") {
		t.Errorf("DB = %s", got)
	}
}
