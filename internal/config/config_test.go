package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Reader.EstimatedPageHeight != 600 {
		t.Errorf("EstimatedPageHeight = %v, want 600", cfg.Reader.EstimatedPageHeight)
	}
	if cfg.Reader.ScrollBuffer != 5 || cfg.Reader.NavigationBuffer != 15 {
		t.Errorf("buffers = %d/%d, want 5/15",
			cfg.Reader.ScrollBuffer, cfg.Reader.NavigationBuffer)
	}
	if cfg.Session.TickIntervalSec != 30 {
		t.Errorf("TickIntervalSec = %d, want 30", cfg.Session.TickIntervalSec)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero estimated height", func(c *Config) { c.Reader.EstimatedPageHeight = 0 }},
		{"negative scroll buffer", func(c *Config) { c.Reader.ScrollBuffer = -1 }},
		{"zero settle delay", func(c *Config) { c.Reader.SettleDelayMS = 0 }},
		{"zero preload batch", func(c *Config) { c.Reader.PreloadBatchSize = 0 }},
		{"zero chars per page", func(c *Config) { c.Reader.CharsPerPage = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero tick interval", func(c *Config) { c.Session.TickIntervalSec = 0 }},
		{"empty db file", func(c *Config) { c.Session.DBFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("validation accepted bad config")
			}
		})
	}
}

func TestDerivedConfigs(t *testing.T) {
	cfg := DefaultConfig()

	geo := cfg.GeometryConfig()
	if geo.EstimatedHeight != 600 || geo.PredictiveRadius != 10 {
		t.Errorf("geometry config = %+v", geo)
	}

	rc := cfg.ReaderConfig()
	if rc.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", rc.SettleDelay)
	}
	if rc.Zoom != 100 {
		t.Errorf("Zoom = %v, want 100", rc.Zoom)
	}

	opts := cfg.DocumentOptions()
	if opts.CharsPerPage != 3000 || opts.WordsPerPage != 500 {
		t.Errorf("document options = %+v", opts)
	}

	if cfg.TickInterval() != 30*time.Second {
		t.Errorf("TickInterval = %v, want 30s", cfg.TickInterval())
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal written config: %v", err)
	}
	if cfg.Reader.EstimatedPageHeight != 600 {
		t.Errorf("round-tripped EstimatedPageHeight = %v", cfg.Reader.EstimatedPageHeight)
	}
	if err := Validate(&cfg); err != nil {
		t.Errorf("written default fails validation: %v", err)
	}
}
