package config

import (
	"time"

	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/geometry"
	"github.com/byte-squad-abac/bookreader/internal/reader"
)

// Config holds bookreader configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server  ServerCfg  `mapstructure:"server" yaml:"server" json:"server"`
	Reader  ReaderCfg  `mapstructure:"reader" yaml:"reader" json:"reader"`
	Session SessionCfg `mapstructure:"session" yaml:"session" json:"session"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
}

// ReaderCfg holds the reading-engine tunables. All lengths are in layout
// units (CSS pixels for a browser host, PDF points for print).
type ReaderCfg struct {
	// EstimatedPageHeight is the placeholder height for unmeasured pages.
	EstimatedPageHeight float64 `mapstructure:"estimated_page_height" yaml:"estimated_page_height" json:"estimated_page_height"`
	// PageMargin is the vertical gap between consecutive pages.
	PageMargin float64 `mapstructure:"page_margin" yaml:"page_margin" json:"page_margin"`
	// ScrollBuffer is how many pages beyond the viewport stay mounted
	// during ordinary scrolling.
	ScrollBuffer int `mapstructure:"scroll_buffer" yaml:"scroll_buffer" json:"scroll_buffer"`
	// NavigationBuffer replaces ScrollBuffer while a jump is in flight.
	NavigationBuffer int `mapstructure:"navigation_buffer" yaml:"navigation_buffer" json:"navigation_buffer"`
	// PredictiveRadius is the half-width of the window pre-mounted around
	// a navigation target.
	PredictiveRadius int `mapstructure:"predictive_radius" yaml:"predictive_radius" json:"predictive_radius"`
	// SettleDelayMS is how long a jump is assumed to keep scrolling.
	SettleDelayMS int `mapstructure:"settle_delay_ms" yaml:"settle_delay_ms" json:"settle_delay_ms"`
	// PreloadBatchSize is pages measured per preload batch.
	PreloadBatchSize int `mapstructure:"preload_batch_size" yaml:"preload_batch_size" json:"preload_batch_size"`
	// PreloadThreshold is the page count above which a preload pass runs.
	PreloadThreshold int `mapstructure:"preload_threshold" yaml:"preload_threshold" json:"preload_threshold"`
	// CharsPerPage sizes estimated pages for flowed formats (DOCX).
	CharsPerPage int `mapstructure:"chars_per_page" yaml:"chars_per_page" json:"chars_per_page"`
	// WordsPerPage sizes estimated pages for plain text.
	WordsPerPage int `mapstructure:"words_per_page" yaml:"words_per_page" json:"words_per_page"`
	// DefaultZoom is the baseline zoom percentage.
	DefaultZoom float64 `mapstructure:"default_zoom" yaml:"default_zoom" json:"default_zoom"`
}

// SessionCfg configures reading-session tracking.
type SessionCfg struct {
	// TickIntervalSec is how often active sessions flush read time.
	TickIntervalSec int `mapstructure:"tick_interval_sec" yaml:"tick_interval_sec" json:"tick_interval_sec"`
	// DBFile is the session database filename under the home dir.
	DBFile string `mapstructure:"db_file" yaml:"db_file" json:"db_file"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8590,
		},
		Reader: ReaderCfg{
			EstimatedPageHeight: 600,
			PageMargin:          16,
			ScrollBuffer:        5,
			NavigationBuffer:    15,
			PredictiveRadius:    10,
			SettleDelayMS:       1000,
			PreloadBatchSize:    10,
			PreloadThreshold:    50,
			CharsPerPage:        3000,
			WordsPerPage:        500,
			DefaultZoom:         100,
		},
		Session: SessionCfg{
			TickIntervalSec: 30,
			DBFile:          "sessions.db",
		},
	}
}

// GeometryConfig converts the reader tunables to a geometry.Config.
func (c *Config) GeometryConfig() geometry.Config {
	return geometry.Config{
		EstimatedHeight:  c.Reader.EstimatedPageHeight,
		PageMargin:       c.Reader.PageMargin,
		ScrollBuffer:     c.Reader.ScrollBuffer,
		NavigationBuffer: c.Reader.NavigationBuffer,
		PredictiveRadius: c.Reader.PredictiveRadius,
		PreloadBatchSize: c.Reader.PreloadBatchSize,
	}
}

// ReaderConfig converts the reader tunables to a reader.Config.
func (c *Config) ReaderConfig() reader.Config {
	return reader.Config{
		Geometry:         c.GeometryConfig(),
		SettleDelay:      time.Duration(c.Reader.SettleDelayMS) * time.Millisecond,
		PreloadThreshold: c.Reader.PreloadThreshold,
		Zoom:             c.Reader.DefaultZoom,
	}
}

// DocumentOptions converts the flowed-format tunables to document.Options.
func (c *Config) DocumentOptions() document.Options {
	return document.Options{
		CharsPerPage: c.Reader.CharsPerPage,
		WordsPerPage: c.Reader.WordsPerPage,
	}
}

// TickInterval returns the session tick interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Session.TickIntervalSec) * time.Second
}
