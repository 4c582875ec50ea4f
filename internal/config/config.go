// Package config loads the server's YAML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/sheetmusic-mcp/internal/classify"
	"github.com/ironsheep/sheetmusic-mcp/internal/detection"
	"github.com/ironsheep/sheetmusic-mcp/internal/ocr"
	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
	"github.com/ironsheep/sheetmusic-mcp/internal/sheet"
)

// Config holds the full sheetmusic-mcp configuration.
type Config struct {
	Contours   detection.ContourConfig `yaml:"contours"`
	Sheet      sheet.Config            `yaml:"sheet"`
	Scan       shapes.Config           `yaml:"scan"`
	Classifier ClassifierConfig        `yaml:"classifier"`
	OCR        ocr.Scanner             `yaml:"ocr"`
	// MaxPages bounds the segmented pages kept between calls; 0 keeps all.
	MaxPages   int                     `yaml:"max_pages"`
	LogLevel   string                  `yaml:"log_level"`  // debug | info | warn | error
	LogFormat  string                  `yaml:"log_format"` // text | json
}

// ClassifierConfig configures the coarse and fine classifiers.
type ClassifierConfig struct {
	// K is the number of neighbours the fine k-NN classifier votes over. It
	// is only used once it holds at least K labelled samples.
	K          int                `yaml:"k"`
	SampleSize int                `yaml:"sample_size"`
	Heuristic  classify.Heuristic `yaml:"heuristic"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Contours: detection.DefaultContourConfig(),
		Sheet:    sheet.DefaultConfig(),
		Scan:     shapes.DefaultConfig(),
		Classifier: ClassifierConfig{
			K:          3,
			SampleSize: classify.DefaultSampleSize,
			Heuristic:  classify.DefaultHeuristic(),
		},
		OCR:       ocr.Scanner{Language: ocr.DefaultLanguage},
		MaxPages:  16,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every section holds usable values.
func (c *Config) Validate() error {
	if c.Contours.BlurRadius < 0 {
		return fmt.Errorf("contours: blur_radius must be >= 0, got %g", c.Contours.BlurRadius)
	}
	if c.Contours.HorizontalSizeFudge < 0 {
		return fmt.Errorf("contours: horizontal_size_fudge must be >= 0, got %d", c.Contours.HorizontalSizeFudge)
	}
	if c.Contours.HorizontalSizeFudge > 0 && c.Contours.HorizontalHeight <= 0 {
		return fmt.Errorf("contours: horizontal_height must be > 0, got %d", c.Contours.HorizontalHeight)
	}
	if err := c.Sheet.Validate(); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if c.Classifier.K <= 0 {
		return fmt.Errorf("classifier: k must be > 0, got %d", c.Classifier.K)
	}
	if c.Classifier.SampleSize < 4 {
		return fmt.Errorf("classifier: sample_size must be >= 4, got %d", c.Classifier.SampleSize)
	}
	if c.Classifier.Heuristic.LineAspect <= 0 {
		return fmt.Errorf("classifier: heuristic line_aspect must be > 0, got %d", c.Classifier.Heuristic.LineAspect)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must be >= 0, got %d", c.MaxPages)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json", "":
	default:
		return fmt.Errorf("unsupported log_format %q (use text or json)", c.LogFormat)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unsupported log_level %q (use debug, info, warn or error)", name)
}
