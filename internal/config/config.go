// Package config provides configuration utilities for the application.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/spf13/viper"
)

// Collision policies for canonical header clashes.
const (
	CollisionOverwrite = "overwrite"
	CollisionWarn      = "warn"
	CollisionError     = "error"
)

// Config is the typed view of every catalog setting.
type Config struct {
	PDF           PDFConfig      `mapstructure:"pdf"`
	Database      DatabaseConfig `mapstructure:"database"`
	Logging       LoggingConfig  `mapstructure:"logging"`
	Mapping       string         `mapstructure:"mapping"`
	Output        string         `mapstructure:"output"`
	RejectsOutput string         `mapstructure:"rejects_output"`
	Source        SourceConfig   `mapstructure:"source"`
	Pipeline      PipelineConfig `mapstructure:"pipeline"`
	DryRun        bool           `mapstructure:"dry_run"`
}

// DatabaseConfig locates the run history database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PipelineConfig tunes the normalization pipeline.
type PipelineConfig struct {
	CollisionPolicy string   `mapstructure:"collision_policy"`
	PriceColumns    []string `mapstructure:"price_columns"`
	RequiredFields  []string `mapstructure:"required_fields"`
	AllowZeroPrices bool     `mapstructure:"allow_zero_prices"`
	InferPlacement  bool     `mapstructure:"infer_placement"`
	DropUnnamed     bool     `mapstructure:"drop_unnamed"`
}

// SourceConfig controls how tabular sources are read.
type SourceConfig struct {
	Sheet        string `mapstructure:"sheet"`
	CSVDelimiter string `mapstructure:"csv_delimiter"`
	Encoding     string `mapstructure:"encoding"`
	HeaderRow    int    `mapstructure:"header_row"`
}

// PDFConfig describes the geometric layout of PDF catalogs.
type PDFConfig struct {
	Columns    map[string][]float64 `mapstructure:"columns"`
	YTolerance float64              `mapstructure:"y_tolerance"`
	HeaderBand float64              `mapstructure:"header_band"`
	GlyphGap   float64              `mapstructure:"glyph_gap"`
}

// LoggingConfig holds the global and per-stage logging settings.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	ExtractionFile string `mapstructure:"extraction_file"`
	ValidationFile string `mapstructure:"validation_file"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/catalog/catalog.db")
	v.SetDefault("dry_run", false)

	v.SetDefault("pipeline.price_columns", []string{"precio"})
	v.SetDefault("pipeline.required_fields", []string{"marca", "modelo", "pieza", "precio"})
	v.SetDefault("pipeline.collision_policy", CollisionOverwrite)
	v.SetDefault("pipeline.allow_zero_prices", false)
	v.SetDefault("pipeline.infer_placement", false)
	v.SetDefault("pipeline.drop_unnamed", true)

	v.SetDefault("source.header_row", 1)
	v.SetDefault("source.csv_delimiter", ",")
	v.SetDefault("source.encoding", "utf-8")

	v.SetDefault("pdf.y_tolerance", 8.0)
	v.SetDefault("pdf.header_band", 50.0)
	v.SetDefault("pdf.glyph_gap", 1.5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load decodes v into a Config, expands every path and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cfg.Mapping = ExpandPath(cfg.Mapping)
	cfg.Output = ExpandPath(cfg.Output)
	cfg.RejectsOutput = ExpandPath(cfg.RejectsOutput)
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.ExtractionFile = ExpandPath(cfg.Logging.ExtractionFile)
	cfg.Logging.ValidationFile = ExpandPath(cfg.Logging.ValidationFile)
	cfg.Pipeline.CollisionPolicy = strings.ToLower(strings.TrimSpace(cfg.Pipeline.CollisionPolicy))
	cfg.Source.Encoding = strings.ToLower(strings.TrimSpace(cfg.Source.Encoding))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Pipeline.CollisionPolicy {
	case CollisionOverwrite, CollisionWarn, CollisionError:
	default:
		errs = append(errs, fmt.Errorf("pipeline.collision_policy must be overwrite, warn or error, got %q", c.Pipeline.CollisionPolicy))
	}

	if len(c.Pipeline.PriceColumns) == 0 {
		errs = append(errs, errors.New("pipeline.price_columns must not be empty"))
	}
	if len(c.Pipeline.RequiredFields) == 0 {
		errs = append(errs, errors.New("pipeline.required_fields must not be empty"))
	}

	if c.Source.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("source.header_row must be at least 1, got %d", c.Source.HeaderRow))
	}
	if len([]rune(c.Source.CSVDelimiter)) != 1 {
		errs = append(errs, fmt.Errorf("source.csv_delimiter must be a single character, got %q", c.Source.CSVDelimiter))
	}
	switch c.Source.Encoding {
	case "utf-8", "utf8", "windows-1252", "cp1252", "iso-8859-1", "latin1":
	default:
		errs = append(errs, fmt.Errorf("source.encoding %q is not supported", c.Source.Encoding))
	}

	if c.PDF.YTolerance <= 0 {
		errs = append(errs, fmt.Errorf("pdf.y_tolerance must be positive, got %v", c.PDF.YTolerance))
	}
	if c.PDF.GlyphGap < 0 {
		errs = append(errs, fmt.Errorf("pdf.glyph_gap must not be negative, got %v", c.PDF.GlyphGap))
	}
	if c.PDF.HeaderBand < 0 {
		errs = append(errs, fmt.Errorf("pdf.header_band must not be negative, got %v", c.PDF.HeaderBand))
	}
	for name, span := range c.PDF.Columns {
		if len(span) != 2 || span[0] >= span[1] {
			errs = append(errs, fmt.Errorf("pdf.columns.%s must be [xmin, xmax] with xmin < xmax", name))
		}
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %q is not a level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
}
