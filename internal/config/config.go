// Package config loads the application configuration from environment
// variables layered over an optional YAML file. Environment values win.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"estimatex/internal/excelreturn"
)

// envPrefix namespaces the environment variables (ESTIMATEX_LOGGING_LEVEL, …).
const envPrefix = "ESTIMATEX"

// Config is the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Parse   ParseConfig   `yaml:"parse" envconfig:"PARSE"`
	Excel   ExcelConfig   `yaml:"excel" envconfig:"EXCEL"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output string `yaml:"output" envconfig:"OUTPUT" default:"console"`
}

// PathsConfig locates the working directories.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// ParseConfig bounds what the ingestion service admits.
type ParseConfig struct {
	MaxFileBytes int64   `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES" default:"16777216"`
	RateRPS      float64 `yaml:"rate_rps" envconfig:"RATE_RPS" default:"0"`
	RateBurst    int     `yaml:"rate_burst" envconfig:"RATE_BURST" default:"10"`
}

// ExcelConfig carries the default column hints for the LX/MX parser.
// Flags and per-request options override these.
type ExcelConfig struct {
	Sheet              string   `yaml:"sheet" envconfig:"SHEET"`
	CodeColumns        []string `yaml:"code_columns" envconfig:"CODE_COLUMNS" default:"Codice,Articolo"`
	DescriptionColumns []string `yaml:"description_columns" envconfig:"DESCRIPTION_COLUMNS" default:"Descrizione"`
	PriceColumn        string   `yaml:"price_column" envconfig:"PRICE_COLUMN" default:"Prezzo"`
	QuantityColumn     string   `yaml:"quantity_column" envconfig:"QUANTITY_COLUMN" default:"Quantita"`
	ProgressiveColumn  string   `yaml:"progressive_column" envconfig:"PROGRESSIVE_COLUMN"`
}

// Hints converts the Excel defaults into parser column hints.
func (e ExcelConfig) Hints() excelreturn.ColumnHints {
	return excelreturn.ColumnHints{
		Sheet:              e.Sheet,
		CodeColumns:        e.CodeColumns,
		DescriptionColumns: e.DescriptionColumns,
		PriceColumn:        e.PriceColumn,
		QuantityColumn:     e.QuantityColumn,
		ProgressiveColumn:  e.ProgressiveColumn,
	}
}

// Load reads the configuration: file first (when configFile is non-empty
// and exists), then environment variables on top.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
			}
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if c.Parse.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must not be negative")
	}
	if c.Excel.PriceColumn == "" {
		return fmt.Errorf("excel price_column must be set")
	}
	return nil
}
