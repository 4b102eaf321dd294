// Package config loads the famtree configuration from layered YAML/JSON files
// and FAMTREE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/pkg/validation"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config is the full application configuration.
type Config struct {
	Environment Environment   `yaml:"environment" json:"environment" validate:"required,oneof=development production test"`
	Logging     LoggingConfig `yaml:"logging" json:"logging"`
	Editor      EditorConfig  `yaml:"editor" json:"editor"`
	Metrics     MetricsConfig `yaml:"metrics" json:"metrics"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// LoggingConfig drives observability.NewLogger.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level" validate:"required,oneof=debug info warn error"`
	Format     string `yaml:"format" json:"format" validate:"required,oneof=json console"`
	Name       string `yaml:"name" json:"name"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress" json:"compress"`
	AddCaller  bool   `yaml:"add_caller" json:"add_caller"`
}

// EditorConfig maps onto the editor setters.
type EditorConfig struct {
	Fields       []ports.Field            `yaml:"fields" json:"fields" validate:"dive"`
	Fixed        bool                     `yaml:"fixed" json:"fixed"`
	Editable     bool                     `yaml:"editable" json:"editable"`
	EditFirst    bool                     `yaml:"edit_first" json:"edit_first"`
	HistoryLimit int                      `yaml:"history_limit" json:"history_limit" validate:"gte=0"`
	AddRelLabels ports.AddRelLabels       `yaml:"add_rel_labels" json:"add_rel_labels"`
	LinkExisting ports.LinkExistingConfig `yaml:"link_existing" json:"link_existing"`
}

// MetricsConfig controls the prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true"`
	// Textfile is where the metrics are written on exit, if set.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	return validation.GetValidator().Struct(c)
}

// Default returns the built-in configuration for env.
func Default(env Environment) *Config {
	cfg := &Config{
		Environment: env,
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Name:       "famtree",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Editor: EditorConfig{
			Fields: []ports.Field{
				{ID: "first name", Label: "first name", Type: "text"},
				{ID: "last name", Label: "last name", Type: "text"},
				{ID: "birthday", Label: "birthday", Type: "date"},
				{ID: "avatar", Label: "avatar", Type: "text"},
			},
			Fixed:        true,
			Editable:     true,
			HistoryLimit: 100,
			AddRelLabels: ports.DefaultAddRelLabels(),
			LinkExisting: ports.LinkExistingConfig{
				Title:        "Link existing person",
				LinkRelLabel: "Select person",
			},
		},
		Metrics: MetricsConfig{
			Namespace: "famtree",
		},
	}
	cfg.applyEnvironmentDefaults()
	return cfg
}

// applyEnvironmentDefaults adjusts settings that depend on the environment.
func (c *Config) applyEnvironmentDefaults() {
	switch c.Environment {
	case Development:
		c.Logging.AddCaller = true
	case Production:
		c.Logging.Format = "json"
	case Test:
		c.Logging.Level = "error"
	}
}

// getEnvironment reads FAMTREE_ENV, defaulting to development.
func getEnvironment() Environment {
	switch env := Environment(strings.ToLower(os.Getenv("FAMTREE_ENV"))); env {
	case Development, Production, Test:
		return env
	case "":
		return Development
	default:
		fmt.Fprintf(os.Stderr, "Warning: unknown FAMTREE_ENV %q, using development\n", env)
		return Development
	}
}
