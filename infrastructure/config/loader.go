package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources.
type Loader struct {
	// basePath is the root directory for configuration files
	basePath string

	// environment is the current deployment environment
	environment Environment

	// fileLoaders are tried in registration order
	fileLoaders []FileLoader

	lookupEnv func(string) (string, bool)
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader creates a new configuration loader with YAML and JSON support.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	loader := &Loader{
		basePath:    basePath,
		environment: env,
		lookupEnv:   os.LookupEnv,
	}

	loader.RegisterLoader(&YAMLLoader{})
	loader.RegisterLoader(&JSONLoader{})
	return loader
}

// NewLoaderFromEnv creates a loader for the environment named by FAMTREE_ENV.
func NewLoaderFromEnv(basePath string) *Loader {
	return NewLoader(basePath, getEnvironment())
}

// RegisterLoader registers a new file loader for a specific format.
func (l *Loader) RegisterLoader(loader FileLoader) {
	l.fileLoaders = append(l.fileLoaders, loader)
}

// BasePath returns the directory files are read from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g., production.yaml)
//  4. Local overrides file (local.yaml, development only)
//  5. FAMTREE_* environment variables
func (l *Loader) Load() (*Config, error) {
	cfg := Default(l.environment)
	sources := []string{"defaults"}

	for _, name := range l.layers() {
		path, err := l.loadFile(name, cfg)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
		sources = append(sources, path)
	}

	if l.loadEnvironmentVariables(cfg) {
		sources = append(sources, "environment")
	}
	cfg.LoadedFrom = sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) layers() []string {
	layers := []string{"base", strings.ToLower(string(l.environment))}
	if l.environment == Development {
		layers = append(layers, "local")
	}
	return layers
}

// loadFile decodes the first existing <name>.<ext> onto cfg.
func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())

		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", os.ErrNotExist
}

// loadEnvironmentVariables overlays FAMTREE_* variables and reports whether
// any was set.
func (l *Loader) loadEnvironmentVariables(cfg *Config) bool {
	applied := false
	str := func(key string, dst *string) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			*dst = val
			applied = true
		}
	}
	boolean := func(key string, dst *bool) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
				applied = true
			}
		}
	}
	integer := func(key string, dst *int) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
				applied = true
			}
		}
	}

	str("FAMTREE_LOG_LEVEL", &cfg.Logging.Level)
	str("FAMTREE_LOG_FORMAT", &cfg.Logging.Format)
	str("FAMTREE_LOG_FILE", &cfg.Logging.File)
	boolean("FAMTREE_EDITOR_FIXED", &cfg.Editor.Fixed)
	boolean("FAMTREE_EDITOR_EDITABLE", &cfg.Editor.Editable)
	integer("FAMTREE_HISTORY_LIMIT", &cfg.Editor.HistoryLimit)
	boolean("FAMTREE_METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("FAMTREE_METRICS_TEXTFILE", &cfg.Metrics.Textfile)
	return applied
}

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}
