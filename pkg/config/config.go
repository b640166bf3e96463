// Package config loads the optional viewkit.yaml file and applies it to the
// component, registry and error-reporting packages.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/viewkit/pkg/component"
	viewerrors "github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/registry"
	"github.com/go-drift/viewkit/pkg/view"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "viewkit.yaml"

// Config represents the optional viewkit.yaml configuration.
type Config struct {
	Registry   RegistryConfig   `yaml:"registry"`
	Navigation NavigationConfig `yaml:"navigation"`
	Log        LogConfig        `yaml:"log"`
}

// RegistryConfig contains dispatcher settings.
type RegistryConfig struct {
	MaxTraversalDepth int `yaml:"max_traversal_depth,omitempty"`
}

// NavigationConfig contains navigation settings.
type NavigationConfig struct {
	ComponentsDir string `yaml:"components_dir,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	MaxTraversalDepth int
	ComponentsDir     string
	LogLevel          zapcore.Level
	Verbose           bool
}

// LoadOptional reads viewkit.yaml from dir if present. A missing file yields
// an empty Config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes configuration YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads viewkit.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve fills defaults and validates values.
func (c *Config) Resolve() (*Resolved, error) {
	depth := c.Registry.MaxTraversalDepth
	if depth < 0 {
		return nil, fmt.Errorf("registry.max_traversal_depth must not be negative (got %d)", depth)
	}
	if depth == 0 {
		depth = view.DefaultMaxDepth
	}

	dir := strings.Trim(strings.TrimSpace(c.Navigation.ComponentsDir), "/")
	if dir == "" {
		dir = component.DefaultComponentsDir
	}
	if err := module.CheckFilePath(dir); err != nil {
		return nil, fmt.Errorf("navigation.components_dir is invalid: %w", err)
	}

	level := zapcore.InfoLevel
	if s := strings.TrimSpace(c.Log.Level); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		level = parsed
	}

	return &Resolved{
		MaxTraversalDepth: depth,
		ComponentsDir:     dir,
		LogLevel:          level,
		Verbose:           c.Log.Verbose,
	}, nil
}

// Apply installs resolved settings into the viewkit packages. Registries
// created before Apply keep their original traversal bound.
func Apply(r *Resolved) error {
	registry.SetDefaultMaxDepth(r.MaxTraversalDepth)
	component.SetComponentsDir(r.ComponentsDir)

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(r.LogLevel)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	viewerrors.SetLogger(logger)
	registry.SetLogger(logger.Named("registry"))
	viewerrors.SetHandler(&viewerrors.LogHandler{Verbose: r.Verbose})
	return nil
}
