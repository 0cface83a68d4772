package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var knownStrategies = map[string]bool{
	"history":    true,
	"completion": true,
}

var knownSortDirs = map[string]bool{
	"before": true,
	"with":   true,
	"after":  true,
}

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Loader handles loading and validation of configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config

	// Errors holds non-fatal problems. Offending values are replaced by
	// their defaults.
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("no config file, using defaults", zap.String("path", path))
			return &LoadResult{Config: DefaultConfig(), Errors: []error{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from YAML source.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(source), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	result := &LoadResult{
		Config: cfg,
		Errors: l.validate(cfg),
	}
	for _, err := range result.Errors {
		l.logger.Warn("invalid config value", zap.Error(err))
	}
	return result, nil
}

func (l *Loader) validate(cfg *Config) []error {
	defaults := DefaultConfig()
	errs := []error{}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if !knownLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", cfg.LogLevel))
		cfg.LogLevel = defaults.LogLevel
	}

	cfg.Match.SortDirs = strings.ToLower(cfg.Match.SortDirs)
	if !knownSortDirs[cfg.Match.SortDirs] {
		errs = append(errs, fmt.Errorf("match.sort_dirs: unknown value %q", cfg.Match.SortDirs))
		cfg.Match.SortDirs = defaults.Match.SortDirs
	}

	for _, s := range strings.Fields(cfg.Autosuggest.Strategy) {
		if !knownStrategies[s] {
			errs = append(errs, fmt.Errorf("autosuggest.strategy: unknown source %q", s))
			cfg.Autosuggest.Strategy = defaults.Autosuggest.Strategy
			break
		}
	}

	if cfg.Completion.Specs == nil {
		cfg.Completion.Specs = make(map[string][]string)
	}
	if cfg.Completion.Functions == nil {
		cfg.Completion.Functions = make(map[string]string)
	}

	return errs
}

// Strategies returns the configured suggestion sources in order.
func (c *Config) Strategies() []string {
	return strings.Fields(c.Autosuggest.Strategy)
}
