// Package config provides configuration management for linecomp.
// Settings are read from a YAML file in the data directory; anything not
// set there keeps its default value.
package config

// Config holds all editor settings.
type Config struct {
	// LogLevel controls logging verbosity.
	LogLevel string `yaml:"log_level"`

	Autosuggest AutosuggestConfig `yaml:"autosuggest"`
	Match       MatchConfig       `yaml:"match"`
	Completion  CompletionConfig  `yaml:"completion"`
	History     HistoryConfig     `yaml:"history"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// AutosuggestConfig controls inline suggestions.
type AutosuggestConfig struct {
	// Enable turns suggestions on (autosuggest.enable).
	Enable bool `yaml:"enable"`

	// Async generates matches for suggestions in the background instead of
	// on the editing goroutine (autosuggest.async).
	Async bool `yaml:"async"`

	// Strategy lists suggestion sources in priority order, separated by
	// spaces. Known sources are "history" and "completion".
	Strategy string `yaml:"strategy"`
}

// MatchConfig controls how candidates are selected and ordered.
type MatchConfig struct {
	// Wild treats "*" and "?" in the typed word as wildcards.
	Wild bool `yaml:"wild"`

	// Substring falls back to matching anywhere in a candidate when nothing
	// matches as a prefix.
	Substring bool `yaml:"substring"`

	// SortDirs is one of "before", "with" or "after".
	SortDirs string `yaml:"sort_dirs"`

	// TildeExpansion expands a leading "~" in the typed word.
	TildeExpansion bool `yaml:"tilde_expansion"`
}

// CompletionConfig declares word list completions, equivalent to
// "complete -W" in bash.
type CompletionConfig struct {
	// Specs maps a command name to the words that complete its arguments.
	Specs map[string][]string `yaml:"specs"`

	// Functions maps a command name to a bash completion function defined
	// in Script, equivalent to "complete -F".
	Functions map[string]string `yaml:"functions"`

	// Script is bash source defining completion functions.
	Script string `yaml:"script"`
}

// HistoryConfig controls the command history database.
type HistoryConfig struct {
	Enable bool `yaml:"enable"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Autosuggest: AutosuggestConfig{
			Enable:   true,
			Async:    true,
			Strategy: "history completion",
		},
		Match: MatchConfig{
			Wild:           true,
			Substring:      true,
			SortDirs:       "with",
			TildeExpansion: true,
		},
		Completion: CompletionConfig{
			Specs:     make(map[string][]string),
			Functions: make(map[string]string),
		},
		History: HistoryConfig{
			Enable: true,
		},
	}
}
