package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atinylittleshell/linecomp/internal/config"
	"github.com/atinylittleshell/linecomp/internal/core"
	"github.com/atinylittleshell/linecomp/internal/generators"
	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/atinylittleshell/linecomp/internal/input"
	"github.com/atinylittleshell/linecomp/internal/linebuf"
	"github.com/atinylittleshell/linecomp/internal/metrics"
	"github.com/atinylittleshell/linecomp/internal/pipeline"
	"github.com/atinylittleshell/linecomp/internal/recognizer"
	"github.com/atinylittleshell/linecomp/internal/session"
	"github.com/atinylittleshell/linecomp/internal/styles"
	"github.com/atinylittleshell/linecomp/internal/suggest"
	"github.com/atinylittleshell/linecomp/internal/tui"
	"go.uber.org/zap"
)

// builtins are recognised as commands without a PATH lookup.
var builtins = []string{
	"alias", "bg", "break", "builtin", "cd", "command", "continue", "dirs",
	"echo", "eval", "exec", "exit", "export", "false", "fg", "getopts",
	"hash", "popd", "printf", "pushd", "pwd", "read", "readonly", "return",
	"set", "shift", "source", "test", "trap", "true", "type", "umask",
	"unalias", "unset", "wait",
}

// app holds what every command shares: settings, logging and the
// completion sources.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	history    *history.HistoryManager
	generators *generators.Set
	recognizer *recognizer.Recognizer

	cancel context.CancelFunc
}

// appOptions selects optional parts of the app.
type appOptions struct {
	configPath string
	logPath    string
	noHistory  bool
}

func newApp(opts appOptions) (*app, error) {
	if opts.configPath == "" {
		opts.configPath = core.ConfigFile()
	}
	if opts.logPath == "" {
		opts.logPath = core.LogFile()
	}

	// Problems loading settings are logged once the real logger exists.
	result, err := config.NewLoader(nil).LoadFromFile(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	logger, err := initializeLogger(cfg.LogLevel, opts.logPath)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		logger.Warn("invalid config value", zap.String("path", opts.configPath), zap.Error(e))
		fmt.Fprintln(os.Stderr, styles.ERROR("linecomp: "+e.Error()))
	}

	gens, err := generators.NewSet(cfg.Completion, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		generators: gens,
		recognizer: recognizer.New(recognizer.Config{Builtins: builtins, Logger: logger}),
		cancel:     func() {},
	}

	if cfg.History.Enable && !opts.noHistory {
		a.history, err = history.NewHistoryManager(core.HistoryFile(), logger)
		if err != nil {
			// The editor works without history.
			logger.Warn("failed to open history", zap.Error(err))
			a.history = nil
		}
	}

	if cfg.Metrics.Addr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	return a, nil
}

func (a *app) Close() {
	a.cancel()
	a.recognizer.Close()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func initializeLogger(level string, path string) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs only go to file so they don't interfere with the line editor.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{path}
	loggerConfig.ErrorOutputPaths = []string{path}

	return loggerConfig.Build()
}

func (a *app) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Substring:      a.cfg.Match.Substring,
		TildeExpansion: a.cfg.Match.TildeExpansion,
		SortDirs:       pipeline.ParseDirPlacement(a.cfg.Match.SortDirs),
		Logger:         a.logger,
	}
}

// suggester builds the suggestion host. The executor is nil unless
// suggestions are generated in the background; the caller closes it.
func (a *app) suggester(settings *config.Config) (*suggest.Suggester, *suggest.Executor) {
	var executor *suggest.Executor
	if settings.Autosuggest.Enable && settings.Autosuggest.Async {
		executor = suggest.NewExecutor(suggest.ExecutorConfig{
			Generator: a.generators.Chain(),
			Options:   a.pipelineOptions(),
			Logger:    a.logger,
		})
	}

	cfg := suggest.Config{
		Strategies: settings.Strategies(),
		Executor:   executor,
		Logger:     a.logger,
	}
	// A nil *HistoryManager must not end up in the interface.
	if a.history != nil {
		cfg.History = a.history
	}
	return suggest.New(cfg), executor
}

// editorParts is an editor together with what drives it.
type editorParts struct {
	editor    *session.Editor
	keys      *tui.KeyQueue
	edit      *input.Module
	suggester *suggest.Suggester
	executor  *suggest.Executor
}

func (p *editorParts) Close() {
	if p.executor != nil {
		p.executor.Close()
	}
}

// newEditor builds an editor. settings defaults to the loaded config.
func (a *app) newEditor(settings *config.Config) *editorParts {
	if settings == nil {
		settings = a.cfg
	}
	sug, executor := a.suggester(settings)
	keys := &tui.KeyQueue{}
	edit := input.New(input.Config{
		Suggestions: sug,
		Logger:      a.logger,
	})

	editor := session.New(session.Config{
		Buffer:     linebuf.New(),
		Input:      keys,
		Generator:  a.generators.Chain(),
		Host:       sug,
		Recognizer: a.recognizer,
		Settings:   settings,
		Modules:    []session.Module{edit},
		Logger:     a.logger,
	})

	return &editorParts{
		editor:    editor,
		keys:      keys,
		edit:      edit,
		suggester: sug,
		executor:  executor,
	}
}
