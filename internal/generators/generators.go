package generators

import (
	"context"
	"io"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/config"
	"github.com/atinylittleshell/linecomp/internal/matches"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// Set bundles the generators used by an editor.
type Set struct {
	Specs    *SpecRegistry
	Commands *CommandGenerator
	Files    *FileGenerator
}

// NewSet builds the default generators from cfg. Completion functions run in
// a private shell runner loaded with cfg.Script.
func NewSet(cfg config.CompletionConfig, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runner, err := interp.New(interp.StdIO(nil, io.Discard, io.Discard))
	if err != nil {
		return nil, err
	}
	if err := LoadScript(context.Background(), runner, cfg.Script); err != nil {
		return nil, err
	}

	specs := NewSpecRegistry(SpecRegistryConfig{Runner: runner, Logger: logger})
	for command, list := range cfg.Specs {
		specs.AddSpec(CompletionSpec{
			Command: command,
			Type:    WordListCompletion,
			Value:   strings.Join(list, " "),
		})
	}
	for command, fn := range cfg.Functions {
		specs.AddSpec(CompletionSpec{
			Command: command,
			Type:    FunctionCompletion,
			Value:   fn,
		})
	}

	return &Set{
		Specs:    specs,
		Commands: NewCommandGenerator(nil),
		Files:    NewFileGenerator(logger),
	}, nil
}

// Chain returns the generators in priority order: registered specs, then
// command names, then paths.
func (s *Set) Chain() matches.Chain {
	return matches.Chain{s.Specs, s.Commands, s.Files}
}
