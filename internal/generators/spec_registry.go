// Package generators provides the match generators used by the editor:
// registered command completion specs, file system paths and executables.
package generators

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/words"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// CompletionType represents the type of completion.
type CompletionType string

const (
	// WordListCompletion represents word list based completion (-W option).
	WordListCompletion CompletionType = "W"
	// FunctionCompletion represents function based completion (-F option).
	FunctionCompletion CompletionType = "F"
)

const functionTimeout = 2 * time.Second

// CompletionSpec represents a completion specification for a command.
type CompletionSpec struct {
	Command string
	Type    CompletionType
	Value   string   // function name or wordlist
	Options []string // additional options like -o nosort
}

// HasOption reports whether the spec carries the given -o option.
func (s CompletionSpec) HasOption(opt string) bool {
	for _, o := range s.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// SpecRegistry stores and executes command completion specifications.
// It manages specs like "git completes with add/commit/push" and executes them.
// It is safe for concurrent use; function completions share one shell
// runner and are serialized.
type SpecRegistry struct {
	mu     sync.RWMutex
	specs  map[string]CompletionSpec
	runner *interp.Runner
	runMu  sync.Mutex
	logger *zap.Logger
}

// SpecRegistryConfig holds configuration for creating a SpecRegistry.
type SpecRegistryConfig struct {
	// Runner executes completion functions. Function specs are ignored
	// without one.
	Runner *interp.Runner

	// Logger for debug output.
	Logger *zap.Logger
}

// NewSpecRegistry creates a new SpecRegistry.
func NewSpecRegistry(config SpecRegistryConfig) *SpecRegistry {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecRegistry{
		specs:  make(map[string]CompletionSpec),
		runner: config.Runner,
		logger: logger,
	}
}

// AddSpec adds or updates a completion specification.
func (r *SpecRegistry) AddSpec(spec CompletionSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Command] = spec
}

// RemoveSpec removes a completion specification.
func (r *SpecRegistry) RemoveSpec(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, command)
}

// GetSpec retrieves a completion specification.
func (r *SpecRegistry) GetSpec(command string) (CompletionSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[command]
	return spec, ok
}

// ListSpecs returns all completion specifications ordered by command.
func (r *SpecRegistry) ListSpecs() []CompletionSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]CompletionSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Command < specs[j].Command
	})
	return specs
}

// ExecuteCompletion executes a completion specification for a given command line
// and returns the list of possible completions. Word lists are returned whole;
// selecting among them is left to the caller.
func (r *SpecRegistry) ExecuteCompletion(ctx context.Context, spec CompletionSpec, args []string) ([]string, error) {
	switch spec.Type {
	case WordListCompletion:
		return strings.Fields(spec.Value), nil

	case FunctionCompletion:
		if r.runner == nil {
			return nil, fmt.Errorf("no shell runner for completion function %s", spec.Value)
		}
		r.runMu.Lock()
		defer r.runMu.Unlock()
		fn := NewCompletionFunction(spec.Value, r.runner)
		return fn.Execute(ctx, args)

	default:
		return nil, fmt.Errorf("unsupported completion type: %s", spec.Type)
	}
}

// Generate implements matches.Generator for arguments of commands that have
// a registered spec.
func (r *SpecRegistry) Generate(lines words.LineStates, b *matches.Builder) bool {
	line := lines.Last()
	if line.EndWord().CommandWord {
		return false
	}

	spec, ok := r.GetSpec(line.CommandWordText())
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), functionTimeout)
	defer cancel()

	results, err := r.ExecuteCompletion(ctx, spec, line.Args())
	if err != nil {
		r.logger.Debug("completion spec failed",
			zap.String("command", spec.Command),
			zap.Error(err),
		)
		return false
	}

	b.AddAll(results, matches.TypeArg)
	if spec.Type == FunctionCompletion {
		// Functions see the whole word, so their output cannot be reused as
		// the word grows.
		b.SetVolatile()
	}
	if spec.HasOption("nosort") {
		b.SetNoSort()
	}
	return true
}

// WordBreakInfo implements matches.Generator.
func (r *SpecRegistry) WordBreakInfo(*words.LineState) words.BreakInfo {
	return words.BreakInfo{}
}
