package generators

import (
	"context"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// CompletionFunction represents a bash completion function.
type CompletionFunction struct {
	Name   string
	Runner *interp.Runner
}

// NewCompletionFunction creates a new CompletionFunction.
func NewCompletionFunction(name string, runner *interp.Runner) *CompletionFunction {
	return &CompletionFunction{
		Name:   name,
		Runner: runner,
	}
}

// Execute runs the completion function with the given arguments and returns
// the contents of COMPREPLY.
func (f *CompletionFunction) Execute(ctx context.Context, args []string) ([]string, error) {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return nil, fmt.Errorf("failed to quote completion argument: %w", err)
		}
		quoted = append(quoted, q)
	}

	line := strings.Join(args, " ")
	script := fmt.Sprintf(`
		COMP_LINE=%s
		COMP_POINT=%d
		COMP_WORDS=(%s)
		COMP_CWORD=%d
		COMPREPLY=()
		%s %s
	`,
		mustQuote(line),
		len(line),
		strings.Join(quoted, " "),
		len(args)-1,
		f.Name,
		strings.Join(quoted, " "),
	)

	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse completion script: %w", err)
	}

	if err := f.Runner.Run(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to execute completion function: %w", err)
	}

	compreply, ok := f.Runner.Vars["COMPREPLY"]
	if !ok || compreply.Kind != expand.Indexed {
		return []string{}, nil
	}

	return compreply.List, nil
}

// LoadScript runs bash source, typically completion function definitions,
// in runner.
func LoadScript(ctx context.Context, runner *interp.Runner, source string) error {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	file, err := syntax.NewParser().Parse(strings.NewReader(source), "completion-script")
	if err != nil {
		return fmt.Errorf("failed to parse completion script: %w", err)
	}
	if err := runner.Run(ctx, file); err != nil {
		return fmt.Errorf("failed to load completion script: %w", err)
	}
	return nil
}

func mustQuote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "''"
	}
	return q
}
