// Package bash runs submitted lines with the mvdan.cc/sh interpreter.
package bash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// killTimeout is how long a command gets to exit after an interrupt before
// it is killed.
const killTimeout = 2 * time.Second

// Executor runs lines in one long-lived shell, so that "cd" and variable
// assignments carry over from one line to the next.
type Executor struct {
	runner *interp.Runner
	logger *zap.Logger
}

// NewExecutor creates an Executor wired to the given standard streams.
func NewExecutor(stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) (*Executor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runner, err := interp.New(
		interp.Interactive(true),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(stdin, stdout, stderr),
		interp.ExecHandlers(func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return NewProcessGroupExecHandler(killTimeout)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bash runner: %w", err)
	}

	return &Executor{runner: runner, logger: logger}, nil
}

// Run executes line and returns its exit code. A non-zero exit code is not
// an error; errors are reserved for lines that cannot be parsed or run.
func (e *Executor) Run(ctx context.Context, line string) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return 1, fmt.Errorf("failed to parse bash command: %w", err)
	}

	err = e.runner.Run(ctx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			e.logger.Debug("command exited", zap.String("line", line), zap.Int("status", int(exitStatus)))
			return int(exitStatus), nil
		}
		return 1, err
	}
	return 0, nil
}

// Dir returns the shell's working directory.
func (e *Executor) Dir() string {
	return e.runner.Dir
}

// Exited reports whether the shell ran "exit".
func (e *Executor) Exited() bool {
	return e.runner.Exited()
}
