package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/bash"
	"github.com/atinylittleshell/linecomp/internal/core"
	"github.com/atinylittleshell/linecomp/internal/styles"
	"github.com/atinylittleshell/linecomp/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// exitError carries the status of a shell that ran "exit".
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// runShell reads lines with the editor and runs them until end of input.
func runShell(ctx context.Context, a *app) error {
	executor, err := bash.NewExecutor(os.Stdin, os.Stdout, os.Stderr, a.logger)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	a.logger.Info("-------- new linecomp session --------", zap.String("session_id", sessionID))

	for {
		result, err := readLine(a, executor.Dir(), sessionID)
		if err != nil {
			return err
		}

		switch result.Type {
		case tui.ResultEOF:
			return nil
		case tui.ResultInterrupt:
			continue
		}

		if strings.TrimSpace(result.Value) == "" {
			continue
		}

		code, err := executor.Run(ctx, result.Value)
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.ERROR("linecomp: "+err.Error()))
		}
		if executor.Exited() {
			if code != 0 {
				return exitError(code)
			}
			return nil
		}
	}
}

// readLine runs one editor session. Each line gets a fresh editor so that
// background work left over from the previous line cannot reach it.
func readLine(a *app, dir string, sessionID string) (tui.Result, error) {
	parts := a.newEditor(nil)
	defer parts.Close()

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 80
	}

	cfg := tui.Config{
		Editor:    parts.editor,
		Keys:      parts.keys,
		Edit:      parts.edit,
		Suggester: parts.suggester,
		Executor:  parts.executor,
		Directory: dir,
		SessionID: sessionID,
		Prompt:    prompt(dir),
		Width:     width,
		Logger:    a.logger,
	}
	if a.history != nil {
		cfg.History = a.history
	}

	final, err := tea.NewProgram(tui.New(cfg)).Run()
	if err != nil {
		return tui.Result{}, fmt.Errorf("line editor failed: %w", err)
	}
	return final.(tui.Model).Result(), nil
}

// prompt shows dir with the home directory abbreviated to "~".
func prompt(dir string) string {
	home := core.HomeDir()
	if rel, err := filepath.Rel(home, dir); err == nil && !strings.HasPrefix(rel, "..") {
		if rel == "." {
			dir = "~"
		} else {
			dir = "~" + string(filepath.Separator) + rel
		}
	}
	return dir + " > "
}

// runScript runs r as a bash script, for when stdin is not a terminal.
func runScript(ctx context.Context, a *app, r io.Reader) error {
	source, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	executor, err := bash.NewExecutor(nil, os.Stdout, os.Stderr, a.logger)
	if err != nil {
		return err
	}

	code, err := executor.Run(ctx, string(source))
	if err != nil {
		return err
	}
	if code != 0 {
		return exitError(code)
	}
	return nil
}
