//go:build !windows

package bash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// NewProcessGroupExecHandler returns an ExecHandlerFunc that runs external
// commands in their own process group, made the terminal's foreground group
// while they run. Ctrl+C then reaches the command rather than linecomp.
//
// If ctx is cancelled the group gets SIGINT, then SIGKILL after killTimeout.
// A negative killTimeout kills straight away.
func NewProcessGroupExecHandler(killTimeout time.Duration) interp.ExecHandlerFunc {
	// Handing the terminal back from a background group raises SIGTTOU.
	signal.Ignore(syscall.SIGTTOU)

	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			fmt.Fprintln(hc.Stderr, err)
			return interp.NewExitStatus(127)
		}

		cmd := &exec.Cmd{
			Path:        path,
			Args:        args,
			Dir:         hc.Dir,
			Env:         execEnv(hc.Env),
			Stdin:       hc.Stdin,
			Stdout:      hc.Stdout,
			Stderr:      hc.Stderr,
			SysProcAttr: &syscall.SysProcAttr{Setpgid: true},
		}
		if err := cmd.Start(); err != nil {
			fmt.Fprintln(hc.Stderr, err)
			return interp.NewExitStatus(126)
		}

		pgid := cmd.Process.Pid
		restore := foreground(hc.Stdin, pgid)
		defer restore()

		waitDone := make(chan error, 1)
		go func() {
			waitDone <- exitStatus(cmd.Wait())
		}()

		select {
		case err := <-waitDone:
			return err
		case <-ctx.Done():
		}

		if killTimeout < 0 {
			_ = unix.Kill(-pgid, unix.SIGKILL)
			return <-waitDone
		}

		_ = unix.Kill(-pgid, unix.SIGINT)
		select {
		case err := <-waitDone:
			return err
		case <-time.After(killTimeout):
			_ = unix.Kill(-pgid, unix.SIGKILL)
			return <-waitDone
		}
	}
}

// exitStatus converts the result of waiting for a command into the status
// the interpreter expects. Commands killed by a signal report 128 plus the
// signal number.
func exitStatus(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return interp.NewExitStatus(uint8(128 + int(status.Signal())))
	}
	return interp.NewExitStatus(uint8(exitErr.ExitCode()))
}

// foreground makes pgid the foreground process group of stdin's terminal
// and returns a function that hands the terminal back. When stdin is not a
// terminal it does nothing.
func foreground(stdin any, pgid int) func() {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	fd := int(f.Fd())

	original, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
	if err != nil {
		return func() {}
	}
	_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)

	return func() {
		_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, original)
	}
}

// execEnv lists the exported variables of env.
func execEnv(env expand.Environ) []string {
	var result []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported {
			result = append(result, name+"="+vr.String())
		}
		return true
	})
	return result
}
