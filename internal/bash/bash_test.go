package bash

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestExecutor(t *testing.T) (*Executor, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	e, err := NewExecutor(nil, &stdout, &stderr, zaptest.NewLogger(t))
	require.NoError(t, err)
	return e, &stdout, &stderr
}

func TestExecutor_Run(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
		code     int
	}{
		{"echo", "echo hello", "hello\n", 0},
		{"pipeline", "echo a b | tr a-z A-Z", "A B\n", 0},
		{"false", "false", "", 1},
		{"exit status", "(exit 3)", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && tt.name == "pipeline" {
				t.Skip("tr is not available on windows")
			}
			e, stdout, _ := newTestExecutor(t)
			code, err := e.Run(context.Background(), tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.expected, stdout.String())
		})
	}
}

func TestExecutor_ParseError(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	code, err := e.Run(context.Background(), "echo 'unterminated")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestExecutor_StateCarriesOver(t *testing.T) {
	e, stdout, _ := newTestExecutor(t)
	ctx := context.Background()

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	_, err = e.Run(ctx, "cd "+dir)
	require.NoError(t, err)
	assert.Contains(t, []string{dir, resolved}, e.Dir())

	_, err = e.Run(ctx, "GREETING=hi")
	require.NoError(t, err)
	_, err = e.Run(ctx, "echo $GREETING")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", stdout.String())
}

func TestExecutor_Exit(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	assert.False(t, e.Exited())

	code, err := e.Run(context.Background(), "exit 0")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.True(t, e.Exited())
}

func TestExecutor_ExternalCommandSeesExportedVariables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	e, stdout, _ := newTestExecutor(t)
	ctx := context.Background()

	_, err := e.Run(ctx, "export LINECOMP_TEST=42")
	require.NoError(t, err)
	_, err = e.Run(ctx, `/bin/sh -c 'echo $LINECOMP_TEST'`)
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout.String())
}

func TestExecutor_CommandNotFound(t *testing.T) {
	e, _, stderr := newTestExecutor(t)

	code, err := e.Run(context.Background(), "linecomp-no-such-command --flag")
	require.NoError(t, err)
	assert.Equal(t, 127, code)
	assert.NotEmpty(t, stderr.String())
}

func TestExecutor_ExternalExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	e, _, _ := newTestExecutor(t)
	code, err := e.Run(context.Background(), `/bin/sh -c 'exit 7'`)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}
