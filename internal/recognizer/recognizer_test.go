package recognizer

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockLookPath struct {
	mu    sync.Mutex
	paths map[string]string
	calls int
}

func (m *mockLookPath) lookPath(word string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if p, ok := m.paths[word]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (m *mockLookPath) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func waitReady(t *testing.T, r *Recognizer) {
	t.Helper()
	select {
	case <-r.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("recognizer never became ready")
	}
}

func TestRecognizer_ResolvesInBackground(t *testing.T) {
	m := &mockLookPath{paths: map[string]string{"git": "/usr/bin/git"}}
	r := New(Config{LookPath: m.lookPath, Builtins: []string{"cd"}, Logger: zaptest.NewLogger(t)})
	defer r.Close()

	first := r.Recognize("git")
	assert.False(t, first.Ready)

	waitReady(t, r)

	rec := r.Recognize("git")
	require.True(t, rec.Ready)
	assert.Equal(t, KindExecutable, rec.Kind)
	assert.Equal(t, "/usr/bin/git", rec.Path)
	assert.Equal(t, 1, m.getCallCount())

	builtin := r.Recognize("cd")
	assert.Equal(t, KindBuiltin, builtin.Kind)
	assert.True(t, builtin.Ready)
}

func TestRecognizer_NotFoundAndForget(t *testing.T) {
	m := &mockLookPath{paths: map[string]string{}}
	r := New(Config{LookPath: m.lookPath})
	defer r.Close()

	r.Recognize("nosuch")
	waitReady(t, r)
	assert.Equal(t, KindNotFound, r.Recognize("nosuch").Kind)

	r.Forget()
	assert.False(t, r.Recognize("nosuch").Ready)
}

func TestRecognizer_SkipsSlowAndEmptyWords(t *testing.T) {
	m := &mockLookPath{}
	r := New(Config{LookPath: m.lookPath})
	defer r.Close()

	assert.True(t, r.Recognize("").Ready)
	assert.True(t, r.Recognize(`\\server\share\tool`).Ready)
	assert.Equal(t, 0, m.getCallCount())
}

func TestIsUNC(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{`\\server\share`, true},
		{`//server/share`, true},
		{`\\`, false},
		{`///x`, false},
		{`/usr/bin`, false},
		{`C:\x`, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUNC(tt.path))
		})
	}
}

func TestDrivePrefix(t *testing.T) {
	d, ok := DrivePrefix(`c:\temp`)
	assert.True(t, ok)
	assert.Equal(t, "C:", d)

	_, ok = DrivePrefix("1:")
	assert.False(t, ok)
	_, ok = DrivePrefix("abc")
	assert.False(t, ok)
}

func TestIsSlowPath(t *testing.T) {
	assert.True(t, IsSlowPath(`\\server\share`))
	assert.False(t, IsSlowPath("src/main.go"))
	if runtime.GOOS != "windows" {
		assert.True(t, IsSlowPath("Z:foo"))
	}
}

func TestDriveType_String(t *testing.T) {
	assert.Equal(t, "remote", DriveRemote.String())
	assert.Equal(t, "invalid", DriveInvalid.String())
	assert.Equal(t, "unknown", DriveType(42).String())
}
