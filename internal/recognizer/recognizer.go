// Package recognizer classifies command words in the background so the
// editor never blocks on PATH lookups.
package recognizer

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// Kind is what a command word resolves to.
type Kind int

const (
	KindUnknown Kind = iota
	KindExecutable
	KindBuiltin
	KindNotFound
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindBuiltin:
		return "builtin"
	case KindNotFound:
		return "notfound"
	default:
		return "unknown"
	}
}

// Recognition is the result for a single word.
type Recognition struct {
	Kind  Kind
	Path  string
	Ready bool
}

// Recognizer resolves command words on a background goroutine and caches the
// results. Recognize never blocks; a word seen for the first time returns a
// not-ready result and Ready fires once it has been resolved.
type Recognizer struct {
	mu       sync.Mutex
	cache    map[string]Recognition
	queued   map[string]bool
	queue    chan string
	ready    chan struct{}
	builtins map[string]bool
	lookPath func(word string) (string, error)
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration for creating a Recognizer.
type Config struct {
	// LookPath resolves a word to an executable path. Defaults to shell
	// PATH lookup relative to the working directory.
	LookPath func(word string) (string, error)

	// Builtins are recognised without a lookup.
	Builtins []string

	// Logger for debug output.
	Logger *zap.Logger
}

// New creates a Recognizer and starts its worker.
func New(config Config) *Recognizer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lookPath := config.LookPath
	if lookPath == nil {
		lookPath = func(word string) (string, error) {
			cwd, _ := os.Getwd()
			return interp.LookPathDir(cwd, expand.ListEnviron(os.Environ()...), word)
		}
	}

	builtins := make(map[string]bool, len(config.Builtins))
	for _, b := range config.Builtins {
		builtins[b] = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Recognizer{
		cache:    make(map[string]Recognition),
		queued:   make(map[string]bool),
		queue:    make(chan string, 64),
		ready:    make(chan struct{}, 1),
		builtins: builtins,
		lookPath: lookPath,
		logger:   logger,
		cancel:   cancel,
	}

	r.wg.Add(1)
	go r.run(ctx)
	return r
}

// Recognize returns the cached result for word, queueing a lookup when
// there is none.
func (r *Recognizer) Recognize(word string) Recognition {
	if word == "" {
		return Recognition{Kind: KindUnknown, Ready: true}
	}
	if r.builtins[word] {
		return Recognition{Kind: KindBuiltin, Ready: true}
	}
	if IsSlowPath(word) {
		return Recognition{Kind: KindUnknown, Ready: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.cache[word]; ok {
		return rec
	}
	if !r.queued[word] {
		select {
		case r.queue <- word:
			r.queued[word] = true
		default:
			r.logger.Debug("recognizer queue full", zap.String("word", word))
		}
	}
	return Recognition{Kind: KindUnknown}
}

// Ready receives a value after one or more queued words were resolved.
func (r *Recognizer) Ready() <-chan struct{} {
	return r.ready
}

// Forget drops all cached results, for example after PATH changed.
func (r *Recognizer) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]Recognition)
}

// Close stops the worker.
func (r *Recognizer) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Recognizer) run(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case word := <-r.queue:
			rec := Recognition{Kind: KindNotFound, Ready: true}
			if path, err := r.lookPath(word); err == nil {
				rec = Recognition{Kind: KindExecutable, Path: path, Ready: true}
			}

			r.mu.Lock()
			r.cache[word] = rec
			delete(r.queued, word)
			r.mu.Unlock()

			r.logger.Debug("recognized command",
				zap.String("word", word),
				zap.Stringer("kind", rec.Kind),
			)

			select {
			case r.ready <- struct{}{}:
			default:
			}
		}
	}
}
