package suggest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/pipeline"
	"github.com/atinylittleshell/linecomp/internal/words"
	"go.uber.org/zap"
)

// Completion is a finished background generation.
type Completion struct {
	GenerationID uint32
	Store        *matches.Store
}

// Future is the handle for one submitted generation.
type Future struct {
	id    uint32
	done  chan struct{}
	store *matches.Store
}

// ID returns the generation id the future was submitted for.
func (f *Future) ID() uint32 {
	return f.id
}

// Done is closed once generation has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the generated matches, or nil while generation is still
// running.
func (f *Future) Result() *matches.Store {
	select {
	case <-f.done:
		return f.store
	default:
		return nil
	}
}

// Executor generates matches on background goroutines, each into a store
// of its own. Finished generations are delivered on Completions unless a
// newer generation was submitted in the meantime.
type Executor struct {
	generator   matches.Generator
	options     pipeline.Options
	completions chan Completion
	logger      *zap.Logger

	mu       sync.Mutex
	inflight map[uint32]*Future
	latest   atomic.Uint32

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ExecutorConfig holds configuration for creating an Executor.
type ExecutorConfig struct {
	// Generator produces the matches. It is called from several goroutines
	// and must be safe for concurrent use.
	Generator matches.Generator

	// Options for the pipeline each generation runs in.
	Options pipeline.Options

	// Logger for debug output.
	Logger *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(config ExecutorConfig) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		generator:   config.Generator,
		options:     config.Options,
		completions: make(chan Completion, 1),
		logger:      logger,
		inflight:    make(map[uint32]*Future),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Completions delivers finished generations. The receiver hands them to
// the editor on the editor's goroutine.
func (x *Executor) Completions() <-chan Completion {
	return x.completions
}

// Submit starts generating matches for lines under id. Submitting an id
// that is still being generated returns the existing future.
func (x *Executor) Submit(id uint32, lines words.LineStates) *Future {
	x.mu.Lock()
	defer x.mu.Unlock()

	if f, ok := x.inflight[id]; ok {
		return f
	}

	f := &Future{id: id, done: make(chan struct{})}
	if x.ctx.Err() != nil {
		f.store = matches.NewStore()
		close(f.done)
		return f
	}
	x.inflight[id] = f
	x.latest.Store(id)

	x.wg.Add(1)
	go x.run(f, lines)

	x.logger.Debug("submitted generation", zap.Uint32("generation_id", id))
	return f
}

// Pending returns the number of generations still running.
func (x *Executor) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.inflight)
}

// Close stops delivering results, waits for running generations and then
// closes the Completions channel. Submit after Close returns an empty result.
func (x *Executor) Close() {
	x.mu.Lock()
	x.cancel()
	x.mu.Unlock()

	x.wg.Wait()
	x.closeOnce.Do(func() { close(x.completions) })
}

func (x *Executor) run(f *Future, lines words.LineStates) {
	defer x.wg.Done()

	start := time.Now()
	store := matches.NewStore()
	pipeline.New(store, x.options).Generate(lines, x.generator)

	f.store = store
	close(f.done)

	x.mu.Lock()
	delete(x.inflight, f.id)
	x.mu.Unlock()

	if f.id != x.latest.Load() {
		x.logger.Debug("skipping superseded generation",
			zap.Uint32("generation_id", f.id),
			zap.Uint32("latest", x.latest.Load()),
		)
		return
	}

	x.logger.Debug("generation finished",
		zap.Uint32("generation_id", f.id),
		zap.Int("count", store.InfoCount()),
		zap.Duration("elapsed", time.Since(start)),
	)

	select {
	case x.completions <- Completion{GenerationID: f.id, Store: store}:
	case <-x.ctx.Done():
	}
}
