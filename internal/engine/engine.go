package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Engine owns the model resource lifecycle and the in-flight generation.
// All state transitions are funneled through methods that take mu once;
// mu is never held across a wait on the model or on token production.
type Engine struct {
	mu sync.Mutex

	cfg runtimeConfig

	state    LoadState
	loading  *loadAttempt    // non-nil iff state == StateLoading
	resource *sharedResource // non-nil iff state == StateLoaded
	lastErr  string

	// gen tracks at most one "current" generation. A newer request replaces
	// it (cancelling the occupant) or leaves it alone depending on policy.
	// active holds every running generation, tracked or not, so Configure
	// and Close can stop them all.
	gen    *generation
	active map[*generation]struct{}

	adapter CaptionAdapter
	seed    func() int64
	log     zerolog.Logger

	loadsTotal  atomic.Uint64
	gensTotal   atomic.Uint64
	tokensTotal atomic.Uint64
	startTime   time.Time
}

// Configure updates the model location and resets the load state to Idle.
// An in-flight load is cancelled best-effort: waiters are released with a
// cancelled outcome and the attempt's resource, if it eventually arrives, is
// closed unobserved. Every running generation, tracked or not, is stopped so
// a stale generation bound to a superseded resource is never awaited; the
// resource itself is freed once the last in-flight session lets go of it.
func (e *Engine) Configure(modelDir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading != nil {
		// Release waiters now; runLoad sees the detached attempt and
		// discards its outcome when the underlying work eventually ends.
		e.loading.finish(nil, ErrCancelled())
		e.loading = nil
	}
	if e.resource != nil {
		_ = e.resource.release()
		e.resource = nil
	}
	for g := range e.active {
		g.requestStop()
	}
	e.gen = nil
	e.cfg.ModelDir = modelDir
	e.state = StateIdle
	e.lastErr = ""
	e.log.Info().Str("model_dir", modelDir).Msg("engine configured")
}

// SetGenerationOptions updates sampling temperature and the token budget.
func (e *Engine) SetGenerationOptions(temperature float64, maxTokens int) error {
	if maxTokens <= 0 {
		return ErrInvalidOptions("max tokens must be positive")
	}
	e.mu.Lock()
	e.cfg.Temperature = temperature
	e.cfg.MaxTokens = maxTokens
	e.mu.Unlock()
	return nil
}

// SetCancelOnNewRequest toggles the preemption policy for new generations.
func (e *Engine) SetCancelOnNewRequest(enabled bool) {
	e.mu.Lock()
	e.cfg.CancelOnNewRequest = enabled
	e.mu.Unlock()
}

// GenerationOptions returns the current temperature and token budget.
func (e *Engine) GenerationOptions() (temperature float64, maxTokens int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Temperature, e.cfg.MaxTokens
}

// CancelAll stops every running generation unconditionally and clears the
// tracked handle. Idempotent when nothing is in flight.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	for g := range e.active {
		g.requestStop()
	}
	e.gen = nil
	e.mu.Unlock()
}

// Snapshot returns a read-only view of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:            e.state,
		ModelDir:         e.cfg.ModelDir,
		LastError:        e.lastErr,
		GenerationActive: e.gen != nil,
	}
}

// Ready reports whether the model resource is loaded.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateLoaded
}

// Close releases the loaded resource, if any, after cancelling in-flight
// work. Load waiters are released with a cancelled outcome, the same way
// Configure releases them; a session still generating keeps the resource
// alive until it ends.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading != nil {
		e.loading.finish(nil, ErrCancelled())
		e.loading = nil
	}
	for g := range e.active {
		g.requestStop()
	}
	e.gen = nil
	e.state = StateIdle
	if e.resource != nil {
		err := e.resource.release()
		e.resource = nil
		return err
	}
	return nil
}
