package engine

import "sync"

// LoadState is the lifecycle state of the model resource.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
)

// Snapshot is a read-only projection of the engine state.
type Snapshot struct {
	State            LoadState
	ModelDir         string
	LastError        string
	GenerationActive bool
}

// loadAttempt is one in-flight load. All callers that arrive while the state
// is Loading wait on the same attempt, so the underlying load runs at most once.
type loadAttempt struct {
	done chan struct{}
	res  ModelResource
	err  error
}

func newLoadAttempt() *loadAttempt {
	return &loadAttempt{done: make(chan struct{})}
}

// finish publishes the outcome to every waiter. Called exactly once.
func (a *loadAttempt) finish(res ModelResource, err error) {
	a.res = res
	a.err = err
	close(a.done)
}

// sharedResource refcounts the loaded model so a Configure or Close never
// frees it while a session is still inside it. The engine holds one reference
// for as long as the resource is installed; each generation holds another for
// the session's duration. The last holder out closes the model.
type sharedResource struct {
	mu   sync.Mutex
	res  ModelResource
	refs int
}

func newSharedResource(res ModelResource) *sharedResource {
	return &sharedResource{res: res, refs: 1}
}

// acquire takes a reference. Returns false once the resource is fully released.
func (s *sharedResource) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return false
	}
	s.refs++
	return true
}

// release drops one reference and closes the model when the count reaches zero.
func (s *sharedResource) release() error {
	s.mu.Lock()
	s.refs--
	last := s.refs == 0
	s.mu.Unlock()
	if last {
		return s.res.Close()
	}
	return nil
}

// generation is the cooperative cancellation handle for one generation.
type generation struct {
	stop chan struct{}
	once sync.Once
}

func newGeneration() *generation {
	return &generation{stop: make(chan struct{})}
}

// requestStop is safe to call from multiple cancellation triggers; only the
// first close wins.
func (g *generation) requestStop() {
	g.once.Do(func() { close(g.stop) })
}

func (g *generation) stopped() bool {
	select {
	case <-g.stop:
		return true
	default:
		return false
	}
}
