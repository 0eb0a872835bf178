// Package correlator maps opaque request identifiers to pending completions
// and resolves each exactly once when a result crosses back over the boundary.
package correlator

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"visiond/internal/engine"
)

// Sink receives the outcome of one submitted request. The correlator
// guarantees exactly one call, to exactly one of the two methods.
type Sink interface {
	Resolve(id int64, result string)
	Reject(id int64, err error)
}

// Dispatch issues the underlying boundary call for a freshly registered
// request id.
type Dispatch func(id int64)

// Options configures a Correlator.
type Options struct {
	// Cancel is the underlying cancellation signal issued after CancelAll
	// has drained the table (typically Engine.CancelAll).
	Cancel func()
	Logger zerolog.Logger
}

// Correlator assigns monotonically increasing request ids and tracks the
// completion sink registered for each until delivery.
type Correlator struct {
	mu      sync.Mutex
	nextID  int64
	pending map[int64]Sink
	cancel  func()
	log     zerolog.Logger
}

func New(opts Options) *Correlator {
	return &Correlator{
		pending: make(map[int64]Sink),
		cancel:  opts.Cancel,
		log:     opts.Logger,
	}
}

// Submit allocates the next identifier (strictly increasing, never zero,
// never reused within the process lifetime), registers sink for it, then
// issues the boundary call carrying the id. Registration precedes dispatch
// so even a synchronous completion finds its entry.
func (c *Correlator) Submit(sink Sink, dispatch Dispatch) int64 {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.pending[id] = sink
	c.mu.Unlock()

	if dispatch != nil {
		dispatch(id)
	}
	return id
}

// Deliver looks up and removes the sink for id and resolves it. A missing id
// (already delivered, cancelled, or unknown) is a no-op: late or duplicate
// boundary callbacks must not crash or resurrect a completed request.
// A present-but-empty result resolves to the empty value, not an error.
func (c *Correlator) Deliver(id int64, result *string, errMsg string) {
	c.mu.Lock()
	sink, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		c.log.Debug().Int64("request_id", id).Msg("dropped delivery for unknown request id")
		return
	}
	if errMsg != "" {
		sink.Reject(id, errors.New(errMsg))
		return
	}
	if result != nil {
		sink.Resolve(id, *result)
		return
	}
	// Neither side set: resolve the completion anyway so no request is left
	// dangling, but flag the producer bug.
	c.log.Error().Int64("request_id", id).Msg("delivery carried neither result nor error")
	sink.Reject(id, errors.New("no result delivered"))
}

// CancelAll removes every entry and resolves each as cancelled, then issues
// the underlying cancellation signal. Snapshot and clear happen in a single
// critical section so no new registration can race into the gap.
func (c *Correlator) CancelAll() {
	c.mu.Lock()
	snapshot := c.pending
	c.pending = make(map[int64]Sink)
	c.mu.Unlock()

	for id, sink := range snapshot {
		sink.Reject(id, engine.ErrCancelled())
	}
	if len(snapshot) > 0 {
		c.log.Info().Int("cancelled", len(snapshot)).Msg("pending requests cancelled")
	}
	if c.cancel != nil {
		c.cancel()
	}
}

// Pending returns the number of requests awaiting delivery.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
