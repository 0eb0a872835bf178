// Package boundary is the primitive-value facade a host runtime drives: it
// validates raw inputs, converts them into domain objects, correlates
// submissions with callbacks, and owns the transient-string contract.
// Marshaling stays here; orchestration stays in the engine.
package boundary

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"visiond/internal/correlator"
	"visiond/internal/engine"
	"visiond/internal/pixels"
	"visiond/pkg/types"
)

// LoadCallback reports load completion. errMsg is nil on success; the
// receiver owns errMsg and must free it exactly once.
type LoadCallback func(errMsg *TransientString)

// ResultCallback delivers the outcome of one ProcessImage submission under
// its original request id. Exactly one of result/errMsg is non-nil; the
// receiver owns both and must free each non-nil string exactly once.
type ResultCallback func(requestID int64, result, errMsg *TransientString)

// Host binds the engine and the request correlator behind the boundary
// surface. Construct once at process start and tear down with Close.
type Host struct {
	eng *engine.Engine
	cor *correlator.Correlator
	log zerolog.Logger
}

func NewHost(eng *engine.Engine, logger zerolog.Logger) *Host {
	return &Host{
		eng: eng,
		cor: correlator.New(correlator.Options{Cancel: eng.CancelAll, Logger: logger}),
		log: logger,
	}
}

// Configure sets the model location; empty selects the default directory.
func (h *Host) Configure(locationOrEmpty string) {
	h.eng.Configure(locationOrEmpty)
}

// SetGenerationOptions updates temperature and the token budget.
func (h *Host) SetGenerationOptions(temperature float64, maxTokens int) error {
	return h.eng.SetGenerationOptions(temperature, maxTokens)
}

// SetCancelOnNewRequest toggles the preemption policy.
func (h *Host) SetCancelOnNewRequest(enabled bool) {
	h.eng.SetCancelOnNewRequest(enabled)
}

// LoadModel starts (or joins) the model load and reports the outcome through
// onDone. Idempotent once loaded.
func (h *Host) LoadModel(onDone LoadCallback) {
	go func() {
		_, err := h.eng.EnsureLoaded(context.Background())
		if onDone == nil {
			return
		}
		if err != nil {
			onDone(NewTransientString(err.Error()))
			return
		}
		onDone(nil)
	}()
}

// ProcessImage validates the frame synchronously, then registers a request
// id and schedules the generation. Validation failures are returned directly
// and never consume an id or schedule background work. The returned id is
// strictly increasing and never reused.
func (h *Host) ProcessImage(buf []byte, width, height, strideBytes int, format types.PixelFormat, flipVertical bool, prompt string, onDone ResultCallback) (int64, error) {
	img, err := pixels.ToImage(buf, width, height, strideBytes, format, flipVertical)
	if err != nil {
		return 0, err
	}
	id := h.cor.Submit(callbackSink{onDone: onDone}, func(id int64) {
		go h.runGeneration(id, img, prompt)
	})
	return id, nil
}

func (h *Host) runGeneration(id int64, img image.Image, prompt string) {
	out, err := h.eng.Generate(context.Background(), img, prompt)
	if err != nil {
		h.cor.Deliver(id, nil, err.Error())
		return
	}
	h.cor.Deliver(id, &out, "")
}

// CancelAll resolves every pending request as cancelled and stops the
// tracked generation.
func (h *Host) CancelAll() {
	h.cor.CancelAll()
}

// PendingRequests returns the number of submissions awaiting delivery.
func (h *Host) PendingRequests() int {
	return h.cor.Pending()
}

// Close cancels outstanding work and releases the engine's resources.
func (h *Host) Close() error {
	h.cor.CancelAll()
	return h.eng.Close()
}

// callbackSink adapts a ResultCallback to the correlator's sink interface,
// allocating the transient strings the receiver must free.
type callbackSink struct {
	onDone ResultCallback
}

func (s callbackSink) Resolve(id int64, result string) {
	if s.onDone != nil {
		s.onDone(id, NewTransientString(result), nil)
	}
}

func (s callbackSink) Reject(id int64, err error) {
	if s.onDone != nil {
		s.onDone(id, nil, NewTransientString(err.Error()))
	}
}
