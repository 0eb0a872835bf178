//go:build llama

package engine

import (
	"context"
	"errors"
	"image"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"visiond/internal/registry"
)

const (
	llamaCtxSize = 2048
	llamaThreads = 4
)

type llamaAdapter struct{}

func NewDefaultAdapter() CaptionAdapter { return llamaAdapter{} }

// llamaResource owns the loaded model. Close is guarded so a late Configure
// racing a finished load cannot double-free.
type llamaResource struct {
	mu     sync.Mutex
	model  *llama.LLama
	closed bool
}

func (a llamaAdapter) Load(ctx context.Context, modelDir string) (ModelResource, error) {
	weights, err := registry.Weights(modelDir)
	if err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, registry.ErrResourcesMissing(modelDir)
	}
	m, err := llama.New(weights[0], llama.SetContext(llamaCtxSize))
	if err != nil {
		return nil, err
	}
	return &llamaResource{model: m}, nil
}

func (r *llamaResource) NewSession(params CaptionParams) (CaptionSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("model resource is closed")
	}
	return &llamaSession{res: r, params: params}, nil
}

func (r *llamaResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.model.Free()
		r.closed = true
	}
	return nil
}

type llamaSession struct {
	res    *llamaResource
	params CaptionParams
}

// Generate drives the language-model half of the captioning pipeline. The
// go-skynet binding exposes text-only inference, so only the prompt reaches
// the model here.
// TODO: route image embeddings once the binding exposes llava-style media input.
func (s *llamaSession) Generate(ctx context.Context, img image.Image, prompt string, onToken func(string) bool) error {
	s.res.mu.Lock()
	if s.res.closed {
		s.res.mu.Unlock()
		return errors.New("model resource is closed")
	}
	model := s.res.model
	s.res.mu.Unlock()

	model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		return onToken(tok)
	})
	po := []llama.PredictOption{
		llama.SetTokens(s.params.MaxTokens),
		llama.SetThreads(llamaThreads),
		llama.SetTemperature(float32(s.params.Temperature)),
	}
	if s.params.Seed != 0 {
		po = append(po, llama.SetSeed(int(s.params.Seed)))
	}
	if _, err := model.Predict(prompt, po...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *llamaSession) Close() error { return nil }
