package engine

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"
)

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	mu         sync.Mutex
	loads      int
	loadErr    error
	loadGate   chan struct{} // if non-nil, Load blocks until closed
	tokens     []string
	endless    bool          // emit tokens forever until a checkpoint stops us
	genGate    chan struct{} // if non-nil, Generate blocks until closed
	sessions   int
	closes     int
	lastParams CaptionParams
}

func (f *fakeAdapter) Load(ctx context.Context, modelDir string) (ModelResource, error) {
	f.mu.Lock()
	f.loads++
	gate := f.loadGate
	err := f.loadErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &fakeResource{f: f}, nil
}

func (f *fakeAdapter) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeAdapter) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakeAdapter) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

type fakeResource struct{ f *fakeAdapter }

func (r *fakeResource) NewSession(params CaptionParams) (CaptionSession, error) {
	r.f.mu.Lock()
	r.f.lastParams = params
	r.f.sessions++
	r.f.mu.Unlock()
	return &fakeSession{f: r.f}, nil
}

func (r *fakeResource) Close() error {
	r.f.mu.Lock()
	r.f.closes++
	r.f.mu.Unlock()
	return nil
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Generate(ctx context.Context, img image.Image, prompt string, onToken func(string) bool) error {
	// Snapshot the behavior under the lock; tests mutate it between sessions.
	s.f.mu.Lock()
	endless := s.f.endless
	gate := s.f.genGate
	tokens := append([]string(nil), s.f.tokens...)
	s.f.mu.Unlock()
	if gate != nil {
		<-gate
		return nil
	}
	if endless {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if !onToken("tok ") {
				return nil
			}
			time.Sleep(time.Millisecond)
		}
	}
	for _, t := range tokens {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !onToken(t) {
			return nil
		}
	}
	return nil
}

func (s *fakeSession) Close() error { return nil }

// newTestEngine builds an engine over a temp model dir and the given adapter.
func newTestEngine(t *testing.T, f *fakeAdapter, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := Config{
		ModelDir:           t.TempDir(),
		MaxTokens:          64,
		CancelOnNewRequest: true,
		Adapter:            f,
		SeedSource:         func() int64 { return 1 },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewWithConfig(cfg)
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

// waitUntil polls cond for up to 2 seconds.
func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", msg)
}
