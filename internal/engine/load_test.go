package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"visiond/internal/registry"
)

func TestConfigureAlwaysResetsToIdle(t *testing.T) {
	f := &fakeAdapter{}
	e := newTestEngine(t, f, nil)

	dirs := []string{t.TempDir(), "", t.TempDir()}
	for _, d := range dirs {
		e.Configure(d)
		if got := e.Snapshot().State; got != StateIdle {
			t.Fatalf("expected idle after configure, got %s", got)
		}
	}
}

func TestEnsureLoadedCachesResource(t *testing.T) {
	f := &fakeAdapter{}
	e := newTestEngine(t, f, nil)

	r1, err := e.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	r2, err := e.EnsureLoaded(context.Background())
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("expected the cached resource on the second call")
	}
	if f.loadCount() != 1 {
		t.Fatalf("expected exactly one load, got %d", f.loadCount())
	}
	if !e.Ready() {
		t.Fatalf("expected ready after load")
	}
}

func TestEnsureLoadedSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeAdapter{loadGate: gate}
	e := newTestEngine(t, f, nil)

	const callers = 4
	var wg sync.WaitGroup
	results := make([]ModelResource, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.EnsureLoaded(context.Background())
		}(i)
	}
	waitUntil(t, func() bool { return e.Snapshot().State == StateLoading }, "loading state")
	close(gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d observed a different resource", i)
		}
	}
	if f.loadCount() != 1 {
		t.Fatalf("expected the underlying load to run once, got %d", f.loadCount())
	}
}

func TestEnsureLoadedFailureIsRetryable(t *testing.T) {
	f := &fakeAdapter{loadErr: errors.New("weights corrupt")}
	e := newTestEngine(t, f, nil)

	if _, err := e.EnsureLoaded(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if got := e.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle after failure, got %s", got)
	}
	if e.Snapshot().LastError == "" {
		t.Fatalf("expected last error recorded")
	}

	f.mu.Lock()
	f.loadErr = nil
	f.mu.Unlock()
	if _, err := e.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if f.loadCount() != 2 {
		t.Fatalf("expected two load attempts, got %d", f.loadCount())
	}
}

func TestMissingLocationFailsBeforeLoad(t *testing.T) {
	f := &fakeAdapter{}
	e := newTestEngine(t, f, func(c *Config) { c.ModelDir = "/definitely/not/here" })

	_, err := e.EnsureLoaded(context.Background())
	if err == nil || !registry.IsResourcesMissing(err) {
		t.Fatalf("expected resources-missing error, got %v", err)
	}
	if f.loadCount() != 0 {
		t.Fatalf("expected no load attempt, got %d", f.loadCount())
	}
	if got := e.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestConfigureCancelsInFlightLoad(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeAdapter{loadGate: gate}
	e := newTestEngine(t, f, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := e.EnsureLoaded(context.Background())
		errCh <- err
	}()
	waitUntil(t, func() bool { return e.Snapshot().State == StateLoading }, "loading state")

	e.Configure(t.TempDir())
	if err := <-errCh; !IsCancelled(err) {
		t.Fatalf("expected cancelled waiter, got %v", err)
	}
	if got := e.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle after configure, got %s", got)
	}

	// The underlying work was not stopped; its late resource must be closed
	// unobserved, not installed.
	close(gate)
	waitUntil(t, func() bool { return f.closeCount() == 1 }, "late resource close")
	if e.Snapshot().State != StateIdle {
		t.Fatalf("late load outcome must not change state")
	}
}

func TestCloseReleasesLoadWaiters(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeAdapter{loadGate: gate}
	e := newTestEngine(t, f, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := e.EnsureLoaded(context.Background())
		errCh <- err
	}()
	waitUntil(t, func() bool { return e.Snapshot().State == StateLoading }, "loading state")

	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-errCh:
		if !IsCancelled(err) {
			t.Fatalf("expected cancelled waiter, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter still blocked after close")
	}

	// The underlying load keeps running; its late resource is closed, not kept.
	close(gate)
	waitUntil(t, func() bool { return f.closeCount() == 1 }, "late resource close")
}

func TestCloseReleasesResource(t *testing.T) {
	f := &fakeAdapter{}
	e := newTestEngine(t, f, nil)
	if _, err := e.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.closeCount() != 1 {
		t.Fatalf("expected resource closed once, got %d", f.closeCount())
	}
}
