package engine

import (
	"context"

	"visiond/internal/registry"
)

// EnsureLoaded returns the loaded model resource, loading it first if needed.
// Single-flight: concurrent callers that arrive while a load is in progress
// await the existing attempt and observe its outcome; the underlying load
// executes at most once. A failed load resets the state to Idle so a later
// call can retry.
func (e *Engine) EnsureLoaded(ctx context.Context) (ModelResource, error) {
	e.mu.Lock()
	switch e.state {
	case StateLoaded:
		res := e.resource.res
		e.mu.Unlock()
		return res, nil
	case StateLoading:
		att := e.loading
		e.mu.Unlock()
		return att.wait(ctx)
	}

	// Idle. Validate the location before any load attempt is started.
	dir, err := registry.Resolve(e.cfg.ModelDir)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	att := newLoadAttempt()
	e.state = StateLoading
	e.loading = att
	adapter := e.adapter
	e.mu.Unlock()

	e.log.Info().Str("model_dir", dir).Msg("model load started")
	go e.runLoad(att, adapter, dir)
	return att.wait(ctx)
}

// runLoad performs the adapter load off the engine lock and commits the
// resulting state transition, unless a Configure detached the attempt in
// the meantime, in which case the outcome is discarded.
func (e *Engine) runLoad(att *loadAttempt, adapter CaptionAdapter, dir string) {
	res, err := adapter.Load(context.Background(), dir)

	e.mu.Lock()
	if e.loading != att {
		// Superseded by Configure. Waiters were already released; the work
		// was not stopped, so close the late resource and drop the outcome.
		e.mu.Unlock()
		if res != nil {
			_ = res.Close()
		}
		return
	}
	e.loading = nil
	if err != nil {
		e.state = StateIdle
		e.lastErr = err.Error()
	} else {
		e.state = StateLoaded
		e.resource = newSharedResource(res)
		e.lastErr = ""
		e.loadsTotal.Add(1)
	}
	e.mu.Unlock()

	if err != nil {
		e.log.Error().Err(err).Str("model_dir", dir).Msg("model load failed")
	} else {
		e.log.Info().Str("model_dir", dir).Msg("model load complete")
	}
	att.finish(res, err)
}

// wait blocks until the attempt completes or ctx is done. A caller that
// stops waiting does not stop the load; other waiters still see its outcome.
func (a *loadAttempt) wait(ctx context.Context) (ModelResource, error) {
	select {
	case <-a.done:
		return a.res, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
