package engine

import (
	"context"
	"image"
	"strings"
)

// Generate produces a description for img guided by prompt.
//
// Policy: when CancelOnNewRequest is set, the tracked generation is cancelled
// and this one takes the slot. Token production observes cancellation and the
// token budget at each per-token checkpoint; hitting the budget is terminal
// but not an error and yields the output accumulated so far. Cancellation by
// a superseding request, CancelAll or Configure yields ErrCancelled with no
// partial output.
func (e *Engine) Generate(ctx context.Context, img image.Image, prompt string) (string, error) {
	e.mu.Lock()
	if e.cfg.CancelOnNewRequest && e.gen != nil {
		e.gen.requestStop()
		e.gen = nil
	}
	e.mu.Unlock()

	if _, err := e.EnsureLoaded(ctx); err != nil {
		return "", err
	}

	e.mu.Lock()
	shared := e.resource
	if shared == nil || !shared.acquire() {
		// A Configure retired the resource between the load and here.
		e.mu.Unlock()
		return "", ErrCancelled()
	}
	g := newGeneration()
	e.active[g] = struct{}{}
	tracked := e.gen == nil
	if tracked {
		// With the policy off an older occupant keeps the slot and this
		// generation runs untracked.
		e.gen = g
	}
	params := CaptionParams{
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
		Seed:        e.seed(),
	}
	e.mu.Unlock()
	e.gensTotal.Add(1)

	out, err := e.runGeneration(ctx, shared.res, g, img, prompt, params)

	// Clear the slot only if it still refers to this generation; a handle
	// already replaced by a newer request must not be cleared.
	e.mu.Lock()
	delete(e.active, g)
	if tracked && e.gen == g {
		e.gen = nil
	}
	e.mu.Unlock()
	_ = shared.release()
	return out, err
}

func (e *Engine) runGeneration(ctx context.Context, res ModelResource, g *generation, img image.Image, prompt string, params CaptionParams) (string, error) {
	sess, err := res.NewSession(params)
	if err != nil {
		return "", err
	}
	defer func() { _ = sess.Close() }()

	var b strings.Builder
	produced := 0
	onToken := func(tok string) bool {
		// Checkpoint: stop on cancellation or an exhausted budget. Both are
		// terminal, not errors.
		if g.stopped() || ctx.Err() != nil {
			return false
		}
		if produced >= params.MaxTokens {
			return false
		}
		b.WriteString(tok)
		produced++
		e.tokensTotal.Add(1)
		return produced < params.MaxTokens
	}

	err = sess.Generate(ctx, img, prompt, onToken)
	switch {
	case g.stopped():
		e.log.Debug().Int("tokens", produced).Msg("generation cancelled")
		return "", ErrCancelled()
	case ctx.Err() != nil:
		return "", ErrCancelled()
	case err != nil:
		return "", err
	}
	e.log.Debug().Int("tokens", produced).Msg("generation complete")
	return b.String(), nil
}
