//go:build !llama

package engine

// This file provides a no-CGO stub for the caption adapter. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds and CI
// CGO-free. The real adapter lives in adapter_llama.go (tagged 'llama').

import (
	"context"
	"image"
)

// captionAdapter refuses to run without the native runtime. This avoids any
// mocked inference in production binaries built without CGO support.
type captionAdapter struct{}

func NewDefaultAdapter() CaptionAdapter { return captionAdapter{} }

func (captionAdapter) Load(ctx context.Context, modelDir string) (ModelResource, error) {
	return nil, ErrDependencyUnavailable("caption runtime not built (missing 'llama' build tag)")
}

// captionSession exists only to keep the stub's type set parallel to the
// native adapter; Load fails first, so it is never reached.
type captionSession struct{}

func (captionSession) Generate(ctx context.Context, img image.Image, prompt string, onToken func(string) bool) error {
	return ErrDependencyUnavailable("caption runtime not built (missing 'llama' build tag)")
}

func (captionSession) Close() error { return nil }
