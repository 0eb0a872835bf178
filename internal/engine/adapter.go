package engine

import (
	"context"
	"image"
)

// CaptionAdapter abstracts the vision model runtime used by the Engine.
// Concrete implementations (e.g. llama.cpp) should satisfy this interface.
type CaptionAdapter interface {
	// Load initializes the model from modelDir. It may be slow; the Engine
	// guarantees at most one Load runs at a time.
	Load(ctx context.Context, modelDir string) (ModelResource, error)
}

// ModelResource is a loaded model, shared read-only across generations.
type ModelResource interface {
	// NewSession prepares one generation with the given parameters.
	NewSession(params CaptionParams) (CaptionSession, error)
	// Close releases the underlying model resources.
	Close() error
}

// CaptionSession produces tokens for a single generation.
type CaptionSession interface {
	// Generate invokes onToken once per produced token. Returning false from
	// onToken stops production at the next checkpoint; Generate then returns
	// nil. Implementations must also return when ctx is canceled.
	Generate(ctx context.Context, img image.Image, prompt string, onToken func(string) bool) error
	// Close releases any per-session resources.
	Close() error
}

// CaptionParams captures generation parameters handed to the adapter.
type CaptionParams struct {
	Temperature float64
	MaxTokens   int
	Seed        int64
}
