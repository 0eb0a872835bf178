package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 256
)

// Config encapsulates all tunables for Engine construction.
type Config struct {
	ModelDir           string
	Temperature        float64
	MaxTokens          int
	CancelOnNewRequest bool

	// Adapter backs loads and generations. Nil selects the build's default
	// adapter (native under the llama tag, fail-fast stub otherwise).
	Adapter CaptionAdapter
	// SeedSource supplies the sampling seed per generation. Nil selects
	// wall-clock nanoseconds, which makes output non-reproducible; tests
	// inject a fixed source.
	SeedSource func() int64
	Logger     zerolog.Logger
}

// NewWithConfig constructs an Engine from Config.
func NewWithConfig(cfg Config) *Engine {
	e := &Engine{
		cfg: runtimeConfig{
			ModelDir:           cfg.ModelDir,
			Temperature:        cfg.Temperature,
			MaxTokens:          cfg.MaxTokens,
			CancelOnNewRequest: cfg.CancelOnNewRequest,
		},
		state:     StateIdle,
		active:    make(map[*generation]struct{}),
		adapter:   cfg.Adapter,
		seed:      cfg.SeedSource,
		log:       cfg.Logger,
		startTime: time.Now(),
	}
	if e.cfg.Temperature <= 0 {
		e.cfg.Temperature = defaultTemperature
	}
	if e.cfg.MaxTokens <= 0 {
		e.cfg.MaxTokens = defaultMaxTokens
	}
	if e.adapter == nil {
		e.adapter = NewDefaultAdapter()
	}
	if e.seed == nil {
		e.seed = func() int64 { return time.Now().UnixNano() }
	}
	return e
}

// runtimeConfig is the mutable configuration read on each load/generation.
type runtimeConfig struct {
	ModelDir           string
	Temperature        float64
	MaxTokens          int
	CancelOnNewRequest bool
}
