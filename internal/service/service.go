// Package service adapts the boundary surface to the daemon's HTTP handlers.
// Requests flow through the same host facade an embedded caller would use,
// transient-string contract included.
package service

import (
	"context"
	"errors"

	"visiond/internal/boundary"
	"visiond/internal/engine"
	"visiond/internal/registry"
	"visiond/pkg/types"
)

type Service struct {
	eng  *engine.Engine
	host *boundary.Host
}

func New(eng *engine.Engine, host *boundary.Host) *Service {
	return &Service{eng: eng, host: host}
}

// Describe submits the frame and waits for its completion. Validation
// failures return synchronously before any request id is consumed.
func (s *Service) Describe(ctx context.Context, req types.DescribeRequest) (types.DescribeResponse, error) {
	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	id, err := s.host.ProcessImage(
		req.Pixels, req.Width, req.Height, req.StrideBytes,
		types.PixelFormat(req.Format), req.FlipVertical, req.Prompt,
		func(_ int64, result, errMsg *boundary.TransientString) {
			defer boundary.FreeString(result)
			defer boundary.FreeString(errMsg)
			if errMsg != nil {
				done <- outcome{err: fromBoundaryError(errMsg.String())}
				return
			}
			done <- outcome{text: result.String()}
		},
	)
	if err != nil {
		return types.DescribeResponse{}, err
	}

	select {
	case o := <-done:
		if o.err != nil {
			return types.DescribeResponse{}, o.err
		}
		return types.DescribeResponse{RequestID: id, Result: o.text}, nil
	case <-ctx.Done():
		// The generation keeps running; its late delivery lands in the
		// buffered channel and is dropped with it.
		return types.DescribeResponse{}, ctx.Err()
	}
}

// Load ensures the model is loaded; idempotent once loaded.
func (s *Service) Load(ctx context.Context) error {
	_, err := s.eng.EnsureLoaded(ctx)
	return err
}

// Configure applies a partial runtime configuration update.
func (s *Service) Configure(req types.ConfigRequest) error {
	if req.ModelDir != nil {
		s.host.Configure(*req.ModelDir)
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		temp, max := s.eng.GenerationOptions()
		if req.Temperature != nil {
			temp = *req.Temperature
		}
		if req.MaxTokens != nil {
			max = *req.MaxTokens
		}
		if err := s.host.SetGenerationOptions(temp, max); err != nil {
			return err
		}
	}
	if req.CancelOnNewRequest != nil {
		s.host.SetCancelOnNewRequest(*req.CancelOnNewRequest)
	}
	return nil
}

// CancelAll resolves all pending requests as cancelled.
func (s *Service) CancelAll() {
	s.host.CancelAll()
}

func (s *Service) Status() types.StatusResponse {
	return s.eng.Status(s.host.PendingRequests())
}

func (s *Service) Ready() bool {
	return s.eng.Ready()
}

// fromBoundaryError rehydrates the error kinds that have well-known message
// texts (the cancellation sentinel and the registry preconditions, which the
// HTTP layer maps to 409 and 404); everything else stays opaque message text.
func fromBoundaryError(msg string) error {
	if msg == engine.CancelMessage {
		return engine.ErrCancelled()
	}
	if err, ok := registry.FromMessage(msg); ok {
		return err
	}
	return errors.New(msg)
}
