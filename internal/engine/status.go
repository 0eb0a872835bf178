package engine

import (
	"time"

	"visiond/pkg/types"
)

// Status builds a detailed status response for GET /status. Pending-request
// accounting belongs to the correlator and is supplied by the caller.
func (e *Engine) Status(pendingRequests int) types.StatusResponse {
	snap := e.Snapshot()
	return types.StatusResponse{
		State:            string(snap.State),
		ModelDir:         snap.ModelDir,
		LastError:        snap.LastError,
		GenerationActive: snap.GenerationActive,
		PendingRequests:  pendingRequests,
		LoadsTotal:       e.loadsTotal.Load(),
		GenerationsTotal: e.gensTotal.Load(),
		TokensTotal:      e.tokensTotal.Load(),
		UptimeSeconds:    int64(time.Since(e.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
	}
}
