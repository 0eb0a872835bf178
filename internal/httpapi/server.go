package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visiond/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Describe(ctx context.Context, req types.DescribeRequest) (types.DescribeResponse, error)
	Load(ctx context.Context) error
	Configure(req types.ConfigRequest) error
	CancelAll()
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Describe godoc
	// @Summary      Describe an image
	// @Description  Submits a raw pixel buffer plus prompt and waits for the generated description.
	// @Accept       json
	// @Produce      json
	// @Param        request body types.DescribeRequest true "frame and prompt"
	// @Success      200 {object} types.DescribeResponse
	// @Failure      400 {object} types.ErrorResponse
	// @Failure      404 {object} types.ErrorResponse
	// @Failure      409 {object} types.ErrorResponse
	// @Router       /describe [post]
	r.Post("/describe", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.DescribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		start := time.Now()
		logRequestStart(r, "describe start")
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		resp, err := svc.Describe(joinedCtx, req)
		if err != nil {
			// If context was canceled (client disconnect or shutdown), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			IncrementDescribeFailure(failureReason(err))
			writeJSONError(w, status, err.Error())
			logRequestEnd(r, "describe end", status, start, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		logRequestEnd(r, "describe end", http.StatusOK, start, nil)
	})

	// Load godoc
	// @Summary  Load the model (idempotent, single-flight)
	// @Produce  json
	// @Success  200 {object} map[string]string
	// @Failure  404 {object} types.ErrorResponse
	// @Router   /load [post]
	r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Load(joinedCtx); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			logRequestEnd(r, "load end", status, start, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "loaded"})
		logRequestEnd(r, "load end", http.StatusOK, start, nil)
	})

	// Configure godoc
	// @Summary  Update runtime configuration
	// @Accept   json
	// @Produce  json
	// @Param    request body types.ConfigRequest true "partial configuration"
	// @Success  204
	// @Failure  400 {object} types.ErrorResponse
	// @Router   /config [post]
	r.Post("/config", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := svc.Configure(req); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Cancel godoc
	// @Summary  Cancel all pending requests and the tracked generation
	// @Success  204
	// @Router   /cancel [post]
	r.Post("/cancel", func(w http.ResponseWriter, r *http.Request) {
		svc.CancelAll()
		w.WriteHeader(http.StatusNoContent)
	})

	// Status godoc
	// @Summary  Engine status
	// @Produce  json
	// @Success  200 {object} types.StatusResponse
	// @Router   /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}
