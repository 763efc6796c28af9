package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/overschie/brugstatus/internal/bridge"
	"github.com/overschie/brugstatus/internal/config"
	"github.com/overschie/brugstatus/internal/monitoring"
	"github.com/overschie/brugstatus/internal/portal"
)

// newServeHandler builds the serve-mode router. Every GET /status runs one
// independent fetch-and-interpret cycle; there is no cache and no poller.
func newServeHandler(cfg *config.Config, metrics *monitoring.Metrics) http.Handler {
	client := portal.NewClient(portalConfig(cfg))
	checker := bridge.NewChecker(client)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		lookupID := uuid.NewString()
		log := zap.L().With(zap.String("lookup_id", lookupID))

		start := time.Now()
		status, err := checker.Status(req.Context())
		elapsed := time.Since(start)

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			metrics.ObserveLookup(monitoring.OutcomeError, elapsed)
			reason := err.Error()
			var lookupErr *bridge.LookupError
			if errors.As(err, &lookupErr) {
				reason = lookupErr.Reason
			}
			log.Warn("lookup failed", zap.String("reason", reason), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
			return
		}

		metrics.ObserveLookup(lookupOutcome(status), elapsed)
		log.Info("lookup complete",
			zap.String("label", status.IsOpen.Label()),
			zap.Duration("elapsed", elapsed),
		)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

func lookupOutcome(status *bridge.Status) string {
	switch status.IsOpen {
	case bridge.StateOpen:
		return monitoring.OutcomeOpen
	case bridge.StateClosed:
		return monitoring.OutcomeClosed
	default:
		return monitoring.OutcomeUnknown
	}
}
