// Package server exposes daemon health and progress over HTTP and gRPC.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jobmate/ats-ingest/internal/scraper"
)

const service = "ats-ingest"

// Version is reported by /health.
var Version = "1.0.0"

// Progress is what /status reports on.
type Progress interface {
	Last() (scraper.Summary, bool)
}

// Checkpoint reports whether an interrupted run is pending.
type Checkpoint interface {
	Exists() bool
}

type statusResponse struct {
	Service       string           `json:"service"`
	Checkpointed  bool             `json:"checkpointed"`
	LastRun       *scraper.Summary `json:"lastRun,omitempty"`
	LastRunAgeSec *int64           `json:"lastRunAgeSec,omitempty"`
}

// Router returns the HTTP handler of daemon mode.
func Router(progress Progress, ckpt Checkpoint) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": service,
			"version": Version,
		})
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		resp := statusResponse{Service: service, Checkpointed: ckpt.Exists()}
		if sum, ok := progress.Last(); ok {
			resp.LastRun = &sum
			age := int64(time.Since(sum.StartedAt).Seconds())
			resp.LastRunAgeSec = &age
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
