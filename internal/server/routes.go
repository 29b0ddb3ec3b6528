package server

import (
	"encoding/json"
	"net/http"

	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/relay"
	"github.com/spacesedan/sentilens/internal/web"
)

type ReadinessProbe interface {
	Healthy() bool
}

func registerRoutes(mux *http.ServeMux, rl *relay.Relay, page *web.Page, ready ReadinessProbe) {
	mux.HandleFunc("POST /api/predict", rl.HandlePredict)

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(ready))

	mux.HandleFunc("GET /{$}", page.HandleIndex)
	mux.HandleFunc("POST /{$}", page.HandleSubmit)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  models.STATUS_HEALTHY,
		Message: "Relay is ready to forward sentiment requests",
	})
}

// readyHandler reports whether the upstream answered its last health probe.
func readyHandler(probe ReadinessProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !probe.Healthy() {
			writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
				Status:  models.STATUS_NOT_READY,
				Message: "upstream sentiment service is not reachable",
			})
			return
		}
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: models.STATUS_READY})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
