package api

import (
	"net/http"

	"arbitrage/internal/models"
)

type handlers struct {
	deps Dependencies
}

// health reports process liveness; it never depends on exchange
// connectivity, so a load balancer doesn't pull the instance just because
// every venue is temporarily down.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type opportunitiesResponse struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Count         int                  `json:"count"`
	TimestampMs   int64                `json:"timestamp_ms"`
}

// opportunities returns the most recent ranked snapshot computed by the
// evaluation engine.
func (h *handlers) opportunities(w http.ResponseWriter, r *http.Request) {
	opps := h.deps.Engine.GetLatest()
	writeJSON(w, http.StatusOK, opportunitiesResponse{
		Opportunities: opps,
		Count:         len(opps),
		TimestampMs:   models.NowMs(),
	})
}

// status returns the current connectivity and freshness of every tracked
// exchange.
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Statuses.Snapshot())
}

// filtering exposes the identity-filter thresholds currently in effect, so
// a reader can interpret why two quotes for the same asset were (or
// weren't) split into distinct opportunity groups.
func (h *handlers) filtering(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.FilterConfig)
}
