// Package api assembles the thin HTTP/WebSocket control surface: a handful
// of read-only endpoints over the evaluation engine's latest snapshot, a
// Prometheus scrape endpoint, and a WebSocket upgrade for push subscribers.
// There is no order placement, account, or settings surface — every route
// here only reads already-computed state.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"arbitrage/internal/api/middleware"
	"arbitrage/internal/arbitrage"
	"arbitrage/internal/auth"
	"arbitrage/internal/publish"
	"arbitrage/internal/status"
)

// Dependencies are the components the router reads from; nothing here is
// owned by the router, it only wires HTTP verbs to existing state.
type Dependencies struct {
	Engine       *arbitrage.Engine
	Statuses     *status.Tracker
	Hub          *publish.Hub
	Log          *zap.SugaredLogger
	TokenHash    string // empty disables the control gate
	FilterConfig arbitrage.FilterConfig
}

// NewRouter builds the complete route tree with its middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	gate := auth.NewGate(deps.TokenHash)
	h := &handlers{deps: deps}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.CORS)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(gate.Middleware)
	api.HandleFunc("/opportunities", h.opportunities).Methods(http.MethodGet)
	api.HandleFunc("/status", h.status).Methods(http.MethodGet)
	api.HandleFunc("/filtering", h.filtering).Methods(http.MethodGet)

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		if !gate.Allow(req.Header.Get("Authorization")) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		publish.ServeWS(deps.Hub, w, req)
	})

	return r
}
