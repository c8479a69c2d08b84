package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sdko-org/lawchat-api/internal/ratelimit"
)

// RegisterRoutes wires the HTTP surface. Only /ask is rate limited;
// health checks and the derived stats view are not.
func RegisterRoutes(r *mux.Router, h *Handler, limiter *ratelimit.Limiter) {
	limited := RateLimitMiddleware(limiter)

	r.Handle("/ask", limited(http.HandlerFunc(h.HandleAsk))).Methods("POST")
	r.HandleFunc("/health", h.HandleHealth).Methods("GET")
	r.HandleFunc("/stats/daily", h.HandleDailyStats).Methods("GET")
}
