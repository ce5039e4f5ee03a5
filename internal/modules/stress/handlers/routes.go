package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all correlation and stress testing routes.
// Paths are explicit because the /risk prefix is shared with the risk
// metrics module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/risk/correlation", h.HandleComputeCorrelation)
	r.Post("/risk/stress", h.HandleRunStress)
	r.Get("/risk/stress/scenarios", h.HandleListScenarios)
}
