package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk metrics routes. The path is explicit
// because the /risk prefix is shared with the stress module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/risk/metrics", h.HandleComputeMetrics)
}
