// Package handlers provides HTTP handlers for performance series queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/internal/modules/performance"
)

// Handler handles performance HTTP requests
type Handler struct {
	service *performance.Service
	log     zerolog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(service *performance.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

type seriesRequest struct {
	PortfolioID string            `json:"portfolio_id"`
	Positions   []domain.Position `json:"positions"`
	Period      string            `json:"period"`
}

// HandleComputeSeries handles POST /api/performance/series
func (h *Handler) HandleComputeSeries(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Period == "" {
		req.Period = "1y"
	}
	if req.PortfolioID == "" {
		req.PortfolioID = "default"
	}

	series, err := h.service.ComputePerformanceSeries(req.PortfolioID, req.Positions, req.Period)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientData):
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "insufficient data",
			})
		case errors.Is(err, performance.ErrStaleGeneration):
			h.writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error": "superseded by a newer query",
			})
		default:
			h.log.Error().Err(err).Msg("Failed to compute performance series")
			http.Error(w, "Failed to compute performance series", http.StatusInternalServerError)
		}
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"series": series,
			"period": req.Period,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"positions": len(req.Positions),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
