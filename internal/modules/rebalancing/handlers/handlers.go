// Package handlers provides HTTP handlers for rebalancing advice.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/internal/modules/rebalancing"
)

// Handler handles rebalancing HTTP requests
type Handler struct {
	advisor *rebalancing.Advisor
	log     zerolog.Logger
}

// NewHandler creates a new rebalancing handler
func NewHandler(advisor *rebalancing.Advisor, log zerolog.Logger) *Handler {
	return &Handler{
		advisor: advisor,
		log:     log.With().Str("handler", "rebalancing").Logger(),
	}
}

type recommendationsRequest struct {
	CurrentWeights map[string]float64          `json:"current_weights"`
	TargetWeights  map[string]float64          `json:"target_weights"`
	Constraints    domain.RebalanceConstraints `json:"constraints"`
}

// HandleGenerateRecommendations handles POST /api/rebalancing/recommendations
func (h *Handler) HandleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recommendations, err := h.advisor.GenerateRecommendations(req.CurrentWeights, req.TargetWeights, req.Constraints)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "insufficient data",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to generate recommendations")
		http.Error(w, "Failed to generate recommendations", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": recommendations,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(recommendations),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
