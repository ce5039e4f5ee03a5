// Package handlers provides HTTP handlers for risk metrics operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/internal/modules/risk"
)

// Handler handles risk metrics HTTP requests
type Handler struct {
	service *risk.Service
	log     zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(service *risk.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

type metricsRequest struct {
	// Periodic simple returns, or alternatively a cumulative series to
	// derive them from. Returns take precedence when both are present.
	Returns      []float64           `json:"returns"`
	Series       domain.ReturnSeries `json:"series"`
	RiskFreeRate *float64            `json:"risk_free_rate"`
}

// HandleComputeMetrics handles POST /api/risk/metrics
func (h *Handler) HandleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	returns := req.Returns
	if len(returns) == 0 && len(req.Series) > 0 {
		returns = risk.ReturnsFromSeries(req.Series)
	}

	snapshot, err := h.service.ComputeRiskMetrics(returns, req.RiskFreeRate)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "insufficient data",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute risk metrics")
		http.Error(w, "Failed to compute risk metrics", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": snapshot,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"periods":   len(returns),
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
