// Package handlers provides HTTP handlers for correlation and stress
// testing operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/internal/modules/stress"
)

// Handler handles stress testing HTTP requests
type Handler struct {
	engine *stress.Engine
	log    zerolog.Logger
}

// NewHandler creates a new stress testing handler
func NewHandler(engine *stress.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "stress").Logger(),
	}
}

type correlationRequest struct {
	ReturnsByAsset map[string][]float64 `json:"returns_by_asset"`
}

// HandleComputeCorrelation handles POST /api/risk/correlation
func (h *Handler) HandleComputeCorrelation(w http.ResponseWriter, r *http.Request) {
	var req correlationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	matrix, err := stress.ComputeCorrelationMatrix(req.ReturnsByAsset)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "insufficient data",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute correlation matrix")
		http.Error(w, "Failed to compute correlation matrix", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": matrix,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type stressRequest struct {
	Weights         []float64                `json:"weights"`
	Volatilities    []float64                `json:"volatilities"`
	ExpectedReturns []float64                `json:"expected_returns"`
	Correlation     domain.CorrelationMatrix `json:"correlation"`
	NumSimulations  int                      `json:"n_simulations"`
}

// HandleRunStress handles POST /api/risk/stress
func (h *Handler) HandleRunStress(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.engine.RunStressTest(stress.StressInput{
		Weights:         req.Weights,
		Volatilities:    req.Volatilities,
		ExpectedReturns: req.ExpectedReturns,
		Correlation:     req.Correlation,
		NumSimulations:  req.NumSimulations,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "insufficient data",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to run stress test")
		http.Error(w, "Failed to run stress test", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListScenarios handles GET /api/risk/stress/scenarios
func (h *Handler) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	portfolioValue := 0.0
	if raw := r.URL.Query().Get("portfolio_value"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid portfolio_value", http.StatusBadRequest)
			return
		}
		portfolioValue = parsed
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": stress.Scenarios(portfolioValue),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
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
