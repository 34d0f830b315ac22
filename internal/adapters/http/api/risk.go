package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/profile"
)

const defaultRiskLimit = 10

// RiskDependencies defines the interface for risk ranking operations.
type RiskDependencies interface {
	TopRisk(ctx context.Context, n int) ([]model.RiskEntry, error)
	RiskFactors(ctx context.Context) ([]profile.Factor, error)
}

// RiskHandler handles at-risk ranking requests.
type RiskHandler struct {
	deps     RiskDependencies
	maxLimit int
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps RiskDependencies, maxLimit int) *RiskHandler {
	return &RiskHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetRisk handles GET /risk?limit=N. A missing limit means ten.
func (h *RiskHandler) HandleGetRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_risk"
	n := defaultRiskLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if h.maxLimit > 0 && n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopRisk(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetFactors handles GET /risk/factors.
func (h *RiskHandler) HandleGetFactors(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_risk_factors"
	factors, err := h.deps.RiskFactors(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, factors)
}
