// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StudentDependencies
	ClusterDependencies
	RiskDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	studentsHandler  *StudentsHandler
	clustersHandler  *ClustersHandler
	riskHandler      *RiskHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxRiskLimit caps
// GET /risk?limit.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRiskLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		studentsHandler:  NewStudentsHandler(deps),
		clustersHandler:  NewClustersHandler(deps),
		riskHandler:      NewRiskHandler(deps, maxRiskLimit),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	log := logger.Named("http")
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz", log))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats", log))
	mux.HandleFunc("POST /students", MetricsMiddleware(s.studentsHandler.HandlePostStudents, "students", log))
	mux.HandleFunc("GET /students/{id}", MetricsMiddleware(s.studentsHandler.HandleGetStudent, "student", log))
	mux.HandleFunc("GET /students/{id}/coordinates", MetricsMiddleware(s.studentsHandler.HandleGetCoordinates, "coordinates", log))
	mux.HandleFunc("POST /clusters", MetricsMiddleware(s.clustersHandler.HandlePostCluster, "clusters", log))
	mux.HandleFunc("GET /risk", MetricsMiddleware(s.riskHandler.HandleGetRisk, "risk", log))
	mux.HandleFunc("GET /risk/factors", MetricsMiddleware(s.riskHandler.HandleGetFactors, "risk_factors", log))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates upstream error kinds to a status code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, types.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
