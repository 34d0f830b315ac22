package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pulse/internal/domain/types"
)

// ClusterDependencies defines the interface for clustering operations.
type ClusterDependencies interface {
	Cluster(ctx context.Context, req types.ClusterRequest) (types.ClusterReport, error)
}

// ClustersHandler handles clustering requests.
type ClustersHandler struct {
	deps ClusterDependencies
}

// NewClustersHandler creates a new clusters handler.
func NewClustersHandler(deps ClusterDependencies) *ClustersHandler {
	return &ClustersHandler{deps: deps}
}

// HandlePostCluster handles POST /clusters. An empty body uses every default.
func (h *ClustersHandler) HandlePostCluster(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_cluster"
	var req types.ClusterRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, op, err)
		return
	}
	report, err := h.deps.Cluster(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
