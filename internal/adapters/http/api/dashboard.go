package api

import (
	"net/http"
)

// dashboardHandler serves the embedded dashboard page. The page only
// fetches JSON from /stats, /risk and /clusters.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, staticFS, dashboardPage)
}
