// Package site serves the landing page that links the dashboard and API docs.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/pulse/pkg/logger"
)

// ErrServe is reported when the landing page cannot be written.
var ErrServe = errors.New("landing page serve failed")

// Register attaches the landing page to mux. Only the exact root path is
// claimed so unknown paths still 404.
func Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", NewRootHandler(ctx))
}

// RootHandler serves the embedded index page.
type RootHandler struct {
	ctx context.Context
}

// NewRootHandler creates a new root handler.
func NewRootHandler(ctx context.Context) *RootHandler {
	return &RootHandler{ctx: ctx}
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(indexPage); err != nil {
		logger.Get().Debug(h.ctx, "landing page write failed",
			logger.Error(errors.Join(ErrServe, err)))
	}
}
