// Package ops provides machine-to-machine maintenance endpoints, guarded by
// a Bearer API key rather than a session.
package ops

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/apicors"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles maintenance API requests.
type Handler struct {
	coord  *consistency.Coordinator
	logger *zap.Logger
}

// NewHandler creates an ops handler.
func NewHandler(coord *consistency.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{coord: coord, logger: logger}
}

// Routes returns the ops router.
//
// When mounted at /api/ops:
//   - POST /api/ops/sweep-expired   - run the expired article sweep now
//   - POST /api/ops/rebuild-counts  - rebuild all section article counts now
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))
	r.Post("/sweep-expired", h.SweepExpired)
	r.Post("/rebuild-counts", h.RebuildCounts)
	return r
}

// SweepExpired handles POST /sweep-expired.
func (h *Handler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	removed, err := h.coord.SweepExpired(r.Context())
	if err != nil {
		jsonutil.Err(w, err)
		return
	}
	jsonutil.OK(w, map[string]int64{"removed": removed})
}

// RebuildCounts handles POST /rebuild-counts.
func (h *Handler) RebuildCounts(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.RebuildAllCounts(r.Context()); err != nil {
		jsonutil.Err(w, err)
		return
	}
	jsonutil.OKMessage(w, "article counts rebuilt")
}
