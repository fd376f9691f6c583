package sections

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the section API router.
//
// When mounted at /api/sections:
//   - GET    /api/sections                  - section tree (signed-in users)
//   - GET    /api/sections/{id}             - one section, by id or slug
//   - POST   /api/sections                  - create (admin)
//   - PUT    /api/sections/{id}             - update (admin)
//   - PATCH  /api/sections/{id}/active      - show/hide (admin)
//   - POST   /api/sections/{id}/reorder     - move among siblings (admin)
//   - GET    /api/sections/{id}/can-delete  - deletion blockers (admin)
//   - DELETE /api/sections/{id}             - guarded delete (admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.Tree)
		r.Get("/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(models.AdminRoles()...))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/active", h.SetActive)
		r.Post("/{id}/reorder", h.Reorder)
		r.Get("/{id}/can-delete", h.CanDelete)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
