package articles

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the article API router.
//
// When mounted at /api/articles:
//   - POST   /api/articles                      - create (signed-in users)
//   - GET    /api/articles/{id}                 - one article, by id or AN-XXXXX
//   - PUT    /api/articles/{id}                 - update (author or admin)
//   - DELETE /api/articles/{id}                 - delete with cascade (author or admin)
//   - POST   /api/articles/{id}/view            - record a distinct view
//   - POST   /api/articles/{id}/read            - record or refresh a read
//   - GET    /api/articles/section/{sectionID}  - non-hidden articles in a section
//   - GET    /api/articles/mine                 - the caller's articles
//   - GET    /api/articles/expiring-soon        - temporary articles near expiry (admin)
//   - PATCH  /api/articles/{id}/hidden          - show/hide (admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Get("/section/{sectionID}", h.ListBySection)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/view", h.RecordView)
		r.Post("/{id}/read", h.RecordRead)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(models.AdminRoles()...))
		r.Get("/expiring-soon", h.ListExpiringSoon)
		r.Patch("/{id}/hidden", h.SetHidden)
	})

	return r
}
