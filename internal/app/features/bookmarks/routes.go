package bookmarks

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the bookmark API router.
//
// When mounted at /api/bookmarks:
//   - GET    /api/bookmarks              - the caller's bookmarks, newest first
//   - GET    /api/bookmarks/{articleID}  - bookmarked-or-not check
//   - PUT    /api/bookmarks/{articleID}  - add (idempotent)
//   - DELETE /api/bookmarks/{articleID}  - remove
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.List)
		r.Get("/{articleID}", h.Exists)
		r.Put("/{articleID}", h.Add)
		r.Delete("/{articleID}", h.Remove)
	})

	return r
}
