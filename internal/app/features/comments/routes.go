package comments

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the comment API router. It expects to be mounted under an
// article route carrying an {articleID} URL parameter:
//
//   - GET    /api/articles/{articleID}/comments              - list, oldest first
//   - POST   /api/articles/{articleID}/comments              - create
//   - PUT    /api/articles/{articleID}/comments/{commentID}  - edit own comment
//   - DELETE /api/articles/{articleID}/comments/{commentID}  - delete own (or any, as admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{commentID}", h.Update)
		r.Delete("/{commentID}", h.Delete)
	})

	return r
}
