// Package session provides the JSON login/logout API.
package session

import (
	"net/http"

	userstore "github.com/adil-N/KnowIThubv2-sub003/internal/app/store/users"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/inputval"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles session API requests.
type Handler struct {
	users      *userstore.Store
	sessionMgr *auth.SessionManager
	logger     *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		users:      users,
		sessionMgr: sessionMgr,
		logger:     logger,
	}
}

// Routes returns the session API router.
//
// When mounted at /api/session:
//   - POST   /api/session  - sign in with email and password
//   - GET    /api/session  - the current user, if any
//   - DELETE /api/session  - sign out
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.SignIn)
	r.Get("/", h.Current)
	r.Delete("/", h.SignOut)
	return r
}

type signInInput struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// SignIn handles POST /. Bad credentials, unknown accounts, and disabled
// accounts all produce the same response.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in signInInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		jsonutil.BadRequest(w, result.First())
		return
	}

	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err == mongo.ErrNoDocuments {
		jsonutil.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("authentication failed", zap.Error(err))
		jsonutil.InternalError(w, "sign in failed")
		return
	}

	if err := h.sessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.logger.Error("session write failed", zap.Error(err))
		jsonutil.InternalError(w, "sign in failed")
		return
	}

	h.logger.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	jsonutil.OK(w, map[string]string{
		"id":    u.ID.Hex(),
		"name":  u.FullName,
		"email": u.Email,
		"role":  u.Role,
	})
}

// Current handles GET /.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "not signed in")
		return
	}
	jsonutil.OK(w, user)
}

// SignOut handles DELETE /. Signing out without a session is not an error.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionMgr.SignOut(w, r); err != nil {
		h.logger.Warn("session clear failed", zap.Error(err))
	}
	jsonutil.OKMessage(w, "signed out")
}
