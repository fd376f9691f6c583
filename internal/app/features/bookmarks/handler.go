// Package bookmarks provides the per-user article bookmark API.
package bookmarks

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/bookmark"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/authz"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultPageSize = 50

// Handler handles bookmark API requests. All operations act on the current
// user's own bookmarks.
type Handler struct {
	bookmarks *bookmark.Store
	articles  *article.Store
	logger    *zap.Logger
}

// NewHandler creates a bookmarks handler.
func NewHandler(bookmarks *bookmark.Store, articles *article.Store, logger *zap.Logger) *Handler {
	return &Handler{
		bookmarks: bookmarks,
		articles:  articles,
		logger:    logger,
	}
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	list, err := h.bookmarks.ListByUser(r.Context(), userID, defaultPageSize, 1)
	if err != nil {
		h.logger.Error("bookmark listing failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load bookmarks")
		return
	}
	jsonutil.OK(w, list)
}

// Add handles PUT /{articleID}. Adding twice is not an error.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if _, err := h.articles.GetByID(r.Context(), articleID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "article not found")
			return
		}
		h.logger.Error("article lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to add bookmark")
		return
	}

	created, err := h.bookmarks.Add(r.Context(), userID, articleID)
	if err != nil {
		h.logger.Error("bookmark add failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to add bookmark")
		return
	}
	jsonutil.OK(w, created)
}

// Remove handles DELETE /{articleID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	existed, err := h.bookmarks.Remove(r.Context(), userID, articleID)
	if err != nil {
		h.logger.Error("bookmark remove failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to remove bookmark")
		return
	}
	if !existed {
		jsonutil.NotFound(w, "bookmark not found")
		return
	}
	jsonutil.OKMessage(w, "bookmark removed")
}

// Exists handles GET /{articleID}.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	userID, articleID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	exists, err := h.bookmarks.Exists(r.Context(), userID, articleID)
	if err != nil {
		h.logger.Error("bookmark check failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to check bookmark")
		return
	}
	jsonutil.OK(w, map[string]bool{"bookmarked": exists})
}

func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (userID, articleID primitive.ObjectID, ok bool) {
	_, _, userID, ok = authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	articleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "articleID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid article id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, articleID, true
}
