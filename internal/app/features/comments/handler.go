// Package comments provides the per-article comment API.
package comments

import (
	"net/http"
	"strings"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/comment"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/authz"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/htmlsanitize"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultPageSize = 50

// Handler handles comment API requests.
type Handler struct {
	comments *comment.Store
	articles *article.Store
	logger   *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(comments *comment.Store, articles *article.Store, logger *zap.Logger) *Handler {
	return &Handler{
		comments: comments,
		articles: articles,
		logger:   logger,
	}
}

type commentInput struct {
	Content string `json:"content"`
}

// Create handles POST /. Comments are plain text; any markup is stripped.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	articleID, ok := h.articlePathID(w, r)
	if !ok {
		return
	}
	if _, err := h.articles.GetByID(r.Context(), articleID); err != nil {
		h.respondArticleErr(w, err)
		return
	}

	var in commentInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	content, ok := cleanContent(w, in.Content)
	if !ok {
		return
	}

	created, err := h.comments.Create(r.Context(), comment.CreateInput{
		ArticleID: articleID,
		AuthorID:  userID,
		Content:   content,
	})
	if err != nil {
		h.logger.Error("comment create failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to create comment")
		return
	}
	jsonutil.Created(w, created)
}

// List handles GET /, oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	articleID, ok := h.articlePathID(w, r)
	if !ok {
		return
	}
	if _, err := h.articles.GetByID(r.Context(), articleID); err != nil {
		h.respondArticleErr(w, err)
		return
	}

	list, err := h.comments.ListByArticle(r.Context(), articleID, defaultPageSize, 1)
	if err != nil {
		h.logger.Error("comment listing failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load comments")
		return
	}
	jsonutil.OK(w, list)
}

// Update handles PUT /{commentID}. Only the comment's author may edit it.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadForWrite(w, r, false)
	if !ok {
		return
	}

	var in commentInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	content, ok := cleanContent(w, in.Content)
	if !ok {
		return
	}

	if err := h.comments.UpdateContent(r.Context(), existing.ID, content); err != nil {
		h.logger.Error("comment update failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to update comment")
		return
	}

	updated, err := h.comments.GetByID(r.Context(), existing.ID)
	if err != nil {
		jsonutil.InternalError(w, "failed to load comment")
		return
	}
	jsonutil.OK(w, updated)
}

// Delete handles DELETE /{commentID}. The author or an admin may delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadForWrite(w, r, true)
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), existing.ID); err != nil {
		h.logger.Error("comment delete failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete comment")
		return
	}
	jsonutil.OKMessage(w, "comment deleted")
}

// loadForWrite resolves {commentID} and checks write access. Admin override
// applies to deletion only; edits stay with the author.
func (h *Handler) loadForWrite(w http.ResponseWriter, r *http.Request, adminOverride bool) (*models.Comment, bool) {
	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid comment id")
		return nil, false
	}

	existing, err := h.comments.GetByID(r.Context(), commentID)
	if err == mongo.ErrNoDocuments {
		jsonutil.NotFound(w, "comment not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("comment lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load comment")
		return nil, false
	}

	allowed := false
	if adminOverride {
		allowed = authz.CanModify(r, existing.AuthorID)
	} else {
		_, _, userID, ok := authz.UserCtx(r)
		allowed = ok && userID == existing.AuthorID
	}
	if !allowed {
		jsonutil.Forbidden(w, "you can only modify your own comments")
		return nil, false
	}
	return existing, true
}

func (h *Handler) articlePathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "articleID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid article id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) respondArticleErr(w http.ResponseWriter, err error) {
	if err == mongo.ErrNoDocuments {
		jsonutil.NotFound(w, "article not found")
		return
	}
	h.logger.Error("article lookup failed", zap.Error(err))
	jsonutil.InternalError(w, "failed to load article")
}

func cleanContent(w http.ResponseWriter, raw string) (string, bool) {
	content := strings.TrimSpace(htmlsanitize.StripTags(raw))
	if content == "" {
		jsonutil.BadRequest(w, "comment content is required")
		return "", false
	}
	if len(content) > models.CommentMaxLen {
		jsonutil.BadRequest(w, "comment is too long (max 2000 characters)")
		return "", false
	}
	return content, true
}
