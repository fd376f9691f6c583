// Package articles provides the article API: authoring, lookup by internal
// or human-facing id, view/read tracking, visibility, and deletion.
package articles

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/authz"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/expiry"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/htmlsanitize"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/inputval"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler handles article API requests.
type Handler struct {
	articles *article.Store
	sections *section.Store
	coord    *consistency.Coordinator
	logger   *zap.Logger
}

// NewHandler creates an articles handler.
func NewHandler(articles *article.Store, sections *section.Store, coord *consistency.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		articles: articles,
		sections: sections,
		coord:    coord,
		logger:   logger,
	}
}

type createArticleInput struct {
	Title             string   `json:"title" validate:"required,max=200" label:"Title"`
	Content           string   `json:"content" validate:"required" label:"Content"`
	Sections          []string `json:"sections" label:"Sections"`
	Tags              []string `json:"tags" label:"Tags"`
	IsTemporary       bool     `json:"isTemporary"`
	TemporaryDuration string   `json:"temporaryDuration" validate:"duration" label:"Temporary duration"`
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	var in createArticleInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		jsonutil.BadRequest(w, result.First())
		return
	}

	sectionIDs, ok := h.resolveSections(w, r, in.Sections, in.IsTemporary)
	if !ok {
		return
	}
	if in.IsTemporary && !expiry.Valid(in.TemporaryDuration) {
		jsonutil.BadRequest(w, "temporary articles require a duration of 72h, 1w, or 1m")
		return
	}

	content := in.Content
	if htmlsanitize.IsPlainText(content) {
		content = htmlsanitize.PlainTextToHTML(content)
	}

	created, err := h.articles.Create(r.Context(), article.CreateInput{
		Title:             strings.TrimSpace(in.Title),
		Content:           htmlsanitize.Sanitize(content),
		AuthorID:          user.UserID(),
		Sections:          sectionIDs,
		Tags:              in.Tags,
		AutoTags:          strings.Fields(strings.ToLower(in.Title)),
		IsTemporary:       in.IsTemporary,
		TemporaryDuration: in.TemporaryDuration,
	})
	if err != nil {
		jsonutil.Err(w, err)
		return
	}

	h.coord.RefreshArticleCounts(r.Context(), created.Sections)

	h.logger.Info("article created",
		zap.String("article_id", created.ArticleID),
		zap.String("by", user.ID))
	jsonutil.Created(w, created)
}

type updateArticleInput struct {
	Title             *string  `json:"title" label:"Title"`
	Content           *string  `json:"content" label:"Content"`
	Sections          []string `json:"sections" label:"Sections"`
	Tags              []string `json:"tags" label:"Tags"`
	IsTemporary       *bool    `json:"isTemporary"`
	TemporaryDuration *string  `json:"temporaryDuration" label:"Temporary duration"`
}

// Update handles PUT /{id}. Only the author or an admin may edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadForWrite(w, r)
	if !ok {
		return
	}

	var in updateArticleInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Title != nil && (strings.TrimSpace(*in.Title) == "" || len(*in.Title) > models.ArticleTitleMaxLen) {
		jsonutil.BadRequest(w, "Title must be between 1 and 200 characters.")
		return
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		jsonutil.BadRequest(w, "Content is required.")
		return
	}

	// The expiry fields are validated together: an article ends up temporary
	// with a valid duration, or permanent with neither.
	temporary := existing.IsTemporary
	if in.IsTemporary != nil {
		temporary = *in.IsTemporary
	}
	if temporary {
		duration := existing.TemporaryDuration
		if in.TemporaryDuration != nil {
			duration = *in.TemporaryDuration
		}
		if !expiry.Valid(duration) {
			jsonutil.BadRequest(w, "temporary articles require a duration of 72h, 1w, or 1m")
			return
		}
	} else if in.TemporaryDuration != nil {
		jsonutil.BadRequest(w, "permanent articles cannot have a temporary duration")
		return
	}

	input := article.UpdateInput{
		Tags:              in.Tags,
		IsTemporary:       in.IsTemporary,
		TemporaryDuration: in.TemporaryDuration,
	}

	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		input.Title = &trimmed
		input.AutoTags = strings.Fields(strings.ToLower(trimmed))
	}
	if in.Content != nil {
		content := *in.Content
		if htmlsanitize.IsPlainText(content) {
			content = htmlsanitize.PlainTextToHTML(content)
		}
		content = htmlsanitize.Sanitize(content)
		input.Content = &content
	}
	if in.Sections != nil {
		sectionIDs, ok := h.resolveSections(w, r, in.Sections, temporary)
		if !ok {
			return
		}
		input.Sections = sectionIDs
	} else if existing.IsTemporary && !temporary {
		// Converting to permanent keeps the current sections, so they must
		// allow a permanent article.
		if !h.sectionsAllowPermanent(w, r, existing.Sections) {
			return
		}
	}

	if err := h.articles.Update(r.Context(), existing.ID, input); err != nil {
		jsonutil.Err(w, err)
		return
	}

	// Refresh both the old and new section sets; membership may have changed
	// in either direction.
	touched := existing.Sections
	if input.Sections != nil {
		touched = append(touched, input.Sections...)
	}
	h.coord.RefreshArticleCounts(r.Context(), touched)

	updated, err := h.articles.GetByID(r.Context(), existing.ID)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}
	jsonutil.OK(w, updated)
}

// Get handles GET /{id}. The id segment accepts either a Mongo ObjectID or
// a human-facing AN-XXXXX id. Hidden articles are visible only to admins
// and the author.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.lookup(r)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}
	if found.Hidden && !authz.CanModify(r, found.AuthorID) {
		jsonutil.NotFound(w, "article not found")
		return
	}
	jsonutil.OK(w, found)
}

// ListBySection handles GET /section/{sectionID}.
func (h *Handler) ListBySection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sectionID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid section id")
		return
	}

	limit, page := pageParams(r)
	list, err := h.articles.ListBySection(r.Context(), sectionID, limit, page)
	if err != nil {
		h.logger.Error("section article listing failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load articles")
		return
	}
	jsonutil.OK(w, list)
}

// ListMine handles GET /mine, the caller's own articles.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	limit, page := pageParams(r)
	list, err := h.articles.ListByAuthor(r.Context(), userID, limit, page)
	if err != nil {
		h.logger.Error("author article listing failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load articles")
		return
	}
	jsonutil.OK(w, list)
}

// ListExpiringSoon handles GET /expiring-soon (admin). The window query
// parameter is in hours, default 72.
func (h *Handler) ListExpiringSoon(w http.ResponseWriter, r *http.Request) {
	hours := int64(72)
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			jsonutil.BadRequest(w, "window must be a positive number of hours")
			return
		}
		hours = parsed
	}

	list, err := h.articles.ListExpiringSoon(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		h.logger.Error("expiring listing failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load articles")
		return
	}
	jsonutil.OK(w, list)
}

// RecordView handles POST /{id}/view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	found, err := h.lookup(r)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}

	if err := h.articles.RecordView(r.Context(), found.ID, userID); err != nil {
		h.respondLookupErr(w, err)
		return
	}
	jsonutil.OKMessage(w, "view recorded")
}

// RecordRead handles POST /{id}/read.
func (h *Handler) RecordRead(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	found, err := h.lookup(r)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}

	if err := h.articles.RecordRead(r.Context(), found.ID, userID); err != nil {
		h.respondLookupErr(w, err)
		return
	}
	jsonutil.OKMessage(w, "read recorded")
}

type setHiddenInput struct {
	Hidden bool `json:"hidden"`
}

// SetHidden handles PATCH /{id}/hidden (admin). Hiding an article removes it
// from section listings and counts without destroying it.
func (h *Handler) SetHidden(w http.ResponseWriter, r *http.Request) {
	found, err := h.lookup(r)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}

	var in setHiddenInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	if err := h.articles.SetHidden(r.Context(), found.ID, in.Hidden); err != nil {
		h.logger.Error("article hide toggle failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to update article")
		return
	}

	h.coord.RefreshArticleCounts(r.Context(), found.Sections)
	jsonutil.OKMessage(w, "article updated")
}

// Delete handles DELETE /{id}. Only the author or an admin may delete; the
// full cascade (files, comments, bookmarks, counts) runs through the
// coordinator.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadForWrite(w, r)
	if !ok {
		return
	}

	if err := h.coord.DeleteArticle(r.Context(), existing.ID); err != nil {
		jsonutil.Err(w, err)
		return
	}
	jsonutil.OKMessage(w, "article deleted")
}

// lookup resolves the {id} URL parameter to an article, accepting either a
// Mongo ObjectID or an AN-XXXXX id.
func (h *Handler) lookup(r *http.Request) (*models.Article, error) {
	ref := chi.URLParam(r, "id")
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return h.articles.GetByID(r.Context(), oid)
	}
	return h.articles.GetByArticleID(r.Context(), strings.ToUpper(ref))
}

// loadForWrite resolves the target article and checks the caller may modify
// it, writing the error response itself on failure.
func (h *Handler) loadForWrite(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	found, err := h.lookup(r)
	if err != nil {
		h.respondLookupErr(w, err)
		return nil, false
	}
	if !authz.CanModify(r, found.AuthorID) {
		jsonutil.Forbidden(w, "you can only modify your own articles")
		return nil, false
	}
	return found, true
}

// resolveSections validates the section refs for an article write: every id
// must name an existing active section, at least one is required, and the
// Flash Information section only accepts temporary articles.
func (h *Handler) resolveSections(w http.ResponseWriter, r *http.Request, refs []string, temporary bool) ([]primitive.ObjectID, bool) {
	if len(refs) == 0 {
		jsonutil.BadRequest(w, "at least one section is required")
		return nil, false
	}

	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		oid, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			jsonutil.BadRequest(w, "invalid section id")
			return nil, false
		}

		sec, err := h.sections.GetByID(r.Context(), oid)
		if err == mongo.ErrNoDocuments {
			jsonutil.BadRequest(w, "section does not exist")
			return nil, false
		}
		if err != nil {
			h.logger.Error("section lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to validate sections")
			return nil, false
		}
		if !sec.IsActive {
			jsonutil.BadRequest(w, "section "+sec.Name+" is not active")
			return nil, false
		}
		if sec.Slug == models.FlashInformationSlug && !temporary {
			jsonutil.BadRequest(w, "articles in Flash Information must be temporary")
			return nil, false
		}
		ids = append(ids, oid)
	}
	return ids, true
}

// sectionsAllowPermanent checks whether an article may become permanent while
// keeping its current section assignments, writing the error response itself
// on failure. Sections deleted since assignment are ignored.
func (h *Handler) sectionsAllowPermanent(w http.ResponseWriter, r *http.Request, sectionIDs []primitive.ObjectID) bool {
	for _, id := range sectionIDs {
		sec, err := h.sections.GetByID(r.Context(), id)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			h.logger.Error("section lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to validate sections")
			return false
		}
		if sec.Slug == models.FlashInformationSlug {
			jsonutil.BadRequest(w, "articles in Flash Information must be temporary")
			return false
		}
	}
	return true
}

func (h *Handler) respondLookupErr(w http.ResponseWriter, err error) {
	if err == mongo.ErrNoDocuments {
		jsonutil.NotFound(w, "article not found")
		return
	}
	h.logger.Error("article lookup failed", zap.Error(err))
	jsonutil.InternalError(w, "failed to load article")
}

// pageParams reads limit and page query parameters with sane bounds.
func pageParams(r *http.Request) (limit, page int64) {
	limit = defaultPageSize
	page = 1

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = min(parsed, maxPageSize)
		}
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return limit, page
}
