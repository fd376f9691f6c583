// Package sections provides the section tree API: hierarchy browsing,
// creation, editing, ordering, and guarded deletion.
package sections

import (
	"net/http"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/authz"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/inputval"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles section API requests.
type Handler struct {
	sections *section.Store
	coord    *consistency.Coordinator
	logger   *zap.Logger
}

// NewHandler creates a sections handler.
func NewHandler(sections *section.Store, coord *consistency.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		sections: sections,
		coord:    coord,
		logger:   logger,
	}
}

// Tree handles GET /. Regular users see only active sections; admins get
// the full tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	activeOnly := !authz.IsAdmin(r)

	tree, err := h.sections.Tree(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to load section tree", zap.Error(err))
		jsonutil.InternalError(w, "failed to load sections")
		return
	}
	jsonutil.OK(w, tree)
}

// Get handles GET /{id}. The id segment accepts either a Mongo ObjectID or
// a slug.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		found, err := h.sections.GetByID(r.Context(), oid)
		if err != nil {
			h.respondLookupErr(w, err)
			return
		}
		jsonutil.OK(w, found)
		return
	}

	found, err := h.sections.GetBySlug(r.Context(), ref)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}
	jsonutil.OK(w, found)
}

func (h *Handler) respondLookupErr(w http.ResponseWriter, err error) {
	if err == mongo.ErrNoDocuments {
		jsonutil.NotFound(w, "section not found")
		return
	}
	h.logger.Error("section lookup failed", zap.Error(err))
	jsonutil.InternalError(w, "failed to load section")
}

type createSectionInput struct {
	Name        string `json:"name" validate:"required,max=50" label:"Section name"`
	Description string `json:"description" validate:"max=200" label:"Description"`
	Icon        string `json:"icon" label:"Icon"`
	ParentID    string `json:"parentId" validate:"objectid" label:"Parent section"`
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	var in createSectionInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		jsonutil.BadRequest(w, result.First())
		return
	}

	input := section.CreateInput{
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		CreatedByID: user.UserID(),
	}

	if in.ParentID != "" {
		parentOID, _ := primitive.ObjectIDFromHex(in.ParentID)
		parent, err := h.sections.GetByID(r.Context(), parentOID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				jsonutil.BadRequest(w, "parent section does not exist")
				return
			}
			h.logger.Error("parent lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "failed to create section")
			return
		}
		// The tree is two levels deep: children cannot have children.
		if !parent.IsRoot() {
			jsonutil.BadRequest(w, "sections can only be nested one level deep")
			return
		}
		input.ParentID = &parent.ID
	}

	created, err := h.sections.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("section create failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to create section")
		return
	}

	h.logger.Info("section created",
		zap.String("slug", created.Slug),
		zap.String("by", user.ID))
	jsonutil.Created(w, created)
}

type updateSectionInput struct {
	Name        *string `json:"name" label:"Section name"`
	Description *string `json:"description" label:"Description"`
	Icon        *string `json:"icon" label:"Icon"`
}

// Update handles PUT /{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in updateSectionInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Name != nil && (*in.Name == "" || len(*in.Name) > 50) {
		jsonutil.BadRequest(w, "Section name must be between 1 and 50 characters.")
		return
	}
	if in.Description != nil && len(*in.Description) > 200 {
		jsonutil.BadRequest(w, "Description must be at most 200 characters.")
		return
	}

	if _, err := h.sections.GetByID(r.Context(), id); err != nil {
		h.respondLookupErr(w, err)
		return
	}

	err := h.sections.Update(r.Context(), id, section.UpdateInput{
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
	})
	if err != nil {
		h.logger.Error("section update failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to update section")
		return
	}

	updated, err := h.sections.GetByID(r.Context(), id)
	if err != nil {
		h.respondLookupErr(w, err)
		return
	}
	jsonutil.OK(w, updated)
}

type setActiveInput struct {
	Active bool `json:"active"`
}

// SetActive handles PATCH /{id}/active.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in setActiveInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	if _, err := h.sections.GetByID(r.Context(), id); err != nil {
		h.respondLookupErr(w, err)
		return
	}

	if err := h.sections.SetActive(r.Context(), id, in.Active); err != nil {
		h.logger.Error("section toggle failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to update section")
		return
	}
	jsonutil.OKMessage(w, "section updated")
}

type reorderInput struct {
	Direction string `json:"direction" validate:"required,oneof=up down" label:"Direction"`
}

// Reorder handles POST /{id}/reorder.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in reorderInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		jsonutil.BadRequest(w, result.First())
		return
	}

	if err := h.coord.Reorder(r.Context(), id, in.Direction); err != nil {
		jsonutil.Err(w, err)
		return
	}

	siblings, err := h.sections.Siblings(r.Context(), id)
	if err != nil {
		h.logger.Error("sibling reload failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to load sections")
		return
	}
	jsonutil.OK(w, siblings)
}

// CanDelete handles GET /{id}/can-delete, reporting the blocking counts.
func (h *Handler) CanDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.sections.GetByID(r.Context(), id); err != nil {
		h.respondLookupErr(w, err)
		return
	}

	blockers, err := h.coord.CanDeleteSection(r.Context(), id)
	if err != nil {
		jsonutil.Err(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{
		"can_delete":    !blockers.Blocked(),
		"article_count": blockers.ArticleCount,
		"child_count":   blockers.ChildCount,
	})
}

type deleteSectionInput struct {
	ConfirmEmail string `json:"confirmEmail" validate:"required" label:"Confirmation email"`
}

// Delete handles DELETE /{id}. The caller must re-type their account email.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in deleteSectionInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		jsonutil.BadRequest(w, result.First())
		return
	}

	if err := h.coord.DeleteSection(r.Context(), id, user.Email, in.ConfirmEmail); err != nil {
		jsonutil.Err(w, err)
		return
	}
	jsonutil.OKMessage(w, "section deleted")
}

// pathID parses the {id} URL parameter, writing a 400 on malformed input.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid section id")
		return primitive.NilObjectID, false
	}
	return id, true
}
