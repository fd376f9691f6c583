// Package files provides attachment upload for articles. Uploaded bytes go
// to the storage backend; the returned metadata is what clients attach to an
// article's files array.
package files

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/jsonutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadSize caps a single attachment at 32MB.
const maxUploadSize = 32 << 20

// Handler handles attachment uploads.
type Handler struct {
	fileStorage storage.Store
	logger      *zap.Logger
}

// NewHandler creates a files handler.
func NewHandler(fileStorage storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// Routes returns the files router.
//
// When mounted at /api/files:
//   - POST /api/files  - multipart upload, returns attachment metadata
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/", h.Upload)
	})
	return r
}

// Upload handles POST /. The file arrives in the "file" multipart field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonutil.BadRequest(w, "file too large (max 32MB)")
		return
	}

	uploaded, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "missing file field")
		return
	}
	defer uploaded.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Storage path: articles/YYYY/MM/uuid.ext, so original names never
	// collide and cannot traverse directories.
	now := time.Now().UTC()
	uniqueName := uuid.New().String() + filepath.Ext(header.Filename)
	storagePath := fmt.Sprintf("articles/%04d/%02d/%s", now.Year(), int(now.Month()), uniqueName)

	opts := &storage.PutOptions{ContentType: contentType}
	if err := h.fileStorage.Put(r.Context(), storagePath, uploaded, opts); err != nil {
		h.logger.Error("attachment upload failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to store file")
		return
	}

	h.logger.Info("attachment uploaded",
		zap.String("path", storagePath),
		zap.Int64("size", header.Size))

	jsonutil.Created(w, models.ArticleFile{
		OriginalName: header.Filename,
		Filename:     uniqueName,
		Path:         storagePath,
		MimeType:     contentType,
	})
}
