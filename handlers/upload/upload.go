package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/services/storage"
	"github.com/doctorvirtual/api/utils/pdfvalidation"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadHandler registers patient documents as retrieval context for the
// conversation.
type UploadHandler struct {
	attachments *services.AttachmentService
	sessions    *session.Manager
	archive     *storage.SpacesClient // nil when archival is not configured
	log         *zap.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(attachments *services.AttachmentService, sessions *session.Manager, archive *storage.SpacesClient, log *zap.Logger) *UploadHandler {
	return &UploadHandler{
		attachments: attachments,
		sessions:    sessions,
		archive:     archive,
		log:         log,
	}
}

// UploadResponse reports the ids registered by this request plus any files
// that were rejected.
type UploadResponse struct {
	Uploaded []string                 `json:"uploaded"`
	Failures []services.UploadFailure `json:"failures,omitempty"`
}

// Register accepts one or more files under the repeatable "file" field,
// validates them, registers the good ones with the assistant service and
// accumulates their ids on the session. One bad file never aborts the batch.
func (h *UploadHandler) Register(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Invalid multipart form")
	}

	files := form.File["file"]
	if len(files) == 0 {
		return response.BadRequest(c, "No files provided")
	}

	sess := h.sessions.Load(c)
	ctx := c.UserContext()

	accepted, failures := h.validate(files)

	outcome := h.attachments.Register(ctx, sess, accepted)
	outcome.Failures = append(failures, outcome.Failures...)

	if err := h.sessions.Save(c, sess); err != nil {
		return response.InternalServerError(c, "Failed to persist session")
	}

	for _, fileHeader := range accepted {
		h.archiveOriginal(ctx, sess, fileHeader)
	}

	return response.Success(c, UploadResponse{
		Uploaded: outcome.FileIDs,
		Failures: outcome.Failures,
	})
}

// validate splits the batch into registrable files and typed failures.
func (h *UploadHandler) validate(files []*multipart.FileHeader) ([]*multipart.FileHeader, []services.UploadFailure) {
	var accepted []*multipart.FileHeader
	var failures []services.UploadFailure

	for _, fileHeader := range files {
		name := services.SanitizeFilename(fileHeader.Filename)

		result, err := pdfvalidation.ValidatePDFFile(fileHeader, pdfvalidation.AttachmentLimits)
		if err != nil {
			failures = append(failures, services.UploadFailure{Filename: name, Reason: "Failed to read file"})
			continue
		}
		if !result.Valid {
			failures = append(failures, services.UploadFailure{Filename: name, Reason: result.Error})
			continue
		}

		accepted = append(accepted, fileHeader)
	}

	return accepted, failures
}

// archiveOriginal keeps a private copy of the upload in the bucket. The
// assistant service's file ids are not exportable, so this is the only
// retrievable record. Failures are logged, never surfaced.
func (h *UploadHandler) archiveOriginal(ctx context.Context, sess *session.Session, fileHeader *multipart.FileHeader) {
	if h.archive == nil {
		return
	}

	owner := "visitor"
	if sess.IsAuthenticated() {
		owner = fmt.Sprintf("user-%d", sess.UserID)
	}
	key := fmt.Sprintf("uploads/%s/%s-%s", owner, uuid.New().String(), services.SanitizeFilename(fileHeader.Filename))

	content, err := fileHeader.Open()
	if err != nil {
		h.log.Warn("archive open failed", zap.String("key", key), zap.Error(err))
		return
	}
	defer content.Close()

	archiveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || !strings.Contains(contentType, "/") {
		contentType = "application/pdf"
	}

	if err := h.archive.Archive(archiveCtx, key, content, contentType); err != nil {
		h.log.Warn("archive write failed", zap.String("key", key), zap.Error(err))
		return
	}
	h.log.Info("upload archived", zap.String("key", key))
}
