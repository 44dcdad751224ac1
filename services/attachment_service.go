package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/utils/session"
	"go.uber.org/zap"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// UploadFailure records one file that could not be registered
type UploadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// UploadOutcome is the typed partial-success result of a registration
// batch: attachments are supplementary context, so one bad file never
// aborts the rest.
type UploadOutcome struct {
	FileIDs  []string        `json:"file_ids"`
	Failures []UploadFailure `json:"failures,omitempty"`
}

// AttachmentService registers uploaded files with the assistant service
// and accumulates their identifiers on the session.
type AttachmentService struct {
	client *assistant.Client
	log    *zap.Logger
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(client *assistant.Client, log *zap.Logger) *AttachmentService {
	return &AttachmentService{
		client: client,
		log:    log,
	}
}

// Register uploads each file independently and appends the returned ids to
// the session's accumulated list. The outcome lists only the ids created by
// this call, alongside any per-file failures.
func (s *AttachmentService) Register(ctx context.Context, sess *session.Session, files []*multipart.FileHeader) UploadOutcome {
	var outcome UploadOutcome

	for _, fileHeader := range files {
		name := SanitizeFilename(fileHeader.Filename)

		id, err := s.registerOne(ctx, name, fileHeader)
		if err != nil {
			s.log.Warn("attachment registration failed",
				zap.String("filename", name),
				zap.Error(err),
			)
			outcome.Failures = append(outcome.Failures, UploadFailure{
				Filename: name,
				Reason:   err.Error(),
			})
			continue
		}

		sess.FileIDs = append(sess.FileIDs, id)
		outcome.FileIDs = append(outcome.FileIDs, id)
		s.log.Info("attachment registered",
			zap.String("filename", name),
			zap.String("file_id", id),
			zap.Int("session_total", len(sess.FileIDs)),
		)
	}

	return outcome
}

func (s *AttachmentService) registerOne(ctx context.Context, name string, fileHeader *multipart.FileHeader) (string, error) {
	content, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer content.Close()

	file, err := s.client.UploadFile(ctx, name, content, assistant.PurposeAssistants)
	if err != nil {
		return "", err
	}
	return file.ID, nil
}

// SanitizeFilename strips path components and characters that the
// assistant service or the archive bucket would choke on.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}
