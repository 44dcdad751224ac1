package cron

import (
	"context"
	"time"

	"github.com/doctorvirtual/api/services/assistant"
	"go.uber.org/zap"
)

// SweepExpiredFiles deletes assistant-service files older than the
// retention window. Sessions are transient, so files registered by expired
// sessions would otherwise accumulate forever on the remote side.
func (m *Manager) SweepExpiredFiles() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files, err := m.client.ListFiles(ctx, assistant.PurposeAssistants)
	if err != nil {
		m.log.Error("retention sweep: listing files failed", zap.Error(err))
		return
	}

	expired := ExpiredFiles(files, time.Now(), m.retention)

	deleted := 0
	for _, file := range expired {
		if err := m.client.DeleteFile(ctx, file.ID); err != nil {
			m.log.Warn("retention sweep: delete failed",
				zap.String("file_id", file.ID),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	m.log.Info("retention sweep finished",
		zap.Int("scanned", len(files)),
		zap.Int("expired", len(expired)),
		zap.Int("deleted", deleted),
	)
}

// ExpiredFiles returns the files whose age exceeds the retention window.
func ExpiredFiles(files []assistant.File, now time.Time, retention time.Duration) []assistant.File {
	var expired []assistant.File
	for _, file := range files {
		if file.Age(now) > retention {
			expired = append(expired, file)
		}
	}
	return expired
}
