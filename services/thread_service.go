package services

import (
	"context"

	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/utils/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ThreadService lazily binds one remote conversation thread to a session.
// Once set, the thread id never changes for the session's life.
type ThreadService struct {
	client *assistant.Client
	group  singleflight.Group
	log    *zap.Logger
}

// NewThreadService creates a new thread service
func NewThreadService(client *assistant.Client, log *zap.Logger) *ThreadService {
	return &ThreadService{
		client: client,
		log:    log,
	}
}

// Resolve returns the session's thread id, creating the remote thread on
// first use. Creation is single-flighted on the session id so a
// double-submitted first message cannot orphan a thread: both requests
// receive the one thread the winner created.
func (s *ThreadService) Resolve(ctx context.Context, sess *session.Session) (string, error) {
	if sess.ThreadID != "" {
		return sess.ThreadID, nil
	}

	v, err, shared := s.group.Do(sess.SID, func() (interface{}, error) {
		thread, err := s.client.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		return thread.ID, nil
	})
	if err != nil {
		return "", err
	}

	threadID := v.(string)
	sess.ThreadID = threadID
	s.log.Info("thread bound to session",
		zap.String("thread_id", threadID),
		zap.Bool("shared", shared),
	)
	return threadID, nil
}
