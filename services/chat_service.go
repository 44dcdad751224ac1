package services

import (
	"context"
	"strings"

	"github.com/doctorvirtual/api/model"
	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/utils/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultInstructions is the standing prompt sent with every run.
const DefaultInstructions = "You are Doctor Virtual. Provide medically sound, user-friendly guidance."

// EmptyMessageReply is returned for blank input without contacting the
// assistant service.
const EmptyMessageReply = "❗️Please enter a message."

const degradedReplyPrefix = "⚠️ Error talking to Doctor Virtual: "

// ChatResult is the outcome of one chat turn. Exactly one of the three
// shapes is populated.
type ChatResult struct {
	Reply        string
	NeedLogin    bool
	LimitReached bool
}

// ChatService orchestrates one chat turn: quota gate, one-shot intake
// injection, thread binding, attachment wiring and the run itself. All
// assistant-service failures are absorbed here into degraded replies;
// nothing past the quota gate ever surfaces as a server fault.
type ChatService struct {
	db          *gorm.DB
	quota       *QuotaTracker
	threads     *ThreadService
	runner      *RunPoller
	client      *assistant.Client
	assistantID string
	log         *zap.Logger

	// lookup resolves the session's user; swappable so tiering can be
	// tested without a database.
	lookup func(userID uint) *model.User
}

// NewChatService creates a new chat service
func NewChatService(db *gorm.DB, quota *QuotaTracker, threads *ThreadService, runner *RunPoller, client *assistant.Client, assistantID string, log *zap.Logger) *ChatService {
	s := &ChatService{
		db:          db,
		quota:       quota,
		threads:     threads,
		runner:      runner,
		client:      client,
		assistantID: assistantID,
		log:         log,
	}
	s.lookup = s.lookupUser
	return s
}

// Ask handles one chat message for the given session. The session is
// mutated (counters, intake flags, thread id); the caller must persist it
// afterwards regardless of the outcome.
func (s *ChatService) Ask(ctx context.Context, sess *session.Session, message string) ChatResult {
	user := s.lookup(sess.UserID)
	tier := ResolveTier(user)

	// Quota is counted before anything else; rejection consumes a unit too.
	decision := s.quota.CheckAndIncrement(sess, tier)
	if !decision.Allowed {
		s.log.Info("quota exceeded",
			zap.String("tier", string(tier.Tier)),
			zap.Int("count", decision.Count),
			zap.Int("limit", decision.Limit),
		)
		if tier.Tier == TierVisitor {
			return ChatResult{NeedLogin: true}
		}
		return ChatResult{LimitReached: true}
	}

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ChatResult{Reply: EmptyMessageReply}
	}

	prepared := PrepareMessage(sess, trimmed)

	threadID, err := s.threads.Resolve(ctx, sess)
	if err != nil {
		return s.degraded("thread resolution failed", err)
	}

	if _, err := s.client.CreateMessage(ctx, threadID, assistant.MessageRequest{
		Role:        "user",
		Content:     prepared,
		Attachments: s.attachments(sess),
	}); err != nil {
		return s.degraded("message submission failed", err)
	}

	reply, err := s.runner.Execute(ctx, threadID, s.assistantID, DefaultInstructions)
	if err != nil {
		return s.degraded("run failed", err)
	}

	return ChatResult{Reply: reply}
}

// attachments expresses every file registered so far as retrieval context.
func (s *ChatService) attachments(sess *session.Session) []assistant.Attachment {
	if len(sess.FileIDs) == 0 {
		return nil
	}

	attachments := make([]assistant.Attachment, 0, len(sess.FileIDs))
	for _, id := range sess.FileIDs {
		attachments = append(attachments, assistant.Attachment{
			FileID: id,
			Tools:  []assistant.Tool{assistant.FileSearchTool},
		})
	}
	return attachments
}

func (s *ChatService) lookupUser(userID uint) *model.User {
	if userID == 0 || s.db == nil {
		return nil
	}
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil
	}
	return &user
}

func (s *ChatService) degraded(stage string, err error) ChatResult {
	s.log.Error("chat turn degraded", zap.String("stage", stage), zap.Error(err))
	return ChatResult{Reply: degradedReplyPrefix + err.Error()}
}
