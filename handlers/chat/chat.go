package chat

import (
	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatHandler fronts the conversation flow.
type ChatHandler struct {
	svc      *services.ChatService
	sessions *session.Manager
	log      *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc *services.ChatService, sessions *session.Manager, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		svc:      svc,
		sessions: sessions,
		log:      log,
	}
}

// AskRequest is a single user turn.
type AskRequest struct {
	Message string `json:"message" form:"message"`
}

// AskResponse carries the assistant reply or a quota signal. Exactly one
// field is meaningful per response.
type AskResponse struct {
	Reply        string `json:"reply,omitempty"`
	NeedLogin    bool   `json:"need_login,omitempty"`
	LimitReached bool   `json:"limit_reached,omitempty"`
}

// Page serves the chat view. Visitors who skipped the intake form are sent
// back to it first.
func (h *ChatHandler) Page(c *fiber.Ctx) error {
	sess := h.sessions.Load(c)
	if !sess.IntakeSubmitted {
		return c.Redirect("/intake", fiber.StatusFound)
	}
	return c.SendFile("./web/static/chat.html")
}

// Ask runs one conversational turn. The session is saved on every outcome:
// quota counters move even on denial, and the one-shot intake flag flips on
// first delivery.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sess := h.sessions.Load(c)
	result := h.svc.Ask(c.UserContext(), sess, req.Message)

	if err := h.sessions.Save(c, sess); err != nil {
		h.log.Error("session save failed after chat turn", zap.String("sid", sess.SID), zap.Error(err))
		return response.InternalServerError(c, "Failed to persist session")
	}

	return response.Success(c, AskResponse{
		Reply:        result.Reply,
		NeedLogin:    result.NeedLogin,
		LimitReached: result.LimitReached,
	})
}
