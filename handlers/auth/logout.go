package auth

import (
	"github.com/gofiber/fiber/v2"
)

// Logout drops the session cookie. The conversational state lives in the
// cookie, so logging out also ends the conversation.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Clear(c)
	return c.Redirect("/", fiber.StatusFound)
}
