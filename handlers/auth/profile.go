package auth

import (
	"time"

	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/utils/middleware"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// MeResponse describes the caller's current standing
type MeResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Tier          string `json:"tier"`
	DailyLimit    int    `json:"daily_limit"`
	UsedToday     int    `json:"used_today"`
}

// Me reports who the caller is and how much quota is left today.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess := h.sessions.Load(c)
	user, _ := middleware.GetUser(c)

	tier := services.ResolveTier(user)
	res := MeResponse{
		Authenticated: user != nil,
		Tier:          string(tier.Tier),
		DailyLimit:    tier.DailyLimit,
		UsedToday:     sess.CountFor(time.Now()),
	}
	if user != nil {
		res.Email = user.Email
		res.Name = user.Name
	}

	return response.Success(c, res)
}
