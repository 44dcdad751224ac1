package auth

import (
	"time"

	"github.com/doctorvirtual/api/model"
	authutil "github.com/doctorvirtual/api/utils/auth"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Subscribed bool      `json:"subscribed"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthResponse is the shared success payload for signup and login
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Register handles user signup. The new user is bound into the session so
// the browser flow continues straight to chat.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Duplicate email is an inline conflict, not a server fault
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	return h.issueSession(c, &user, fiber.StatusCreated)
}

// issueSession binds the user into the session cookie and returns API
// tokens alongside.
func (h *AuthHandler) issueSession(c *fiber.Ctx, user *model.User, status int) error {
	sess := h.sessions.Load(c)
	sess.UserID = user.ID
	if err := h.sessions.Save(c, sess); err != nil {
		return response.InternalServerError(c, "Failed to persist session")
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsSubscriber())
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.IsSubscriber())
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := AuthResponse{
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Subscribed: user.IsSubscriber(),
			CreatedAt:  user.CreatedAt,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60,
	}

	return c.Status(status).JSON(response.Response{
		Success: true,
		Data:    res,
	})
}
