package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/doctorvirtual/api/model"
	"github.com/doctorvirtual/api/utils/auth"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/doctorvirtual/api/utils/session"
	"gorm.io/gorm"
)

// AuthMiddleware resolves the caller's identity from either a bearer token
// or the user bound into the session cookie. Chat is open to visitors, so
// most routes use Optional; Required guards the account endpoints.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	sessions   *session.Manager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, sessions *session.Manager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		sessions:   sessions,
		db:         db,
	}
}

// Optional attaches the user to the request context when one can be
// resolved, and lets the request through either way.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user := m.resolveUser(c); user != nil {
			c.Locals("user", user)
			c.Locals("user_id", user.ID)
		}
		return c.Next()
	}
}

// Required rejects requests without a resolvable user.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := m.resolveUser(c)
		if user == nil {
			return response.Unauthorized(c, "Authentication required")
		}
		c.Locals("user", user)
		c.Locals("user_id", user.ID)
		return c.Next()
	}
}

func (m *AuthMiddleware) resolveUser(c *fiber.Ctx) *model.User {
	if m.db == nil {
		return nil
	}

	// Bearer token first: API clients that never carry the cookie
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			claims, err := m.jwtManager.ValidateToken(parts[1])
			if err == nil && claims.TokenType == "access" {
				var user model.User
				if err := m.db.First(&user, claims.UserID).Error; err == nil {
					return &user
				}
			}
		}
		return nil
	}

	// Fall back to the user bound into the session cookie
	sess := m.sessions.Load(c)
	if sess.UserID == 0 {
		return nil
	}
	var user model.User
	if err := m.db.First(&user, sess.UserID).Error; err != nil {
		return nil
	}
	return &user
}

// GetUser retrieves the resolved user from the request context.
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals("user").(*model.User)
	return user, ok
}
