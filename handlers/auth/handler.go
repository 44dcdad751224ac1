package auth

import (
	authutil "github.com/doctorvirtual/api/utils/auth"
	"github.com/doctorvirtual/api/utils/middleware"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/doctorvirtual/api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles signup, login and logout against the identity store.
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	sessions             *session.Manager
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, sessions *session.Manager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		sessions:             sessions,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}
