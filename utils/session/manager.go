package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultCookieName is the session cookie name
	DefaultCookieName = "dv_session"
	// DefaultTTL bounds how long an idle session survives
	DefaultTTL = 7 * 24 * time.Hour
)

var errBadSessionToken = errors.New("session token rejected")

// Manager signs and verifies the client-held session blob. The cookie value
// is a JWT whose claims carry the Session; tampering invalidates the
// signature and the caller gets a fresh session.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

type sessionClaims struct {
	Session Session `json:"sess"`
	jwt.RegisteredClaims
}

// NewManager creates a session manager signing with the given secret.
func NewManager(secret string, secure bool) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: DefaultCookieName,
		ttl:        DefaultTTL,
		secure:     secure,
	}
}

// Load returns the session carried by the request cookie, or a fresh one
// when the cookie is absent, expired or fails verification.
func (m *Manager) Load(c *fiber.Ctx) *Session {
	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return m.fresh()
	}

	sess, err := m.decode(raw)
	if err != nil {
		return m.fresh()
	}
	return sess
}

// Save writes the session back into the response cookie. Must be called
// after every mutation; the cookie is the only copy.
func (m *Manager) Save(c *fiber.Ctx, sess *Session) error {
	token, err := m.encode(sess)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: "Lax",
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: "Lax",
	})
}

func (m *Manager) fresh() *Session {
	return &Session{
		SID:           uuid.New().String(),
		DailyCounters: make(map[string]int),
	}
}

func (m *Manager) encode(sess *Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Session: *sess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) decode(raw string) (*Session, error) {
	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadSessionToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errBadSessionToken
	}

	sess := claims.Session
	if sess.SID == "" {
		return nil, errBadSessionToken
	}
	if sess.DailyCounters == nil {
		sess.DailyCounters = make(map[string]int)
	}
	return &sess, nil
}
