package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == DefaultCookieName {
			return cookie.Value
		}
	}
	return ""
}

// echoApp saves a mutated session on POST and reports it on GET.
func echoApp(m *Manager) *fiber.App {
	app := fiber.New()
	app.Post("/bump", func(c *fiber.Ctx) error {
		sess := m.Load(c)
		sess.DailyCounters["2026-03-14"]++
		sess.ThreadID = "thread_1"
		if err := m.Save(c, sess); err != nil {
			return err
		}
		return c.JSON(sess)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(m.Load(c))
	})
	return app
}

func TestSessionRoundTrip(t *testing.T) {
	m := NewManager("test-secret", false)
	app := echoApp(m)

	req := httptest.NewRequest("POST", "/bump", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	token := sessionCookie(t, resp)
	require.NotEmpty(t, token)

	sess, err := m.decode(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SID)
	assert.Equal(t, 1, sess.DailyCounters["2026-03-14"])
	assert.Equal(t, "thread_1", sess.ThreadID)
}

func TestLoadWithoutCookieIsFresh(t *testing.T) {
	m := NewManager("test-secret", false)
	app := echoApp(m)

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTamperedCookieYieldsFreshSession(t *testing.T) {
	m := NewManager("test-secret", false)

	sess := &Session{SID: "original", DailyCounters: map[string]int{"2026-03-14": 99}}
	token, err := m.encode(sess)
	require.NoError(t, err)

	// Flip a character in the payload segment
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = m.decode(string(tampered))
	assert.Error(t, err)

	app := echoApp(m)
	req := httptest.NewRequest("POST", "/bump", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: string(tampered)})
	resp, err := app.Test(req)
	require.NoError(t, err)

	fresh, err := m.decode(sessionCookie(t, resp))
	require.NoError(t, err)
	assert.NotEqual(t, "original", fresh.SID)
	assert.Equal(t, 1, fresh.DailyCounters["2026-03-14"])
}

func TestForeignSecretRejected(t *testing.T) {
	signer := NewManager("secret-one", false)
	verifier := NewManager("secret-two", false)

	token, err := signer.encode(&Session{SID: "s1"})
	require.NoError(t, err)

	_, err = verifier.decode(token)
	assert.Error(t, err)
}

func TestIsAuthenticated(t *testing.T) {
	assert.False(t, (&Session{SID: "s1"}).IsAuthenticated())
	assert.True(t, (&Session{SID: "s1", UserID: 42}).IsAuthenticated())
}

func TestClearExpiresCookie(t *testing.T) {
	m := NewManager("test-secret", false)
	app := fiber.New()
	app.Get("/logout", func(c *fiber.Ctx) error {
		m.Clear(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/logout", nil))
	require.NoError(t, err)

	var cleared *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == DefaultCookieName {
			cleared = cookie
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}
