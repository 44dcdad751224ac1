package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/services/assistant"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubAssistantServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/v1/threads":
			w.Write([]byte(`{"id":"thread_1"}`))
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/messages"):
			w.Write([]byte(`{"id":"msg_1","role":"user"}`))
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/runs"):
			w.Write([]byte(`{"id":"run_1","status":"completed"}`))
		case r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/messages"):
			w.Write([]byte(`{"data":[{"id":"msg_2","role":"assistant","content":[{"type":"text","text":{"value":"Rest and hydrate."}}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestApp(t *testing.T, srv *httptest.Server) (*fiber.App, *session.Manager) {
	t.Helper()
	log := zap.NewNop()

	client := assistant.NewClient(assistant.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		RateLimiterConfig: &assistant.RateLimiterConfig{
			MaxTokens:   100,
			RefillRate:  100,
			MinInterval: 0,
		},
	})

	svc := services.NewChatService(
		nil,
		services.NewQuotaTracker(),
		services.NewThreadService(client, log),
		services.NewRunPoller(client, services.PollPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1,
			Deadline:        time.Second,
		}, log),
		client,
		"asst_1",
		log,
	)

	sessions := session.NewManager("test-secret", false)
	handler := NewChatHandler(svc, sessions, log)

	app := fiber.New()
	app.Get("/chat", handler.Page)
	app.Post("/chat", handler.Ask)
	return app, sessions
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	return nil
}

func TestPageRedirectsToIntakeWithoutSubmission(t *testing.T) {
	srv := stubAssistantServer()
	defer srv.Close()
	app, _ := newTestApp(t, srv)

	resp, err := app.Test(httptest.NewRequest("GET", "/chat", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/intake", resp.Header.Get("Location"))
}

func TestAskPersistsSessionAcrossTurns(t *testing.T) {
	srv := stubAssistantServer()
	defer srv.Close()
	app, _ := newTestApp(t, srv)

	ask := func(cookie *http.Cookie) *http.Response {
		req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{"message":"I have a headache"}`))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		resp, err := app.Test(req, int(5*time.Second/time.Millisecond))
		require.NoError(t, err)
		return resp
	}

	first := ask(nil)
	assert.Equal(t, fiber.StatusOK, first.StatusCode)
	cookie := sessionCookie(first)
	require.NotNil(t, cookie, "every turn must write the session cookie back")

	var body struct {
		Data AskResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(first.Body).Decode(&body))
	assert.Equal(t, "Rest and hydrate.", body.Data.Reply)

	// Visitor allowance runs out on the fourth message of the same session
	second := ask(cookie)
	cookie = sessionCookie(second)
	third := ask(cookie)
	cookie = sessionCookie(third)
	fourth := ask(cookie)

	body.Data = AskResponse{}
	require.NoError(t, json.NewDecoder(fourth.Body).Decode(&body))
	assert.True(t, body.Data.NeedLogin)
	assert.Empty(t, body.Data.Reply)
	// The denied turn still saved the session
	assert.NotNil(t, sessionCookie(fourth))
}

func TestAskRejectsMalformedBody(t *testing.T) {
	srv := stubAssistantServer()
	defer srv.Close()
	app, _ := newTestApp(t, srv)

	req := httptest.NewRequest("POST", "/chat", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
