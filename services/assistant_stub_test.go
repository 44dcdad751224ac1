package services

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/doctorvirtual/api/services/assistant"
)

// newStubClient points an assistant client at a local fake with waits tuned
// down so tests run fast.
func newStubClient(srv *httptest.Server) *assistant.Client {
	return assistant.NewClient(assistant.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		RetryConfig: &assistant.RetryConfig{
			MaxRetries:     0,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		},
		RateLimiterConfig: &assistant.RateLimiterConfig{
			MaxTokens:   1000,
			RefillRate:  1000,
			MinInterval: 0,
		},
	})
}

func newStubServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

// fastPollPolicy trades the production cadence for test speed.
func fastPollPolicy() PollPolicy {
	return PollPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      1.5,
		Deadline:        2 * time.Second,
	}
}
