package cron

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doctorvirtual/api/services/assistant"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExpiredFiles(t *testing.T) {
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	retention := 14 * 24 * time.Hour

	files := []assistant.File{
		{ID: "file-fresh", CreatedAt: now.Add(-time.Hour).Unix()},
		{ID: "file-edge", CreatedAt: now.Add(-retention).Unix()},
		{ID: "file-old", CreatedAt: now.Add(-retention - time.Minute).Unix()},
		{ID: "file-ancient", CreatedAt: now.Add(-90 * 24 * time.Hour).Unix()},
	}

	expired := ExpiredFiles(files, now, retention)

	ids := make([]string, 0, len(expired))
	for _, f := range expired {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"file-old", "file-ancient"}, ids)
}

func TestExpiredFilesEmptyList(t *testing.T) {
	assert.Empty(t, ExpiredFiles(nil, time.Now(), time.Hour))
}

func TestSweepExpiredFilesDeletesOnlyExpired(t *testing.T) {
	old := time.Now().Add(-30 * 24 * time.Hour).Unix()
	fresh := time.Now().Unix()

	var mu sync.Mutex
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && r.URL.Path == "/v1/files":
			w.Write([]byte(`{"data":[
				{"id":"file-old","purpose":"assistants","created_at":` + itoa(old) + `},
				{"id":"file-fresh","purpose":"assistants","created_at":` + itoa(fresh) + `}
			]}`))
		case r.Method == "DELETE" && strings.HasPrefix(r.URL.Path, "/v1/files/"):
			mu.Lock()
			deleted = append(deleted, strings.TrimPrefix(r.URL.Path, "/v1/files/"))
			mu.Unlock()
			w.Write([]byte(`{"deleted":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := assistant.NewClient(assistant.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		RateLimiterConfig: &assistant.RateLimiterConfig{
			MaxTokens:   100,
			RefillRate:  100,
			MinInterval: 0,
		},
	})

	manager := NewManager(client, 14*24*time.Hour, zap.NewNop())
	manager.SweepExpiredFiles()

	assert.Equal(t, []string{"file-old"}, deleted)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
