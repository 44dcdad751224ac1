package services

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/doctorvirtual/api/services/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// runScript serves a canned run lifecycle: creation, a sequence of poll
// states, then the final thread messages.
type runScript struct {
	polls    []string
	poll     int32
	reply    string
	runError string
}

func (s *runScript) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/runs"):
			w.Write([]byte(`{"id":"run_1","thread_id":"thread_1","status":"queued"}`))
		case r.Method == "GET" && strings.Contains(r.URL.Path, "/runs/"):
			i := atomic.AddInt32(&s.poll, 1) - 1
			if int(i) >= len(s.polls) {
				i = int32(len(s.polls) - 1)
			}
			status := s.polls[i]
			if status == "failed" && s.runError != "" {
				w.Write([]byte(`{"id":"run_1","status":"failed","last_error":{"code":"server_error","message":"` + s.runError + `"}}`))
				return
			}
			w.Write([]byte(`{"id":"run_1","status":"` + status + `"}`))
		case r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/messages"):
			w.Write([]byte(`{"data":[{"id":"msg_1","role":"assistant","content":[{"type":"text","text":{"value":"` + s.reply + `"}}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestExecuteReturnsReplyAfterPolling(t *testing.T) {
	script := &runScript{
		polls: []string{"queued", "in_progress", "completed"},
		reply: "Drink fluids and rest.",
	}
	srv := newStubServer(script.handler())
	defer srv.Close()

	poller := NewRunPoller(newStubClient(srv), fastPollPolicy(), zap.NewNop())
	reply, err := poller.Execute(context.Background(), "thread_1", "asst_1", DefaultInstructions)

	require.NoError(t, err)
	assert.Equal(t, "Drink fluids and rest.", reply)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&script.poll), int32(3))
}

func TestExecuteReportsTerminalFailure(t *testing.T) {
	script := &runScript{
		polls:    []string{"failed"},
		runError: "model overloaded",
	}
	srv := newStubServer(script.handler())
	defer srv.Close()

	poller := NewRunPoller(newStubClient(srv), fastPollPolicy(), zap.NewNop())
	_, err := poller.Execute(context.Background(), "thread_1", "asst_1", "")

	var failure *RunFailedError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, assistant.RunStatusFailed, failure.Status)
	assert.Contains(t, failure.Error(), "model overloaded")
}

func TestExecuteTreatsExpiredAsFailure(t *testing.T) {
	script := &runScript{polls: []string{"expired"}}
	srv := newStubServer(script.handler())
	defer srv.Close()

	poller := NewRunPoller(newStubClient(srv), fastPollPolicy(), zap.NewNop())
	_, err := poller.Execute(context.Background(), "thread_1", "asst_1", "")

	var failure *RunFailedError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, assistant.RunStatusExpired, failure.Status)
}

func TestExecuteGivesUpAtDeadline(t *testing.T) {
	script := &runScript{polls: []string{"in_progress"}}
	srv := newStubServer(script.handler())
	defer srv.Close()

	policy := fastPollPolicy()
	policy.Deadline = 20 * time.Millisecond

	poller := NewRunPoller(newStubClient(srv), policy, zap.NewNop())
	_, err := poller.Execute(context.Background(), "thread_1", "asst_1", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "still in_progress")
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	script := &runScript{polls: []string{"in_progress"}}
	srv := newStubServer(script.handler())
	defer srv.Close()

	policy := fastPollPolicy()
	policy.InitialInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	poller := NewRunPoller(newStubClient(srv), policy, zap.NewNop())
	_, err := poller.Execute(ctx, "thread_1", "asst_1", "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecuteErrNoReplyWhenThreadEmpty(t *testing.T) {
	srv := newStubServer(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/runs"):
			w.Write([]byte(`{"id":"run_1","status":"completed"}`))
		case strings.HasSuffix(r.URL.Path, "/messages"):
			w.Write([]byte(`{"data":[]}`))
		}
	})
	defer srv.Close()

	poller := NewRunPoller(newStubClient(srv), fastPollPolicy(), zap.NewNop())
	_, err := poller.Execute(context.Background(), "thread_1", "asst_1", "")
	require.ErrorIs(t, err, ErrNoReply)
}
