package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/doctorvirtual/api/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveReturnsExistingThread(t *testing.T) {
	var calls int32
	srv := newStubServer(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"id":"thread_new"}`))
	})
	defer srv.Close()

	svc := NewThreadService(newStubClient(srv), zap.NewNop())
	sess := &session.Session{SID: "s1", ThreadID: "thread_existing"}

	id, err := svc.Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "thread_existing", id)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestResolveCreatesThreadOnce(t *testing.T) {
	var calls int32
	srv := newStubServer(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"id":"thread_%d"}`, n)
	})
	defer srv.Close()

	svc := NewThreadService(newStubClient(srv), zap.NewNop())
	sess := &session.Session{SID: "s1"}

	id, err := svc.Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", id)
	assert.Equal(t, "thread_1", sess.ThreadID)

	// Binding is stable on subsequent calls
	again, err := svc.Resolve(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolveSingleFlightsConcurrentCreation(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := newStubServer(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		<-release
		fmt.Fprintf(w, `{"id":"thread_%d"}`, n)
	})
	defer srv.Close()

	svc := NewThreadService(newStubClient(srv), zap.NewNop())

	// Two copies of the same decoded session, as a double-submitted first
	// message would produce
	sessA := &session.Session{SID: "shared"}
	sessB := &session.Session{SID: "shared"}

	var wg sync.WaitGroup
	ids := make([]string, 2)
	errs := make([]error, 2)
	for i, sess := range []*session.Session{sessA, sessB} {
		wg.Add(1)
		go func(i int, sess *session.Session) {
			defer wg.Done()
			ids[i], errs[i] = svc.Resolve(context.Background(), sess)
		}(i, sess)
	}

	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Equal(t, ids[0], ids[1], "both requests must receive the same thread")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "only one thread may be created")
}

func TestResolvePropagatesCreationFailure(t *testing.T) {
	srv := newStubServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})
	defer srv.Close()

	svc := NewThreadService(newStubClient(srv), zap.NewNop())
	sess := &session.Session{SID: "s1"}

	_, err := svc.Resolve(context.Background(), sess)
	assert.Error(t, err)
	assert.Empty(t, sess.ThreadID)
}
