package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// statusServer serves message-status for any id and counts requests per id.
func statusServer(t *testing.T) (*httptest.Server, func(id int64) int64) {
	t.Helper()
	var mu sync.Mutex
	counts := make(map[int64]int64)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int64
		_, err := fmt.Sscanf(r.URL.Path, "/api/message-status/%d/", &id)
		require.NoError(t, err)

		mu.Lock()
		counts[id]++
		mu.Unlock()

		json.NewEncoder(w).Encode(StatusResponse{ID: id, IsGenerating: true, GenerationStage: 1})
	}))

	return srv, func(id int64) int64 {
		mu.Lock()
		defer mu.Unlock()
		return counts[id]
	}
}

func TestStartPolling_DeliversTicks(t *testing.T) {
	srv, _ := statusServer(t)
	defer srv.Close()

	client := newTestClient(srv.URL)
	var ticks atomic.Int64
	var lastID atomic.Int64
	session := client.StartPolling(42, func(status StatusResponse) {
		ticks.Add(1)
		lastID.Store(status.ID)
	})
	defer client.StopPolling()

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, int64(42), lastID.Load())
	require.Equal(t, int64(42), session.MessageID)
}

func TestStartPolling_ReplacesPreviousSession(t *testing.T) {
	srv, countFor := statusServer(t)
	defer srv.Close()

	client := newTestClient(srv.URL)
	first := client.StartPolling(1, func(StatusResponse) {})
	second := client.StartPolling(2, func(StatusResponse) {})
	defer client.StopPolling()

	// Old session must wind down completely; only one timer may live
	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replaced session never terminated")
	}
	require.Same(t, second, client.ActiveSession())

	// After replacement, requests for the old id must stop
	settled := countFor(1)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, settled, countFor(1))
	require.Eventually(t, func() bool { return countFor(2) > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStopPolling_NoSession_NoOp(t *testing.T) {
	client := newTestClient("http://localhost:0")
	require.NotPanics(t, func() {
		client.StopPolling()
		client.StopPolling()
	})
	require.Nil(t, client.ActiveSession())
}

func TestStopPolling_Idempotent(t *testing.T) {
	srv, _ := statusServer(t)
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := client.StartPolling(3, func(StatusResponse) {})

	client.StopPolling()
	client.StopPolling()
	session.Cancel()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate after stop")
	}
	require.Nil(t, client.ActiveSession())
}

func TestPollFailure_CancelsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	var ticks atomic.Int64
	session := client.StartPolling(5, func(StatusResponse) { ticks.Add(1) })

	// First failed request is fatal to the session, no retry
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("failing session did not cancel itself")
	}
	require.Equal(t, int64(0), ticks.Load())
	require.Error(t, session.Err(), "the fatal request error must be retained for the caller")
	require.Nil(t, client.ActiveSession(), "a dead session must not linger as active")
}

func TestCancelledSession_ClearsActiveAndHasNoErr(t *testing.T) {
	srv, _ := statusServer(t)
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := client.StartPolling(7, func(StatusResponse) {})

	session.Cancel()
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled session did not terminate")
	}
	require.NoError(t, session.Err())
	require.Nil(t, client.ActiveSession())
}
