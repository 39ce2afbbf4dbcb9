package logger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"squadhq/workflow-logger/pkg/config"
)

// newTestRemoteSink builds a sink against a test server with the
// background flusher disabled.
func newTestRemoteSink(baseURL string, batchSize, maxRetries int) *RemoteSink {
	return NewRemoteSink(config.RemoteConfig{
		Token:         "test-token",
		Dataset:       "workflow",
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		MaxRetries:    maxRetries,
		BatchSize:     batchSize,
		FlushInterval: -1,
	}, discardDiag())
}

func testEntry(level, message string) *Entry {
	return newEntry("checkout", level, message, nil, nil, time.Now())
}

func TestRemoteSink_BatchDispatch(t *testing.T) {
	var requests atomic.Int32
	var mu sync.Mutex
	var gotAuth string
	var gotBatch []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/v1/datasets/workflow/ingest" {
			t.Errorf("path = %q, want /v1/datasets/workflow/ingest", r.URL.Path)
		}
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBatch); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 2, 0)
	defer s.Close()

	ctx := context.Background()
	if err := s.Emit(ctx, testEntry(LevelInfo, "first")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got := requests.Load(); got != 0 {
		t.Fatalf("requests after one emit = %d, want 0", got)
	}
	if s.Buffered() != 1 {
		t.Fatalf("Buffered() = %d, want 1", s.Buffered())
	}

	if err := s.Emit(ctx, testEntry(LevelInfo, "second")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("requests after batch = %d, want 1", got)
	}
	if s.Buffered() != 0 {
		t.Errorf("Buffered() = %d after batch send, want 0", s.Buffered())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(gotBatch) != 2 {
		t.Errorf("batch size = %d, want 2", len(gotBatch))
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
}

func TestRemoteSink_FlushSendsBuffered(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 100, 0)
	defer s.Close()

	ctx := context.Background()
	s.Emit(ctx, testEntry(LevelInfo, "buffered"))
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	// empty buffer flushes without a request
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() on empty buffer error = %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests after empty flush = %d, want 1", got)
	}
}

func TestRemoteSink_AuthErrorNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 1, 3)

	err := s.Emit(context.Background(), testEntry(LevelError, "denied"))
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Emit() error = %v, want *AuthError", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (no retries on auth failure)", got)
	}
}

func TestRemoteSink_ClientErrorNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 1, 3)

	err := s.Emit(context.Background(), testEntry(LevelError, "bad payload"))
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Emit() error = %v, want *RemoteError", err)
	}
	if remoteErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", remoteErr.StatusCode)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (no retries on 4xx)", got)
	}
}

func TestRemoteSink_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 1, 1)

	if err := s.Emit(context.Background(), testEntry(LevelError, "flaky")); err != nil {
		t.Fatalf("Emit() error = %v, want success after retry", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestRemoteSink_RetriesExhausted(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newTestRemoteSink(server.URL, 1, 1)

	err := s.Emit(context.Background(), testEntry(LevelError, "down"))
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("Emit() error = %v, want *RemoteError", err)
	}
	if remoteErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", remoteErr.StatusCode)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2 (initial + 1 retry)", got)
	}
}
