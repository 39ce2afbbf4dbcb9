package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"squadhq/workflow-logger/pkg/config"
)

// RemoteSink ships envelopes to a remote ingest API in batches. Entries
// are buffered until the batch size is reached, the flush interval fires,
// or Flush is called explicitly. Transient failures (5xx, network errors)
// are retried with exponential backoff; authentication failures are not.
type RemoteSink struct {
	cfg    config.RemoteConfig
	client *http.Client
	diag   *slog.Logger

	mu     sync.Mutex
	buffer []*Entry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRemoteSink creates a remote sink and starts its background flush
// ticker when a positive flush interval is configured.
func NewRemoteSink(cfg config.RemoteConfig, diag *slog.Logger) *RemoteSink {
	if diag == nil {
		diag = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}

	s := &RemoteSink{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		diag:   diag.With("component", "sink.remote"),
		stopCh: make(chan struct{}),
	}

	if cfg.FlushInterval > 0 {
		s.wg.Add(1)
		go s.runFlusher()
	}

	return s
}

// Name implements Sink.
func (s *RemoteSink) Name() string { return "remote" }

// Emit buffers the entry, sending the batch synchronously once the batch
// size is reached. Entries in a batch that fails after all retries are
// dropped; the error is returned for diagnostics.
func (s *RemoteSink) Emit(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	s.buffer = append(s.buffer, e)
	if len(s.buffer) < s.cfg.BatchSize {
		s.mu.Unlock()
		return nil
	}
	batch := s.takeLocked()
	s.mu.Unlock()

	return s.send(ctx, batch)
}

// Flush sends all buffered entries immediately.
func (s *RemoteSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.takeLocked()
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return s.send(ctx, batch)
}

// Close stops the background flusher and flushes remaining entries.
func (s *RemoteSink) Close() error {
	close(s.stopCh)
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	err := s.Flush(ctx)

	s.client.CloseIdleConnections()
	return err
}

// takeLocked detaches the current buffer. Callers must hold s.mu.
func (s *RemoteSink) takeLocked() []*Entry {
	batch := s.buffer
	s.buffer = nil
	return batch
}

// runFlusher flushes the buffer on the configured interval.
func (s *RemoteSink) runFlusher() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
			if err := s.Flush(ctx); err != nil {
				s.diag.Error("background flush failed", "error", err)
			}
			cancel()
		}
	}
}

// send posts one batch to the ingest endpoint with retries.
func (s *RemoteSink) send(ctx context.Context, batch []*Entry) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	url := fmt.Sprintf("%s/v1/datasets/%s/ingest", s.cfg.BaseURL, s.cfg.Dataset)

	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			s.diag.Debug("retrying ingest",
				"attempt", attempt,
				"max_retries", s.cfg.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create ingest request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = &RemoteError{Message: err.Error(), Cause: err}
			if ctx.Err() != nil {
				return lastErr
			}
			s.diag.Warn("ingest request failed, will retry",
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Bad credential, retrying cannot help.
			return &AuthError{Message: string(errorBody)}

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return &RemoteError{StatusCode: resp.StatusCode, Message: string(errorBody)}

		default:
			lastErr = &RemoteError{StatusCode: resp.StatusCode, Message: string(errorBody)}
			s.diag.Warn("ingest returned error status, will retry",
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return lastErr
}

// Buffered returns the number of entries currently waiting to be sent.
func (s *RemoteSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}
