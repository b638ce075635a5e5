package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/bridgewatch/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st.Begin("session-1", "https://bridge.example.com/status/abc", start, start.Add(5*time.Minute))
	return st
}

func TestHandleSession_ReturnsSnapshot(t *testing.T) {
	st := newTestStore()
	errMsg := "request failed"
	st.Append(pollRecord(1, nil))
	st.Append(store.PollRecord{Iteration: 2, Error: &errMsg})

	srv := NewServer(st, nil, 0, testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.SessionID != "session-1" {
		t.Errorf("SessionID = %q", snap.SessionID)
	}
	if snap.Outcome != store.OutcomePolling {
		t.Errorf("Outcome = %q, want polling", snap.Outcome)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(snap.Records))
	}
	if snap.Records[1].Error == nil || *snap.Records[1].Error != errMsg {
		t.Errorf("Records[1].Error = %v", snap.Records[1].Error)
	}
}

func TestHandleSession_MethodNotAllowed(t *testing.T) {
	srv := NewServer(newTestStore(), nil, 0, testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(newTestStore(), nil, 0, testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bridgewatch_polls_total 1\n"))
	})

	withMetrics := NewServer(newTestStore(), metrics, 0, testLogger())
	rec := httptest.NewRecorder()
	withMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "bridgewatch_polls_total") {
		t.Errorf("GET /metrics body = %q", rec.Body.String())
	}

	without := NewServer(newTestStore(), nil, 0, testLogger())
	rec = httptest.NewRecorder()
	without.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without handler = %d, want 404", rec.Code)
	}
}

func TestHandleSSE_ReplaysThenStreams(t *testing.T) {
	st := newTestStore()
	st.Append(pollRecord(1, []string{"PENDING"}))

	srv := NewServer(st, nil, 0, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		st.Append(pollRecord(2, []string{"COMPLETED"}))
	}()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.handleSSE(rec, req)

	body := rec.Body.String()
	if got := strings.Count(body, "data: "); got != 2 {
		t.Fatalf("event count = %d, want 2; body: %s", got, body)
	}
	if !strings.Contains(body, `"iteration":1`) || !strings.Contains(body, `"iteration":2`) {
		t.Errorf("body missing iterations: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := NewServer(newTestStore(), nil, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", srv.Addr().(*net.TCPAddr).Port)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return
		}
		_ = resp.Body.Close()
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("server still accepting connections after context cancel")
}

func TestServer_StartPortInUse(t *testing.T) {
	first := NewServer(newTestStore(), nil, 0, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	port := first.Addr().(*net.TCPAddr).Port

	second := NewServer(newTestStore(), nil, port, testLogger())
	if err := second.Start(ctx); err == nil {
		t.Fatal("Start() expected error for port in use")
	}
}

// pollRecord builds a successful record for the given iteration.
func pollRecord(iteration int, statuses []string) store.PollRecord {
	return store.PollRecord{
		Iteration:  iteration,
		StatusCode: http.StatusOK,
		Statuses:   statuses,
	}
}
