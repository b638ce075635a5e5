package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObservePoll(t *testing.T) {
	m := NewRecorder()

	m.ObservePoll(1, 100*time.Millisecond, nil)
	m.ObservePoll(2, 200*time.Millisecond, errors.New("boom"))
	m.ObservePoll(3, 50*time.Millisecond, nil)

	if got := testutil.ToFloat64(m.pollsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("polls_total{result=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pollsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("polls_total{result=error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.iterations); got != 3 {
		t.Errorf("iterations = %v, want 3", got)
	}
}

func TestRecorder_SetTransactionsReplacesPrevious(t *testing.T) {
	m := NewRecorder()

	m.SetTransactions([]string{"PENDING", "PENDING", "COMPLETED"})
	if got := testutil.ToFloat64(m.transactionsSeen.WithLabelValues("PENDING")); got != 2 {
		t.Errorf("transactions_seen{PENDING} = %v, want 2", got)
	}

	m.SetTransactions([]string{"COMPLETED"})
	if got := testutil.CollectAndCount(m.transactionsSeen); got != 1 {
		t.Errorf("series count = %d, want 1 after reset", got)
	}
}

func TestRecorder_SetTransactionsInvalidUTF8(t *testing.T) {
	m := NewRecorder()

	m.SetTransactions([]string{"[\"\xff\"]"})
	if got := testutil.ToFloat64(m.transactionsSeen.WithLabelValues("[\"\uFFFD\"]")); got != 1 {
		t.Errorf("transactions_seen{sanitized} = %v, want 1", got)
	}
}

func TestRecorder_SetTransactionsBoundsStatusLabels(t *testing.T) {
	m := NewRecorder()

	for i := 0; i < maxStatusLabels; i++ {
		m.SetTransactions([]string{fmt.Sprintf("S%d", i)})
	}
	m.SetTransactions([]string{"S0", "NEW_1", "NEW_2"})

	if got := testutil.ToFloat64(m.transactionsSeen.WithLabelValues("S0")); got != 1 {
		t.Errorf("transactions_seen{S0} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transactionsSeen.WithLabelValues(otherStatus)); got != 2 {
		t.Errorf("transactions_seen{other} = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.transactionsSeen); got != 2 {
		t.Errorf("series count = %d, want 2", got)
	}
}

func TestRecorder_SetState(t *testing.T) {
	m := NewRecorder()
	m.SetState(StateTimeout)

	if got := testutil.ToFloat64(m.sessionState); got != StateTimeout {
		t.Errorf("session_state = %v, want %v", got, StateTimeout)
	}
}

func TestRecorder_Handler(t *testing.T) {
	m := NewRecorder()
	m.ObservePoll(1, time.Millisecond, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"bridgewatch_polls_total", "bridgewatch_poll_duration_seconds", "bridgewatch_session_state"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
