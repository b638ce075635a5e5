package bridgewatch

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReporter_Lines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	start := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	r.Banner(start, "addr123", 30*time.Second, 5*time.Minute)
	r.Checking(2, start.Add(30*time.Second), 30*time.Second)
	r.TransactionCount(0)
	r.TransactionCount(1)
	r.Transaction(0, Transaction{Status: "PENDING", TransactionHash: "0x1234567890abcdef99", Amount: "7"})
	r.Error(errors.New("request failed: boom"))
	r.Timeout(5 * time.Minute)

	out := buf.String()
	expected := []string{
		"Starting bridge monitoring at 2026-05-06 07:08:09",
		"Address: addr123",
		"Will check every 30s for up to 5.0 minutes",
		"[2] Checking at 07:08:39 (elapsed: 30.0s)...",
		"    Found 0 transaction(s)",
		"    (no transactions yet)",
		"    Found 1 transaction(s)",
		"    Tx #1: status=PENDING, hash=0x1234567890abcd..., amount=7",
		"    ERROR: request failed: boom",
		"✗ TIMEOUT: No COMPLETED transaction found after 5.0 minutes",
	}
	for _, line := range expected {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q\nGot:\n%s", line, out)
		}
	}
	if strings.Count(out, "(no transactions yet)") != 1 {
		t.Errorf("'(no transactions yet)' should only follow an empty response\nGot:\n%s", out)
	}
}

func TestReporter_Success(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Success(Transaction{Status: StatusCompleted, Raw: []byte(`{"status":"COMPLETED"}`)})

	out := buf.String()
	if !strings.Contains(out, "✓ SUCCESS: Found COMPLETED transaction!") {
		t.Errorf("missing success line:\n%s", out)
	}
	if !strings.Contains(out, "  \"status\": \"COMPLETED\"") {
		t.Errorf("missing indented transaction:\n%s", out)
	}
}

func TestNewReporter_NilWriter(t *testing.T) {
	r := NewReporter(nil)
	// must not panic
	r.Checking(1, time.Now(), 0)
}
