package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// mockDeposit tracks how many times an address has been polled.
type mockDeposit struct {
	polls int
}

// StartMockBridge runs a mock bridge status API. Each address reports a
// PENDING deposit until it has been polled completeAfter times, then the
// deposit flips to COMPLETED.
// Call this in a goroutine before creating the monitor.
func StartMockBridge(addr string, completeAfter int) {
	var (
		deposits = make(map[string]*mockDeposit)
		mu       sync.Mutex
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimPrefix(r.URL.Path, "/status/")

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		d, exists := deposits[address]
		if !exists {
			d = &mockDeposit{}
			deposits[address] = d
		}
		d.polls++
		status := "PENDING"
		if d.polls > completeAfter {
			status = "COMPLETED"
		}
		mu.Unlock()

		tx := map[string]any{
			"fromChainId": "1151111081099710",
			"toChainId":   "137",
			"status":      status,
			"amount":      "250000000",
		}
		if status == "COMPLETED" {
			tx["transactionHash"] = "0x9f2c4e7a1b3d5f6e8a0c2e4f6a8b0d1e3f5a7c9e"
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"transactions": []any{tx},
		}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock bridge error", "error", err)
	}
}
