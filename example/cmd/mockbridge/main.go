// Standalone mock bridge for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockbridge
//
// Then in another terminal:
//
//	go run ./cmd/bridgewatch -c example/config.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
)

func main() {
	completeAfter := flag.Int("complete-after", 3, "polls per address before the deposit completes")
	addr := flag.String("addr", ":9999", "listen address")
	flag.Parse()

	fmt.Printf("Mock bridge starting on %s\n", *addr)
	fmt.Printf("Deposits go PENDING → COMPLETED after %d polls\n", *completeAfter)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		polls = make(map[string]int)
		mu    sync.Mutex
	)

	http.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimPrefix(r.URL.Path, "/status/")

		mu.Lock()
		polls[address]++
		n := polls[address]
		mu.Unlock()

		status := "PENDING"
		if n > *completeAfter {
			status = "COMPLETED"
		}
		slog.Info("status request", "address", address, "poll", n, "status", status)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactions": []map[string]string{{
				"status":          status,
				"transactionHash": "0x9f2c4e7a1b3d5f6e8a0c2e4f6a8b0d1e3f5a7c9e",
				"amount":          "250000000",
			}},
		})
	})

	if err := http.ListenAndServe(*addr, nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
