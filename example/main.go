package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/bridgewatch"
)

func main() {
	// start mock bridge (see mock_bridge.go); completes on the 4th poll
	go StartMockBridge(":9999", 3)
	time.Sleep(100 * time.Millisecond)

	m, err := bridgewatch.New(
		bridgewatch.WithAddress(bridgewatch.DefaultAddress),
		bridgewatch.WithBaseURL("http://localhost:9999"),
		bridgewatch.WithPollInterval(5*time.Second),
		bridgewatch.WithMaxDuration(time.Minute),
		bridgewatch.WithRequestTimeout(2*time.Second),
		bridgewatch.WithListenPort(8080),
		bridgewatch.WithIterationCallback(func(it bridgewatch.Iteration) {
			slog.Info("iteration",
				"n", it.Number,
				"latency", it.Latency.String(),
				"transactions", len(it.Transactions),
			)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Bridgewatch Demo                                    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Session:  http://localhost:8080/api/session         ║")
	fmt.Println("  ║   Stream:   http://localhost:8080/api/sse             ║")
	fmt.Println("  ║   Metrics:  http://localhost:8080/metrics             ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   The mock deposit completes on the 4th check         ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := m.Run(ctx)
	if err != nil {
		slog.Error("bridgewatch error", "error", err)
		os.Exit(1)
	}
	if !result.Found {
		os.Exit(1)
	}
}
