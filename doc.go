// Package bridgewatch polls a cross-chain bridge status API until a deposit
// reaches a terminal status.
//
// A [Monitor] requests "<base>/status/<address>" on a flat interval, prints
// every transaction it sees and stops as soon as one matches (by default,
// status "COMPLETED") or when the session deadline passes. Request failures
// never end a session; they are reported and the next poll proceeds on
// schedule.
//
// # Quick Start
//
//	m, err := bridgewatch.New(bridgewatch.WithAddress("FKxyyt..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	result, err := m.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // interrupted
//	}
//	if !result.Found {
//	    os.Exit(1)
//	}
//
// # Configuration
//
// Defaults match the bridge's documented cadence: 30 second interval,
// 5 minute session, 10 second request timeout. All are adjustable with the
// functional options ([WithPollInterval], [WithMaxDuration],
// [WithRequestTimeout]) or through the YAML loader in the config package.
//
// # Matching
//
// [Matcher] functions decide which transaction ends the session.
// [StatusIs] and [AnyOf] cover the common cases; [DefaultMatcher] waits for
// [StatusCompleted].
//
// # Response Parsing
//
// The status body is decoded leniently by [ParseStatusResponse]: a missing
// or malformed "transactions" field is treated as empty, and unexpected
// field types are displayed rather than rejected.
//
// # Architecture
//
//   - internal/poller: HTTP fetching with per-request timeouts
//   - internal/store: in-memory session history with pub/sub
//   - internal/metrics: Prometheus collectors
//   - internal/server: optional status API, SSE stream and /metrics
package bridgewatch
