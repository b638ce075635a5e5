package bridgewatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/bridgewatch/internal/metrics"
	"github.com/jpalmerr/bridgewatch/internal/poller"
	"github.com/jpalmerr/bridgewatch/internal/server"
	"github.com/jpalmerr/bridgewatch/internal/store"
)

const (
	// DefaultBaseURL is the root of the bridge status API.
	DefaultBaseURL = "https://bridge.polymarket.com"

	// DefaultAddress is the deposit address monitored when none is configured.
	DefaultAddress = "FKxyytNAYZRAZt86hgGQLmdShrgwtsLDxgSLdH9KRoT7"

	// DefaultPollInterval is the flat delay between iterations.
	DefaultPollInterval = 30 * time.Second

	// DefaultMaxDuration is how long a session polls before timing out.
	DefaultMaxDuration = 300 * time.Second

	// DefaultRequestTimeout bounds each HTTP request.
	DefaultRequestTimeout = 10 * time.Second
)

// Iteration describes one poll of the status resource.
type Iteration struct {
	// Number is the 1-based iteration counter.
	Number int

	// CheckedAt is when the iteration started.
	CheckedAt time.Time

	// Elapsed is the session time elapsed when the iteration started.
	Elapsed time.Duration

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// StatusCode is the HTTP status code, zero if no response was received.
	StatusCode int

	// Transactions are the transactions inspected, in server order. When a
	// match is found, transactions after it are not included.
	Transactions []Transaction

	// Match is the matching transaction, or nil.
	Match *Transaction

	// Err is the non-fatal error that ended this iteration, if any.
	Err error
}

// Result is the outcome of a monitoring session.
type Result struct {
	// Found is true when a matching transaction was seen before the deadline.
	Found bool

	// Transaction is the first matching transaction, nil unless Found.
	Transaction *Transaction

	// SessionID identifies the session in logs and the status API.
	SessionID string

	// Iterations is the number of polls attempted.
	Iterations int

	// Elapsed is the session duration.
	Elapsed time.Duration
}

// Monitor polls a bridge status URL until a matching transaction appears or
// the session deadline passes.
//
// A Monitor is created with [New] and runs sessions with [Monitor.Run].
// Polling is strictly sequential: one request, then inspection, then a flat
// sleep. Run is not safe for concurrent use on the same Monitor.
type Monitor struct {
	address            string
	url                string
	pollInterval       time.Duration
	maxDuration        time.Duration
	requestTimeout     time.Duration
	headers            map[string]string
	matcher            Matcher
	logger             *slog.Logger
	reporter           *Reporter
	listenPort         int
	iterationCallbacks []func(Iteration)
	now                func() time.Time
	sleep              func(context.Context, time.Duration) error

	client  *poller.Client
	store   *store.MemoryStore
	metrics *metrics.Recorder
}

// session is the mutable state of one Run call.
type session struct {
	id         string
	start      time.Time
	deadline   time.Time
	iterations int
}

// New creates a [Monitor] with the given options.
//
// Without options the monitor polls [DefaultAddress] on [DefaultBaseURL]
// every 30 seconds for up to 5 minutes, with a 10 second request timeout,
// waiting for a [StatusCompleted] transaction.
//
// Example:
//
//	m, err := bridgewatch.New(
//	    bridgewatch.WithAddress("FKxyyt..."),
//	    bridgewatch.WithPollInterval(10 * time.Second),
//	)
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		address:        DefaultAddress,
		baseURL:        DefaultBaseURL,
		pollInterval:   DefaultPollInterval,
		maxDuration:    DefaultMaxDuration,
		requestTimeout: DefaultRequestTimeout,
		headers:        map[string]string{"Accept": "application/json"},
		matcher:        DefaultMatcher,
		output:         os.Stdout,
		now:            time.Now,
		sleep:          sleepContext,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		address:            cfg.address,
		url:                cfg.baseURL + "/status/" + cfg.address,
		pollInterval:       cfg.pollInterval,
		maxDuration:        cfg.maxDuration,
		requestTimeout:     cfg.requestTimeout,
		headers:            cfg.headers,
		matcher:            cfg.matcher,
		logger:             logger,
		reporter:           NewReporter(cfg.output),
		listenPort:         cfg.listenPort,
		iterationCallbacks: cfg.iterationCallbacks,
		now:                cfg.now,
		sleep:              cfg.sleep,
		client:             poller.NewClient(),
		store:              store.NewMemoryStore(),
		metrics:            metrics.NewRecorder(),
	}, nil
}

// Run polls until a matching transaction is found or the deadline passes.
//
// Request, HTTP status and decode errors are reported and polling continues
// on the next interval. Reaching the deadline is not an error: Run returns a
// Result with Found false and a nil error. The only error returned is the
// context error when ctx is cancelled, or a failure to start the status
// server.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	start := m.now()
	s := &session{
		id:       uuid.NewString(),
		start:    start,
		deadline: start.Add(m.maxDuration),
	}
	m.store.Begin(s.id, m.url, s.start, s.deadline)
	m.metrics.SetState(metrics.StatePolling)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer m.client.Close()

	if m.listenPort > 0 {
		srv := server.NewServer(m.store, m.metrics.Handler(), m.listenPort, m.logger)
		if err := srv.Start(runCtx); err != nil {
			return Result{}, fmt.Errorf("failed to start status server: %w", err)
		}
	}

	m.logger.Info("bridge monitoring started",
		"session_id", s.id,
		"url", m.url,
		"poll_interval", m.pollInterval.String(),
		"max_duration", m.maxDuration.String(),
	)
	m.reporter.Banner(start, m.address, m.pollInterval, m.maxDuration)

	for m.now().Sub(s.start) < m.maxDuration {
		if err := runCtx.Err(); err != nil {
			return m.cancelled(s, err)
		}

		s.iterations++
		it := m.poll(runCtx, s)
		m.record(it)

		if it.Match != nil {
			m.reporter.Success(*it.Match)
			m.finish(store.OutcomeCompleted, metrics.StateCompleted)
			m.logger.Info("matching transaction found",
				"session_id", s.id,
				"iteration", it.Number,
				"status", it.Match.Status,
				"transaction_hash", it.Match.TransactionHash,
			)
			return Result{
				Found:       true,
				Transaction: it.Match,
				SessionID:   s.id,
				Iterations:  s.iterations,
				Elapsed:     m.now().Sub(s.start),
			}, nil
		}

		// never sleep past the deadline
		if m.now().Sub(s.start) >= m.maxDuration {
			break
		}

		if err := m.sleep(runCtx, m.pollInterval); err != nil {
			return m.cancelled(s, err)
		}
	}

	m.reporter.Timeout(m.maxDuration)
	m.finish(store.OutcomeTimeout, metrics.StateTimeout)
	m.logger.Info("bridge monitoring timed out",
		"session_id", s.id,
		"iterations", s.iterations,
	)
	return Result{
		SessionID:  s.id,
		Iterations: s.iterations,
		Elapsed:    m.now().Sub(s.start),
	}, nil
}

// poll performs one iteration: fetch, decode, report and match.
func (m *Monitor) poll(ctx context.Context, s *session) Iteration {
	now := m.now()
	it := Iteration{
		Number:    s.iterations,
		CheckedAt: now,
		Elapsed:   now.Sub(s.start),
	}
	m.reporter.Checking(it.Number, now, it.Elapsed)

	resp := m.client.Fetch(ctx, http.MethodGet, m.url, m.headers, m.requestTimeout)
	it.Latency = resp.Latency
	it.StatusCode = resp.StatusCode

	if resp.Error != nil {
		return m.fail(it, resp.Error)
	}
	if !resp.OK() {
		return m.fail(it, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	status, err := ParseStatusResponse(resp.Body)
	if err != nil {
		return m.fail(it, err)
	}

	m.reporter.TransactionCount(len(status.Transactions))
	for i, tx := range status.Transactions {
		it.Transactions = append(it.Transactions, tx)
		m.reporter.Transaction(i, tx)

		matched, err := m.safeMatch(tx)
		if err != nil {
			return m.fail(it, err)
		}
		if matched {
			match := tx
			it.Match = &match
			return it
		}
	}

	m.logger.Debug("poll completed",
		"iteration", it.Number,
		"transactions", len(status.Transactions),
		"latency_ms", it.Latency.Milliseconds(),
	)
	return it
}

// fail reports a non-fatal iteration error.
func (m *Monitor) fail(it Iteration, err error) Iteration {
	it.Err = err
	m.reporter.Error(err)
	m.logger.Warn("poll completed with error",
		"iteration", it.Number,
		"url", m.url,
		"status_code", it.StatusCode,
		"error", err.Error(),
	)
	return it
}

// safeMatch calls the matcher with panic recovery. A panic is logged with a
// correlation ID and surfaced as an error carrying the same ID.
func (m *Monitor) safeMatch(tx Transaction) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			m.logger.Error("matcher panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			matched = false
			err = fmt.Errorf("matcher panic (correlation_id: %s)", correlationID)
		}
	}()
	return m.matcher(tx), nil
}

// record stores the iteration, updates metrics and invokes callbacks.
func (m *Monitor) record(it Iteration) {
	statuses := make([]string, len(it.Transactions))
	for i, tx := range it.Transactions {
		statuses[i] = tx.Status
	}

	var errStr *string
	if it.Err != nil {
		s := it.Err.Error()
		errStr = &s
	}

	m.store.Append(store.PollRecord{
		Iteration:      it.Number,
		CheckedAt:      it.CheckedAt,
		ElapsedMs:      it.Elapsed.Milliseconds(),
		ResponseTimeMs: it.Latency.Milliseconds(),
		StatusCode:     it.StatusCode,
		Statuses:       statuses,
		Matched:        it.Match != nil,
		Error:          errStr,
	})

	m.metrics.ObservePoll(it.Number, it.Latency, it.Err)
	if it.Err == nil {
		m.metrics.SetTransactions(statuses)
	}

	for _, cb := range m.iterationCallbacks {
		invokeCallbackSafe(cb, it, m.logger)
	}
}

func (m *Monitor) cancelled(s *session, err error) (Result, error) {
	m.finish(store.OutcomeCancelled, metrics.StateCancelled)
	m.logger.Warn("bridge monitoring interrupted",
		"session_id", s.id,
		"iterations", s.iterations,
		"error", err.Error(),
	)
	return Result{
		SessionID:  s.id,
		Iterations: s.iterations,
		Elapsed:    m.now().Sub(s.start),
	}, err
}

func (m *Monitor) finish(outcome store.Outcome, state int) {
	m.store.SetOutcome(outcome)
	m.metrics.SetState(state)
}

// Address returns the monitored deposit address.
func (m *Monitor) Address() string {
	return m.address
}

// URL returns the polled status URL.
func (m *Monitor) URL() string {
	return m.url
}

// PollInterval returns the delay between iterations.
func (m *Monitor) PollInterval() time.Duration {
	return m.pollInterval
}

// MaxDuration returns the session length.
func (m *Monitor) MaxDuration() time.Duration {
	return m.maxDuration
}

// RequestTimeout returns the per-request timeout.
func (m *Monitor) RequestTimeout() time.Duration {
	return m.requestTimeout
}

// MaxIterations returns the upper bound on polls per session when requests
// return instantly: ceil(maxDuration / pollInterval).
func (m *Monitor) MaxIterations() int {
	n := m.maxDuration / m.pollInterval
	if m.maxDuration%m.pollInterval != 0 {
		n++
	}
	return int(n)
}

// invokeCallbackSafe calls an iteration callback with panic recovery.
func invokeCallbackSafe(cb func(Iteration), it Iteration, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("iteration callback panicked",
				"panic", r,
				"iteration", it.Number,
			)
		}
	}()
	cb(it)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
