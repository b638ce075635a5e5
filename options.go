package bridgewatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	address            string
	baseURL            string
	pollInterval       time.Duration
	maxDuration        time.Duration
	requestTimeout     time.Duration
	headers            map[string]string
	matcher            Matcher
	logger             *slog.Logger
	output             io.Writer
	listenPort         int
	iterationCallbacks []func(Iteration)
	now                func() time.Time
	sleep              func(context.Context, time.Duration) error
}

// Option is a function that configures a [Monitor] during construction.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithAddress sets the deposit address whose bridge status is polled.
//
// Defaults to [DefaultAddress].
func WithAddress(address string) Option {
	return func(cfg *monitorConfig) error {
		address = strings.TrimSpace(address)
		if address == "" {
			return errors.New("address cannot be empty")
		}
		if strings.ContainsAny(address, "/?#") {
			return fmt.Errorf("address %q must not contain '/', '?' or '#'", address)
		}
		cfg.address = address
		return nil
	}
}

// WithBaseURL sets the bridge API root. The status URL is
// "<baseURL>/status/<address>".
//
// Defaults to [DefaultBaseURL]. Returns an error unless the URL is absolute
// http or https.
func WithBaseURL(baseURL string) Option {
	return func(cfg *monitorConfig) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("base url must include a host")
		}
		cfg.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithPollInterval sets the flat delay between poll iterations.
//
// Defaults to 30 seconds. Returns an error if the duration is not positive.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithMaxDuration sets how long the session polls before giving up.
//
// Defaults to 5 minutes. Returns an error if the duration is not positive.
func WithMaxDuration(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("max duration must be positive")
		}
		cfg.maxDuration = d
		return nil
	}
}

// WithRequestTimeout bounds each HTTP request, including reading the body.
//
// Defaults to 10 seconds. Returns an error if the duration is not positive.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithHeader adds a request header. Keys are canonicalized, so "accept"
// replaces the default Accept: application/json.
func WithHeader(key, value string) Option {
	return func(cfg *monitorConfig) error {
		if strings.TrimSpace(key) == "" {
			return errors.New("header key cannot be empty")
		}
		cfg.headers[http.CanonicalHeaderKey(key)] = value
		return nil
	}
}

// WithMatcher sets the predicate that ends the session successfully.
//
// Defaults to [DefaultMatcher]. Returns an error if m is nil.
func WithMatcher(m Matcher) Option {
	return func(cfg *monitorConfig) error {
		if m == nil {
			return errors.New("matcher cannot be nil")
		}
		cfg.matcher = m
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for operational logs.
//
// If not specified, [slog.Default] is used. Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithOutput sets where human-readable progress is written.
//
// Defaults to os.Stdout. A nil writer discards progress output.
func WithOutput(w io.Writer) Option {
	return func(cfg *monitorConfig) error {
		if w == nil {
			w = io.Discard
		}
		cfg.output = w
		return nil
	}
}

// WithListenPort starts the status server on the given port for the duration
// of [Monitor.Run]. Zero, the default, disables the server.
func WithListenPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("listen port must be between 0 and 65535, got %d", port)
		}
		cfg.listenPort = port
		return nil
	}
}

// WithIterationCallback registers a function called after every iteration.
//
// Callbacks run synchronously on the polling goroutine in registration order
// and must not block. Panics are recovered and logged. Nil callbacks are
// ignored.
//
// Example:
//
//	m, err := bridgewatch.New(
//	    bridgewatch.WithIterationCallback(func(it bridgewatch.Iteration) {
//	        if it.Err != nil {
//	            log.Printf("poll %d failed: %v", it.Number, it.Err)
//	        }
//	    }),
//	)
func WithIterationCallback(cb func(Iteration)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.iterationCallbacks = append(cfg.iterationCallbacks, cb)
		return nil
	}
}

// WithClock replaces the wall clock and the interval sleep. It exists so
// sessions can be driven deterministically; sleep must return ctx.Err() when
// ctx is done.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(cfg *monitorConfig) error {
		if now == nil || sleep == nil {
			return errors.New("clock functions cannot be nil")
		}
		cfg.now = now
		cfg.sleep = sleep
		return nil
	}
}
