package config

import (
	"sort"

	"github.com/jpalmerr/bridgewatch"
)

// BuildOptions converts parsed configuration into monitor options.
//
// Logger, output and callbacks are not part of the file format; callers
// append those options themselves.
func BuildOptions(cfg *Config) []bridgewatch.Option {
	opts := []bridgewatch.Option{
		bridgewatch.WithAddress(cfg.Address),
		bridgewatch.WithBaseURL(cfg.BaseURL),
		bridgewatch.WithPollInterval(cfg.PollInterval.Duration()),
		bridgewatch.WithMaxDuration(cfg.MaxDuration.Duration()),
		bridgewatch.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		bridgewatch.WithListenPort(cfg.ListenPort),
		bridgewatch.WithMatcher(buildMatcher(cfg.TargetStatuses)),
	}

	// sort keys for deterministic ordering
	keys := make([]string, 0, len(cfg.Headers))
	for k := range cfg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, bridgewatch.WithHeader(k, cfg.Headers[k]))
	}

	return opts
}

// buildMatcher matches any of the given statuses.
func buildMatcher(statuses []string) bridgewatch.Matcher {
	if len(statuses) == 0 {
		return bridgewatch.DefaultMatcher
	}
	if len(statuses) == 1 {
		return bridgewatch.StatusIs(statuses[0])
	}

	matchers := make([]bridgewatch.Matcher, len(statuses))
	for i, s := range statuses {
		matchers[i] = bridgewatch.StatusIs(s)
	}
	return bridgewatch.AnyOf(matchers...)
}
