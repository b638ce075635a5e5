// Package config provides YAML configuration parsing for bridgewatch.
//
// Every key is optional; omitted keys fall back to the library defaults, so
// an empty file monitors the default address with the standard cadence.
//
// Example configuration:
//
//	address: ${BRIDGE_ADDRESS}
//	base_url: https://bridge.polymarket.com
//	poll_interval: 30s
//	max_duration: 5m
//	request_timeout: 10s
//	target_statuses: [COMPLETED]
//	listen_port: 9464
//	headers:
//	  User-Agent: bridgewatch/${VERSION:-dev}
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/bridgewatch"
)

// minPollInterval prevents accidental hammering of the bridge API.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for bridgewatch.
//
// Use [Load], [Parse] or [Default] to create a Config.
type Config struct {
	// Address is the deposit address to monitor.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Address string `yaml:"address"`

	// BaseURL is the bridge API root; the status URL is <base_url>/status/<address>.
	BaseURL string `yaml:"base_url"`

	// PollInterval is the flat delay between polls. Defaults to 30s.
	PollInterval Duration `yaml:"poll_interval"`

	// MaxDuration is how long to poll before timing out. Defaults to 5m.
	MaxDuration Duration `yaml:"max_duration"`

	// RequestTimeout bounds each HTTP request. Defaults to 10s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// TargetStatuses ends the session when any transaction has one of these
	// statuses. Defaults to [COMPLETED].
	TargetStatuses []string `yaml:"target_statuses"`

	// ListenPort starts the status server when non-zero.
	ListenPort int `yaml:"listen_port"`

	// Headers are extra HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
// Group 1: variable name, group 2: ":-default" when present, group 3: default value.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment
// values. An unset variable without a default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return sub[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = bridgewatch.DefaultAddress
	}
	if c.BaseURL == "" {
		c.BaseURL = bridgewatch.DefaultBaseURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(bridgewatch.DefaultPollInterval)
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = Duration(bridgewatch.DefaultMaxDuration)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(bridgewatch.DefaultRequestTimeout)
	}
	if len(c.TargetStatuses) == 0 {
		c.TargetStatuses = []string{bridgewatch.StatusCompleted}
	}
}

// Validate checks a configuration without expanding environment variables.
// Use it after overriding fields (for example from command-line flags).
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if strings.ContainsAny(c.Address, "/?#") {
		return fmt.Errorf("address %q must not contain '/', '?' or '#'", c.Address)
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base_url: host is required")
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.MaxDuration.Duration() <= 0 {
		return fmt.Errorf("max_duration must be positive, got %s", c.MaxDuration.Duration())
	}
	if c.RequestTimeout.Duration() <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout.Duration())
	}
	if c.RequestTimeout.Duration() > c.MaxDuration.Duration() {
		return fmt.Errorf("request_timeout (%s) must not exceed max_duration (%s)",
			c.RequestTimeout.Duration(), c.MaxDuration.Duration())
	}

	for i, s := range c.TargetStatuses {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("target_statuses[%d]: status cannot be empty", i)
		}
	}

	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port must be between 0 and 65535, got %d", c.ListenPort)
	}

	for k := range c.Headers {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("headers: key cannot be empty")
		}
	}

	return nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.Address)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	c.Address = strings.TrimSpace(expanded)

	expanded, err = expandEnvVars(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	c.BaseURL = expanded

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	return c.Validate()
}
