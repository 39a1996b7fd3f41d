// Package config provides YAML configuration parsing for slotwatch.
//
// Every key is optional; an empty file yields the built-in defaults.
//
// Example configuration:
//
//	interval: 1m
//	status_port: 8080
//
//	source:
//	  url: https://m.hsyuntai.com/med/hp/hospitals/100044/registration/doctorDetails225
//	  timeout: 10s
//	  headers:
//	    unicode: ${HSYUNTAI_UNICODE}
//	  query:
//	    docId: "489437"
//
//	rules:
//	  cost: 17
//	  cutoff: "03-06"
//	  full_marker: 号满
//
//	pushplus:
//	  token: ${PUSHPLUS_TOKEN:-}
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/schedule"
)

// minInterval keeps the monitor from hammering the hospital API.
const minInterval = 1 * time.Second

// Config is the root configuration structure for slotwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse] or [Default] to create one.
type Config struct {
	// Interval is the time between checks. Defaults to 1m.
	Interval Duration `yaml:"interval"`

	// StatusPort serves the last check over HTTP. 0 disables it.
	StatusPort int `yaml:"status_port"`

	Source   SourceConfig   `yaml:"source"`
	Rules    RulesConfig    `yaml:"rules"`
	PushPlus PushPlusConfig `yaml:"pushplus"`
}

// SourceConfig describes the appointment API request.
//
// When URL is empty the built-in doctor schedule request is used, and
// Headers and Query fall back to its values unless given.
type SourceConfig struct {
	// URL supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Headers are sent with every request. Values support substitution.
	Headers map[string]string `yaml:"headers"`

	// Query parameters are added to every request. Values support substitution.
	Query map[string]string `yaml:"query"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`
}

// RulesConfig sets the slot filter rules.
type RulesConfig struct {
	// Cost is the exact registration fee a slot must have. Defaults to 17.
	Cost *float64 `yaml:"cost"`

	// Cutoff is the exclusive month-day limit, "MM-DD". Defaults to "03-06".
	Cutoff string `yaml:"cutoff"`

	// FullMarker excludes slots whose state contains it. Defaults to "号满".
	FullMarker string `yaml:"full_marker"`
}

// PushPlusConfig configures the PushPlus webhook.
type PushPlusConfig struct {
	// URL of the send endpoint. Defaults to the public PushPlus API.
	URL string `yaml:"url"`

	// Token authenticates with PushPlus. Empty disables delivery.
	// Supports environment variable substitution.
	Token string `yaml:"token"`

	// TitleSuffix follows the timestamp in the message title.
	TitleSuffix string `yaml:"title_suffix"`

	// Timeout is the webhook request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`
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

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (present when a default was given)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return def
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
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the source URL, header and query
// values, and in the PushPlus URL and token. Missing keys take defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = Duration(slotwatch.DefaultInterval)
	}

	if c.Source.URL == "" {
		def := slotwatch.DefaultSource()
		c.Source.URL = def.URL
		if c.Source.Headers == nil {
			c.Source.Headers = def.Headers
		}
		if c.Source.Query == nil {
			c.Source.Query = def.Query
		}
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = Duration(slotwatch.DefaultTimeout)
	}

	rules := schedule.DefaultRules()
	if c.Rules.Cost == nil {
		cost := rules.Cost
		c.Rules.Cost = &cost
	}
	if c.Rules.Cutoff == "" {
		c.Rules.Cutoff = fmt.Sprintf("%02d-%02d", int(rules.CutoffMonth), rules.CutoffDay)
	}
	if c.Rules.FullMarker == "" {
		c.Rules.FullMarker = rules.FullMarker
	}

	if c.PushPlus.Timeout == 0 {
		c.PushPlus.Timeout = Duration(slotwatch.DefaultTimeout)
	}
}

func (c *Config) expand() error {
	var err error

	if c.Source.URL, err = expandEnvVars(c.Source.URL); err != nil {
		return fmt.Errorf("source: url: %w", err)
	}
	for k, v := range c.Source.Headers {
		if c.Source.Headers[k], err = expandEnvVars(v); err != nil {
			return fmt.Errorf("source: headers[%s]: %w", k, err)
		}
	}
	for k, v := range c.Source.Query {
		if c.Source.Query[k], err = expandEnvVars(v); err != nil {
			return fmt.Errorf("source: query[%s]: %w", k, err)
		}
	}

	if c.PushPlus.URL, err = expandEnvVars(c.PushPlus.URL); err != nil {
		return fmt.Errorf("pushplus: url: %w", err)
	}
	if c.PushPlus.Token, err = expandEnvVars(c.PushPlus.Token); err != nil {
		return fmt.Errorf("pushplus: token: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}

	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("status_port must be between 0 and 65535, got %d", c.StatusPort)
	}

	if err := validateURL(c.Source.URL); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := validateTimeout(c.Source.Timeout); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if *c.Rules.Cost < 0 {
		return fmt.Errorf("rules: cost cannot be negative, got %v", *c.Rules.Cost)
	}
	if _, _, err := parseCutoff(c.Rules.Cutoff); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	if c.PushPlus.URL != "" {
		if err := validateURL(c.PushPlus.URL); err != nil {
			return fmt.Errorf("pushplus: %w", err)
		}
	}
	if err := validateTimeout(c.PushPlus.Timeout); err != nil {
		return fmt.Errorf("pushplus: %w", err)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("url must have a scheme (http:// or https://)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

func validateTimeout(d Duration) error {
	if d.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", d.Duration())
	}
	if d.Duration() < time.Second {
		return fmt.Errorf("timeout must be at least 1s, got %s", d.Duration())
	}
	return nil
}

// parseCutoff reads an "MM-DD" string. A leap year is used so 02-29 passes.
func parseCutoff(s string) (time.Month, int, error) {
	t, err := time.Parse("2006-1-2", "2024-"+s)
	if err != nil {
		return 0, 0, fmt.Errorf("cutoff must be MM-DD, got %q", s)
	}
	return t.Month(), t.Day(), nil
}
