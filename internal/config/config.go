// Package config handles application configuration from command-line
// flags and environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Config holds the configuration for the scraper and relay binaries.
type Config struct {
	DatabasePath    string   `long:"db" env:"DATABASE_PATH" default:"./data/scraper.db" description:"Path to the SQLite database"`
	Endpoints       []string `long:"endpoint" env:"ENDPOINTS" env-delim:"," description:"Upstream API endpoint URLs to poll"`
	IntervalSeconds int      `long:"interval" env:"SCRAPE_INTERVAL" default:"20" description:"Polling interval in seconds"`
	UserAgent       string   `long:"user-agent" env:"USER_AGENT" description:"User-Agent header for upstream requests"`
	AliasFile       string   `long:"alias-file" env:"ALIAS_FILE" description:"YAML file overriding the field alias tables"`
	LogLevel        string   `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`

	RelayListen  string `long:"relay-listen" env:"RELAY_LISTEN" default:":8080" description:"Relay listen address"`
	UpstreamBase string `long:"upstream" env:"UPSTREAM_BASE" default:"https://www.tippmix.hu" description:"Upstream base URL the relay forwards to"`
	ProxyURL     string `long:"proxy" env:"PROXY_URL" description:"Egress proxy URL for relay traffic"`
	ProxyFile    string `long:"proxy-file" env:"PROXY_FILE" description:"File holding the active egress proxy URL"`
}

// Default endpoints observed to carry the e-sport football listings.
var defaultEndpoints = []string{
	"https://www.tippmix.hu/api/sportfogadas/events?sportid=999&countryid=99999988",
}

// Load parses configuration from args and the environment.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = defaultEndpoints
	}
	if cfg.IntervalSeconds < 5 {
		cfg.IntervalSeconds = 5
	}
	return &cfg, nil
}

// IsHelp reports whether Load failed because --help was requested.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// Interval returns the polling interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ResolveProxy returns the egress proxy URL: the explicit flag first,
// then the standard proxy environment variables, then the first line of
// the proxy file. Empty means direct egress.
func (c *Config) ResolveProxy() string {
	if c.ProxyURL != "" {
		return c.ProxyURL
	}
	for _, key := range []string{"HTTPS_PROXY", "HTTP_PROXY"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	if c.ProxyFile != "" {
		if data, err := os.ReadFile(c.ProxyFile); err == nil { //nolint:gosec // operator-supplied path
			line, _, _ := strings.Cut(string(data), "\n")
			return strings.TrimSpace(line)
		}
	}
	return ""
}
