// Package config loads run configuration and API credentials.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// NoLimit disables the per-target tweet cap.
const NoLimit = -1

// Config is the run configuration: which handles to scrape and how.
type Config struct {
	// Targets are the handles to scrape, without the @ prefix.
	Targets []string `yaml:"targets"`
	// TweetLimit caps tweets collected per target. NoLimit (-1) disables it.
	TweetLimit int `yaml:"tweetLimit"`
	// DelayBetweenTargets spaces out sequential targets to stay inside the
	// API's informal rate limits.
	DelayBetweenTargets time.Duration `yaml:"delayBetweenTargets"`
	// OutputDir receives the per-target JSON documents.
	OutputDir string `yaml:"outputDir"`
	// MetricsAddr enables the Prometheus listener when non-empty.
	MetricsAddr string `yaml:"metricsAddr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TweetLimit:          10,
		DelayBetweenTargets: time.Second,
		OutputDir:           "output",
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.TweetLimit < NoLimit || cfg.TweetLimit == 0 {
		return cfg, fmt.Errorf("tweetLimit must be positive or %d, got %d", NoLimit, cfg.TweetLimit)
	}
	if cfg.DelayBetweenTargets < 0 {
		return cfg, errors.New("delayBetweenTargets must not be negative")
	}
	return cfg, nil
}

// TargetsFromFile reads one handle per line; blank lines and '#' comments
// are skipped. Leading @ is stripped.
func TargetsFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var targets []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, strings.TrimPrefix(line, "@"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read targets file %s: %w", path, err)
	}
	return targets, nil
}

// Credentials holds the session tokens the API requires, read from the
// environment. Both tokens come from an authenticated browser session.
type Credentials struct {
	AuthToken string `envconfig:"TW_AUTH_TOKEN"`
	CSRFToken string `envconfig:"TW_CT0_TOKEN"`
	UserAgent string `envconfig:"TW_USER_AGENT"`
}

// LoadCredentials reads credentials from the environment. The result may be
// incomplete; callers with another cookie source (browser stores) may still
// proceed.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return Credentials{}, fmt.Errorf("read credentials from environment: %w", err)
	}
	return creds, nil
}

// Cookies returns the credentials in cookie form, omitting empty values.
func (c Credentials) Cookies() map[string]string {
	cookies := make(map[string]string)
	if c.AuthToken != "" {
		cookies["auth_token"] = c.AuthToken
	}
	if c.CSRFToken != "" {
		cookies["ct0"] = c.CSRFToken
	}
	return cookies
}
