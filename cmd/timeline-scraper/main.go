// Command timeline-scraper collects user timelines from X/Twitter.
//
// Usage:
//
//	timeline-scraper xdevelopers golang
//	timeline-scraper -targets targets.txt -limit 50
//	timeline-scraper -config scraper.yaml
//
// Credentials come from the TW_AUTH_TOKEN and TW_CT0_TOKEN environment
// variables, or from browser cookie stores unless -no-browser is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	scraper "github.com/njraladdin/twitter-user-timeline-scraper"
	"github.com/njraladdin/twitter-user-timeline-scraper/config"
	"github.com/njraladdin/twitter-user-timeline-scraper/httpcache"
	"github.com/njraladdin/twitter-user-timeline-scraper/metrics"
	"github.com/njraladdin/twitter-user-timeline-scraper/twitter"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML config file")
	targetsPath := flag.String("targets", "", "file with one handle per line")
	limit := flag.Int("limit", 0, "max tweets per target (-1 for unlimited, 0 keeps config value)")
	outputDir := flag.String("output", "", "output directory (overrides config)")
	metricsAddr := flag.String("metrics", "", "Prometheus listen address, e.g. :9090 (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	noBrowser := flag.Bool("no-browser", false, "disable reading cookies from browser stores")
	noCache := flag.Bool("no-cache", false, "disable HTTP response caching")
	cacheTTL := flag.Duration("cache-ttl", 15*time.Minute, "cache time-to-live")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			return 1
		}
	}
	if *limit != 0 {
		cfg.TweetLimit = *limit
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	targets := append([]string(nil), cfg.Targets...)
	if *targetsPath != "" {
		fromFile, err := config.TargetsFromFile(*targetsPath)
		if err != nil {
			logger.Error("failed to read targets file", "path", *targetsPath, "error", err)
			return 1
		}
		targets = append(targets, fromFile...)
	}
	targets = append(targets, flag.Args()...)

	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: timeline-scraper [options] <handle> [<handle>...]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		return 1
	}

	metrics.StartServer(cfg.MetricsAddr)

	var httpCache *httpcache.Cache
	if !*noCache {
		var err error
		httpCache, err = httpcache.New(*cacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			logger.Debug("HTTP cache initialized", "ttl", cacheTTL.String())
		}
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		logger.Error("failed to read credentials from environment", "error", err)
		return 1
	}

	opts := []twitter.Option{twitter.WithLogger(logger)}
	if cookies := creds.Cookies(); len(cookies) > 0 {
		opts = append(opts, twitter.WithCookies(cookies))
	}
	if creds.UserAgent != "" {
		opts = append(opts, twitter.WithUserAgent(creds.UserAgent))
	}
	if !*noBrowser {
		opts = append(opts, twitter.WithBrowserCookies())
	}
	if httpCache != nil {
		opts = append(opts, twitter.WithCache(httpCache))
	}

	ctx := context.Background()

	client, err := twitter.New(ctx, opts...)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return 1
	}

	results := scraper.Run(ctx, client, targets,
		scraper.WithLogger(logger),
		scraper.WithLimit(cfg.TweetLimit),
		scraper.WithDelay(cfg.DelayBetweenTargets),
	)

	exitCode := 0
	for _, result := range results {
		switch {
		case result.Err != nil:
			exitCode = 1
		case result.User == nil:
			logger.Warn("no account for handle, nothing to write", "handle", result.Handle)
		case len(result.Tweets) == 0:
			logger.Info("no tweets collected, nothing to write", "handle", result.Handle)
		default:
			if err := writeResult(cfg.OutputDir, result, cfg.TweetLimit, logger); err != nil {
				logger.Error("failed to write output", "handle", result.Handle, "error", err)
				exitCode = 1
			}
		}
	}
	return exitCode
}

// writeResult saves one target's tweets and a metadata envelope as two
// timestamped JSON documents under dir.
func writeResult(dir string, result scraper.TargetResult, limit int, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	timestamp := time.Now().Format("20060102_150405")

	tweetsPath := filepath.Join(dir, fmt.Sprintf("tweets_%s_%s.json", result.Handle, timestamp))
	if err := writeJSON(tweetsPath, result.Tweets); err != nil {
		return err
	}
	logger.Info("tweets saved", "handle", result.Handle, "path", tweetsPath, "count", len(result.Tweets))

	metadata := map[string]any{
		"scrape_info": map[string]any{
			"timestamp":           time.Now().Format(time.RFC3339),
			"tweets_collected":    len(result.Tweets),
			"tweet_limit_setting": limit,
			"scraper_version":     version,
		},
		"user_info": result.User,
	}
	metadataPath := filepath.Join(dir, fmt.Sprintf("user_metadata_%s_%s.json", result.Handle, timestamp))
	if err := writeJSON(metadataPath, metadata); err != nil {
		return err
	}
	logger.Info("user metadata saved", "handle", result.Handle, "path", metadataPath)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
