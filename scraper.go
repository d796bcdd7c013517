// Package scraper orchestrates timeline collection for a list of target
// handles: each handle is resolved to a user id, the user's timeline is
// paginated, and both the profile and the tweets are returned per target.
//
// Basic usage:
//
//	client, err := twitter.New(ctx, twitter.WithBrowserCookies())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results := scraper.Run(ctx, client, []string{"xdevelopers"},
//	    scraper.WithLimit(100))
package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/njraladdin/twitter-user-timeline-scraper/twitter"
)

// Fetcher is the subset of the API client the orchestrator needs.
// *twitter.Client satisfies it.
type Fetcher interface {
	UserByLogin(ctx context.Context, username string) (*twitter.User, error)
	UserTweets(ctx context.Context, userID int64, limit int) ([]*twitter.Tweet, error)
}

// TargetResult is the outcome for a single handle. A nil User with a nil
// Err means the handle did not resolve to an account.
type TargetResult struct {
	Handle string
	User   *twitter.User
	Tweets []*twitter.Tweet
	Err    error
}

// Option configures a Run call.
type Option func(*config)

type config struct {
	logger *slog.Logger
	limit  int
	delay  time.Duration
}

// WithLimit caps the number of tweets collected per target. Zero or
// negative means no cap.
func WithLimit(limit int) Option {
	return func(c *config) { c.limit = limit }
}

// WithDelay sets the pause between consecutive targets.
func WithDelay(delay time.Duration) Option {
	return func(c *config) { c.delay = delay }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Run processes targets sequentially. One target's failure never aborts
// the run; its result carries the error and processing continues with the
// next handle. Run stops early only when ctx is canceled, returning the
// results accumulated so far.
func Run(ctx context.Context, client Fetcher, handles []string, opts ...Option) []TargetResult {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	results := make([]TargetResult, 0, len(handles))
	for i, raw := range handles {
		handle := NormalizeHandle(raw)
		if handle == "" {
			continue
		}

		if i > 0 && cfg.delay > 0 {
			if !sleep(ctx, cfg.delay) {
				return results
			}
		}
		if ctx.Err() != nil {
			return results
		}

		cfg.logger.InfoContext(ctx, "processing target", "handle", handle, "position", i+1, "total", len(handles))
		results = append(results, runTarget(ctx, client, handle, cfg))
	}
	return results
}

func runTarget(ctx context.Context, client Fetcher, handle string, cfg *config) TargetResult {
	result := TargetResult{Handle: handle}

	user, err := client.UserByLogin(ctx, handle)
	if err != nil {
		cfg.logger.ErrorContext(ctx, "lookup failed", "handle", handle, "error", err)
		result.Err = err
		return result
	}
	if user == nil {
		cfg.logger.WarnContext(ctx, "user not found", "handle", handle)
		return result
	}
	result.User = user

	tweets, err := client.UserTweets(ctx, user.ID, cfg.limit)
	if err != nil {
		cfg.logger.ErrorContext(ctx, "timeline fetch failed", "handle", handle, "error", err)
		result.Err = err
		return result
	}
	result.Tweets = tweets

	cfg.logger.InfoContext(ctx, "target done", "handle", handle, "tweets", len(tweets))
	return result
}

// NormalizeHandle strips whitespace and a leading @ from a handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
