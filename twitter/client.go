// Package twitter fetches x.com user profiles and timelines through the
// GraphQL API used by the web client, normalizing its nested responses into
// flat domain entities.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/njraladdin/twitter-user-timeline-scraper/auth"
	"github.com/njraladdin/twitter-user-timeline-scraper/httpcache"
)

const (
	gqlBase = "https://x.com/i/api/graphql"

	opUserByScreenName = "32pL5BWe9WKeSK1MoPvFQQ/UserByScreenName"
	opUserTweets       = "iXH7ZKZLgatGaM6ZAWc-cw/UserTweets"

	// Public web app bearer token; identifies the client, not the session.
	bearerToken = "Bearer AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
)

// ErrNoCookies indicates no cookie source yielded a usable session.
var ErrNoCookies = errors.New("no cookies available")

// Client issues authenticated GraphQL requests.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	userAgent  string
	csrfToken  string
	apiBase    string
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	cookies        map[string]string
	logger         *slog.Logger
	cache          httpcache.Cacher
	userAgent      string
	apiBase        string
	timeout        time.Duration
	browserCookies bool
}

// WithCookies sets explicit cookie values.
func WithCookies(cookies map[string]string) Option {
	return func(c *clientConfig) { c.cookies = cookies }
}

// WithBrowserCookies enables reading cookies from browser stores.
func WithBrowserCookies() Option {
	return func(c *clientConfig) { c.browserCookies = true }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithCache enables HTTP response caching.
func WithCache(cache httpcache.Cacher) Option {
	return func(c *clientConfig) { c.cache = cache }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) { c.userAgent = ua }
}

// WithBaseURL overrides the GraphQL endpoint base. Intended for tests.
func WithBaseURL(base string) Option {
	return func(c *clientConfig) { c.apiBase = base }
}

// New creates a Client.
// Cookie sources: WithCookies > environment variables > browser.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		logger:  slog.Default(),
		apiBase: gqlBase,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var sources []auth.Source
	if len(cfg.cookies) > 0 {
		sources = append(sources, auth.NewStaticSource(cfg.cookies))
	}
	sources = append(sources, auth.EnvSource{})
	if cfg.browserCookies {
		sources = append(sources, auth.NewBrowserSource(cfg.logger))
	}

	cookies, err := auth.ChainSources(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("cookie retrieval failed: %w", err)
	}
	if !auth.Complete(cookies) {
		return nil, fmt.Errorf("%w: set %v or use WithCookies/WithBrowserCookies",
			ErrNoCookies, auth.EnvVarNames())
	}

	jar, err := auth.NewCookieJar(cookies)
	if err != nil {
		return nil, fmt.Errorf("cookie jar creation failed: %w", err)
	}

	ua := cfg.userAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	cfg.logger.InfoContext(ctx, "twitter client created", "cookie_count", len(cookies))

	return &Client{
		httpClient: &http.Client{Jar: jar, Timeout: cfg.timeout},
		cache:      cfg.cache,
		logger:     cfg.logger,
		userAgent:  ua,
		csrfToken:  cookies[auth.CookieCSRF],
		apiBase:    cfg.apiBase,
	}, nil
}

// get issues one GraphQL GET against the given operation. Non-2xx statuses
// surface as *httpcache.HTTPError; the body is returned raw.
func (c *Client) get(ctx context.Context, op string, params url.Values, referer string) ([]byte, error) {
	apiURL := c.apiBase + "/" + op + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	c.setHeaders(req, referer)

	return httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
}

// setHeaders applies the browser-parity header set the API expects.
func (c *Client) setHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", bearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Priority", "u=1, i")
	req.Header.Set("X-Twitter-Active-User", "yes")
	req.Header.Set("X-Twitter-Client-Language", "en")
	req.Header.Set("X-Twitter-Auth-Type", "OAuth2Session")
	req.Header.Set("X-Csrf-Token", c.csrfToken)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}

// encodeParams builds the query parameters the GraphQL endpoints expect:
// every map value is JSON-encoded compactly with nil entries stripped.
func encodeParams(params map[string]any) (url.Values, error) {
	values := url.Values{}
	for key, v := range params {
		m, ok := v.(map[string]any)
		if !ok {
			values.Set(key, fmt.Sprint(v))
			continue
		}
		clean := make(map[string]any, len(m))
		for k, mv := range m {
			if mv != nil {
				clean[k] = mv
			}
		}
		encoded, err := json.Marshal(clean)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		values.Set(key, string(encoded))
	}
	return values, nil
}

// graphQLErrors extracts the messages from a response's errors array, if any.
func graphQLErrors(tree map[string]any) []string {
	raw, ok := tree["errors"].([]any)
	if !ok {
		return nil
	}
	var msgs []string
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			if msg, ok := m["message"].(string); ok {
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs
}
