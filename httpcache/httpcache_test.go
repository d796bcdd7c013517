package httpcache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func init() {
	// Tests should not pace themselves against the real API rate.
	SetRateLimit(1000, 1000)
}

func TestURLToKey(t *testing.T) {
	k1 := URLToKey("https://x.com/a")
	k2 := URLToKey("https://x.com/b")

	if k1 == k2 {
		t.Error("different URLs should produce different keys")
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
	if k1 != URLToKey("https://x.com/a") {
		t.Error("key must be stable for the same URL")
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{StatusCode: 429, URL: "https://x.com/x"}
	want := "HTTP 429 fetching https://x.com/x"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFetchURLNoCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatalf("request creation failed: %v", err)
	}

	body, err := FetchURL(context.Background(), nil, srv.Client(), req, slog.Default())
	if err != nil {
		t.Fatalf("FetchURL failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}
}

func TestFetchURLPermanentErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatalf("request creation failed: %v", err)
	}

	_, err = FetchURL(context.Background(), nil, srv.Client(), req, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", httpErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("server called %d times, 403 must not be retried", calls)
	}
}

func TestFetchURLRetriesTransientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatalf("request creation failed: %v", err)
	}

	body, err := FetchURL(context.Background(), nil, srv.Client(), req, nil)
	if err != nil {
		t.Fatalf("FetchURL failed after retry: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
}

func TestFetchURLWithDiskCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte("cached-body")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	cache, err := NewWithPath(time.Minute, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath failed: %v", err)
	}
	defer cache.Close() //nolint:errcheck // test cleanup

	ctx := context.Background()
	for range 2 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, http.NoBody)
		if err != nil {
			t.Fatalf("request creation failed: %v", err)
		}
		body, err := FetchURL(ctx, cache, srv.Client(), req, nil)
		if err != nil {
			t.Fatalf("FetchURL failed: %v", err)
		}
		if string(body) != "cached-body" {
			t.Errorf("body = %q", body)
		}
	}

	if calls != 1 {
		t.Errorf("server called %d times, second fetch should hit cache", calls)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate_limited", &HTTPError{StatusCode: 429}, true},
		{"server_error", &HTTPError{StatusCode: 500}, true},
		{"bad_gateway", &HTTPError{StatusCode: 502}, true},
		{"not_found", &HTTPError{StatusCode: 404}, false},
		{"forbidden", &HTTPError{StatusCode: 403}, false},
		{"network", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
