// Package metrics exposes Prometheus counters for scrape runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_scraper_pages_fetched_total",
		Help: "Total timeline pages fetched",
	})
	TweetsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_scraper_tweets_parsed_total",
		Help: "Total tweets parsed successfully",
	})
	ParseSkips = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_scraper_parse_skips_total",
		Help: "Total entities dropped due to missing or malformed fields",
	})
	UserLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timeline_scraper_user_lookups_total",
		Help: "Total user-by-handle lookups",
	}, []string{"outcome"})
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_scraper_cache_hits_total",
		Help: "Total HTTP cache hits",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_scraper_cache_misses_total",
		Help: "Total HTTP cache misses",
	})
)

func init() {
	prometheus.MustRegister(PagesFetched, TweetsParsed, ParseSkips, UserLookups, CacheHits, CacheMisses)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
// An empty addr disables the server.
func StartServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }() //nolint:errcheck,gosec // best-effort sidecar listener
}

// LookupOutcome labels for UserLookups.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)
