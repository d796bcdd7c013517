// Package auth provides session-cookie management for the x.com API.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// Domain is the cookie domain every source reads and the jar serves.
const Domain = "x.com"

// Cookie names the API cares about. AuthToken and CSRF are the two the
// GraphQL endpoints require; the rest improve session fidelity when present.
const (
	CookieAuthToken = "auth_token"
	CookieCSRF      = "ct0"
)

// essentialCookies lists every cookie worth carrying into the jar.
var essentialCookies = []string{CookieAuthToken, CookieCSRF, "twid", "kdt", "att", "guest_id"}

// NewCookieJar creates an http.CookieJar populated with the given cookies
// for the API domain.
func NewCookieJar(cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse("https://" + Domain)
	if err != nil {
		return nil, err
	}

	var httpCookies []*http.Cookie
	for name, value := range cookies {
		if value != "" {
			httpCookies = append(httpCookies, &http.Cookie{
				Name:   name,
				Value:  value,
				Domain: "." + Domain,
				Path:   "/",
			})
		}
	}

	jar.SetCookies(u, httpCookies)
	return jar, nil
}

// Source represents a source of authentication cookies.
type Source interface {
	// Cookies returns session cookies, or nil if this source has none.
	Cookies(ctx context.Context) (map[string]string, error)
}

// ChainSources returns cookies from the first source that provides them.
func ChainSources(ctx context.Context, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		cookies, err := src.Cookies(ctx)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}

// Complete reports whether the cookie set contains everything the API
// requires for an authenticated request.
func Complete(cookies map[string]string) bool {
	return cookies[CookieAuthToken] != "" && cookies[CookieCSRF] != ""
}
