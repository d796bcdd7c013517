package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func lookupBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"result": map[string]any{
					"__typename": "User",
					"rest_id":    "7",
					"legacy": map[string]any{
						"screen_name":     "jane",
						"name":            "Jane Doe",
						"created_at":      "Wed Oct 10 20:19:24 +0000 2018",
						"followers_count": 100,
						"description":     "hello world",
					},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestUserByLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "UserByScreenName"))
		require.Contains(t, r.URL.Query().Get("variables"), "jane")
		_, _ = w.Write(lookupBody(t))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.UserByLogin(context.Background(), "jane")
	require.NoError(t, err)
	require.NotNil(t, user)

	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "jane", user.Username)
	require.Equal(t, "https://x.com/jane", user.URL)
	require.Equal(t, 100, user.FollowersCount)
}

func TestUserByLoginNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"errors":[{"message":"Could not find user with screen_name: nobody"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.UserByLogin(context.Background(), "nobody")
	require.NoError(t, err, "not-found is an outcome, not a failure")
	require.Nil(t, user)
}

func TestUserByLoginEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.UserByLogin(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestUserByLoginTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.UserByLogin(context.Background(), "jane")
	require.Error(t, err)
}

func TestUserByLoginMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.UserByLogin(context.Background(), "jane")
	require.Error(t, err)
}
