package twitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenObject(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "missing rest_id",
			in:   map[string]any{"legacy": map[string]any{"a": 1}},
			want: nil,
		},
		{
			name: "non-string rest_id",
			in:   map[string]any{"rest_id": 5.0, "legacy": map[string]any{}},
			want: nil,
		},
		{
			name: "non-numeric rest_id",
			in:   map[string]any{"rest_id": "abc", "legacy": map[string]any{}},
			want: nil,
		},
		{
			name: "legacy wins on collision",
			in: map[string]any{
				"a":       1,
				"legacy":  map[string]any{"a": 2},
				"rest_id": "5",
			},
			want: map[string]any{
				"a":       2,
				"rest_id": "5",
				"id":      int64(5),
				"id_str":  "5",
			},
		},
		{
			name: "top-level fields preserved",
			in: map[string]any{
				"is_blue_verified": true,
				"legacy":           map[string]any{"screen_name": "jane"},
				"rest_id":          "42",
			},
			want: map[string]any{
				"is_blue_verified": true,
				"screen_name":      "jane",
				"rest_id":          "42",
				"id":               int64(42),
				"id_str":           "42",
			},
		},
		{
			name: "no legacy sub-object",
			in:   map[string]any{"rest_id": "7", "views": map[string]any{"count": "3"}},
			want: map[string]any{
				"views":   map[string]any{"count": "3"},
				"rest_id": "7",
				"id":      int64(7),
				"id_str":  "7",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flattenObject(tt.in)
			require.Equal(t, tt.want, got)
			if got != nil {
				require.NotContains(t, got, "legacy")
			}
		})
	}
}

func TestFlattenObjectDoesNotMutateInput(t *testing.T) {
	in := map[string]any{
		"rest_id": "5",
		"legacy":  map[string]any{"a": 2},
	}
	flattenObject(in)
	require.Contains(t, in, "legacy")
}

func TestFlattenResponse(t *testing.T) {
	tree := map[string]any{
		"data": map[string]any{
			"entry": map[string]any{
				"result": map[string]any{
					"__typename": "Tweet",
					"rest_id":    "100",
					"legacy":     map[string]any{"full_text": "hello"},
					"core": map[string]any{
						"user_results": map[string]any{
							"result": map[string]any{
								"__typename": "User",
								"rest_id":    "7",
								"legacy":     map[string]any{"screen_name": "jane"},
							},
						},
					},
				},
			},
			"hidden": map[string]any{
				"result": map[string]any{
					"__typename": "TweetWithVisibilityResults",
					"tweet": map[string]any{
						"rest_id": "101",
						"legacy":  map[string]any{"full_text": "restricted"},
					},
				},
			},
			// Typed control objects without legacy/rest_id are skipped.
			"cursorish": map[string]any{
				"__typename": "TimelineTimelineCursor",
				"value":      "tok",
			},
			"partial": map[string]any{
				"__typename": "User",
				"rest_id":    "8",
			},
		},
	}

	res := flattenResponse(tree)

	require.Len(t, res.tweets, 2)
	require.Equal(t, "hello", res.tweets["100"]["full_text"])
	require.Equal(t, "restricted", res.tweets["101"]["full_text"])
	require.ElementsMatch(t, []string{"100", "101"}, res.tweetOrder)

	require.Len(t, res.users, 1)
	require.Equal(t, []string{"7"}, res.userOrder)
	require.Equal(t, "jane", res.users["7"]["screen_name"])
}

func TestFlattenResponseEmpty(t *testing.T) {
	res := flattenResponse(map[string]any{"data": map[string]any{}})
	require.Empty(t, res.tweets)
	require.Empty(t, res.users)
	require.Empty(t, res.tweetOrder)
	require.Empty(t, res.userOrder)
}
