package twitter

import (
	"strconv"

	"github.com/njraladdin/twitter-user-timeline-scraper/jsontree"
)

// The GraphQL API wraps each entity in a "new-style" envelope: a rest_id
// holding the canonical identifier, a handful of top-level fields, and a
// nested legacy object that still carries most business fields in the old
// REST schema. Downstream parsers expect one flat object per entity; the
// functions here produce that.

// indexedResponse is the flat, id-indexed form of one API response.
// Order slices preserve the (deterministic) encounter order of the
// collector so "first record" is well defined.
type indexedResponse struct {
	tweets     map[string]map[string]any
	users      map[string]map[string]any
	tweetOrder []string
	userOrder  []string
}

// flattenObject merges a new-style object into one flat map: top-level
// fields first, then legacy fields (legacy wins on collision), then the
// canonical id injected as both id_str and id. The legacy key itself is
// removed. Returns nil when rest_id is absent or not integer-parsable.
func flattenObject(obj map[string]any) map[string]any {
	restID, ok := obj["rest_id"].(string)
	if !ok || restID == "" {
		return nil
	}
	id, err := strconv.ParseInt(restID, 10, 64)
	if err != nil {
		return nil
	}

	legacy, _ := obj["legacy"].(map[string]any)

	flat := make(map[string]any, len(obj)+len(legacy)+2)
	for k, v := range obj {
		flat[k] = v
	}
	for k, v := range legacy {
		flat[k] = v
	}
	flat["id_str"] = restID
	flat["id"] = id
	delete(flat, "legacy")
	return flat
}

// flattenResponse locates every tweet and user object anywhere in the
// response tree and indexes their flattened forms by id_str. Objects
// lacking a legacy sub-object or a rest_id are skipped; so is anything
// whose flattening fails. Tweets inside visibility-filter wrappers are
// unwrapped first.
func flattenResponse(tree map[string]any) *indexedResponse {
	typed := jsontree.CollectTyped(tree, "__typename")

	res := &indexedResponse{
		tweets: make(map[string]map[string]any),
		users:  make(map[string]map[string]any),
	}

	rawTweets := typed["Tweet"]
	for _, wrapper := range typed["TweetWithVisibilityResults"] {
		if inner, ok := wrapper["tweet"].(map[string]any); ok {
			rawTweets = append(rawTweets, inner)
		}
	}

	for _, obj := range rawTweets {
		if flat := flattenEntity(obj); flat != nil {
			idStr := flat["id_str"].(string)
			if _, seen := res.tweets[idStr]; !seen {
				res.tweetOrder = append(res.tweetOrder, idStr)
			}
			res.tweets[idStr] = flat
		}
	}
	for _, obj := range typed["User"] {
		if flat := flattenEntity(obj); flat != nil {
			idStr := flat["id_str"].(string)
			if _, seen := res.users[idStr]; !seen {
				res.userOrder = append(res.userOrder, idStr)
			}
			res.users[idStr] = flat
		}
	}

	return res
}

// flattenEntity applies flattenObject to objects that look like complete
// entities. The collector sweeps up plenty of typed control objects that
// carry neither legacy nor rest_id; those are silently skipped here.
func flattenEntity(obj map[string]any) map[string]any {
	if _, hasLegacy := obj["legacy"]; !hasLegacy {
		return nil
	}
	if _, hasRestID := obj["rest_id"]; !hasRestID {
		return nil
	}
	flat := flattenObject(obj)
	if flat == nil {
		return nil
	}
	if _, ok := flat["id_str"].(string); !ok {
		return nil
	}
	return flat
}
