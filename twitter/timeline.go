package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/njraladdin/twitter-user-timeline-scraper/jsontree"
	"github.com/njraladdin/twitter-user-timeline-scraper/metrics"
)

// timelinePageSize is the per-request entry count asked of the API. The
// server treats it as a hint and may return fewer or more items.
const timelinePageSize = 10

// instructionsPath locates the instruction list inside a timeline response.
const instructionsPath = "data.user.result.timeline_v2.timeline.instructions"

// timelinePage is one fetched and parsed page of a user timeline.
type timelinePage struct {
	tweets    []*Tweet
	itemCount int
	cursor    string
}

// UserTweets fetches a user's timeline newest-first, following bottom
// cursors until limit tweets are collected or the timeline is exhausted.
// A limit <= 0 means no limit. Entities that fail validation are skipped,
// not errored, so the returned slice may be shorter than the number of
// items the server sent.
func (c *Client) UserTweets(ctx context.Context, userID int64, limit int) ([]*Tweet, error) {
	var tweets []*Tweet
	cursor := ""

	for pageNum := 1; ; pageNum++ {
		page, err := c.timelinePage(ctx, userID, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetching timeline page %d for user %d: %w", pageNum, userID, err)
		}
		metrics.PagesFetched.Inc()
		c.logger.DebugContext(ctx, "fetched timeline page",
			"user_id", userID, "page", pageNum, "items", page.itemCount, "parsed", len(page.tweets))

		for _, t := range page.tweets {
			tweets = append(tweets, t)
			if limit > 0 && len(tweets) >= limit {
				return tweets, nil
			}
		}

		// A page with a cursor but no tweet items means we ran off the
		// end of the timeline; following the cursor would loop forever.
		if page.cursor == "" || page.itemCount == 0 {
			if limit > 0 && len(tweets) > limit {
				tweets = tweets[:limit]
			}
			return tweets, nil
		}
		cursor = page.cursor
	}
}

// timelinePage fetches and parses a single page. cursor is empty for the
// first page.
func (c *Client) timelinePage(ctx context.Context, userID int64, cursor string) (*timelinePage, error) {
	variables := map[string]any{
		"userId":                                 strconv.FormatInt(userID, 10),
		"count":                                  timelinePageSize,
		"includePromotedContent":                 true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	params, err := encodeParams(map[string]any{
		"variables":    variables,
		"features":     timelineFeatures(),
		"fieldToggles": timelineFieldToggles(),
	})
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, opUserTweets, params, profileBase)
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("decoding timeline response: %w", err)
	}
	// Partial GraphQL errors can coexist with usable timeline data, so
	// they are logged rather than failing the page.
	if msgs := graphQLErrors(tree); len(msgs) > 0 {
		c.logger.WarnContext(ctx, "timeline response carries errors",
			"user_id", userID, "errors", strings.Join(msgs, "; "))
	}

	res := flattenResponse(tree)
	dec := &decoder{logger: c.logger, res: res}

	page := &timelinePage{cursor: bottomCursor(tree)}

	rawInstructions, ok := jsontree.Get(tree, instructionsPath, nil).([]any)
	if !ok {
		c.logger.WarnContext(ctx, "timeline response carries no instructions", "user_id", userID)
		return page, nil
	}

	for _, entry := range timelineEntries(rawInstructions) {
		result, ok := tweetResult(entry)
		if !ok {
			continue
		}
		page.itemCount++

		flat := flattenObject(result)
		if flat == nil {
			dec.skip("timeline item not flattenable")
			continue
		}
		t, ok := dec.tweet(flat, nil)
		if !ok {
			continue
		}
		page.tweets = append(page.tweets, t)
		metrics.TweetsParsed.Inc()
	}

	return page, nil
}

// timelineEntries flattens the instruction list into entry objects,
// handling the three instruction shapes the timeline endpoint emits.
func timelineEntries(instructions []any) []map[string]any {
	var entries []map[string]any
	for _, raw := range instructions {
		instr, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch instr["type"] {
		case "TimelineAddEntries":
			if list, ok := instr["entries"].([]any); ok {
				for _, e := range list {
					if entry, ok := e.(map[string]any); ok {
						entries = append(entries, entry)
					}
				}
			}
		case "TimelineAddToModule":
			// Module items carry their content one level deeper.
			if list, ok := instr["moduleItems"].([]any); ok {
				for _, e := range list {
					if item, ok := e.(map[string]any); ok {
						entries = append(entries, item)
					}
				}
			}
		case "TimelinePinEntry":
			if entry, ok := instr["entry"].(map[string]any); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// tweetResult digs the tweet record out of a timeline entry, unwrapping
// visibility containers. Non-tweet entries (cursors, who-to-follow
// modules, ads) return false.
func tweetResult(entry map[string]any) (map[string]any, bool) {
	content, ok := entry["content"].(map[string]any)
	if !ok {
		// Module items nest under "item" instead of "content".
		content, ok = entry["item"].(map[string]any)
		if !ok {
			return nil, false
		}
	}
	if t, ok := content["entryType"]; ok && t != "TimelineTimelineItem" {
		return nil, false
	}

	itemContent, ok := content["itemContent"].(map[string]any)
	if !ok {
		return nil, false
	}
	if itemContent["itemType"] != "TimelineTweet" {
		return nil, false
	}

	result, ok := jsontree.Get(itemContent, "tweet_results.result", nil).(map[string]any)
	if !ok {
		return nil, false
	}
	if result["__typename"] == "TweetWithVisibilityResults" {
		result, ok = result["tweet"].(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return result, true
}

// bottomCursor finds the pagination cursor for the next (older) page.
// Returns empty when the response carries none.
func bottomCursor(tree map[string]any) string {
	cursorObj := jsontree.FindFirst(tree, func(obj map[string]any) bool {
		return obj["cursorType"] == "Bottom"
	})
	if cursorObj == nil {
		return ""
	}
	value, _ := cursorObj["value"].(string)
	return value
}
