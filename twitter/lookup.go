package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/njraladdin/twitter-user-timeline-scraper/metrics"
)

// notFoundMessage appears in the GraphQL error list when a handle does not
// resolve to an account.
const notFoundMessage = "Could not find user"

// UserByLogin resolves a screen name to a full User profile. A handle with
// no matching account returns (nil, nil): not-found is an outcome, not a
// failure. Transport and decode problems return an error.
func (c *Client) UserByLogin(ctx context.Context, username string) (*User, error) {
	params, err := encodeParams(map[string]any{
		"variables": map[string]any{
			"screen_name":              username,
			"withSafetyModeUserFields": true,
		},
		"features": userLookupFeatures(),
	})
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, opUserByScreenName, params, profileBase+username)
	if err != nil {
		metrics.UserLookups.WithLabelValues(metrics.LookupError).Inc()
		return nil, fmt.Errorf("looking up user %q: %w", username, err)
	}

	var tree map[string]any
	if err := json.Unmarshal(body, &tree); err != nil {
		metrics.UserLookups.WithLabelValues(metrics.LookupError).Inc()
		return nil, fmt.Errorf("decoding lookup response for %q: %w", username, err)
	}

	if msgs := graphQLErrors(tree); len(msgs) > 0 {
		c.logger.WarnContext(ctx, "lookup response carries errors", "username", username, "errors", strings.Join(msgs, "; "))
		for _, msg := range msgs {
			if strings.Contains(msg, notFoundMessage) {
				c.logger.InfoContext(ctx, "user not found", "username", username)
				metrics.UserLookups.WithLabelValues(metrics.LookupNotFound).Inc()
				return nil, nil
			}
		}
	}

	res := flattenResponse(tree)
	if len(res.userOrder) == 0 {
		c.logger.WarnContext(ctx, "lookup response carries no parsable user", "username", username)
		metrics.UserLookups.WithLabelValues(metrics.LookupNotFound).Inc()
		return nil, nil
	}
	if len(res.userOrder) > 1 {
		c.logger.WarnContext(ctx, "lookup response carries multiple users, using first",
			"username", username, "count", len(res.userOrder))
	}

	dec := &decoder{logger: c.logger, res: res}
	user, ok := dec.user(res.users[res.userOrder[0]])
	if !ok {
		c.logger.WarnContext(ctx, "lookup response user failed to parse", "username", username)
		metrics.UserLookups.WithLabelValues(metrics.LookupNotFound).Inc()
		return nil, nil
	}

	c.logger.InfoContext(ctx, "resolved user", "username", user.Username, "user_id", user.IDStr)
	metrics.UserLookups.WithLabelValues(metrics.LookupFound).Inc()
	return user, nil
}
