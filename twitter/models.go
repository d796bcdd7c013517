package twitter

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/njraladdin/twitter-user-timeline-scraper/jsontree"
	"github.com/njraladdin/twitter-user-timeline-scraper/metrics"
)

// createdAtLayout is the legacy timestamp format the API still emits,
// e.g. "Wed Oct 10 20:19:24 +0000 2018".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// profileBase is the canonical URL prefix for users and statuses.
const profileBase = "https://x.com/"

// TextLink is a resolved link with its shortened form.
type TextLink struct {
	URL    string `json:"url"`
	Text   string `json:"text,omitempty"`
	TcoURL string `json:"tcourl"`
}

// UserRef is a minimal user reference used where a full profile snapshot
// is unnecessary or unavailable (mentions, reply targets).
type UserRef struct {
	ID          int64  `json:"id"`
	IDStr       string `json:"id_str"`
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
}

// User is a profile entity. Either fully constructed or not at all; no
// partial users escape the parser.
type User struct {
	ID               int64      `json:"id"`
	IDStr            string     `json:"id_str"`
	URL              string     `json:"url"`
	Username         string     `json:"username"`
	DisplayName      string     `json:"displayname"`
	RawDescription   string     `json:"rawDescription"`
	Created          time.Time  `json:"created"`
	FollowersCount   int        `json:"followersCount"`
	FriendsCount     int        `json:"friendsCount"`
	StatusesCount    int        `json:"statusesCount"`
	FavouritesCount  int        `json:"favouritesCount"`
	ListedCount      int        `json:"listedCount"`
	MediaCount       int        `json:"mediaCount"`
	Location         string     `json:"location"`
	ProfileImageURL  string     `json:"profileImageUrl"`
	ProfileBannerURL string     `json:"profileBannerUrl,omitempty"`
	Protected        *bool      `json:"protected"`
	Verified         *bool      `json:"verified"`
	Blue             *bool      `json:"blue"`
	BlueType         string     `json:"blueType,omitempty"`
	DescriptionLinks []TextLink `json:"descriptionLinks"`
	PinnedIDs        []int64    `json:"pinnedIds"`
}

// Tweet is a content entity. It owns its embedded User snapshot, which may
// be stale relative to the live profile, and may recursively own full
// copies of a retweeted or quoted tweet.
type Tweet struct {
	ID                  int64      `json:"id"`
	IDStr               string     `json:"id_str"`
	URL                 string     `json:"url"`
	Date                time.Time  `json:"date"`
	User                User       `json:"user"`
	Lang                string     `json:"lang"`
	RawContent          string     `json:"rawContent"`
	ConversationID      int64      `json:"conversationId"`
	ConversationIDStr   string     `json:"conversationIdStr"`
	ReplyCount          int        `json:"replyCount"`
	RetweetCount        int        `json:"retweetCount"`
	LikeCount           int        `json:"likeCount"`
	QuoteCount          int        `json:"quoteCount"`
	BookmarkedCount     *int64     `json:"bookmarkedCount"`
	Hashtags            []string   `json:"hashtags"`
	Cashtags            []string   `json:"cashtags"`
	MentionedUsers      []UserRef  `json:"mentionedUsers"`
	Links               []TextLink `json:"links"`
	Media               *Media     `json:"media"`
	ViewCount           *int64     `json:"viewCount"`
	RetweetedTweet      *Tweet     `json:"retweetedTweet"`
	QuotedTweet         *Tweet     `json:"quotedTweet"`
	InReplyToTweetID    *int64     `json:"inReplyToTweetId"`
	InReplyToTweetIDStr string     `json:"inReplyToTweetIdStr,omitempty"`
	InReplyToUser       *UserRef   `json:"inReplyToUser"`
	Source              string     `json:"source,omitempty"`
	SourceURL           string     `json:"sourceUrl,omitempty"`
	SourceLabel         string     `json:"sourceLabel,omitempty"`
	PossiblySensitive   *bool      `json:"possibly_sensitive"`
}

// MediaPhoto is a single attached photo.
type MediaPhoto struct {
	URL string `json:"url"`
}

// MediaVideoVariant is one playable rendition of a video.
type MediaVideoVariant struct {
	ContentType string `json:"contentType"`
	Bitrate     int64  `json:"bitrate"`
	URL         string `json:"url"`
}

// MediaVideo is an attached video with its renditions.
type MediaVideo struct {
	ThumbnailURL string              `json:"thumbnailUrl"`
	Variants     []MediaVideoVariant `json:"variants"`
	Duration     int64               `json:"duration"` // milliseconds
	Views        *int64              `json:"views"`
}

// MediaAnimated is an animated GIF, served by the API as a single-variant
// video.
type MediaAnimated struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
}

// Media groups a tweet's attachments. It is only ever constructed with at
// least one item; an empty container is represented by its absence.
type Media struct {
	Photos   []MediaPhoto    `json:"photos"`
	Videos   []MediaVideo    `json:"videos"`
	Animated []MediaAnimated `json:"animated"`
}

// decoder turns flattened response objects into entities. A decoder is
// scoped to one indexed response; cross-references (tweet author, quoted
// tweet) resolve against it.
type decoder struct {
	logger *slog.Logger
	res    *indexedResponse
}

// parseTextLink requires both the expanded and shortened URL; display text
// is optional.
func parseTextLink(obj map[string]any) (TextLink, bool) {
	expanded, _ := obj["expanded_url"].(string)
	tco, _ := obj["url"].(string)
	if expanded == "" || tco == "" {
		return TextLink{}, false
	}
	text, _ := obj["display_url"].(string)
	return TextLink{URL: expanded, Text: text, TcoURL: tco}, true
}

// parseUserRef requires id_str, handle and display name, with an
// integer-parsable id.
func parseUserRef(obj map[string]any) (UserRef, bool) {
	idStr, _ := obj["id_str"].(string)
	username, _ := obj["screen_name"].(string)
	name, _ := obj["name"].(string)
	if idStr == "" || username == "" || name == "" {
		return UserRef{}, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return UserRef{}, false
	}
	return UserRef{ID: id, IDStr: idStr, Username: username, DisplayName: name}, true
}

// user builds a User from a flattened record. Missing or malformed required
// fields (id, handle, name, creation date) drop the record.
func (d *decoder) user(obj map[string]any) (*User, bool) {
	idStr, _ := obj["id_str"].(string)
	username, _ := obj["screen_name"].(string)
	name, _ := obj["name"].(string)
	createdAt, _ := obj["created_at"].(string)

	if idStr == "" || username == "" || name == "" || createdAt == "" {
		d.skip("user missing essential fields", "id_str", idStr)
		return nil, false
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		d.skip("user id not parsable", "id_str", idStr)
		return nil, false
	}
	created, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		d.skip("user created_at not parsable", "id_str", idStr, "created_at", createdAt)
		return nil, false
	}

	var pinned []int64
	if rawPinned, ok := obj["pinned_tweet_ids_str"].([]any); ok {
		for _, p := range rawPinned {
			s, ok := p.(string)
			if !ok {
				continue
			}
			pid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				d.logger.Debug("skipping invalid pinned tweet id", "user", idStr, "pinned", s)
				continue
			}
			pinned = append(pinned, pid)
		}
	}

	return &User{
		ID:               id,
		IDStr:            idStr,
		URL:              profileBase + username,
		Username:         username,
		DisplayName:      name,
		RawDescription:   str(obj, "description"),
		Created:          created,
		FollowersCount:   count(obj, "followers_count"),
		FriendsCount:     count(obj, "friends_count"),
		StatusesCount:    count(obj, "statuses_count"),
		FavouritesCount:  count(obj, "favourites_count"),
		ListedCount:      count(obj, "listed_count"),
		MediaCount:       count(obj, "media_count"),
		Location:         str(obj, "location"),
		ProfileImageURL:  str(obj, "profile_image_url_https"),
		ProfileBannerURL: str(obj, "profile_banner_url"),
		Protected:        boolPtr(obj, "protected"),
		Verified:         boolPtr(obj, "verified"),
		Blue:             boolPtr(obj, "is_blue_verified"),
		BlueType:         str(obj, "verified_type"),
		DescriptionLinks: parseLinks(obj, "entities.description.urls", "entities.url.urls"),
		PinnedIDs:        pinned,
	}, true
}

// tweet builds a Tweet from a flattened record, resolving the author and
// any retweeted/quoted tweets against the response index. chain carries the
// id_strs currently being resolved; any reference back into the chain is
// treated as absent rather than recursed into.
func (d *decoder) tweet(obj map[string]any, chain []string) (*Tweet, bool) {
	idStr, _ := obj["id_str"].(string)
	userIDStr, _ := obj["user_id_str"].(string)
	createdAt, _ := obj["created_at"].(string)
	convIDStr, _ := obj["conversation_id_str"].(string)

	if idStr == "" || userIDStr == "" || createdAt == "" || convIDStr == "" {
		d.skip("tweet missing essential fields", "id_str", idStr)
		return nil, false
	}

	userFlat, ok := d.res.users[userIDStr]
	if !ok {
		d.skip("tweet author not in response", "id_str", idStr, "user_id_str", userIDStr)
		return nil, false
	}
	author, ok := d.user(userFlat)
	if !ok {
		d.skip("tweet author failed to parse", "id_str", idStr, "user_id_str", userIDStr)
		return nil, false
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		d.skip("tweet id not parsable", "id_str", idStr)
		return nil, false
	}
	convID, err := strconv.ParseInt(convIDStr, 10, 64)
	if err != nil {
		d.skip("tweet conversation id not parsable", "id_str", idStr, "conversation_id_str", convIDStr)
		return nil, false
	}
	date, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		d.skip("tweet created_at not parsable", "id_str", idStr, "created_at", createdAt)
		return nil, false
	}

	chain = append(chain, idStr)

	retweeted, rtObj := d.resolveRelated(obj, "retweeted_status_id_str", chain)
	quoted, _ := d.resolveRelated(obj, "quoted_status_id_str", chain)

	rawContent := str(obj, "full_text")
	if note, ok := jsontree.Get(obj, "note_tweet.note_tweet_results.result.text", nil).(string); ok && note != "" {
		rawContent = note
	}
	rawContent = repairRetweetText(rawContent, retweeted)

	lang := str(obj, "lang")
	if lang == "" {
		lang = "und"
	}

	var mentions []UserRef
	if raw, ok := jsontree.Get(obj, "entities.user_mentions", nil).([]any); ok {
		for _, m := range raw {
			mObj, ok := m.(map[string]any)
			if !ok {
				continue
			}
			if ref, ok := parseUserRef(mObj); ok {
				mentions = append(mentions, ref)
			}
		}
	}

	source := str(obj, "source")

	var replyID *int64
	if n, ok := jsontree.IntOK(obj, "in_reply_to_status_id_str"); ok {
		replyID = &n
	}

	return &Tweet{
		ID:                  id,
		IDStr:               idStr,
		URL:                 profileBase + author.Username + "/status/" + idStr,
		Date:                date,
		User:                *author,
		Lang:                lang,
		RawContent:          rawContent,
		ConversationID:      convID,
		ConversationIDStr:   convIDStr,
		ReplyCount:          count(obj, "reply_count"),
		RetweetCount:        count(obj, "retweet_count"),
		LikeCount:           count(obj, "favorite_count"),
		QuoteCount:          count(obj, "quote_count"),
		BookmarkedCount:     intPtr(obj, "bookmark_count"),
		Hashtags:            tagTexts(obj, "entities.hashtags"),
		Cashtags:            tagTexts(obj, "entities.symbols"),
		MentionedUsers:      mentions,
		Links:               parseLinks(obj, "entities.urls", "note_tweet.note_tweet_results.result.entity_set.urls"),
		Media:               d.media(obj),
		ViewCount:           viewCount(obj, rtObj),
		RetweetedTweet:      retweeted,
		QuotedTweet:         quoted,
		InReplyToTweetID:    replyID,
		InReplyToTweetIDStr: str(obj, "in_reply_to_status_id_str"),
		InReplyToUser:       d.replyUser(obj, mentions),
		Source:              source,
		SourceURL:           sourceURL(source),
		SourceLabel:         sourceLabel(source),
		PossiblySensitive:   boolPtr(obj, "possibly_sensitive"),
	}, true
}

// resolveRelated resolves a retweeted/quoted reference by id into the
// response index. References to any id already on the resolving chain are
// dropped: a self-retweet or a longer quote cycle would otherwise recurse
// forever. Returns the parsed tweet (or nil) and the raw related record
// for callers that probe it directly.
func (d *decoder) resolveRelated(obj map[string]any, key string, chain []string) (*Tweet, map[string]any) {
	relIDStr, _ := obj[key].(string)
	if relIDStr == "" {
		return nil, nil
	}
	relObj, ok := d.res.tweets[relIDStr]
	if !ok {
		return nil, nil
	}
	if slices.Contains(chain, relIDStr) {
		d.logger.Warn("reference cycle detected, skipping nested parse",
			"id_str", chain[len(chain)-1], "ref", relIDStr, "field", key)
		return nil, relObj
	}
	related, ok := d.tweet(relObj, chain)
	if !ok {
		return nil, relObj
	}
	return related, relObj
}

// replyUser resolves the reply-target user: first by id against the
// response's user index, then by scanning the tweet's own mentions.
func (d *decoder) replyUser(obj map[string]any, mentions []UserRef) *UserRef {
	userIDStr, _ := obj["in_reply_to_user_id_str"].(string)
	if userIDStr == "" {
		return nil
	}

	if userFlat, ok := d.res.users[userIDStr]; ok {
		if ref, ok := parseUserRef(userFlat); ok {
			return &ref
		}
	}

	for _, m := range mentions {
		if m.IDStr == userIDStr {
			return &m
		}
	}

	d.logger.Debug("could not resolve reply target", "user_id_str", userIDStr, "id_str", obj["id_str"])
	return nil
}

// media parses the attachment list, dispatching on the item type tag.
// Unknown tags are logged and skipped. Returns nil when nothing survives,
// so a Tweet never carries an empty container.
func (d *decoder) media(obj map[string]any) *Media {
	rawList, ok := jsontree.Get(obj, "extended_entities.media", nil).([]any)
	if !ok {
		return nil
	}

	m := &Media{}
	for _, raw := range rawList {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch item["type"] {
		case "photo":
			if url := str(item, "media_url_https"); url != "" {
				m.Photos = append(m.Photos, MediaPhoto{URL: url})
			}
		case "video":
			if video, ok := parseMediaVideo(item); ok {
				m.Videos = append(m.Videos, video)
			}
		case "animated_gif":
			if gif, ok := parseMediaAnimated(item); ok {
				m.Animated = append(m.Animated, gif)
			}
		default:
			d.logger.Warn("unknown media type", "type", item["type"], "id_str", obj["id_str"])
		}
	}

	if len(m.Photos) == 0 && len(m.Videos) == 0 && len(m.Animated) == 0 {
		return nil
	}
	return m
}

// parseMediaVideo requires a thumbnail, a duration, and at least one
// variant with content type, url, and numeric bitrate. A variant missing
// its bitrate drops the variant, not the video.
func parseMediaVideo(item map[string]any) (MediaVideo, bool) {
	thumb := str(item, "media_url_https")
	duration, hasDuration := jsontree.IntOK(item, "video_info.duration_millis")
	rawVariants, hasVariants := jsontree.Get(item, "video_info.variants", nil).([]any)
	if thumb == "" || !hasDuration || !hasVariants || len(rawVariants) == 0 {
		return MediaVideo{}, false
	}

	var variants []MediaVideoVariant
	for _, raw := range rawVariants {
		v, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		contentType := str(v, "content_type")
		url := str(v, "url")
		bitrate, hasBitrate := jsontree.Coerce(v["bitrate"])
		if contentType == "" || url == "" || !hasBitrate {
			continue
		}
		variants = append(variants, MediaVideoVariant{ContentType: contentType, Bitrate: bitrate, URL: url})
	}
	if len(variants) == 0 {
		return MediaVideo{}, false
	}

	var views *int64
	if n, ok := jsontree.IntOK(item, "mediaStats.viewCount"); ok {
		views = &n
	}

	return MediaVideo{ThumbnailURL: thumb, Variants: variants, Duration: duration, Views: views}, true
}

// parseMediaAnimated takes the first variant only; GIFs expose exactly one
// playable rendition.
func parseMediaAnimated(item map[string]any) (MediaAnimated, bool) {
	thumb := str(item, "media_url_https")
	rawVariants, ok := jsontree.Get(item, "video_info.variants", nil).([]any)
	if thumb == "" || !ok || len(rawVariants) == 0 {
		return MediaAnimated{}, false
	}
	first, ok := rawVariants[0].(map[string]any)
	if !ok {
		return MediaAnimated{}, false
	}
	url := str(first, "url")
	if url == "" {
		return MediaAnimated{}, false
	}
	return MediaAnimated{ThumbnailURL: thumb, VideoURL: url}, true
}

// viewCountPaths are the known field-name variants for view counts, probed
// in order; schema reconciliation across API versions.
var viewCountPaths = []string{"ext_views.count", "view_count", "views.count"}

// viewCount probes the tweet first, then its retweeted record.
func viewCount(obj, rtObj map[string]any) *int64 {
	for _, source := range []map[string]any{obj, rtObj} {
		if source == nil {
			continue
		}
		for _, path := range viewCountPaths {
			if n, ok := jsontree.IntOK(source, path); ok {
				return &n
			}
		}
	}
	return nil
}

// ellipsis is the truncation marker the API appends to retweet text.
const ellipsis = "…"

// repairRetweetText rewrites a truncated retweet body to the canonical
// "RT @handle: <text>" form. It fires only when the text ends with the
// truncation marker and is not already in canonical form.
func repairRetweetText(text string, retweeted *Tweet) string {
	if retweeted == nil || !strings.HasSuffix(text, ellipsis) {
		return text
	}
	prefix := "RT @" + retweeted.User.Username + ":"
	if strings.HasPrefix(text, prefix) {
		return text
	}
	return prefix + " " + retweeted.RawContent
}

// parseLinks collects TextLinks from the given nested paths, dropping
// entries that fail to parse.
func parseLinks(obj map[string]any, paths ...string) []TextLink {
	var links []TextLink
	for _, path := range paths {
		raw, ok := jsontree.Get(obj, path, nil).([]any)
		if !ok {
			continue
		}
		for _, r := range raw {
			linkObj, ok := r.(map[string]any)
			if !ok {
				continue
			}
			if link, ok := parseTextLink(linkObj); ok {
				links = append(links, link)
			}
		}
	}
	return links
}

// tagTexts extracts the text field from a tag entity list (hashtags,
// cashtags).
func tagTexts(obj map[string]any, path string) []string {
	raw, ok := jsontree.Get(obj, path, nil).([]any)
	if !ok {
		return nil
	}
	var texts []string
	for _, r := range raw {
		if tag, ok := r.(map[string]any); ok {
			if text, ok := tag["text"].(string); ok && text != "" {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

var (
	sourceHrefRe  = regexp.MustCompile(`href=['"]?([^'" >]+)`)
	sourceLabelRe = regexp.MustCompile(`>([^<]*)<`)
)

// sourceURL extracts the href from the source-client anchor snippet.
func sourceURL(source string) string {
	if m := sourceHrefRe.FindStringSubmatch(source); len(m) > 1 {
		return m[1]
	}
	return ""
}

// sourceLabel extracts the inner text from the source-client anchor snippet.
func sourceLabel(source string) string {
	if m := sourceLabelRe.FindStringSubmatch(source); len(m) > 1 {
		return m[1]
	}
	return ""
}

// skip logs an entity-level parse skip. Skips never escalate; the caller
// moves on to the next record.
func (d *decoder) skip(msg string, args ...any) {
	metrics.ParseSkips.Inc()
	d.logger.Debug(msg, args...)
}

func str(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func count(obj map[string]any, key string) int {
	return int(jsontree.Int(obj, key, 0))
}

func intPtr(obj map[string]any, key string) *int64 {
	if n, ok := jsontree.IntOK(obj, key); ok {
		return &n
	}
	return nil
}

func boolPtr(obj map[string]any, key string) *bool {
	if b, ok := obj[key].(bool); ok {
		return &b
	}
	return nil
}
