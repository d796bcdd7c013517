package twitter

// Feature-flag objects sent verbatim with each operation. The API rejects
// requests with missing flags and changes response shape based on them, so
// these must stay in sync with what the parsers expect.

func timelineFeatures() map[string]any {
	return map[string]any{
		"rweb_video_screen_enabled":                                               false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"verified_phone_label_enabled":                                            false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"premium_content_api_read_enabled":                                        false,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_jetfuel_frame":                                            false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"articles_preview_enabled":                                                true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"view_counts_everywhere_api_enabled":                                      true,
		"longform_notetweets_consumption_enabled":                                 true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"responsive_web_grok_show_grok_translated_post":                           false,
		"responsive_web_grok_analysis_button_from_backend":                        false,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"longform_notetweets_inline_media_enabled":                                true,
		"responsive_web_grok_image_annotation_enabled":                            false,
		"responsive_web_enhance_cards_enabled":                                    false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"rweb_video_timestamps_enabled":                                           true,
	}
}

func timelineFieldToggles() map[string]any {
	return map[string]any{
		"withArticlePlainText": false,
	}
}

func userLookupFeatures() map[string]any {
	return map[string]any{
		"rweb_tipjar_consumption_enabled":                                   true,
		"responsive_web_graphql_exclude_directive_enabled":                  true,
		"verified_phone_label_enabled":                                      false,
		"creator_subscriptions_tweet_preview_api_enabled":                   true,
		"responsive_web_graphql_timeline_navigation_enabled":                true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled": false,
		"tweetypie_unmention_optimization_enabled":                          true,
		"highlights_tweets_tab_ui_enabled":                                  true,
		"hidden_profile_likes_enabled":                                      true,
		"hidden_profile_subscriptions_enabled":                              true,
		"subscriptions_verification_info_verified_since_enabled":            true,
		"subscriptions_verification_info_is_identity_verified_enabled":      false,
		"responsive_web_twitter_article_notes_tab_enabled":                  false,
		"subscriptions_feature_can_gift_premium":                            false,
		"profile_label_improvements_pcf_label_in_post_enabled":              true,
		"longform_notetweets_consumption_enabled":                           true,
		"longform_notetweets_rich_text_read_enabled":                        true,
		"view_counts_everywhere_api_enabled":                                true,
		"freedom_of_speech_not_reach_fetch_enabled":                         true,
		"articles_preview_enabled":                                          true,
		"rweb_video_timestamps_enabled":                                     true,
	}
}
