// internal/models/search.go
package models

import "time"

// Sort keys accepted by the rank-influencers worker. Unknown keys fall back
// to SortByRecommendation.
const (
	SortByRecommendation = "recommendation"
	SortByFollowers      = "followers"
	SortByEngagement     = "engagement"
	SortByRating         = "rating"
	SortByInfluenceScore = "influence_score"
	SortByAvgLikes       = "avg_likes"
	SortByAvgViews       = "avg_views"
	SortByAvgComments    = "avg_comments"
	SortByPostCount      = "post_count"
	SortByRecency        = "recency"
	SortByGrowthRate     = "growth_rate"
)

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Pagination clamps applied by the parameter parser.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// SearchParameters is the validated search request. Pointer fields are nil
// when the corresponding filter was not supplied; the filter pipeline treats
// an unset field as a no-op stage. Immutable once parsed.
type SearchParameters struct {
	Search string `json:"search,omitempty"`

	Platforms []string `json:"platforms,omitempty"`

	Country  string `json:"country,omitempty"`
	State    string `json:"state,omitempty"`
	City     string `json:"city,omitempty"`
	Location string `json:"location,omitempty"`

	Gender     string `json:"gender,omitempty"`
	IndustryID *int   `json:"industryId,omitempty"`
	Industry   string `json:"industry,omitempty"`

	FollowerRange string `json:"followerRange,omitempty"`
	MinFollowers  *int64 `json:"minFollowers,omitempty"`
	MaxFollowers  *int64 `json:"maxFollowers,omitempty"`

	MinEngagement *float64 `json:"minEngagement,omitempty"`
	MaxEngagement *float64 `json:"maxEngagement,omitempty"`
	MinRating     *float64 `json:"minRating,omitempty"`
	MaxRating     *float64 `json:"maxRating,omitempty"`

	MinAvgLikes    *float64 `json:"minAvgLikes,omitempty"`
	MinAvgViews    *float64 `json:"minAvgViews,omitempty"`
	MinAvgComments *float64 `json:"minAvgComments,omitempty"`

	LastPostedWithinDays *int `json:"lastPostedWithinDays,omitempty"`

	FasterResponses bool `json:"fasterResponses,omitempty"`
	CommerceReady   bool `json:"commerceReady,omitempty"`
	CampaignReady   bool `json:"campaignReady,omitempty"`
	BarterReady     bool `json:"barterReady,omitempty"`

	HasPlatform         string `json:"hasPlatform,omitempty"`
	HasVerifiedPlatform string `json:"hasVerifiedPlatform,omitempty"`

	CaptionKeyword string `json:"captionKeyword,omitempty"`
	BioKeyword     string `json:"bioKeyword,omitempty"`

	AudienceGender   string `json:"audienceGender,omitempty"`
	AudienceAge      string `json:"audienceAge,omitempty"`
	AudienceLocation string `json:"audienceLocation,omitempty"`
	AudienceInterest string `json:"audienceInterest,omitempty"`
	AudienceLanguage string `json:"audienceLanguage,omitempty"`

	// Influencers already engaged in this campaign are excluded.
	ExcludeCampaignID string `json:"excludeCampaignId,omitempty"`

	// Soft preferences. These never filter; they feed the preference score.
	PreferredIndustries  []string `json:"preferredIndustries,omitempty"`
	PreferredCategories  []string `json:"preferredCategories,omitempty"`
	PreferredGenders     []string `json:"preferredGenders,omitempty"`
	PreferredLocations   []string `json:"preferredLocations,omitempty"`
	PreferredAgeBracket  string   `json:"preferredAgeBracket,omitempty"`
	PreferredCollabTypes []string `json:"preferredCollabTypes,omitempty"`
	MaxCollabAmount      *float64 `json:"maxCollabAmount,omitempty"`

	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

// PlatformMetrics are aggregates over an influencer's active accounts,
// restricted to the requested platform subset when one is given.
type PlatformMetrics struct {
	TotalFollowers    int64      `json:"totalFollowers"`
	AvgEngagementRate float64    `json:"avgEngagementRate"`
	AvgLikes          float64    `json:"avgLikes"`
	AvgComments       float64    `json:"avgComments"`
	AvgVideoViews     float64    `json:"avgVideoViews"`
	PostsCount        int        `json:"postsCount"`
	LastPostedAt      *time.Time `json:"lastPostedAt,omitempty"`
}

// RankedInfluencer is one scored entry of a search result page.
// RecommendationScore and PreferenceScore are reported separately; only the
// recommendation score drives ordering.
type RankedInfluencer struct {
	InfluencerID        string             `json:"influencerId"`
	Name                string             `json:"name"`
	RecommendationScore float64            `json:"recommendationScore"`
	PreferenceScore     float64            `json:"preferenceScore"`
	RuleScores          map[string]float64 `json:"ruleScores"`
	Metrics             PlatformMetrics    `json:"metrics"`
}

// SearchPage is one ordered page of ranked results.
type SearchPage struct {
	Items      []RankedInfluencer `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalCount int                `json:"totalCount"`
	TotalPages int                `json:"totalPages"`
}
