// internal/models/influencer.go
package models

import "time"

// Collaboration types an influencer accepts.
const (
	CollabTypeCash   = "cash"
	CollabTypeBarter = "barter"
	CollabTypeHybrid = "hybrid"
)

// Influencer is a searchable creator profile with its platform accounts.
// The ranking engine only reads these records; it never mutates them.
type Influencer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`

	// Profile-level verification. FullyVerified means both platform and
	// account verification passed for the profile as a whole.
	PlatformVerified bool `json:"platformVerified"`
	AccountVerified  bool `json:"accountVerified"`
	FullyVerified    bool `json:"fullyVerified"`
	EmailVerified    bool `json:"emailVerified"`
	PhoneVerified    bool `json:"phoneVerified"`

	Gender     string `json:"gender"`
	AgeBracket string `json:"ageBracket"`
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`

	IndustryID   int    `json:"industryId"`
	IndustryKey  string `json:"industryKey"`
	IndustryName string `json:"industryName"`

	Categories      []string `json:"categories"`
	CaptionKeywords []string `json:"captionKeywords"`
	BioKeywords     []string `json:"bioKeywords"`

	FasterResponses bool `json:"fasterResponses"`
	CommerceReady   bool `json:"commerceReady"`
	CampaignReady   bool `json:"campaignReady"`
	BarterReady     bool `json:"barterReady"`

	// MinCollabAmount is nil when the influencer has not set a floor.
	MinCollabAmount *float64 `json:"minCollabAmount,omitempty"`
	CollabTypes     []string `json:"collabTypes"`

	AvgRating          float64 `json:"avgRating"` // 0..5
	CollaborationCount int     `json:"collaborationCount"`
	InfluenceScore     float64 `json:"influenceScore"`
	GrowthRate         float64 `json:"growthRate"`

	// Audience distributions map bucket -> share (0..1).
	AudienceGender    map[string]float64 `json:"audienceGender,omitempty"`
	AudienceAge       map[string]float64 `json:"audienceAge,omitempty"`
	AudienceLocation  map[string]float64 `json:"audienceLocation,omitempty"`
	AudienceInterests map[string]float64 `json:"audienceInterests,omitempty"`
	AudienceLanguages map[string]float64 `json:"audienceLanguages,omitempty"`

	Accounts []PlatformAccount `json:"accounts"`
}

// PlatformAccount is one social account owned by an influencer.
// PlatformVerified is the platform's own badge (blue tick);
// AccountVerified means this system verified ownership.
type PlatformAccount struct {
	Platform          string     `json:"platform"`
	Handle            string     `json:"handle"`
	IsActive          bool       `json:"isActive"`
	FollowersCount    int64      `json:"followersCount"`
	EngagementRate    float64    `json:"engagementRate"` // percent, 0..100
	AverageLikes      float64    `json:"averageLikes"`
	AverageComments   float64    `json:"averageComments"`
	AverageVideoViews float64    `json:"averageVideoViews"`
	PostsCount        int        `json:"postsCount"`
	PlatformVerified  bool       `json:"platformVerified"`
	AccountVerified   bool       `json:"accountVerified"`
	LastPostedAt      *time.Time `json:"lastPostedAt,omitempty"`
}
