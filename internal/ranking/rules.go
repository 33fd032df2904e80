// internal/ranking/rules.go
package ranking

import (
	"math"
	"time"

	"influencer-workers/internal/models"
)

// Rule keys, stable across config and output payloads.
const (
	RuleFullVerification    = "full_verification"
	RuleContactVerification = "contact_verification"
	RuleRating              = "rating"
	RuleBlueTick            = "blue_tick"
	RuleEngagement          = "engagement"
	RuleFollowers           = "followers"
	RuleAccountVerification = "account_verification"
	RuleRecentActivity      = "recent_activity"
	RuleProfileCompleteness = "profile_completeness"
	RuleCollabExperience    = "collaboration_experience"
)

const recentActivityWindow = 30 * 24 * time.Hour

// Rule is one weighted scoring dimension. Score returns a value in
// [0, DefaultWeight]; when Weight differs from DefaultWeight the engine
// scales the result proportionally, so the effective bound is [0, Weight].
type Rule struct {
	Name          string
	Key           string
	Weight        float64
	DefaultWeight float64
	Score         func(c *Candidate) float64
}

// DefaultRules returns the recommendation scoring table. The table is loaded
// once at process start and treated as immutable configuration; rules run
// independently and their sub-scores sum to the recommendation score.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "Full platform verification", Key: RuleFullVerification,
			Weight: 100, DefaultWeight: 100,
			Score: func(c *Candidate) float64 {
				if c.Influencer.FullyVerified {
					return 100
				}
				return 0
			},
		},
		{
			Name: "Email and phone verified", Key: RuleContactVerification,
			Weight: 80, DefaultWeight: 80,
			Score: func(c *Candidate) float64 {
				switch {
				case c.Influencer.EmailVerified && c.Influencer.PhoneVerified:
					return 80
				case c.Influencer.EmailVerified || c.Influencer.PhoneVerified:
					return 40
				default:
					return 0
				}
			},
		},
		{
			Name: "Reputation rating", Key: RuleRating,
			Weight: 60, DefaultWeight: 60,
			Score: func(c *Candidate) float64 {
				if c.Influencer.AvgRating > 0 {
					return c.Influencer.AvgRating * 12
				}
				return 0
			},
		},
		{
			Name: "Platform blue tick", Key: RuleBlueTick,
			Weight: 50, DefaultWeight: 50,
			Score: func(c *Candidate) float64 {
				if anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool { return a.PlatformVerified }) {
					return 50
				}
				return 0
			},
		},
		{
			Name: "Engagement rate", Key: RuleEngagement,
			Weight: 40, DefaultWeight: 40,
			Score: func(c *Candidate) float64 {
				// Saturates at 20% engagement.
				return math.Min(c.Metrics.AvgEngagementRate*2, 40)
			},
		},
		{
			Name: "Follower count", Key: RuleFollowers,
			Weight: 30, DefaultWeight: 30,
			Score: func(c *Candidate) float64 {
				return followerStep(c.Metrics.TotalFollowers)
			},
		},
		{
			Name: "Account verified", Key: RuleAccountVerification,
			Weight: 25, DefaultWeight: 25,
			Score: func(c *Candidate) float64 {
				if anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool { return a.AccountVerified }) {
					return 25
				}
				return 0
			},
		},
		{
			Name: "Recent activity", Key: RuleRecentActivity,
			Weight: 20, DefaultWeight: 20,
			Score: func(c *Candidate) float64 {
				cutoff := timeNow().Add(-recentActivityWindow)
				if anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool {
					return a.LastPostedAt != nil && a.LastPostedAt.After(cutoff)
				}) {
					return 20
				}
				return 0
			},
		},
		{
			Name: "Profile completeness", Key: RuleProfileCompleteness,
			Weight: 15, DefaultWeight: 15,
			Score: func(c *Candidate) float64 {
				hasBio := c.Influencer.Bio != ""
				hasIndustry := c.Influencer.IndustryID != 0 || c.Influencer.IndustryKey != ""
				switch {
				case hasBio && hasIndustry:
					return 15
				case hasBio:
					return 8
				default:
					return 0
				}
			},
		},
		{
			Name: "Collaboration experience", Key: RuleCollabExperience,
			Weight: 10, DefaultWeight: 10,
			Score: func(c *Candidate) float64 {
				switch n := c.Influencer.CollaborationCount; {
				case n >= 20:
					return 10
				case n >= 10:
					return 8
				case n >= 5:
					return 6
				case n >= 1:
					return 4
				default:
					return 0
				}
			},
		},
	}
}

// followerStep is monotonic non-decreasing in followers.
func followerStep(followers int64) float64 {
	switch {
	case followers >= 10_000_000:
		return 30
	case followers >= 1_000_000:
		return 27
	case followers >= 500_000:
		return 24
	case followers >= 100_000:
		return 20
	case followers >= 50_000:
		return 16
	case followers >= 10_000:
		return 12
	case followers >= 1_000:
		return 8
	case followers > 0:
		return 4
	default:
		return 0
	}
}

// ApplyWeightOverrides replaces individual rule ceilings. Unknown keys and
// negative weights are ignored. A fresh slice is returned; the input table is
// not touched.
func ApplyWeightOverrides(rules []Rule, overrides map[string]float64) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	if len(overrides) == 0 {
		return out
	}
	for i := range out {
		if w, ok := overrides[out[i].Key]; ok && w >= 0 {
			out[i].Weight = w
		}
	}
	return out
}

// ScoreCandidate evaluates every rule against the candidate and returns the
// per-rule breakdown plus their sum. Each sub-score is clamped to
// [0, rule.Weight].
func ScoreCandidate(c *Candidate, rules []Rule) (map[string]float64, float64) {
	perRule := make(map[string]float64, len(rules))
	var total float64
	for _, rule := range rules {
		raw := rule.Score(c)
		if rule.Weight != rule.DefaultWeight && rule.DefaultWeight > 0 {
			raw = raw * rule.Weight / rule.DefaultWeight
		}
		score := math.Max(0, math.Min(raw, rule.Weight))
		perRule[rule.Key] = score
		total += score
	}
	return perRule, total
}
