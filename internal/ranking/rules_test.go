// internal/ranking/rules_test.go
package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-workers/internal/models"
)

// maxedCandidate hits the ceiling of every rule.
func maxedCandidate() *Candidate {
	now := time.Now()
	acc := models.PlatformAccount{
		Platform:         "instagram",
		IsActive:         true,
		FollowersCount:   10_000_000,
		EngagementRate:   20,
		PlatformVerified: true,
		AccountVerified:  true,
		LastPostedAt:     &now,
	}
	inf := &models.Influencer{
		ID:                 "maxed",
		Name:               "Maxed Out",
		Bio:                "Everything set",
		FullyVerified:      true,
		EmailVerified:      true,
		PhoneVerified:      true,
		AvgRating:          5,
		IndustryID:         3,
		IndustryKey:        "fashion",
		CollaborationCount: 25,
		Accounts:           []models.PlatformAccount{acc},
	}
	return newCandidate(inf, nil)
}

func TestScoreCandidate_MaxedProfileSumsToTableCeiling(t *testing.T) {
	rules := DefaultRules()
	perRule, total := ScoreCandidate(maxedCandidate(), rules)

	var ceiling float64
	for _, r := range rules {
		ceiling += r.Weight
	}
	assert.InDelta(t, ceiling, total, 1e-9)
	assert.InDelta(t, 430.0, total, 1e-9)

	for _, r := range rules {
		assert.InDelta(t, r.Weight, perRule[r.Key], 1e-9, "rule %s", r.Key)
	}
}

func TestScoreCandidate_MidrangeProfileBreakdown(t *testing.T) {
	posted := time.Now().Add(-10 * 24 * time.Hour)
	acc := models.PlatformAccount{
		Platform:         "instagram",
		IsActive:         true,
		FollowersCount:   150_000,
		EngagementRate:   6.0,
		PlatformVerified: true,
		AccountVerified:  true,
		LastPostedAt:     &posted,
	}
	inf := &models.Influencer{
		ID:                 "midrange",
		Name:               "Midrange Creator",
		Bio:                "Lifestyle content",
		FullyVerified:      true,
		EmailVerified:      true,
		PhoneVerified:      true,
		AvgRating:          5.0,
		IndustryID:         2,
		CollaborationCount: 12,
		Accounts:           []models.PlatformAccount{acc},
	}

	perRule, total := ScoreCandidate(newCandidate(inf, nil), DefaultRules())

	want := map[string]float64{
		RuleFullVerification:    100,
		RuleContactVerification: 80,
		RuleRating:              60,
		RuleBlueTick:            50,
		RuleEngagement:          12,
		RuleFollowers:           20,
		RuleAccountVerification: 25,
		RuleRecentActivity:      20,
		RuleProfileCompleteness: 15,
		RuleCollabExperience:    8,
	}
	for key, score := range want {
		assert.InDelta(t, score, perRule[key], 1e-9, "rule %s", key)
	}
	assert.InDelta(t, 390.0, total, 1e-9)
}

func TestScoreCandidate_EmptyProfileScoresZero(t *testing.T) {
	c := newCandidate(&models.Influencer{ID: "empty"}, nil)
	perRule, total := ScoreCandidate(c, DefaultRules())

	assert.Zero(t, total)
	for key, score := range perRule {
		assert.Zero(t, score, "rule %s", key)
	}
}

func TestScoreCandidate_PerRuleBounds(t *testing.T) {
	// Out-of-range inputs must still land inside [0, Weight] per rule.
	acc := models.PlatformAccount{
		Platform:       "instagram",
		IsActive:       true,
		FollowersCount: 500_000_000,
		EngagementRate: 400, // clamped during aggregation
	}
	inf := &models.Influencer{
		ID:                 "extreme",
		AvgRating:          5,
		CollaborationCount: 10_000,
		Accounts:           []models.PlatformAccount{acc},
	}
	c := newCandidate(inf, nil)

	perRule, total := ScoreCandidate(c, DefaultRules())
	var sum float64
	for _, r := range DefaultRules() {
		score := perRule[r.Key]
		assert.GreaterOrEqual(t, score, 0.0, "rule %s", r.Key)
		assert.LessOrEqual(t, score, r.Weight, "rule %s", r.Key)
		sum += score
	}
	assert.InDelta(t, sum, total, 1e-9)
}

func TestScoreCandidate_PartialContactVerification(t *testing.T) {
	emailOnly := newCandidate(&models.Influencer{ID: "e", EmailVerified: true}, nil)
	both := newCandidate(&models.Influencer{ID: "b", EmailVerified: true, PhoneVerified: true}, nil)

	perEmail, _ := ScoreCandidate(emailOnly, DefaultRules())
	perBoth, _ := ScoreCandidate(both, DefaultRules())

	assert.Equal(t, 40.0, perEmail[RuleContactVerification])
	assert.Equal(t, 80.0, perBoth[RuleContactVerification])
}

func TestScoreCandidate_RatingScalesLinearly(t *testing.T) {
	c := newCandidate(&models.Influencer{ID: "r", AvgRating: 4.0}, nil)
	perRule, _ := ScoreCandidate(c, DefaultRules())
	assert.InDelta(t, 48.0, perRule[RuleRating], 1e-9)
}

func TestFollowerStep_Monotonic(t *testing.T) {
	samples := []int64{0, 1, 999, 1_000, 9_999, 10_000, 50_000, 100_000,
		499_999, 500_000, 1_000_000, 9_999_999, 10_000_000, 50_000_000}

	prev := followerStep(samples[0])
	for _, n := range samples[1:] {
		cur := followerStep(n)
		assert.GreaterOrEqual(t, cur, prev, "followers=%d", n)
		prev = cur
	}
	assert.Equal(t, 30.0, followerStep(10_000_000))
}

func TestApplyWeightOverrides(t *testing.T) {
	base := DefaultRules()
	out := ApplyWeightOverrides(base, map[string]float64{
		RuleRating:   120,
		"unknown":    50,
		RuleBlueTick: -10, // negative ignored
	})

	var rating, blueTick Rule
	for _, r := range out {
		switch r.Key {
		case RuleRating:
			rating = r
		case RuleBlueTick:
			blueTick = r
		}
	}
	require.Equal(t, 120.0, rating.Weight)
	assert.Equal(t, 60.0, rating.DefaultWeight)
	assert.Equal(t, 50.0, blueTick.Weight)

	// Input table stays untouched.
	for _, r := range base {
		if r.Key == RuleRating {
			assert.Equal(t, 60.0, r.Weight)
		}
	}
}

func TestScoreCandidate_OverriddenWeightRescalesProportionally(t *testing.T) {
	rules := ApplyWeightOverrides(DefaultRules(), map[string]float64{RuleRating: 120})

	c := newCandidate(&models.Influencer{ID: "r", AvgRating: 4.0}, nil)
	perRule, _ := ScoreCandidate(c, rules)

	// Raw 48 out of 60 scales to 96 out of 120.
	assert.InDelta(t, 96.0, perRule[RuleRating], 1e-9)

	perfect := newCandidate(&models.Influencer{ID: "p", AvgRating: 5.0}, nil)
	perPerfect, _ := ScoreCandidate(perfect, rules)
	assert.InDelta(t, 120.0, perPerfect[RuleRating], 1e-9)
}

func TestScoreCandidate_ZeroWeightDisablesRule(t *testing.T) {
	rules := ApplyWeightOverrides(DefaultRules(), map[string]float64{RuleFullVerification: 0})

	c := newCandidate(&models.Influencer{ID: "v", FullyVerified: true}, nil)
	perRule, _ := ScoreCandidate(c, rules)
	assert.Zero(t, perRule[RuleFullVerification])
}

func TestScoreCandidate_BlueTickNeedsScopedAccount(t *testing.T) {
	inf := &models.Influencer{
		ID: "scoped",
		Accounts: []models.PlatformAccount{
			{Platform: "instagram", IsActive: true, PlatformVerified: true, FollowersCount: 1000},
			{Platform: "youtube", IsActive: true, FollowersCount: 1000},
		},
	}

	all, _ := ScoreCandidate(newCandidate(inf, nil), DefaultRules())
	assert.Equal(t, 50.0, all[RuleBlueTick])

	ytOnly, _ := ScoreCandidate(newCandidate(inf, []string{"youtube"}), DefaultRules())
	assert.Zero(t, ytOnly[RuleBlueTick])
}
