// internal/ranking/aggregate.go
package ranking

import (
	"strings"
	"time"

	"influencer-workers/internal/models"
)

// ScopeAccounts returns the influencer's active accounts restricted to the
// given platform subset. An empty subset means all active accounts. A
// non-empty subset with no matching account yields an empty slice; metrics
// for such a candidate are zeroed, never blended from other platforms.
func ScopeAccounts(inf *models.Influencer, platforms []string) []models.PlatformAccount {
	scoped := make([]models.PlatformAccount, 0, len(inf.Accounts))
	for _, acc := range inf.Accounts {
		if !acc.IsActive {
			continue
		}
		if len(platforms) > 0 && !containsFold(platforms, acc.Platform) {
			continue
		}
		scoped = append(scoped, acc)
	}
	return scoped
}

// Aggregate computes platform-scoped metrics over an influencer's active
// accounts. Candidates with no accounts in scope get zeroed metrics rather
// than being excluded.
func Aggregate(inf *models.Influencer, platforms []string) models.PlatformMetrics {
	return AggregateAccounts(ScopeAccounts(inf, platforms))
}

// AggregateAccounts sums followers and post counts and averages the
// per-account rates over the given accounts.
func AggregateAccounts(accounts []models.PlatformAccount) models.PlatformMetrics {
	var m models.PlatformMetrics
	if len(accounts) == 0 {
		return m
	}

	var sumEngagement, sumLikes, sumComments, sumViews float64
	var lastPosted *time.Time
	for _, acc := range accounts {
		m.TotalFollowers += acc.FollowersCount
		m.PostsCount += acc.PostsCount
		sumEngagement += clampRate(acc.EngagementRate)
		sumLikes += acc.AverageLikes
		sumComments += acc.AverageComments
		sumViews += acc.AverageVideoViews
		if acc.LastPostedAt != nil && (lastPosted == nil || acc.LastPostedAt.After(*lastPosted)) {
			t := *acc.LastPostedAt
			lastPosted = &t
		}
	}

	n := float64(len(accounts))
	m.AvgEngagementRate = sumEngagement / n
	m.AvgLikes = sumLikes / n
	m.AvgComments = sumComments / n
	m.AvgVideoViews = sumViews / n
	m.LastPostedAt = lastPosted
	return m
}

// clampRate keeps out-of-range engagement rates from poisoning the mean.
// Accounts reporting outside [0,100] are clamped, not rejected.
func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
