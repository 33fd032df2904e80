// internal/ranking/sorter_test.go
package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"influencer-workers/internal/models"
)

func scoredCandidate(id string, rec float64, followers int64, fetchIndex int) *Candidate {
	return &Candidate{
		Influencer:          &models.Influencer{ID: id, Name: id},
		Metrics:             models.PlatformMetrics{TotalFollowers: followers},
		RecommendationScore: rec,
		FetchIndex:          fetchIndex,
	}
}

func orderedIDs(scored []*Candidate) []string {
	ids := make([]string, 0, len(scored))
	for _, c := range scored {
		ids = append(ids, c.Influencer.ID)
	}
	return ids
}

func TestOrder_RecommendationScoreIsAlwaysPrimary(t *testing.T) {
	scored := []*Candidate{
		scoredCandidate("low", 100, 9_000_000, 0),
		scoredCandidate("high", 300, 10, 1),
		scoredCandidate("mid", 200, 500_000, 2),
	}

	// Even an ascending engagement sort never overrides the primary key.
	Order(scored, models.SortByEngagement, models.SortOrderAsc)
	assert.Equal(t, []string{"high", "mid", "low"}, orderedIDs(scored))
}

func TestOrder_FollowersFallbackOnTies(t *testing.T) {
	scored := []*Candidate{
		scoredCandidate("small", 200, 1_000, 0),
		scoredCandidate("big", 200, 1_000_000, 1),
	}

	Order(scored, models.SortByRecommendation, models.SortOrderDesc)
	assert.Equal(t, []string{"big", "small"}, orderedIDs(scored))
}

func TestOrder_FallbackIgnoresAscending(t *testing.T) {
	tests := []struct {
		name   string
		sortBy string
	}{
		{name: "recommendation key", sortBy: models.SortByRecommendation},
		{name: "unknown key", sortBy: "bogus"},
		{name: "empty key", sortBy: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := []*Candidate{
				scoredCandidate("small", 200, 1_000, 0),
				scoredCandidate("big", 200, 1_000_000, 1),
			}
			Order(scored, tt.sortBy, models.SortOrderAsc)
			assert.Equal(t, []string{"big", "small"}, orderedIDs(scored))
		})
	}
}

func TestOrder_ExplicitSecondaryHonorsDirection(t *testing.T) {
	mk := func() []*Candidate {
		a := scoredCandidate("low-eng", 200, 0, 0)
		a.Metrics.AvgEngagementRate = 2
		b := scoredCandidate("high-eng", 200, 0, 1)
		b.Metrics.AvgEngagementRate = 9
		return []*Candidate{a, b}
	}

	asc := mk()
	Order(asc, models.SortByEngagement, models.SortOrderAsc)
	assert.Equal(t, []string{"low-eng", "high-eng"}, orderedIDs(asc))

	desc := mk()
	Order(desc, models.SortByEngagement, models.SortOrderDesc)
	assert.Equal(t, []string{"high-eng", "low-eng"}, orderedIDs(desc))
}

func TestOrder_RecencySecondary(t *testing.T) {
	older := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	a := scoredCandidate("stale", 200, 0, 0)
	a.Metrics.LastPostedAt = &older
	b := scoredCandidate("fresh", 200, 0, 1)
	b.Metrics.LastPostedAt = &newer
	c := scoredCandidate("never", 200, 0, 2)

	scored := []*Candidate{a, b, c}
	Order(scored, models.SortByRecency, models.SortOrderDesc)
	assert.Equal(t, []string{"fresh", "stale", "never"}, orderedIDs(scored))
}

func TestOrder_FetchIndexBreaksFinalTies(t *testing.T) {
	scored := []*Candidate{
		scoredCandidate("second", 200, 1_000, 5),
		scoredCandidate("first", 200, 1_000, 2),
	}

	Order(scored, models.SortByFollowers, models.SortOrderDesc)
	assert.Equal(t, []string{"first", "second"}, orderedIDs(scored))
}
