// internal/ranking/sorter.go
package ranking

import (
	"sort"

	"influencer-workers/internal/models"
)

// Order sorts scored candidates in place. The primary key is always the
// recommendation score, descending. The secondary key comes from sortBy with
// the requested direction; unset, "recommendation", or unknown keys fall back
// to total followers descending. Remaining ties break on fetch order, which
// keeps pagination reproducible for identical inputs regardless of how the
// scoring pass was sharded.
func Order(scored []*Candidate, sortBy, sortOrder string) {
	secondary := secondaryField(sortBy)
	// Direction only applies to an explicitly selected secondary field; the
	// followers fallback is always descending.
	ascending := sortOrder == models.SortOrderAsc &&
		sortBy != models.SortByRecommendation && validSortKeys[sortBy]

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.RecommendationScore != b.RecommendationScore {
			return a.RecommendationScore > b.RecommendationScore
		}
		av, bv := secondary(a), secondary(b)
		if av != bv {
			if ascending {
				return av < bv
			}
			return av > bv
		}
		return a.FetchIndex < b.FetchIndex
	})
}

func secondaryField(sortBy string) func(*Candidate) float64 {
	switch sortBy {
	case models.SortByEngagement:
		return func(c *Candidate) float64 { return c.Metrics.AvgEngagementRate }
	case models.SortByRating:
		return func(c *Candidate) float64 { return c.Influencer.AvgRating }
	case models.SortByInfluenceScore:
		return func(c *Candidate) float64 { return c.Influencer.InfluenceScore }
	case models.SortByAvgLikes:
		return func(c *Candidate) float64 { return c.Metrics.AvgLikes }
	case models.SortByAvgViews:
		return func(c *Candidate) float64 { return c.Metrics.AvgVideoViews }
	case models.SortByAvgComments:
		return func(c *Candidate) float64 { return c.Metrics.AvgComments }
	case models.SortByPostCount:
		return func(c *Candidate) float64 { return float64(c.Metrics.PostsCount) }
	case models.SortByRecency:
		return func(c *Candidate) float64 {
			if c.Metrics.LastPostedAt == nil {
				return 0
			}
			return float64(c.Metrics.LastPostedAt.Unix())
		}
	case models.SortByGrowthRate:
		return func(c *Candidate) float64 { return c.Influencer.GrowthRate }
	default:
		// Covers followers, recommendation, unset and unknown keys.
		return func(c *Candidate) float64 { return float64(c.Metrics.TotalFollowers) }
	}
}
