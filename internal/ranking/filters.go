// internal/ranking/filters.go
package ranking

import (
	"strings"
	"time"

	"influencer-workers/internal/models"
)

// FollowerRange is a named follower bucket. Max < 0 means open-ended.
// Buckets are half-open: [Min, Max).
type FollowerRange struct {
	Label string
	Min   int64
	Max   int64
}

// FollowerRanges lists the named buckets in display order. The slice is
// package-level configuration, never mutated per request.
var FollowerRanges = []FollowerRange{
	{Label: "1K - 10K", Min: 1_000, Max: 10_000},
	{Label: "10K - 50K", Min: 10_000, Max: 50_000},
	{Label: "50K - 100K", Min: 50_000, Max: 100_000},
	{Label: "100K - 500K", Min: 100_000, Max: 500_000},
	{Label: "500K - 1M", Min: 500_000, Max: 1_000_000},
	{Label: "1M - 5M", Min: 1_000_000, Max: 5_000_000},
	{Label: "5M+", Min: 5_000_000, Max: -1},
}

// LookupFollowerRange resolves a bucket label; ok is false for unknown labels,
// which the filter treats as unset.
func LookupFollowerRange(label string) (FollowerRange, bool) {
	for _, fr := range FollowerRanges {
		if fr.Label == label {
			return fr, true
		}
	}
	return FollowerRange{}, false
}

// FilterStage is one predicate of the pipeline. Stages are pure and
// independent; a stage returns true to keep the candidate.
type FilterStage struct {
	Name  string
	Keep  func(c *Candidate, p *models.SearchParameters) bool
	IsSet func(p *models.SearchParameters) bool
}

// Stages returns the ordered filter pipeline. Stages whose parameter is unset
// are skipped; the aggregate-dependent stages (followers, engagement, rating,
// performance) rely on candidate metrics computed before filtering runs.
func Stages() []FilterStage {
	return []FilterStage{
		{
			Name:  "text_search",
			IsSet: func(p *models.SearchParameters) bool { return p.Search != "" },
			Keep:  keepTextSearch,
		},
		{
			Name:  "platform",
			IsSet: func(p *models.SearchParameters) bool { return len(p.Platforms) > 0 },
			Keep: func(c *Candidate, p *models.SearchParameters) bool {
				return len(c.ScopedAccounts) > 0
			},
		},
		{
			Name: "location",
			IsSet: func(p *models.SearchParameters) bool {
				return p.Country != "" || p.State != "" || p.City != "" || p.Location != ""
			},
			Keep: keepLocation,
		},
		{
			Name:  "gender",
			IsSet: func(p *models.SearchParameters) bool { return p.Gender != "" },
			Keep: func(c *Candidate, p *models.SearchParameters) bool {
				return strings.EqualFold(c.Influencer.Gender, p.Gender)
			},
		},
		{
			Name: "industry",
			IsSet: func(p *models.SearchParameters) bool {
				return p.IndustryID != nil || p.Industry != ""
			},
			Keep: keepIndustry,
		},
		{
			Name: "follower_range",
			IsSet: func(p *models.SearchParameters) bool {
				return p.FollowerRange != "" || p.MinFollowers != nil || p.MaxFollowers != nil
			},
			Keep: keepFollowerRange,
		},
		{
			Name: "engagement",
			IsSet: func(p *models.SearchParameters) bool {
				return p.MinEngagement != nil || p.MaxEngagement != nil
			},
			Keep: func(c *Candidate, p *models.SearchParameters) bool {
				return inRange(c.Metrics.AvgEngagementRate, p.MinEngagement, p.MaxEngagement)
			},
		},
		{
			Name: "rating",
			IsSet: func(p *models.SearchParameters) bool {
				return p.MinRating != nil || p.MaxRating != nil
			},
			Keep: func(c *Candidate, p *models.SearchParameters) bool {
				return inRange(c.Influencer.AvgRating, p.MinRating, p.MaxRating)
			},
		},
		{
			Name:  "campaign_exclusion",
			IsSet: func(p *models.SearchParameters) bool { return p.ExcludeCampaignID != "" },
			Keep: func(c *Candidate, p *models.SearchParameters) bool {
				return !c.Excluded
			},
		},
		{
			Name: "special_flags",
			IsSet: func(p *models.SearchParameters) bool {
				return p.FasterResponses || p.CommerceReady || p.CampaignReady || p.BarterReady ||
					p.HasPlatform != "" || p.HasVerifiedPlatform != ""
			},
			Keep: keepSpecialFlags,
		},
		{
			Name: "keywords",
			IsSet: func(p *models.SearchParameters) bool {
				return p.CaptionKeyword != "" || p.BioKeyword != ""
			},
			Keep: keepKeywords,
		},
		{
			Name: "performance",
			IsSet: func(p *models.SearchParameters) bool {
				return p.MinAvgLikes != nil || p.MinAvgViews != nil || p.MinAvgComments != nil ||
					p.LastPostedWithinDays != nil
			},
			Keep: keepPerformance,
		},
		{
			Name: "audience",
			IsSet: func(p *models.SearchParameters) bool {
				return p.AudienceGender != "" || p.AudienceAge != "" || p.AudienceLocation != "" ||
					p.AudienceInterest != "" || p.AudienceLanguage != ""
			},
			Keep: keepAudience,
		},
	}
}

// ApplyFilters runs every applicable stage over the candidate batch and
// returns the survivors in input order. Applying a stage twice yields the
// same result as applying it once.
func ApplyFilters(candidates []*Candidate, p *models.SearchParameters) []*Candidate {
	stages := Stages()
	kept := make([]*Candidate, 0, len(candidates))

	for _, c := range candidates {
		keep := true
		for _, stage := range stages {
			if !stage.IsSet(p) {
				continue
			}
			if !stage.Keep(c, p) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, c)
		}
	}
	return kept
}

func keepTextSearch(c *Candidate, p *models.SearchParameters) bool {
	needle := strings.ToLower(p.Search)
	inf := c.Influencer

	haystacks := []string{inf.Name, inf.Bio, inf.IndustryName}
	for _, acc := range inf.Accounts {
		haystacks = append(haystacks, acc.Handle)
	}
	haystacks = append(haystacks, inf.CaptionKeywords...)
	haystacks = append(haystacks, inf.BioKeywords...)

	for _, h := range haystacks {
		if h != "" && strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func keepLocation(c *Candidate, p *models.SearchParameters) bool {
	inf := c.Influencer
	if p.Country != "" && !containsLower(inf.Country, p.Country) {
		return false
	}
	if p.State != "" && !containsLower(inf.State, p.State) {
		return false
	}
	if p.City != "" && !containsLower(inf.City, p.City) {
		return false
	}
	if p.Location != "" {
		// Free-text location matches any of the three fields.
		if !containsLower(inf.Country, p.Location) &&
			!containsLower(inf.State, p.Location) &&
			!containsLower(inf.City, p.Location) {
			return false
		}
	}
	return true
}

func keepIndustry(c *Candidate, p *models.SearchParameters) bool {
	inf := c.Influencer
	if p.IndustryID != nil {
		return inf.IndustryID == *p.IndustryID
	}
	return strings.EqualFold(inf.IndustryKey, p.Industry) ||
		strings.EqualFold(inf.IndustryName, p.Industry)
}

func keepFollowerRange(c *Candidate, p *models.SearchParameters) bool {
	followers := c.Metrics.TotalFollowers

	if p.FollowerRange != "" {
		if fr, ok := LookupFollowerRange(p.FollowerRange); ok {
			if followers < fr.Min {
				return false
			}
			if fr.Max >= 0 && followers >= fr.Max {
				return false
			}
		}
	}
	if p.MinFollowers != nil && followers < *p.MinFollowers {
		return false
	}
	if p.MaxFollowers != nil && followers > *p.MaxFollowers {
		return false
	}
	return true
}

func keepSpecialFlags(c *Candidate, p *models.SearchParameters) bool {
	inf := c.Influencer
	if p.FasterResponses && !inf.FasterResponses {
		return false
	}
	if p.CommerceReady && !inf.CommerceReady {
		return false
	}
	if p.CampaignReady && !inf.CampaignReady {
		return false
	}
	if p.BarterReady && !inf.BarterReady {
		return false
	}
	if p.HasPlatform != "" && !hasAccountOn(inf, p.HasPlatform, false) {
		return false
	}
	if p.HasVerifiedPlatform != "" && !hasAccountOn(inf, p.HasVerifiedPlatform, true) {
		return false
	}
	return true
}

func hasAccountOn(inf *models.Influencer, platform string, mustBeVerified bool) bool {
	for _, acc := range inf.Accounts {
		if !acc.IsActive || !strings.EqualFold(acc.Platform, platform) {
			continue
		}
		if !mustBeVerified || acc.AccountVerified {
			return true
		}
	}
	return false
}

func keepKeywords(c *Candidate, p *models.SearchParameters) bool {
	inf := c.Influencer
	if p.CaptionKeyword != "" && !containsFold(inf.CaptionKeywords, p.CaptionKeyword) {
		return false
	}
	if p.BioKeyword != "" && !containsFold(inf.BioKeywords, p.BioKeyword) {
		return false
	}
	return true
}

func keepPerformance(c *Candidate, p *models.SearchParameters) bool {
	// Performance thresholds are OR-matched across the scoped accounts: one
	// account clearing the bar is enough.
	if p.MinAvgLikes != nil && !anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool {
		return a.AverageLikes >= *p.MinAvgLikes
	}) {
		return false
	}
	if p.MinAvgViews != nil && !anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool {
		return a.AverageVideoViews >= *p.MinAvgViews
	}) {
		return false
	}
	if p.MinAvgComments != nil && !anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool {
		return a.AverageComments >= *p.MinAvgComments
	}) {
		return false
	}
	if p.LastPostedWithinDays != nil {
		cutoff := timeNow().AddDate(0, 0, -*p.LastPostedWithinDays)
		if !anyAccount(c.ScopedAccounts, func(a models.PlatformAccount) bool {
			return a.LastPostedAt != nil && a.LastPostedAt.After(cutoff)
		}) {
			return false
		}
	}
	return true
}

func keepAudience(c *Candidate, p *models.SearchParameters) bool {
	inf := c.Influencer
	checks := []struct {
		key  string
		dist map[string]float64
	}{
		{p.AudienceGender, inf.AudienceGender},
		{p.AudienceAge, inf.AudienceAge},
		{p.AudienceLocation, inf.AudienceLocation},
		{p.AudienceInterest, inf.AudienceInterests},
		{p.AudienceLanguage, inf.AudienceLanguages},
	}
	for _, check := range checks {
		if check.key == "" {
			continue
		}
		if audienceShare(check.dist, check.key) <= 0 {
			return false
		}
	}
	return true
}

func audienceShare(dist map[string]float64, bucket string) float64 {
	if dist == nil {
		return 0
	}
	if share, ok := dist[bucket]; ok {
		return share
	}
	for k, share := range dist {
		if strings.EqualFold(k, bucket) {
			return share
		}
	}
	return 0
}

func anyAccount(accounts []models.PlatformAccount, match func(models.PlatformAccount) bool) bool {
	for _, acc := range accounts {
		if match(acc) {
			return true
		}
	}
	return false
}

func containsLower(haystack, needle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inRange(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

// timeNow is swapped in tests that exercise recency filtering.
var timeNow = time.Now
