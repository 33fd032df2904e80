// internal/ranking/engine.go
package ranking

import (
	"sync"

	"influencer-workers/internal/models"
)

// Candidate carries one influencer through the pipeline together with its
// scoped accounts and aggregate metrics. Candidates are ephemeral: built per
// ranking pass, discarded after the response is serialized.
type Candidate struct {
	Influencer     *models.Influencer
	ScopedAccounts []models.PlatformAccount
	Metrics        models.PlatformMetrics
	Excluded       bool
	FetchIndex     int

	RuleScores          map[string]float64
	RecommendationScore float64
	PreferenceScore     float64
}

// MetricsFn resolves aggregate metrics for an influencer under a platform
// scope. The default recomputes from the accounts; callers may wrap it with a
// cache that serves pre-computed aggregates within a staleness bound.
type MetricsFn func(inf *models.Influencer, platforms []string) models.PlatformMetrics

// Engine runs the full pipeline: aggregate, filter, score, order, paginate.
// It holds only immutable configuration, so a single Engine is safe for
// concurrent ranking passes.
type Engine struct {
	rules   []Rule
	shards  int
	metrics MetricsFn
}

// NewEngine builds an engine over the given rule table. shards bounds the
// scoring fan-out; values below 1 fall back to 1. metricsFn may be nil, in
// which case metrics are recomputed per candidate.
func NewEngine(rules []Rule, shards int, metricsFn MetricsFn) *Engine {
	if shards < 1 {
		shards = 1
	}
	if metricsFn == nil {
		metricsFn = Aggregate
	}
	return &Engine{rules: rules, shards: shards, metrics: metricsFn}
}

// Rules exposes the active rule table, mainly for catalogs and tests.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Rank transforms the fetched pool into an ordered, scored page. excluded
// holds influencer IDs already engaged in the request's campaign scope.
// Filters yielding zero candidates produce a valid empty page, not an error.
func (e *Engine) Rank(pool []models.Influencer, p *models.SearchParameters, excluded map[string]struct{}) *models.SearchPage {
	candidates := make([]*Candidate, len(pool))
	for i := range pool {
		inf := &pool[i]
		_, isExcluded := excluded[inf.ID]
		candidates[i] = &Candidate{
			Influencer:     inf,
			ScopedAccounts: ScopeAccounts(inf, p.Platforms),
			Metrics:        e.metrics(inf, p.Platforms),
			Excluded:       isExcluded,
			FetchIndex:     i,
		}
	}

	filtered := ApplyFilters(candidates, p)

	e.scoreAll(filtered, p)

	Order(filtered, p.SortBy, p.SortOrder)

	return paginate(filtered, p.Page, p.PageSize)
}

// scoreAll shards the batch across workers. Each candidate is scored
// independently and writes only to itself, so the output is identical to a
// sequential pass no matter how the shards are scheduled.
func (e *Engine) scoreAll(candidates []*Candidate, p *models.SearchParameters) {
	score := func(c *Candidate) {
		c.RuleScores, c.RecommendationScore = ScoreCandidate(c, e.rules)
		c.PreferenceScore = PreferenceScore(c.Influencer, p)
	}

	if e.shards == 1 || len(candidates) < e.shards*2 {
		for _, c := range candidates {
			score(c)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (len(candidates) + e.shards - 1) / e.shards
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(shard []*Candidate) {
			defer wg.Done()
			for _, c := range shard {
				score(c)
			}
		}(candidates[start:end])
	}
	wg.Wait()
}

func paginate(ordered []*Candidate, page, pageSize int) *models.SearchPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	total := len(ordered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]models.RankedInfluencer, 0, end-start)
	for _, c := range ordered[start:end] {
		items = append(items, models.RankedInfluencer{
			InfluencerID:        c.Influencer.ID,
			Name:                c.Influencer.Name,
			RecommendationScore: c.RecommendationScore,
			PreferenceScore:     c.PreferenceScore,
			RuleScores:          c.RuleScores,
			Metrics:             c.Metrics,
		})
	}

	return &models.SearchPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
