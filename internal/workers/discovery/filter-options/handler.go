// internal/workers/discovery/filter-options/handler.go
package filteroptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/common/metrics"
	"influencer-workers/internal/models"
	"influencer-workers/internal/ranking"
	"influencer-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "filter-options"

const optionsCacheKey = "influencer:filter-options:v1"

var (
	ErrFilterOptionsFailed = errors.New("FILTER_OPTIONS_FAILED")
)

var sortOptions = []SortOption{
	{Key: models.SortByRecommendation, Label: "Recommended", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByFollowers, Label: "Most followers", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByEngagement, Label: "Highest engagement", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByRating, Label: "Top rated", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByInfluenceScore, Label: "Influence score", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByAvgLikes, Label: "Average likes", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByAvgViews, Label: "Average video views", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByAvgComments, Label: "Average comments", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByPostCount, Label: "Most posts", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByRecency, Label: "Recently active", DefaultOrder: models.SortOrderDesc},
	{Key: models.SortByGrowthRate, Label: "Fastest growing", DefaultOrder: models.SortOrderDesc},
}

var ratingBuckets = []RatingBucket{
	{Label: "4 stars & up", Min: 4},
	{Label: "3 stars & up", Min: 3},
	{Label: "2 stars & up", Min: 2},
	{Label: "1 star & up", Min: 1},
}

type Handler struct {
	config *Config
	store  store.InfluencerStore
	cache  *store.MetricsCache
	rules  []ranking.Rule
	logger logger.Logger
}

// NewHandler builds the filter-options worker. cache may be nil; the payload
// is then rebuilt from the store on every job. rules should be the same
// table the rank-influencers worker scores with.
func NewHandler(config *Config, st store.InfluencerStore, cache *store.MetricsCache, rules []ranking.Rule, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  st,
		cache:  cache,
		rules:  rules,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "FILTER_OPTIONS_FAILED").Inc()
		h.failJob(client, job, "FILTER_OPTIONS_FAILED", err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.cache != nil && !input.Refresh {
		var cached FilterOptions
		if h.cache.GetJSON(ctx, optionsCacheKey, &cached) {
			return &Output{FilterOptions: cached}, nil
		}
	}

	sets, err := h.store.OptionSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: option sets: %v", ErrFilterOptionsFailed, err)
	}

	stats, err := h.store.DatasetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset stats: %v", ErrFilterOptionsFailed, err)
	}

	opts := FilterOptions{
		Platforms:      sets.Platforms,
		Locations:      sets.Locations,
		Categories:     sets.Categories,
		FollowerRanges: followerRangeOptions(),
		RatingBuckets:  ratingBuckets,
		SortOptions:    sortOptions,
		Rules:          ruleCatalog(h.rules),
		Stats:          stats,
		GeneratedAt:    time.Now().UTC(),
	}

	if h.cache != nil {
		h.cache.SetJSON(ctx, optionsCacheKey, opts)
	}

	h.logger.Info("filter options built", map[string]interface{}{
		"platforms":  len(opts.Platforms),
		"locations":  len(opts.Locations),
		"categories": len(opts.Categories),
	})

	return &Output{FilterOptions: opts}, nil
}

func followerRangeOptions() []FollowerRangeOption {
	out := make([]FollowerRangeOption, 0, len(ranking.FollowerRanges))
	for _, r := range ranking.FollowerRanges {
		out = append(out, FollowerRangeOption{Label: r.Label, Min: r.Min, Max: r.Max})
	}
	return out
}

func ruleCatalog(rules []ranking.Rule) []RuleInfo {
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{Key: r.Key, Name: r.Name, Weight: r.Weight})
	}
	return out
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
