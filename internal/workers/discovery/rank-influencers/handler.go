// internal/workers/discovery/rank-influencers/handler.go
package rankinfluencers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"influencer-workers/internal/common/errors"
	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/common/metrics"
	"influencer-workers/internal/models"
	"influencer-workers/internal/ranking"
	"influencer-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "rank-influencers"

type Handler struct {
	config       *Config
	store        store.InfluencerStore
	cache        *store.MetricsCache
	index        *store.SearchIndex
	rules        []ranking.Rule
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the ranking pipeline. cache and index may be nil; the
// pipeline then recomputes aggregates per pass and skips the text-index
// pushdown.
func NewHandler(config *Config, st store.InfluencerStore, cache *store.MetricsCache, index *store.SearchIndex, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        st,
		cache:        cache,
		index:        index,
		rules:        ranking.ApplyWeightOverrides(ranking.DefaultRules(), config.RuleWeights),
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeInvalidSearchParams)).Inc()
		h.errorHandler.HandleJobError(context.Background(), client, job,
			errors.NewInvalidSearchParamsError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errors.CodeOf(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (out *Output, err error) {
	// A panic on the rank path becomes a terminal RANKING_FAILED instead of
	// killing the worker loop.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.NewRankingFailedError(fmt.Errorf("rank panic: %v", r))
		}
	}()

	if input.SearchParams == nil {
		return nil, errors.NewInvalidSearchParamsError("searchParams variable is missing")
	}
	p := input.SearchParams
	requestID := uuid.New().String()
	started := time.Now()

	scope := store.FetchScope{
		Platforms: p.Platforms,
		Country:   p.Country,
		Gender:    p.Gender,
		Limit:     h.config.FetchLimit,
	}
	if p.MinFollowers != nil && *p.MinFollowers > 0 {
		scope.MinFollowers = *p.MinFollowers
	}

	// Optional text-index pushdown. The in-memory text stage re-applies the
	// same predicate, so a skipped or failed lookup only widens the fetch.
	if h.index != nil && p.Search != "" {
		ids, err := h.index.SearchIDs(ctx, p.Search, h.config.FetchLimit)
		if err != nil {
			h.logger.Warn("text index lookup failed, fetching unrestricted", map[string]interface{}{
				"requestId": requestID,
				"error":     err,
			})
		} else if len(ids) > 0 {
			scope.IDs = ids
		}
	}

	pool, err := h.store.FetchInfluencers(ctx, scope)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("fetch_influencers", err)
	}

	excluded := map[string]struct{}{}
	if p.ExcludeCampaignID != "" {
		excluded, err = h.store.CampaignInfluencerIDs(ctx, p.ExcludeCampaignID)
		if err != nil {
			return nil, errors.NewStoreUnavailableError("campaign_influencer_ids", err)
		}
	}

	engine := ranking.NewEngine(h.rules, h.config.ScoringShards, h.metricsFn(ctx))
	page := engine.Rank(pool, p, excluded)

	elapsed := time.Since(started)
	metrics.SearchesTotal.WithLabelValues(p.SortBy).Inc()
	metrics.SearchDuration.WithLabelValues("rank").Observe(elapsed.Seconds())
	metrics.RankingPoolSize.Observe(float64(len(pool)))
	metrics.CandidatesFiltered.WithLabelValues("pipeline").Add(float64(len(pool) - page.TotalCount))

	h.logger.Info("ranking completed", map[string]interface{}{
		"requestId":  requestID,
		"poolSize":   len(pool),
		"totalCount": page.TotalCount,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"sortBy":     p.SortBy,
		"durationMs": elapsed.Milliseconds(),
	})

	return &Output{RequestID: requestID, Results: page}, nil
}

// metricsFn routes aggregate lookups through the Redis cache when configured.
func (h *Handler) metricsFn(ctx context.Context) ranking.MetricsFn {
	if h.cache == nil {
		return nil
	}
	return func(inf *models.Influencer, platforms []string) models.PlatformMetrics {
		return h.cache.GetOrCompute(ctx, inf, platforms, ranking.Aggregate)
	}
}

// Rules exposes the active rule table for the filter-options catalog.
func (h *Handler) Rules() []ranking.Rule {
	return h.rules
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
