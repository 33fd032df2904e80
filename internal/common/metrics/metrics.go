// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influencer_searches_total",
			Help: "Total number of influencer searches processed",
		},
		[]string{"sort_by"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "influencer_search_duration_seconds",
			Help: "End to end duration of the ranking pipeline in seconds",
		},
		[]string{"stage"},
	)

	RankingPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "influencer_ranking_pool_size",
			Help:    "Candidate pool size entering the ranking pipeline",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	CandidatesFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influencer_candidates_filtered_total",
			Help: "Candidates removed per filter stage",
		},
		[]string{"stage"},
	)

	MetricCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "influencer_metric_cache_hits_total",
			Help: "Metric cache lookups served from Redis",
		},
	)

	MetricCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "influencer_metric_cache_misses_total",
			Help: "Metric cache lookups that fell through to aggregation",
		},
	)
)
