package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"influencer-workers/internal/common/camunda"
	"influencer-workers/internal/common/config"
	"influencer-workers/internal/common/database"
	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/common/observability"
	"influencer-workers/internal/ranking"
	"influencer-workers/internal/store"

	fo "influencer-workers/internal/workers/discovery/filter-options"
	psp "influencer-workers/internal/workers/discovery/parse-search-params"
	ri "influencer-workers/internal/workers/discovery/rank-influencers"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client (connect retries internally) ---
	zeebeClient, err := camunda.Connect(camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var searchIndex *store.SearchIndex
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		searchIndex = store.NewSearchIndex(esClient.Client, cfg.Database.Elasticsearch.Index)
		zapLog.Info("Elasticsearch connected successfully",
			zap.String("index", cfg.Database.Elasticsearch.Index),
		)
	} else {
		zapLog.Info("Elasticsearch disabled, text search runs in memory only")
	}

	// --- Shared data access layer ---
	pgStore := store.NewPostgresStore(pg.DB)
	metricsCache := store.NewMetricsCache(rdb.Client, config.GetDuration(cfg.Ranking.CacheTTLMs), log)
	optionsCache := store.NewMetricsCache(rdb.Client, config.GetDuration(cfg.Ranking.OptionsCacheIn), log)

	// --- Register Workers ---
	workers := &camunda.Group{}

	if cfg.Workers[psp.TaskType].Enabled {
		handler := psp.NewHandler(
			&psp.Config{
				Timeout: config.GetDuration(cfg.Workers[psp.TaskType].Timeout),
			},
			log,
		)
		workers.Add(zeebeClient.OpenWorker(psp.TaskType, workerOptions(cfg.Workers[psp.TaskType]), handler.Handle, zapLog))
	}

	var rankHandler *ri.Handler
	if cfg.Workers[ri.TaskType].Enabled {
		rankHandler = ri.NewHandler(
			&ri.Config{
				Timeout:       config.GetDuration(cfg.Workers[ri.TaskType].Timeout),
				FetchLimit:    cfg.Ranking.FetchLimit,
				ScoringShards: cfg.Ranking.ScoringShards,
				RuleWeights:   cfg.Ranking.RuleWeights,
			},
			pgStore, metricsCache, searchIndex, log,
		)
		workers.Add(zeebeClient.OpenWorker(ri.TaskType, workerOptions(cfg.Workers[ri.TaskType]), rankHandler.Handle, zapLog))
	}

	if cfg.Workers[fo.TaskType].Enabled {
		rules := ranking.ApplyWeightOverrides(ranking.DefaultRules(), cfg.Ranking.RuleWeights)
		if rankHandler != nil {
			rules = rankHandler.Rules()
		}
		handler := fo.NewHandler(
			&fo.Config{
				Timeout: config.GetDuration(cfg.Workers[fo.TaskType].Timeout),
			},
			pgStore, optionsCache, rules, log,
		)
		workers.Add(zeebeClient.OpenWorker(fo.TaskType, workerOptions(cfg.Workers[fo.TaskType]), handler.Handle, zapLog))
	}

	zapLog.Info("All discovery workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			} else if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	workers.CloseAll()
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func workerOptions(wcfg config.WorkerConfig) camunda.WorkerOptions {
	return camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}
}
