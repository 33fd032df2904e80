// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"influencer-workers/internal/common/config"
	"influencer-workers/internal/common/database"
	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/models"
	"influencer-workers/internal/ranking"
	"influencer-workers/internal/store"

	filteroptions "influencer-workers/internal/workers/discovery/filter-options"
	parsesearchparams "influencer-workers/internal/workers/discovery/parse-search-params"
	rankinfluencers "influencer-workers/internal/workers/discovery/rank-influencers"
)

var zapLog *zap.Logger

func TestMain(m *testing.M) {
	zapLog, _ = zap.NewProduction()
	m.Run()
}

// TestFullE2E exercises the discovery workers against real Postgres, Redis
// and Zeebe. It skips when those services are not reachable, so the unit
// suite stays runnable without infrastructure.
func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("config not loadable, skipping e2e: %v", err)
	}

	// Local service endpoints for e2e runs.
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Camunda.BrokerAddress = "localhost:26500"

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil || pg.Ping(ctx) != nil {
		t.Skip("postgres not available, skipping e2e")
	}
	defer pg.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil || rdb.Ping(ctx) != nil {
		t.Skip("redis not available, skipping e2e")
	}
	defer rdb.Close()

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err == nil {
		if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err == nil {
			t.Log("zeebe connected")
		}
		defer zeebeClient.Close()
	}

	createDatabaseTables(t, ctx, pg)
	seedTestData(t, ctx, pg)

	log := logger.NewZapAdapter(zapLog)
	pgStore := store.NewPostgresStore(pg.GetDB())
	metricsCache := store.NewMetricsCache(rdb.GetClient(), time.Minute, log)
	rules := ranking.ApplyWeightOverrides(ranking.DefaultRules(), cfg.Ranking.RuleWeights)

	t.Run("parse-search-params", func(t *testing.T) {
		handler := parsesearchparams.NewHandler(&parsesearchparams.Config{Timeout: 10 * time.Second}, log)
		out, err := handler.Execute(ctx, &parsesearchparams.Input{
			SearchRequest: map[string]interface{}{
				"platforms": "instagram",
				"sortBy":    "engagement",
				"pageSize":  float64(10),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"instagram"}, out.SearchParams.Platforms)
		assert.Equal(t, models.SortByEngagement, out.SearchParams.SortBy)
	})

	t.Run("rank-influencers", func(t *testing.T) {
		handler := rankinfluencers.NewHandler(&rankinfluencers.Config{
			Timeout:       30 * time.Second,
			FetchLimit:    1000,
			ScoringShards: 4,
		}, pgStore, metricsCache, nil, log)

		out, err := handler.Execute(ctx, &rankinfluencers.Input{
			SearchParams: ranking.ParseSearchParameters(map[string]interface{}{
				"platforms": "instagram",
			}),
		})
		require.NoError(t, err)
		require.NotNil(t, out.Results)
		assert.NotEmpty(t, out.RequestID)
		for i := 1; i < len(out.Results.Items); i++ {
			assert.GreaterOrEqual(t,
				out.Results.Items[i-1].RecommendationScore,
				out.Results.Items[i].RecommendationScore)
		}
	})

	t.Run("filter-options", func(t *testing.T) {
		optionsCache := store.NewMetricsCache(rdb.GetClient(), time.Minute, log)
		handler := filteroptions.NewHandler(&filteroptions.Config{Timeout: 15 * time.Second},
			pgStore, optionsCache, rules, log)

		out, err := handler.Execute(ctx, &filteroptions.Input{Refresh: true})
		require.NoError(t, err)
		assert.NotEmpty(t, out.FilterOptions.SortOptions)
		assert.NotEmpty(t, out.FilterOptions.FollowerRanges)
		assert.NotEmpty(t, out.FilterOptions.Rules)
	})
}

func createDatabaseTables(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS influencers (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			bio TEXT DEFAULT '',
			platform_verified BOOLEAN DEFAULT false,
			account_verified BOOLEAN DEFAULT false,
			fully_verified BOOLEAN DEFAULT false,
			email_verified BOOLEAN DEFAULT false,
			phone_verified BOOLEAN DEFAULT false,
			gender VARCHAR(50) DEFAULT '',
			age_bracket VARCHAR(50) DEFAULT '',
			country VARCHAR(100) DEFAULT '',
			state VARCHAR(100) DEFAULT '',
			city VARCHAR(100) DEFAULT '',
			industry_id INTEGER DEFAULT 0,
			industry_key VARCHAR(100) DEFAULT '',
			industry_name VARCHAR(255) DEFAULT '',
			categories TEXT[] DEFAULT '{}',
			caption_keywords TEXT[] DEFAULT '{}',
			bio_keywords TEXT[] DEFAULT '{}',
			faster_responses BOOLEAN DEFAULT false,
			commerce_ready BOOLEAN DEFAULT false,
			campaign_ready BOOLEAN DEFAULT false,
			barter_ready BOOLEAN DEFAULT false,
			min_collab_amount NUMERIC,
			collab_types TEXT[] DEFAULT '{}',
			avg_rating DOUBLE PRECISION DEFAULT 0,
			collaboration_count INTEGER DEFAULT 0,
			influence_score DOUBLE PRECISION DEFAULT 0,
			growth_rate DOUBLE PRECISION DEFAULT 0,
			audience_gender JSONB,
			audience_age JSONB,
			audience_location JSONB,
			audience_interests JSONB,
			audience_languages JSONB,
			is_published BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS platform_accounts (
			id SERIAL PRIMARY KEY,
			influencer_id VARCHAR(255) REFERENCES influencers(id),
			platform VARCHAR(50) NOT NULL,
			handle VARCHAR(255) DEFAULT '',
			is_active BOOLEAN DEFAULT true,
			followers_count BIGINT DEFAULT 0,
			engagement_rate DOUBLE PRECISION DEFAULT 0,
			average_likes DOUBLE PRECISION DEFAULT 0,
			average_comments DOUBLE PRECISION DEFAULT 0,
			average_video_views DOUBLE PRECISION DEFAULT 0,
			posts_count INTEGER DEFAULT 0,
			platform_verified BOOLEAN DEFAULT false,
			account_verified BOOLEAN DEFAULT false,
			last_posted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS campaign_influencers (
			id SERIAL PRIMARY KEY,
			campaign_id VARCHAR(255) NOT NULL,
			influencer_id VARCHAR(255) NOT NULL,
			UNIQUE(campaign_id, influencer_id)
		)`,
	}

	db := pg.GetDB()
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			t.Logf("warning: failed to create table: %v", err)
		}
	}
}

func seedTestData(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	db := pg.GetDB()

	seeds := []string{
		`INSERT INTO influencers (id, name, bio, fully_verified, email_verified, phone_verified,
			gender, country, city, industry_id, industry_key, industry_name, categories,
			avg_rating, collaboration_count, influence_score)
		 VALUES ('e2e-inf-001', 'E2E Creator One', 'Fashion and lifestyle', true, true, true,
			'female', 'India', 'Mumbai', 3, 'fashion', 'Fashion', '{makeup,ootd}', 4.5, 12, 72.5)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO influencers (id, name, bio, email_verified, gender, country, city,
			industry_id, industry_key, industry_name, avg_rating)
		 VALUES ('e2e-inf-002', 'E2E Creator Two', 'Tech reviews', true,
			'male', 'India', 'Bengaluru', 7, 'tech', 'Technology', 3.8)
		 ON CONFLICT (id) DO NOTHING`,
	}
	for i, id := range []string{"e2e-inf-001", "e2e-inf-002"} {
		seeds = append(seeds, fmt.Sprintf(
			`INSERT INTO platform_accounts (influencer_id, platform, handle, is_active,
				followers_count, engagement_rate, average_likes, posts_count, account_verified, last_posted_at)
			 SELECT '%s', 'instagram', '@e2e%d', true, %d, %f, 500, 100, true, NOW() - INTERVAL '2 days'
			 WHERE NOT EXISTS (SELECT 1 FROM platform_accounts WHERE influencer_id = '%s' AND platform = 'instagram')`,
			id, i+1, 50_000*(i+1), 4.2+float64(i), id))
	}

	for _, query := range seeds {
		if _, err := db.ExecContext(ctx, query); err != nil {
			t.Logf("warning: failed to seed test data: %v", err)
		}
	}
}

// seededStore serves a fixed pool without any backing services.
type seededStore struct {
	pool []models.Influencer
}

func (s *seededStore) FetchInfluencers(ctx context.Context, scope store.FetchScope) ([]models.Influencer, error) {
	return s.pool, nil
}

func (s *seededStore) CampaignInfluencerIDs(ctx context.Context, campaignID string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (s *seededStore) DatasetStats(ctx context.Context) (*store.DatasetStats, error) {
	return &store.DatasetStats{InfluencerCount: len(s.pool)}, nil
}

func (s *seededStore) OptionSets(ctx context.Context) (*store.OptionSets, error) {
	return &store.OptionSets{Platforms: []string{"instagram"}}, nil
}

func benchmarkPool(n int) []models.Influencer {
	now := time.Now()
	pool := make([]models.Influencer, n)
	for i := 0; i < n; i++ {
		lastPosted := now.AddDate(0, 0, -(i % 60))
		pool[i] = models.Influencer{
			ID:                 fmt.Sprintf("bench-%05d", i),
			Name:               fmt.Sprintf("Bench Creator %d", i),
			Bio:                "benchmark profile",
			FullyVerified:      i%4 == 0,
			EmailVerified:      i%2 == 0,
			PhoneVerified:      i%3 == 0,
			Gender:             []string{"female", "male"}[i%2],
			Country:            "India",
			IndustryID:         i%10 + 1,
			IndustryKey:        "fashion",
			AvgRating:          float64(i%6) * 0.9,
			CollaborationCount: i % 30,
			Accounts: []models.PlatformAccount{
				{
					Platform:        "instagram",
					Handle:          fmt.Sprintf("@bench%d", i),
					IsActive:        true,
					FollowersCount:  int64(1000 * (i + 1)),
					EngagementRate:  float64(i % 15),
					AverageLikes:    float64(100 * (i % 9)),
					PostsCount:      i % 400,
					AccountVerified: i%5 == 0,
					LastPostedAt:    &lastPosted,
				},
			},
		}
	}
	return pool
}

func BenchmarkHandler_RankInfluencers(b *testing.B) {
	handler := rankinfluencers.NewHandler(&rankinfluencers.Config{
		Timeout:       30 * time.Second,
		FetchLimit:    10000,
		ScoringShards: 4,
	}, &seededStore{pool: benchmarkPool(2000)}, nil, nil, logger.NewNoOpLogger())

	input := &rankinfluencers.Input{
		SearchParams: ranking.ParseSearchParameters(map[string]interface{}{
			"platforms":     "instagram",
			"minEngagement": float64(2),
			"sortBy":        "followers",
		}),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHandler_ParseSearchParams(b *testing.B) {
	handler := parsesearchparams.NewHandler(&parsesearchparams.Config{Timeout: 10 * time.Second}, logger.NewNoOpLogger())

	input := &parsesearchparams.Input{
		SearchRequest: map[string]interface{}{
			"search":        "fashion",
			"platforms":     []interface{}{"instagram", "youtube"},
			"minFollowers":  float64(10000),
			"minEngagement": float64(2.5),
			"sortBy":        "engagement",
			"page":          float64(1),
			"pageSize":      float64(50),
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_Rank(b *testing.B) {
	engine := ranking.NewEngine(ranking.DefaultRules(), 4, nil)
	pool := benchmarkPool(5000)
	params := ranking.ParseSearchParameters(map[string]interface{}{
		"platforms": "instagram",
		"gender":    "female",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Rank(pool, params, nil)
	}
}
