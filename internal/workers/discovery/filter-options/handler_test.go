// internal/workers/discovery/filter-options/handler_test.go
package filteroptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/models"
	"influencer-workers/internal/ranking"
	"influencer-workers/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sets     *store.OptionSets
	stats    *store.DatasetStats
	setsErr  error
	statsErr error
	calls    int
}

func (f *fakeStore) FetchInfluencers(_ context.Context, _ store.FetchScope) ([]models.Influencer, error) {
	return nil, nil
}

func (f *fakeStore) CampaignInfluencerIDs(_ context.Context, _ string) (map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeStore) DatasetStats(_ context.Context) (*store.DatasetStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeStore) OptionSets(_ context.Context) (*store.OptionSets, error) {
	f.calls++
	if f.setsErr != nil {
		return nil, f.setsErr
	}
	return f.sets, nil
}

func testStore() *fakeStore {
	return &fakeStore{
		sets: &store.OptionSets{
			Locations:  []string{"India", "Singapore"},
			Categories: []string{"beauty", "fitness", "tech"},
			Platforms:  []string{"instagram", "youtube"},
		},
		stats: &store.DatasetStats{
			InfluencerCount: 120,
			PlatformCount:   4,
			MinFollowers:    500,
			MaxFollowers:    12_000_000,
		},
	}
}

func createTestHandler(t *testing.T, st store.InfluencerStore, cache *store.MetricsCache) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, st, cache, ranking.DefaultRules(), logger.NewTestLogger(t))
}

func TestHandler_Execute_BuildsPayload(t *testing.T) {
	handler := createTestHandler(t, testStore(), nil)

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	opts := output.FilterOptions

	assert.Equal(t, []string{"instagram", "youtube"}, opts.Platforms)
	assert.Equal(t, []string{"India", "Singapore"}, opts.Locations)
	assert.Equal(t, []string{"beauty", "fitness", "tech"}, opts.Categories)
	require.NotNil(t, opts.Stats)
	assert.Equal(t, 120, opts.Stats.InfluencerCount)
	assert.False(t, opts.GeneratedAt.IsZero())

	require.Len(t, opts.FollowerRanges, len(ranking.FollowerRanges))
	for i, r := range ranking.FollowerRanges {
		assert.Equal(t, r.Label, opts.FollowerRanges[i].Label)
		assert.Equal(t, r.Min, opts.FollowerRanges[i].Min)
		assert.Equal(t, r.Max, opts.FollowerRanges[i].Max)
	}
	// The last bucket is open-ended.
	assert.Equal(t, int64(-1), opts.FollowerRanges[len(opts.FollowerRanges)-1].Max)

	require.NotEmpty(t, opts.SortOptions)
	assert.Equal(t, models.SortByRecommendation, opts.SortOptions[0].Key)
	for _, so := range opts.SortOptions {
		assert.Equal(t, models.SortOrderDesc, so.DefaultOrder)
	}

	require.Len(t, opts.Rules, len(ranking.DefaultRules()))
	assert.Equal(t, "full_verification", opts.Rules[0].Key)
	assert.Equal(t, 100.0, opts.Rules[0].Weight)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	st := testStore()
	st.setsErr = errors.New("connection refused")
	handler := createTestHandler(t, st, nil)

	output, err := handler.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilterOptionsFailed)
	assert.Nil(t, output)
}

func TestHandler_Execute_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := store.NewMetricsCache(client, time.Minute, logger.NewTestLogger(t))

	st := testStore()
	handler := createTestHandler(t, st, cache)

	first, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.calls)

	// Mutate the store; the cached payload must still be served.
	st.sets.Platforms = []string{"tiktok"}

	second, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.calls)
	assert.Equal(t, first.FilterOptions.Platforms, second.FilterOptions.Platforms)

	// Refresh bypasses the cache and rebuilds.
	third, err := handler.Execute(context.Background(), &Input{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, st.calls)
	assert.Equal(t, []string{"tiktok"}, third.FilterOptions.Platforms)
}

func TestHandler_Execute_CacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := store.NewMetricsCache(client, time.Minute, logger.NewTestLogger(t))

	st := testStore()
	handler := createTestHandler(t, st, cache)

	_, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 2, st.calls)
}
