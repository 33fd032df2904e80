// internal/ranking/params_test.go
package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-workers/internal/models"
)

func TestParseSearchParameters_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{name: "empty map", raw: map[string]interface{}{}},
		{name: "nil map", raw: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseSearchParameters(tt.raw)
			require.NotNil(t, p)
			assert.Equal(t, models.SortByRecommendation, p.SortBy)
			assert.Equal(t, models.SortOrderDesc, p.SortOrder)
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, models.DefaultPageSize, p.PageSize)
			assert.Empty(t, p.Platforms)
			assert.Nil(t, p.MinFollowers)
		})
	}
}

func TestParseSearchParameters_SortAndPagination(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]interface{}
		sortBy    string
		sortOrder string
		page      int
		pageSize  int
	}{
		{
			name:      "valid sort key and order",
			raw:       map[string]interface{}{"sortBy": "followers", "sortOrder": "ASC"},
			sortBy:    models.SortByFollowers,
			sortOrder: models.SortOrderAsc,
			page:      1,
			pageSize:  models.DefaultPageSize,
		},
		{
			name:      "unknown sort key falls back",
			raw:       map[string]interface{}{"sortBy": "bogus", "sortOrder": "sideways"},
			sortBy:    models.SortByRecommendation,
			sortOrder: models.SortOrderDesc,
			page:      1,
			pageSize:  models.DefaultPageSize,
		},
		{
			name:      "page below one ignored",
			raw:       map[string]interface{}{"page": float64(0), "pageSize": float64(25)},
			sortBy:    models.SortByRecommendation,
			sortOrder: models.SortOrderDesc,
			page:      1,
			pageSize:  25,
		},
		{
			name:      "page size capped",
			raw:       map[string]interface{}{"page": float64(3), "pageSize": float64(500)},
			sortBy:    models.SortByRecommendation,
			sortOrder: models.SortOrderDesc,
			page:      3,
			pageSize:  models.MaxPageSize,
		},
		{
			name:      "numeric strings parsed",
			raw:       map[string]interface{}{"page": "2", "pageSize": "10"},
			sortBy:    models.SortByRecommendation,
			sortOrder: models.SortOrderDesc,
			page:      2,
			pageSize:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseSearchParameters(tt.raw)
			assert.Equal(t, tt.sortBy, p.SortBy)
			assert.Equal(t, tt.sortOrder, p.SortOrder)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
		})
	}
}

func TestParseSearchParameters_Platforms(t *testing.T) {
	t.Run("legacy platform merges into set", func(t *testing.T) {
		p := ParseSearchParameters(map[string]interface{}{
			"platforms": []interface{}{"Instagram", "YouTube"},
			"platform":  "instagram",
		})
		assert.Equal(t, []string{"instagram", "youtube"}, p.Platforms)
	})

	t.Run("csv string with duplicates", func(t *testing.T) {
		p := ParseSearchParameters(map[string]interface{}{
			"platforms": "instagram, tiktok ,instagram",
		})
		assert.Equal(t, []string{"instagram", "tiktok"}, p.Platforms)
	})

	t.Run("single legacy platform only", func(t *testing.T) {
		p := ParseSearchParameters(map[string]interface{}{"platform": "TikTok"})
		assert.Equal(t, []string{"tiktok"}, p.Platforms)
	})
}

func TestParseSearchParameters_Industry(t *testing.T) {
	t.Run("numeric id", func(t *testing.T) {
		p := ParseSearchParameters(map[string]interface{}{"industry": "42"})
		require.NotNil(t, p.IndustryID)
		assert.Equal(t, 42, *p.IndustryID)
		assert.Empty(t, p.Industry)
	})

	t.Run("key string", func(t *testing.T) {
		p := ParseSearchParameters(map[string]interface{}{"industry": "fashion"})
		assert.Nil(t, p.IndustryID)
		assert.Equal(t, "fashion", p.Industry)
	})
}

func TestParseSearchParameters_LenientNumericFields(t *testing.T) {
	p := ParseSearchParameters(map[string]interface{}{
		"minFollowers":     float64(1000),
		"maxFollowers":     "50000",
		"minEngagement":    "not-a-number",
		"minRating":        float64(3.5),
		"lastPostedWithin": float64(-5),
		"minAvgLikes":      true, // wrong type, dropped
	})

	require.NotNil(t, p.MinFollowers)
	assert.Equal(t, int64(1000), *p.MinFollowers)
	require.NotNil(t, p.MaxFollowers)
	assert.Equal(t, int64(50000), *p.MaxFollowers)
	assert.Nil(t, p.MinEngagement)
	require.NotNil(t, p.MinRating)
	assert.Equal(t, 3.5, *p.MinRating)
	assert.Nil(t, p.LastPostedWithinDays)
	assert.Nil(t, p.MinAvgLikes)
}

func TestParseSearchParameters_Booleans(t *testing.T) {
	p := ParseSearchParameters(map[string]interface{}{
		"fasterResponses": true,
		"commerceReady":   "true",
		"campaignReady":   "True", // not the exact token
		"barterReady":     "yes",
	})

	assert.True(t, p.FasterResponses)
	assert.True(t, p.CommerceReady)
	assert.False(t, p.CampaignReady)
	assert.False(t, p.BarterReady)
}

func TestParseSearchParameters_Preferences(t *testing.T) {
	p := ParseSearchParameters(map[string]interface{}{
		"categories":               []interface{}{"fashion", "beauty"},
		"collaborationPreferences": "cash,barter",
		"maxCollabAmount":          float64(5000),
		"ageBracket":               "18-24",
		"campaignId":               "camp-7",
	})

	assert.Equal(t, []string{"fashion", "beauty"}, p.PreferredCategories)
	assert.Equal(t, []string{"cash", "barter"}, p.PreferredCollabTypes)
	require.NotNil(t, p.MaxCollabAmount)
	assert.Equal(t, 5000.0, *p.MaxCollabAmount)
	assert.Equal(t, "18-24", p.PreferredAgeBracket)
	assert.Equal(t, "camp-7", p.ExcludeCampaignID)
}
