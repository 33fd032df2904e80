// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"influencer-workers/internal/models"

	"github.com/lib/pq"
)

// PostgresStore implements InfluencerStore over the influencers,
// platform_accounts and campaign_influencers tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const influencerColumns = `
	id, name, bio, platform_verified, account_verified, fully_verified,
	email_verified, phone_verified, gender, age_bracket, country, state, city,
	industry_id, industry_key, industry_name, categories, caption_keywords,
	bio_keywords, faster_responses, commerce_ready, campaign_ready,
	barter_ready, min_collab_amount, collab_types, avg_rating,
	collaboration_count, influence_score, growth_rate, audience_gender,
	audience_age, audience_location, audience_interests, audience_languages`

func (s *PostgresStore) FetchInfluencers(ctx context.Context, scope FetchScope) ([]models.Influencer, error) {
	query, args := buildFetchQuery(scope)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch influencers: %w", err)
	}
	defer rows.Close()

	var pool []models.Influencer
	index := make(map[string]int)
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan influencer: %w", err)
		}
		index[inf.ID] = len(pool)
		pool = append(pool, inf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch influencers: %w", err)
	}
	if len(pool) == 0 {
		return pool, nil
	}

	if err := s.attachAccounts(ctx, pool, index); err != nil {
		return nil, err
	}
	return pool, nil
}

func buildFetchQuery(scope FetchScope) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(influencerColumns)
	sb.WriteString(" FROM influencers WHERE is_published = true")

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(scope.IDs) > 0 {
		sb.WriteString(" AND id = ANY(" + arg(pq.Array(scope.IDs)) + ")")
	}
	if len(scope.Platforms) > 0 {
		sb.WriteString(" AND id IN (SELECT influencer_id FROM platform_accounts" +
			" WHERE is_active = true AND platform = ANY(" + arg(pq.Array(scope.Platforms)) + "))")
	}
	if scope.Country != "" {
		sb.WriteString(" AND country ILIKE " + arg("%"+scope.Country+"%"))
	}
	if scope.Gender != "" {
		sb.WriteString(" AND LOWER(gender) = LOWER(" + arg(scope.Gender) + ")")
	}
	if scope.MinFollowers > 0 {
		sb.WriteString(" AND (SELECT COALESCE(SUM(followers_count), 0) FROM platform_accounts" +
			" WHERE influencer_id = influencers.id AND is_active = true) >= " + arg(scope.MinFollowers))
	}

	// Stable fetch order is part of the ranking contract: it is the final
	// tie-break for identical scores.
	sb.WriteString(" ORDER BY created_at, id")

	if scope.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(scope.Limit))
	}
	return sb.String(), args
}

func scanInfluencer(rows *sql.Rows) (models.Influencer, error) {
	var inf models.Influencer
	var minCollab sql.NullFloat64
	var audGender, audAge, audLocation, audInterests, audLanguages []byte

	err := rows.Scan(
		&inf.ID, &inf.Name, &inf.Bio, &inf.PlatformVerified, &inf.AccountVerified,
		&inf.FullyVerified, &inf.EmailVerified, &inf.PhoneVerified, &inf.Gender,
		&inf.AgeBracket, &inf.Country, &inf.State, &inf.City, &inf.IndustryID,
		&inf.IndustryKey, &inf.IndustryName, pq.Array(&inf.Categories),
		pq.Array(&inf.CaptionKeywords), pq.Array(&inf.BioKeywords),
		&inf.FasterResponses, &inf.CommerceReady, &inf.CampaignReady,
		&inf.BarterReady, &minCollab, pq.Array(&inf.CollabTypes),
		&inf.AvgRating, &inf.CollaborationCount, &inf.InfluenceScore,
		&inf.GrowthRate, &audGender, &audAge, &audLocation, &audInterests,
		&audLanguages,
	)
	if err != nil {
		return inf, err
	}

	if minCollab.Valid {
		inf.MinCollabAmount = &minCollab.Float64
	}
	inf.AudienceGender = decodeDistribution(audGender)
	inf.AudienceAge = decodeDistribution(audAge)
	inf.AudienceLocation = decodeDistribution(audLocation)
	inf.AudienceInterests = decodeDistribution(audInterests)
	inf.AudienceLanguages = decodeDistribution(audLanguages)
	return inf, nil
}

// decodeDistribution tolerates missing or malformed JSONB: a candidate with
// broken audience data keeps an empty distribution rather than failing the
// fetch.
func decodeDistribution(raw []byte) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	var dist map[string]float64
	if err := json.Unmarshal(raw, &dist); err != nil {
		return nil
	}
	return dist
}

func (s *PostgresStore) attachAccounts(ctx context.Context, pool []models.Influencer, index map[string]int) error {
	ids := make([]string, 0, len(pool))
	for _, inf := range pool {
		ids = append(ids, inf.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT influencer_id, platform, handle, is_active, followers_count,
		       engagement_rate, average_likes, average_comments,
		       average_video_views, posts_count, platform_verified,
		       account_verified, last_posted_at
		FROM platform_accounts
		WHERE influencer_id = ANY($1)
		ORDER BY influencer_id, platform`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch platform accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID string
		var acc models.PlatformAccount
		var lastPosted sql.NullTime
		err := rows.Scan(
			&ownerID, &acc.Platform, &acc.Handle, &acc.IsActive,
			&acc.FollowersCount, &acc.EngagementRate, &acc.AverageLikes,
			&acc.AverageComments, &acc.AverageVideoViews, &acc.PostsCount,
			&acc.PlatformVerified, &acc.AccountVerified, &lastPosted,
		)
		if err != nil {
			return fmt.Errorf("scan platform account: %w", err)
		}
		if lastPosted.Valid {
			t := lastPosted.Time
			acc.LastPostedAt = &t
		}
		if i, ok := index[ownerID]; ok {
			pool[i].Accounts = append(pool[i].Accounts, acc)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) CampaignInfluencerIDs(ctx context.Context, campaignID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT influencer_id FROM campaign_influencers WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("fetch campaign influencers: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign influencer: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (s *PostgresStore) DatasetStats(ctx context.Context) (*DatasetStats, error) {
	var stats DatasetStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT i.id),
		       COUNT(DISTINCT a.platform),
		       COALESCE(MIN(a.followers_count), 0),
		       COALESCE(MAX(a.followers_count), 0),
		       COALESCE(MIN(i.influence_score), 0),
		       COALESCE(MAX(i.influence_score), 0)
		FROM influencers i
		LEFT JOIN platform_accounts a ON a.influencer_id = i.id AND a.is_active = true
		WHERE i.is_published = true`).Scan(
		&stats.InfluencerCount, &stats.PlatformCount,
		&stats.MinFollowers, &stats.MaxFollowers,
		&stats.MinInfluenceScore, &stats.MaxInfluenceScore,
	)
	if err != nil {
		return nil, fmt.Errorf("dataset stats: %w", err)
	}
	return &stats, nil
}

func (s *PostgresStore) OptionSets(ctx context.Context) (*OptionSets, error) {
	opts := &OptionSets{}

	queries := []struct {
		dst   *[]string
		query string
	}{
		{&opts.Locations, `SELECT DISTINCT country FROM influencers WHERE is_published = true AND country <> '' ORDER BY country`},
		{&opts.Categories, `SELECT DISTINCT unnest(categories) AS category FROM influencers WHERE is_published = true ORDER BY category`},
		{&opts.Platforms, `SELECT DISTINCT platform FROM platform_accounts WHERE is_active = true ORDER BY platform`},
	}

	for _, q := range queries {
		values, err := s.queryStrings(ctx, q.query)
		if err != nil {
			return nil, err
		}
		*q.dst = values
	}
	return opts, nil
}

func (s *PostgresStore) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("option query: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan option value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
