// internal/store/store.go

// Package store provides read-only access to influencer records and their
// platform accounts, plus the aggregate-metric cache. The ranking engine
// treats this package as its only I/O boundary.
package store

import (
	"context"

	"influencer-workers/internal/models"
)

// FetchScope narrows the candidate fetch. Hard filters pushed down here are
// always re-applied in memory by the filter pipeline, so the scope is an
// optimization, never a semantic fork.
type FetchScope struct {
	// IDs restricts the fetch to an allowlist (e.g. from the text index).
	IDs []string
	// Platforms keeps influencers with at least one active account on any of
	// these platforms.
	Platforms []string
	Country   string
	Gender    string
	// MinFollowers excludes influencers whose total active followers fall
	// below the bound; 0 means unset. Only the lower bound is pushed down:
	// the unscoped total is an upper bound on any platform-scoped total, so
	// this never drops a candidate the in-memory stage would keep.
	MinFollowers int64
	// Limit bounds the pool size; 0 means no limit.
	Limit int
}

// DatasetStats summarizes the searchable pool for the filter-options payload.
type DatasetStats struct {
	InfluencerCount   int     `json:"influencerCount"`
	PlatformCount     int     `json:"platformCount"`
	MinFollowers      int64   `json:"minFollowers"`
	MaxFollowers      int64   `json:"maxFollowers"`
	MinInfluenceScore float64 `json:"minInfluenceScore"`
	MaxInfluenceScore float64 `json:"maxInfluenceScore"`
}

// OptionSets holds the enumerable value lists the UI builds filters from.
type OptionSets struct {
	Locations  []string `json:"locations"`
	Categories []string `json:"categories"`
	Platforms  []string `json:"platforms"`
}

// InfluencerStore is the candidate store adapter. Implementations must not
// retry internally beyond their own driver semantics; fetch failures are
// fatal to the request and surface to the caller unmodified.
type InfluencerStore interface {
	// FetchInfluencers returns the scoped candidate pool with platform
	// accounts attached, in stable store order.
	FetchInfluencers(ctx context.Context, scope FetchScope) ([]models.Influencer, error)
	// CampaignInfluencerIDs returns the IDs already engaged in a campaign.
	CampaignInfluencerIDs(ctx context.Context, campaignID string) (map[string]struct{}, error)
	DatasetStats(ctx context.Context) (*DatasetStats, error)
	OptionSets(ctx context.Context) (*OptionSets, error)
}
