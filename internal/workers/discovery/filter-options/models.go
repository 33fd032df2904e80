package filteroptions

import (
	"time"

	"influencer-workers/internal/store"
)

type Input struct {
	// Refresh bypasses the cached payload.
	Refresh bool `json:"refresh,omitempty"`
}

type Output struct {
	FilterOptions FilterOptions `json:"filterOptions"`
}

// FilterOptions is the companion payload the search UI builds its filter
// controls from. Option lists mirror what the pool actually contains.
type FilterOptions struct {
	Platforms      []string              `json:"platforms"`
	Locations      []string              `json:"locations"`
	Categories     []string              `json:"categories"`
	FollowerRanges []FollowerRangeOption `json:"followerRanges"`
	RatingBuckets  []RatingBucket        `json:"ratingBuckets"`
	SortOptions    []SortOption          `json:"sortOptions"`
	Rules          []RuleInfo            `json:"rules"`
	Stats          *store.DatasetStats   `json:"stats,omitempty"`
	GeneratedAt    time.Time             `json:"generatedAt"`
}

// FollowerRangeOption is a selectable follower bucket. Max -1 marks an
// open-ended bucket.
type FollowerRangeOption struct {
	Label string `json:"label"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
}

type RatingBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
}

type SortOption struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	DefaultOrder string `json:"defaultOrder"`
}

// RuleInfo describes one active ranking rule for transparency payloads.
type RuleInfo struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
