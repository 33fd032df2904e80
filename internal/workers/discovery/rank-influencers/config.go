package rankinfluencers

import "time"

type Config struct {
	Timeout time.Duration

	// FetchLimit bounds the candidate pool pulled from the store.
	FetchLimit int
	// ScoringShards bounds the scoring fan-out inside the ranking engine.
	ScoringShards int
	// RuleWeights overrides individual rule ceilings by rule key.
	RuleWeights map[string]float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		FetchLimit:    10000,
		ScoringShards: 4,
	}
}
