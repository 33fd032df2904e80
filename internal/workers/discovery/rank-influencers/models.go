package rankinfluencers

import "influencer-workers/internal/models"

type Input struct {
	SearchParams *models.SearchParameters `json:"searchParams"`
}

type Output struct {
	RequestID string             `json:"requestId"`
	Results   *models.SearchPage `json:"results"`
}
