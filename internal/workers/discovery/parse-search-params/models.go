package parsesearchparams

import "influencer-workers/internal/models"

type Input struct {
	SearchRequest map[string]interface{} `json:"searchRequest"`
}

type Output struct {
	SearchParams *models.SearchParameters `json:"searchParams"`
}
