// internal/ranking/preference.go
package ranking

import (
	"strings"

	"influencer-workers/internal/models"
)

// Preference bonuses. Each dimension contributes its bonus when matched,
// otherwise 0; the dimensions are independent.
const (
	bonusIndustry   = 5
	bonusCategories = 3
	bonusGender     = 2
	bonusLocation   = 4
	bonusAgeBracket = 2
	bonusCollabType = 2
	bonusBudgetFit  = 3
)

// PreferenceScore computes the additive soft-preference boost for a
// candidate. Preferences never filter: a candidate matching nothing still
// ranks, with a zero boost. The result is reported next to the
// recommendation score and does not alter ordering.
func PreferenceScore(inf *models.Influencer, p *models.SearchParameters) float64 {
	var score float64

	for _, industry := range p.PreferredIndustries {
		if strings.EqualFold(inf.IndustryKey, industry) || strings.EqualFold(inf.IndustryName, industry) {
			score += bonusIndustry
			break
		}
	}

	if overlapsFold(inf.Categories, p.PreferredCategories) {
		score += bonusCategories
	}

	if containsFold(p.PreferredGenders, inf.Gender) {
		score += bonusGender
	}

	for _, loc := range p.PreferredLocations {
		if containsLower(inf.Country, loc) || containsLower(inf.State, loc) || containsLower(inf.City, loc) {
			score += bonusLocation
			break
		}
	}

	if p.PreferredAgeBracket != "" && strings.EqualFold(inf.AgeBracket, p.PreferredAgeBracket) {
		score += bonusAgeBracket
	}

	if overlapsFold(inf.CollabTypes, p.PreferredCollabTypes) {
		score += bonusCollabType
	}

	if p.MaxCollabAmount != nil && inf.MinCollabAmount != nil && *inf.MinCollabAmount <= *p.MaxCollabAmount {
		score += bonusBudgetFit
	}

	return score
}

func overlapsFold(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}
