// internal/ranking/params.go
package ranking

import (
	"strconv"
	"strings"

	"influencer-workers/internal/models"
)

var validSortKeys = map[string]bool{
	models.SortByRecommendation: true,
	models.SortByFollowers:      true,
	models.SortByEngagement:     true,
	models.SortByRating:         true,
	models.SortByInfluenceScore: true,
	models.SortByAvgLikes:       true,
	models.SortByAvgViews:       true,
	models.SortByAvgComments:    true,
	models.SortByPostCount:      true,
	models.SortByRecency:        true,
	models.SortByGrowthRate:     true,
}

// ParseSearchParameters converts a raw, loosely-typed request map into a
// validated SearchParameters value. Individual fields that fail to parse are
// treated as unset; a bad optional field never fails the whole request.
func ParseSearchParameters(raw map[string]interface{}) *models.SearchParameters {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	p := &models.SearchParameters{
		SortBy:    models.SortByRecommendation,
		SortOrder: models.SortOrderDesc,
		Page:      1,
		PageSize:  models.DefaultPageSize,
	}

	p.Search = parseString(raw["search"])

	// Legacy single "platform" and csv "platforms" combine into one set.
	platforms := parseStringList(raw["platforms"])
	if single := parseString(raw["platform"]); single != "" {
		platforms = appendUnique(platforms, strings.ToLower(single))
	}
	for i, pl := range platforms {
		platforms[i] = strings.ToLower(pl)
	}
	p.Platforms = platforms

	p.Country = parseString(raw["country"])
	p.State = parseString(raw["state"])
	p.City = parseString(raw["city"])
	p.Location = parseString(raw["location"])

	p.Gender = parseString(raw["gender"])

	// Industry may arrive as a numeric id or a key/name string.
	if industry := parseString(raw["industry"]); industry != "" {
		if id, err := strconv.Atoi(industry); err == nil {
			p.IndustryID = &id
		} else {
			p.Industry = industry
		}
	}

	p.FollowerRange = parseString(raw["followerRange"])
	p.MinFollowers = parseInt64(raw["minFollowers"])
	p.MaxFollowers = parseInt64(raw["maxFollowers"])

	p.MinEngagement = parseFloat(raw["minEngagement"])
	p.MaxEngagement = parseFloat(raw["maxEngagement"])
	p.MinRating = parseFloat(raw["minRating"])
	p.MaxRating = parseFloat(raw["maxRating"])

	p.MinAvgLikes = parseFloat(raw["minAvgLikes"])
	p.MinAvgViews = parseFloat(raw["minAvgViews"])
	p.MinAvgComments = parseFloat(raw["minAvgComments"])

	if days := parseIntPtr(raw["lastPostedWithin"]); days != nil && *days > 0 {
		p.LastPostedWithinDays = days
	}

	p.FasterResponses = parseBool(raw["fasterResponses"])
	p.CommerceReady = parseBool(raw["commerceReady"])
	p.CampaignReady = parseBool(raw["campaignReady"])
	p.BarterReady = parseBool(raw["barterReady"])

	p.HasPlatform = strings.ToLower(parseString(raw["hasPlatform"]))
	p.HasVerifiedPlatform = strings.ToLower(parseString(raw["hasVerifiedPlatform"]))

	p.CaptionKeyword = parseString(raw["captionKeywords"])
	p.BioKeyword = parseString(raw["bioKeywords"])

	p.AudienceGender = parseString(raw["audienceGender"])
	p.AudienceAge = parseString(raw["audienceAge"])
	p.AudienceLocation = parseString(raw["audienceLocation"])
	p.AudienceInterest = parseString(raw["audienceInterest"])
	p.AudienceLanguage = parseString(raw["audienceLanguage"])

	p.ExcludeCampaignID = parseString(raw["campaignId"])

	p.PreferredIndustries = parseStringList(raw["industries"])
	p.PreferredCategories = parseStringList(raw["categories"])
	p.PreferredGenders = parseStringList(raw["genders"])
	p.PreferredLocations = parseStringList(raw["locations"])
	p.PreferredAgeBracket = parseString(raw["ageBracket"])
	p.PreferredCollabTypes = parseStringList(raw["collaborationPreferences"])
	p.MaxCollabAmount = parseFloat(raw["maxCollabAmount"])

	if sortBy := parseString(raw["sortBy"]); validSortKeys[sortBy] {
		p.SortBy = sortBy
	}
	if order := strings.ToLower(parseString(raw["sortOrder"])); order == models.SortOrderAsc || order == models.SortOrderDesc {
		p.SortOrder = order
	}

	if page := parseIntPtr(raw["page"]); page != nil && *page >= 1 {
		p.Page = *page
	}
	if size := parseIntPtr(raw["pageSize"]); size != nil && *size >= 1 {
		if *size > models.MaxPageSize {
			p.PageSize = models.MaxPageSize
		} else {
			p.PageSize = *size
		}
	}

	return p
}

func parseString(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// parseStringList accepts a csv string or a JSON array; tokens are trimmed,
// empty tokens dropped, duplicates removed.
func parseStringList(raw interface{}) []string {
	result := []string{}
	if raw == nil {
		return result
	}

	seen := make(map[string]bool)
	add := func(s string) {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" && !seen[trimmed] {
			result = append(result, trimmed)
			seen[trimmed] = true
		}
	}

	switch v := raw.(type) {
	case string:
		if v != "" {
			for _, part := range strings.Split(v, ",") {
				add(part)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}

	return result
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, s) {
			return list
		}
	}
	return append(list, s)
}

func parseFloat(raw interface{}) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		if v = strings.TrimSpace(v); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func parseInt64(raw interface{}) *int64 {
	if f := parseFloat(raw); f != nil && *f == float64(int64(*f)) {
		n := int64(*f)
		return &n
	}
	return nil
}

func parseIntPtr(raw interface{}) *int {
	if f := parseFloat(raw); f != nil && *f == float64(int(*f)) {
		n := int(*f)
		return &n
	}
	return nil
}

// parseBool is true only for the exact lowercase string "true" or a JSON
// boolean true. Anything else is unset.
func parseBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
