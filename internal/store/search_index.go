// internal/store/search_index.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchIndex prefilters the candidate pool by free text against the
// influencer search index. It is optional: when unavailable, the in-memory
// text stage alone produces the same result set, just over a larger fetch.
//
// Index contract: documents mirror the store's text fields (name, bio,
// industryName, handles, captionKeywords, bioKeywords) as keyword values.
// Wildcard queries over keyword fields are case-insensitive substring
// matching, the same predicate the in-memory stage applies, so the hit set
// never loses a candidate that stage would keep.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	return &SearchIndex{client: client, index: index}
}

// textFields are the indexed fields the text stage scans, in the same order.
var textFields = []string{"name", "bio", "industryName", "handles", "captionKeywords", "bioKeywords"}

// SearchIDs returns influencer IDs with the query text as a substring of
// any indexed text field.
func (s *SearchIndex) SearchIDs(ctx context.Context, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 1000
	}

	pattern := "*" + escapeWildcard(strings.ToLower(text)) + "*"
	clauses := make([]interface{}, 0, len(textFields))
	for _, f := range textFields {
		clauses = append(clauses, map[string]interface{}{
			"wildcard": map[string]interface{}{
				f: map[string]interface{}{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		})
	}

	queryBody := map[string]interface{}{
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               clauses,
				"minimum_should_match": 1,
			},
		},
	}
	body, _ := json.Marshal(queryBody)

	from := 0
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &limit,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search index query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search index error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// escapeWildcard neutralizes wildcard metacharacters in user text so the
// pattern matches them literally.
func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}
