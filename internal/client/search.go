package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// SearchOptions narrows a search.
type SearchOptions struct {
	Type model.SearchType
	Page int
}

// Search runs a query against the search page.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*model.SearchResultsList, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	q := url.Values{}
	q.Set("q", query)
	if opts.Type != model.SearchAll {
		q.Set("item_type", string(opts.Type))
	}
	q.Set("page", strconv.Itoa(opts.Page))
	searchURL := c.baseURL + "/search?" + q.Encode()

	html, final, err := c.http.GetPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return bandcamp.ParseSearchResults(html, final, query, opts.Type, opts.Page)
}

// BestMatch picks the result closest to query by edit distance. Results
// are compared by name and by "artist name" so that "artist title"
// queries match albums and tracks. Ties keep the earlier result, which
// is the platform's own ranking.
func BestMatch(results []model.SearchResult, query string) (model.SearchResult, bool) {
	if len(results) == 0 {
		return model.SearchResult{}, false
	}
	q := normalizeForMatching(query)
	best, bestDistance := 0, -1
	for i, r := range results {
		d := levenshtein.ComputeDistance(q, normalizeForMatching(r.Name))
		if r.Artist != "" {
			d = min(d, levenshtein.ComputeDistance(q, normalizeForMatching(r.Artist+" "+r.Name)))
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return results[best], true
}

func normalizeForMatching(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimPrefix(s, "the ")
}
