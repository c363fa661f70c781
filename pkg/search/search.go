// Package search provides web search access for profile discovery.
package search

import (
	"context"
	"net/url"
	"strings"
)

// Result is a single web search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher performs a web search and returns up to count results.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// IsProfileURL returns true if the URL points at a professional profile page.
func IsProfileURL(urlStr string) bool {
	return strings.Contains(strings.ToLower(urlStr), "linkedin.com/in/")
}

// CanonicalProfileURL normalizes a profile URL: https scheme, www host,
// query string and fragment stripped, no trailing slash. Returns the
// input unchanged if it is not a profile URL or fails to parse.
func CanonicalProfileURL(rawURL string) string {
	if !IsProfileURL(rawURL) {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = "https"
	u.Host = "www.linkedin.com"
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// ProfileResults filters raw search hits down to profile pages,
// canonicalizing each URL and dropping duplicates.
func ProfileResults(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	var filtered []Result
	for _, r := range results {
		if !IsProfileURL(r.URL) {
			continue
		}
		canonical := CanonicalProfileURL(r.URL)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		r.URL = canonical
		filtered = append(filtered, r)
	}
	return filtered
}
