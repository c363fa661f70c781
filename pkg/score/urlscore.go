package score

import (
	"net/url"
	"strings"

	"github.com/codeGROOVE-dev/rolodex/pkg/namematch"
	"github.com/codeGROOVE-dev/rolodex/pkg/orgmatch"
)

// URLStructure scores 0-100 how much a profile URL's path looks like
// it belongs to the queried person. Name fragments and organization
// hints in the slug are rewarded; numeric suffixes and deep paths are
// penalized because profile hosts append them to disambiguate
// duplicate accounts.
func URLStructure(rawURL, first, last, org string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}

	path := strings.Trim(strings.ToLower(u.Path), "/")
	if path == "" {
		return 0
	}
	segments := strings.Split(path, "/")
	slug := segments[len(segments)-1]

	var s float64
	if strings.Contains(slug, slugToken(first)) {
		s += 35
	}
	if strings.Contains(slug, slugToken(last)) {
		s += 35
	}
	// Profile-style paths (/in/<slug>) are a weak structural hint.
	if len(segments) >= 2 && segments[0] == "in" {
		s += 20
	}
	// Some slugs embed where the person works ("jane-doe-acme").
	if orgHint(slug, org) {
		s += 10
	}

	// Numeric suffixes mark the Nth person with this name.
	if trailingDigits(slug) {
		s -= 25
	}
	// Complex slugs and deep paths correlate with disambiguation
	// placeholders rather than vanity URLs.
	if strings.Count(slug, "-") >= 4 || len(segments) > 3 {
		s -= 15
	}

	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// orgHint reports whether a distinguishing organization token appears
// in the slug. Short tokens are skipped; they collide with name
// fragments too easily.
func orgHint(slug, org string) bool {
	if org == "" {
		return false
	}
	for _, tok := range strings.Fields(orgmatch.Normalize(org)) {
		if len(tok) >= 4 && strings.Contains(slug, tok) {
			return true
		}
	}
	return false
}

// slugToken folds a name token the way profile slugs do: lowercase,
// special characters removed.
func slugToken(name string) string {
	return strings.ToLower(strings.ReplaceAll(namematch.Fold(name), " ", ""))
}

func trailingDigits(slug string) bool {
	var n int
	for i := len(slug) - 1; i >= 0; i-- {
		if slug[i] < '0' || slug[i] > '9' {
			break
		}
		n++
	}
	return n >= 2 // single digits appear in legitimate vanity slugs
}
