// Package orgmatch scores how well a candidate text matches a target
// organization, using exact comparison, an alias knowledge base, and
// token-overlap fallbacks. Organization names are the primary
// disambiguator between same-named people, so database-backed matches
// always dominate fuzzy similarity.
package orgmatch

import (
	"fmt"
	"sort"
	"strings"
)

// Method identifies which rule produced an organization score.
type Method string

// Match methods, in the order they are attempted.
const (
	MethodExact           Method = "exact"
	MethodPrimaryKeyword  Method = "primary_keyword"
	MethodAllKeywords     Method = "all_keywords"
	MethodKeywordSubset   Method = "keyword_subset"
	MethodAlias           Method = "alias"
	MethodTokenOverlap    Method = "token_overlap"
	MethodIndustryContext Method = "industry_context"
	MethodNone            Method = "none"
)

// Confidence qualifies a score. Industry-context matches are always
// low confidence and must never be auto-accepted.
type Confidence string

// Confidence tiers.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the outcome of matching one candidate text against a
// target organization.
type Result struct {
	Score      int        `json:"score"` // 0-100
	Method     Method     `json:"method"`
	Confidence Confidence `json:"confidence"`
	Details    string     `json:"details,omitempty"`
}

// Context carries the knowledge base and industry profile for a match.
// Both fields are optional; a nil DB disables alias lookups.
type Context struct {
	DB       *DB
	Industry string
}

// tokenOverlapThreshold is the minimum fraction of significant target
// tokens that must appear in the candidate text for fallback credit.
const tokenOverlapThreshold = 0.6

// Match scores candidateText against targetOrg. Rules are applied in
// fixed order and the first applicable rule wins.
func Match(candidateText, targetOrg string, mctx Context) Result {
	if strings.TrimSpace(candidateText) == "" || strings.TrimSpace(targetOrg) == "" {
		return Result{Method: MethodNone, Confidence: ConfidenceLow}
	}

	normText := Normalize(candidateText)
	normTarget := Normalize(targetOrg)

	// 1. Exact normalized equality. A target that normalizes to
	// nothing is all stop words and carries no signal to match on.
	if normTarget != "" && normText == normTarget {
		return Result{Score: 100, Method: MethodExact, Confidence: ConfidenceHigh}
	}

	// 2. Alias-database lookup.
	if mctx.DB != nil {
		if rec, ok := mctx.DB.Lookup(targetOrg); ok {
			if r, matched := matchRecord(normText, candidateText, rec); matched {
				return r
			}
		}
	}

	// 3. Token-overlap fallback.
	if r, matched := tokenOverlap(normText, normTarget); matched {
		return r
	}

	// 4. Industry-context partial credit. This exists so that an
	// organization abbreviated beyond recognition is not discarded
	// outright; it is low confidence only and never auto-acceptable.
	if r, matched := industryContext(normText, normTarget, mctx.Industry); matched {
		return r
	}

	return Result{Method: MethodNone, Confidence: ConfidenceLow}
}

// matchRecord tests candidate text against a knowledge-base record.
func matchRecord(normText, rawText string, rec Record) (Result, bool) {
	if rec.PrimaryKeyword != "" && containsToken(normText, Normalize(rec.PrimaryKeyword)) {
		return Result{
			Score: 85, Method: MethodPrimaryKeyword, Confidence: ConfidenceHigh,
			Details: fmt.Sprintf("primary keyword %q present", rec.PrimaryKeyword),
		}, true
	}

	if len(rec.Keywords) > 0 {
		var matched int
		for _, kw := range rec.Keywords {
			if containsToken(normText, Normalize(kw)) {
				matched++
			}
		}
		switch {
		case matched == len(rec.Keywords):
			return Result{
				Score: 85, Method: MethodAllKeywords, Confidence: ConfidenceHigh,
				Details: fmt.Sprintf("all %d keywords present", matched),
			}, true
		case matched > 0:
			score := 70 + 5*matched
			if score > 85 {
				score = 85
			}
			return Result{
				Score: score, Method: MethodKeywordSubset, Confidence: ConfidenceMedium,
				Details: fmt.Sprintf("%d of %d keywords present", matched, len(rec.Keywords)),
			}, true
		}
	}

	lowerRaw := strings.ToLower(rawText)
	for _, alias := range rec.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a != "" && strings.Contains(lowerRaw, a) {
			return Result{
				Score: 100, Method: MethodAlias, Confidence: ConfidenceHigh,
				Details: fmt.Sprintf("alias %q present verbatim", alias),
			}, true
		}
	}

	return Result{}, false
}

// tokenOverlap awards partial credit when most of the target's
// significant tokens appear in the candidate text.
func tokenOverlap(normText, normTarget string) (Result, bool) {
	tokens := strings.Fields(normTarget)
	if len(tokens) == 0 {
		return Result{}, false
	}

	var matched int
	for _, tok := range tokens {
		if strings.Contains(normText, tok) {
			matched++
		}
	}

	frac := float64(matched) / float64(len(tokens))
	if frac < tokenOverlapThreshold {
		return Result{}, false
	}

	score := 50 + int(20*frac)
	if score > 70 {
		score = 70
	}
	return Result{
		Score: score, Method: MethodTokenOverlap, Confidence: ConfidenceMedium,
		Details: fmt.Sprintf("%d of %d significant tokens present", matched, len(tokens)),
	}, true
}

// KnownIndustry reports whether an industry profile name is recognized.
// The empty string (no industry profile) is always valid.
func KnownIndustry(name string) bool {
	if name == "" {
		return true
	}
	_, ok := industryVocabulary[name]
	return ok
}

// Industries lists the recognized industry profile names.
func Industries() []string {
	names := make([]string, 0, len(industryVocabulary))
	for name := range industryVocabulary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// industryVocabulary maps industry profile names to generic terms that
// commonly surround organizations in that industry.
var industryVocabulary = map[string][]string{
	"health":   {"hospital", "medical", "clinic", "healthcare", "physician", "patient"},
	"academic": {"university", "college", "school", "institute", "faculty", "research"},
}

func industryContext(normText, normTarget, industry string) (Result, bool) {
	vocab, ok := industryVocabulary[industry]
	if !ok {
		return Result{}, false
	}

	var vocabHit bool
	for _, term := range vocab {
		if containsToken(normText, term) {
			vocabHit = true
			break
		}
	}
	if !vocabHit {
		return Result{}, false
	}

	// At least one target token must be present; generic vocabulary
	// alone proves nothing.
	for _, tok := range strings.Fields(normTarget) {
		if strings.Contains(normText, tok) {
			return Result{
				Score: 60, Method: MethodIndustryContext, Confidence: ConfidenceLow,
				Details: "industry vocabulary plus partial token match",
			}, true
		}
	}
	return Result{}, false
}

// containsToken reports whether norm text contains the token as a
// whole word.
func containsToken(normText, token string) bool {
	if token == "" {
		return false
	}
	for _, w := range strings.Fields(normText) {
		if w == token {
			return true
		}
	}
	return false
}
