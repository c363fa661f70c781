// Package score combines name, organization, title, and URL-structure
// signals into one ranked candidate score and applies the selection
// policy that decides between an automatic answer and manual review.
package score

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeGROOVE-dev/rolodex/pkg/namematch"
	"github.com/codeGROOVE-dev/rolodex/pkg/orgmatch"
	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// reviewGapDefault is the top-two score gap below which a
// duplicate-risk name is sent to manual review instead of
// auto-selected. Closeness of score under name ambiguity is itself
// evidence of unresolved ambiguity.
const reviewGapDefault = 15.0

// reviewBundleSize is how many top candidates a review bundle carries.
const reviewBundleSize = 3

// Selection is the outcome of ranking a candidate list.
type Selection struct {
	Best        *person.Candidate
	NeedsReview bool
	// Ambiguous marks a near-tie under duplicate risk: more searching
	// cannot settle it, only a human can.
	Ambiguous bool
	Reason    string
	Top       []person.Candidate
}

// Evaluate fills in a candidate's sub-scores and weighted total from
// the query. The text examined is the concatenated title and snippet.
func Evaluate(c *person.Candidate, q person.Query, mctx orgmatch.Context, strict bool) {
	text := c.Title
	if c.Snippet != "" {
		text += " " + c.Snippet
	}

	nm := namematch.Match(text, q.FirstName, q.LastName, strict)
	c.NameScore = float64(nm.Score)
	if !nm.Valid {
		// Contaminated and false-positive matches keep their reduced
		// score as a weak signal; they cannot reach the accept range.
		c.NameScore = min(c.NameScore, 30)
	}

	if q.Organization != "" {
		om := orgmatch.Match(text, q.Organization, mctx)
		c.OrgScore = float64(om.Score)
		if om.Method != orgmatch.MethodNone {
			c.Org = q.Organization
		}
	}

	c.TitleScore = TitleOverlap(text, q.JobTitle)
	c.URLScore = URLStructure(c.URL, q.FirstName, q.LastName, q.Organization)
	c.Total = c.Score()
}

// Rank sorts candidates by total score and applies the selection
// policy. minScore is the pass-level threshold; a non-zero
// risk.MinScore overrides it. Ranking is stable and idempotent:
// re-ranking an already ranked list returns the same order and scores.
func Rank(cands []person.Candidate, _ person.Query, risk person.DuplicateRisk, minScore float64) Selection {
	if len(cands) == 0 {
		return Selection{Reason: "no candidates"}
	}

	ranked := make([]person.Candidate, len(cands))
	copy(ranked, cands)
	for i := range ranked {
		ranked[i].Total = ranked[i].Score()
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })

	top := ranked
	if len(top) > reviewBundleSize {
		top = top[:reviewBundleSize]
	}

	// Near-tie under duplicate risk: do not average ambiguity away.
	if len(ranked) > 1 && risk.Level != person.RiskStandard {
		gap := ranked[0].Total - ranked[1].Total
		if gap < reviewGapDefault {
			return Selection{
				NeedsReview: true,
				Ambiguous:   true,
				Reason:      fmt.Sprintf("top candidates within %.0f points under %s duplicate risk", gap, risk.Level),
				Top:         top,
			}
		}
	}

	required := minScore
	if risk.MinScore > 0 {
		required = risk.MinScore
	}
	if ranked[0].Total < required {
		return Selection{
			NeedsReview: true,
			Reason:      fmt.Sprintf("best score %.1f below required %.1f", ranked[0].Total, required),
			Top:         top,
		}
	}

	best := ranked[0]
	return Selection{Best: &best, Top: top}
}

// TitleOverlap scores 0-100 by the fraction of significant job-title
// words present in the candidate text.
func TitleOverlap(text, jobTitle string) float64 {
	if jobTitle == "" || text == "" {
		return 0
	}

	lowerText := strings.ToLower(text)
	var total, matched int
	for _, w := range strings.Fields(strings.ToLower(jobTitle)) {
		w = strings.Trim(w, ".,;:()")
		if len(w) < 3 || titleStopWords[w] {
			continue
		}
		total++
		if strings.Contains(lowerText, w) {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(matched) / float64(total)
}

var titleStopWords = map[string]bool{
	"the": true, "of": true, "and": true, "for": true,
}
