package resolve

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// RuleKind classifies what a matched rule does to the outcome.
type RuleKind string

// Rule kinds, in evaluation priority order.
const (
	RuleReject RuleKind = "reject"
	RuleAccept RuleKind = "accept"
	RuleReview RuleKind = "review"
)

// Rule is a declarative predicate over a candidate and its query.
// Rules close over nothing mutable; evaluation is a pure function.
type Rule struct {
	Kind    RuleKind
	Name    string
	Message string
	Match   func(c person.Candidate, q person.Query) bool
}

var directoryPathRe = regexp.MustCompile(`/(pub/dir|directory|search)/`)

// DefaultRules returns the standard validation rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:    RuleReject,
			Name:    "name_absent",
			Message: "queried name does not appear in the result",
			Match: func(c person.Candidate, _ person.Query) bool {
				return c.NameScore == 0
			},
		},
		{
			Kind:    RuleReject,
			Name:    "contaminated_name",
			Message: "name tokens appear out of structural context",
			Match: func(c person.Candidate, _ person.Query) bool {
				return c.NameScore > 0 && c.NameScore <= 30
			},
		},
		{
			Kind:    RuleReject,
			Name:    "directory_page",
			Message: "URL points at a directory or search listing",
			Match: func(c person.Candidate, _ person.Query) bool {
				return directoryPathRe.MatchString(strings.ToLower(c.URL))
			},
		},
		{
			Kind:    RuleAccept,
			Name:    "strong_multi_signal",
			Message: "name, organization, and title all corroborate",
			Match: func(c person.Candidate, q person.Query) bool {
				return c.NameScore >= 95 && c.OrgScore >= 85 &&
					(q.JobTitle == "" || c.TitleScore >= 50)
			},
		},
		{
			Kind:    RuleReview,
			Name:    "organization_unconfirmed",
			Message: "queried organization not found in the result",
			Match: func(c person.Candidate, q person.Query) bool {
				return q.Organization != "" && c.OrgScore == 0
			},
		},
		{
			Kind:    RuleReview,
			Name:    "numeric_url_suffix",
			Message: "profile URL carries a disambiguation suffix",
			Match: func(c person.Candidate, _ person.Query) bool {
				return c.URLScore < 40 && c.NameScore < 95
			},
		},
	}
}

// EvaluateRules runs the rule set over one candidate in fixed priority
// order: reject beats accept beats review. It returns the first matched
// rule per the priority, or nil if nothing matched.
func EvaluateRules(rules []Rule, c person.Candidate, q person.Query) *Rule {
	for _, kind := range []RuleKind{RuleReject, RuleAccept, RuleReview} {
		for i := range rules {
			if rules[i].Kind != kind {
				continue
			}
			if rules[i].Match(c, q) {
				return &rules[i]
			}
		}
	}
	return nil
}
