package resolve

import (
	"strings"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// Minimum acceptable total scores by risk tier. They override the
// pass-level threshold when non-zero.
const (
	highRiskMinScore     = 75
	elevatedRiskMinScore = 65
)

// ambiguousNames lists full names known to belong to many unrelated
// people. A hit forces strict matching and the high minimum score.
var ambiguousNames = map[string]bool{
	"john smith":      true,
	"james smith":     true,
	"michael smith":   true,
	"david jones":     true,
	"michael johnson": true,
	"maria garcia":    true,
	"jose garcia":     true,
	"david lee":       true,
	"james lee":       true,
	"wei chen":        true,
	"li wang":         true,
	"david kim":       true,
	"sarah johnson":   true,
	"robert brown":    true,
	"mary williams":   true,
}

// commonGiven and commonFamily are tokens frequent enough that either
// one alone raises the risk of a wrong-person match.
var commonGiven = map[string]bool{
	"james": true, "john": true, "robert": true, "michael": true,
	"david": true, "william": true, "richard": true, "thomas": true,
	"mary": true, "jennifer": true, "linda": true, "elizabeth": true,
	"sarah": true, "maria": true, "susan": true, "jessica": true,
}

var commonFamily = map[string]bool{
	"smith": true, "johnson": true, "williams": true, "brown": true,
	"jones": true, "garcia": true, "miller": true, "davis": true,
	"rodriguez": true, "martinez": true, "wilson": true, "anderson": true,
	"lee": true, "kim": true, "chen": true, "wang": true, "nguyen": true,
	"patel": true, "singh": true,
}

// AssessRisk estimates how common the queried name is. It runs once,
// up front, and its result holds for the whole resolution.
func AssessRisk(q person.Query) person.DuplicateRisk {
	first := strings.ToLower(strings.TrimSpace(q.FirstName))
	last := strings.ToLower(strings.TrimSpace(q.LastName))

	if ambiguousNames[first+" "+last] {
		return person.DuplicateRisk{
			Level:    person.RiskHigh,
			MinScore: highRiskMinScore,
			Strategy: "strict",
		}
	}

	if commonGiven[first] || commonFamily[last] {
		return person.DuplicateRisk{
			Level:    person.RiskElevated,
			MinScore: elevatedRiskMinScore,
			Strategy: "cautious",
		}
	}

	return person.DuplicateRisk{
		Level:    person.RiskStandard,
		Strategy: "standard",
	}
}
