// Package namematch detects whether a person's name appears in text in
// a recognized structural form, and distinguishes genuine matches from
// contamination (name tokens scattered through unrelated text) and
// false positives (directory pages, negated mentions).
package namematch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pattern identifies which structural name form matched.
type Pattern string

// Name patterns, highest to lowest confidence.
const (
	PatternExactOrder    Pattern = "exact_order"     // "First Last"
	PatternSpecialChar   Pattern = "special_char"    // apostrophe/hyphen/diacritic-folded exact
	PatternInverted      Pattern = "inverted"        // "Last, First"
	PatternMiddleInitial Pattern = "middle_initial"  // "First M. Last"
	PatternMiddleName    Pattern = "middle_name"     // "First Middle Last"
	PatternCredentialed  Pattern = "credentialed"    // "Dr. First Last, MD"
	PatternReversed      Pattern = "reversed"        // "Last First"
	PatternNone          Pattern = "none"
)

// Result describes how a name matched (or failed to match) a text.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Result struct {
	Valid         bool    `json:"valid"`
	Score         int     `json:"score"` // 0-100
	Pattern       Pattern `json:"pattern"`
	Contaminated  bool    `json:"contaminated,omitempty"`
	FalsePositive bool    `json:"false_positive,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// generational suffixes that indicate a relative rather than the
// queried person when adjacent to a low-confidence match.
var generationalSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

// negativeContexts are phrases that, immediately before a matched name,
// indicate the text is about someone else.
var negativeContexts = []string{
	"not", "formerly", "replaced", "replacing", "succeeded", "previously", "former",
}

type namePattern struct {
	pattern Pattern
	score   int
	re      *regexp.Regexp
	folded  bool // match against the diacritic-folded text
}

// Match evaluates name patterns against text in priority order; the
// first structural match wins. When strict is true, only patterns
// scoring 90 or above are considered, which is the behavior forced for
// high-duplicate-risk names.
func Match(text, first, last string, strict bool) Result {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if text == "" || first == "" || last == "" {
		return Result{Pattern: PatternNone, Reason: "empty input"}
	}

	folded := Fold(text)
	for _, p := range buildPatterns(first, last) {
		if strict && p.score < 90 {
			continue
		}
		target := text
		if p.folded {
			target = folded
		}
		loc := p.re.FindStringIndex(target)
		if loc == nil {
			continue
		}
		if r, bad := falsePositive(target, loc, p, first, last); bad {
			return r
		}
		// An honorific before an exact match makes this the credentialed
		// form, which carries lower confidence than a bare exact match.
		if p.pattern == PatternExactOrder || p.pattern == PatternSpecialChar {
			if w := precedingWord(target, loc[0]); w == "dr" || w == "prof" {
				return Result{Valid: true, Score: 80, Pattern: PatternCredentialed}
			}
		}
		return Result{Valid: true, Score: p.score, Pattern: p.pattern}
	}

	return contamination(text, first, last)
}

// buildPatterns returns the ordered pattern list for a name. All
// patterns enforce word boundaries; a name that is a substring of a
// longer word never matches.
func buildPatterns(first, last string) []namePattern {
	f := regexp.QuoteMeta(first)
	l := regexp.QuoteMeta(last)
	ff := regexp.QuoteMeta(Fold(first))
	fl := regexp.QuoteMeta(Fold(last))

	patterns := make([]namePattern, 0, 7)
	if plainName(first) && plainName(last) {
		patterns = append(patterns, namePattern{
			pattern: PatternExactOrder, score: 100,
			re: mustCompile(`\b` + f + `\s+` + l + `\b`),
		})
	}
	// Special-character variant sits just below exact order. For names
	// with apostrophes, hyphens, or diacritics this is the primary
	// exact-order pattern.
	patterns = append(patterns,
		namePattern{
			pattern: PatternSpecialChar, score: 97, folded: true,
			re: mustCompile(`\b` + ff + `\s+` + fl + `\b`),
		},
		namePattern{
			pattern: PatternInverted, score: 95,
			re: mustCompile(`\b` + l + `\s*,\s*` + f + `\b`),
		},
		namePattern{
			pattern: PatternMiddleInitial, score: 90,
			re: mustCompile(`\b` + f + `\s+[a-z]\.\s*` + l + `\b`),
		},
		// The middle token must be capitalized; "John visited Smith" is
		// not a middle-name match.
		namePattern{
			pattern: PatternMiddleName, score: 85,
			re: regexp.MustCompile(`\b(?i:` + f + `)\s+[A-Z][a-z]+\s+(?i:` + l + `)\b`),
		},
		namePattern{
			pattern: PatternReversed, score: 70,
			re: mustCompile(`\b` + l + `\s+` + f + `\b`),
		},
	)
	return patterns
}

func mustCompile(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

// falsePositive runs the post-match rejection checks. A false positive
// halves the pattern's score and invalidates the match.
func falsePositive(text string, loc []int, p namePattern, first, last string) (Result, bool) {
	reject := func(reason string) (Result, bool) {
		return Result{
			Valid:         false,
			Score:         p.score / 2,
			Pattern:       p.pattern,
			FalsePositive: true,
			Reason:        reason,
		}, true
	}

	// Directory and list pages repeat name tokens many times.
	if countWord(text, first) > 3 || countWord(text, last) > 3 {
		return reject("name token repeats more than 3 times (directory page)")
	}

	// A generational suffix adjacent to a reversed or folded match
	// usually means a relative, unless the query itself carried it.
	if p.pattern == PatternReversed || p.pattern == PatternSpecialChar {
		if s := followingWord(text, loc[1]); generationalSuffixes[s] &&
			!strings.Contains(strings.ToLower(first+" "+last), s) {
			return reject(fmt.Sprintf("generational suffix %q adjacent to match", s))
		}
	}

	// Negated mentions: "not John Smith", "formerly John Smith".
	if w := precedingWord(text, loc[0]); w != "" {
		for _, neg := range negativeContexts {
			if w == neg {
				return reject(fmt.Sprintf("negative context %q precedes match", w))
			}
		}
	}

	return Result{}, false
}

// contamination classifies texts where the name tokens are present but
// no structural pattern matched. Both tokens scattered through the text
// is a wrong-context near-miss, not a clean non-match; surnames collide
// with organization and place names often enough that the distinction
// matters downstream.
func contamination(text, first, last string) Result {
	folded := Fold(text)
	hasFirst := hasWord(folded, Fold(first))
	hasLast := hasWord(folded, Fold(last))

	switch {
	case hasFirst && hasLast:
		return Result{
			Valid:        false,
			Score:        25,
			Pattern:      PatternNone,
			Contaminated: true,
			Reason:       "both name tokens present without structural relationship",
		}
	case hasFirst:
		return Result{Pattern: PatternNone, Score: 10, Reason: "partial match: only first name present"}
	case hasLast:
		return Result{Pattern: PatternNone, Score: 10, Reason: "partial match: only last name present"}
	default:
		return Result{Pattern: PatternNone, Reason: "name not present"}
	}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes special characters for matching: diacritics are
// stripped, apostrophes removed, and hyphens collapsed to spaces.
// "O'Neill" and "Muñoz-García" fold to "ONeill" and "Munoz Garcia".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '’', '`':
			return -1
		case '-', '–':
			return ' '
		default:
			return r
		}
	}, folded)
}

// plainName reports whether a name needs no special-character folding.
func plainName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func hasWord(text, word string) bool {
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

func countWord(text, word string) int {
	if word == "" {
		return 0
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(Fold(word)) + `\b`)
	return len(re.FindAllString(Fold(text), -1))
}

// precedingWord returns the lowercased word immediately before offset.
func precedingWord(text string, offset int) string {
	before := strings.ToLower(strings.TrimSpace(text[:offset]))
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,;:()[]\"'")
}

// followingWord returns the lowercased word immediately after offset.
func followingWord(text string, offset int) string {
	after := strings.TrimSpace(text[offset:])
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(strings.ToLower(fields[0]), ".,;:()[]\"'")
}
