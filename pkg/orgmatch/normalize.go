package orgmatch

import (
	"strings"
	"unicode"
)

// abbreviations expanded before comparison. Token-level only; "med
// school" becomes "medical school".
var abbreviations = map[string]string{
	"med":   "medical",
	"univ":  "university",
	"dept":  "department",
	"inst":  "institute",
	"intl":  "international",
	"natl":  "national",
	"assoc": "associates",
	"hosp":  "hospital",
}

// stopWords are stripped before token comparison: legal suffixes and
// generic nouns that appear in nearly every organization name and so
// carry no distinguishing signal.
var stopWords = map[string]bool{
	// Legal suffixes.
	"inc": true, "llc": true, "llp": true, "ltd": true, "corp": true,
	"co": true, "plc": true,
	// Glue words.
	"the": true, "of": true, "at": true, "and": true, "for": true,
	"a": true, "an": true, "in": true,
	// Generic organization nouns.
	"health": true, "center": true, "centre": true, "system": true,
	"group": true,
}

// Normalize lowercases, strips punctuation, expands common
// abbreviations, removes stop words, and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		if full, ok := abbreviations[tok]; ok {
			tok = full
		}
		if stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}
