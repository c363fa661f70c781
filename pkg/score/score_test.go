package score

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/rolodex/pkg/orgmatch"
	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

func TestRankSelectsBest(t *testing.T) {
	cands := []person.Candidate{
		{URL: "https://www.linkedin.com/in/jane-doe", NameScore: 100, OrgScore: 85, TitleScore: 80, URLScore: 90},
		{URL: "https://www.linkedin.com/in/jane-doe-12345", NameScore: 100, OrgScore: 0, TitleScore: 20, URLScore: 45},
	}
	q := person.Query{FirstName: "Jane", LastName: "Doe"}

	sel := Rank(cands, q, person.DuplicateRisk{Level: person.RiskStandard}, 50)
	if sel.NeedsReview {
		t.Fatalf("unexpected review: %s", sel.Reason)
	}
	if sel.Best == nil || sel.Best.URL != cands[0].URL {
		t.Fatalf("Best = %+v, want first candidate", sel.Best)
	}
	// 0.35*100 + 0.30*85 + 0.20*80 + 0.15*90 = 90.0
	if math.Abs(sel.Best.Total-90.0) > 1e-9 {
		t.Errorf("Total = %v, want 90.0", sel.Best.Total)
	}
}

func TestRankNearTieUnderDuplicateRisk(t *testing.T) {
	// Totals 60 and 57: gap under 15 points.
	cands := []person.Candidate{
		{URL: "https://www.linkedin.com/in/john-smith-1", NameScore: 100, OrgScore: 40, TitleScore: 35, URLScore: 40},
		{URL: "https://www.linkedin.com/in/john-smith-2", NameScore: 100, OrgScore: 30, TitleScore: 35, URLScore: 40},
	}
	q := person.Query{FirstName: "John", LastName: "Smith"}

	sel := Rank(cands, q, person.DuplicateRisk{Level: person.RiskHigh, MinScore: 75}, 50)
	if !sel.NeedsReview {
		t.Fatal("expected manual-review bundle for near-tie under high duplicate risk")
	}
	if !sel.Ambiguous {
		t.Error("near-tie review should be marked ambiguous")
	}
	if sel.Best != nil {
		t.Errorf("review bundle must not auto-select, got %+v", sel.Best)
	}
	if len(sel.Top) != 2 {
		t.Errorf("Top length = %d, want 2", len(sel.Top))
	}
}

func TestRankBelowMinimumScore(t *testing.T) {
	cands := []person.Candidate{
		{URL: "https://www.linkedin.com/in/jane-doe", NameScore: 50, OrgScore: 0, TitleScore: 0, URLScore: 30},
	}
	q := person.Query{FirstName: "Jane", LastName: "Doe"}

	sel := Rank(cands, q, person.DuplicateRisk{Level: person.RiskStandard}, 60)
	if !sel.NeedsReview {
		t.Fatal("expected review when best score is below threshold")
	}
	if sel.Ambiguous {
		t.Error("below-threshold review is weak evidence, not ambiguity")
	}
}

func TestRankIdempotent(t *testing.T) {
	cands := []person.Candidate{
		{URL: "https://www.linkedin.com/in/a", NameScore: 100, OrgScore: 85, TitleScore: 50, URLScore: 70},
		{URL: "https://www.linkedin.com/in/b", NameScore: 85, OrgScore: 85, TitleScore: 50, URLScore: 70},
		{URL: "https://www.linkedin.com/in/c", NameScore: 70, OrgScore: 0, TitleScore: 0, URLScore: 35},
	}
	q := person.Query{FirstName: "Jane", LastName: "Doe"}
	risk := person.DuplicateRisk{Level: person.RiskStandard}

	first := Rank(cands, q, risk, 40)
	second := Rank(first.Top, q, risk, 40)

	if diff := cmp.Diff(first.Top, second.Top); diff != "" {
		t.Errorf("re-ranking changed order or scores (-first +second):\n%s", diff)
	}
}

func TestRankEmpty(t *testing.T) {
	sel := Rank(nil, person.Query{}, person.DuplicateRisk{}, 50)
	if sel.Best != nil || sel.NeedsReview {
		t.Errorf("empty input should yield neither best nor review: %+v", sel)
	}
}

func TestEvaluate(t *testing.T) {
	db, err := orgmatch.DefaultDB()
	if err != nil {
		t.Fatalf("DefaultDB() error = %v", err)
	}

	c := person.Candidate{
		Title:   "Kelly O'Neill - Director at Mount Sinai Health System | LinkedIn",
		Snippet: "Director of Clinical Operations at Mount Sinai Health System.",
		URL:     "https://www.linkedin.com/in/kelly-oneill",
	}
	q := person.Query{
		FirstName:    "Kelly",
		LastName:     "O'Neill",
		JobTitle:     "Director",
		Organization: "Mount Sinai",
	}

	Evaluate(&c, q, orgmatch.Context{DB: db, Industry: "health"}, false)

	if c.NameScore < 95 {
		t.Errorf("NameScore = %v, want >= 95", c.NameScore)
	}
	if c.OrgScore < 85 {
		t.Errorf("OrgScore = %v, want >= 85", c.OrgScore)
	}
	if c.TitleScore != 100 {
		t.Errorf("TitleScore = %v, want 100", c.TitleScore)
	}
	if c.URLScore < 70 {
		t.Errorf("URLScore = %v, want >= 70", c.URLScore)
	}
	if c.Total != c.Score() {
		t.Errorf("Total = %v, want %v", c.Total, c.Score())
	}
}

func TestURLStructure(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		first, last string
		org         string
		wantMin     float64
		wantMax     float64
	}{
		{"clean vanity slug", "https://www.linkedin.com/in/jane-doe", "Jane", "Doe", "", 90, 100},
		{"numeric disambiguation suffix", "https://www.linkedin.com/in/jane-doe-84b21a37", "Jane", "Doe", "", 0, 70},
		{"unrelated slug", "https://www.linkedin.com/in/someone-else", "Jane", "Doe", "", 0, 25},
		{"apostrophe name folded in slug", "https://www.linkedin.com/in/kelly-oneill", "Kelly", "O'Neill", "", 90, 100},
		{"empty path", "https://www.linkedin.com", "Jane", "Doe", "", 0, 0},
		{"organization hint in slug", "https://www.linkedin.com/in/jane-doe-acme", "Jane", "Doe", "Acme Corp", 100, 100},
		{"organization absent from slug", "https://www.linkedin.com/in/jane-doe", "Jane", "Doe", "Acme Corp", 90, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := URLStructure(tt.url, tt.first, tt.last, tt.org)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("URLStructure(%q) = %v, want %v-%v", tt.url, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestTitleOverlap(t *testing.T) {
	if got := TitleOverlap("Chief Medical Officer at Mercy", "Chief Medical Officer"); got != 100 {
		t.Errorf("full overlap = %v, want 100", got)
	}
	if got := TitleOverlap("Director of Nursing", "Chief Medical Officer"); got != 0 {
		t.Errorf("no overlap = %v, want 0", got)
	}
	if got := TitleOverlap("anything", ""); got != 0 {
		t.Errorf("empty title = %v, want 0", got)
	}
}
