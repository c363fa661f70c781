package orgmatch

import (
	"strings"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := DefaultDB()
	if err != nil {
		t.Fatalf("DefaultDB() error = %v", err)
	}
	return db
}

func TestMatchReflexive(t *testing.T) {
	names := []string{
		"Mount Sinai",
		"Boston Medical Center",
		"Some Unknown Practice LLC",
		"St. Mary's Hospital of Springfield",
	}
	for _, name := range names {
		got := Match(name, name, Context{})
		if got.Score != 100 {
			t.Errorf("Match(%q, %q) score = %d, want 100 (method %s)", name, name, got.Score, got.Method)
		}
	}
}

func TestMatchPrimaryKeyword(t *testing.T) {
	db := testDB(t)
	text := "Kelly O'Neill - Director at Mount Sinai Health System"

	got := Match(text, "Mount Sinai", Context{DB: db})
	if got.Score < 85 {
		t.Errorf("score = %d, want >= 85 (method %s, details %s)", got.Score, got.Method, got.Details)
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high", got.Confidence)
	}
}

func TestMatchViaAliasEquivalentToCanonical(t *testing.T) {
	db := testDB(t)
	text := "Jane Doe, Cardiology, Mount Sinai campus"

	viaCanonical := Match(text, "Mount Sinai", Context{DB: db})
	viaAlias := Match(text, "Mount Sinai Hospital", Context{DB: db})

	if viaCanonical.Score != viaAlias.Score {
		t.Errorf("alias lookup score %d != canonical lookup score %d", viaAlias.Score, viaCanonical.Score)
	}
	if viaCanonical.Method != MethodPrimaryKeyword {
		t.Errorf("method = %s, want primary_keyword", viaCanonical.Method)
	}
}

func TestMatchNoDatabaseMatch(t *testing.T) {
	db := testDB(t)
	got := Match("Boston Medical, Massachusetts", "Mount Sinai", Context{DB: db})
	if got.Score != 0 {
		t.Errorf("score = %d, want 0 (method %s)", got.Score, got.Method)
	}
	if got.Method != MethodNone {
		t.Errorf("method = %s, want none", got.Method)
	}
}

func TestMatchStopWordOnlyTarget(t *testing.T) {
	// Both names normalize to the empty string; that is an absence of
	// signal, not an exact match.
	got := Match("The Health Group", "Health Center", Context{})
	if got.Score != 0 {
		t.Errorf("score = %d, want 0 (method %s)", got.Score, got.Method)
	}
	if got.Method != MethodNone {
		t.Errorf("method = %s, want none", got.Method)
	}
}

func TestMatchKeywordSubset(t *testing.T) {
	db := testDB(t)
	// Only "brigham" out of [mass, general, brigham] appears.
	got := Match("Chief of Surgery, Brigham campus", "Mass General Brigham", Context{DB: db})
	if got.Method != MethodPrimaryKeyword {
		// brigham is also the primary keyword, so it wins first.
		t.Errorf("method = %s, want primary_keyword", got.Method)
	}

	// Subset without the primary keyword present.
	got = Match("Mass General cardiology department", "Mass General Brigham", Context{DB: db})
	if got.Method != MethodKeywordSubset {
		t.Fatalf("method = %s, want keyword_subset (details %s)", got.Method, got.Details)
	}
	if got.Score != 80 { // 70 + 5*2
		t.Errorf("score = %d, want 80", got.Score)
	}
}

func TestMatchTokenOverlapFallback(t *testing.T) {
	got := Match("Riverside Community Hospital of Dayton", "Riverside Community Hospital", Context{})
	if got.Method != MethodTokenOverlap && got.Method != MethodExact {
		t.Fatalf("method = %s, want token_overlap", got.Method)
	}
	if got.Score < 50 || got.Score > 70 {
		t.Errorf("score = %d, want 50-70", got.Score)
	}
}

func TestMatchIndustryContext(t *testing.T) {
	// "Riverside" matches one token and "medical" is industry vocabulary,
	// but overall overlap is below the token threshold.
	got := Match("Riverside medical staff page", "Riverside Physician Partners Alliance", Context{Industry: "health"})
	if got.Method != MethodIndustryContext {
		t.Fatalf("method = %s, want industry_context (score %d)", got.Method, got.Score)
	}
	if got.Score != 60 {
		t.Errorf("score = %d, want 60", got.Score)
	}
	if got.Confidence != ConfidenceLow {
		t.Errorf("confidence = %s, want low", got.Confidence)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Mount Sinai Health System", "mount sinai"},
		{"Boston Medical Center, Inc.", "boston medical"},
		{"Univ of Chicago Med School", "university chicago medical school"},
		{"  The  Cleveland   Clinic ", "cleveland clinic"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadDBRejectsAliasCollision(t *testing.T) {
	data := []byte(`
version: 1
organizations:
  - canonical: First System
    aliases: [Shared Name]
  - canonical: Second System
    aliases: [Shared Name]
`)
	_, err := LoadDB(data)
	if err == nil {
		t.Fatal("expected error for colliding alias")
	}
	if !strings.Contains(err.Error(), "Shared Name") {
		t.Errorf("error %q should name the colliding alias", err)
	}
}

func TestLoadDBRejectsUnknownVersion(t *testing.T) {
	if _, err := LoadDB([]byte("version: 2\norganizations: []")); err == nil {
		t.Fatal("expected version error")
	}
}

func TestLookup(t *testing.T) {
	db := testDB(t)

	rec, ok := db.Lookup("mount sinai hospital")
	if !ok {
		t.Fatal("expected alias lookup to succeed")
	}
	if rec.Canonical != "Mount Sinai" {
		t.Errorf("canonical = %q, want Mount Sinai", rec.Canonical)
	}

	if _, ok := db.Lookup("Completely Unknown Org"); ok {
		t.Error("expected lookup miss")
	}
}
