package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsProfileURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/in/kelly-oneill", true},
		{"https://linkedin.com/in/jsmith/", true},
		{"https://WWW.LinkedIn.com/IN/jsmith", true},
		{"https://www.linkedin.com/posts/kelly-oneill_something", false},
		{"https://www.linkedin.com/company/mount-sinai", false},
		{"https://example.com/in/jsmith", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsProfileURL(tt.url); got != tt.want {
			t.Errorf("IsProfileURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCanonicalProfileURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "already canonical",
			url:  "https://www.linkedin.com/in/kelly-oneill",
			want: "https://www.linkedin.com/in/kelly-oneill",
		},
		{
			name: "trailing slash stripped",
			url:  "https://www.linkedin.com/in/kelly-oneill/",
			want: "https://www.linkedin.com/in/kelly-oneill",
		},
		{
			name: "bare host normalized",
			url:  "http://linkedin.com/in/jsmith",
			want: "https://www.linkedin.com/in/jsmith",
		},
		{
			name: "query and fragment dropped",
			url:  "https://www.linkedin.com/in/jsmith?trk=search#about",
			want: "https://www.linkedin.com/in/jsmith",
		},
		{
			name: "non-profile URL unchanged",
			url:  "https://example.com/page?x=1",
			want: "https://example.com/page?x=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalProfileURL(tt.url); got != tt.want {
				t.Errorf("CanonicalProfileURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestProfileResults(t *testing.T) {
	raw := []Result{
		{Title: "Kelly O'Neill | LinkedIn", URL: "https://www.linkedin.com/in/kelly-oneill"},
		{Title: "Kelly O'Neill on LinkedIn", URL: "https://www.linkedin.com/posts/kelly-oneill_x"},
		{Title: "Kelly O'Neill | LinkedIn", URL: "https://linkedin.com/in/kelly-oneill/"},
		{Title: "Mount Sinai directory", URL: "https://www.mountsinai.org/find-a-doctor"},
		{Title: "John Smith | LinkedIn", URL: "https://www.linkedin.com/in/john-smith-8a4"},
	}

	want := []Result{
		{Title: "Kelly O'Neill | LinkedIn", URL: "https://www.linkedin.com/in/kelly-oneill"},
		{Title: "John Smith | LinkedIn", URL: "https://www.linkedin.com/in/john-smith-8a4"},
	}

	got := ProfileResults(raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ProfileResults() mismatch (-want +got):\n%s", diff)
	}
}
