// Package person defines the common types for identity resolution.
package person

import (
	"errors"
	"strings"
	"time"
)

// Common errors returned by resolution components.
var (
	ErrMissingName  = errors.New("first and last name are required")
	ErrNoCandidates = errors.New("no matching candidates found")
)

// Query identifies the person to resolve. It is immutable for the
// duration of one resolution attempt.
type Query struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	JobTitle     string `json:"job_title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Region       string `json:"region,omitempty"`
}

// Validate checks that the required name fields are present.
// A failing Query must never trigger an external call.
func (q Query) Validate() error {
	if strings.TrimSpace(q.FirstName) == "" || strings.TrimSpace(q.LastName) == "" {
		return ErrMissingName
	}
	return nil
}

// FullName returns the "First Last" form of the queried name.
func (q Query) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(q.FirstName) + " " + strings.TrimSpace(q.LastName))
}

// Signal weights for the candidate total score. They sum to 1.0.
const (
	WeightName         = 0.35
	WeightOrganization = 0.30
	WeightTitle        = 0.20
	WeightURL          = 0.15
)

// Candidate is one external search result being evaluated against a Query.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Candidate struct {
	// Raw search result fields.
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	URL     string `json:"url"`

	// Derived during scoring.
	Org        string  `json:"org,omitempty"` // organization string extracted from title/snippet
	NameScore  float64 `json:"name_score"`
	OrgScore   float64 `json:"org_score"`
	TitleScore float64 `json:"title_score"`
	URLScore   float64 `json:"url_score"`
	Total      float64 `json:"total"`
}

// Score returns the weighted sum of the candidate's sub-scores.
// The result depends only on the sub-score values, not on the order
// they were computed in.
func (c Candidate) Score() float64 {
	return WeightName*c.NameScore +
		WeightOrganization*c.OrgScore +
		WeightTitle*c.TitleScore +
		WeightURL*c.URLScore
}

// Status classifies the terminal outcome of one resolution.
type Status string

// Terminal resolution statuses.
const (
	StatusFound       Status = "Found"
	StatusVerified    Status = "Verified"
	StatusNeedsReview Status = "Needs Review"
	StatusNotFound    Status = "Not Found"
	StatusRejected    Status = "Rejected"
	StatusError       Status = "Error"
)

// Result is the outcome of resolving one Query. A Result is never
// mutated after it has been written to the store.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Result struct {
	URL          string    `json:"url,omitempty"`
	Score        float64   `json:"score"`
	NameScore    float64   `json:"name_score"`
	OrgScore     float64   `json:"org_score"`
	TitleScore   float64   `json:"title_score"`
	URLScore     float64   `json:"url_score"`
	Verified     bool      `json:"verified"`
	NeedsReview  bool      `json:"needs_review"`
	ReviewReason string    `json:"review_reason,omitempty"`
	Alternatives []string  `json:"alternatives,omitempty"`
	Status       Status    `json:"status"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// RiskLevel estimates how common the queried name is.
type RiskLevel string

// Risk tiers for duplicate-name detection.
const (
	RiskStandard RiskLevel = "standard"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

// DuplicateRisk carries the matching strategy and minimum acceptable
// score derived from how common a queried name is. MinScore of zero
// means the pass-level threshold applies.
type DuplicateRisk struct {
	Level    RiskLevel `json:"level"`
	MinScore float64   `json:"min_score,omitempty"`
	Strategy string    `json:"strategy"`
}
