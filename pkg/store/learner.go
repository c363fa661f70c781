package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

const (
	// patternKey is the store key holding the pattern log. The version
	// suffix lets the record shape change without migration.
	patternKey = "patterns:v1"

	// maxPatternRecords caps the log at the most recent entries.
	maxPatternRecords = 100

	// patternTTL keeps the log far longer than individual resolutions.
	patternTTL = 365 * 24 * time.Hour

	// failingOrgThreshold is how many failures (with no success) mark
	// an organization format as problematic.
	failingOrgThreshold = 2
)

// PatternRecord is one observed resolution attempt: which strategy ran,
// what shape the inputs had, and whether it produced an accepted match.
type PatternRecord struct {
	Strategy   string    `json:"strategy"`
	NameFormat string    `json:"name_format,omitempty"`
	OrgFormat  string    `json:"org_format,omitempty"`
	Success    bool      `json:"success"`
	At         time.Time `json:"at"`
}

// Recommendations are advisory aggregates over the pattern log. They
// inform query construction only and never feed candidate scoring.
type Recommendations struct {
	BestStrategy string   `json:"best_strategy,omitempty"`
	FailingOrgs  []string `json:"failing_orgs,omitempty"`
}

// Learner keeps a capped append-only log of resolution outcomes.
type Learner struct {
	kv     KV
	logger *slog.Logger
}

// NewLearner creates a Learner over the given KV.
func NewLearner(kv KV, logger *slog.Logger) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{kv: kv, logger: logger}
}

// Record appends one attempt to the log, evicting the oldest entries
// beyond the cap.
func (l *Learner) Record(ctx context.Context, rec PatternRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}

	records, err := l.load(ctx)
	if err != nil {
		return err
	}

	records = append(records, rec)
	if len(records) > maxPatternRecords {
		records = records[len(records)-maxPatternRecords:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode pattern log: %w", err)
	}
	if err := l.kv.Set(ctx, patternKey, data, patternTTL); err != nil {
		return fmt.Errorf("write pattern log: %w", err)
	}

	l.logger.DebugContext(ctx, "pattern recorded",
		"strategy", rec.Strategy, "success", rec.Success, "log_size", len(records))
	return nil
}

// Recommendations aggregates the log: the strategy with the most
// successes, and organization formats that keep failing.
func (l *Learner) Recommendations(ctx context.Context) (Recommendations, error) {
	records, err := l.load(ctx)
	if err != nil {
		return Recommendations{}, err
	}

	successes := make(map[string]int)
	orgFailures := make(map[string]int)
	orgSuccesses := make(map[string]int)

	for _, rec := range records {
		if rec.Success {
			successes[rec.Strategy]++
			if rec.OrgFormat != "" {
				orgSuccesses[rec.OrgFormat]++
			}
			continue
		}
		if rec.OrgFormat != "" {
			orgFailures[rec.OrgFormat]++
		}
	}

	var recs Recommendations
	best := 0
	for strategy, n := range successes {
		if n > best || (n == best && strategy < recs.BestStrategy) {
			best = n
			recs.BestStrategy = strategy
		}
	}

	for org, n := range orgFailures {
		if n >= failingOrgThreshold && orgSuccesses[org] == 0 {
			recs.FailingOrgs = append(recs.FailingOrgs, org)
		}
	}
	sort.Strings(recs.FailingOrgs)

	return recs, nil
}

func (l *Learner) load(ctx context.Context) ([]PatternRecord, error) {
	data, found, err := l.kv.Get(ctx, patternKey)
	if err != nil {
		return nil, fmt.Errorf("read pattern log: %w", err)
	}
	if !found {
		return nil, nil
	}

	var records []PatternRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt log restarts empty rather than blocking resolution.
		l.logger.Warn("discarding corrupt pattern log", "error", err)
		return nil, nil
	}
	return records, nil
}
