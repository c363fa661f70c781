// Package resolve orchestrates identity resolution: escalating search
// passes, duplicate-risk handling, validation rules, and caching.
package resolve

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/rolodex/pkg/orgmatch"
)

// Config holds per-run resolution settings. It is constructed once and
// never mutated during a run; industry switching is a parameter change,
// not ambient state.
type Config struct {
	// Industry selects the organization matcher's industry profile.
	Industry string `yaml:"industry"`

	// Pass thresholds: the minimum acceptable total score per pass.
	Pass1MinScore float64 `yaml:"pass1_min_score"`
	Pass2MinScore float64 `yaml:"pass2_min_score"`

	// CandidateTarget stops a pass early once this many profile URLs
	// have been collected.
	CandidateTarget int `yaml:"candidate_target"`

	// ResultCount is the per-query result-count hint sent to the
	// search capability.
	ResultCount int `yaml:"result_count"`

	// CacheTTL is the resolution cache entry lifetime.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Search pacing. MinDelay is the fixed gap between external calls;
	// the Per* quotas are sliding windows. Zero disables a window.
	MinDelay  time.Duration `yaml:"min_delay"`
	PerMinute int           `yaml:"per_minute"`
	PerHour   int           `yaml:"per_hour"`
	PerDay    int           `yaml:"per_day"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Pass1MinScore:   70,
		Pass2MinScore:   55,
		CandidateTarget: 3,
		ResultCount:     5,
		CacheTTL:        30 * 24 * time.Hour,
		MinDelay:        1100 * time.Millisecond,
		PerMinute:       50,
		PerHour:         1000,
		PerDay:          2000,
	}
}

// Validate checks ranges and the industry profile name.
func (c Config) Validate() error {
	if !orgmatch.KnownIndustry(c.Industry) {
		return fmt.Errorf("unknown industry %q (known: %s)",
			c.Industry, strings.Join(orgmatch.Industries(), ", "))
	}
	if c.Pass1MinScore < 0 || c.Pass1MinScore > 100 {
		return fmt.Errorf("pass1_min_score %.1f out of range 0-100", c.Pass1MinScore)
	}
	if c.Pass2MinScore < 0 || c.Pass2MinScore > 100 {
		return fmt.Errorf("pass2_min_score %.1f out of range 0-100", c.Pass2MinScore)
	}
	if c.CandidateTarget < 1 {
		return fmt.Errorf("candidate_target %d must be at least 1", c.CandidateTarget)
	}
	if c.ResultCount < 1 {
		return fmt.Errorf("result_count %d must be at least 1", c.ResultCount)
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("min_delay %v must not be negative", c.MinDelay)
	}
	return nil
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides, then validates. Duration fields accept Go
// duration strings ("36h", "1100ms").
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var file configFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := file.apply(&cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configFile mirrors Config with pointer fields so absent keys keep
// their defaults, and string durations.
type configFile struct {
	Industry        *string  `yaml:"industry"`
	Pass1MinScore   *float64 `yaml:"pass1_min_score"`
	Pass2MinScore   *float64 `yaml:"pass2_min_score"`
	CandidateTarget *int     `yaml:"candidate_target"`
	ResultCount     *int     `yaml:"result_count"`
	CacheTTL        *string  `yaml:"cache_ttl"`
	MinDelay        *string  `yaml:"min_delay"`
	PerMinute       *int     `yaml:"per_minute"`
	PerHour         *int     `yaml:"per_hour"`
	PerDay          *int     `yaml:"per_day"`
}

func (f configFile) apply(cfg *Config) error {
	if f.Industry != nil {
		cfg.Industry = *f.Industry
	}
	if f.Pass1MinScore != nil {
		cfg.Pass1MinScore = *f.Pass1MinScore
	}
	if f.Pass2MinScore != nil {
		cfg.Pass2MinScore = *f.Pass2MinScore
	}
	if f.CandidateTarget != nil {
		cfg.CandidateTarget = *f.CandidateTarget
	}
	if f.ResultCount != nil {
		cfg.ResultCount = *f.ResultCount
	}
	if f.CacheTTL != nil {
		d, err := time.ParseDuration(*f.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if f.MinDelay != nil {
		d, err := time.ParseDuration(*f.MinDelay)
		if err != nil {
			return fmt.Errorf("parse min_delay: %w", err)
		}
		cfg.MinDelay = d
	}
	if f.PerMinute != nil {
		cfg.PerMinute = *f.PerMinute
	}
	if f.PerHour != nil {
		cfg.PerHour = *f.PerHour
	}
	if f.PerDay != nil {
		cfg.PerDay = *f.PerDay
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ROLODEX_INDUSTRY"); v != "" {
		cfg.Industry = v
	}
	if v := os.Getenv("ROLODEX_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse ROLODEX_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("ROLODEX_MIN_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse ROLODEX_MIN_DELAY: %w", err)
		}
		cfg.MinDelay = d
	}
	if v := os.Getenv("ROLODEX_PER_DAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ROLODEX_PER_DAY: %w", err)
		}
		cfg.PerDay = n
	}
	return nil
}
