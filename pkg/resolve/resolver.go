package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/rolodex/pkg/orgmatch"
	"github.com/codeGROOVE-dev/rolodex/pkg/person"
	"github.com/codeGROOVE-dev/rolodex/pkg/score"
	"github.com/codeGROOVE-dev/rolodex/pkg/search"
	"github.com/codeGROOVE-dev/rolodex/pkg/store"
)

// Resolver turns a person query into a single profile URL, or a typed
// non-answer. One query resolves end to end before the next begins.
type Resolver struct {
	searcher search.Searcher
	store    *store.Store
	learner  *store.Learner
	db       *orgmatch.DB
	rules    []Rule
	logger   *slog.Logger
	cfg      Config
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStore sets the resolution cache.
func WithStore(s *store.Store) Option {
	return func(r *Resolver) { r.store = s }
}

// WithLearner sets the pattern learner.
func WithLearner(l *store.Learner) Option {
	return func(r *Resolver) { r.learner = l }
}

// WithOrgDB overrides the embedded organization knowledge base.
func WithOrgDB(db *orgmatch.DB) Option {
	return func(r *Resolver) { r.db = db }
}

// WithRules overrides the default validation rule set.
func WithRules(rules []Rule) Option {
	return func(r *Resolver) { r.rules = rules }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver over the given searcher and config.
func New(searcher search.Searcher, cfg Config, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Resolver{
		searcher: searcher,
		cfg:      cfg,
		rules:    DefaultRules(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.db == nil {
		db, err := orgmatch.DefaultDB()
		if err != nil {
			return nil, fmt.Errorf("load organization database: %w", err)
		}
		r.db = db
	}

	return r, nil
}

// Resolution states. Resolved and Unresolved are terminal: the run
// loop returns a Result instead of transitioning further.
type state string

const (
	statePass1      state = "pass1_strict"
	statePass2      state = "pass2_relaxed"
	stateUnresolved state = "unresolved"
)

// strategy is one query the orchestrator may issue.
type strategy struct {
	name  string
	query string
}

// Resolve runs the full state machine for one query. Only a missing
// name is fatal; every other failure degrades to a typed Result.
func (r *Resolver) Resolve(ctx context.Context, q person.Query) (person.Result, error) {
	if err := q.Validate(); err != nil {
		return person.Result{Status: person.StatusError, ResolvedAt: time.Now().UTC()}, err
	}

	if r.store != nil {
		if cached, found, err := r.store.Get(ctx, q); err != nil {
			r.logger.WarnContext(ctx, "cache read failed", "error", err)
		} else if found {
			r.logger.InfoContext(ctx, "resolved from cache", "name", q.FullName(), "status", cached.Status)
			return cached, nil
		}
	}

	risk := AssessRisk(q)
	mctx := orgmatch.Context{DB: r.db, Industry: r.cfg.Industry}
	r.logger.InfoContext(ctx, "resolving", "name", q.FullName(), "org", q.Organization, "risk", risk.Level)

	res := r.run(ctx, q, risk, mctx)
	res.ResolvedAt = time.Now().UTC()

	if r.store != nil {
		if err := r.store.Put(ctx, q, res); err != nil {
			r.logger.WarnContext(ctx, "cache write failed", "error", err)
		}
	}

	return res, nil
}

// run drives Pass1Strict → Pass2Relaxed → Resolved|Unresolved.
func (r *Resolver) run(ctx context.Context, q person.Query, risk person.DuplicateRisk, mctx orgmatch.Context) person.Result {
	st := statePass1

	for {
		switch st {
		case statePass1:
			strict := true
			cands, origin := r.gather(ctx, q, pass1Strategies(q), strict, mctx)
			sel := score.Rank(cands, q, risk, r.cfg.Pass1MinScore)

			switch {
			case sel.Best != nil:
				res := r.finalize(ctx, q, sel, origin, false)
				r.record(ctx, q, origin[sel.Best.URL], resolvedOK(res))
				return res
			case sel.Ambiguous:
				// A near-tie under duplicate risk is terminal: relaxed
				// queries add candidates, not certainty.
				res := reviewResult(sel)
				r.record(ctx, q, "pass1", false)
				return res
			default:
				r.logger.InfoContext(ctx, "pass 1 exhausted", "name", q.FullName(), "candidates", len(cands))
				st = statePass2
			}

		case statePass2:
			strict := risk.Level == person.RiskHigh
			cands, origin := r.gather(ctx, q, r.pass2Strategies(q), strict, mctx)
			sel := score.Rank(cands, q, risk, r.cfg.Pass2MinScore)

			switch {
			case sel.Best != nil:
				// Relaxed-pass answers are never auto-accepted.
				res := r.finalize(ctx, q, sel, origin, true)
				r.record(ctx, q, origin[sel.Best.URL], resolvedOK(res))
				return res
			case sel.NeedsReview && len(sel.Top) > 0:
				res := reviewResult(sel)
				r.record(ctx, q, "pass2", false)
				return res
			default:
				st = stateUnresolved
			}

		default: // stateUnresolved
			r.record(ctx, q, "exhausted", false)
			return person.Result{
				Status:       person.StatusNotFound,
				ReviewReason: "both search passes exhausted without a domain-matching candidate",
			}
		}
	}
}

// gather issues each strategy in order, collecting scored profile
// candidates until the per-pass target is met. Search failures skip the
// strategy and the pass continues. The returned origin map records which
// strategy produced each URL.
func (r *Resolver) gather(
	ctx context.Context,
	q person.Query,
	strategies []strategy,
	strict bool,
	mctx orgmatch.Context,
) ([]person.Candidate, map[string]string) {
	var cands []person.Candidate
	origin := make(map[string]string)
	seen := make(map[string]bool)

	for _, s := range strategies {
		if len(cands) >= r.cfg.CandidateTarget {
			break
		}

		r.logger.DebugContext(ctx, "issuing strategy", "strategy", s.name, "query", s.query)
		raw, err := r.searcher.Search(ctx, s.query, r.cfg.ResultCount)
		if err != nil {
			// Recovered locally: this strategy yields nothing and the
			// pass moves on.
			r.logger.WarnContext(ctx, "search failed, skipping strategy",
				"strategy", s.name, "error", err)
			continue
		}

		for _, hit := range search.ProfileResults(raw) {
			if seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true

			c := person.Candidate{Title: hit.Title, Snippet: hit.Snippet, URL: hit.URL}
			score.Evaluate(&c, q, mctx, strict)
			cands = append(cands, c)
			origin[c.URL] = s.name

			if len(cands) >= r.cfg.CandidateTarget {
				break
			}
		}
	}

	return cands, origin
}

// finalize applies the validation rules to the selected candidate and
// builds the terminal result. relaxed marks pass-2 answers, which are
// always flagged for review unless rejected outright.
func (r *Resolver) finalize(ctx context.Context, q person.Query, sel score.Selection, origin map[string]string, relaxed bool) person.Result {
	best := *sel.Best
	res := person.Result{
		URL:          best.URL,
		Score:        best.Total,
		NameScore:    best.NameScore,
		OrgScore:     best.OrgScore,
		TitleScore:   best.TitleScore,
		URLScore:     best.URLScore,
		Alternatives: alternatives(sel.Top, best.URL),
	}

	rule := EvaluateRules(r.rules, best, q)
	switch {
	case rule != nil && rule.Kind == RuleReject:
		res.Status = person.StatusRejected
		res.ReviewReason = rule.Message
	case relaxed:
		res.Status = person.StatusNeedsReview
		res.NeedsReview = true
		res.ReviewReason = "found via relaxed search pass"
	case rule != nil && rule.Kind == RuleAccept:
		res.Status = person.StatusVerified
		res.Verified = true
	case rule != nil && rule.Kind == RuleReview:
		res.Status = person.StatusNeedsReview
		res.NeedsReview = true
		res.ReviewReason = rule.Message
	default:
		res.Status = person.StatusFound
	}

	if rule != nil {
		r.logger.DebugContext(ctx, "validation rule matched",
			"rule", rule.Name, "kind", rule.Kind, "url", best.URL)
	}
	r.logger.InfoContext(ctx, "resolution outcome",
		"name", q.FullName(), "status", res.Status, "url", res.URL,
		"score", res.Score, "strategy", origin[best.URL])

	return res
}

// reviewResult builds a manual-review bundle from a selection.
func reviewResult(sel score.Selection) person.Result {
	res := person.Result{
		Status:       person.StatusNeedsReview,
		NeedsReview:  true,
		ReviewReason: sel.Reason,
	}
	if len(sel.Top) > 0 {
		res.URL = sel.Top[0].URL
		res.Score = sel.Top[0].Total
		res.NameScore = sel.Top[0].NameScore
		res.OrgScore = sel.Top[0].OrgScore
		res.TitleScore = sel.Top[0].TitleScore
		res.URLScore = sel.Top[0].URLScore
		res.Alternatives = alternatives(sel.Top, sel.Top[0].URL)
	}
	return res
}

func alternatives(top []person.Candidate, bestURL string) []string {
	var alts []string
	for _, c := range top {
		if c.URL != bestURL {
			alts = append(alts, c.URL)
		}
	}
	return alts
}

func resolvedOK(res person.Result) bool {
	return res.Status == person.StatusFound || res.Status == person.StatusVerified
}

// record logs the attempt into the pattern learner, if one is wired.
func (r *Resolver) record(ctx context.Context, q person.Query, strategyName string, success bool) {
	if r.learner == nil {
		return
	}
	rec := store.PatternRecord{
		Strategy:   strategyName,
		NameFormat: classifyNameFormat(q),
		OrgFormat:  classifyOrgFormat(q.Organization),
		Success:    success,
	}
	if err := r.learner.Record(ctx, rec); err != nil {
		r.logger.WarnContext(ctx, "pattern record failed", "error", err)
	}
}

// profileQualifier steers search results toward profile pages.
const profileQualifier = "linkedin.com/in"

// pass1Strategies builds up to three strict queries, most specific
// first. The full name is always quoted.
func pass1Strategies(q person.Query) []strategy {
	name := `"` + q.FullName() + `"`
	var out []strategy

	if q.JobTitle != "" && q.Organization != "" {
		out = append(out, strategy{
			name:  "name+title+org",
			query: fmt.Sprintf(`%s %q %q %s`, name, q.JobTitle, q.Organization, profileQualifier),
		})
	}
	if q.Organization != "" {
		out = append(out, strategy{
			name:  "name+org",
			query: fmt.Sprintf(`%s %q %s`, name, q.Organization, profileQualifier),
		})
	}
	if q.JobTitle != "" {
		out = append(out, strategy{
			name:  "name+title",
			query: fmt.Sprintf(`%s %q %s`, name, q.JobTitle, profileQualifier),
		})
	}
	if len(out) == 0 {
		out = append(out, strategy{
			name:  "name_quoted",
			query: name + " " + profileQualifier,
		})
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// pass2Strategies relaxes the query shapes, up to five, ending with the
// bare name.
func (r *Resolver) pass2Strategies(q person.Query) []strategy {
	name := `"` + q.FullName() + `"`
	var out []strategy

	if q.Organization != "" {
		if rec, ok := r.db.Lookup(q.Organization); ok && rec.PrimaryKeyword != "" {
			out = append(out, strategy{
				name:  "name+org_keyword",
				query: fmt.Sprintf("%s %s %s", name, rec.PrimaryKeyword, profileQualifier),
			})
		}
	}
	if q.JobTitle != "" {
		out = append(out, strategy{
			name:  "name+title_relaxed",
			query: fmt.Sprintf("%s %s %s", q.FullName(), q.JobTitle, profileQualifier),
		})
	}
	if q.Region != "" {
		out = append(out, strategy{
			name:  "name+region",
			query: fmt.Sprintf("%s %s %s", name, q.Region, profileQualifier),
		})
	}
	out = append(out,
		strategy{name: "name_quoted", query: name + " " + profileQualifier},
		strategy{name: "name_bare", query: q.FullName() + " " + profileQualifier},
	)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// classifyNameFormat tags the shape of a queried name for the learner.
func classifyNameFormat(q person.Query) string {
	full := q.FullName()
	switch {
	case strings.ContainsAny(full, "'-"):
		return "special_chars"
	case len(strings.Fields(full)) > 2:
		return "multi_token"
	default:
		return "plain"
	}
}

// classifyOrgFormat tags the shape of an organization string.
func classifyOrgFormat(org string) string {
	org = strings.TrimSpace(org)
	if org == "" {
		return ""
	}
	if strings.Contains(org, ".") || (len(org) <= 5 && org == strings.ToUpper(org)) {
		return "abbreviated"
	}
	return "full"
}
