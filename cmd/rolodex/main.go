// Command rolodex resolves a person's identity to a professional
// profile URL.
//
// Usage:
//
//	rolodex -org "Mount Sinai" -title "Director" Kelly "O'Neill"
//	rolodex -batch people.csv -json
//	rolodex -recommend
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
	"github.com/codeGROOVE-dev/rolodex/pkg/resolve"
	"github.com/codeGROOVE-dev/rolodex/pkg/search"
	"github.com/codeGROOVE-dev/rolodex/pkg/store"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	verbose := flag.Bool("v", false, "verbose logging (same as -debug)")
	configPath := flag.String("config", "", "path to a YAML config file")
	industry := flag.String("industry", "", "industry profile (e.g. health, academic)")
	org := flag.String("org", "", "organization the person works for")
	title := flag.String("title", "", "job title")
	region := flag.String("region", "", "region or metro area")
	batch := flag.String("batch", "", "CSV file of people to resolve (first_name,last_name,job_title,organization,region)")
	jsonOut := flag.Bool("json", false, "output JSON instead of a table")
	noCache := flag.Bool("no-cache", false, "disable search response and resolution caching")
	cacheTTL := flag.Duration("cache-ttl", 0, "override the cache time-to-live (e.g. 24h)")
	dataDir := flag.String("data", "", "data directory (default: user cache dir)")
	recommend := flag.Bool("recommend", false, "print strategy recommendations from the pattern log and exit")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug || *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := resolve.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *industry != "" {
		cfg.Industry = *industry
	}
	if *cacheTTL > 0 {
		cfg.CacheTTL = *cacheTTL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if *dataDir == "" {
		*dataDir = store.DefaultPath()
	}

	ctx := context.Background()

	if *recommend {
		if err := printRecommendations(ctx, *dataDir, cfg.CacheTTL, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *batch == "" && flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: rolodex [options] <first-name> <last-name>")
		fmt.Fprintln(os.Stderr, "       rolodex [options] -batch people.csv")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nA Brave Search API key is required: set BRAVE_API_KEY or put the key in ~/.brave")
		os.Exit(1)
	}

	apiKey := search.LoadBraveAPIKey()
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no Brave API key found (set BRAVE_API_KEY or create ~/.brave)")
		os.Exit(1)
	}

	quota := search.NewQuotaLimiter(search.Quota{
		PerMinute: cfg.PerMinute,
		PerHour:   cfg.PerHour,
		PerDay:    cfg.PerDay,
		MinDelay:  cfg.MinDelay,
	}, logger)

	searchOpts := []search.BraveOption{
		search.WithBraveLogger(logger),
		search.WithBraveQuota(quota),
	}
	if !*noCache {
		responseCache, err := search.NewCacheWithPath(cfg.CacheTTL, *dataDir)
		if err != nil {
			logger.Warn("failed to initialize search cache, continuing without", "error", err)
		} else {
			defer func() {
				if err := responseCache.Close(); err != nil {
					logger.Warn("failed to close search cache", "error", err)
				}
			}()
			searchOpts = append(searchOpts, search.WithBraveCache(responseCache))
		}
	}
	searcher := search.NewBraveSearcher(apiKey, searchOpts...)

	resolveOpts := []resolve.Option{resolve.WithLogger(logger)}
	if !*noCache {
		kv, err := store.OpenKV(ctx, *dataDir, cfg.CacheTTL)
		if err != nil {
			logger.Warn("failed to open resolution store, continuing without", "error", err)
		} else {
			defer func() {
				if err := kv.Close(); err != nil {
					logger.Warn("failed to close resolution store", "error", err)
				}
			}()
			resolveOpts = append(resolveOpts,
				resolve.WithStore(store.New(kv, store.WithTTL(cfg.CacheTTL), store.WithLogger(logger))),
				resolve.WithLearner(store.NewLearner(kv, logger)),
			)
		}
	}

	resolver, err := resolve.New(searcher, cfg, resolveOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}

	if *batch != "" {
		queries, err := readBatch(*batch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Batch error: %v\n", err)
			os.Exit(1)
		}
		rows := resolver.ResolveAll(ctx, queries)
		if *jsonOut {
			if err := outputJSON(rows); err != nil {
				fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		fmt.Println(batchTable(rows))
		return
	}

	q := person.Query{
		FirstName:    flag.Arg(0),
		LastName:     flag.Arg(1),
		JobTitle:     *title,
		Organization: *org,
		Region:       *region,
	}
	res, err := resolver.Resolve(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *jsonOut {
		if err := outputJSON(res); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(resultTable(q, res))
}

func printRecommendations(ctx context.Context, dataDir string, ttl time.Duration, jsonOut bool) error {
	kv, err := store.OpenKV(ctx, dataDir, ttl)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close() //nolint:errcheck // read-only use

	recs, err := store.NewLearner(kv, slog.Default()).Recommendations(ctx)
	if err != nil {
		return err
	}
	if jsonOut {
		return outputJSON(recs)
	}
	if recs.BestStrategy == "" && len(recs.FailingOrgs) == 0 {
		fmt.Println("No pattern history yet.")
		return nil
	}
	if recs.BestStrategy != "" {
		fmt.Printf("Most successful strategy: %s\n", recs.BestStrategy)
	}
	for _, org := range recs.FailingOrgs {
		fmt.Printf("Repeated failures for organization format: %s\n", org)
	}
	return nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
