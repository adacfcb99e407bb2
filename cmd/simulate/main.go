// Package main runs the market headless for a fixed number of ticks and
// prints every category, for inspecting determinism and filter behavior.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"text/tabwriter"

	"token-pulse/internal/domain"
	"token-pulse/internal/feed"
	"token-pulse/internal/filter"
	"token-pulse/internal/format"
	"token-pulse/internal/market"
	"token-pulse/internal/reporting"
	"token-pulse/internal/simulation"
	"token-pulse/internal/storage/memory"
	"token-pulse/internal/verification"
)

func main() {
	universe := flag.Int("universe", 30, "Number of tokens to generate")
	ticks := flag.Int("ticks", 10, "Number of ticks to apply")
	seed := flag.Int64("seed", 1, "Simulator seed")
	sortBy := flag.String("sort", string(domain.SortTrending), "Sort option: trending, marketCap, creationTime")
	keywords := flag.String("keywords", "", "Comma-separated keywords applied to every category")
	exclude := flag.String("exclude", "", "Comma-separated excluded keywords applied to every category")
	verbose := flag.Bool("verbose", false, "Log every tick")
	verify := flag.Bool("verify", false, "Replay the run from the same seed and report divergences")
	reportFormat := flag.String("report", "", "Write a session report: markdown or csv")
	reportOut := flag.String("report-out", "", "Report output file (default: stdout)")
	topMovers := flag.Int("top", reporting.DefaultTopMovers, "Number of movers in the report (0 = all)")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags|log.Lshortfile)

	opt := domain.SortOption(*sortBy)
	if !opt.IsValid() {
		logger.Fatalf("unknown sort option %q", *sortBy)
	}

	sim, err := simulation.New(simulation.DefaultConfig(), rand.New(rand.NewSource(*seed)))
	if err != nil {
		logger.Fatalf("Failed to create simulator: %v", err)
	}

	store := market.NewStore(market.Options{Simulator: sim, Logger: logger})
	if err := store.Init(*universe); err != nil {
		logger.Fatalf("Failed to initialize market: %v", err)
	}

	spec := domain.FilterSpec{
		Keywords:         filter.ParseKeywords(*keywords),
		ExcludedKeywords: filter.ParseKeywords(*exclude),
	}
	if !spec.IsEmpty() {
		for _, status := range domain.Statuses {
			if _, err := store.SetFilter(status, spec); err != nil {
				logger.Fatalf("Failed to set filter: %v", err)
			}
		}
	}

	samples := memory.NewPriceSampleStore()
	runner := feed.NewRunner(feed.RunnerOptions{
		Store:   store,
		Samples: samples,
		Catalog: memory.NewTokenCatalogStore(),
		Verbose: *verbose,
		Logger:  logger,
	})
	if err := runner.RunTicks(context.Background(), *ticks); err != nil {
		logger.Fatalf("Simulation failed: %v", err)
	}

	stats := runner.Stats()
	fmt.Printf("universe %d tokens, digest %s, %d ticks, %d samples\n\n",
		*universe, store.Digest(), stats.Ticks, samples.Len())

	for _, status := range domain.Statuses {
		if err := printCategory(os.Stdout, store, status, opt); err != nil {
			logger.Fatalf("Failed to print %s: %v", status, err)
		}
	}

	var verified *verification.Report
	if *verify {
		verified = runVerification(logger, *universe, *ticks, *seed)
	}

	if *reportFormat != "" {
		gen := reporting.NewGenerator(store, samples, runner.RunID()).WithTopMovers(*topMovers)
		report, err := gen.Generate(context.Background())
		if err != nil {
			logger.Fatalf("Failed to generate report: %v", err)
		}
		report.Verification = reporting.NewVerificationSection(verified)
		if err := writeReport(report, *reportFormat, *reportOut); err != nil {
			logger.Fatalf("Failed to write report: %v", err)
		}
	}

	if verified != nil && !verified.Match {
		os.Exit(1)
	}
}

func writeReport(report *reporting.Report, kind, path string) error {
	var content string
	switch kind {
	case "markdown", "md":
		content = reporting.RenderMarkdown(report)
	case "csv":
		content = reporting.RenderCSV(report.Movers)
	default:
		return fmt.Errorf("unknown report format %q", kind)
	}

	if path == "" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func runVerification(logger *log.Logger, universe, ticks int, seed int64) *verification.Report {
	v := verification.NewVerifier(verification.Options{
		Universe: universe,
		Ticks:    ticks,
		Seed:     seed,
		Logger:   logger,
	})
	report, err := v.Run(context.Background())
	if err != nil {
		logger.Fatalf("Verification failed: %v", err)
	}

	if report.Match {
		fmt.Printf("verification: OK (%d ticks compared, digest %s)\n\n", report.TicksCompared, report.ExpectedDigest)
		return report
	}

	fmt.Printf("verification: DIVERGED after %d ticks, %d fields\n", report.TicksCompared, len(report.Divergences))
	for _, d := range report.Divergences {
		fmt.Printf("  tick %d %s.%s: expected %v, got %v\n", d.Tick, d.TokenID, d.Field, d.Expected, d.Actual)
	}
	fmt.Println()
	return report
}

func printCategory(w io.Writer, store *market.Store, status domain.Status, opt domain.SortOption) error {
	cat, err := store.Category(status, opt)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "== %s (%d/%d) ==\n", status.DisplayName(), len(cat.Records), cat.Total)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tPROTOCOL\tPRICE\t5M\t1H\tMCAP\tVOLUME\tTXNS\tAGE")
	for _, r := range cat.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Symbol, r.Protocol,
			format.Price(r.Price),
			format.Percentage(r.PriceChange5m),
			format.Percentage(r.PriceChange1h),
			format.MarketCap(r.MarketCap),
			format.Volume(r.Volume24h),
			r.Transactions,
			r.TimeSinceCreation,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}
