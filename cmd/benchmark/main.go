package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bigdatawirtz/semanticsearch/config"
	"github.com/bigdatawirtz/semanticsearch/internal/cli"
	"github.com/bigdatawirtz/semanticsearch/internal/domain"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding the documents and config")
	docs := flag.String("docs", "", "Comma-separated document globs (default from config)")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 5, "Number of results")
	runs := flag.Int("n", 20, "Number of timed query runs")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./data -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Load throughput (embedding + insert)")
		fmt.Println("  2. Query latency over repeated runs")
		fmt.Println("  3. Similarity of the top matches")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(cfg, *dir, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		os.Exit(1)
	}

	var patterns []string
	if *docs != "" {
		patterns = strings.Split(*docs, ",")
	}

	ctx := context.Background()

	fmt.Println("SEMANTIC SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	start := time.Now()
	report, err := app.Load(ctx, patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load failed: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	fmt.Printf("Documents loaded: %d (%d failed)\n", len(report.Added), len(report.Failures))
	fmt.Printf("Model: %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Printf("Load time: %s", loadTime.Round(time.Millisecond))
	if n := len(report.Added); n > 0 {
		fmt.Printf(" (%.1f docs/s)", float64(n)/loadTime.Seconds())
	}
	fmt.Println()
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	if *runs < 1 {
		*runs = 1
	}

	var latencies []time.Duration
	var results []domain.Result
	for i := 0; i < *runs; i++ {
		t0 := time.Now()
		res, err := app.Search(ctx, *query, *topK)
		latencies = append(latencies, time.Since(t0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		if i == 0 {
			results = res
		}
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := strings.ReplaceAll(shorten(r.Text, 150), "\n", " ")

		totalScore += r.Score

		rating := "LOW"
		if r.Score > 0.7 {
			rating = "HIGH"
		} else if r.Score > 0.5 {
			rating = "GOOD"
		} else if r.Score > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating, r.Score, r.Filename)
		fmt.Printf("   %s\n\n", preview)
	}

	var total time.Duration
	for _, l := range latencies {
		total += l
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("METRICS:\n")
	fmt.Printf("  Query runs:         %d\n", len(latencies))
	fmt.Printf("  Mean latency:       %s\n", (total / time.Duration(len(latencies))).Round(time.Microsecond))
	fmt.Printf("  Average similarity: %.3f\n", totalScore/float64(len(results)))
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)
}

// shorten cuts s to at most n runes, marking the cut with "...".
func shorten(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
