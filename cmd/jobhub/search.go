package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/model"
)

var (
	searchLocation string
	searchPage     int
	searchLimit    int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one aggregate search and print the results",
	Long:  "One-shot search across every active provider. Prints a table, or the raw result with --json.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "location to search in")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "results per page (default: search.default_limit)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	// Keep stdout clean for --json.
	logger := setupLogger(debug)
	if searchJSON && !debug {
		logger = silentLogger()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}
	limit = min(limit, cfg.Search.MaxLimit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.orch.AggregateSearch(ctx, query, searchLocation, searchPage, limit)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(query, searchLocation, res)
	return nil
}

func printResult(query, location string, res model.AggregateResult) {
	fmt.Printf("%-45s %-22s %-18s %-17s %-11s %s\n", "Title", "Company", "Location", "Kind", "Posted", "Source")
	fmt.Println(strings.Repeat("─", 130))

	for _, r := range res.Records {
		posted := "n/a"
		if r.PostedAt != nil {
			posted = r.PostedAt.Format("2006-01-02")
		}
		fmt.Printf("%-45s %-22s %-18s %-17s %-11s %s\n",
			truncate(r.Title, 45), truncate(r.Company, 22), truncate(r.Location, 18),
			r.Kind, posted, r.Source)
	}

	fmt.Printf("\nSearch %s: page %d, %d of %d results", searchLabel(query, location), res.Page, len(res.Records), res.Total)
	if res.Cached {
		fmt.Print(" (cached)")
	}
	fmt.Println()
	if len(res.SourcesUsed) > 0 {
		fmt.Printf("Sources: %s\n", strings.Join(res.SourcesUsed, ", "))
	}
	for _, pe := range res.ProviderErrors {
		fmt.Printf("Failed:  %s (%s): %s\n", pe.Provider, pe.Kind, pe.Message)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
