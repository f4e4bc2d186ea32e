package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List listings recorded in the catalog",
	Long:  "Prints the most recently discovered listings from the watcher's SQLite catalog.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "number of listings to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, err := store.OpenSQLite(cfg.Watch.CatalogPath)
	if err != nil {
		return fmt.Errorf("opening catalog %s: %w", cfg.Watch.CatalogPath, err)
	}
	defer catalog.Close()

	ctx := cmd.Context()
	entries, err := catalog.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	total, err := catalog.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-17s %-45s %-22s %-17s %s\n", "First seen", "Title", "Company", "Kind", "URL")
	fmt.Println(strings.Repeat("─", 130))
	for _, e := range entries {
		r := e.Record
		fmt.Printf("%-17s %-45s %-22s %-17s %s\n",
			e.FirstSeen.Local().Format("2006-01-02 15:04"),
			truncate(r.Title, 45), truncate(r.Company, 22), r.Kind, r.URL)
	}

	fmt.Printf("\nShowing %d of %d catalogued listings (%s)\n", len(entries), total, cfg.Watch.CatalogPath)
	return nil
}
