package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/browse"
	"github.com/amishk599/jobhub/internal/model"
)

var browseLocation string

var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Browse search results interactively (TUI)",
	Long:  "Runs an aggregate search and opens the results in a terminal browser. Without a query, pick one of the saved searches.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseLocation, "location", "l", "", "location to search in")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	location := browseLocation
	if query == "" {
		if len(cfg.Watch.Searches) == 0 {
			return errors.New("no query given and no saved searches in config")
		}
		picked, ok, err := browse.PickSearch(cfg.Watch.Searches)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		query, location = picked.Query, picked.Location
	}

	logger := silentLogger()
	if debug {
		logger = setupLogger(true)
	}

	e, err := buildEngine(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	limit := cfg.Search.DefaultLimit
	fetch := func(ctx context.Context, page int) (model.AggregateResult, error) {
		return e.orch.AggregateSearch(ctx, query, location, page, limit)
	}

	label := searchLabel(query, location)
	first, err := browse.RunLoader(label, fetch, 1)
	if errors.Is(err, browse.ErrCancelled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("searching %s: %w", label, err)
	}

	return browse.Run(label, fetch, first)
}
