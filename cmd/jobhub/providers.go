package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/adapter"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List all configured providers",
	Long:  "Reads the config and prints a table of every configured provider and whether it takes part in searches.",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Construction failures are reported in the table, not the log.
	reg := adapter.BuildRegistry(cfg, newHTTPClient(), silentLogger())
	registered := make(map[string]bool, len(reg.Entries()))
	for _, e := range reg.Entries() {
		registered[e.Name] = true
	}

	fmt.Printf("%-25s %-12s %s\n", "Provider", "Type", "Status")
	fmt.Println(strings.Repeat("─", 55))

	active, inactive := 0, 0
	for _, pc := range cfg.Providers {
		status := "active"
		switch {
		case registered[pc.Name]:
			active++
		case !pc.Active():
			status = "disabled"
			inactive++
		default:
			status = "invalid config"
			if _, err := adapter.NewProvider(pc, nil); err != nil {
				status = "invalid config: " + err.Error()
			}
			inactive++
		}
		fmt.Printf("%-25s %-12s %s\n", pc.Name, pc.Type, status)
	}

	fmt.Printf("\nTotal: %d providers (%d active, %d inactive)\n", len(cfg.Providers), active, inactive)
	return nil
}
