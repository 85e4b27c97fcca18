// internal/cli/check.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/field-harvesters/harvest/internal/scrape"
	"github.com/field-harvesters/harvest/internal/ui"
)

var checkConfigPath string

// checkCmd validates a scrape config without touching the network.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a scrape config without fetching anything",
	Long: `Check loads a JSON scrape config, validates it, and compiles every
selector. It reports the first problem found, or prints a summary of
the crawl the config describes. No network requests are made.`,
	Example: `  harvest check --config quotes.json`,
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to JSON scrape config file (required)")
	_ = checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := scrape.LoadFile(checkConfigPath)
	if err != nil {
		return err
	}

	plan, err := cfg.Compile()
	if err != nil {
		return err
	}

	fmt.Printf("%s configuration is valid\n\n", ui.Success("✓"))
	fmt.Printf("%s  %s\n", ui.Bold("Start URL:"), plan.StartURL)
	fmt.Printf("%s  %s\n", ui.Bold("Items:"), cfg.ItemSelector)

	fmt.Printf("%s\n", ui.Bold("Fields:"))
	for _, f := range plan.Fields {
		spec := cfg.Fields[f.Name]
		detail := "text"
		if spec.Attribute != "" {
			detail = "attribute " + spec.Attribute
		}
		if spec.Multiple {
			detail += ", multiple"
		}
		fmt.Printf("  %-12s %s (%s)\n", f.Name, spec.Selector, ui.Info(detail))
	}

	if plan.Next == nil {
		fmt.Printf("%s  single page\n", ui.Bold("Pagination:"))
	} else if plan.MaxPages > 0 {
		fmt.Printf("%s  %s, up to %d pages\n", ui.Bold("Pagination:"), cfg.Pagination.NextPageSelector, plan.MaxPages)
	} else {
		fmt.Printf("%s  %s, no page bound\n", ui.Bold("Pagination:"), cfg.Pagination.NextPageSelector)
	}

	if plan.Delay > 0 {
		fmt.Printf("%s  %s between pages\n", ui.Bold("Delay:"), plan.Delay)
	}

	return nil
}
