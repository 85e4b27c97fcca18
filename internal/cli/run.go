// internal/cli/run.go
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/field-harvesters/harvest/internal/engine"
	"github.com/field-harvesters/harvest/internal/ratelimit"
	"github.com/field-harvesters/harvest/internal/runctx"
	"github.com/field-harvesters/harvest/internal/scrape"
	"github.com/field-harvesters/harvest/internal/ui"
	"github.com/field-harvesters/harvest/internal/utils/output"
)

var (
	configPath string
	outputBase string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl a site and export the extracted records",
	Long: `Run loads a JSON scrape config, crawls the described site page by
page, and writes the full record set to <output-base>.json and
<output-base>.csv. A fetch failure aborts the run and writes nothing:
the export is either complete or absent.`,
	Example: `  # Scrape with a config file, write output/data.json and output/data.csv
  harvest run --config quotes.json

  # Choose the output base path
  harvest run --config quotes.json --output-base exports/quotes

  # Verbose logging and in-memory page caching
  harvest run -c quotes.json -v --cache`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to JSON scrape config file (required)")
	runCmd.Flags().StringVarP(&outputBase, "output-base", "o", "output/data", "Base path for output files (without extension)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := scrape.LoadFile(configPath)
	if err != nil {
		return err
	}

	plan, err := cfg.Compile()
	if err != nil {
		return err
	}

	appCtx := GetApp()
	ctx := runctx.WithRunContext(cmd.Context())
	rc := runctx.FromContext(ctx)

	log.Info().
		Str("run_id", rc.RunID).
		Str("start_url", plan.StartURL).
		Int("fields", len(plan.Fields)).
		Msg("Starting run")

	driver := engine.NewDriver(appCtx.Fetcher, ratelimit.NewIntervalPacer(plan.Delay))

	if !appCtx.Config.JSONLog {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("fetching"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
		)
		driver.OnPage(func(page, records int) {
			_ = bar.Add(1)
			bar.Describe(fmt.Sprintf("page %d (%d records)", page, records))
		})
		defer func() { _ = bar.Finish() }()
	}

	results, err := driver.Run(ctx, plan)
	if err != nil {
		return runctx.NewRunError(ctx, err)
	}

	jsonPath := outputBase + ".json"
	csvPath := outputBase + ".csv"

	if err := output.SaveJSON(results, jsonPath); err != nil {
		return runctx.NewRunError(ctx, fmt.Errorf("write JSON export: %w", err))
	}
	if err := output.SaveCSV(results, csvPath); err != nil {
		return runctx.NewRunError(ctx, fmt.Errorf("write CSV export: %w", err))
	}

	elapsed := time.Since(rc.StartTime).Round(time.Millisecond)
	fmt.Printf("%s %d records in %s\n", ui.Success("✓"), results.Len(), elapsed)
	fmt.Printf("%s Saved %s\n", ui.Success("✓"), jsonPath)
	fmt.Printf("%s Saved %s\n", ui.Success("✓"), csvPath)
	return nil
}
