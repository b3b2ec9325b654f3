package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"salonscout/internal/model"
	"salonscout/internal/pipeline"
)

var (
	targetCap    int
	dedupePolicy string
	dedupeScope  string
	regionFilter string
	anchors      []string
	keywords     []string
	sources      []string
	xlsxPath     string
	csvPath      string
	harvestTime  time.Duration
	requestRate  float64
	noCache      bool
	noRobots     bool
	persist      bool
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Accumulate salon listings up to the target cap",
	Long: `Harvest walks every configured district and keyword across the enabled
sources, offering each scraped candidate to the accumulator. Candidates
are normalized, invalid or duplicate ones are rejected, and the run
stops as soon as the target cap is reached.

Example:
  salonscout harvest
  salonscout harvest --cap 500 --xlsx salons.xlsx --csv salons.csv
  salonscout harvest --sources maps,directory --anchors 左營,鳳山
  salonscout harvest --dedupe-policy punctuationInsensitive --dedupe-scope perAnchor`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().IntVar(&targetCap, "cap", 0, "target record cap (default from config)")
	harvestCmd.Flags().StringVar(&dedupePolicy, "dedupe-policy", "", "dedup policy: exactNameOnly, nameAndUrl, punctuationInsensitive")
	harvestCmd.Flags().StringVar(&dedupeScope, "dedupe-scope", "", "dedup scope: global, perAnchor")
	harvestCmd.Flags().StringVar(&regionFilter, "region-filter", "", "region filter: off, require")
	harvestCmd.Flags().StringSliceVar(&anchors, "anchors", nil, "districts to harvest (default from config)")
	harvestCmd.Flags().StringSliceVar(&keywords, "keywords", nil, "search keywords (default from config)")
	harvestCmd.Flags().StringSliceVar(&sources, "sources", nil, "sources to use: search, directory, maps, social, places, generated (default all enabled)")
	harvestCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "output XLSX path")
	harvestCmd.Flags().StringVar(&csvPath, "csv", "", "output CSV path")
	harvestCmd.Flags().DurationVar(&harvestTime, "timeout", 2*time.Hour, "overall harvest timeout")
	harvestCmd.Flags().Float64Var(&requestRate, "rate", 0, "max requests per second per domain (default from config)")
	harvestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetches)")
	harvestCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	harvestCmd.Flags().BoolVar(&persist, "persist", false, "persist admitted records and seed dedup from earlier runs")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyHarvestFlags(cfg)

	if err := validateHarvestConfig(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), harvestTime)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.Output.Verbose)

	if verbose {
		fmt.Fprintf(os.Stderr, "Target cap:  %d\n", cfg.Harvest.TargetCap)
		fmt.Fprintf(os.Stderr, "Districts:   %v\n", cfg.Harvest.Anchors)
		fmt.Fprintf(os.Stderr, "Keywords:    %v\n", cfg.Harvest.Keywords)
		fmt.Fprintln(os.Stderr)
	}

	h, err := pipeline.NewHarvester(cfg, sources, logger)
	if err != nil {
		return fmt.Errorf("harvest setup: %w", err)
	}
	defer func() { _ = h.Close() }()

	summary, err := h.Run(ctx)
	if err != nil && summary == nil {
		return fmt.Errorf("harvest failed: %w", err)
	}
	// A canceled or timed-out run still exports what it accumulated.
	if err != nil {
		logger.Warn("harvest interrupted", "err", err, "collected", summary.Count)
	}

	if exportErr := h.Export(); exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}

	pipeline.RenderSummary(os.Stderr, summary)
	return nil
}

func applyHarvestFlags(cfg *model.Config) {
	if targetCap > 0 {
		cfg.Harvest.TargetCap = targetCap
	}
	if dedupePolicy != "" {
		cfg.Harvest.DedupePolicy = model.DedupePolicy(dedupePolicy)
	}
	if dedupeScope != "" {
		cfg.Harvest.DedupeScope = model.DedupeScope(dedupeScope)
	}
	if regionFilter != "" {
		cfg.Harvest.RegionFilter = model.RegionFilter(regionFilter)
	}
	if len(anchors) > 0 {
		cfg.Harvest.Anchors = anchors
	}
	if len(keywords) > 0 {
		cfg.Harvest.Keywords = keywords
	}
	if xlsxPath != "" {
		cfg.Output.XLSXPath = xlsxPath
	}
	if csvPath != "" {
		cfg.Output.CSVPath = csvPath
	}
	if requestRate > 0 {
		cfg.Harvest.RequestsPerSecond = requestRate
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if persist {
		cfg.Storage.Enabled = true
	}
}

func validateHarvestConfig(cfg *model.Config) error {
	switch cfg.Harvest.DedupePolicy {
	case model.PolicyExactNameOnly, model.PolicyNameAndURL, model.PolicyPunctInsensitive:
	default:
		return fmt.Errorf("unknown dedupe policy: %q", cfg.Harvest.DedupePolicy)
	}
	switch cfg.Harvest.DedupeScope {
	case model.ScopeGlobal, model.ScopePerAnchor:
	default:
		return fmt.Errorf("unknown dedupe scope: %q", cfg.Harvest.DedupeScope)
	}
	switch cfg.Harvest.RegionFilter {
	case model.RegionFilterOff, model.RegionFilterRequire:
	default:
		return fmt.Errorf("unknown region filter: %q", cfg.Harvest.RegionFilter)
	}
	if len(cfg.Harvest.Anchors) == 0 {
		return fmt.Errorf("no districts configured")
	}
	if len(cfg.Harvest.Keywords) == 0 {
		return fmt.Errorf("no keywords configured")
	}
	return nil
}
