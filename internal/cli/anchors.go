package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"salonscout/internal/pipeline"
)

var (
	anchorConcurrency int
	anchorTimeout     time.Duration
)

// anchorsCmd represents the anchors command
var anchorsCmd = &cobra.Command{
	Use:   "anchors <file>",
	Short: "Harvest districts listed in a file, optionally in parallel",
	Long: `Anchors runs one harvest over the districts listed in a file (one per
line, blank lines and # comments ignored) instead of the configured
district list. Districts can be processed in parallel; the accumulator
serializes admissions so the cap is never overshot.

Example:
  salonscout anchors districts.txt
  salonscout anchors districts.txt --concurrency 4 --cap 500`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchors,
}

func init() {
	rootCmd.AddCommand(anchorsCmd)

	anchorsCmd.Flags().IntVar(&anchorConcurrency, "concurrency", 1, "number of districts harvested in parallel")
	anchorsCmd.Flags().DurationVar(&anchorTimeout, "timeout", 4*time.Hour, "total timeout for the batch")

	anchorsCmd.Flags().IntVar(&targetCap, "cap", 0, "target record cap (default from config)")
	anchorsCmd.Flags().StringSliceVar(&keywords, "keywords", nil, "search keywords (default from config)")
	anchorsCmd.Flags().StringSliceVar(&sources, "sources", nil, "sources to use (default all enabled)")
	anchorsCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "output XLSX path")
	anchorsCmd.Flags().StringVar(&csvPath, "csv", "", "output CSV path")
	anchorsCmd.Flags().BoolVar(&persist, "persist", false, "persist admitted records and seed dedup from earlier runs")
}

func runAnchors(cmd *cobra.Command, args []string) error {
	districts, err := readAnchorFile(args[0])
	if err != nil {
		return err
	}
	if len(districts) == 0 {
		return fmt.Errorf("no districts in %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyHarvestFlags(cfg)
	cfg.Harvest.Anchors = districts
	cfg.Concurrency.AnchorWorkers = anchorConcurrency

	if err := validateHarvestConfig(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), anchorTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Salonscout District Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:  %s\n", args[0])
	fmt.Fprintf(os.Stderr, "  Districts:   %d\n", len(districts))
	fmt.Fprintf(os.Stderr, "  Workers:     %d\n", anchorConcurrency)
	fmt.Fprintf(os.Stderr, "  Target cap:  %d\n", cfg.Harvest.TargetCap)
	fmt.Fprintf(os.Stderr, "\n")

	logger := newLogger(cfg.Output.Verbose)

	h, err := pipeline.NewHarvester(cfg, sources, logger)
	if err != nil {
		return fmt.Errorf("harvest setup: %w", err)
	}
	defer func() { _ = h.Close() }()

	summary, err := h.Run(ctx)
	if err != nil && summary == nil {
		return fmt.Errorf("harvest failed: %w", err)
	}
	if err != nil {
		logger.Warn("batch interrupted", "err", err, "collected", summary.Count)
	}

	if exportErr := h.Export(); exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}

	pipeline.RenderSummary(os.Stderr, summary)
	return nil
}

// readAnchorFile parses a district list: one per line, trimmed, with
// blank lines and #-comments skipped.
func readAnchorFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open district file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read district file: %w", err)
	}
	return out, nil
}
