package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/paradox/internal/metrics"
	"github.com/ppiankov/paradox/internal/pipeline"
	"github.com/ppiankov/paradox/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchRate    float64
	// noFooter, metricsOut and the guardrail flags are defined in resolve.go
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <batch.yaml>",
	Short: "Resolve many requests from a file in parallel",
	Long: `Batch resolves every request in a YAML batch document concurrently:
- Read requests from the "requests" list of the input file
- Resolve them in parallel with a configurable worker count
- Optionally throttle per request source
- Write a JSON and Markdown report per request

Example:
  paradox batch requests.yaml
  paradox batch requests.yaml --concurrency 8 --output-dir ./reports
  paradox batch requests.yaml --rate 5 --metrics-out paradox.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./paradox-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "requests per second per source (default: rate_limiting.requests_per_second)")
	batchCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus textfile metrics to this path")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	batchCmd.Flags().BoolVar(&guardEnabled, "guard", false, "enable guardrails")
	batchCmd.Flags().StringSliceVar(&pinIDs, "pin", nil, "anchor ids pinned by guardrails")
	batchCmd.Flags().IntVar(&maxAnchors, "max-anchors", 0, "guardrail cap on active anchors (default: guardrails.max_active_anchors)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("rate") {
		cfg.RateLimiting.RequestsPerSecond = batchRate
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	applyGuardFlags(cmd, cfg)

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Paradox Batch Resolution\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		fmt.Fprintf(os.Stderr, "  Rate:         %.2f/s per source\n", cfg.RateLimiting.RequestsPerSecond)
	}
	if n := len(cfg.RateLimiting.Sources); n > 0 {
		fmt.Fprintf(os.Stderr, "  Source rates: %d configured\n", n)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	collector := metrics.New()
	p, err := pipeline.NewPipeline(cfg, catalog, collector, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting)

	fmt.Fprintf(os.Stderr, "⚙️  Resolving requests with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	renderer := p.Renderer()

	for _, result := range results {
		label := result.RequestID
		if label == "" {
			label = fmt.Sprintf("#%d", result.Index+1)
		}

		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Report.RequestID))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d anchors, %d propositions)\n", result.Report.RequestID, len(result.Report.AnchorsUsed), len(result.Report.Truths))
	}

	if metricsOut != "" {
		if err := collector.WriteTextfile(metricsOut); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d requests\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		s = "request"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
