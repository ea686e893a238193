package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/paradox/internal/metrics"
	"github.com/ppiankov/paradox/internal/model"
	"github.com/ppiankov/paradox/internal/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	outJSON      string
	outMD        string
	metricsOut   string
	timeout      time.Duration
	noFooter     bool
	quiet        bool
	selectK      int
	preferIDs    []string
	requestText  string
	guardEnabled bool
	pinIDs       []string
	maxAnchors   int
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [request.yaml]",
	Short: "Resolve one request and generate a report",
	Long: `Resolve reads one request (text, preferred anchors and propositions with
evidence) and:
- Ranks anchors against the text
- Activates the top-k anchors and their frames
- Optionally applies guardrails (cap and pins)
- Stabilizes every proposition to a four-valued truth
- Renders the active anchor block

Example:
  paradox resolve request.yaml
  paradox resolve request.yaml --k 2 --prefer A18 --json report.json --md report.md
  paradox resolve request.yaml --text "Zero-Day and legal artifacts" --guard --pin A01`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	resolveCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	resolveCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus textfile metrics to this path")
	resolveCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "resolution timeout")
	resolveCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	resolveCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the terminal summary")

	resolveCmd.Flags().IntVar(&selectK, "k", 0, "anchors to activate, 0 for none (default: request k, then selection.k)")
	resolveCmd.Flags().StringSliceVar(&preferIDs, "prefer", nil, "preferred anchor ids (replaces the request's list)")
	resolveCmd.Flags().StringVar(&requestText, "text", "", "text to rank anchors against (replaces the request's text)")

	resolveCmd.Flags().BoolVar(&guardEnabled, "guard", false, "enable guardrails")
	resolveCmd.Flags().StringSliceVar(&pinIDs, "pin", nil, "anchor ids pinned by guardrails")
	resolveCmd.Flags().IntVar(&maxAnchors, "max-anchors", 0, "guardrail cap on active anchors (default: guardrails.max_active_anchors)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var req model.Request
	if len(args) == 1 {
		r, err := readRequestFile(args[0])
		if err != nil {
			return err
		}
		req = *r
	}

	flags := cmd.Flags()
	if flags.Changed("text") {
		req.Text = requestText
	}
	if flags.Changed("prefer") {
		req.Preferred = preferIDs
	}
	if flags.Changed("k") {
		k := selectK
		req.K = &k
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	applyGuardFlags(cmd, cfg)

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	collector := metrics.New()
	p, err := pipeline.NewPipeline(cfg, catalog, collector, logger)
	if err != nil {
		return err
	}
	p.Renderer().SetOutput(summaryWriter(cmd, quiet))

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Resolving %d propositions against %d anchors...\n", len(req.Propositions), catalog.Len())
	}

	report, err := p.Resolve(ctx, req)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if metricsOut != "" {
		if err := collector.WriteTextfile(metricsOut); err != nil {
			return err
		}
	}

	return nil
}

// summaryWriter is where the terminal summary goes
func summaryWriter(cmd *cobra.Command, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// applyGuardFlags layers the guardrail flags over cfg
func applyGuardFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("guard") {
		cfg.Guardrails.Enabled = guardEnabled
	}
	if flags.Changed("pin") {
		cfg.Guardrails.PinIfMissing = pinIDs
	}
	if flags.Changed("max-anchors") {
		cfg.Guardrails.MaxActiveAnchors = maxAnchors
	}
}

// readRequestFile decodes a single request document
func readRequestFile(path string) (*model.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open request: %w", err)
	}
	defer func() { _ = f.Close() }()

	req, err := readRequest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

func readRequest(r io.Reader) (*model.Request, error) {
	var req model.Request
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &req, nil
		}
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}
