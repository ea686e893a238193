package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/paradox/internal/bridge"
	"github.com/spf13/cobra"
)

var (
	blockItems   int
	rankPrefer   []string
	rankShowZero bool
)

// anchorsCmd represents the anchors command
var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "Inspect the anchor catalog",
	Long: `Inspect the anchor catalog in use (the built-in one unless --anchors or
anchors.file names a YAML catalog).`,
}

var anchorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog anchors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("%-8s %-36s %-8s %s\n", "ID", "NAME", "PRIORITY", "FRAMES")
		for _, a := range catalog.Anchors() {
			fmt.Printf("%-8s %-36s %-8.2f %s\n", a.ID, truncate(a.Name, 36), a.Priority, strings.Join(a.FramesOn, ","))
		}
		fmt.Fprintf(os.Stderr, "\n%d anchors\n", catalog.Len())
		return nil
	},
}

var anchorsBlockCmd = &cobra.Command{
	Use:   "block <id>...",
	Short: "Render the anchor block for the given ids",
	Long: `Render the ACTIVE ANCHORS block for the given ids, in order.

Example:
  paradox anchors block A04 A18 A09
  paradox anchors block A04 A18 A09 --max-items 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		maxItems := cfg.Selection.MaxBlockItems
		if cmd.Flags().Changed("max-items") {
			maxItems = blockItems
		}

		block, err := bridge.WeaveAnchorBlock(args, catalog, maxItems)
		if err != nil {
			return err
		}
		fmt.Println(block)
		return nil
	},
}

var anchorsRankCmd = &cobra.Command{
	Use:   "rank <text>",
	Short: "Show how each anchor scores against a text",
	Long: `Score every anchor against the text: priority, plus 0.2 per distinct
hard trigger found as a whole word, plus 0.4 when preferred.

Example:
  paradox anchors rank "This is about Zero-Day and legal artifacts." --prefer A04,A18`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		ranking := bridge.NewSelector(catalog).Rank(args[0], rankPrefer)

		fmt.Printf("%-4s %-8s %-8s %-5s %-6s %s\n", "#", "ID", "PRIORITY", "HITS", "BOOST", "SCORE")
		for i, s := range ranking {
			if !rankShowZero && s.Hits == 0 && s.Boost == 0 {
				continue
			}
			fmt.Printf("%-4d %-8s %-8.2f %-5d %-6.2f %.2f\n", i+1, s.AnchorID, s.Priority, s.Hits, s.Boost, s.Score)
		}
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(anchorsCmd)
	anchorsCmd.AddCommand(anchorsListCmd)
	anchorsCmd.AddCommand(anchorsBlockCmd)
	anchorsCmd.AddCommand(anchorsRankCmd)

	anchorsBlockCmd.Flags().IntVar(&blockItems, "max-items", 0, "maximum bullets (default: selection.max_block_items)")
	anchorsRankCmd.Flags().StringSliceVar(&rankPrefer, "prefer", nil, "preferred anchor ids")
	anchorsRankCmd.Flags().BoolVar(&rankShowZero, "all", false, "include anchors with no hits and no boost")
}
