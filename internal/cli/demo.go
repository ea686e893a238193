package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/model"
	"github.com/ppiankov/paradox/internal/pipeline"
	"github.com/spf13/cobra"
)

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Resolve a built-in example against the built-in catalog",
	Long: `Demo resolves "Requiem is Macie" with mythic support and legal
counter-evidence. Both frames end up active, so the proposition resolves to
both/contradictory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		// the demo ids only exist in the built-in catalog
		catalog, err := anchor.Default()
		if err != nil {
			return err
		}
		p, err := pipeline.NewPipeline(cfg, catalog, nil, logger)
		if err != nil {
			return err
		}

		report, err := p.Resolve(context.Background(), demoRequest())
		if err != nil {
			return err
		}

		fmt.Println(report.AnchorBlock)
		fmt.Println()
		for _, t := range report.Truths {
			fmt.Printf("%s: %s\n", t.PropositionID, t.Label)
		}
		return nil
	},
}

func demoRequest() model.Request {
	k := 5
	return model.Request{
		ID:        "demo",
		Text:      "This is about Zero-Day and legal artifacts.",
		Preferred: []string{"A04", "A18"},
		K:         &k,
		Propositions: []model.Proposition{{
			ID:   "P:RequiemIsMacie",
			Text: "Requiem is Macie",
			Evidence: []model.EvidenceInput{
				{Frame: "mythic", Weight: 0.8, Sign: +1},
				{Frame: "legal", Weight: 0.7, Sign: -1},
			},
		}},
	}
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
