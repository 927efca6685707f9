package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph-go/internal/impact"
)

var impactFiles []string

var impactCmd = &cobra.Command{
	Use:   "impact [file] [symbol]",
	Short: "Analyze the impact of changing a file or symbol",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		analyzer := impact.NewAnalyzer(store, logger)
		analyzer.SetMaxDepth(cfg.Analysis.MaxCallDepth)

		if len(impactFiles) > 0 {
			results := analyzer.AnalyzeMultiFileImpact(cmd.Context(), cfg.Project, impactFiles)
			for _, result := range results {
				fmt.Print(impact.FormatImpactSummary(result))
				fmt.Println()
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a file argument or --files is required")
		}
		var symbol *string
		if len(args) > 1 {
			symbol = &args[1]
		}

		result := analyzer.AnalyzeImpact(cmd.Context(), cfg.Project, args[0], symbol)
		fmt.Print(impact.FormatImpactSummary(result))
		return nil
	},
}

func init() {
	impactCmd.Flags().StringSliceVar(&impactFiles, "files", nil, "analyze multiple files, riskiest first")
}
