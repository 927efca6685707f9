package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph-go/internal/blast"
	"github.com/memograph/memograph-go/internal/depgraph"
)

var highImpactMinScore float64

var highImpactCmd = &cobra.Command{
	Use:   "high-impact",
	Short: "List the files with the largest cached blast scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		engine := blast.NewEngine(store, depgraph.NewJSONFileBuilder(""), ".", logger)
		summaries := engine.GetHighImpactFiles(cmd.Context(), cfg.Project, highImpactMinScore)
		if len(summaries) == 0 {
			fmt.Println("No files at or above the score threshold")
			return nil
		}

		for _, s := range summaries {
			fmt.Printf("%6.1f  %-50s  %d affected, depth %d\n",
				s.BlastScore, s.FilePath, s.TotalAffected, s.MaxDepth)
		}
		return nil
	},
}

func init() {
	highImpactCmd.Flags().Float64Var(&highImpactMinScore, "min-score", 50, "minimum blast score")
}
