package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph-go/internal/blast"
	"github.com/memograph/memograph-go/internal/depgraph"
)

var (
	blastRefresh bool
	blastAll     bool
	blastPath    string
	blastGraph   string
)

var blastCmd = &cobra.Command{
	Use:   "blast [file]",
	Short: "Show the blast radius of a file, or recompute all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		builder := depgraph.NewJSONFileBuilder(blastGraph)
		engine := blast.NewEngine(store, builder, blastPath, logger)
		engine.SetLimits(cfg.Analysis.MaxBlastDepth, cfg.Analysis.MaxFiles, cfg.Analysis.OnDemandMaxFiles)

		if blastAll {
			result, err := engine.ComputeBlastRadius(cmd.Context(), cfg.Project)
			if err != nil {
				return err
			}
			fmt.Printf("Processed %d files (%d high impact, %d errors)\n",
				result.Processed, result.HighImpact, result.Errors)
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a file argument or --all is required")
		}

		result, err := engine.GetBlastRadius(cmd.Context(), cfg.Project, args[0], blastRefresh)
		if err != nil {
			return err
		}

		fmt.Printf("Blast radius: %s — %s (%.0f)\n", result.FilePath, result.RiskLevel, result.BlastScore)
		fmt.Printf("Affected: %d total (%d direct, %d transitive), max depth %d\n",
			result.TotalAffected, len(result.DirectDependents), len(result.TransitiveDependents), result.MaxDepth)
		if len(result.AffectedTests) > 0 {
			fmt.Printf("Tests: %s\n", strings.Join(result.AffectedTests, ", "))
		}
		if len(result.AffectedRoutes) > 0 {
			fmt.Printf("Routes: %s\n", strings.Join(result.AffectedRoutes, ", "))
		}
		return nil
	},
}

func init() {
	blastCmd.Flags().BoolVar(&blastRefresh, "refresh", false, "bypass the cached summary and recompute")
	blastCmd.Flags().BoolVar(&blastAll, "all", false, "recompute blast radius for every file in the project")
	blastCmd.Flags().StringVar(&blastPath, "path", ".", "project root")
	blastCmd.Flags().StringVar(&blastGraph, "graph", "", "dependency graph export (default: <path>/"+depgraph.DefaultGraphFile+")")
}
