package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph-go/internal/testmap"
)

var mapTestsCmd = &cobra.Command{
	Use:   "map-tests [root]",
	Short: "Rebuild the test-source map for a project tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		mapper := testmap.NewMapper(store, logger)
		result, err := mapper.BuildAndPersist(cmd.Context(), cfg.Project, root, nil)
		if err != nil {
			return err
		}

		fmt.Printf("Mapped %d test files (%d mappings)\n", result.Tests, result.Mappings)
		return nil
	},
}
