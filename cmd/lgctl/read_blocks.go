package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
	"github.com/hyperpolymath/lithoglyph/internal/engine/format"
)

var readBlocksCmd = &cobra.Command{
	Use:   "read-blocks",
	Short: "Scan every live document block in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		blocks, err := db.Reader().ReadBlocks(format.TypeDocument)
		if err != nil {
			return fmt.Errorf("read blocks: %w", err)
		}

		for _, b := range blocks {
			if b.Err != nil {
				fmt.Printf("block %d: corrupt: %v\n", b.ID, b.Err)
				continue
			}
			fmt.Printf("block %d: %s\n", b.ID, string(b.Payload))
		}
		fmt.Printf("✓ scanned %d document blocks\n", len(blocks))
		return nil
	},
}

func init() {
	readBlocksCmd.Flags().String("file", "", "Database file path (required)")
	readBlocksCmd.MarkFlagRequired("file")
}
