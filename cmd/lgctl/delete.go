package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an existing document and commit in its own transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid block id %q: %w", args[0], err)
		}

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		tx, err := db.Begin(engine.ReadWrite)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if err := tx.Delete(id); err != nil {
			tx.Abort()
			return fmt.Errorf("delete: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		fmt.Printf("✓ deleted block %d\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().String("file", "", "Database file path (required)")
	deleteCmd.MarkFlagRequired("file")
}
