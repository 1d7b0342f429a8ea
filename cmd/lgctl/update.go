package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

var updateCmd = &cobra.Command{
	Use:   "update ID PAYLOAD",
	Short: "Replace an existing document's payload and commit in its own transaction",
	Args:  cobra.ExactArgs(2),
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

		if err := tx.Update(id, []byte(args[1])); err != nil {
			tx.Abort()
			return fmt.Errorf("update: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		fmt.Printf("✓ updated block %d\n", id)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("file", "", "Database file path (required)")
	updateCmd.MarkFlagRequired("file")
}
