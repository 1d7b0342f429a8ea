package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

var insertCmd = &cobra.Command{
	Use:   "insert PAYLOAD",
	Short: "Insert a new document and commit it in its own transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		tx, err := db.Begin(engine.ReadWrite)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		id, err := tx.Insert([]byte(args[0]))
		if err != nil {
			tx.Abort()
			return fmt.Errorf("insert: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		fmt.Printf("✓ inserted block %d\n", id)
		return nil
	},
}

func init() {
	insertCmd.Flags().String("file", "", "Database file path (required)")
	insertCmd.MarkFlagRequired("file")
}
