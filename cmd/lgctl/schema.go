package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
	"github.com/hyperpolymath/lithoglyph/internal/engine/introspect"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the proof types registered with the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		fmt.Print(introspect.Schema(db.Verifiers()))
		return nil
	},
}

func init() {
	schemaCmd.Flags().String("file", "", "Database file path (required)")
	schemaCmd.MarkFlagRequired("file")
}
