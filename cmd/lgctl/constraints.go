package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
	"github.com/hyperpolymath/lithoglyph/internal/engine/introspect"
)

var constraintsCmd = &cobra.Command{
	Use:   "constraints",
	Short: "Describe the invariant each registered proof type enforces",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		fmt.Print(introspect.Constraints(db.Verifiers()))
		return nil
	},
}

func init() {
	constraintsCmd.Flags().String("file", "", "Database file path (required)")
	constraintsCmd.MarkFlagRequired("file")
}
