package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify PROOF_TYPE PAYLOAD_FILE",
	Short: "Check a payload file against a registered proof type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		proofType := args[0]

		payload, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read payload file: %w", err)
		}

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.Verifiers().Verify(proofType, payload); err != nil {
			return fmt.Errorf("verify %s: %w", proofType, err)
		}

		fmt.Printf("✓ %s holds\n", proofType)
		return nil
	},
}

func init() {
	verifyCmd.Flags().String("file", "", "Database file path (required)")
	verifyCmd.MarkFlagRequired("file")
}
