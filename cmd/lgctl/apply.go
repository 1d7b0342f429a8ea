package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

// manifestOp is one staged operation in an apply manifest.
type manifestOp struct {
	Kind    string `yaml:"kind"`
	ID      uint64 `yaml:"id,omitempty"`
	Payload string `yaml:"payload,omitempty"`
}

// manifest is the YAML document applyCmd accepts: a batch of Insert,
// Update, and Delete operations committed together as a single
// transaction.
type manifest struct {
	Operations []manifestOp `yaml:"operations"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a batch of operations from a manifest file as a single transaction",
	Long: `Apply commits every operation listed in a YAML manifest as one
write transaction: if any staged operation is invalid the whole batch is
aborted and nothing is committed.

Example manifest:

  operations:
    - kind: insert
      payload: '{"sku":"A1"}'
    - kind: update
      id: 5
      payload: '{"sku":"A2"}'
    - kind: delete
      id: 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		manifestPath, _ := cmd.Flags().GetString("manifest")

		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
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

		for i, op := range m.Operations {
			switch op.Kind {
			case "insert":
				id, err := tx.Insert([]byte(op.Payload))
				if err != nil {
					tx.Abort()
					return fmt.Errorf("operation %d (insert): %w", i, err)
				}
				fmt.Printf("✓ inserted block %d\n", id)
			case "update":
				if err := tx.Update(op.ID, []byte(op.Payload)); err != nil {
					tx.Abort()
					return fmt.Errorf("operation %d (update %d): %w", i, op.ID, err)
				}
				fmt.Printf("✓ updated block %d\n", op.ID)
			case "delete":
				if err := tx.Delete(op.ID); err != nil {
					tx.Abort()
					return fmt.Errorf("operation %d (delete %d): %w", i, op.ID, err)
				}
				fmt.Printf("✓ deleted block %d\n", op.ID)
			default:
				tx.Abort()
				return fmt.Errorf("operation %d: unknown kind %q", i, op.Kind)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		fmt.Printf("✓ applied %d operations\n", len(m.Operations))
		return nil
	},
}

func init() {
	applyCmd.Flags().String("file", "", "Database file path (required)")
	applyCmd.Flags().StringP("manifest", "f", "", "Manifest file path (required)")
	applyCmd.MarkFlagRequired("file")
	applyCmd.MarkFlagRequired("manifest")
}
