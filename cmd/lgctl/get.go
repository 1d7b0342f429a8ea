package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
)

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Read a document's current payload",
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

		tx, err := db.Begin(engine.ReadOnly)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Commit()

		payload, err := tx.Get(id)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}

		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	getCmd.Flags().String("file", "", "Database file path (required)")
	getCmd.MarkFlagRequired("file")
}
