package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/lithoglyph/internal/engine"
	"github.com/hyperpolymath/lithoglyph/internal/engine/reader"
)

var renderCmd = &cobra.Command{
	Use:   "render ID",
	Short: "Render a single block's header and payload for inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		hexOut, _ := cmd.Flags().GetBool("hex")
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid block id %q: %w", args[0], err)
		}

		db, err := engine.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		text, err := db.Reader().RenderBlock(id, reader.RenderOpts{Hex: hexOut})
		if err != nil {
			return fmt.Errorf("render block %d: %w", id, err)
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	renderCmd.Flags().String("file", "", "Database file path (required)")
	renderCmd.Flags().Bool("hex", false, "Render the payload as hex instead of raw text")
	renderCmd.MarkFlagRequired("file")
}
