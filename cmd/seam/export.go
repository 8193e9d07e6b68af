package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/config"
	"github.com/loomworks/seam/internal/export"
	"github.com/loomworks/seam/internal/store/postgres"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the analysis history as JSONL",
	Long:    "Connects directly to the database named by SEAM_DATABASE_URL and writes the full analysis history, one JSON record per line, to stdout or the given file.",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("output")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := export.ExportJSONL(ctx, store, out); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
}
