package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/engine"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve <capability>...",
	Short:   "Resolve capabilities to a dependency-ordered component set",
	GroupID: "analysis",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payloadFile, _ := cmd.Flags().GetString("payload")
		flagOverrides, _ := cmd.Flags().GetStringToString("override")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var fileArgs []string
		if payloadFile != "" {
			fileArgs = []string{payloadFile}
		}
		p, project, err := loadPayload(ctx, fileArgs)
		if err != nil {
			return err
		}

		ix := engine.BuildIndex(p.Catalog())
		result := engine.Resolve(args, ix, mergeOverrides(project, flagOverrides))
		if jsonOutput {
			printJSON(result)
			return nil
		}
		printResolveResult(result)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringP("payload", "p", "", "payload file (default: run the configured scanner)")
	resolveCmd.Flags().StringToString("override", nil, "capability=component provider overrides")
}
