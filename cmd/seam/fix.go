package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/plan"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:     "fix [payload.json]",
	Short:   "Emit wiring fixes for the code-editing collaborator",
	Long:    "Computes one wiring fix per diagnostic site and prints them as JSON on stdout. The output is the contract consumed by the code-editing collaborator; seam never edits source itself.",
	GroupID: "analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flagOverrides, _ := cmd.Flags().GetStringToString("override")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, project, err := loadPayload(ctx, args)
		if err != nil {
			return err
		}
		if len(p.Missing) == 0 {
			return fmt.Errorf("payload has no missing-capability requests, nothing to fix")
		}

		snap := engine.Analyze(p, engine.Options{
			Overrides: mergeOverrides(project, flagOverrides),
		})

		fixes := snap.Fixes
		if fixes == nil {
			fixes = []*plan.WiringFix{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fixes)
	},
}

func init() {
	fixCmd.Flags().StringToString("override", nil, "capability=component provider overrides")
}
