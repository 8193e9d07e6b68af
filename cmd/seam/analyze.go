package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/client"
	"github.com/loomworks/seam/internal/engine"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [payload.json]",
	Short:   "Run a full analysis pass over a payload",
	Long:    "Runs the engine over a payload read from the given file (or stdin for \"-\"), or produced by the scanner configured in .seam.toml. Prints the diagram, diagnostics, and the composition plan. With --submit the result is persisted on the server.",
	GroupID: "analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		selected, _ := cmd.Flags().GetString("selected")
		submit, _ := cmd.Flags().GetBool("submit")
		actor, _ := cmd.Flags().GetString("actor")
		flagOverrides, _ := cmd.Flags().GetStringToString("override")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, project, err := loadPayload(ctx, args)
		if err != nil {
			return err
		}

		if width == 0 {
			width = project.Render.Width
		}
		overrides := mergeOverrides(project, flagOverrides)

		if submit {
			c := newClient()
			defer c.Close()
			resp, err := c.SubmitAnalysis(ctx, &client.SubmitAnalysisRequest{
				Components:  p.Components,
				Missing:     p.Missing,
				Actor:       actor,
				Overrides:   overrides,
				RenderWidth: width,
				Selected:    selected,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(resp)
				return nil
			}
			printAnalysisTable(resp.Analysis)
			if len(resp.Fixes) > 0 {
				fmt.Println()
				printFixListTable(resp.Fixes)
			}
			return nil
		}

		snap := engine.Analyze(p, engine.Options{
			Overrides:   overrides,
			RenderWidth: width,
			Selected:    selected,
		})
		if jsonOutput {
			printJSON(snap)
			return nil
		}
		printSnapshot(snap)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("width", 0, "diagram width (default from .seam.toml or 80)")
	analyzeCmd.Flags().String("selected", "", "component to highlight in the diagram")
	analyzeCmd.Flags().StringToString("override", nil, "capability=component provider overrides")
	analyzeCmd.Flags().Bool("submit", false, "submit to the server and persist the snapshot")
	analyzeCmd.Flags().String("actor", defaultActor(), "actor recorded with submitted analyses")
}
