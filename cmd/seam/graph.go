package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/ui"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:     "graph [payload.json]",
	Short:   "Render the wiring diagram for a payload",
	GroupID: "analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		selected, _ := cmd.Flags().GetString("selected")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, project, err := loadPayload(ctx, args)
		if err != nil {
			return err
		}

		// Width precedence: flag, project file, terminal.
		if width == 0 {
			width = project.Render.Width
		}
		if width == 0 {
			width = ui.TerminalWidth(80)
		}

		c := p.Catalog()
		l := engine.Layout(c, engine.BuildIndex(c))
		if jsonOutput {
			printJSON(l)
			return nil
		}
		for _, line := range engine.Render(l, width, selected) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().Int("width", 0, "diagram width (default: terminal width)")
	graphCmd.Flags().String("selected", "", "component to highlight")
}
