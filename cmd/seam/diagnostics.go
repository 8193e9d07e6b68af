package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/ui"
	"github.com/spf13/cobra"
)

var cyclesCmd = &cobra.Command{
	Use:     "cycles [payload.json]",
	Short:   "List dependency cycles in the catalog",
	GroupID: "analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, _, err := loadPayload(ctx, args)
		if err != nil {
			return err
		}

		c := p.Catalog()
		cycles := engine.DetectCycles(c, engine.BuildIndex(c))
		if jsonOutput {
			if cycles == nil {
				cycles = [][]string{}
			}
			printJSON(cycles)
			return nil
		}
		if len(cycles) == 0 {
			fmt.Println("no cycles")
			return nil
		}
		for _, cycle := range cycles {
			fmt.Println(ui.RenderCycle(strings.Join(cycle, " -> ")))
		}
		return nil
	},
}

var orphansCmd = &cobra.Command{
	Use:     "orphans [payload.json]",
	Short:   "List providers whose capability nothing requires",
	GroupID: "analysis",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		p, _, err := loadPayload(ctx, args)
		if err != nil {
			return err
		}

		orphans := engine.FindOrphans(p.Catalog())
		if jsonOutput {
			if orphans == nil {
				orphans = []string{}
			}
			printJSON(orphans)
			return nil
		}
		if len(orphans) == 0 {
			fmt.Println("no orphans")
			return nil
		}
		for _, name := range orphans {
			fmt.Println(ui.RenderOrphan(name))
		}
		return nil
	},
}
