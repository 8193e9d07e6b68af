package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/loomworks/seam/internal/client"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:     "snapshots",
	Short:   "Work with analyses stored on the server",
	GroupID: "server",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("actor")
		since, _ := cmd.Flags().GetString("since")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		c := newClient()
		defer c.Close()

		resp, err := c.ListAnalyses(context.Background(), &client.ListAnalysesRequest{
			Actor:  actor,
			Since:  since,
			Sort:   sort,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		printAnalysisListTable(resp.Analyses, resp.Total)
		return nil
	},
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")

		c := newClient()
		defer c.Close()

		analysis, err := c.GetAnalysis(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput || full {
			printJSON(analysis)
			return nil
		}
		analysis.Snapshot = nil // metadata only; use --full for the snapshot
		printAnalysisTable(analysis)
		return nil
	},
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored analysis and its fixes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		defer c.Close()

		if err := c.DeleteAnalysis(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var snapshotsRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Render the diagram of a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		selected, _ := cmd.Flags().GetString("selected")

		c := newClient()
		defer c.Close()

		diagram, err := c.RenderAnalysis(context.Background(), args[0], width, selected)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(diagram)
			return nil
		}
		for _, line := range diagram {
			fmt.Println(line)
		}
		return nil
	},
}

var snapshotsFixesCmd = &cobra.Command{
	Use:   "fixes <id>",
	Short: "List the wiring fixes recorded for an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		defer c.Close()

		fixes, err := c.ListFixes(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(fixes)
			return nil
		}
		printFixListTable(fixes)
		return nil
	},
}

var snapshotsResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Re-resolve a stored analysis, typically with different overrides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requested, _ := cmd.Flags().GetStringSlice("capability")
		overrides, _ := cmd.Flags().GetStringToString("override")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		c := newClient()
		defer c.Close()

		result, err := c.Reresolve(ctx, args[0], &client.ReresolveRequest{
			Requested: requested,
			Overrides: overrides,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(result)
			return nil
		}
		printResolveResult(result)
		return nil
	},
}

var snapshotsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals over the stored history",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		defer c.Close()

		stats, err := c.GetStats(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(stats)
			return nil
		}
		fmt.Printf("Analyses:  %d\n", stats.Analyses)
		fmt.Printf("Fixes:     %d\n", stats.Fixes)
		if stats.LastCreatedAt != nil {
			fmt.Printf("Last:      %s\n", stats.LastCreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	snapshotsListCmd.Flags().String("actor", "", "filter by actor")
	snapshotsListCmd.Flags().String("since", "", "only analyses created at or after this RFC 3339 time")
	snapshotsListCmd.Flags().String("sort", "", "sort field, prefix with - for descending (created_at, component_count, missing_count, cycle_count, orphan_count)")
	snapshotsListCmd.Flags().Int("limit", 50, "maximum number of analyses")
	snapshotsListCmd.Flags().Int("offset", 0, "number of analyses to skip")

	snapshotsShowCmd.Flags().Bool("full", false, "include the stored snapshot")

	snapshotsRenderCmd.Flags().Int("width", 0, "diagram width")
	snapshotsRenderCmd.Flags().String("selected", "", "component to highlight")

	snapshotsResolveCmd.Flags().StringSlice("capability", nil, "capabilities to resolve (default: the analysis's missing set)")
	snapshotsResolveCmd.Flags().StringToString("override", nil, "capability=component provider overrides")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)
	snapshotsCmd.AddCommand(snapshotsRenderCmd)
	snapshotsCmd.AddCommand(snapshotsFixesCmd)
	snapshotsCmd.AddCommand(snapshotsResolveCmd)
	snapshotsCmd.AddCommand(snapshotsStatsCmd)
}
