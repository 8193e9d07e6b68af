package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/resolve"
	"github.com/loomworks/seam/internal/store"
	"github.com/loomworks/seam/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// printSnapshot renders one analysis pass for the terminal: the diagram
// first, then diagnostics and the composition plan.
func printSnapshot(snap *engine.Snapshot) {
	for _, line := range snap.Diagram {
		fmt.Println(line)
	}

	if len(snap.Issues) > 0 {
		fmt.Println()
		for _, issue := range snap.Issues {
			fmt.Println(ui.RenderMuted("issue: " + issue.String()))
		}
	}

	if len(snap.Cycles) > 0 {
		fmt.Println()
		for _, cycle := range snap.Cycles {
			fmt.Println(ui.RenderCycle("cycle: " + strings.Join(cycle, " -> ")))
		}
	}
	if len(snap.Orphans) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderOrphan("orphans: " + strings.Join(snap.Orphans, ", ")))
	}

	printResolution(snap.Resolution)

	if snap.Plan != nil && snap.Plan.String() != "" {
		fmt.Println()
		fmt.Println("plan: " + ui.RenderAccent(snap.Plan.String()))
	}

	if len(snap.Fixes) > 0 {
		fmt.Println()
		for _, fix := range snap.Fixes {
			fmt.Printf("fix %s:%d  %s\n", fix.File, fix.Line, ui.RenderAccent(fix.Plan.String()))
		}
	}
}

func printResolution(result *resolve.Result) {
	if result == nil {
		return
	}
	if len(result.Missing) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderCycle("missing: " + strings.Join(result.Missing, ", ")))
	}
	for _, w := range result.Warnings {
		fmt.Println(ui.RenderMuted("warning: " + w.String()))
	}
}

func printResolveResult(result *resolve.Result) {
	if len(result.Order) > 0 {
		fmt.Println("order: " + ui.RenderAccent(strings.Join(result.Order, " -> ")))
	}
	printResolution(result)
}

func printAnalysisTable(a *store.Analysis) {
	fmt.Printf("ID:          %s\n", a.ID)
	if a.Actor != "" {
		fmt.Printf("Actor:       %s\n", a.Actor)
	}
	fmt.Printf("Created At:  %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Components:  %d\n", a.ComponentCount)
	fmt.Printf("Missing:     %d\n", a.MissingCount)
	fmt.Printf("Cycles:      %d\n", a.CycleCount)
	fmt.Printf("Orphans:     %d\n", a.OrphanCount)
}

func printAnalysisListTable(analyses []*store.Analysis, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCOMPONENTS\tMISSING\tCYCLES\tORPHANS\tACTOR")
	for _, a := range analyses {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			a.ID,
			a.CreatedAt.Format("2006-01-02 15:04"),
			a.ComponentCount,
			a.MissingCount,
			a.CycleCount,
			a.OrphanCount,
			a.Actor,
		)
	}
	w.Flush()
	fmt.Printf("\n%d analyses (%d total)\n", len(analyses), total)
}

func printFixListTable(fixes []*store.Fix) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tLINE\tPLAN")
	for _, f := range fixes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.ID, f.File, f.Line, f.Plan)
	}
	w.Flush()
}
