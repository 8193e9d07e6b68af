// Package engine is the stateless facade over the analysis core. Every
// call is a pure function of its inputs: the engine holds nothing between
// invocations, performs no I/O, and never reads the clock, so calls are
// safely re-entrant from any goroutine.
package engine

import (
	"github.com/loomworks/seam/internal/analyze"
	"github.com/loomworks/seam/internal/catalog"
	"github.com/loomworks/seam/internal/layout"
	"github.com/loomworks/seam/internal/plan"
	"github.com/loomworks/seam/internal/render"
	"github.com/loomworks/seam/internal/resolve"
)

// Options configures a full analysis pass.
type Options struct {
	// Overrides maps a capability to the component that must provide it.
	Overrides map[string]string

	// RenderWidth caps diagram line length; values below one mean 80.
	RenderWidth int

	// Selected marks one component in the rendered diagram.
	Selected string
}

// Snapshot is the complete result of one analysis pass over one payload.
type Snapshot struct {
	Payload    *catalog.Payload  `json:"payload"`
	Issues     []catalog.Issue   `json:"issues,omitempty"`
	Resolution *resolve.Result   `json:"resolution"`
	Cycles     [][]string        `json:"cycles,omitempty"`
	Orphans    []string          `json:"orphans,omitempty"`
	Plan       *plan.Node        `json:"plan"`
	Fixes      []*plan.WiringFix `json:"fixes,omitempty"`
	Diagram    []string          `json:"diagram"`
}

// BuildIndex builds the capability index for a catalog.
func BuildIndex(c *catalog.Catalog) catalog.Index {
	return catalog.BuildIndex(c)
}

// Resolve computes the dependency-closed component set for the requested
// capabilities.
func Resolve(requested []string, ix catalog.Index, overrides map[string]string) *resolve.Result {
	return resolve.Resolve(requested, ix, overrides)
}

// DetectCycles reports dependency cycles over the full catalog.
func DetectCycles(c *catalog.Catalog, ix catalog.Index) [][]string {
	return analyze.Cycles(c, ix)
}

// FindOrphans reports components whose provided capability nothing requires.
func FindOrphans(c *catalog.Catalog) []string {
	return analyze.Orphans(c)
}

// Layout computes the drawing description for the full catalog.
func Layout(c *catalog.Catalog, ix catalog.Index) *layout.Layout {
	return layout.Compute(c, ix, layout.DefaultConfig)
}

// Render rasterizes a layout into diagram lines.
func Render(l *layout.Layout, width int, selected string) []string {
	return render.Render(l, render.Options{MaxWidth: width, Selected: selected})
}

// Analyze runs a whole pass over one payload: validation, resolution of
// every missing capability, graph diagnostics, the composition plan, one
// wiring fix per diagnostic site, and the rendered diagram.
func Analyze(p *catalog.Payload, opts Options) *Snapshot {
	c := p.Catalog()
	ix := catalog.BuildIndex(c)

	resolution := resolve.Resolve(p.MissingCapabilities(), ix, opts.Overrides)

	snap := &Snapshot{
		Payload:    p,
		Issues:     catalog.ValidatePayload(p),
		Resolution: resolution,
		Cycles:     analyze.Cycles(c, ix),
		Orphans:    analyze.Orphans(c),
		Plan:       plan.Build(resolution.Resolved),
		Fixes:      buildFixes(p, ix, opts.Overrides),
	}

	l := layout.Compute(c, ix, layout.DefaultConfig)
	snap.Diagram = render.Render(l, render.Options{MaxWidth: opts.RenderWidth, Selected: opts.Selected})
	return snap
}

// buildFixes emits one wiring fix per distinct diagnostic site, resolving
// all capabilities reported at that site together.
func buildFixes(p *catalog.Payload, ix catalog.Index, overrides map[string]string) []*plan.WiringFix {
	type site struct {
		file string
		line int
	}
	var order []site
	bySite := make(map[site][]string)
	for _, req := range p.Missing {
		s := site{file: req.Provenance.File, line: req.Provenance.Line}
		if _, seen := bySite[s]; !seen {
			order = append(order, s)
		}
		bySite[s] = append(bySite[s], req.Capability)
	}

	var fixes []*plan.WiringFix
	for _, s := range order {
		res := resolve.Resolve(bySite[s], ix, overrides)
		node := plan.Build(res.Resolved)
		fixes = append(fixes, plan.NewWiringFix(catalog.Provenance{File: s.file, Line: s.line}, node))
	}
	return fixes
}
