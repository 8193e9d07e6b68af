// Package resolve computes the minimal dependency-closed, topologically
// ordered set of components needed to satisfy a set of capabilities.
package resolve

import (
	"github.com/loomworks/seam/internal/catalog"
)

// WarningKind classifies a recoverable selection condition.
type WarningKind string

const (
	// WarnInvalidOverride means an override named a component that is not
	// among the actual candidates; the default selection was used instead.
	WarnInvalidOverride WarningKind = "invalid_override"

	// WarnAmbiguousProvider means multiple components provide a capability
	// and no override picked one; the first-registered candidate was used.
	WarnAmbiguousProvider WarningKind = "ambiguous_provider"
)

// Warning is a structured, non-fatal diagnostic attached to a resolution.
// Warnings are returned as data; the resolver never logs.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Capability string      `json:"capability"`
	Requested  string      `json:"requested,omitempty"` // override target, for invalid_override
	Chosen     string      `json:"chosen"`
}

// String formats the warning for display.
func (w Warning) String() string {
	switch w.Kind {
	case WarnInvalidOverride:
		return "override " + w.Requested + " does not provide " + w.Capability + "; using " + w.Chosen
	case WarnAmbiguousProvider:
		return "multiple providers for " + w.Capability + "; using " + w.Chosen
	}
	return string(w.Kind) + ": " + w.Capability
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Resolved is the de-duplicated list of components needed, in
	// dependency-first (topological) order.
	Resolved []*catalog.Component `json:"resolved"`

	// Order holds the Name of each resolved component, same order as Resolved.
	Order []string `json:"order"`

	// Missing lists capabilities requested (transitively) but provided by
	// no component in the catalog, each reported once.
	Missing []string `json:"missing"`

	// Warnings holds recoverable selection diagnostics.
	Warnings []Warning `json:"warnings,omitempty"`
}

// resolver holds the visitation state for a single Resolve call. State is
// local to the call, so Resolve is re-entrant and safe for repeated use.
type resolver struct {
	index     catalog.Index
	overrides map[string]string

	visited     map[string]bool // capability fully resolved
	missingSeen map[string]bool
	result      Result
}

// Resolve computes the components needed to satisfy the requested
// capabilities. Overrides map a capability name to the component that
// should provide it; an override naming a non-candidate falls back to the
// default selection with a warning. Cycles are suppressed per branch (and
// reported by the graph analyzer, not here), so the call always terminates.
func Resolve(requested []string, ix catalog.Index, overrides map[string]string) *Result {
	r := &resolver{
		index:       ix,
		overrides:   overrides,
		visited:     make(map[string]bool),
		missingSeen: make(map[string]bool),
	}
	r.result.Resolved = []*catalog.Component{}
	r.result.Order = []string{}
	r.result.Missing = []string{}

	path := make(map[string]bool)
	for _, capability := range requested {
		r.visit(capability, path)
	}
	return &r.result
}

// visit resolves one capability. path holds the capabilities on the current
// recursion branch only; entries are removed on the way back out, so
// sibling branches never inherit cycle state.
func (r *resolver) visit(capability string, path map[string]bool) {
	if r.visited[capability] {
		return
	}
	// On the current branch already: an unresolvable cycle for this branch.
	// Back off without recording it as missing; the graph analyzer reports
	// the cycle itself.
	if path[capability] {
		return
	}

	candidates := r.index.Providers(capability)
	if len(candidates) == 0 {
		if !r.missingSeen[capability] {
			r.missingSeen[capability] = true
			r.result.Missing = append(r.result.Missing, capability)
		}
		return
	}

	selected := r.selectProvider(capability, candidates)

	path[capability] = true
	for _, required := range selected.Requires {
		r.visit(required, path)
	}
	delete(path, capability)

	r.visited[capability] = true
	r.result.Resolved = append(r.result.Resolved, selected)
	r.result.Order = append(r.result.Order, selected.Name)
}

// selectProvider picks one provider among the candidates: the override if
// it names a candidate, otherwise the first-registered candidate
// (catalog-order tie-break, deterministic).
func (r *resolver) selectProvider(capability string, candidates []*catalog.Component) *catalog.Component {
	if want, ok := r.overrides[capability]; ok {
		for _, c := range candidates {
			if c.Name == want {
				return c
			}
		}
		r.result.Warnings = append(r.result.Warnings, Warning{
			Kind:       WarnInvalidOverride,
			Capability: capability,
			Requested:  want,
			Chosen:     candidates[0].Name,
		})
		return candidates[0]
	}
	if len(candidates) > 1 {
		r.result.Warnings = append(r.result.Warnings, Warning{
			Kind:       WarnAmbiguousProvider,
			Capability: capability,
			Chosen:     candidates[0].Name,
		})
	}
	return candidates[0]
}
