// Package analyze computes whole-catalog graph diagnostics: dependency
// cycles (strongly connected components) and orphaned providers. Unlike
// the resolver, it always looks at the entire catalog, not a resolved
// subset.
package analyze

import (
	"github.com/loomworks/seam/internal/catalog"
)

// Cycles detects dependency cycles over the full catalog using Tarjan's
// strongly-connected-components algorithm. Each cycle is a list of
// component names; only SCCs with more than one member are cycles
// (singletons without self-loops are not). Member ordering within a cycle
// follows discovery/pop order and carries no further guarantee beyond
// "members of one cycle are grouped together". Given the same catalog,
// the output is deterministic.
func Cycles(c *catalog.Catalog, ix catalog.Index) [][]string {
	t := &tarjan{
		adjacency: buildAdjacency(c, ix),
		indices:   make(map[string]int),
		lowlinks:  make(map[string]int),
		onStack:   make(map[string]bool),
	}
	for _, comp := range c.Components {
		if _, seen := t.indices[comp.Name]; !seen {
			t.strongConnect(comp.Name)
		}
	}
	return t.cycles
}

// buildAdjacency builds consumer->provider edges: one edge per
// (component, requiredCapability) pair to every component providing that
// capability. Order follows catalog order for determinism.
func buildAdjacency(c *catalog.Catalog, ix catalog.Index) map[string][]string {
	adjacency := make(map[string][]string, c.Len())
	for _, consumer := range c.Components {
		var targets []string
		seen := make(map[string]bool)
		for _, capability := range consumer.Requires {
			for _, provider := range ix.Providers(capability) {
				if provider.Name == consumer.Name || seen[provider.Name] {
					continue
				}
				seen[provider.Name] = true
				targets = append(targets, provider.Name)
			}
		}
		adjacency[consumer.Name] = targets
	}
	return adjacency
}

// tarjan carries the per-run state of the SCC computation: discovery
// indices, low-link values, and the explicit stack with membership set.
type tarjan struct {
	adjacency map[string][]string
	indices   map[string]int
	lowlinks  map[string]int
	onStack   map[string]bool
	stack     []string
	next      int
	cycles    [][]string
}

func (t *tarjan) strongConnect(name string) {
	t.indices[name] = t.next
	t.lowlinks[name] = t.next
	t.next++
	t.stack = append(t.stack, name)
	t.onStack[name] = true

	for _, target := range t.adjacency[name] {
		if _, seen := t.indices[target]; !seen {
			t.strongConnect(target)
			if t.lowlinks[target] < t.lowlinks[name] {
				t.lowlinks[name] = t.lowlinks[target]
			}
		} else if t.onStack[target] {
			if t.indices[target] < t.lowlinks[name] {
				t.lowlinks[name] = t.indices[target]
			}
		}
	}

	// Root of an SCC: pop the stack down to this node.
	if t.lowlinks[name] == t.indices[name] {
		var scc []string
		for {
			top := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[top] = false
			scc = append(scc, top)
			if top == name {
				break
			}
		}
		if len(scc) > 1 {
			t.cycles = append(t.cycles, scc)
		}
	}
}

// Orphans returns the names of components whose provided capability is
// required by no component anywhere in the catalog. Components that
// provide nothing are never orphans. Output follows catalog order.
func Orphans(c *catalog.Catalog) []string {
	required := c.RequiredCapabilities()
	var orphans []string
	for _, comp := range c.Components {
		if comp.Provides == "" {
			continue
		}
		if !required[comp.Provides] {
			orphans = append(orphans, comp.Name)
		}
	}
	return orphans
}
