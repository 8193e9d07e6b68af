package plan

import "github.com/loomworks/seam/internal/catalog"

// Build turns a resolved, dependency-ordered component list into a
// composition plan. The top-level node is always a merge listing:
//   - independent components (no requirement satisfied inside the resolved
//     set) that are not used purely as a provider for another component, and
//   - each dependent component wrapped in nested provide relationships,
//     one per internal provider, in the order its Requires list them.
//
// Independent components that exist only to satisfy a dependent component
// are elided from the top level: they are reachable through the provide
// wrapping and listing them again would duplicate wiring.
func Build(resolved []*catalog.Component) *Node {
	providerByCap := make(map[string]*catalog.Component)
	for _, c := range resolved {
		if c.Provides != "" {
			if _, ok := providerByCap[c.Provides]; !ok {
				providerByCap[c.Provides] = c
			}
		}
	}

	// internalProviders lists, per component, the resolved components that
	// satisfy one of its requirements, in Requires order.
	internalProviders := make(map[string][]*catalog.Component, len(resolved))
	providerOnly := make(map[string]bool)
	for _, c := range resolved {
		for _, capability := range c.Requires {
			provider, ok := providerByCap[capability]
			if !ok || provider.Name == c.Name {
				continue
			}
			internalProviders[c.Name] = append(internalProviders[c.Name], provider)
			providerOnly[provider.Name] = true
		}
	}

	var children []*Node
	for _, c := range resolved {
		providers := internalProviders[c.Name]
		if len(providers) == 0 {
			// Independent: emit verbatim unless it only exists to feed a
			// dependent component.
			if !providerOnly[c.Name] {
				children = append(children, Leaf(c.Name))
			}
			continue
		}
		node := Leaf(c.Name)
		for _, provider := range providers {
			node = Provide(node, Leaf(provider.Name))
		}
		children = append(children, node)
	}

	return Merge(children...)
}
