package catalog

// Index maps each capability name to the components that declare it as
// their Provides, in catalog order. A component with an empty Provides
// never appears as a value. The index is a pure function of the catalog
// and is rebuilt whenever the catalog changes.
type Index map[string][]*Component

// BuildIndex builds the capability index in a single pass over the catalog.
func BuildIndex(c *Catalog) Index {
	ix := make(Index)
	for _, comp := range c.Components {
		if comp.Provides == "" {
			continue
		}
		ix[comp.Provides] = append(ix[comp.Provides], comp)
	}
	return ix
}

// Providers returns the components providing the given capability, in
// catalog order. The result is nil when no component provides it.
func (ix Index) Providers(capability string) []*Component {
	return ix[capability]
}

// First returns the first-registered provider of the capability, or nil.
// First-registered wins ties; this is the default selection policy.
func (ix Index) First(capability string) *Component {
	providers := ix[capability]
	if len(providers) == 0 {
		return nil
	}
	return providers[0]
}
