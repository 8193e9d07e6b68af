// Package catalog defines the immutable component catalog that every
// analysis pass computes over, and the capability index derived from it.
package catalog

// CompositionType describes how a component is itself assembled from
// named sub-components, when the static-analysis collaborator reports that.
// It is metadata for the analyzer and renderer; the resolver ignores it.
type CompositionType string

const (
	CompositionNone    CompositionType = "none"
	CompositionMerge   CompositionType = "merge"
	CompositionProvide CompositionType = "provide"
)

// String returns the string representation of the composition type.
func (t CompositionType) String() string {
	return string(t)
}

// IsValid checks whether the composition type is a known value.
// An empty value is valid and treated as CompositionNone.
func (t CompositionType) IsValid() bool {
	switch t {
	case CompositionNone, CompositionMerge, CompositionProvide, "":
		return true
	}
	return false
}

// Provenance records where a component definition or diagnostic came from.
// It is opaque to the engine and carried through for downstream reporting.
type Provenance struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Component is a single component definition. A component may provide at
// most one named capability (Provides empty means it provides nothing,
// e.g. a pure aggregator) and require any number of capabilities.
type Component struct {
	Name            string          `json:"name"`
	Provides        string          `json:"provides,omitempty"`
	Requires        []string        `json:"requires,omitempty"`
	Provenance      Provenance      `json:"provenance"`
	ComposedOf      []string        `json:"composed_of,omitempty"`
	CompositionType CompositionType `json:"composition_type,omitempty"`
}

// Catalog is the immutable collection of component definitions for one
// analysis pass. It is constructed once per pass from the collaborator
// payload and discarded afterwards; nothing in the engine mutates it.
type Catalog struct {
	Components []*Component
}

// New returns a catalog over the given components, preserving their order.
// Order matters: it is the tie-break for ambiguous capability providers.
func New(components []*Component) *Catalog {
	return &Catalog{Components: components}
}

// Len returns the number of components in the catalog.
func (c *Catalog) Len() int {
	return len(c.Components)
}

// ByName returns the component with the given name, or nil if absent.
// The first definition wins when a name is (erroneously) duplicated.
func (c *Catalog) ByName(name string) *Component {
	for _, comp := range c.Components {
		if comp.Name == name {
			return comp
		}
	}
	return nil
}

// RequiredCapabilities returns the set of all capability names that appear
// in any component's Requires list.
func (c *Catalog) RequiredCapabilities() map[string]bool {
	required := make(map[string]bool)
	for _, comp := range c.Components {
		for _, capability := range comp.Requires {
			required[capability] = true
		}
	}
	return required
}
