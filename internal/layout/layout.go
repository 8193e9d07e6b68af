// Package layout assigns positions to catalog components for drawing:
// a layered (Sugiyama-style) top-to-bottom arrangement with providers
// above their consumers.
package layout

import (
	"sort"

	"github.com/loomworks/seam/internal/analyze"
	"github.com/loomworks/seam/internal/catalog"
)

// NodeHeight is the fixed height of a drawn node in abstract units:
// border, content, border.
const NodeHeight = 3.0

// Config holds the layout spacing knobs, in abstract drawing units.
type Config struct {
	HPad float64 // horizontal label padding inside a node
	HGap float64 // gap between adjacent nodes in a rank
	VGap float64 // gap between ranks
}

// DefaultConfig is the spacing used when callers have no preference.
var DefaultConfig = Config{HPad: 2, HGap: 4, VGap: 3}

// Point is a coordinate in abstract drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned component with its derived annotation flags.
type Node struct {
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rank    int     `json:"rank"`
	InCycle bool    `json:"in_cycle"`
	Orphan  bool    `json:"orphan"`
}

// Edge is one provider->consumer relationship with its routing polyline
// from the provider's bottom center to the consumer's top center.
type Edge struct {
	From   string  `json:"from"` // provider component
	To     string  `json:"to"`   // consumer component
	Points []Point `json:"points"`
}

// Layout is the complete drawing description for one catalog.
type Layout struct {
	Nodes   []*Node    `json:"nodes"`
	Edges   []*Edge    `json:"edges"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Cycles  [][]string `json:"cycles,omitempty"`
	Orphans []string   `json:"orphans,omitempty"`
}

// Compute lays out the full catalog. It is a pure function of its inputs;
// the same catalog always yields the same drawing.
func Compute(c *catalog.Catalog, ix catalog.Index, cfg Config) *Layout {
	l := &Layout{
		Cycles:  analyze.Cycles(c, ix),
		Orphans: analyze.Orphans(c),
	}
	if c.Len() == 0 {
		return l
	}

	inCycle := make(map[string]bool)
	for _, cycle := range l.Cycles {
		for _, name := range cycle {
			inCycle[name] = true
		}
	}
	orphan := make(map[string]bool)
	for _, name := range l.Orphans {
		orphan[name] = true
	}

	providers := providerEdges(c, ix)
	ranks := assignRanks(c, providers)

	// Group components by rank, preserving catalog order as the initial
	// ordering within each rank.
	maxRank := 0
	byRank := make(map[int][]*catalog.Component)
	for _, comp := range c.Components {
		r := ranks[comp.Name]
		byRank[r] = append(byRank[r], comp)
		if r > maxRank {
			maxRank = r
		}
	}

	orderRanks(byRank, maxRank, providers)

	// Geometry: x from a left-to-right cursor per rank, y from the rank.
	nodeByName := make(map[string]*Node, c.Len())
	for r := 0; r <= maxRank; r++ {
		x := 0.0
		for _, comp := range byRank[r] {
			width := float64(len(comp.Name)) + 2*cfg.HPad
			n := &Node{
				Name:    comp.Name,
				X:       x,
				Y:       float64(r) * (NodeHeight + cfg.VGap),
				Width:   width,
				Height:  NodeHeight,
				Rank:    r,
				InCycle: inCycle[comp.Name],
				Orphan:  orphan[comp.Name],
			}
			l.Nodes = append(l.Nodes, n)
			nodeByName[comp.Name] = n
			x += width + cfg.HGap
		}
		if extent := x - cfg.HGap; extent > l.Width {
			l.Width = extent
		}
	}
	l.Height = float64(maxRank)*(NodeHeight+cfg.VGap) + NodeHeight

	// Edge polylines: provider bottom-center down, across at the midpoint
	// row, then into the consumer top-center.
	for _, comp := range c.Components {
		consumer := nodeByName[comp.Name]
		for _, providerName := range providers[comp.Name] {
			provider := nodeByName[providerName]
			l.Edges = append(l.Edges, &Edge{
				From:   provider.Name,
				To:     consumer.Name,
				Points: route(provider, consumer),
			})
		}
	}

	return l
}

// providerEdges maps each consumer to the providers of its required
// capabilities, de-duplicated, in Requires order then catalog order.
func providerEdges(c *catalog.Catalog, ix catalog.Index) map[string][]string {
	out := make(map[string][]string, c.Len())
	for _, consumer := range c.Components {
		seen := make(map[string]bool)
		for _, capability := range consumer.Requires {
			for _, provider := range ix.Providers(capability) {
				if provider.Name == consumer.Name || seen[provider.Name] {
					continue
				}
				seen[provider.Name] = true
				out[consumer.Name] = append(out[consumer.Name], provider.Name)
			}
		}
	}
	return out
}

// assignRanks computes longest-path ranks: a consumer sits one layer below
// its deepest provider, roots at rank zero. Cyclic edges are skipped on
// the branch that would revisit a node, which keeps the recursion finite.
func assignRanks(c *catalog.Catalog, providers map[string][]string) map[string]int {
	ranks := make(map[string]int, c.Len())
	done := make(map[string]bool, c.Len())
	inPath := make(map[string]bool)

	var rankOf func(name string) int
	rankOf = func(name string) int {
		if done[name] {
			return ranks[name]
		}
		if inPath[name] {
			return 0
		}
		inPath[name] = true
		r := 0
		for _, provider := range providers[name] {
			if pr := rankOf(provider) + 1; pr > r {
				r = pr
			}
		}
		delete(inPath, name)
		ranks[name] = r
		done[name] = true
		return r
	}

	for _, comp := range c.Components {
		rankOf(comp.Name)
	}
	return ranks
}

// orderRanks reduces edge crossings with a single downward barycenter
// sweep: nodes in each rank are sorted by the mean position of their
// providers in the rank above. Exact crossing minimization is not a goal.
func orderRanks(byRank map[int][]*catalog.Component, maxRank int, providers map[string][]string) {
	for r := 1; r <= maxRank; r++ {
		abovePos := make(map[string]int)
		for i, comp := range byRank[r-1] {
			abovePos[comp.Name] = i
		}
		row := byRank[r]
		bary := make(map[string]float64, len(row))
		for i, comp := range row {
			sum, n := 0.0, 0
			for _, provider := range providers[comp.Name] {
				if pos, ok := abovePos[provider]; ok {
					sum += float64(pos)
					n++
				}
			}
			if n == 0 {
				bary[comp.Name] = float64(i)
			} else {
				bary[comp.Name] = sum / float64(n)
			}
		}
		sort.SliceStable(row, func(i, j int) bool {
			return bary[row[i].Name] < bary[row[j].Name]
		})
	}
}

// route builds the orthogonal polyline between two node boxes.
func route(provider, consumer *Node) []Point {
	start := Point{X: provider.X + provider.Width/2, Y: provider.Y + provider.Height}
	end := Point{X: consumer.X + consumer.Width/2, Y: consumer.Y}
	if start.X == end.X {
		return []Point{start, end}
	}
	mid := (start.Y + end.Y) / 2
	return []Point{
		start,
		{X: start.X, Y: mid},
		{X: end.X, Y: mid},
		end,
	}
}
