// Package render rasterizes a graph layout into a fixed-width character
// grid: boxes with labels, orthogonal edge routing, and annotation glyphs
// for cycles, orphans, and the current selection.
package render

import (
	"sort"
	"strings"

	"github.com/loomworks/seam/internal/layout"
)

// Glyphs used by the renderer.
const (
	glyphCycle    = '↻' // adjacent to the top-left corner of a cycle member
	glyphOrphan   = '◦' // adjacent to the top-right corner of an orphan
	glyphSelected = '▶' // adjacent to the label row of the selected node
	glyphArrow    = '▼' // edge head, just above the consumer's top border
	glyphEllipsis = '…' // marks a truncated label
)

// EmptyPlaceholder is the single line produced for an empty catalog.
const EmptyPlaceholder = "(no components in catalog)"

// rankTolerance is the y distance under which two nodes belong to the
// same rank.
const rankTolerance = 0.5

// Options configures one rendering pass.
type Options struct {
	// MaxWidth is the maximum length of any output line, in characters.
	// Values below one fall back to 80.
	MaxWidth int

	// Selected names the component to mark with the selection glyph.
	Selected string
}

// cell records where a node landed on the character grid.
type cell struct {
	rank      int
	topRow    int
	bottomRow int
	boxStart  int
	center    int
}

// grid is a bounds-checked rune buffer.
type grid struct {
	rows  [][]rune
	width int
}

func newGrid(height, width int) *grid {
	rows := make([][]rune, height)
	for i := range rows {
		row := make([]rune, width)
		for j := range row {
			row[j] = ' '
		}
		rows[i] = row
	}
	return &grid{rows: rows, width: width}
}

func (g *grid) set(row, col int, r rune) {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= g.width {
		return
	}
	g.rows[row][col] = r
}

// lines returns the buffer as right-trimmed strings, dropping trailing
// blank rows.
func (g *grid) lines() []string {
	out := make([]string, len(g.rows))
	last := -1
	for i, row := range g.rows {
		line := strings.TrimRight(string(row), " ")
		out[i] = line
		if line != "" {
			last = i
		}
	}
	return out[:last+1]
}

// Render draws the layout into a character grid and returns one string
// per row. For an empty layout it returns a single placeholder line.
func Render(l *layout.Layout, opts Options) []string {
	maxWidth := opts.MaxWidth
	if maxWidth < 1 {
		maxWidth = 80
	}
	if len(l.Nodes) == 0 {
		return []string{EmptyPlaceholder}
	}

	ranks := groupByRank(l.Nodes)

	// One fixed-size cell for every node: the box plus a one-column margin
	// on each side for annotation glyphs.
	boxWidth := 0
	for _, n := range l.Nodes {
		if w := len([]rune(n.Name)) + 2; w > boxWidth {
			boxWidth = w
		}
	}
	if boxWidth > maxWidth-2 {
		boxWidth = maxWidth - 2
	}
	if boxWidth < 4 {
		boxWidth = 4
	}
	cellWidth := boxWidth + 2

	perRow := maxWidth / cellWidth
	if perRow < 1 {
		perRow = 1
	}

	// Split over-wide ranks into visual rows, keeping left-to-right x order.
	type visualRow struct {
		rank  int
		nodes []*layout.Node
	}
	var rows []visualRow
	for rank, nodes := range ranks {
		for start := 0; start < len(nodes); start += perRow {
			end := start + perRow
			if end > len(nodes) {
				end = len(nodes)
			}
			rows = append(rows, visualRow{rank: rank, nodes: nodes[start:end]})
		}
	}

	// Every visual row takes three text rows for the box plus three rows
	// of routing space before the next.
	const rowStride = 6
	g := newGrid((len(rows)-1)*rowStride+3, maxWidth)

	cells := make(map[string]cell, len(l.Nodes))
	for i, row := range rows {
		top := i * rowStride
		total := len(row.nodes) * cellWidth
		left := (maxWidth - total) / 2
		if left < 0 {
			left = 0
		}
		for k, n := range row.nodes {
			boxStart := left + k*cellWidth + 1
			c := cell{
				rank:      row.rank,
				topRow:    top,
				bottomRow: top + 2,
				boxStart:  boxStart,
				center:    boxStart + boxWidth/2,
			}
			cells[n.Name] = c
			drawBox(g, c, boxWidth, n.Name)
			if n.InCycle {
				g.set(c.topRow, c.boxStart-1, glyphCycle)
			}
			if n.Orphan {
				g.set(c.topRow, c.boxStart+boxWidth, glyphOrphan)
			}
			if opts.Selected != "" && n.Name == opts.Selected {
				g.set(c.topRow+1, c.boxStart-1, glyphSelected)
			}
		}
	}

	for _, e := range l.Edges {
		drawEdge(g, cells[e.From], cells[e.To])
	}

	return g.lines()
}

// groupByRank buckets nodes whose y coordinates are within the tolerance,
// ordered top to bottom and left to right within each bucket.
func groupByRank(nodes []*layout.Node) [][]*layout.Node {
	sorted := append([]*layout.Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var ranks [][]*layout.Node
	for _, n := range sorted {
		if len(ranks) > 0 {
			lastRank := ranks[len(ranks)-1]
			if n.Y-lastRank[0].Y < rankTolerance {
				ranks[len(ranks)-1] = append(lastRank, n)
				continue
			}
		}
		ranks = append(ranks, []*layout.Node{n})
	}
	return ranks
}

// drawBox draws a three-row node box: border, centered label, border.
// Labels wider than the box interior are truncated with an ellipsis.
func drawBox(g *grid, c cell, boxWidth int, label string) {
	interior := boxWidth - 2
	runes := []rune(label)
	if len(runes) > interior {
		runes = append(runes[:interior-1], glyphEllipsis)
	}
	pad := (interior - len(runes)) / 2

	g.set(c.topRow, c.boxStart, '┌')
	g.set(c.bottomRow, c.boxStart, '└')
	for i := 1; i < boxWidth-1; i++ {
		g.set(c.topRow, c.boxStart+i, '─')
		g.set(c.bottomRow, c.boxStart+i, '─')
	}
	g.set(c.topRow, c.boxStart+boxWidth-1, '┐')
	g.set(c.bottomRow, c.boxStart+boxWidth-1, '┘')

	g.set(c.topRow+1, c.boxStart, '│')
	g.set(c.topRow+1, c.boxStart+boxWidth-1, '│')
	for i, r := range runes {
		g.set(c.topRow+1, c.boxStart+1+pad+i, r)
	}
}

// drawEdge routes one provider->consumer edge orthogonally: down from the
// provider's bottom edge, across at a row midway between the two, then
// down into the consumer's top edge, ending in an arrow glyph. Edges
// within one rank are not drawn, and an edge whose provider sits at or
// below its consumer is silently skipped rather than crashing the pass.
func drawEdge(g *grid, from, to cell) {
	if from.rank == to.rank {
		return
	}
	if to.topRow-from.bottomRow <= 1 {
		return // non-positive vertical gap: inconsistent ranks, skip
	}

	startCol := from.center
	endCol := to.center
	arrowRow := to.topRow - 1

	if startCol == endCol {
		for row := from.bottomRow + 1; row < arrowRow; row++ {
			g.set(row, startCol, '│')
		}
		g.set(arrowRow, endCol, glyphArrow)
		return
	}

	midRow := (from.bottomRow + to.topRow) / 2
	for row := from.bottomRow + 1; row < midRow; row++ {
		g.set(row, startCol, '│')
	}
	lo, hi := startCol, endCol
	if lo > hi {
		lo, hi = hi, lo
	}
	for col := lo + 1; col < hi; col++ {
		g.set(midRow, col, '─')
	}
	if startCol < endCol {
		g.set(midRow, startCol, '└')
		g.set(midRow, endCol, '┐')
	} else {
		g.set(midRow, startCol, '┘')
		g.set(midRow, endCol, '┌')
	}
	for row := midRow + 1; row < arrowRow; row++ {
		g.set(row, endCol, '│')
	}
	g.set(arrowRow, endCol, glyphArrow)
}
