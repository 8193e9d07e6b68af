package plan

import "github.com/loomworks/seam/internal/catalog"

// WiringFix is the payload handed to the external code-editing
// collaborator: where to insert wiring and the plan to wire. Locating an
// existing composition declaration versus creating one, and the concrete
// text edit, are the collaborator's job.
type WiringFix struct {
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Plan       *Node    `json:"plan"`
	Components []string `json:"components"`
}

// NewWiringFix wraps a plan with its insertion point and component list.
func NewWiringFix(prov catalog.Provenance, node *Node) *WiringFix {
	return &WiringFix{
		File:       prov.File,
		Line:       prov.Line,
		Plan:       node,
		Components: node.Components(),
	}
}
