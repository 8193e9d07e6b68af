package catalog

import (
	"encoding/json"
	"fmt"
	"io"
)

// MissingRequest is a single missing-capability diagnostic reported by the
// static-analysis collaborator: a capability some composition site needs
// but is not wired with, and where that site lives.
type MissingRequest struct {
	Capability string     `json:"capability"`
	Provenance Provenance `json:"provenance"`
}

// Payload is the JSON-serializable input the engine consumes from the
// static-analysis collaborator: the component definitions plus the
// missing-capability requests. The engine never reads source files itself.
type Payload struct {
	Components []*Component     `json:"components"`
	Missing    []MissingRequest `json:"missing,omitempty"`
}

// Catalog builds the immutable catalog over the payload's components.
func (p *Payload) Catalog() *Catalog {
	return New(p.Components)
}

// MissingCapabilities returns the distinct capability names across all
// missing requests, in first-seen order.
func (p *Payload) MissingCapabilities() []string {
	seen := make(map[string]bool, len(p.Missing))
	out := make([]string, 0, len(p.Missing))
	for _, req := range p.Missing {
		if seen[req.Capability] {
			continue
		}
		seen[req.Capability] = true
		out = append(out, req.Capability)
	}
	return out
}

// DecodePayload reads and decodes an analysis payload from r.
func DecodePayload(r io.Reader) (*Payload, error) {
	var p Payload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode analysis payload: %w", err)
	}
	return &p, nil
}
