// Package plan builds the hierarchical merge/provide description of how
// resolved components should be wired together. The plan is a description
// consumed by the external code-editing collaborator, never program text.
package plan

import "strings"

// NodeKind discriminates the closed set of plan node shapes.
type NodeKind string

const (
	KindLeaf    NodeKind = "leaf"
	KindMerge   NodeKind = "merge"
	KindProvide NodeKind = "provide"
)

// Node is a tagged variant: exactly one of the shape-specific fields is
// populated according to Kind.
//   - leaf:    Component names a single component.
//   - merge:   Children holds the merged sub-plans.
//   - provide: Target is the node being supplied, Provider the node
//     supplying one of its requirements.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Component string   `json:"component,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
	Target    *Node    `json:"target,omitempty"`
	Provider  *Node    `json:"provider,omitempty"`
}

// Leaf returns a leaf node for a single component.
func Leaf(component string) *Node {
	return &Node{Kind: KindLeaf, Component: component}
}

// Merge returns a merge node over the given children.
func Merge(children ...*Node) *Node {
	return &Node{Kind: KindMerge, Children: children}
}

// Provide returns a provide node wiring provider into target.
func Provide(target, provider *Node) *Node {
	return &Node{Kind: KindProvide, Target: target, Provider: provider}
}

// Components returns all component names mentioned anywhere in the plan,
// de-duplicated, in first-appearance order.
func (n *Node) Components() []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(*Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		switch node.Kind {
		case KindLeaf:
			if !seen[node.Component] {
				seen[node.Component] = true
				out = append(out, node.Component)
			}
		case KindMerge:
			for _, child := range node.Children {
				walk(child)
			}
		case KindProvide:
			walk(node.Target)
			walk(node.Provider)
		}
	}
	walk(n)
	return out
}

// String renders the plan in a compact inline notation, e.g.
// "merge(provide(Cache, Db), Metrics)". Useful for logs and tests.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindLeaf:
		return n.Component
	case KindMerge:
		parts := make([]string, len(n.Children))
		for i, child := range n.Children {
			parts[i] = child.String()
		}
		return "merge(" + strings.Join(parts, ", ") + ")"
	case KindProvide:
		return "provide(" + n.Target.String() + ", " + n.Provider.String() + ")"
	}
	return string(n.Kind)
}
