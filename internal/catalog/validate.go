package catalog

import (
	"fmt"
	"strings"
)

// Issue is a single non-fatal problem found in a payload. Issues are
// reported as data alongside results; a malformed component never aborts
// an analysis pass.
type Issue struct {
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// String formats the issue as "component: message" (or just the message).
func (i Issue) String() string {
	if i.Component == "" {
		return i.Message
	}
	return i.Component + ": " + i.Message
}

// ValidatePayload checks a payload for structural problems and returns the
// list of issues found. An empty list means the payload is clean.
func ValidatePayload(p *Payload) []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(p.Components))
	for _, comp := range p.Components {
		name := strings.TrimSpace(comp.Name)
		if name == "" {
			issues = append(issues, Issue{Message: "component with empty name"})
			continue
		}
		if seen[name] {
			issues = append(issues, Issue{
				Component: name,
				Message:   "duplicate component name; first definition wins",
			})
		}
		seen[name] = true

		if !comp.CompositionType.IsValid() {
			issues = append(issues, Issue{
				Component: name,
				Message:   fmt.Sprintf("unknown composition type %q", comp.CompositionType),
			})
		}

		for _, capability := range comp.Requires {
			if strings.TrimSpace(capability) == "" {
				issues = append(issues, Issue{
					Component: name,
					Message:   "empty capability name in requires",
				})
			}
		}
		if comp.Provides != "" && containsString(comp.Requires, comp.Provides) {
			issues = append(issues, Issue{
				Component: name,
				Message:   fmt.Sprintf("requires its own provided capability %q", comp.Provides),
			})
		}
	}

	for _, req := range p.Missing {
		if strings.TrimSpace(req.Capability) == "" {
			issues = append(issues, Issue{Message: "missing-capability request with empty capability"})
		}
	}

	return issues
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
