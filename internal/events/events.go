// Package events defines the analysis lifecycle notifications seam emits
// and the publisher/subscriber plumbing that carries them over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event subjects. One subject per event type; wildcards like
// "seam.analysis.*" and "seam.>" select families of them.
const (
	TopicAnalysisSubmitted = "seam.analysis.submitted"
	TopicAnalysisCompleted = "seam.analysis.completed"
	TopicAnalysisFailed    = "seam.analysis.failed"
	TopicAnalysisDeleted   = "seam.analysis.deleted"
	TopicFixPlanned        = "seam.fix.planned"
)

// Event is one lifecycle notification. Each event knows the subject it
// is published on, so a topic and its payload shape can never drift
// apart at a call site.
type Event interface {
	Topic() string
}

// Correlated is implemented by events tied to one analysis, so streams
// can be filtered by analysis ID without decoding payloads.
type Correlated interface {
	Analysis() string
}

// AnalysisSubmitted is emitted when a payload arrives, before the
// engine runs. AnalysisID is empty: the ID is minted during the run.
type AnalysisSubmitted struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	Actor      string `json:"actor,omitempty"`
	Components int    `json:"components"`
	Missing    int    `json:"missing"`
}

func (AnalysisSubmitted) Topic() string { return TopicAnalysisSubmitted }
func (e AnalysisSubmitted) Analysis() string { return e.AnalysisID }

// AnalysisCompleted is emitted after a run is persisted.
type AnalysisCompleted struct {
	AnalysisID string `json:"analysis_id"`
	Components int    `json:"components"`
	Missing    int    `json:"missing"`
	Cycles     int    `json:"cycles"`
	Orphans    int    `json:"orphans"`
	Fixes      int    `json:"fixes"`
}

func (AnalysisCompleted) Topic() string { return TopicAnalysisCompleted }
func (e AnalysisCompleted) Analysis() string { return e.AnalysisID }

// AnalysisFailed is emitted when a run cannot be persisted.
type AnalysisFailed struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	Error      string `json:"error"`
}

func (AnalysisFailed) Topic() string { return TopicAnalysisFailed }
func (e AnalysisFailed) Analysis() string { return e.AnalysisID }

// AnalysisDeleted is emitted when a stored analysis is removed.
type AnalysisDeleted struct {
	AnalysisID string `json:"analysis_id"`
}

func (AnalysisDeleted) Topic() string { return TopicAnalysisDeleted }
func (e AnalysisDeleted) Analysis() string { return e.AnalysisID }

// FixPlanned is emitted once per wiring fix a run produces. It is the
// notification the code-editing collaborator listens for.
type FixPlanned struct {
	AnalysisID string   `json:"analysis_id"`
	FixID      string   `json:"fix_id"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Plan       string   `json:"plan"`
	Components []string `json:"components,omitempty"`
}

func (FixPlanned) Topic() string { return TopicFixPlanned }
func (e FixPlanned) Analysis() string { return e.AnalysisID }

// Envelope is one event as received off the bus: the subject it arrived
// on plus the raw payload. Decode recovers the typed event.
type Envelope struct {
	Topic string
	Data  []byte
}

// Decode unmarshals the payload into the event type for the subject.
func (e Envelope) Decode() (Event, error) {
	var ev Event
	switch e.Topic {
	case TopicAnalysisSubmitted:
		ev = &AnalysisSubmitted{}
	case TopicAnalysisCompleted:
		ev = &AnalysisCompleted{}
	case TopicAnalysisFailed:
		ev = &AnalysisFailed{}
	case TopicAnalysisDeleted:
		ev = &AnalysisDeleted{}
	case TopicFixPlanned:
		ev = &FixPlanned{}
	default:
		return nil, fmt.Errorf("unknown event subject %q", e.Topic)
	}
	if err := json.Unmarshal(e.Data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", e.Topic, err)
	}
	return ev, nil
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
