package events

import "context"

// NoopPublisher drops events. It backs the server when SEAM_NATS_URL is
// unset; SSE clients are unaffected because the server fans events out
// to its stream hub separately.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
