package events

// Subscriber receives event envelopes from the bus.
type Subscriber interface {
	// Subscribe delivers envelopes for subjects matching pattern.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(pattern string) (<-chan Envelope, func(), error)
	Close() error
}
