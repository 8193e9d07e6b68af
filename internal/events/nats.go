package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events to the subject each event names.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Topic(), err)
	}
	if err := p.conn.Publish(event.Topic(), data); err != nil {
		return fmt.Errorf("publishing %s: %w", event.Topic(), err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber consumes event envelopes from NATS subjects.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to NATS with automatic reconnection support.
// Extra nats.Option values (e.g. disconnect/reconnect handlers) can be appended.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// Subscribe delivers envelopes for subjects matching pattern (NATS
// wildcards like "seam.analysis.*" and "seam.>" work). The envelope's
// Topic is the concrete subject the message arrived on, so one
// wildcard subscription still tells events apart. Cancel stops
// delivery and closes the channel.
func (s *NATSSubscriber) Subscribe(pattern string) (<-chan Envelope, func(), error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanSubscribe(pattern, msgs)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to %s: %w", pattern, err)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so that messages published on other connections are routed.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	out := make(chan Envelope, 64)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg := <-msgs:
				if msg == nil {
					return
				}
				select {
				case out <- Envelope{Topic: msg.Subject, Data: msg.Data}:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			close(done)
		})
	}
	return out, cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
