package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// startTestNATS runs an embedded NATS server on a random port and
// returns its client URL. The server is shut down with the test.
func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS server: %v", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS server did not become ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv.ClientURL()
}

func TestNATSSubscriber_DeliversTypedEnvelopes(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("NewNATSSubscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAnalysisCompleted)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	want := AnalysisCompleted{AnalysisID: "an-sub1", Components: 5, Missing: 2, Fixes: 1}
	if err := pub.Publish(context.Background(), want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case env := <-ch:
		if env.Topic != TopicAnalysisCompleted {
			t.Errorf("envelope topic = %q, want %q", env.Topic, TopicAnalysisCompleted)
		}
		decoded, err := env.Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got, ok := decoded.(*AnalysisCompleted)
		if !ok {
			t.Fatalf("decoded type = %T, want *AnalysisCompleted", decoded)
		}
		if got.AnalysisID != want.AnalysisID || got.Components != want.Components || got.Fixes != want.Fixes {
			t.Errorf("decoded event = %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
}

func TestNATSSubscriber_WildcardCarriesConcreteSubject(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("NewNATSSubscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("seam.>")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	published := []Event{
		AnalysisSubmitted{Actor: "alice", Components: 3},
		FixPlanned{AnalysisID: "an-wild", FixID: "fx-wild", File: "main.x", Line: 3},
		AnalysisDeleted{AnalysisID: "an-wild"},
	}
	for _, event := range published {
		if err := pub.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish(%s): %v", event.Topic(), err)
		}
	}

	got := make(map[string]bool)
	for range published {
		select {
		case env := <-ch:
			got[env.Topic] = true
			if _, err := env.Decode(); err != nil {
				t.Errorf("Decode(%s): %v", env.Topic, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out; subjects so far: %v", got)
		}
	}
	for _, event := range published {
		if !got[event.Topic()] {
			t.Errorf("no envelope received on %q", event.Topic())
		}
	}
}

func TestNATSSubscriber_CancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("NewNATSSubscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAnalysisDeleted)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after cancel, got an envelope")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNATSSubscriber_DoubleCancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("NewNATSSubscriber: %v", err)
	}
	defer sub.Close()

	_, cancel, err := sub.Subscribe(TopicAnalysisDeleted)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancel()
	cancel()
}

func TestNATSSubscriber_CancelDuringDelivery(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("NewNATSSubscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicFixPlanned)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	stop := make(chan struct{})
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			event := FixPlanned{AnalysisID: "an-flood", FixID: fmt.Sprintf("fx-%d", i)}
			if err := pub.Publish(context.Background(), event); err != nil {
				return
			}
		}
	}()

	// Consume a few, then cancel mid-stream.
	for i := 0; i < 5; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			close(stop)
			t.Fatal("timed out waiting for envelopes")
		}
	}
	cancel()
	close(stop)

	// Drain until close; cancel must win even while messages flow.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel during delivery")
		}
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_ReconnectOptions(t *testing.T) {
	url := startTestNATS(t)

	reconnects := make(chan struct{}, 1)
	sub, err := NewNATSSubscriber(url, nats.ReconnectHandler(func(*nats.Conn) {
		select {
		case reconnects <- struct{}{}:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("NewNATSSubscriber with options: %v", err)
	}
	defer sub.Close()

	_, cancel, err := sub.Subscribe("seam.>")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()
}
