package events

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestNoopPublisher_Publish(t *testing.T) {
	pub := &NoopPublisher{}
	err := pub.Publish(context.Background(), AnalysisCompleted{AnalysisID: "an-noop"})
	if err != nil {
		t.Fatalf("NoopPublisher.Publish returned unexpected error: %v", err)
	}
}

func TestNoopPublisher_Close(t *testing.T) {
	pub := &NoopPublisher{}
	if err := pub.Close(); err != nil {
		t.Fatalf("NoopPublisher.Close returned unexpected error: %v", err)
	}
}

func TestNoopPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
}

func TestEventTopics(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{AnalysisSubmitted{}, "seam.analysis.submitted"},
		{AnalysisCompleted{}, "seam.analysis.completed"},
		{AnalysisFailed{}, "seam.analysis.failed"},
		{AnalysisDeleted{}, "seam.analysis.deleted"},
		{FixPlanned{}, "seam.fix.planned"},
	}
	for _, tt := range tests {
		if got := tt.event.Topic(); got != tt.want {
			t.Errorf("Topic() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventAnalysisCorrelation(t *testing.T) {
	tests := []struct {
		name  string
		event Correlated
		want  string
	}{
		{"completed", AnalysisCompleted{AnalysisID: "an-c1"}, "an-c1"},
		{"failed", AnalysisFailed{AnalysisID: "an-f1"}, "an-f1"},
		{"deleted", AnalysisDeleted{AnalysisID: "an-d1"}, "an-d1"},
		{"fix", FixPlanned{AnalysisID: "an-x1", FixID: "fx-1"}, "an-x1"},
		{"submitted without id", AnalysisSubmitted{Actor: "alice"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Analysis(); got != tt.want {
				t.Errorf("Analysis() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvelopeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"submitted", AnalysisSubmitted{Actor: "alice", Components: 4, Missing: 2}},
		{"completed", AnalysisCompleted{AnalysisID: "an-dec1", Components: 4, Fixes: 1}},
		{"failed", AnalysisFailed{AnalysisID: "an-dec2", Error: "store unavailable"}},
		{"deleted", AnalysisDeleted{AnalysisID: "an-dec3"}},
		{"fix planned", FixPlanned{AnalysisID: "an-dec4", FixID: "fx-dec4", File: "main.x", Line: 3, Plan: "provide(Db)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			env := Envelope{Topic: tt.event.Topic(), Data: data}
			got, err := env.Decode()
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Topic() != tt.event.Topic() {
				t.Errorf("decoded topic = %q, want %q", got.Topic(), tt.event.Topic())
			}
		})
	}
}

func TestEnvelopeDecode_Fields(t *testing.T) {
	src := FixPlanned{
		AnalysisID: "an-fld1",
		FixID:      "fx-fld1",
		File:       "cmd/app/main.x",
		Line:       12,
		Plan:       "merge(provide(PgDb), provide(Redis))",
		Components: []string{"PgDb", "Redis"},
	}
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Envelope{Topic: TopicFixPlanned, Data: data}.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fix, ok := got.(*FixPlanned)
	if !ok {
		t.Fatalf("decoded type = %T, want *FixPlanned", got)
	}
	if fix.AnalysisID != src.AnalysisID || fix.FixID != src.FixID || fix.File != src.File || fix.Line != src.Line {
		t.Errorf("decoded fix = %+v, want %+v", fix, src)
	}
	if fix.Plan != src.Plan || len(fix.Components) != 2 {
		t.Errorf("decoded plan = %q components = %v", fix.Plan, fix.Components)
	}
}

func TestEnvelopeDecode_UnknownSubject(t *testing.T) {
	_, err := Envelope{Topic: "seam.unknown.thing", Data: []byte(`{}`)}.Decode()
	if err == nil {
		t.Fatal("expected error for unknown subject")
	}
	if !strings.Contains(err.Error(), "seam.unknown.thing") {
		t.Errorf("error %q should name the subject", err)
	}
}

func TestEnvelopeDecode_MalformedPayload(t *testing.T) {
	_, err := Envelope{Topic: TopicAnalysisCompleted, Data: []byte(`{`)}.Decode()
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNATSPublisher_PublishesToEventSubject(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("nats.Connect: %v", err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 1)
	if _, err := nc.ChanSubscribe(TopicAnalysisCompleted, msgs); err != nil {
		t.Fatalf("ChanSubscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	event := AnalysisCompleted{AnalysisID: "an-pub1", Components: 3, Fixes: 1}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Subject != TopicAnalysisCompleted {
			t.Errorf("subject = %q, want %q", msg.Subject, TopicAnalysisCompleted)
		}
		var got AnalysisCompleted
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if got.AnalysisID != "an-pub1" || got.Fixes != 1 {
			t.Errorf("payload = %+v, want %+v", got, event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestNATSPublisher_SubjectPerEventType(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("nats.Connect: %v", err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 8)
	if _, err := nc.ChanSubscribe("seam.>", msgs); err != nil {
		t.Fatalf("ChanSubscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	published := []Event{
		AnalysisSubmitted{Actor: "alice"},
		AnalysisCompleted{AnalysisID: "an-multi"},
		FixPlanned{AnalysisID: "an-multi", FixID: "fx-multi"},
		AnalysisDeleted{AnalysisID: "an-multi"},
	}
	for _, event := range published {
		if err := pub.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish(%s): %v", event.Topic(), err)
		}
	}

	got := make(map[string]bool)
	for range published {
		select {
		case msg := <-msgs:
			got[msg.Subject] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out; received subjects so far: %v", got)
		}
	}
	for _, event := range published {
		if !got[event.Topic()] {
			t.Errorf("no message received on %q", event.Topic())
		}
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, AnalysisDeleted{AnalysisID: "an-ctx"}); err == nil {
		t.Fatal("expected error publishing with cancelled context")
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("NewNATSPublisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Publish(context.Background(), AnalysisDeleted{AnalysisID: "an-closed"}); err == nil {
		t.Fatal("expected error publishing after Close")
	}
}
