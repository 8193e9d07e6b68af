package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loomworks/seam/internal/events"
)

const (
	// sseReplayLogSize bounds the in-memory replay log that backs
	// Last-Event-ID reconnection.
	sseReplayLogSize = 1000

	// sseKeepaliveInterval is how often keepalive comments are sent to
	// prevent connection timeouts.
	sseKeepaliveInterval = 15 * time.Second
)

// sseEvent is one event as delivered to stream clients: a sequence
// number for resume, the subject, the analysis it concerns (empty for
// uncorrelated events), and the encoded payload.
type sseEvent struct {
	ID       uint64
	Topic    string
	Analysis string
	Data     []byte
}

// streamFilter selects which events a stream client receives. Both
// dimensions apply to live delivery and to Last-Event-ID replay.
type streamFilter struct {
	topics   []string // subject patterns, NATS wildcards; empty matches all
	analysis string   // only events for this analysis ID; empty matches all
}

func (f streamFilter) matches(evt *sseEvent) bool {
	if f.analysis != "" && evt.Analysis != f.analysis {
		return false
	}
	if len(f.topics) == 0 {
		return true
	}
	for _, pattern := range f.topics {
		if matchTopicPattern(pattern, evt.Topic) {
			return true
		}
	}
	return false
}

// sseClient is one connected stream consumer.
type sseClient struct {
	key    uint64
	filter streamFilter
	ch     chan *sseEvent
}

// sseHub fans analysis lifecycle events out to connected stream clients
// and keeps a bounded replay log so a client reconnecting with
// Last-Event-ID can catch up on what it missed.
type sseHub struct {
	mu      sync.Mutex
	seq     uint64
	nextKey uint64
	clients map[uint64]*sseClient
	log     []sseEvent // grows to sseReplayLogSize, then wraps
	oldest  int        // index of the oldest entry once wrapped
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[uint64]*sseClient)}
}

// broadcast assigns the next sequence number, records the event in the
// replay log, and delivers it to every client whose filter matches.
// Slow clients lose events rather than stalling delivery.
func (h *sseHub) broadcast(topic, analysis string, payload []byte) {
	h.mu.Lock()
	h.seq++
	evt := sseEvent{ID: h.seq, Topic: topic, Analysis: analysis, Data: payload}
	if len(h.log) < sseReplayLogSize {
		h.log = append(h.log, evt)
	} else {
		h.log[h.oldest] = evt
		h.oldest = (h.oldest + 1) % sseReplayLogSize
	}
	receivers := make([]*sseClient, 0, len(h.clients))
	for _, c := range h.clients {
		receivers = append(receivers, c)
	}
	h.mu.Unlock()

	for _, c := range receivers {
		if !c.filter.matches(&evt) {
			continue
		}
		select {
		case c.ch <- &evt:
		default:
		}
	}
}

// subscribe registers a stream client. Call unsubscribe when done.
func (h *sseHub) subscribe(f streamFilter) *sseClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextKey++
	c := &sseClient{key: h.nextKey, filter: f, ch: make(chan *sseEvent, 64)}
	h.clients[c.key] = c
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.key)
}

// replay returns logged events with ID > afterID that pass the filter,
// oldest first. Events older than the log window are gone.
func (h *sseHub) replay(afterID uint64, f streamFilter) []sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []sseEvent
	for i := 0; i < len(h.log); i++ {
		evt := h.log[(h.oldest+i)%len(h.log)]
		if evt.ID > afterID && f.matches(&evt) {
			out = append(out, evt)
		}
	}
	return out
}

// matchTopicPattern matches a dot-separated subject against a pattern
// using NATS wildcard rules: "*" matches exactly one token, ">" matches
// one or more trailing tokens.
func matchTopicPattern(pattern, topic string) bool {
	pat := strings.Split(pattern, ".")
	top := strings.Split(topic, ".")
	for i := range pat {
		switch {
		case pat[i] == ">":
			return len(top) > i
		case i >= len(top):
			return false
		case pat[i] != "*" && pat[i] != top[i]:
			return false
		}
	}
	return len(pat) == len(top)
}

// handleEventStream handles GET /v1/events/stream (SSE endpoint).
// ?topics=a,b filters by subject pattern; ?analysis=an-... narrows the
// stream to one analysis. Filters also apply to Last-Event-ID replay.
func (s *SeamServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	filter := streamFilter{analysis: r.URL.Query().Get("analysis")}
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.topics = append(filter.topics, t)
			}
		}
	}

	client := s.sseHub.subscribe(filter)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastID, err := strconv.ParseUint(lastIDStr, 10, 64); err == nil {
			for _, evt := range s.sseHub.replay(lastID, filter) {
				writeSSEEvent(w, &evt)
			}
			flusher.Flush()
		}
	}

	ctx := r.Context()
	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			// Comment line as keepalive.
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single SSE event to the writer.
func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.ID)
	fmt.Fprintf(w, "event:%s\n", evt.Topic)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}

// broadcastEvent fans one lifecycle event out to stream clients. The
// analysis ID is lifted off the event so per-analysis filters never
// need to decode payloads.
func (s *SeamServer) broadcastEvent(event events.Event) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event for SSE broadcast", "topic", event.Topic(), "error", err)
		return
	}
	var analysis string
	if c, ok := event.(events.Correlated); ok {
		analysis = c.Analysis()
	}
	s.sseHub.broadcast(event.Topic(), analysis, payload)
}
