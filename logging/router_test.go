package logging

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *recordingSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestRouterForwardsAndFilters(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	sink := &recordingSink{}
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityInfo
	cfg.Fields = map[string]any{"service": "itemcreator"}
	metrics := &Metrics{}

	router, err := NewRouterWithMetrics(ClockFunc(func() time.Time { return fixed }), cfg, []NamedSink{{Name: "rec", Sink: sink}}, metrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	router.Publish(context.Background(), Event{Type: "debug.skip", Severity: SeverityDebug})
	router.Publish(context.Background(), Event{Type: "ability.executed", Severity: SeverityInfo, Actor: PlayerRef("p1")})
	router.Publish(context.Background(), Event{Severity: SeverityError})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events := sink.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != "ability.executed" {
		t.Fatalf("expected ability.executed, got %s", events[0].Type)
	}
	if !events[0].Time.Equal(fixed) {
		t.Fatalf("expected router clock to stamp time, got %v", events[0].Time)
	}
	if events[0].Extra["service"] != "itemcreator" {
		t.Fatalf("expected router fields to be merged, got %v", events[0].Extra)
	}
	if !sink.closed {
		t.Fatalf("expected sink to be closed")
	}
	if got := router.Stats().EventsTotal; got != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", got)
	}
	if got := metrics.Snapshot()[MetricEventsTotal]; got != 1 {
		t.Fatalf("expected metrics to mirror forwarded events, got %d", got)
	}
	if router.Sink("rec") != sink {
		t.Fatalf("expected sink lookup by name")
	}
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	sink := &recordingSink{}
	router, _ := NewRouter(nil, DefaultConfig(), []NamedSink{{Name: "rec", Sink: sink}})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	router.Publish(context.Background(), Event{Type: "late", Severity: SeverityError})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("expected second close to be a no-op, got %v", err)
	}
	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("expected no events after close, got %d", got)
	}
}

func TestWithFieldsKeepsExistingExtra(t *testing.T) {
	var got Event
	base := PublisherFunc(func(_ context.Context, event Event) { got = event })
	pub := WithFields(base, map[string]any{"source": "hub", "tick": 9})

	pub.Publish(context.Background(), Event{Type: "x", Extra: map[string]any{"tick": 1}})

	if got.Extra["source"] != "hub" {
		t.Fatalf("expected source field, got %v", got.Extra)
	}
	if got.Extra["tick"] != 1 {
		t.Fatalf("expected event extra to win over fields, got %v", got.Extra["tick"])
	}
	if WithFields(nil, nil) == nil {
		t.Fatalf("expected nop publisher for nil base")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"debug":   SeverityDebug,
		"WARN":    SeverityWarn,
		"warning": SeverityWarn,
		"error":   SeverityError,
		"":        SeverityInfo,
		"bogus":   SeverityInfo,
	}
	for input, want := range cases {
		if got := ParseSeverity(input); got != want {
			t.Fatalf("expected %q to parse as %s, got %s", input, want, got)
		}
	}
}
