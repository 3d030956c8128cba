package loop

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/logging"
)

func TestCommandBufferWraparound(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)
	if buffer.Capacity() != 3 {
		t.Fatalf("expected capacity 3, got %d", buffer.Capacity())
	}
	cmds := []Command{{ActorID: "a"}, {ActorID: "b"}, {ActorID: "c"}}
	for _, cmd := range cmds {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed for %+v", cmd)
		}
	}
	if buffer.Push(Command{ActorID: "overflow"}) {
		t.Fatalf("expected push to fail when buffer full")
	}
	drained := buffer.Drain()
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.ActorID != cmds[i].ActorID {
			t.Fatalf("expected drain order %v, got %v", cmds[i].ActorID, cmd.ActorID)
		}
	}
	for _, cmd := range []Command{{ActorID: "d"}, {ActorID: "e"}} {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed after drain for %+v", cmd)
		}
	}
	wrapped := buffer.Drain()
	if len(wrapped) != 2 || wrapped[0].ActorID != "d" || wrapped[1].ActorID != "e" {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
	if buffer.Drain() != nil {
		t.Fatalf("expected empty drain to return nil")
	}
}

func TestCommandBufferMetrics(t *testing.T) {
	metrics := &logging.Metrics{}
	buffer := NewCommandBuffer(1, telemetry.WrapMetrics(metrics))
	buffer.Push(Command{ActorID: "one"})
	buffer.Push(Command{ActorID: "two"})

	snapshot := metrics.Snapshot()
	if snapshot[commandBufferOverflowMetricKey] != 1 {
		t.Fatalf("expected one overflow, got %d", snapshot[commandBufferOverflowMetricKey])
	}
	if snapshot[commandBufferOccupancyMetricKey] != 1 {
		t.Fatalf("expected occupancy 1, got %d", snapshot[commandBufferOccupancyMetricKey])
	}
}

type recordingCore struct {
	mu    sync.Mutex
	ticks []uint64
	seen  [][]Command
}

func (c *recordingCore) Apply(tick uint64, cmds []Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = append(c.ticks, tick)
	c.seen = append(c.seen, cmds)
}

func TestLoopAdvanceDrainsInOrder(t *testing.T) {
	core := &recordingCore{}
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(core, Config{CommandCapacity: 8}, Deps{Clock: logging.ClockFunc(func() time.Time { return fixed })}, Hooks{})

	l.Enqueue(Command{ActorID: "a", Type: CommandUse})
	l.Enqueue(Command{ActorID: "b", Type: CommandGive})
	if l.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", l.Pending())
	}

	result := l.Advance(fixed)
	if result.Tick != 1 || len(result.Commands) != 2 {
		t.Fatalf("unexpected step result %+v", result)
	}
	if result.Commands[0].Type != CommandUse || result.Commands[1].Type != CommandGive {
		t.Fatalf("expected FIFO order, got %+v", result.Commands)
	}
	if !result.Commands[0].IssuedAt.Equal(fixed) {
		t.Fatalf("expected IssuedAt to be stamped")
	}
	if l.Tick() != 1 || l.Pending() != 0 {
		t.Fatalf("expected tick 1 and nothing pending, got %d/%d", l.Tick(), l.Pending())
	}

	l.Enqueue(Command{ActorID: "a"})
	l.Advance(fixed)
	if core.ticks[1] != 2 || core.seen[1][0].OriginTick != 1 {
		t.Fatalf("expected second tick to carry origin tick 1, got %+v", core.seen[1])
	}
}

func TestLoopPerActorLimit(t *testing.T) {
	var drops []string
	var logged []string
	l := New(&recordingCore{}, Config{CommandCapacity: 16, PerActorLimit: 2}, Deps{
		Logger: telemetry.LoggerFunc(func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) }),
	}, Hooks{
		OnCommandDrop: func(reason string, cmd Command) { drops = append(drops, reason) },
	})

	for i := 0; i < 3; i++ {
		l.Enqueue(Command{ActorID: "spammer"})
	}
	if ok, reason := l.Enqueue(Command{ActorID: "polite"}); !ok || reason != "" {
		t.Fatalf("expected other actors to be unaffected, got %v %q", ok, reason)
	}
	if len(drops) != 1 || drops[0] != RejectQueueLimit {
		t.Fatalf("expected one queue_limit drop, got %v", drops)
	}
	if len(logged) != 1 {
		t.Fatalf("expected first drop to be logged, got %v", logged)
	}

	l.Advance(time.Now())
	if ok, _ := l.Enqueue(Command{ActorID: "spammer"}); !ok {
		t.Fatalf("expected limit to reset after a tick")
	}
}

func TestLoopQueueFull(t *testing.T) {
	l := New(&recordingCore{}, Config{CommandCapacity: 1}, Deps{}, Hooks{})
	l.Enqueue(Command{ActorID: "a"})
	if ok, reason := l.Enqueue(Command{ActorID: "b"}); ok || reason != RejectQueueFull {
		t.Fatalf("expected queue_full, got %v %q", ok, reason)
	}
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	core := &recordingCore{}
	l := New(core, Config{TickRate: 200, CommandCapacity: 4}, Deps{}, Hooks{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for l.Tick() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected the loop to tick")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return after cancel")
	}
}
