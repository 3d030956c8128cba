package loop

import (
	"sync"

	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
)

const (
	commandBufferOccupancyMetricKey = "loop_command_buffer_occupancy"
	commandBufferOverflowMetricKey  = "loop_command_buffer_overflow_total"
)

// CommandBuffer is a fixed-size FIFO ring. It is safe for concurrent
// producers and a single consumer.
type CommandBuffer struct {
	mu      sync.Mutex
	data    []Command
	head    int
	tail    int
	count   int
	metrics telemetry.Metrics
}

func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{
		data:    make([]Command, capacity),
		metrics: metrics,
	}
}

func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Push stages cmd, returning false when the ring is full.
func (b *CommandBuffer) Push(cmd Command) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.data) {
		if b.metrics != nil {
			b.metrics.Add(commandBufferOverflowMetricKey, 1)
		}
		return false
	}
	b.data[b.tail] = cmd
	b.tail = (b.tail + 1) % len(b.data)
	b.count++
	b.storeOccupancyLocked()
	return true
}

// Drain returns every staged command oldest first and empties the ring.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	out := make([]Command, b.count)
	for i := range out {
		out[i] = b.data[(b.head+i)%len(b.data)]
		b.data[(b.head+i)%len(b.data)] = Command{}
	}
	b.head, b.tail, b.count = 0, 0, 0
	b.storeOccupancyLocked()
	return out
}

func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *CommandBuffer) storeOccupancyLocked() {
	if b.metrics != nil {
		b.metrics.Store(commandBufferOccupancyMetricKey, uint64(b.count))
	}
}
