package server

import (
	"sync"

	"github.com/WolfTailVale/ItemCreator/internal/world"
)

// Update is one message pushed to a connected player after a tick.
type Update struct {
	Type     string      `json:"type"`
	Tick     uint64      `json:"tick"`
	Player   PlayerView  `json:"player"`
	Messages []string    `json:"messages,omitempty"`
	Cues     []world.Cue `json:"cues,omitempty"`
}

// Subscriber receives updates for one player. Updates are dropped when the
// receiver falls more than outboxSize behind.
type Subscriber struct {
	id   world.ActorID
	out  chan Update
	once sync.Once
}

// Updates is closed when the player leaves or resubscribes.
func (s *Subscriber) Updates() <-chan Update {
	return s.out
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.out) })
}

func (s *Subscriber) offer(u Update) bool {
	select {
	case s.out <- u:
		return true
	default:
		return false
	}
}

// Subscribe attaches an update stream to a joined player, replacing any
// earlier stream. The first update carries the current state.
func (h *Hub) Subscribe(name string) (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.playerLocked(name)
	if err != nil {
		return nil, err
	}
	if existing, ok := h.subscribers[p.ID()]; ok {
		existing.close()
	}
	sub := &Subscriber{id: p.ID(), out: make(chan Update, outboxSize)}
	h.subscribers[p.ID()] = sub
	sub.offer(Update{Type: "state", Tick: h.Tick(), Player: h.playerViewLocked(p), Messages: p.Messages()})
	return sub, nil
}

// Unsubscribe detaches sub if it is still the player's current stream.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.subscribers[sub.id]; ok && current == sub {
		delete(h.subscribers, sub.id)
	}
	sub.close()
}

// flushLocked sends state to players touched this tick and broadcasts cues.
func (h *Hub) flushLocked(tick uint64) {
	cues := h.world.DrainCues()
	for id, sub := range h.subscribers {
		p, ok := h.world.Player(id)
		if !ok {
			continue
		}
		_, dirty := h.dirty[id]
		if !dirty && len(cues) == 0 {
			continue
		}
		update := Update{Type: "state", Tick: tick, Player: h.playerViewLocked(p), Messages: p.Messages(), Cues: cues}
		if !sub.offer(update) && h.metrics != nil {
			h.metrics.Add("hub_updates_dropped_total", 1)
		}
	}
	clear(h.dirty)
}
