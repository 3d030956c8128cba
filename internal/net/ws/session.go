package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/WolfTailVale/ItemCreator/internal/loop"
)

// ProtocolVersion is stamped on every server message.
const ProtocolVersion = 1

const (
	RejectUnknownType = "unknown_type"
	RejectInvalid     = "invalid_payload"
)

type clientMessage struct {
	Ver        int            `json:"ver,omitempty"`
	Type       string         `json:"type"`
	CommandSeq *uint64        `json:"seq,omitempty"`
	Item       string         `json:"item,omitempty"`
	Amount     int            `json:"amount,omitempty"`
	OffHand    bool           `json:"offHand,omitempty"`
	Block      *loop.BlockRef `json:"block,omitempty"`
	Yaw        float64        `json:"yaw"`
	Pitch      float64        `json:"pitch"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Z          float64        `json:"z"`
	Slot       int            `json:"slot"`
	Slots      *[9]int        `json:"slots,omitempty"`
}

type commandAckMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Tick uint64 `json:"tick,omitempty"`
}

type commandRejectMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// command converts a client message into a loop command. It reports a reject
// reason when the message cannot be staged.
func (m clientMessage) command(actorID string) (loop.Command, string) {
	cmd := loop.Command{ActorID: actorID, Type: loop.CommandType(m.Type)}
	switch cmd.Type {
	case loop.CommandUse:
		cmd.Use = &loop.UseCommand{OffHand: m.OffHand, Block: m.Block}
	case loop.CommandGive:
		if m.Item == "" {
			return cmd, RejectInvalid
		}
		cmd.Give = &loop.GiveCommand{Item: m.Item, Amount: m.Amount}
	case loop.CommandLook:
		cmd.Look = &loop.LookCommand{Yaw: m.Yaw, Pitch: m.Pitch}
	case loop.CommandMove:
		cmd.Move = &loop.MoveCommand{X: m.X, Y: m.Y, Z: m.Z}
	case loop.CommandSelect:
		cmd.Select = &loop.SelectCommand{Slot: m.Slot}
	case loop.CommandPlace, loop.CommandBreak:
		if m.Block == nil {
			return cmd, RejectInvalid
		}
		cmd.Block = m.Block
	case loop.CommandCraft:
		if m.Slots == nil {
			return cmd, RejectInvalid
		}
		cmd.Craft = &loop.CraftCommand{Slots: *m.Slots}
	default:
		return cmd, RejectUnknownType
	}
	return cmd, ""
}

// session serializes writes to one connection and remembers the last
// acknowledged command sequence.
type session struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	lastSeq uint64
}

func (s *session) WriteJSON(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) LastCommandSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

func (s *session) StoreLastCommandSeq(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq = seq
}
