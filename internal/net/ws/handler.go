// Package ws serves the player websocket: it joins the player, streams hub
// updates, and stages each client message as a loop command.
package ws

import (
	"context"
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"github.com/WolfTailVale/ItemCreator/internal/loop"
	"github.com/WolfTailVale/ItemCreator/internal/server"
	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/internal/world"
)

// Hub is the part of server.Hub a session needs.
type Hub interface {
	Join(ctx context.Context, name string) *world.Player
	Leave(ctx context.Context, name, reason string) bool
	Subscribe(name string) (*server.Subscriber, error)
	Unsubscribe(sub *server.Subscriber)
}

// Enqueuer stages commands for the next tick.
type Enqueuer interface {
	Enqueue(cmd loop.Command) (bool, string)
}

type HandlerConfig struct {
	Logger telemetry.Logger
}

type Handler struct {
	hub      Hub
	loop     Enqueuer
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub Hub, enqueuer Enqueuer, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	return &Handler{
		hub:    hub,
		loop:   enqueuer,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and runs the session until the client leaves.
// The player name comes from the "name" query parameter.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		nethttp.Error(w, "missing name", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", name, err)
		return
	}
	defer conn.Close()

	ctx := context.Background()
	player := h.hub.Join(ctx, name)
	sub, err := h.hub.Subscribe(name)
	if err != nil {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
		conn.WriteMessage(websocket.CloseMessage, message)
		return
	}

	sess := &session{conn: conn}
	done := make(chan struct{})
	go h.pump(sess, sub, done)

	h.read(conn, sess, player.ID().String(), name)

	h.hub.Unsubscribe(sub)
	<-done
	h.hub.Leave(ctx, name, "disconnected")
}

func (h *Handler) pump(sess *session, sub *server.Subscriber, done chan<- struct{}) {
	defer close(done)
	for update := range sub.Updates() {
		if err := sess.WriteJSON(update); err != nil {
			return
		}
	}
}

func (h *Handler) read(conn *websocket.Conn, sess *session, actorID, name string) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", name, err)
			continue
		}

		seq := uint64(0)
		if msg.CommandSeq != nil {
			seq = *msg.CommandSeq
		}
		if seq > 0 {
			if last := sess.LastCommandSeq(); last > 0 && seq <= last {
				if sess.WriteJSON(commandAckMessage{Ver: ProtocolVersion, Type: "commandAck", Seq: seq}) != nil {
					return
				}
				continue
			}
		}

		cmd, reason := msg.command(actorID)
		ok := reason == ""
		if ok {
			ok, reason = h.loop.Enqueue(cmd)
		}
		if !ok && reason == RejectUnknownType {
			h.logger.Printf("unknown message type %q from %s", msg.Type, name)
		}
		if seq == 0 {
			continue
		}

		var reply any
		if ok {
			reply = commandAckMessage{Ver: ProtocolVersion, Type: "commandAck", Seq: seq}
		} else {
			reply = commandRejectMessage{
				Ver:    ProtocolVersion,
				Type:   "commandReject",
				Seq:    seq,
				Reason: reason,
				Retry:  reason == loop.RejectQueueLimit,
			}
		}
		if sess.WriteJSON(reply) != nil {
			return
		}
		if ok {
			sess.StoreLastCommandSeq(seq)
		}
	}
}
