package lifecycle

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// EventPlayerJoined is emitted when a player joins the world.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when a player leaves the world.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventReloaded is emitted after configuration, templates and recipes are rebuilt.
	EventReloaded logging.EventType = "lifecycle.reloaded"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	Name   string  `json:"name"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

// PlayerDisconnectedPayload captures the reason a player left.
type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// ReloadedPayload summarises a reload.
type ReloadedPayload struct {
	Templates int    `json:"templates"`
	Bundles   int    `json:"bundles"`
	Recipes   int    `json:"recipes"`
	Error     string `json:"error,omitempty"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// Reloaded publishes a reload event. A non-empty error raises the severity.
func Reloaded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReloadedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	sev := logging.SeverityInfo
	if payload.Error != "" {
		sev = logging.SeverityError
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReloaded,
		Tick:     tick,
		Actor:    actor,
		Severity: sev,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}
