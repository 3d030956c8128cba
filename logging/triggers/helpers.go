package triggers

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// EventUnboxed is emitted when a container is opened into its units.
	EventUnboxed logging.EventType = "triggers.unboxed"
	// EventBlockPlaced is emitted when a custom item is placed as a block.
	EventBlockPlaced logging.EventType = "triggers.block_placed"
	// EventBlockDropped is emitted when a tracked block is broken.
	EventBlockDropped logging.EventType = "triggers.block_dropped"
)

// UnboxedPayload describes one unboxing.
type UnboxedPayload struct {
	Container string `json:"container"`
	Unit      string `json:"unit"`
	Count     int    `json:"count"`
	Leftover  int    `json:"leftover,omitempty"`
	Consumed  bool   `json:"consumed"`
}

// BlockPayload identifies a tracked block.
type BlockPayload struct {
	Item  string `json:"item"`
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	// Missing is set when the template no longer exists and the base block drops.
	Missing bool `json:"missing,omitempty"`
}

// Unboxed publishes an unboxing event.
func Unboxed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnboxedPayload, extra map[string]any) {
	publish(ctx, pub, EventUnboxed, logging.SeverityInfo, tick, actor, payload, extra)
}

// BlockPlaced publishes a block tracking event.
func BlockPlaced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BlockPayload, extra map[string]any) {
	publish(ctx, pub, EventBlockPlaced, logging.SeverityDebug, tick, actor, payload, extra)
}

// BlockDropped publishes a tracked block break. A missing template is a warning.
func BlockDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BlockPayload, extra map[string]any) {
	sev := logging.SeverityInfo
	if payload.Missing {
		sev = logging.SeverityWarn
	}
	publish(ctx, pub, EventBlockDropped, sev, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, sev logging.Severity, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: sev,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
