package abilities

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// EventExecuted is emitted after an ability effect completes.
	EventExecuted logging.EventType = "ability.executed"
	// EventFailed is emitted when an ability effect reports an error or panics.
	EventFailed logging.EventType = "ability.failed"
	// EventConstructionFailed is emitted when a configured ability cannot be built.
	EventConstructionFailed logging.EventType = "ability.construction_failed"
)

// ExecutedPayload describes a completed activation.
type ExecutedPayload struct {
	Kind       string `json:"kind"`
	Item       string `json:"item,omitempty"`
	Trigger    string `json:"trigger"`
	CooldownMs int64  `json:"cooldownMs,omitempty"`
}

// FailedPayload describes a failed activation.
type FailedPayload struct {
	Kind    string `json:"kind"`
	Item    string `json:"item,omitempty"`
	Trigger string `json:"trigger"`
	Error   string `json:"error"`
}

// ConstructionFailedPayload identifies the configuration entry that was dropped.
type ConstructionFailedPayload struct {
	Item  string `json:"item"`
	Key   string `json:"key"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error"`
}

// Executed publishes an ability execution event.
func Executed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExecutedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExecuted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// Failed publishes an ability failure event.
func Failed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// ConstructionFailed publishes a dropped-ability event.
func ConstructionFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ConstructionFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConstructionFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	})
}
