package catalog

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// EventLoaded is emitted after the template registry is rebuilt.
	EventLoaded logging.EventType = "catalog.loaded"
	// EventMaterialFallback is emitted when an item names an unknown material.
	EventMaterialFallback logging.EventType = "catalog.material_fallback"
)

// LoadedPayload summarises a registry rebuild.
type LoadedPayload struct {
	Templates int `json:"templates"`
	Abilities int `json:"abilities"`
	Dropped   int `json:"dropped,omitempty"`
}

// MaterialFallbackPayload records the substitution made for one item.
type MaterialFallbackPayload struct {
	Item       string `json:"item"`
	Requested  string `json:"requested"`
	Fallback   string `json:"fallback"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Loaded publishes a registry rebuild event.
func Loaded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoaded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	})
}

// MaterialFallback publishes a material substitution warning.
func MaterialFallback(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MaterialFallbackPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMaterialFallback,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
		Extra:    extra,
	})
}
