package recipes

import (
	"context"

	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// EventBundleRegistered is emitted when a pack/unpack pair is installed.
	EventBundleRegistered logging.EventType = "recipes.bundle_registered"
	// EventBundleSkipped is emitted when a bundle entry cannot be resolved.
	EventBundleSkipped logging.EventType = "recipes.bundle_skipped"
	// EventUnregistered is emitted when previously installed entries are removed.
	EventUnregistered logging.EventType = "recipes.unregistered"
	// EventAuthored is emitted when a new recipe is saved and installed.
	EventAuthored logging.EventType = "recipes.authored"
	// EventAuthorFailed is emitted when recipe authoring is rejected or cannot persist.
	EventAuthorFailed logging.EventType = "recipes.author_failed"
	// EventRecipeSkipped is emitted when a stored recipe cannot be rebuilt.
	EventRecipeSkipped logging.EventType = "recipes.recipe_skipped"
)

// BundleRegisteredPayload describes an installed bundle.
type BundleRegisteredPayload struct {
	Bundle    string `json:"bundle"`
	Container string `json:"container"`
	Unit      string `json:"unit"`
	Count     int    `json:"count"`
}

// BundleSkippedPayload explains why a bundle entry was ignored.
type BundleSkippedPayload struct {
	Bundle string `json:"bundle"`
	Reason string `json:"reason"`
}

// UnregisteredPayload counts removed crafting entries.
type UnregisteredPayload struct {
	Entries int `json:"entries"`
	Bundles int `json:"bundles"`
}

// AuthoredPayload describes a newly authored recipe.
type AuthoredPayload struct {
	Recipe string `json:"recipe"`
	Key    string `json:"key"`
	Shaped bool   `json:"shaped"`
	Output string `json:"output"`
	Amount int    `json:"amount"`
}

// AuthorFailedPayload explains an authoring failure.
type AuthorFailedPayload struct {
	Recipe string `json:"recipe"`
	Error  string `json:"error"`
}

// RecipeSkippedPayload explains why a stored recipe was ignored.
type RecipeSkippedPayload struct {
	Recipe string `json:"recipe"`
	Reason string `json:"reason"`
}

// BundleRegistered publishes a bundle installation event.
func BundleRegistered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BundleRegisteredPayload, extra map[string]any) {
	publish(ctx, pub, EventBundleRegistered, logging.SeverityInfo, tick, actor, payload, extra)
}

// BundleSkipped publishes a skipped-bundle warning.
func BundleSkipped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BundleSkippedPayload, extra map[string]any) {
	publish(ctx, pub, EventBundleSkipped, logging.SeverityWarn, tick, actor, payload, extra)
}

// Unregistered publishes a crafting-entry removal event.
func Unregistered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnregisteredPayload, extra map[string]any) {
	publish(ctx, pub, EventUnregistered, logging.SeverityInfo, tick, actor, payload, extra)
}

// Authored publishes a recipe authoring event.
func Authored(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AuthoredPayload, extra map[string]any) {
	publish(ctx, pub, EventAuthored, logging.SeverityInfo, tick, actor, payload, extra)
}

// AuthorFailed publishes a recipe authoring failure.
func AuthorFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AuthorFailedPayload, extra map[string]any) {
	publish(ctx, pub, EventAuthorFailed, logging.SeverityError, tick, actor, payload, extra)
}

// RecipeSkipped publishes a skipped stored recipe warning.
func RecipeSkipped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RecipeSkippedPayload, extra map[string]any) {
	publish(ctx, pub, EventRecipeSkipped, logging.SeverityWarn, tick, actor, payload, extra)
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
		Category: logging.CategoryCrafting,
		Payload:  payload,
		Extra:    extra,
	})
}
