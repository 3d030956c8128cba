package abilities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/WolfTailVale/ItemCreator/internal/config"
)

var (
	// ErrUnknownKind is returned by Instantiate for kinds with no constructor.
	ErrUnknownKind = errors.New("abilities: unknown ability kind")
	// ErrInvalidParameter is returned when a configured value is out of range.
	ErrInvalidParameter = errors.New("abilities: invalid parameter")
)

// Constructor builds an Ability from its configuration section. Sections are
// never nil; a kind configured with no parameters receives an empty one.
type Constructor func(cfg *config.Section) (Ability, error)

// Registry maps kinds to constructors. It is the only construction path.
type Registry struct {
	constructors map[Kind]Constructor
}

// NewRegistry returns a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[Kind]Constructor)}
	r.mustRegister(KindFlash, newFlash)
	r.mustRegister(KindHeal, newHeal)
	r.mustRegister(KindTeleport, newTeleport)
	return r
}

func (r *Registry) mustRegister(kind Kind, ctor Constructor) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

// Register associates kind with ctor, replacing any earlier constructor.
func (r *Registry) Register(kind Kind, ctor Constructor) error {
	kind = normalizeKind(string(kind))
	if kind == "" {
		return fmt.Errorf("abilities: register: empty kind")
	}
	if ctor == nil {
		return fmt.Errorf("abilities: register %s: nil constructor", kind)
	}
	r.constructors[kind] = ctor
	return nil
}

// Kinds lists registered kinds in lexical order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.constructors))
	for kind := range r.constructors {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Instantiate builds an ability of the named kind. Unknown kinds fail with
// ErrUnknownKind, naming the closest registered kind when one is near.
func (r *Registry) Instantiate(kind string, cfg *config.Section) (Ability, error) {
	normalized := normalizeKind(kind)
	ctor, ok := r.constructors[normalized]
	if !ok {
		if hint := r.suggest(normalized); hint != "" {
			return Ability{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownKind, kind, hint)
		}
		return Ability{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if cfg == nil {
		cfg = config.NewSection(string(normalized))
	}
	ability, err := ctor(cfg)
	if err != nil {
		return Ability{}, fmt.Errorf("abilities: build %s: %w", normalized, err)
	}
	ability.Kind = normalized
	if ability.Cooldown < 0 {
		ability.Cooldown = 0
	}
	if len(ability.Triggers) == 0 {
		ability.Triggers = append([]TriggerKind(nil), DefaultTriggers...)
	}
	if ability.Params == nil {
		return Ability{}, fmt.Errorf("abilities: build %s: constructor returned no params", normalized)
	}
	return ability, nil
}

func (r *Registry) suggest(kind Kind) string {
	best, bestDist := "", 3
	for candidate := range r.constructors {
		if d := levenshtein.ComputeDistance(string(kind), string(candidate)); d < bestDist {
			best, bestDist = string(candidate), d
		}
	}
	return best
}

func normalizeKind(kind string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(kind)))
}

// Seconds reads a duration written in seconds, falling back to def when the
// key is absent or not a number.
func Seconds(cfg *config.Section, key string, def time.Duration) time.Duration {
	v, ok := cfg.Number(key)
	if !ok {
		return def
	}
	return time.Duration(v * float64(time.Second))
}

// FirstNumber returns the first key present as a number.
func FirstNumber(cfg *config.Section, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := cfg.Number(key); ok {
			return v
		}
	}
	return def
}

// Triggers reads the optional "triggers" list.
func Triggers(cfg *config.Section) []TriggerKind {
	names := cfg.StringList("triggers")
	if len(names) == 0 {
		return nil
	}
	out := make([]TriggerKind, 0, len(names))
	for _, name := range names {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			out = append(out, TriggerKind(name))
		}
	}
	return out
}

const (
	defaultFlashRange       = 10.0
	defaultFlashDuration    = 5 * time.Second
	defaultFlashCooldown    = 3 * time.Second
	defaultHealAmount       = 4.0
	defaultHealCooldown     = 10 * time.Second
	defaultTeleportDistance = 5.0
	defaultTeleportCooldown = 5 * time.Second
)

func newFlash(cfg *config.Section) (Ability, error) {
	rng := cfg.Float("range", defaultFlashRange)
	if rng < 0 {
		return Ability{}, fmt.Errorf("%w: range %v", ErrInvalidParameter, rng)
	}
	durationKey := "blindness-duration"
	if cfg.Has("duration") {
		durationKey = "duration"
	}
	duration := Seconds(cfg, durationKey, defaultFlashDuration)
	if duration < 0 {
		return Ability{}, fmt.Errorf("%w: duration %s", ErrInvalidParameter, duration)
	}
	return Ability{
		Cooldown: Seconds(cfg, "cooldown", defaultFlashCooldown),
		Triggers: Triggers(cfg),
		Params:   FlashParams{Range: rng, Duration: duration},
	}, nil
}

func newHeal(cfg *config.Section) (Ability, error) {
	amount := FirstNumber(cfg, defaultHealAmount, "heal", "amount", "heal-amount")
	if amount < 0 {
		return Ability{}, fmt.Errorf("%w: heal %v", ErrInvalidParameter, amount)
	}
	return Ability{
		Cooldown: Seconds(cfg, "cooldown", defaultHealCooldown),
		Triggers: Triggers(cfg),
		Params:   HealParams{Amount: amount},
	}, nil
}

func newTeleport(cfg *config.Section) (Ability, error) {
	distance := cfg.Float("distance", defaultTeleportDistance)
	if distance < 0 {
		return Ability{}, fmt.Errorf("%w: distance %v", ErrInvalidParameter, distance)
	}
	return Ability{
		Cooldown: Seconds(cfg, "cooldown", defaultTeleportCooldown),
		Triggers: Triggers(cfg),
		Params:   TeleportParams{Distance: distance},
	}, nil
}
