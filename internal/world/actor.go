// Package world holds the host-facing ports the item engine acts on (actors,
// blocks, cues) and an in-memory implementation used by the server and tests.
package world

import (
	"time"

	"github.com/google/uuid"
)

// ActorID identifies an actor for the lifetime of the process.
type ActorID = uuid.UUID

// NewActorID derives a stable id from a player name.
func NewActorID(name string) ActorID {
	return uuid.NewSHA1(actorNamespace, []byte(name))
}

var actorNamespace = uuid.MustParse("6f1c3c8e-7c53-4f0e-9b7a-1b6c1a0de6a1")

// EffectKind names a timed status effect.
type EffectKind string

const (
	EffectBlindness EffectKind = "blindness"
	EffectNausea    EffectKind = "nausea"
)

// Effect is a status applied to an actor for a duration.
type Effect struct {
	Kind     EffectKind    `json:"kind"`
	Duration time.Duration `json:"duration"`
}

// Actor is anything that can hold and use items.
type Actor interface {
	ID() ActorID
	Name() string
	Location() Location
	EyeLocation() Location
	Health() float64
	MaxHealth() float64
	SetHealth(float64)
	AddEffect(Effect)
	TeleportTo(Location)
	SendMessage(string)
	Creative() bool
	Inventory() *Inventory
}

// EyeHeight is the offset from an actor's feet to its eyes.
const EyeHeight = 1.62

// Player is the in-memory Actor.
type Player struct {
	id        ActorID
	name      string
	location  Location
	health    float64
	maxHealth float64
	creative  bool
	inventory *Inventory
	effects   []Effect
	messages  []string
}

// NewPlayer creates a survival-mode player at full health.
func NewPlayer(name string, at Location) *Player {
	return &Player{
		id:        NewActorID(name),
		name:      name,
		location:  at,
		health:    20,
		maxHealth: 20,
		inventory: NewInventory(DefaultInventorySize),
	}
}

func (p *Player) ID() ActorID           { return p.id }
func (p *Player) Name() string          { return p.name }
func (p *Player) Location() Location    { return p.location }
func (p *Player) Health() float64       { return p.health }
func (p *Player) MaxHealth() float64    { return p.maxHealth }
func (p *Player) Creative() bool        { return p.creative }
func (p *Player) Inventory() *Inventory { return p.inventory }

func (p *Player) EyeLocation() Location {
	return p.location.Add(Vec3{Y: EyeHeight})
}

// SetHealth clamps to [0, MaxHealth].
func (p *Player) SetHealth(h float64) {
	p.health = max(0, min(h, p.maxHealth))
}

func (p *Player) SetCreative(creative bool) {
	p.creative = creative
}

func (p *Player) AddEffect(e Effect) {
	p.effects = append(p.effects, e)
}

func (p *Player) Effects() []Effect {
	return append([]Effect(nil), p.effects...)
}

func (p *Player) TeleportTo(l Location) {
	p.location = l
}

// Look changes the view orientation in place.
func (p *Player) Look(yaw, pitch float64) {
	p.location.Yaw = yaw
	p.location.Pitch = max(-90, min(90, pitch))
}

func (p *Player) SendMessage(msg string) {
	p.messages = append(p.messages, msg)
}

// Messages returns and clears the pending chat lines.
func (p *Player) Messages() []string {
	out := p.messages
	p.messages = nil
	return out
}
