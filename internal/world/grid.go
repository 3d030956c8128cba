package world

import (
	"sort"

	"github.com/WolfTailVale/ItemCreator/internal/items"
)

// CueKind separates sounds from particle bursts.
type CueKind string

const (
	CueSound    CueKind = "sound"
	CueParticle CueKind = "particle"
)

// Cue is a cosmetic sound or particle effect. The core never reads cues back.
type Cue struct {
	Kind CueKind  `json:"kind"`
	Name string   `json:"name"`
	At   Location `json:"at"`
}

// World is what abilities may observe and change beyond the triggering actor.
type World interface {
	Actors() []Actor
	IsSolid(BlockPos) bool
	Emit(Cue)
}

// Grid is a sparse in-memory block world. Unset cells are air.
type Grid struct {
	name    string
	blocks  map[BlockPos]items.Material
	players map[ActorID]*Player
	cues    []Cue
	maxCues int
}

func NewGrid(name string) *Grid {
	return &Grid{
		name:    name,
		blocks:  make(map[BlockPos]items.Material),
		players: make(map[ActorID]*Player),
		maxCues: 256,
	}
}

func (g *Grid) Name() string {
	return g.name
}

func (g *Grid) SetBlock(p BlockPos, m items.Material) {
	if m.IsAir() {
		delete(g.blocks, p)
		return
	}
	g.blocks[p] = m
}

func (g *Grid) Block(p BlockPos) items.Material {
	if m, ok := g.blocks[p]; ok {
		return m
	}
	return items.MustMaterial(items.MaterialAir)
}

func (g *Grid) IsSolid(p BlockPos) bool {
	return g.Block(p).Solid
}

// Fill sets every block in the inclusive box between a and b.
func (g *Grid) Fill(a, b BlockPos, m items.Material) {
	for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
				g.SetBlock(BlockPos{x, y, z}, m)
			}
		}
	}
}

// Join adds a player, placing it in this world.
func (g *Grid) Join(p *Player) {
	p.location.World = g.name
	g.players[p.id] = p
}

func (g *Grid) Leave(id ActorID) (*Player, bool) {
	p, ok := g.players[id]
	if ok {
		delete(g.players, id)
	}
	return p, ok
}

func (g *Grid) Player(id ActorID) (*Player, bool) {
	p, ok := g.players[id]
	return p, ok
}

// PlayerByName finds an online player by name.
func (g *Grid) PlayerByName(name string) (*Player, bool) {
	for _, p := range g.players {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Actors lists online players ordered by name.
func (g *Grid) Actors() []Actor {
	players := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].name < players[j].name })
	out := make([]Actor, len(players))
	for i, p := range players {
		out[i] = p
	}
	return out
}

// Emit records a cue, keeping only the most recent ones.
func (g *Grid) Emit(c Cue) {
	g.cues = append(g.cues, c)
	if over := len(g.cues) - g.maxCues; over > 0 {
		g.cues = append(g.cues[:0], g.cues[over:]...)
	}
}

// DrainCues returns and clears recorded cues.
func (g *Grid) DrainCues() []Cue {
	out := g.cues
	g.cues = nil
	return out
}
