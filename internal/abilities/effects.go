package abilities

import (
	"fmt"
	"math"

	"github.com/WolfTailVale/ItemCreator/internal/world"
)

// flashCone is the half-angle of the view cone inside which a flash blinds.
const flashCone = math.Pi / 3

// landingSearchDepth bounds how far below a teleport destination footing is
// looked for.
const landingSearchDepth = 10

func (e *Engine) flash(act Activation, p FlashParams) error {
	if e.world == nil {
		return errNoWorld
	}
	at := act.Location
	e.world.Emit(world.Cue{Kind: world.CueParticle, Name: "explosion", At: at})
	e.world.Emit(world.Cue{Kind: world.CueParticle, Name: "firework", At: at})
	e.world.Emit(world.Cue{Kind: world.CueParticle, Name: "flash", At: at})
	e.world.Emit(world.Cue{Kind: world.CueSound, Name: "entity.generic.explode", At: at})
	e.world.Emit(world.Cue{Kind: world.CueSound, Name: "entity.firework_rocket.blast", At: at})

	for _, other := range e.world.Actors() {
		if other.ID() == act.Actor.ID() {
			continue
		}
		if other.Location().Distance(at) > p.Range {
			continue
		}
		eye := other.EyeLocation()
		if eye.Direction().Angle(at.Vec().Sub(eye.Vec())) >= flashCone {
			continue
		}
		other.AddEffect(world.Effect{Kind: world.EffectBlindness, Duration: p.Duration})
		other.AddEffect(world.Effect{Kind: world.EffectNausea, Duration: p.Duration / 2})
		other.SendMessage("§c§lFLASH! You are temporarily blinded!")
	}

	world.ConsumeOne(act.Actor.Inventory(), act.Item)
	return nil
}

func heal(w world.World, act Activation, p HealParams) error {
	actor := act.Actor
	actor.SetHealth(math.Min(actor.Health()+p.Amount, actor.MaxHealth()))
	if w != nil {
		at := actor.Location().Add(world.Vec3{Y: 1})
		w.Emit(world.Cue{Kind: world.CueParticle, Name: "heart", At: at})
		w.Emit(world.Cue{Kind: world.CueSound, Name: "entity.player.levelup", At: actor.Location()})
	}
	actor.SendMessage(fmt.Sprintf("§a✚ Healed %g hearts!", p.Amount/2))
	return nil
}

func (e *Engine) teleport(act Activation, p TeleportParams) error {
	if e.world == nil {
		return errNoWorld
	}
	start := act.Actor.Location()
	dest := SafeLanding(e.world, start.Add(start.Direction().Scale(p.Distance)))

	e.world.Emit(world.Cue{Kind: world.CueParticle, Name: "portal", At: start.Add(world.Vec3{Y: 1})})
	e.world.Emit(world.Cue{Kind: world.CueSound, Name: "entity.enderman.teleport", At: start})
	act.Actor.TeleportTo(dest)
	e.world.Emit(world.Cue{Kind: world.CueParticle, Name: "portal", At: dest.Add(world.Vec3{Y: 1})})
	e.world.Emit(world.Cue{Kind: world.CueSound, Name: "entity.enderman.teleport", At: dest})

	act.Actor.SendMessage(fmt.Sprintf("§d✦ Teleported %.1f blocks!", p.Distance))
	return nil
}

// SafeLanding looks down from dest for a solid block with two clear blocks
// above it and returns the point standing on it. When none is found within
// the search depth dest is returned unchanged.
func SafeLanding(w world.World, dest world.Location) world.Location {
	base := dest.Block()
	for dy := 0; dy < landingSearchDepth; dy++ {
		floor := base.Offset(0, -dy, 0)
		if w.IsSolid(floor) && !w.IsSolid(floor.Offset(0, 1, 0)) && !w.IsSolid(floor.Offset(0, 2, 0)) {
			dest.Y = float64(floor.Y + 1)
			return dest
		}
	}
	return dest
}
