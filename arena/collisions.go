package arena

import (
	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/creature"
)

// pickupEvent records a creature touching an active power-up. Queued
// during the physics step, resolved after it; mutating the space from
// inside a collision callback corrupts the solver.
type pickupEvent struct {
	c      *creature.Creature
	entity ecs.Entity
}

// impactEvent records a creature-on-creature collision with the
// relative speed sampled before the solver changed the velocities.
type impactEvent struct {
	a, b     *creature.Creature
	relSpeed float64
	massSum  float64
}

// installHandlers wires the two collision routes: creature vs creature
// and creature vs power-up. Begin callbacks only queue; all mutation
// happens post-step.
func (a *Arena) installHandlers() {
	cc := a.space.NewCollisionHandler(creature.CollisionType, creature.CollisionType)
	cc.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		sa, sb := arb.Shapes()
		ca, okA := sa.UserData.(*creature.Creature)
		cb, okB := sb.UserData.(*creature.Creature)
		if !okA || !okB || ca == cb {
			return true
		}
		if !ca.IsAlive() || !cb.IsAlive() {
			return true // corpses stay solid but deal no damage
		}
		ba, bb := arb.Bodies()
		a.impacts = append(a.impacts, impactEvent{
			a:        ca,
			b:        cb,
			relSpeed: ba.Velocity().Sub(bb.Velocity()).Length(),
			massSum:  ba.Mass() + bb.Mass(),
		})
		return true
	}

	cu := a.space.NewCollisionHandler(creature.CollisionType, PowerupCollisionType)
	cu.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		sa, sb := arb.Shapes()
		c, okC := sa.UserData.(*creature.Creature)
		entity, okE := sb.UserData.(ecs.Entity)
		if okC && okE && c.IsAlive() {
			a.pickups = append(a.pickups, pickupEvent{c: c, entity: entity})
		}
		return false
	}
}

// resolvePickups applies queued power-up collections. The same
// power-up may appear twice in one step when two creatures touch it
// simultaneously; only the first collection wins.
func (a *Arena) resolvePickups() {
	restore := config.Cfg().Powerups.Restore
	for _, ev := range a.pickups {
		if !ev.c.IsAlive() {
			continue
		}
		if !a.collectPowerup(ev.entity) {
			continue
		}
		ev.c.RestoreHealth(restore)
		if a.OnPickup != nil {
			a.OnPickup(ev.c, restore)
		}
	}
	a.pickups = a.pickups[:0]
}

// resolveImpacts applies queued creature collisions: a mouth close
// enough to the opponent's heart is an instant kill, otherwise blunt
// damage above the impact threshold lands on both parties.
func (a *Arena) resolveImpacts() {
	cfg := config.Cfg()
	for _, ev := range a.impacts {
		if !ev.a.IsAlive() || !ev.b.IsAlive() {
			continue
		}

		if a.tryInstantKill(ev.a, ev.b, cfg.Combat.InstantKillRange) {
			continue
		}
		if a.tryInstantKill(ev.b, ev.a, cfg.Combat.InstantKillRange) {
			continue
		}

		if ev.relSpeed <= cfg.Combat.ImpactThreshold {
			continue
		}
		base := ev.relSpeed * ev.massSum * 0.5
		ev.b.TakeDamage(base*ev.a.AttackBonus()*ev.b.DefenseFactor(), ev.a)
		if ev.a.IsAlive() {
			ev.a.TakeDamage(base*ev.b.AttackBonus()*ev.a.DefenseFactor(), ev.b)
		}
	}
	a.impacts = a.impacts[:0]
}

// tryInstantKill kills victim outright when attacker's mouth segment
// sits within range of victim's heart segment.
func (a *Arena) tryInstantKill(attacker, victim *creature.Creature, killRange float64) bool {
	mouth := attacker.MouthBody()
	heart := victim.HeartBody()
	if mouth == nil || heart == nil {
		return false
	}
	if mouth.Position().Distance(heart.Position()) > killRange {
		return false
	}
	victim.Die(attacker, creature.CauseCombat)
	return true
}
