// Package arena owns the shared physics space and everything in it: the
// walls, static obstacles, power-ups, and the registry of live
// creatures. It routes collisions into domain events and keeps the
// simulation stepping even when an individual creature misbehaves.
package arena

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/creature"
	"github.com/pthm-cable/menagerie/genome"
)

// PickupFunc is invoked after a creature collects a power-up.
type PickupFunc func(c *creature.Creature, amount float64)

// Arena is the physics world coordinator. Not safe for concurrent use;
// the game loop owns it.
type Arena struct {
	space *cp.Space
	world *ecs.World
	rng   *rand.Rand

	powerupMapper *ecs.Map2[Powerup, PhysRef]
	powerupFilter *ecs.Filter2[Powerup, PhysRef]
	puMap         *ecs.Map1[Powerup]
	refMap        *ecs.Map1[PhysRef]

	obstacles      []Obstacle
	obstacleShapes []*cp.Shape
	noiseSeed      int64

	creatures map[int]*creature.Creature
	order     []int
	nextID    int

	pickups []pickupEvent
	impacts []impactEvent

	sink creature.EventSink

	// OnPickup fires after a power-up is collected. Optional.
	OnPickup PickupFunc

	simTime float64
}

// New builds the arena: zero-gravity damped space, boundary walls,
// noise-placed obstacles, and the initial power-up field.
func New(seed int64, sink creature.EventSink) *Arena {
	if sink == nil {
		sink = creature.NopSink{}
	}
	cfg := config.Cfg()

	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.SetDamping(cfg.Arena.Damping)

	world := ecs.NewWorld()

	a := &Arena{
		space:         space,
		world:         world,
		rng:           rand.New(rand.NewSource(seed)),
		powerupMapper: ecs.NewMap2[Powerup, PhysRef](world),
		powerupFilter: ecs.NewFilter2[Powerup, PhysRef](world),
		puMap:         ecs.NewMap1[Powerup](world),
		refMap:        ecs.NewMap1[PhysRef](world),
		creatures:     make(map[int]*creature.Creature),
		noiseSeed:     seed,
		sink:          sink,
	}

	a.buildWalls()
	a.placeObstacles(a.noiseSeed)
	a.spawnPowerups()
	a.installHandlers()
	return a
}

// buildWalls rings the arena with four thick static segments. Thickness
// comes from config; thin walls let fast composites tunnel through.
func (a *Arena) buildWalls() {
	cfg := config.Cfg()
	w, h := cfg.Arena.Width, cfg.Arena.Height
	t := cfg.Arena.WallThickness

	corners := []struct{ a, b cp.Vector }{
		{cp.Vector{X: 0, Y: 0}, cp.Vector{X: w, Y: 0}},
		{cp.Vector{X: w, Y: 0}, cp.Vector{X: w, Y: h}},
		{cp.Vector{X: w, Y: h}, cp.Vector{X: 0, Y: h}},
		{cp.Vector{X: 0, Y: h}, cp.Vector{X: 0, Y: 0}},
	}
	for _, seg := range corners {
		shape := a.space.AddShape(cp.NewSegment(a.space.StaticBody, seg.a, seg.b, t))
		shape.SetElasticity(cfg.Arena.WallElasticity)
		shape.SetFriction(0.8)
	}
}

// Space exposes the physics space so creatures can register themselves.
func (a *Arena) Space() *cp.Space { return a.space }

// SimTime returns total simulated seconds since construction.
func (a *Arena) SimTime() float64 { return a.simTime }

// Spawn instantiates a genome at the given position and registers it.
func (a *Arena) Spawn(g *genome.Genome, pos cp.Vector) *creature.Creature {
	id := a.nextID
	a.nextID++
	c := creature.New(id, g, a.space, pos, a.sink)
	a.creatures[id] = c
	a.order = append(a.order, id)
	return c
}

// SpawnAt picks a random position inside the walls, away from
// obstacles, and spawns the genome there.
func (a *Arena) SpawnAt(g *genome.Genome) *creature.Creature {
	return a.Spawn(g, a.RandomSpawnPos())
}

// RandomSpawnPos returns a spawn position inside the walls that does
// not overlap an obstacle. Gives up on obstacle avoidance after a few
// tries rather than looping forever on a crowded field.
func (a *Arena) RandomSpawnPos() cp.Vector {
	cfg := config.Cfg()
	mx, my := cfg.Derived.SpawnMarginX, cfg.Derived.SpawnMarginY
	var pos cp.Vector
	for try := 0; try < 16; try++ {
		pos = cp.Vector{
			X: mx + a.rng.Float64()*(cfg.Arena.Width-2*mx),
			Y: my + a.rng.Float64()*(cfg.Arena.Height-2*my),
		}
		if !a.insideObstacle(pos, 40) {
			return pos
		}
	}
	return pos
}

// ClampSpawn pulls a position inside the spawnable field, respecting
// the same margins as RandomSpawnPos, so a birth near a wall lands on
// the field instead of inside the wall band.
func (a *Arena) ClampSpawn(pos cp.Vector) cp.Vector {
	cfg := config.Cfg()
	mx, my := cfg.Derived.SpawnMarginX, cfg.Derived.SpawnMarginY
	pos.X = clampRange(pos.X, mx, cfg.Arena.Width-mx)
	pos.Y = clampRange(pos.Y, my, cfg.Arena.Height-my)
	return pos
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Creatures returns all registered creatures in stable spawn order.
func (a *Arena) Creatures() []*creature.Creature {
	out := make([]*creature.Creature, 0, len(a.order))
	for _, id := range a.order {
		if c, ok := a.creatures[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Get looks up a creature by id.
func (a *Arena) Get(id int) (*creature.Creature, bool) {
	c, ok := a.creatures[id]
	return c, ok
}

// Alive counts living creatures.
func (a *Arena) Alive() int {
	n := 0
	for _, c := range a.creatures {
		if c.IsAlive() {
			n++
		}
	}
	return n
}

// Evict deregisters a creature's physics objects and drops it from the
// registry. Living creatures are marked culled first so the death
// always fires exactly once.
func (a *Arena) Evict(c *creature.Creature) {
	if c.IsAlive() {
		c.Die(nil, creature.CauseCulled)
	}
	c.RemoveFromSpace(a.space)
	delete(a.creatures, c.ID)
	for i, id := range a.order {
		if id == c.ID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Step advances the whole arena by dt: physics, queued collision
// events, creature updates, gripper attraction, and power-up respawns.
// Corpses whose fade has completed are removed first so their bodies
// never enter another physics step.
func (a *Arena) Step(dt float64) {
	a.simTime += dt
	a.purgeDestructible()
	a.stepSpace(dt)
	a.resolvePickups()
	a.resolveImpacts()
	for _, c := range a.Creatures() {
		a.updateCreature(c, dt)
	}
	a.applyGrippers(dt)
	a.respawnPowerups(dt)
}

// purgeDestructible removes fully faded corpses from the space and the
// registry.
func (a *Arena) purgeDestructible() {
	for _, c := range a.Creatures() {
		if c.Destructible() && !c.Removed() {
			c.RemoveFromSpace(a.space)
			delete(a.creatures, c.ID)
			for i, id := range a.order {
				if id == c.ID {
					a.order = append(a.order[:i], a.order[i+1:]...)
					break
				}
			}
		}
	}
}

// stepSpace runs the physics step behind a recover so a solver blowup
// cannot take the process down. After a panic every composite with a
// non-finite position is evicted; the rest of the arena carries on.
func (a *Arena) stepSpace(dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("physics step panicked, purging unstable creatures", "panic", r)
			a.purgeUnstable()
		}
	}()
	a.space.Step(dt)
}

// purgeUnstable evicts every creature whose position went non-finite.
func (a *Arena) purgeUnstable() {
	for _, c := range a.Creatures() {
		p := c.Position()
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			slog.Warn("evicting unstable creature", "id", c.ID)
			a.Evict(c)
		}
	}
}

// updateCreature runs one creature's behavior tick behind a recover.
// A panicking creature is evicted instead of stopping the simulation.
func (a *Arena) updateCreature(c *creature.Creature, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("creature update panicked, evicting", "id", c.ID, "panic", r)
			a.Evict(c)
		}
	}()
	c.Update(dt)
}

// applyGrippers pulls each gripper segment toward the nearest other
// living creature within range. The force is small relative to spring
// forces; grippers bias drift rather than yank.
func (a *Arena) applyGrippers(dt float64) {
	cfg := config.Cfg()
	rng, strength := cfg.Creature.GripperRange, cfg.Creature.GripperStrength
	if strength <= 0 {
		return
	}
	all := a.Creatures()
	for _, c := range all {
		if !c.IsAlive() {
			continue
		}
		for _, gb := range c.GripperBodies() {
			origin := gb.Position()
			closest := math.Inf(1)
			var target cp.Vector
			for _, other := range all {
				if other == c || !other.IsAlive() {
					continue
				}
				tc := other.Centroid()
				if d := origin.Distance(tc); d < closest && d <= rng {
					closest = d
					target = tc
				}
			}
			if math.IsInf(closest, 1) || closest < 1e-6 {
				continue
			}
			dir := target.Sub(origin).Mult(1 / closest)
			gb.SetForce(gb.Force().Add(dir.Mult(strength * (1 - closest/rng))))
		}
	}
}
