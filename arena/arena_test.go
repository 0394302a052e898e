package arena

import (
	"math/rand"
	"os"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/creature"
	"github.com/pthm-cable/menagerie/genome"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// blobGenome is a single-segment creature: its only body is both mouth
// and heart, which keeps combat geometry trivial in tests.
func blobGenome() *genome.Genome {
	return &genome.Genome{
		Segments: []genome.Segment{{
			ID: 0, Parent: -1, Shape: genome.ShapeCircle, Radius: 10, Mass: 1, Heart: true, Mouth: true,
		}},
		MemorySize: 4,
	}
}

type recordingSink struct {
	creature.NopSink
	deaths []creature.DeathCause
}

func (s *recordingSink) Death(_, _ *creature.Creature, cause creature.DeathCause) {
	s.deaths = append(s.deaths, cause)
}

func TestSpawnRegistersCreatures(t *testing.T) {
	a := New(1, nil)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 3; i++ {
		a.SpawnAt(genome.NewRandom(rng))
	}
	if got := a.Alive(); got != 3 {
		t.Errorf("alive = %d, want 3", got)
	}
	if got := len(a.Creatures()); got != 3 {
		t.Errorf("creatures = %d, want 3", got)
	}
}

func TestSpawnOrderIsStable(t *testing.T) {
	a := New(1, nil)
	rng := rand.New(rand.NewSource(3))
	var ids []int
	for i := 0; i < 5; i++ {
		ids = append(ids, a.SpawnAt(genome.NewRandom(rng)).ID)
	}
	for i, c := range a.Creatures() {
		if c.ID != ids[i] {
			t.Fatalf("order[%d] = %d, want %d", i, c.ID, ids[i])
		}
	}
}

func TestPickupRestoresAndDeactivates(t *testing.T) {
	a := New(1, nil)
	c := a.Spawn(blobGenome(), cp.Vector{X: 200, Y: 200})
	c.Food = 50
	c.Health = 50

	var picked int
	a.OnPickup = func(*creature.Creature, float64) { picked++ }

	// Grab any active power-up entity directly.
	query := a.powerupFilter.Query()
	if !query.Next() {
		t.Fatal("no power-ups spawned")
	}
	entity := query.Entity()
	for query.Next() {
	}

	// Two queued events for the same power-up: only the first collects.
	a.pickups = append(a.pickups,
		pickupEvent{c: c, entity: entity},
		pickupEvent{c: c, entity: entity},
	)
	a.resolvePickups()

	restore := config.Cfg().Powerups.Restore
	if c.Food != 50+restore || c.Health != 50+restore {
		t.Errorf("pools = %v/%v, want %v/%v", c.Food, c.Health, 50+restore, 50+restore)
	}
	if picked != 1 {
		t.Errorf("pickup callback fired %d times, want 1", picked)
	}
	pu := a.puMap.Get(entity)
	if pu.Active {
		t.Error("power-up should be inactive after collection")
	}
}

func TestPowerupRespawns(t *testing.T) {
	a := New(1, nil)
	query := a.powerupFilter.Query()
	if !query.Next() {
		t.Fatal("no power-ups spawned")
	}
	entity := query.Entity()
	for query.Next() {
	}

	if !a.collectPowerup(entity) {
		t.Fatal("collect failed")
	}
	a.respawnPowerups(config.Cfg().Powerups.RespawnSec + 1)

	pu := a.puMap.Get(entity)
	if !pu.Active {
		t.Error("power-up should respawn after the delay")
	}
}

func TestPowerupBodyTracksLifecycle(t *testing.T) {
	a := New(1, nil)
	query := a.powerupFilter.Query()
	if !query.Next() {
		t.Fatal("no power-ups spawned")
	}
	entity := query.Entity()
	for query.Next() {
	}

	if !a.collectPowerup(entity) {
		t.Fatal("collect failed")
	}
	if pos := a.refMap.Get(entity).Body.Position(); pos.X > 0 {
		t.Errorf("collected power-up body at %v, want parked off-field", pos)
	}

	a.respawnPowerups(config.Cfg().Powerups.RespawnSec + 1)

	pu := a.puMap.Get(entity)
	body := a.refMap.Get(entity).Body
	if body.Position() != pu.Pos {
		t.Errorf("body at %v, component says %v", body.Position(), pu.Pos)
	}
	cfg := config.Cfg()
	if pu.Pos.X < 0 || pu.Pos.X > cfg.Arena.Width || pu.Pos.Y < 0 || pu.Pos.Y > cfg.Arena.Height {
		t.Errorf("respawn position %v outside the field", pu.Pos)
	}
}

func TestResetFieldRefreshesPowerupsAndObstacles(t *testing.T) {
	a := New(1, nil)

	query := a.powerupFilter.Query()
	if !query.Next() {
		t.Fatal("no power-ups spawned")
	}
	entity := query.Entity()
	for query.Next() {
	}
	if !a.collectPowerup(entity) {
		t.Fatal("collect failed")
	}

	before := append([]Obstacle(nil), a.Obstacles()...)
	if len(before) == 0 {
		t.Fatal("no obstacles placed")
	}

	a.ResetField()

	if pu := a.puMap.Get(entity); !pu.Active {
		t.Error("collected power-up should be active again after reset")
	}
	if len(a.Obstacles()) == 0 {
		t.Fatal("obstacle field should be repopulated after reset")
	}
	same := len(a.Obstacles()) == len(before)
	if same {
		for i, o := range a.Obstacles() {
			if o.Pos != before[i].Pos || o.Radius != before[i].Radius {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("obstacle field should be re-rolled, not carried over")
	}
}

func TestClampSpawnStaysInsideField(t *testing.T) {
	a := New(1, nil)
	cfg := config.Cfg()
	mx, my := cfg.Derived.SpawnMarginX, cfg.Derived.SpawnMarginY

	tests := []struct {
		name string
		in   cp.Vector
		want cp.Vector
	}{
		{"inside untouched", cp.Vector{X: 400, Y: 300}, cp.Vector{X: 400, Y: 300}},
		{"past the origin corner", cp.Vector{X: -50, Y: -50}, cp.Vector{X: mx, Y: my}},
		{"past the far corner",
			cp.Vector{X: cfg.Arena.Width + 99, Y: cfg.Arena.Height + 99},
			cp.Vector{X: cfg.Arena.Width - mx, Y: cfg.Arena.Height - my}},
		{"inside the wall band", cp.Vector{X: 10, Y: 300}, cp.Vector{X: mx, Y: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.ClampSpawn(tt.in); got != tt.want {
				t.Errorf("ClampSpawn(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInstantKill(t *testing.T) {
	a := New(1, nil)
	attacker := a.Spawn(blobGenome(), cp.Vector{X: 300, Y: 300})
	victim := a.Spawn(blobGenome(), cp.Vector{X: 305, Y: 300})

	if !a.tryInstantKill(attacker, victim, config.Cfg().Combat.InstantKillRange) {
		t.Fatal("mouth within kill range of heart should kill")
	}
	if victim.IsAlive() {
		t.Error("victim should be dead")
	}
	if attacker.Kills != 1 {
		t.Errorf("attacker kills = %d, want 1", attacker.Kills)
	}
}

func TestInstantKillOutOfRange(t *testing.T) {
	a := New(1, nil)
	attacker := a.Spawn(blobGenome(), cp.Vector{X: 300, Y: 300})
	victim := a.Spawn(blobGenome(), cp.Vector{X: 500, Y: 300})

	if a.tryInstantKill(attacker, victim, config.Cfg().Combat.InstantKillRange) {
		t.Fatal("distant creatures must not instant-kill")
	}
	if !victim.IsAlive() {
		t.Error("victim should be alive")
	}
}

func TestBluntImpactDamage(t *testing.T) {
	a := New(1, nil)
	ca := a.Spawn(blobGenome(), cp.Vector{X: 200, Y: 200})
	cb := a.Spawn(blobGenome(), cp.Vector{X: 600, Y: 600})

	relSpeed := 10.0
	a.impacts = append(a.impacts, impactEvent{a: ca, b: cb, relSpeed: relSpeed, massSum: 2})
	a.resolveImpacts()

	// Both fresh creatures: attack bonus and defense factor are 1.
	want := relSpeed * 2 * 0.5
	if cb.DamageTaken != want {
		t.Errorf("b damageTaken = %v, want %v", cb.DamageTaken, want)
	}
	if ca.DamageTaken != want {
		t.Errorf("a damageTaken = %v, want %v", ca.DamageTaken, want)
	}
	if ca.DamageDealt != want || cb.DamageDealt != want {
		t.Errorf("damageDealt = %v/%v, want %v both ways", ca.DamageDealt, cb.DamageDealt, want)
	}
}

func TestImpactBelowThresholdIsFree(t *testing.T) {
	a := New(1, nil)
	ca := a.Spawn(blobGenome(), cp.Vector{X: 200, Y: 200})
	cb := a.Spawn(blobGenome(), cp.Vector{X: 600, Y: 600})

	a.impacts = append(a.impacts, impactEvent{
		a: ca, b: cb,
		relSpeed: config.Cfg().Combat.ImpactThreshold * 0.5,
		massSum:  2,
	})
	a.resolveImpacts()

	if ca.DamageTaken != 0 || cb.DamageTaken != 0 {
		t.Errorf("damage = %v/%v, want 0/0 below the impact threshold", ca.DamageTaken, cb.DamageTaken)
	}
}

func TestCorpsePurgedAfterFade(t *testing.T) {
	a := New(1, nil)
	c := a.Spawn(blobGenome(), cp.Vector{X: 300, Y: 300})
	c.Die(nil, creature.CauseStarvation)

	// Hold (2s) plus fade (2s) in sub-second steps, then one more step
	// for the purge to notice.
	for i := 0; i < 50; i++ {
		a.Step(0.1)
	}

	if _, ok := a.Get(c.ID); ok {
		t.Error("faded corpse should be removed from the registry")
	}
	if !c.Removed() {
		t.Error("faded corpse should be deregistered from the space")
	}
}

func TestEvictMarksCulled(t *testing.T) {
	sink := &recordingSink{}
	a := New(1, sink)
	c := a.Spawn(blobGenome(), cp.Vector{X: 300, Y: 300})

	a.Evict(c)

	if len(sink.deaths) != 1 || sink.deaths[0] != creature.CauseCulled {
		t.Errorf("deaths = %v, want one culled death", sink.deaths)
	}
	if len(a.Creatures()) != 0 {
		t.Error("evicted creature should leave the registry")
	}
}

func TestStepSurvivesManyTicks(t *testing.T) {
	a := New(7, nil)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 6; i++ {
		a.SpawnAt(genome.NewRandom(rng))
	}
	for i := 0; i < 600; i++ {
		a.Step(1.0 / 60.0)
	}
	if a.SimTime() < 9.9 {
		t.Errorf("simTime = %v, want about 10", a.SimTime())
	}
}
