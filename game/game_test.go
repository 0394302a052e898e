package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/creature"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

func newHeadlessGame(t *testing.T) *Game {
	t.Helper()
	return NewGameWithOptions(Options{Headless: true, Seed: 42})
}

func TestHeadlessTicksAdvance(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}
	if g.Tick() == 0 {
		t.Error("tick did not advance")
	}
	if g.SimTime() <= 0 {
		t.Errorf("sim time = %v, want > 0", g.SimTime())
	}
}

func TestPauseStopsSimulation(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	g.UpdateHeadless()
	tick := g.Tick()

	g.TogglePause()
	g.UpdateHeadless()
	if g.Tick() != tick {
		t.Error("paused game still ticked")
	}

	g.TogglePause()
	g.UpdateHeadless()
	if g.Tick() == tick {
		t.Error("resumed game did not tick")
	}
}

func TestSpeedClamping(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	g.SetSpeed(1e6)
	if g.Speed() != MaxSpeed {
		t.Errorf("speed = %v, want %v", g.Speed(), MaxSpeed)
	}
	g.SetSpeed(0)
	if g.Speed() != MinSpeed {
		t.Errorf("speed = %v, want %v", g.Speed(), MinSpeed)
	}
}

// makeEligible gives a creature everything canReproduce checks for.
func makeEligible(c *creature.Creature) {
	c.Age = 100
	c.Food = creature.MaxFood
	c.Health = creature.MaxHealth
}

func TestReproductionSpawnsChild(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	// Fresh spawns fail the minimum age gate, so only our planted pair
	// can reproduce.
	a := g.arena.Spawn(g.evo.Population[0].Clone(), cp.Vector{X: 400, Y: 400})
	b := g.arena.Spawn(g.evo.Population[1].Clone(), cp.Vector{X: 420, Y: 400})
	makeEligible(a)
	makeEligible(b)

	before := len(g.arena.Creatures())
	g.checkReproduction()
	after := len(g.arena.Creatures())

	if after != before+1 {
		t.Fatalf("population %d -> %d, want one child", before, after)
	}
	now := g.arena.SimTime()
	if a.LastReproduction != now || b.LastReproduction != now {
		t.Error("parents did not record the reproduction time")
	}

	// Cooldown blocks an immediate second child.
	g.checkReproduction()
	if len(g.arena.Creatures()) != after {
		t.Error("cooldown did not block a second reproduction")
	}
}

func TestReproductionRespectsDistance(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()
	cfg := config.Cfg()

	a := g.arena.Spawn(g.evo.Population[0].Clone(), cp.Vector{X: 200, Y: 200})
	b := g.arena.Spawn(g.evo.Population[1].Clone(),
		cp.Vector{X: 200 + cfg.Reproduction.MaxDistance*3, Y: 200})
	makeEligible(a)
	makeEligible(b)

	before := len(g.arena.Creatures())
	g.checkReproduction()
	if len(g.arena.Creatures()) != before {
		t.Error("distant pair should not reproduce")
	}
}

func TestReproductionRespectsHardCap(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()
	cfg := config.Cfg()

	saved := cfg.Reproduction.HardCap
	cfg.Reproduction.HardCap = len(g.arena.Creatures())
	defer func() { cfg.Reproduction.HardCap = saved }()

	for _, c := range g.arena.Creatures() {
		makeEligible(c)
	}
	before := len(g.arena.Creatures())
	g.checkReproduction()
	if len(g.arena.Creatures()) != before {
		t.Error("hard cap did not block reproduction")
	}
}

func TestTurnoverReplacesPopulation(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()
	cfg := config.Cfg()

	all := g.arena.Creatures()
	survivors := all[:cfg.Evolution.TurnoverAlive]
	for _, c := range all[cfg.Evolution.TurnoverAlive:] {
		g.arena.Evict(c)
	}
	if g.arena.Alive() != cfg.Evolution.TurnoverAlive {
		t.Fatalf("setup: alive = %d", g.arena.Alive())
	}
	survivors[0].Age = 500
	survivors[1].Age = 500

	g.checkTurnover()

	if got := g.Generation(); got != 1 {
		t.Errorf("generation = %d, want 1", got)
	}
	if got := g.arena.Alive(); got != g.evo.TargetSize() {
		t.Errorf("alive = %d, want repopulated to %d", got, g.evo.TargetSize())
	}

	// The elite survivors keep their bodies and ages but carry a fresh
	// next-generation genome.
	for _, e := range survivors {
		if c, ok := g.arena.Get(e.ID); !ok || !c.IsAlive() {
			t.Errorf("elite %d did not survive turnover", e.ID)
		}
		if e.Age != 500 {
			t.Errorf("elite age = %v, want preserved", e.Age)
		}
		if e.Genome.Generation != 1 {
			t.Errorf("elite genome generation = %d, want 1", e.Genome.Generation)
		}
		if e.Genome.Fitness != 0 {
			t.Errorf("elite genome fitness = %v, want reset", e.Genome.Fitness)
		}
	}
}

func TestTurnoverDoesNotFireAboveFloor(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	g.checkTurnover()
	if g.Generation() != 0 {
		t.Errorf("generation = %d, want 0 with full population", g.Generation())
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	path := filepath.Join(t.TempDir(), "best.json")
	if err := g.ExportBest(path); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export wrote nothing: %v", err)
	}

	if err := g.ImportAndReseed(path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := len(g.arena.Creatures()); got != g.evo.TargetSize() {
		t.Errorf("population after import = %d, want %d", got, g.evo.TargetSize())
	}
	for _, c := range g.arena.Creatures() {
		if !c.IsAlive() {
			t.Error("imported population should be fully alive")
		}
	}
}

func TestResetRestoresPopulation(t *testing.T) {
	g := newHeadlessGame(t)
	defer g.Unload()

	for _, c := range g.arena.Creatures() {
		g.arena.Evict(c)
	}
	g.Reset()
	if got := len(g.arena.Creatures()); got != config.Cfg().Evolution.PopulationSize {
		t.Errorf("population after reset = %d, want %d",
			got, config.Cfg().Evolution.PopulationSize)
	}
}
