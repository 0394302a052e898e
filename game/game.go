// Package game orchestrates the simulation: the arena, the evolution
// loop, telemetry, the live feed, and the render/update cycle.
package game

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/menagerie/arena"
	"github.com/pthm-cable/menagerie/camera"
	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/creature"
	"github.com/pthm-cable/menagerie/dnaio"
	"github.com/pthm-cable/menagerie/evolution"
	"github.com/pthm-cable/menagerie/feed"
	"github.com/pthm-cable/menagerie/genome"
	"github.com/pthm-cable/menagerie/spatial"
	"github.com/pthm-cable/menagerie/telemetry"
)

// Speed bounds for the simulation speed multiplier.
const (
	MinSpeed = 0.5
	MaxSpeed = 1000.0

	// maxFrameDt caps wall-clock frame deltas so a debugger pause or
	// window drag cannot produce one giant physics step.
	maxFrameDt = 0.1
)

// Options configures a new game.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	ImportPath     string // seed the population from a DNA file
}

// Game holds the complete simulation state.
type Game struct {
	opts Options
	rng  *rand.Rand

	arena     *arena.Arena
	evo       *evolution.Manager
	grid      *spatial.Grid
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	feedSrv   *feed.Server
	cam       *camera.Camera
	console   *eventLog

	paused bool
	speed  float64
	tick   int64

	genStartSec float64
	genBirths   int
	genDeaths   int

	panel *controlPanel
}

// NewGameWithOptions builds a fully wired game. Config must be
// initialized first.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindowSec
	}

	g := &Game{
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		evo:       evolution.NewManager(opts.Seed + 1),
		grid:      spatial.NewGrid(cfg.Arena.Width, cfg.Arena.Height, 100),
		collector: telemetry.NewCollector(windowSec),
		console:   newEventLog(),
		speed:     1.0,
	}
	g.arena = arena.New(opts.Seed+2, g)
	g.arena.OnPickup = func(c *creature.Creature, _ float64) {
		g.collector.RecordPickup()
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("output disabled", "err", err)
	} else {
		g.output = om
		if err := g.output.WriteConfig(cfg); err != nil {
			slog.Warn("failed to write config snapshot", "err", err)
		}
	}

	if cfg.Feed.Enabled {
		g.feedSrv = feed.NewServer(cfg.Feed.Addr)
		if err := g.feedSrv.Start(); err != nil {
			slog.Error("feed disabled", "err", err)
			g.feedSrv = nil
		}
	}

	if !opts.Headless {
		g.cam = camera.New(
			float64(cfg.Screen.Width), float64(cfg.Screen.Height),
			cfg.Arena.Width, cfg.Arena.Height,
		)
		g.panel = newControlPanel()
	}

	g.seedPopulation()
	return g
}

// seedPopulation fills the arena, either from an imported DNA file or
// with a random first generation.
func (g *Game) seedPopulation() {
	cfg := config.Cfg()

	if g.opts.ImportPath != "" {
		imported, err := dnaio.Import(g.opts.ImportPath)
		if err != nil {
			slog.Error("import failed, falling back to random population",
				"path", g.opts.ImportPath, "err", err)
		} else {
			seeds := dnaio.SeedPopulation(g.rng, imported, cfg.Evolution.PopulationSize, cfg.Mutation.ImportRate)
			g.evo.Seed(seeds)
			for _, gen := range seeds {
				g.arena.SpawnAt(gen)
				g.collector.RecordBirth(telemetry.OriginImported)
			}
			slog.Info("population seeded from import",
				"path", g.opts.ImportPath,
				"generation", g.evo.Generation,
				"population", len(seeds),
			)
			return
		}
	}

	g.evo.Initialize(cfg.Evolution.PopulationSize)
	for _, gen := range g.evo.Population {
		g.arena.SpawnAt(gen)
		g.collector.RecordBirth(telemetry.OriginInitial)
	}
	slog.Info("population initialized", "population", len(g.evo.Population), "seed", g.opts.Seed)
}

// Tick returns the number of simulation sub-steps taken so far.
func (g *Game) Tick() int64 { return g.tick }

// SimTime returns total simulated seconds.
func (g *Game) SimTime() float64 { return g.arena.SimTime() }

// Generation returns the current generation number.
func (g *Game) Generation() int { return g.evo.Generation }

// Speed returns the current speed multiplier.
func (g *Game) Speed() float64 { return g.speed }

// SetSpeed sets the speed multiplier, clamped to the valid range.
func (g *Game) SetSpeed(s float64) {
	if s < MinSpeed {
		s = MinSpeed
	}
	if s > MaxSpeed {
		s = MaxSpeed
	}
	g.speed = s
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the pause state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Advance runs the simulation for one rendered frame of frameDt
// wall-clock seconds. High speed multipliers split the simulated span
// into sub-steps so physics accuracy does not degrade; sensing is
// refreshed once per frame, not per sub-step.
func (g *Game) Advance(frameDt float64) {
	if g.paused {
		return
	}
	if frameDt > maxFrameDt {
		frameDt = maxFrameDt
	}

	total := frameDt * g.speed
	n := int(math.Ceil(g.speed))
	if n < 1 {
		n = 1
	}
	sub := total / float64(n)
	if sub > maxFrameDt {
		sub = maxFrameDt
	}

	g.refreshVisibility()
	for i := 0; i < n; i++ {
		g.step(sub)
	}
}

// UpdateHeadless advances one fixed frame without graphics.
func (g *Game) UpdateHeadless() {
	g.Advance(1.0 / 60.0)
}

// step advances the simulation by one sub-step.
func (g *Game) step(dt float64) {
	g.arena.Step(dt)
	g.tick++

	g.checkReproduction()
	g.checkTurnover()
	g.maybeFlushStats()
}

// refreshVisibility rebuilds the spatial grid and hands every living
// creature the neighbors its longest sensor could possibly reach.
func (g *Game) refreshVisibility() {
	g.grid.Clear()
	all := g.arena.Creatures()
	for _, c := range all {
		if c.IsAlive() {
			p := c.Centroid()
			g.grid.Insert(c.ID, p.X, p.Y)
		}
	}

	var scratch []spatial.Neighbor
	for _, c := range all {
		if !c.IsAlive() {
			continue
		}
		reach := maxSensorRange(c.Genome)
		if reach <= 0 {
			c.SetVisible(nil)
			continue
		}
		p := c.Centroid()
		scratch = g.grid.QueryRadiusInto(scratch[:0], p.X, p.Y, reach, c.ID)
		visible := make([]*creature.Creature, 0, len(scratch))
		for _, n := range scratch {
			if other, ok := g.arena.Get(n.ID); ok {
				visible = append(visible, other)
			}
		}
		c.SetVisible(visible)
	}
}

func maxSensorRange(gen *genome.Genome) float64 {
	reach := 0.0
	for i := range gen.Sensors {
		if gen.Sensors[i].Range > reach {
			reach = gen.Sensors[i].Range
		}
	}
	return reach
}

// checkReproduction pairs up eligible creatures and spawns crossover
// children at the midpoint between the parents.
func (g *Game) checkReproduction() {
	cfg := config.Cfg()
	all := g.arena.Creatures()
	if len(all) >= cfg.Reproduction.HardCap {
		return
	}
	now := g.arena.SimTime()

	for i := 0; i < len(all); i++ {
		a := all[i]
		if !g.canReproduce(a, now) {
			continue
		}
		for j := i + 1; j < len(all); j++ {
			b := all[j]
			if !g.canReproduce(b, now) {
				continue
			}
			if a.Centroid().Distance(b.Centroid()) >= cfg.Reproduction.MaxDistance {
				continue
			}

			g.birth(a, b, now)
			if len(g.arena.Creatures()) >= cfg.Reproduction.HardCap {
				return
			}
			break // one child per parent per check
		}
	}
}

func (g *Game) canReproduce(c *creature.Creature, now float64) bool {
	cfg := config.Cfg()
	return c.IsAlive() &&
		c.Age >= cfg.Reproduction.MinAge &&
		c.Food >= cfg.Reproduction.MinFood &&
		c.Health >= cfg.Reproduction.MinHealth &&
		now-c.LastReproduction >= cfg.Reproduction.CooldownSec
}

// birth creates one mid-generation child of a and b.
func (g *Game) birth(a, b *creature.Creature, now float64) {
	cfg := config.Cfg()
	child := g.evo.Offspring(a.Genome, b.Genome)
	g.evo.Adopt(child)

	mid := a.Centroid().Add(b.Centroid()).Mult(0.5)
	jitter := cp.Vector{
		X: (g.rng.Float64()*2 - 1) * cfg.Reproduction.SpawnJitter,
		Y: (g.rng.Float64()*2 - 1) * cfg.Reproduction.SpawnJitter,
	}
	c := g.arena.Spawn(child, g.arena.ClampSpawn(mid.Add(jitter)))

	a.LastReproduction = now
	b.LastReproduction = now
	g.genBirths++
	g.collector.RecordBirth(telemetry.OriginReproduced)
	g.console.birth(c.ID, a.ID, b.ID)
	g.broadcast(map[string]interface{}{
		"type": "birth", "id": c.ID, "parentA": a.ID, "parentB": b.ID,
	})
}

// checkTurnover ends the generation when the living population falls
// to the configured floor. The fittest survivors carry their bodies
// into the next generation; everyone else is replaced.
func (g *Game) checkTurnover() {
	cfg := config.Cfg()
	if g.arena.Alive() > cfg.Evolution.TurnoverAlive {
		return
	}

	// Final fitness write-back for the survivors. The dead already
	// reported theirs on death.
	var alive []*creature.Creature
	for _, c := range g.arena.Creatures() {
		if c.IsAlive() {
			g.evo.UpdateFitness(c.Genome, c.Fitness())
			alive = append(alive, c)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool {
		return alive[i].Fitness() > alive[j].Fitness()
	})

	n := cfg.Evolution.EliteCount
	if n > len(alive) {
		n = len(alive)
	}
	elites := alive[:n]

	g.writeGenerationStats()

	eliteGenomes := make([]*genome.Genome, len(elites))
	for i, e := range elites {
		eliteGenomes[i] = e.Genome
	}
	clones := g.evo.EvolveWithElites(eliteGenomes)

	// Elites keep their live bodies and age; only the genome object is
	// swapped for the new generation's clone.
	for i, e := range elites {
		if i < len(clones) {
			e.SetGenome(clones[i])
		}
	}

	eliteSet := make(map[int]bool, len(elites))
	for _, e := range elites {
		eliteSet[e.ID] = true
	}
	for _, c := range g.arena.Creatures() {
		if !eliteSet[c.ID] {
			g.arena.Evict(c)
		}
	}

	g.arena.ResetField()
	for _, gen := range g.evo.Population[len(clones):] {
		g.arena.SpawnAt(gen)
		g.collector.RecordBirth(telemetry.OriginEvolved)
	}

	g.console.generation(g.evo.Generation, g.tick)
	g.broadcast(map[string]interface{}{
		"type": "generation", "generation": g.evo.Generation,
	})

	g.genStartSec = g.arena.SimTime()
	g.genBirths = 0
	g.genDeaths = 0
}

// writeGenerationStats summarizes the generation that just ended.
func (g *Game) writeGenerationStats() {
	fits := make([]float64, 0, len(g.evo.Population))
	for _, gen := range g.evo.Population {
		fits = append(fits, gen.Fitness)
	}
	mean, std, _, _, _ := telemetry.ComputeDistribution(fits)
	best, _ := g.evo.Stats()

	stats := telemetry.GenerationStats{
		Generation:  g.evo.Generation,
		BestFitness: best,
		AvgFitness:  mean,
		StdFitness:  std,
		Population:  len(g.evo.Population),
		Births:      g.genBirths,
		Deaths:      g.genDeaths,
		DurationSec: g.arena.SimTime() - g.genStartSec,
	}
	if err := g.output.WriteGeneration(stats); err != nil {
		slog.Warn("failed to write generation stats", "err", err)
	}
}

// maybeFlushStats flushes the telemetry window when due.
func (g *Game) maybeFlushStats() {
	now := g.arena.SimTime()
	if !g.collector.ShouldFlush(now) {
		return
	}

	var fits, ages []float64
	oldestID := -1
	var oldestAge float64
	for _, c := range g.arena.Creatures() {
		if c.IsAlive() {
			fits = append(fits, c.Fitness())
			ages = append(ages, c.Age)
			if c.Age > oldestAge || oldestID < 0 {
				oldestID, oldestAge = c.ID, c.Age
			}
		}
	}
	stats := g.collector.Flush(now, g.arena.Alive(), g.evo.Generation, fits, ages, oldestID)

	if g.opts.LogStats {
		stats.LogStats()
	}
	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Warn("failed to write telemetry", "err", err)
	}
	g.broadcast(map[string]interface{}{
		"type":        "stats",
		"sim_time":    stats.WindowEndSec,
		"generation":  stats.Generation,
		"alive":       stats.Alive,
		"kills":       stats.Kills,
		"fitness_p50": stats.FitnessP50,
		"oldest_id":   stats.OldestID,
		"oldest_age":  stats.AgeMax,
	})
}

// Death implements creature.EventSink.
func (g *Game) Death(victim, killer *creature.Creature, cause creature.DeathCause) {
	g.evo.UpdateFitness(victim.Genome, victim.Fitness())
	g.collector.RecordDeath(cause)
	g.genDeaths++
	if killer != nil {
		g.collector.RecordKill()
	}
	killerID := -1
	if killer != nil {
		killerID = killer.ID
	}
	g.console.death(victim.ID, killerID, cause, victim.Age)
	g.broadcast(map[string]interface{}{
		"type": "death", "id": victim.ID, "killer": killerID, "cause": cause.String(),
	})
}

// Damage implements creature.EventSink.
func (g *Game) Damage(_, _ *creature.Creature, amount float64) {
	g.collector.RecordDamage(amount)
}

func (g *Game) broadcast(v interface{}) {
	if g.feedSrv != nil {
		g.feedSrv.Broadcast(v)
	}
}

// ExportBest saves the currently fittest living creature's genome.
func (g *Game) ExportBest(path string) error {
	var best *creature.Creature
	bestFit := -1.0
	for _, c := range g.arena.Creatures() {
		if c.IsAlive() && c.Fitness() > bestFit {
			best = c
			bestFit = c.Fitness()
		}
	}
	if best == nil {
		return nil
	}
	gen := best.Genome.Clone()
	gen.Fitness = bestFit
	if err := dnaio.Export(gen, path); err != nil {
		return err
	}
	slog.Info("exported genome", "path", path, "id", best.ID, "fitness", bestFit)
	return nil
}

// ImportAndReseed replaces the whole population with variants of the
// genome in the given DNA file.
func (g *Game) ImportAndReseed(path string) error {
	imported, err := dnaio.Import(path)
	if err != nil {
		return err
	}
	cfg := config.Cfg()

	for _, c := range g.arena.Creatures() {
		g.arena.Evict(c)
	}
	seeds := dnaio.SeedPopulation(g.rng, imported, g.evo.TargetSize(), cfg.Mutation.ImportRate)
	g.evo.Seed(seeds)
	for _, gen := range seeds {
		g.arena.SpawnAt(gen)
		g.collector.RecordBirth(telemetry.OriginImported)
	}
	slog.Info("population reseeded from import", "path", path, "generation", g.evo.Generation)
	return nil
}

// Reset discards the current population and starts over with a fresh
// random one, keeping the arena and telemetry.
func (g *Game) Reset() {
	for _, c := range g.arena.Creatures() {
		g.arena.Evict(c)
	}
	g.seedPopulation()
	g.genStartSec = g.arena.SimTime()
	g.genBirths = 0
	g.genDeaths = 0
}

// Unload releases external resources.
func (g *Game) Unload() {
	if err := g.output.Close(); err != nil {
		slog.Warn("closing output", "err", err)
	}
	if g.feedSrv != nil {
		if err := g.feedSrv.Close(); err != nil {
			slog.Warn("closing feed", "err", err)
		}
	}
}
