// Package evolution runs the generational loop over genomes: fitness
// write-back, elitism, tournament selection, crossover, and mutation.
// The manager works purely on genomes and never touches physics state.
package evolution

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/genome"
)

// Manager owns the genome population across generations.
type Manager struct {
	Population []*genome.Genome
	Generation int

	eliteCount     int
	tournamentSize int
	crossoverRate  float64
	mutationRate   float64
	targetSize     int

	rng *rand.Rand
}

// NewManager builds a manager from the loaded configuration.
func NewManager(seed int64) *Manager {
	cfg := config.Cfg()
	return &Manager{
		eliteCount:     cfg.Evolution.EliteCount,
		tournamentSize: cfg.Evolution.TournamentSize,
		crossoverRate:  cfg.Evolution.CrossoverRate,
		mutationRate:   cfg.Mutation.OffspringRate,
		targetSize:     cfg.Evolution.PopulationSize,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// SetTargetSize adjusts the population size for future generations.
// Takes effect at the next turnover, never mid-generation.
func (m *Manager) SetTargetSize(n int) {
	if n > 0 {
		m.targetSize = n
	}
}

// TargetSize returns the configured population size.
func (m *Manager) TargetSize() int { return m.targetSize }

// Initialize fills the population with n random genomes at generation 0.
func (m *Manager) Initialize(n int) {
	m.Population = make([]*genome.Genome, 0, n)
	m.Generation = 0
	for i := 0; i < n; i++ {
		m.Population = append(m.Population, genome.NewRandom(m.rng))
	}
}

// Seed replaces the population wholesale, stamping the manager's
// generation from the incoming genomes. Used by genome import.
func (m *Manager) Seed(genomes []*genome.Genome) {
	m.Population = genomes
	m.Generation = 0
	for _, g := range genomes {
		if g.Generation > m.Generation {
			m.Generation = g.Generation
		}
	}
}

// Adopt adds a genome born mid-generation to the population so it
// competes in the next turnover alongside the original cohort.
func (m *Manager) Adopt(g *genome.Genome) {
	m.Population = append(m.Population, g)
}

// UpdateFitness writes a fitness score back to the genome identified by
// pointer. Reports whether the genome belongs to this population.
func (m *Manager) UpdateFitness(g *genome.Genome, fitness float64) bool {
	for _, p := range m.Population {
		if p == g {
			p.Fitness = fitness
			return true
		}
	}
	return false
}

// Stats returns the best and mean fitness of the current population.
func (m *Manager) Stats() (best, avg float64) {
	if len(m.Population) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, g := range m.Population {
		sum += g.Fitness
		if g.Fitness > best {
			best = g.Fitness
		}
	}
	return best, sum / float64(len(m.Population))
}

// EvolveNextGeneration replaces the population: the top genomes by
// fitness survive as elite clones, and tournament-selected offspring
// fill the remainder. Returns the elite clones in rank order.
func (m *Manager) EvolveNextGeneration() []*genome.Genome {
	ranked := m.ranked()
	n := m.eliteCount
	if n > len(ranked) {
		n = len(ranked)
	}
	return m.EvolveWithElites(ranked[:n])
}

// EvolveWithElites replaces the population, carrying the given genomes
// forward as elites. Callers with live elite creatures pass their
// current genomes here and re-point each creature at the returned
// clone, so the elite keeps its body while its genome picks up the new
// generation stamp.
func (m *Manager) EvolveWithElites(elites []*genome.Genome) []*genome.Genome {
	ranked := m.ranked()
	nextGen := m.Generation + 1

	next := make([]*genome.Genome, 0, m.targetSize)
	clones := make([]*genome.Genome, 0, len(elites))
	for _, e := range elites {
		if len(next) >= m.targetSize {
			break
		}
		c := e.Clone()
		c.Fitness = 0
		c.Generation = nextGen
		next = append(next, c)
		clones = append(clones, c)
	}

	for len(next) < m.targetSize {
		next = append(next, m.offspring(ranked, nextGen))
	}

	best, avg := m.Stats()
	slog.Info("generation complete",
		"generation", m.Generation,
		"best_fitness", best,
		"avg_fitness", avg,
		"population", len(m.Population),
	)

	m.Population = next
	m.Generation = nextGen
	return clones
}

// Offspring builds one mid-generation child from two specific parents,
// applying the reproduction mutation rate.
func (m *Manager) Offspring(a, b *genome.Genome) *genome.Genome {
	child := genome.Crossover(m.rng, a, b)
	child = child.Mutate(m.rng, config.Cfg().Mutation.ReproRate)
	child.Fitness = 0
	return child
}

// offspring produces one next-generation child via tournament
// selection, crossover by rate, and mutation.
func (m *Manager) offspring(ranked []*genome.Genome, gen int) *genome.Genome {
	var child *genome.Genome
	if m.rng.Float64() < m.crossoverRate && len(ranked) > 1 {
		a := m.selectParent(ranked)
		b := m.selectParent(ranked)
		child = genome.Crossover(m.rng, a, b)
	} else {
		child = m.selectParent(ranked).Clone()
	}
	child = child.Mutate(m.rng, m.mutationRate)
	child.Fitness = 0
	child.Generation = gen
	return child
}

// selectParent runs one tournament: sample with replacement, keep the
// fittest.
func (m *Manager) selectParent(pool []*genome.Genome) *genome.Genome {
	best := pool[m.rng.Intn(len(pool))]
	for i := 1; i < m.tournamentSize; i++ {
		c := pool[m.rng.Intn(len(pool))]
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}

// ranked returns the population sorted by fitness, best first. Stable
// so equal-fitness genomes keep their insertion order.
func (m *Manager) ranked() []*genome.Genome {
	out := append([]*genome.Genome(nil), m.Population...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fitness > out[j].Fitness
	})
	return out
}
