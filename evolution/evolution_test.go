package evolution

import (
	"math/rand"
	"os"
	"testing"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/genome"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

func newTestManager(size int) *Manager {
	m := NewManager(42)
	m.SetTargetSize(size)
	m.Initialize(size)
	return m
}

func TestInitializeSizeAndGeneration(t *testing.T) {
	m := newTestManager(10)
	if len(m.Population) != 10 {
		t.Errorf("population = %d, want 10", len(m.Population))
	}
	if m.Generation != 0 {
		t.Errorf("generation = %d, want 0", m.Generation)
	}
	for _, g := range m.Population {
		if g.Generation != 0 || g.Fitness != 0 {
			t.Errorf("fresh genome has generation %d fitness %v", g.Generation, g.Fitness)
		}
	}
}

func TestUpdateFitnessByIdentity(t *testing.T) {
	m := newTestManager(4)
	g := m.Population[2]

	if !m.UpdateFitness(g, 12.5) {
		t.Fatal("update for a member genome should succeed")
	}
	if g.Fitness != 12.5 {
		t.Errorf("fitness = %v, want 12.5", g.Fitness)
	}

	stranger := genome.NewRandom(rand.New(rand.NewSource(1)))
	if m.UpdateFitness(stranger, 99) {
		t.Error("update for a non-member genome should report false")
	}
}

func TestEvolveCarriesElitesByFitness(t *testing.T) {
	m := newTestManager(4)
	fits := []float64{10, 5, 30, 2}
	for i, f := range fits {
		m.Population[i].Fitness = f
	}
	origBest := m.Population[2]
	origSecond := m.Population[0]

	clones := m.EvolveWithElites([]*genome.Genome{origBest, origSecond})

	if len(clones) != 2 {
		t.Fatalf("elite clones = %d, want 2", len(clones))
	}
	if len(m.Population) != 4 {
		t.Fatalf("population = %d, want 4", len(m.Population))
	}
	if m.Generation != 1 {
		t.Errorf("generation = %d, want 1", m.Generation)
	}

	// Elites are fresh clones, never the original objects, with reset
	// fitness and the new generation stamp.
	for i, c := range clones {
		if c == origBest || c == origSecond {
			t.Errorf("clone %d aliases an original genome", i)
		}
		if c.Fitness != 0 {
			t.Errorf("clone %d fitness = %v, want 0", i, c.Fitness)
		}
		if c.Generation != 1 {
			t.Errorf("clone %d generation = %d, want 1", i, c.Generation)
		}
	}
	if len(clones[0].Segments) != len(origBest.Segments) {
		t.Error("elite clone should keep the original structure")
	}
	if m.Population[0] != clones[0] || m.Population[1] != clones[1] {
		t.Error("elite clones should occupy the head of the new population")
	}
}

func TestEvolveNextGenerationPicksTopByRank(t *testing.T) {
	m := newTestManager(4)
	fits := []float64{10, 5, 30, 2}
	for i, f := range fits {
		m.Population[i].Fitness = f
	}
	best := m.Population[2]

	clones := m.EvolveNextGeneration()

	if len(clones) != config.Cfg().Evolution.EliteCount {
		t.Fatalf("clones = %d, want elite count %d", len(clones), config.Cfg().Evolution.EliteCount)
	}
	if len(clones[0].Segments) != len(best.Segments) {
		t.Error("first elite should clone the fittest genome")
	}
}

func TestEvolveExactSizeWithAdoptees(t *testing.T) {
	m := newTestManager(6)
	for i := 0; i < 5; i++ {
		m.Adopt(genome.NewRandom(rand.New(rand.NewSource(int64(i)))))
	}
	if len(m.Population) != 11 {
		t.Fatalf("population with adoptees = %d, want 11", len(m.Population))
	}

	m.EvolveNextGeneration()

	if len(m.Population) != 6 {
		t.Errorf("population after turnover = %d, want target size 6", len(m.Population))
	}
}

func TestSelectionFavorsFitness(t *testing.T) {
	m := newTestManager(10)
	for i := range m.Population {
		m.Population[i].Fitness = float64(i)
	}
	ranked := m.ranked()

	wins := make(map[float64]int)
	for i := 0; i < 2000; i++ {
		wins[m.selectParent(ranked).Fitness]++
	}

	// Tournament selection should pick the top half far more often than
	// the bottom half.
	top, bottom := 0, 0
	for f, n := range wins {
		if f >= 5 {
			top += n
		} else {
			bottom += n
		}
	}
	if top <= bottom*2 {
		t.Errorf("selection bias too weak: top=%d bottom=%d", top, bottom)
	}
}

func TestOffspringGenerationStamp(t *testing.T) {
	m := newTestManager(8)
	m.EvolveNextGeneration()
	for i, g := range m.Population {
		if g.Generation != 1 {
			t.Errorf("population[%d] generation = %d, want 1", i, g.Generation)
		}
		if g.Fitness != 0 {
			t.Errorf("population[%d] fitness = %v, want 0", i, g.Fitness)
		}
	}
}

func TestSeedStampsGeneration(t *testing.T) {
	m := NewManager(1)
	rng := rand.New(rand.NewSource(9))
	a := genome.NewRandom(rng)
	a.Generation = 7
	b := genome.NewRandom(rng)
	b.Generation = 3

	m.Seed([]*genome.Genome{a, b})

	if m.Generation != 7 {
		t.Errorf("generation = %d, want 7 (max of seeded genomes)", m.Generation)
	}
}
