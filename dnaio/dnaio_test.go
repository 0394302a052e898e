package dnaio

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/menagerie/genome"
)

func TestExportImportRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := genome.NewRandom(rng)
	g.Generation = 12
	g.Fitness = 345.6

	path := filepath.Join(t.TempDir(), "creature.json")
	if err := Export(g, path); err != nil {
		t.Fatal(err)
	}

	got, err := Import(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Segments) != len(g.Segments) {
		t.Errorf("segments = %d, want %d", len(got.Segments), len(g.Segments))
	}
	if got.Generation != 12 {
		t.Errorf("generation = %d, want 12", got.Generation)
	}
	if got.Fitness != 345.6 {
		t.Errorf("fitness = %v, want 345.6", got.Fitness)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(path); err == nil {
		t.Error("garbage file should fail to import")
	}
}

func TestImportRejectsMissingFile(t *testing.T) {
	if _, err := Import(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file should fail to import")
	}
}

func TestValidate(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	tests := []struct {
		name   string
		mangle func(g *genome.Genome)
		wantOK bool
	}{
		{"valid random genome", func(*genome.Genome) {}, true},
		{"no segments", func(g *genome.Genome) { g.Segments = nil }, false},
		{"joint references missing segment", func(g *genome.Genome) {
			g.Joints[0].SegB = 99
		}, false},
		{"sensor references missing segment", func(g *genome.Genome) {
			g.Sensors[0].Segment = 99
		}, false},
		{"weight rows mismatch sensors", func(g *genome.Genome) {
			g.Weights = g.Weights[:len(g.Weights)-1]
		}, false},
		{"weight columns mismatch joints", func(g *genome.Genome) {
			g.Weights[0] = g.Weights[0][:0]
		}, false},
		{"zero mass", func(g *genome.Genome) { g.Segments[0].Mass = 0 }, false},
		{"inverted joint bounds", func(g *genome.Genome) {
			g.Joints[0].MinLength = 50
			g.Joints[0].MaxLength = 10
		}, false},
		// NaN compares false against every bound, so finiteness needs its
		// own checks.
		{"NaN mass", func(g *genome.Genome) { g.Segments[0].Mass = math.NaN() }, false},
		{"infinite radius", func(g *genome.Genome) {
			g.Segments[0].Shape = genome.ShapeCircle
			g.Segments[0].Radius = math.Inf(1)
		}, false},
		{"NaN rest length", func(g *genome.Genome) { g.Joints[0].RestLength = math.NaN() }, false},
		{"NaN sensor range", func(g *genome.Genome) { g.Sensors[0].Range = math.NaN() }, false},
		{"NaN weight", func(g *genome.Genome) { g.Weights[0][0].Amplitude = math.NaN() }, false},
		{"NaN beauty", func(g *genome.Genome) { g.Beauty = math.NaN() }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g *genome.Genome
			// Regenerate until the genome has joints, sensors, and weights
			// to mangle.
			for {
				g = genome.NewRandom(rng)
				if len(g.Joints) > 0 && len(g.Sensors) > 0 && len(g.Weights) > 0 && len(g.Weights[0]) > 0 {
					break
				}
			}
			tt.mangle(g)
			err := Validate(g)
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSeedPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := genome.NewRandom(rng)
	g.Generation = 9
	g.Fitness = 100

	pop := SeedPopulation(rng, g, 5, 0.2)

	if len(pop) != 5 {
		t.Fatalf("population = %d, want 5", len(pop))
	}
	if pop[0] == g {
		t.Error("first seed should be a clone, not the original")
	}
	if len(pop[0].Segments) != len(g.Segments) {
		t.Error("first seed should be an exact structural copy")
	}
	for i, p := range pop {
		if p.Generation != 9 {
			t.Errorf("seed %d generation = %d, want 9", i, p.Generation)
		}
	}
	for i := 1; i < len(pop); i++ {
		if pop[i].Fitness != 0 {
			t.Errorf("seed %d fitness = %v, want 0", i, pop[i].Fitness)
		}
	}
}
