// dnatool generates, inspects, and mutates DNA files without running
// the simulator.
//
//	dnatool -gen -out creature.json -seed 7
//	dnatool -in creature.json
//	dnatool -in creature.json -mutate 0.3 -out variant.json
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/dnaio"
	"github.com/pthm-cable/menagerie/genome"
)

func main() {
	gen := flag.Bool("gen", false, "Generate a random genome")
	in := flag.String("in", "", "DNA file to read")
	out := flag.String("out", "", "DNA file to write")
	mutate := flag.Float64("mutate", 0, "Mutation rate to apply before writing (0 = none)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	var g *genome.Genome
	switch {
	case *gen:
		g = genome.NewRandom(rng)
	case *in != "":
		var err error
		g, err = dnaio.Import(*in)
		if err != nil {
			slog.Error("import failed", "path", *in, "error", err)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	slog.Info("genome",
		"segments", len(g.Segments),
		"joints", len(g.Joints),
		"sensors", len(g.Sensors),
		"memory", g.MemorySize,
		"generation", g.Generation,
		"fitness", g.Fitness,
		"beauty", g.Beauty,
	)

	if *mutate > 0 {
		g = g.Mutate(rng, *mutate)
		slog.Info("mutated", "rate", *mutate)
	}

	if *out != "" {
		if err := dnaio.Export(g, *out); err != nil {
			slog.Error("export failed", "path", *out, "error", err)
			os.Exit(1)
		}
		slog.Info("written", "path", *out)
	}
}
