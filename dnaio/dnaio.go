// Package dnaio saves and loads genomes as versioned JSON documents.
// Imports validate structural integrity before a genome gets anywhere
// near the simulation; a corrupt file is a recoverable error, never a
// crash.
package dnaio

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/menagerie/genome"
)

// FormatVersion is bumped when the document layout changes.
const FormatVersion = 1

// Document is the on-disk genome container.
type Document struct {
	Version int            `json:"version"`
	ID      string         `json:"id"`
	SavedAt time.Time      `json:"savedAt"`
	Genome  *genome.Genome `json:"genome"`
}

// Export writes a genome to path as a JSON document.
func Export(g *genome.Genome, path string) error {
	doc := Document{
		Version: FormatVersion,
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
		Genome:  g,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genome: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genome file: %w", err)
	}
	return nil
}

// Import reads and validates a genome document from path.
func Import(path string) (*genome.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genome file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing genome file: %w", err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("genome file version %d is newer than supported version %d", doc.Version, FormatVersion)
	}
	if doc.Genome == nil {
		return nil, fmt.Errorf("genome file has no genome")
	}
	if err := Validate(doc.Genome); err != nil {
		return nil, fmt.Errorf("invalid genome: %w", err)
	}
	return doc.Genome, nil
}

// Validate checks the structural invariants an imported genome must
// satisfy before instantiation.
func Validate(g *genome.Genome) error {
	n := len(g.Segments)
	if n == 0 {
		return fmt.Errorf("no segments")
	}

	for i := range g.Segments {
		seg := &g.Segments[i]
		if seg.Parent >= n {
			return fmt.Errorf("segment %d: parent %d out of range", i, seg.Parent)
		}
		if !positive(seg.Mass) {
			return fmt.Errorf("segment %d: bad mass %v", i, seg.Mass)
		}
		switch seg.Shape {
		case genome.ShapeCircle:
			if !positive(seg.Radius) {
				return fmt.Errorf("segment %d: bad radius %v", i, seg.Radius)
			}
		case genome.ShapeRect:
			if !positive(seg.Length) || !positive(seg.Width) {
				return fmt.Errorf("segment %d: bad dimensions %vx%v", i, seg.Length, seg.Width)
			}
		default:
			return fmt.Errorf("segment %d: unknown shape %d", i, seg.Shape)
		}
		if !finite(seg.AttachAngle) {
			return fmt.Errorf("segment %d: non-finite attach angle %v", i, seg.AttachAngle)
		}
	}

	for i, j := range g.Joints {
		if j.SegA < 0 || j.SegA >= n || j.SegB < 0 || j.SegB >= n {
			return fmt.Errorf("joint %d: segment reference out of range", i)
		}
		if !finite(j.RestLength) || !finite(j.MinLength) || !finite(j.MaxLength) ||
			!finite(j.Stiffness) || !finite(j.AnchorA.X) || !finite(j.AnchorA.Y) ||
			!finite(j.AnchorB.X) || !finite(j.AnchorB.Y) ||
			!finite(j.Motor.Amplitude) || !finite(j.Motor.Frequency) || !finite(j.Motor.Phase) {
			return fmt.Errorf("joint %d: non-finite parameter", i)
		}
		if j.MinLength > j.MaxLength {
			return fmt.Errorf("joint %d: min length %v above max %v", i, j.MinLength, j.MaxLength)
		}
	}

	for i, s := range g.Sensors {
		if s.Segment < 0 || s.Segment >= n {
			return fmt.Errorf("sensor %d: segment %d out of range", i, s.Segment)
		}
		if !positive(s.Range) {
			return fmt.Errorf("sensor %d: bad range %v", i, s.Range)
		}
		if !finite(s.Angle) || !finite(s.FOV) {
			return fmt.Errorf("sensor %d: non-finite angle", i)
		}
	}

	if len(g.Weights) != len(g.Sensors) {
		return fmt.Errorf("weight matrix has %d rows for %d sensors", len(g.Weights), len(g.Sensors))
	}
	for i, row := range g.Weights {
		if len(row) != len(g.Joints) {
			return fmt.Errorf("weight row %d has %d columns for %d joints", i, len(row), len(g.Joints))
		}
		for j, w := range row {
			if !finite(w.Amplitude) || !finite(w.Frequency) || !finite(w.Phase) {
				return fmt.Errorf("weight [%d][%d]: non-finite modulation", i, j)
			}
		}
	}

	if g.MemorySize < 0 {
		return fmt.Errorf("negative memory size %d", g.MemorySize)
	}
	if !finite(g.BaseHue) || !finite(g.Beauty) || !finite(g.Fitness) {
		return fmt.Errorf("non-finite scalar gene")
	}
	return nil
}

// finite rejects the NaN and Inf values a crafted document could smuggle
// past range checks (every comparison with NaN is false).
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

// SeedPopulation derives a population of n genomes from one import:
// the first is an exact clone, the rest are mutated variants. All keep
// the imported generation stamp so lineage depth survives the restart.
func SeedPopulation(rng *rand.Rand, g *genome.Genome, n int, mutationRate float64) []*genome.Genome {
	if n < 1 {
		n = 1
	}
	out := make([]*genome.Genome, 0, n)
	out = append(out, g.Clone())
	for i := 1; i < n; i++ {
		v := g.Mutate(rng, mutationRate)
		v.Generation = g.Generation
		v.Fitness = 0
		out = append(out, v)
	}
	return out
}
