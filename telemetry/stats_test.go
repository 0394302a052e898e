package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/menagerie/creature"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantP50  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{5}, 5, 5},
		{"uniform", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, _, _, p50, _ := ComputeDistribution(tt.values)
			if math.Abs(mean-tt.wantMean) > 1e-9 {
				t.Errorf("mean = %v, want %v", mean, tt.wantMean)
			}
			if math.Abs(p50-tt.wantP50) > 1e-9 {
				t.Errorf("p50 = %v, want %v", p50, tt.wantP50)
			}
		})
	}
}

func TestComputeDistributionDoesNotModifyInput(t *testing.T) {
	values := []float64{9, 1, 5, 3, 7}
	ComputeDistribution(values)
	want := []float64{9, 1, 5, 3, 7}
	for i := range values {
		if values[i] != want[i] {
			t.Fatalf("input reordered: %v", values)
		}
	}
}

func TestCollectorWindowing(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(5) {
		t.Error("should not flush before the window elapses")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush once the window elapses")
	}
}

func TestCollectorFlushResetsCounters(t *testing.T) {
	c := NewCollector(10)
	c.RecordBirth(OriginEvolved)
	c.RecordBirth(OriginReproduced)
	c.RecordDeath(creature.CauseStarvation)
	c.RecordDeath(creature.CauseCombat)
	c.RecordKill()
	c.RecordDamage(12.5)
	c.RecordPickup()

	stats := c.Flush(10, 8, 2, []float64{1, 2, 3}, []float64{30, 60}, 4)

	if stats.BirthsEvolved != 1 || stats.BirthsReproduced != 1 {
		t.Errorf("births = %d/%d, want 1/1", stats.BirthsEvolved, stats.BirthsReproduced)
	}
	if stats.DeathsStarved != 1 || stats.DeathsCombat != 1 {
		t.Errorf("deaths = %d/%d, want 1/1", stats.DeathsStarved, stats.DeathsCombat)
	}
	if stats.Kills != 1 || stats.DamageTotal != 12.5 || stats.Pickups != 1 {
		t.Errorf("kills/damage/pickups = %d/%v/%d", stats.Kills, stats.DamageTotal, stats.Pickups)
	}
	if stats.Alive != 8 || stats.Generation != 2 {
		t.Errorf("alive/generation = %d/%d, want 8/2", stats.Alive, stats.Generation)
	}
	if stats.AgeMax != 60 {
		t.Errorf("ageMax = %v, want 60", stats.AgeMax)
	}
	if stats.OldestID != 4 {
		t.Errorf("oldestID = %d, want 4", stats.OldestID)
	}

	// The next window starts clean.
	next := c.Flush(20, 8, 2, nil, nil, -1)
	if next.OldestID != -1 {
		t.Errorf("oldestID with no survivors = %d, want -1", next.OldestID)
	}
	if next.Kills != 0 || next.BirthsEvolved != 0 || next.DamageTotal != 0 {
		t.Error("counters should reset after flush")
	}
	if next.WindowStartSec != 10 {
		t.Errorf("windowStart = %v, want 10", next.WindowStartSec)
	}
}

func TestNilOutputManagerIsSafe(t *testing.T) {
	var om *OutputManager
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil write returned %v", err)
	}
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Errorf("nil write returned %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil close returned %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil dir should be empty")
	}
}

func TestOutputManagerWritesFiles(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	if err := om.WriteTelemetry(WindowStats{WindowEndSec: 10, Alive: 5}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndSec: 20, Alive: 4}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteGeneration(GenerationStats{Generation: 1, BestFitness: 42}); err != nil {
		t.Fatal(err)
	}
}
