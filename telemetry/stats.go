package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowStartSec float64 `csv:"-"`
	WindowEndSec   float64 `csv:"sim_time"`
	Generation     int     `csv:"generation"`
	Alive          int     `csv:"alive"`

	// Births by origin during the window
	BirthsInitial    int `csv:"births_initial"`
	BirthsEvolved    int `csv:"births_evolved"`
	BirthsReproduced int `csv:"births_reproduced"`
	BirthsImported   int `csv:"births_imported"`

	// Deaths by cause during the window
	DeathsStarved int `csv:"deaths_starved"`
	DeathsCombat  int `csv:"deaths_combat"`
	DeathsCulled  int `csv:"deaths_culled"`

	Kills       int     `csv:"kills"`
	DamageTotal float64 `csv:"damage_total"`
	Pickups     int     `csv:"pickups"`

	// Fitness distribution (sampled at window end)
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`

	AgeMean float64 `csv:"age_mean"`
	AgeMax  float64 `csv:"age_max"`

	// OldestID is the id of the oldest living creature, -1 when none.
	OldestID int `csv:"oldest_id"`
}

// ComputeDistribution calculates mean, standard deviation, and
// percentiles of a sample. Returns zeros for an empty sample.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("sim_time", s.WindowEndSec),
		slog.Int("generation", s.Generation),
		slog.Int("alive", s.Alive),
		slog.Int("births_initial", s.BirthsInitial),
		slog.Int("births_evolved", s.BirthsEvolved),
		slog.Int("births_reproduced", s.BirthsReproduced),
		slog.Int("births_imported", s.BirthsImported),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("deaths_combat", s.DeathsCombat),
		slog.Int("deaths_culled", s.DeathsCulled),
		slog.Int("kills", s.Kills),
		slog.Float64("damage_total", s.DamageTotal),
		slog.Int("pickups", s.Pickups),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_p10", s.FitnessP10),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_p90", s.FitnessP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_max", s.AgeMax),
		slog.Int("oldest_id", s.OldestID),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// GenerationStats summarizes one completed generation.
type GenerationStats struct {
	Generation  int     `csv:"generation"`
	BestFitness float64 `csv:"best_fitness"`
	AvgFitness  float64 `csv:"avg_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	Population  int     `csv:"population"`
	Births      int     `csv:"births"`
	Deaths      int     `csv:"deaths"`
	DurationSec float64 `csv:"duration_sec"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("avg_fitness", s.AvgFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Int("population", s.Population),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("duration_sec", s.DurationSec),
	)
}
