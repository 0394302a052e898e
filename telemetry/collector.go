package telemetry

import "github.com/pthm-cable/menagerie/creature"

// Collector accumulates events within time windows and produces
// WindowStats on flush.
type Collector struct {
	windowSec   float64
	windowStart float64

	// Event counters for the current window
	birthsInitial    int
	birthsEvolved    int
	birthsReproduced int
	birthsImported   int

	deathsStarved int
	deathsCombat  int
	deathsCulled  int

	kills       int
	damageTotal float64
	pickups     int
}

// NewCollector creates a collector flushing every windowSec simulated
// seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// RecordBirth records a birth by origin.
func (c *Collector) RecordBirth(origin BirthOrigin) {
	switch origin {
	case OriginInitial:
		c.birthsInitial++
	case OriginEvolved:
		c.birthsEvolved++
	case OriginReproduced:
		c.birthsReproduced++
	case OriginImported:
		c.birthsImported++
	}
}

// RecordDeath records a death by cause.
func (c *Collector) RecordDeath(cause creature.DeathCause) {
	switch cause {
	case creature.CauseStarvation:
		c.deathsStarved++
	case creature.CauseCombat:
		c.deathsCombat++
	case creature.CauseCulled:
		c.deathsCulled++
	}
}

// RecordKill records one creature killing another.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordDamage records damage dealt in a collision.
func (c *Collector) RecordDamage(amount float64) {
	c.damageTotal += amount
}

// RecordPickup records a collected power-up.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// ShouldFlush reports whether the current window has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats for the elapsed window and resets the
// counters. The caller provides current population samples and the id
// of the oldest living creature (-1 when none).
func (c *Collector) Flush(simTime float64, alive, generation int, fitnesses, ages []float64, oldestID int) WindowStats {
	fitMean, fitStd, fitP10, fitP50, fitP90 := ComputeDistribution(fitnesses)
	ageMean, _, _, _, _ := ComputeDistribution(ages)
	var ageMax float64
	if len(ages) > 0 {
		ageMax = maxOf(ages)
	}

	stats := WindowStats{
		WindowStartSec: c.windowStart,
		WindowEndSec:   simTime,
		Generation:     generation,
		Alive:          alive,

		BirthsInitial:    c.birthsInitial,
		BirthsEvolved:    c.birthsEvolved,
		BirthsReproduced: c.birthsReproduced,
		BirthsImported:   c.birthsImported,

		DeathsStarved: c.deathsStarved,
		DeathsCombat:  c.deathsCombat,
		DeathsCulled:  c.deathsCulled,

		Kills:       c.kills,
		DamageTotal: c.damageTotal,
		Pickups:     c.pickups,

		FitnessMean: fitMean,
		FitnessStd:  fitStd,
		FitnessP10:  fitP10,
		FitnessP50:  fitP50,
		FitnessP90:  fitP90,

		AgeMean:  ageMean,
		AgeMax:   ageMax,
		OldestID: oldestID,
	}

	c.windowStart = simTime
	c.birthsInitial = 0
	c.birthsEvolved = 0
	c.birthsReproduced = 0
	c.birthsImported = 0
	c.deathsStarved = 0
	c.deathsCombat = 0
	c.deathsCulled = 0
	c.kills = 0
	c.damageTotal = 0
	c.pickups = 0

	return stats
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
