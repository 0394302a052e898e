package creature

import (
	"math"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/genome"
)

// Update advances the creature by dt seconds. Dead creatures only
// advance their fade timer so corpses finish fading before removal.
func (c *Creature) Update(dt float64) {
	if c.state == StateDead {
		c.updateFade(dt)
		return
	}

	c.Age += dt
	c.simTime += dt

	c.Food -= config.Cfg().Derived.FoodPerSec * dt
	if c.Food <= 0 {
		c.Food = 0
		c.Die(nil, CauseStarvation)
		return
	}

	c.pruneJoints()
	c.updateSensors()
	c.modulateMotors()
	c.advanceMotors()
	c.updateLocomotion(dt)
	c.updateMemory(dt)
}

// updateFade holds the corpse fully opaque, then fades it linearly.
func (c *Creature) updateFade(dt float64) {
	ccfg := config.Cfg().Creature
	c.deadFor += dt
	if c.deadFor <= ccfg.DeathHoldSec {
		c.FadeAlpha = 1
		return
	}
	c.FadeAlpha = 1 - (c.deadFor-ccfg.DeathHoldSec)/ccfg.DeathFadeSec
	if c.FadeAlpha < 0 {
		c.FadeAlpha = 0
	}
}

// pruneJoints drops runtime joints whose constraints were invalidated
// out of band. The physics engine does not tolerate dangling references.
func (c *Creature) pruneJoints() {
	kept := c.joints[:0]
	for i := range c.joints {
		if c.joints[i].valid {
			kept = append(kept, c.joints[i])
		}
	}
	c.joints = kept
}

// updateSensors scans visible living creatures and computes each
// sensor's activation: proximity drives signal strength, and the
// detected creature's beauty amplifies it up to 30%.
func (c *Creature) updateSensors() {
	for i := range c.sensors {
		s := &c.sensors[i]
		s.activation = 0

		if s.gene.Segment < 0 || s.gene.Segment >= len(c.bodies) {
			continue
		}
		body := c.bodies[s.gene.Segment]
		origin := body.Position()
		axis := body.Angle() + s.gene.Angle

		closest := math.Inf(1)
		closestBeauty := 0.0
		for _, other := range c.visible {
			if other == c || !other.IsAlive() {
				continue
			}
			target := other.Centroid()
			d := origin.Distance(target)
			if d > s.gene.Range || d >= closest {
				continue
			}
			if s.gene.Type == genome.SensorEye {
				diff := angleDiff(math.Atan2(target.Y-origin.Y, target.X-origin.X), axis)
				if diff > s.gene.FOV/2 {
					continue
				}
			}
			closest = d
			closestBeauty = other.Genome.Beauty
		}

		if !math.IsInf(closest, 1) {
			a := (1 - closest/s.gene.Range) * (1 + closestBeauty*0.3)
			if a > 1 {
				a = 1
			}
			s.activation = a
		}
	}
}

// modulateMotors sets each joint's live motor parameters: the genome
// baseline plus the sum of activation-weighted contributions from every
// sensor, clamped to safe ranges.
func (c *Creature) modulateMotors() {
	weights := c.Genome.Weights
	for ji := range c.joints {
		j := &c.joints[ji]
		live := j.gene.Motor
		for si := range c.sensors {
			if si >= len(weights) || j.col >= len(weights[si]) {
				continue
			}
			act := c.sensors[si].activation
			w := weights[si][j.col]
			live.Amplitude += act * w.Amplitude
			live.Frequency += act * w.Frequency
			live.Phase += act * w.Phase
		}
		live.Amplitude = clampF(live.Amplitude, 0, genome.MaxAmplitude)
		live.Frequency = clampF(live.Frequency, genome.MinFrequency, genome.MaxFrequency)
		j.live = live
	}
}

// advanceMotors drives each spring's rest length along its oscillator,
// clamped to the joint's length bounds.
func (c *Creature) advanceMotors() {
	for i := range c.joints {
		j := &c.joints[i]
		target := j.gene.RestLength +
			j.live.Amplitude*math.Sin(2*math.Pi*j.live.Frequency*c.simTime+j.live.Phase)
		j.spring.RestLength = clampF(target, j.gene.MinLength, j.gene.MaxLength)
	}
}

// updateLocomotion implements sticky feet: the first and last segments
// alternately grip and slide in anti-phase with the first joint's
// oscillator, so spring oscillation turns into crawling without any
// explicit force application. The sticking foot is damped hard, the
// sliding foot barely at all.
func (c *Creature) updateLocomotion(dt float64) {
	if len(c.joints) == 0 || len(c.bodies) < 2 {
		return
	}
	ccfg := config.Cfg().Creature
	m := c.joints[0].live
	s := math.Sin(2*math.Pi*m.Frequency*c.simTime + m.Phase)

	first, last := 0, len(c.bodies)-1
	if s > 0 {
		c.applyGrip(first, ccfg.GripHoldRate, dt)
		c.applyGrip(last, ccfg.GripSlideRate, dt)
	} else {
		c.applyGrip(first, ccfg.GripSlideRate, dt)
		c.applyGrip(last, ccfg.GripHoldRate, dt)
	}
}

// applyGrip modulates a segment's effective friction by damping its
// velocity and raising its contact friction while gripping.
func (c *Creature) applyGrip(i int, rate, dt float64) {
	b := c.bodies[i]
	f := math.Exp(-rate * dt)
	b.SetVelocityVector(b.Velocity().Mult(f))
	c.shapes[i].SetFriction(0.2 + rate*0.1)
}

// updateMemory leaks each memory slot toward its sensor's current
// activation; slots beyond the sensor count decay toward zero.
func (c *Creature) updateMemory(dt float64) {
	leak := config.Cfg().Creature.MemoryLeakRate * dt
	if leak > 1 {
		leak = 1
	}
	for i := range c.memory {
		target := 0.0
		if i < len(c.sensors) {
			target = c.sensors[i].activation
		}
		c.memory[i] += (target - c.memory[i]) * leak
	}
}

// Memory returns the sensor memory vector (read-only view for display).
func (c *Creature) Memory() []float64 { return c.memory }

// angleDiff returns the absolute angular difference wrapped to [0, pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return math.Abs(d)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
