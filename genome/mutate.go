package genome

import (
	"math"
	"math/rand"
)

// Field sensitivity multipliers on the base mutation rate. Motor timing
// mutates more often than morphology; structural changes are rare.
const (
	colorRateFactor   = 0.5
	gripperRateFactor = 0.1
	motorRateFactor   = 1.5
	weightRateFactor  = 2.0
	addSensorFactor   = 0.05
	addBranchFactor   = 0.08
)

// Runtime clamps for motor modulation; generation-time caps are tighter.
const (
	MaxAmplitude = 20.0
	MaxFrequency = 5.0
)

// Mutate returns a mutated deep copy of g; the receiver is never
// modified. Each numeric field independently mutates with probability
// rate (scaled per field), perturbed within its clamped range.
// Structural mutations keep the weight matrix consistent by appending
// a matching row or column.
func (g *Genome) Mutate(rng *rand.Rand, rate float64) *Genome {
	m := g.Clone()

	if chance(rng, rate) {
		m.Beauty = clamp(m.Beauty+span(rng, 0.1), 0, 1)
	}

	for i := range m.Segments {
		mutateSegment(rng, &m.Segments[i], rate, m.Beauty)
	}
	for i := range m.Joints {
		mutateJoint(rng, &m.Joints[i], rate)
	}
	for i := range m.Sensors {
		mutateSensor(rng, &m.Sensors[i], rate)
	}
	for si := range m.Weights {
		for ji := range m.Weights[si] {
			mutateWeight(rng, &m.Weights[si][ji], rate)
		}
	}

	if chance(rng, rate*addSensorFactor) && len(m.Sensors) < MaxSensors {
		m.addSensor(rng)
	}
	if chance(rng, rate*addBranchFactor) && len(m.Segments) < MaxSegments {
		m.addBranch(rng)
	}

	return m
}

func mutateSegment(rng *rand.Rand, seg *Segment, rate, beauty float64) {
	if chance(rng, rate) {
		switch seg.Shape {
		case ShapeCircle:
			seg.Radius = clamp(seg.Radius+span(rng, 10), MinCircleRadius, MaxCircleRadius)
		case ShapeRect:
			seg.Length = clamp(seg.Length+span(rng, 15), MinRectLength, MaxRectLength)
			seg.Width = clamp(seg.Width+span(rng, 6), MinRectWidth, MaxRectWidth)
		}
	}
	if chance(rng, rate) {
		seg.Mass = clamp(seg.Mass+span(rng, 0.5), MinMass, MaxMass)
	}
	if chance(rng, rate*colorRateFactor) {
		// Higher beauty skews the drift toward lighter, brighter color.
		bias := beauty * 10
		seg.Color.R = clampChannel(float64(seg.Color.R) + span(rng, 20) + bias)
		seg.Color.G = clampChannel(float64(seg.Color.G) + span(rng, 20) + bias)
		seg.Color.B = clampChannel(float64(seg.Color.B) + span(rng, 20) + bias)
	}
	if chance(rng, rate*gripperRateFactor) {
		seg.Gripper = !seg.Gripper
	}
}

func mutateJoint(rng *rand.Rand, j *Joint, rate float64) {
	if chance(rng, rate) {
		j.RestLength = clamp(j.RestLength+span(rng, 5), MinRestLength, MaxRestLength)
		if j.RestLength < j.MinLength {
			j.MinLength = j.RestLength * 0.5
		}
		if j.RestLength > j.MaxLength {
			j.MaxLength = j.RestLength * 1.5
		}
	}
	if chance(rng, rate) {
		j.Stiffness = clamp(j.Stiffness+span(rng, 0.1), MinStiffness, MaxStiffness)
	}
	if chance(rng, rate*motorRateFactor) {
		j.Motor.Amplitude = clamp(j.Motor.Amplitude+span(rng, 2), 0, MaxGeneAmplitude)
	}
	if chance(rng, rate*motorRateFactor) {
		j.Motor.Frequency = clamp(j.Motor.Frequency+span(rng, 0.5), MinFrequency, MaxGeneFrequency)
	}
	if chance(rng, rate*motorRateFactor) {
		// Phase is unbounded but kept wrapped for readability.
		j.Motor.Phase = math.Mod(j.Motor.Phase+span(rng, math.Pi/4)+2*math.Pi, 2*math.Pi)
	}
}

func mutateSensor(rng *rand.Rand, s *Sensor, rate float64) {
	if chance(rng, rate) {
		s.Angle = math.Mod(s.Angle+span(rng, math.Pi/6)+2*math.Pi, 2*math.Pi)
	}
	if chance(rng, rate) {
		switch s.Type {
		case SensorEye:
			s.Range = clamp(s.Range+span(rng, 25), MinEyeRange, MaxEyeRange)
		case SensorFeeler:
			s.Range = clamp(s.Range+span(rng, 10), MinFeelerRange, MaxFeelerRange)
		}
	}
	if s.Type == SensorEye && chance(rng, rate) {
		s.FOV = clamp(s.FOV+span(rng, math.Pi/12), MinFOV, MaxFOV)
	}
}

func mutateWeight(rng *rand.Rand, w *Weight, rate float64) {
	r := rate * weightRateFactor
	if chance(rng, r) {
		w.Amplitude = clamp(w.Amplitude+span(rng, 0.4), -2, 2)
	}
	if chance(rng, r) {
		w.Frequency = clamp(w.Frequency+span(rng, 0.2), -1, 1)
	}
	if chance(rng, r) {
		w.Phase = clamp(w.Phase+span(rng, 0.2), -1, 1)
	}
}

// addSensor appends a new random sensor and a matching weight row.
func (g *Genome) addSensor(rng *rand.Rand) {
	s := randomSensor(rng, len(g.Sensors), len(g.Segments))
	g.Sensors = append(g.Sensors, s)
	g.Weights = append(g.Weights, randomWeightRow(rng, len(g.Joints)))
}

// addBranch attaches a new segment to a random existing segment and
// extends every weight row with a column for the new joint. The parent
// may already have children; branches make the skeleton non-linear.
func (g *Genome) addBranch(rng *rand.Rand) {
	parent := rng.Intn(len(g.Segments))
	seg := randomSegment(rng, len(g.Segments), g.BaseHue)
	seg.Parent = parent
	// Branch mutations may add extra mouths; lookup tolerates them.
	if chance(rng, 0.2) {
		seg.Mouth = true
	}
	g.Segments = append(g.Segments, seg)
	g.Joints = append(g.Joints, randomJoint(rng, parent, len(g.Segments)-1))

	for si := range g.Weights {
		g.Weights[si] = append(g.Weights[si], Weight{
			Amplitude: span(rng, 0.5),
			Frequency: span(rng, 0.25),
			Phase:     span(rng, 0.25),
		})
	}
}
