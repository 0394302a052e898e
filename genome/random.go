package genome

import (
	"math"
	"math/rand"
)

// Generation and mutation bounds. Mutation clamps numeric fields back
// into these ranges so physics stays stable no matter how long a
// lineage drifts.
const (
	MinSegments = 2
	MaxSegments = 8
	MaxSensors  = 5

	MinCircleRadius = 5
	MaxCircleRadius = 30
	MinRectLength   = 15
	MaxRectLength   = 70
	MinRectWidth    = 5
	MaxRectWidth    = 25

	MinMass = 0.3
	MaxMass = 3.0

	MinRestLength = 5
	MaxRestLength = 60
	MinStiffness  = 0.1
	MaxStiffness  = 0.9

	MaxGeneAmplitude = 15  // generation-time cap; modulation may push to 20
	MinFrequency     = 0.1
	MaxGeneFrequency = 4.0

	MinEyeRange    = 100
	MaxEyeRange    = 300
	MinFeelerRange = 20
	MaxFeelerRange = 80
	MinFOV         = math.Pi / 6
	MaxFOV         = math.Pi

	DefaultMemorySize = 8
)

// NewRandom generates a fresh genome: a linear chain of 2-5 segments
// with the root flagged as heart and the tail as mouth, 1-3 sensors,
// and a fully randomized sensor-to-motor weight matrix. Deterministic
// given a seeded rng.
func NewRandom(rng *rand.Rand) *Genome {
	g := &Genome{
		BaseHue:    rng.Float64() * 360,
		Beauty:     rng.Float64(),
		MemorySize: DefaultMemorySize,
	}

	nSegs := MinSegments + rng.Intn(4) // 2-5 at generation time
	for i := 0; i < nSegs; i++ {
		seg := randomSegment(rng, i, g.BaseHue)
		if i == 0 {
			seg.Parent = -1
			seg.Heart = true
		} else {
			seg.Parent = i - 1
		}
		if i == nSegs-1 {
			seg.Mouth = true
		}
		g.Segments = append(g.Segments, seg)

		if i > 0 {
			g.Joints = append(g.Joints, randomJoint(rng, i-1, i))
		}
	}

	nSensors := 1 + rng.Intn(3)
	for i := 0; i < nSensors; i++ {
		g.Sensors = append(g.Sensors, randomSensor(rng, i, len(g.Segments)))
	}

	g.Weights = make([][]Weight, len(g.Sensors))
	for si := range g.Weights {
		g.Weights[si] = randomWeightRow(rng, len(g.Joints))
	}

	return g
}

func randomSegment(rng *rand.Rand, id int, baseHue float64) Segment {
	seg := Segment{
		ID:          id,
		AttachAngle: span(rng, math.Pi/3),
		Mass:        MinMass + rng.Float64()*(MaxMass-MinMass),
		Color:       familyColor(rng, baseHue),
	}
	if rng.Intn(2) == 0 {
		seg.Shape = ShapeCircle
		seg.Radius = MinCircleRadius + rng.Float64()*(MaxCircleRadius-MinCircleRadius)
	} else {
		seg.Shape = ShapeRect
		seg.Length = MinRectLength + rng.Float64()*(MaxRectLength-MinRectLength)
		seg.Width = MinRectWidth + rng.Float64()*(MaxRectWidth-MinRectWidth)
	}
	return seg
}

func randomJoint(rng *rand.Rand, a, b int) Joint {
	rest := 15 + rng.Float64()*30
	return Joint{
		SegA:       a,
		SegB:       b,
		AnchorA:    Vec2{},
		AnchorB:    Vec2{},
		RestLength: rest,
		MinLength:  math.Max(MinRestLength, rest*0.5),
		MaxLength:  math.Min(MaxRestLength*1.5, rest*1.8),
		Stiffness:  MinStiffness + rng.Float64()*(MaxStiffness-MinStiffness),
		Motor: MotorPattern{
			Amplitude: rng.Float64() * MaxGeneAmplitude,
			Frequency: MinFrequency + rng.Float64()*(MaxGeneFrequency-MinFrequency),
			Phase:     rng.Float64() * 2 * math.Pi,
		},
	}
}

func randomSensor(rng *rand.Rand, id, nSegs int) Sensor {
	s := Sensor{
		ID:      id,
		Segment: rng.Intn(nSegs),
		Angle:   rng.Float64() * 2 * math.Pi,
	}
	if rng.Intn(2) == 0 {
		s.Type = SensorEye
		s.Range = MinEyeRange + rng.Float64()*(MaxEyeRange-MinEyeRange)
		s.FOV = MinFOV + rng.Float64()*(MaxFOV-MinFOV)
	} else {
		s.Type = SensorFeeler
		s.Range = MinFeelerRange + rng.Float64()*(MaxFeelerRange-MinFeelerRange)
	}
	return s
}

func randomWeightRow(rng *rand.Rand, nJoints int) []Weight {
	row := make([]Weight, nJoints)
	for i := range row {
		row[i] = Weight{
			Amplitude: span(rng, 0.5),
			Frequency: span(rng, 0.25),
			Phase:     span(rng, 0.25),
		}
	}
	return row
}

// familyColor perturbs the genome's base hue so siblings share a family
// look without being identical.
func familyColor(rng *rand.Rand, baseHue float64) RGB {
	hue := math.Mod(baseHue+span(rng, 25)+360, 360)
	light := 0.35 + rng.Float64()*0.3
	return colorFromHue(hue, light)
}

// colorFromHue converts hue (degrees) and lightness to RGB at full
// saturation, HSL-style.
func colorFromHue(hue, light float64) RGB {
	c := (1 - math.Abs(2*light-1))
	h := hue / 60
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	var r, g, b float64
	switch {
	case h < 1:
		r, g, b = c, x, 0
	case h < 2:
		r, g, b = x, c, 0
	case h < 3:
		r, g, b = 0, c, x
	case h < 4:
		r, g, b = 0, x, c
	case h < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := light - c/2
	return RGB{
		R: clampChannel((r + m) * 255),
		G: clampChannel((g + m) * 255),
		B: clampChannel((b + m) * 255),
	}
}

// span returns a uniform value in [-d, d].
func span(rng *rand.Rand, d float64) float64 {
	return (rng.Float64()*2 - 1) * d
}

func chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}
