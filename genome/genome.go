// Package genome defines the heritable blueprint for one creature: body
// segments, joints with sinusoidal motor patterns, sensors, and the
// sensor-to-motor weight matrix that couples sensing to movement.
//
// Genomes are immutable by convention. Every genetic operator (Clone,
// Mutate, Crossover) returns a fresh deep copy and never touches its
// inputs. Segments and joints reference each other by index, never by
// pointer, so copies and serialization stay trivially correct.
package genome

// ShapeKind selects the geometry of a segment.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeRect
)

// SensorType selects the sensing model of a sensor.
type SensorType uint8

const (
	// SensorEye is directional with a limited field of view.
	SensorEye SensorType = iota
	// SensorFeeler is omnidirectional with a short range.
	SensorFeeler
)

// RGB is a plain color triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Vec2 is a local-space offset. The genome carries no physics types.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment describes one rigid body part.
//
// The shape is a tagged variant: circles use Radius, rectangles use
// Length and Width. Geometry code must switch exhaustively on Shape.
type Segment struct {
	ID          int       `json:"id"`
	Parent      int       `json:"parent"` // index of the parent segment, -1 for the root
	AttachAngle float64   `json:"attachAngle"`
	Shape       ShapeKind `json:"shape"`
	Radius      float64   `json:"radius,omitempty"`
	Length      float64   `json:"length,omitempty"`
	Width       float64   `json:"width,omitempty"`
	Mass        float64   `json:"mass"`
	Color       RGB       `json:"color"`
	Heart       bool      `json:"heart,omitempty"`
	Mouth       bool      `json:"mouth,omitempty"`
	Gripper     bool      `json:"gripper,omitempty"`
}

// MotorPattern is the sinusoidal oscillator driving a joint's rest length.
type MotorPattern struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	Phase     float64 `json:"phase"`
}

// Joint connects two segments with a sprung distance constraint.
// SegA and SegB are segment indices; the skeleton is always a tree,
// though branch mutations let one parent hold several children.
type Joint struct {
	SegA       int          `json:"segA"`
	SegB       int          `json:"segB"`
	AnchorA    Vec2         `json:"anchorA"`
	AnchorB    Vec2         `json:"anchorB"`
	RestLength float64      `json:"restLength"`
	MinLength  float64      `json:"minLength"`
	MaxLength  float64      `json:"maxLength"`
	Stiffness  float64      `json:"stiffness"`
	Motor      MotorPattern `json:"motorPattern"`
}

// Sensor produces a scalar activation from nearby creatures.
type Sensor struct {
	ID      int        `json:"id"`
	Type    SensorType `json:"type"`
	Segment int        `json:"segmentId"` // index into Segments
	Angle   float64    `json:"angle"`
	Range   float64    `json:"range"`
	FOV     float64    `json:"fov,omitempty"` // eyes only
}

// Weight modulates one joint's motor pattern from one sensor's activation.
type Weight struct {
	Amplitude float64 `json:"amplitudeMod"`
	Frequency float64 `json:"frequencyMod"`
	Phase     float64 `json:"phaseMod"`
}

// Genome is the full heritable blueprint.
//
// Invariant: Weights always holds one row per sensor and one column per
// joint. Structural mutations extend the matrix in lockstep.
type Genome struct {
	Segments []Segment  `json:"segments"`
	Joints   []Joint    `json:"joints"`
	Sensors  []Sensor   `json:"sensors"`
	Weights  [][]Weight `json:"sensorMotorWeights"`

	Generation int     `json:"generation"`
	Fitness    float64 `json:"fitness"`
	BaseHue    float64 `json:"baseHue"`
	Beauty     float64 `json:"beauty"`
	MemorySize int     `json:"memorySize"`
}

// Clone returns a deep copy sharing no mutable substructure with g.
func (g *Genome) Clone() *Genome {
	c := *g
	c.Segments = append([]Segment(nil), g.Segments...)
	c.Joints = append([]Joint(nil), g.Joints...)
	c.Sensors = append([]Sensor(nil), g.Sensors...)
	c.Weights = make([][]Weight, len(g.Weights))
	for i, row := range g.Weights {
		c.Weights[i] = append([]Weight(nil), row...)
	}
	return &c
}

// HeartIndex returns the index of the heart segment: the first segment
// flagged as heart, falling back to the first segment when none is
// flagged. Returns -1 for an empty genome.
func (g *Genome) HeartIndex() int {
	for i := range g.Segments {
		if g.Segments[i].Heart {
			return i
		}
	}
	if len(g.Segments) == 0 {
		return -1
	}
	return 0
}

// MouthIndex returns the index of the mouth segment: the last segment
// flagged as mouth, falling back to the last segment when none is
// flagged. Returns -1 for an empty genome.
func (g *Genome) MouthIndex() int {
	for i := len(g.Segments) - 1; i >= 0; i-- {
		if g.Segments[i].Mouth {
			return i
		}
	}
	return len(g.Segments) - 1
}

// Extent returns the characteristic half-size of a segment, used for
// placing children along the skeleton.
func (s *Segment) Extent() float64 {
	switch s.Shape {
	case ShapeCircle:
		return s.Radius
	case ShapeRect:
		return s.Length / 2
	}
	return s.Radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
