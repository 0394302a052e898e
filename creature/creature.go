// Package creature builds and runs live creatures: a genome instantiated
// as a composite of rigid bodies and sprung joints inside a physics
// space, plus the runtime state (food, health, age, sensors, motors,
// memory) that drives behavior from tick to tick.
package creature

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/menagerie/config"
	"github.com/pthm-cable/menagerie/genome"
)

// State is the creature lifecycle state. The transition is one-way.
type State uint8

const (
	StateAlive State = iota
	StateDead
)

// CollisionType tags every creature shape for collision routing.
const CollisionType cp.CollisionType = 1

// Pool bounds shared by all creatures. Fixed invariants of the combat
// model (a kill sets the killer's pools to exactly these values), not
// tunables.
const (
	MaxFood   = 200.0
	MaxHealth = 200.0
)

// jointRuntime tracks one genome joint's physical constraint and its
// live (sensor-modulated) motor parameters. col is the joint's index
// in the genome, which stays the weight-matrix column key even after
// invalidated joints are pruned from the runtime slice.
type jointRuntime struct {
	gene       genome.Joint
	col        int
	constraint *cp.Constraint
	spring     *cp.DampedSpring
	live       genome.MotorPattern
	valid      bool
}

// sensorRuntime tracks one sensor's latest activation.
type sensorRuntime struct {
	gene       genome.Sensor
	activation float64
}

// Creature is a live instance of a genome. It owns its bodies and
// constraints within the space and must fully deregister them on
// destruction.
type Creature struct {
	ID     int
	Genome *genome.Genome

	Food   float64
	Health float64
	Age    float64 // monotonic; never reset, survives turnover for elites

	DamageDealt float64
	DamageTaken float64
	Kills       int

	// LastReproduction is the simulation time of the most recent
	// mid-generation reproduction this creature took part in.
	LastReproduction float64

	FadeAlpha float64

	bodies  []*cp.Body
	shapes  []*cp.Shape
	joints  []jointRuntime
	sensors []sensorRuntime
	memory  []float64

	state    State
	cause    DeathCause
	deadFor  float64
	simTime  float64
	spawnPos cp.Vector
	visible  []*Creature
	removed  bool

	sink EventSink
}

// New builds a creature from a genome at the given position, registering
// one body and shape per segment and one sprung constraint per joint.
// The genome is referenced, not copied; elites are re-pointed at fresh
// genome objects across generation turnover via SetGenome.
func New(id int, g *genome.Genome, space *cp.Space, pos cp.Vector, sink EventSink) *Creature {
	if sink == nil {
		sink = NopSink{}
	}
	c := &Creature{
		ID:               id,
		Genome:           g,
		Food:             100,
		Health:           100,
		FadeAlpha:        1,
		spawnPos:         pos,
		LastReproduction: -1e9,
		memory:           make([]float64, g.MemorySize),
		sink:             sink,
	}
	c.build(space, pos)
	return c
}

// build instantiates the segment tree. Segment world positions are laid
// out by walking parent edges; joints then hold the layout together.
func (c *Creature) build(space *cp.Space, pos cp.Vector) {
	g := c.Genome
	positions := make([]cp.Vector, len(g.Segments))
	angles := make([]float64, len(g.Segments))

	for i := range g.Segments {
		seg := &g.Segments[i]
		if seg.Parent < 0 || seg.Parent >= len(g.Segments) {
			positions[i] = pos
			angles[i] = 0
		} else {
			p := seg.Parent
			angles[i] = angles[p] + seg.AttachAngle
			gap := g.Segments[p].Extent() + seg.Extent() + restLengthTo(g, i)
			dir := cp.Vector{X: math.Cos(angles[i]), Y: math.Sin(angles[i])}
			positions[i] = positions[p].Add(dir.Mult(gap * 0.6))
		}
	}

	// All shapes within a creature share a filter group so the skeleton
	// never collides with itself.
	filter := cp.NewShapeFilter(uint(c.ID+1), cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)

	for i := range g.Segments {
		seg := &g.Segments[i]

		var moment float64
		switch seg.Shape {
		case genome.ShapeCircle:
			moment = cp.MomentForCircle(seg.Mass, 0, seg.Radius, cp.Vector{})
		case genome.ShapeRect:
			moment = cp.MomentForBox(seg.Mass, seg.Length, seg.Width)
		}

		body := space.AddBody(cp.NewBody(seg.Mass, moment))
		body.SetPosition(positions[i])
		body.SetAngle(angles[i])
		body.UserData = c

		var shape *cp.Shape
		switch seg.Shape {
		case genome.ShapeCircle:
			shape = cp.NewCircle(body, seg.Radius, cp.Vector{})
		case genome.ShapeRect:
			shape = cp.NewBox(body, seg.Length, seg.Width, 0)
		}
		shape.SetFriction(0.4)
		shape.SetElasticity(0.2)
		shape.SetCollisionType(CollisionType)
		shape.SetFilter(filter)
		shape.UserData = c
		space.AddShape(shape)

		c.bodies = append(c.bodies, body)
		c.shapes = append(c.shapes, shape)
	}

	ccfg := config.Cfg().Creature
	for ji, j := range g.Joints {
		if j.SegA < 0 || j.SegA >= len(c.bodies) || j.SegB < 0 || j.SegB >= len(c.bodies) {
			continue // malformed joint reference degrades to a missing spring
		}
		con := space.AddConstraint(cp.NewDampedSpring(
			c.bodies[j.SegA], c.bodies[j.SegB],
			cp.Vector{X: j.AnchorA.X, Y: j.AnchorA.Y},
			cp.Vector{X: j.AnchorB.X, Y: j.AnchorB.Y},
			j.RestLength,
			j.Stiffness*ccfg.SpringStiffness,
			ccfg.SpringDamping,
		))
		c.joints = append(c.joints, jointRuntime{
			gene:       j,
			col:        ji,
			constraint: con,
			spring:     con.Class.(*cp.DampedSpring),
			live:       j.Motor,
			valid:      true,
		})
	}

	for _, s := range g.Sensors {
		c.sensors = append(c.sensors, sensorRuntime{gene: s})
	}
}

// restLengthTo finds the rest length of the joint attaching segment i to
// its parent, defaulting when no such joint exists.
func restLengthTo(g *genome.Genome, i int) float64 {
	for _, j := range g.Joints {
		if j.SegB == i {
			return j.RestLength
		}
	}
	return 20
}

// IsAlive reports whether the creature is still alive.
func (c *Creature) IsAlive() bool { return c.state == StateAlive }

// Cause returns the recorded death cause.
func (c *Creature) Cause() DeathCause { return c.cause }

// Destructible reports whether the death fade has completed and the
// composite may be removed from the space. The owner must poll this.
func (c *Creature) Destructible() bool {
	ccfg := config.Cfg().Creature
	return c.state == StateDead && c.deadFor >= ccfg.DeathHoldSec+ccfg.DeathFadeSec
}

// Removed reports whether the composite has been deregistered.
func (c *Creature) Removed() bool { return c.removed }

// SetGenome re-points the creature at a new genome object. Used at
// generation turnover so elites keep their live body and age while
// picking up the incremented generation stamp. Runtime joint and sensor
// state keeps the original structure; elites are clones, so the
// structures match.
func (c *Creature) SetGenome(g *genome.Genome) {
	c.Genome = g
}

// SetVisible installs the list of other creatures this creature can
// currently consider for sensing. Refreshed once per frame, not per
// sub-step.
func (c *Creature) SetVisible(others []*Creature) {
	c.visible = others
}

// Position returns the heart segment's body position, or the spawn
// point if the composite is gone.
func (c *Creature) Position() cp.Vector {
	if b := c.HeartBody(); b != nil {
		return b.Position()
	}
	return c.spawnPos
}

// Centroid returns the mass-weighted centroid of all bodies.
func (c *Creature) Centroid() cp.Vector {
	var sum cp.Vector
	var mass float64
	for i, b := range c.bodies {
		m := c.Genome.Segments[i].Mass
		sum = sum.Add(b.Position().Mult(m))
		mass += m
	}
	if mass == 0 {
		return c.spawnPos
	}
	return sum.Mult(1 / mass)
}

// HeartBody returns the body of the heart segment (combat target),
// falling back to the first body when no segment is flagged.
func (c *Creature) HeartBody() *cp.Body {
	i := c.Genome.HeartIndex()
	if i < 0 || i >= len(c.bodies) {
		if len(c.bodies) == 0 {
			return nil
		}
		return c.bodies[0]
	}
	return c.bodies[i]
}

// MouthBody returns the body of the mouth segment (combat weapon),
// falling back to the last body when no segment is flagged.
func (c *Creature) MouthBody() *cp.Body {
	i := c.Genome.MouthIndex()
	if i < 0 || i >= len(c.bodies) {
		if len(c.bodies) == 0 {
			return nil
		}
		return c.bodies[len(c.bodies)-1]
	}
	return c.bodies[i]
}

// GripperBodies returns the bodies of gripper-flagged segments.
func (c *Creature) GripperBodies() []*cp.Body {
	var out []*cp.Body
	for i := range c.Genome.Segments {
		if c.Genome.Segments[i].Gripper && i < len(c.bodies) {
			out = append(out, c.bodies[i])
		}
	}
	return out
}

// JointCount returns the number of currently valid joints.
func (c *Creature) JointCount() int {
	n := 0
	for i := range c.joints {
		if c.joints[i].valid {
			n++
		}
	}
	return n
}

// MarkJointInvalid flags the runtime joint backed by con; the next
// update prunes it. The physics owner calls this when it removes a
// constraint out of band.
func (c *Creature) MarkJointInvalid(con *cp.Constraint) {
	for i := range c.joints {
		if c.joints[i].constraint == con {
			c.joints[i].valid = false
		}
	}
}

// RemoveFromSpace deregisters every body, shape, and constraint this
// creature registered. Safe to call more than once.
func (c *Creature) RemoveFromSpace(space *cp.Space) {
	if c.removed {
		return
	}
	c.removed = true
	for i := range c.joints {
		if c.joints[i].valid {
			space.RemoveConstraint(c.joints[i].constraint)
			c.joints[i].valid = false
		}
	}
	for _, s := range c.shapes {
		space.RemoveShape(s)
	}
	for _, b := range c.bodies {
		space.RemoveBody(b)
	}
	c.shapes = nil
	c.bodies = nil
}

// SegmentView is the per-segment render state handed to the renderer.
type SegmentView struct {
	Pos     cp.Vector
	Angle   float64
	Shape   genome.ShapeKind
	Radius  float64
	Length  float64
	Width   float64
	Color   genome.RGB
	Heart   bool
	Mouth   bool
	Gripper bool
}

// Segments returns the current render state of every body segment.
func (c *Creature) Segments() []SegmentView {
	views := make([]SegmentView, 0, len(c.bodies))
	for i, b := range c.bodies {
		seg := &c.Genome.Segments[i]
		views = append(views, SegmentView{
			Pos:     b.Position(),
			Angle:   b.Angle(),
			Shape:   seg.Shape,
			Radius:  seg.Radius,
			Length:  seg.Length,
			Width:   seg.Width,
			Color:   seg.Color,
			Heart:   seg.Heart,
			Mouth:   seg.Mouth,
			Gripper: seg.Gripper,
		})
	}
	return views
}

// SensorView is per-sensor render state for visualization.
type SensorView struct {
	Pos        cp.Vector
	Angle      float64
	Range      float64
	FOV        float64
	Type       genome.SensorType
	Activation float64
}

// Sensors returns the current state of every sensor.
func (c *Creature) Sensors() []SensorView {
	views := make([]SensorView, 0, len(c.sensors))
	for i := range c.sensors {
		s := &c.sensors[i]
		if s.gene.Segment < 0 || s.gene.Segment >= len(c.bodies) {
			continue
		}
		b := c.bodies[s.gene.Segment]
		views = append(views, SensorView{
			Pos:        b.Position(),
			Angle:      b.Angle() + s.gene.Angle,
			Range:      s.gene.Range,
			FOV:        s.gene.FOV,
			Type:       s.gene.Type,
			Activation: s.activation,
		})
	}
	return views
}
