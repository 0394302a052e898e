package genome

import (
	"math"
	"math/rand"
)

// Crossover produces a child from two parents. One parent's full
// structure is copied as the base; blending mismatched trees would
// produce invalid topologies, so morphology is inherited wholesale and
// only behavior is mixed. For each joint index valid in the base and
// both parents, the motor pattern comes from a randomly chosen parent.
// The base hue blends to the midpoint with small jitter.
//
// The child keeps the base parent's weight matrix untouched, so the
// row/column invariant holds even when parents differ in joint count.
func Crossover(rng *rand.Rand, a, b *Genome) *Genome {
	base := a
	if rng.Intn(2) == 1 {
		base = b
	}
	child := base.Clone()

	n := len(child.Joints)
	if len(a.Joints) < n {
		n = len(a.Joints)
	}
	if len(b.Joints) < n {
		n = len(b.Joints)
	}
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 0 {
			child.Joints[i].Motor = a.Joints[i].Motor
		} else {
			child.Joints[i].Motor = b.Joints[i].Motor
		}
	}

	child.BaseHue = math.Mod((a.BaseHue+b.BaseHue)/2+span(rng, 12)+360, 360)
	child.Fitness = 0
	if a.Generation > child.Generation {
		child.Generation = a.Generation
	}
	if b.Generation > child.Generation {
		child.Generation = b.Generation
	}

	return child
}
