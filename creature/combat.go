package creature

import "github.com/pthm-cable/menagerie/config"

// TakeDamage reduces health only; food is a pure starvation timer and
// never changes here. Damage accounting feeds fitness on both sides.
func (c *Creature) TakeDamage(amount float64, attacker *Creature) {
	if c.state != StateAlive || amount <= 0 {
		return
	}
	c.Health -= amount
	c.DamageTaken += amount
	if attacker != nil {
		attacker.DamageDealt += amount
	}
	c.sink.Damage(attacker, c, amount)
	if c.Health <= 0 {
		c.Health = 0
		c.Die(attacker, CauseCombat)
	}
}

// RestoreHealth raises both metabolic pools by the same amount, clamped
// at their shared maximum. Power-ups replenish food and health alike.
func (c *Creature) RestoreHealth(amount float64) {
	if c.state != StateAlive {
		return
	}
	c.Food += amount
	if c.Food > MaxFood {
		c.Food = MaxFood
	}
	c.Health += amount
	if c.Health > MaxHealth {
		c.Health = MaxHealth
	}
}

// Die transitions the creature to DEAD. Idempotent: a second call is a
// no-op. A kill fully restores the killer's pools and credits the kill.
func (c *Creature) Die(killer *Creature, cause DeathCause) {
	if c.state == StateDead {
		return
	}
	c.state = StateDead
	c.cause = cause
	c.Food = 0
	c.Health = 0
	c.deadFor = 0

	if killer != nil && killer != c {
		killer.Health = MaxHealth
		killer.Food = MaxFood
		killer.Kills++
	}

	c.sink.Death(c, killer, cause)
}

// Fitness scores the creature: distance traveled from spawn, kills, and
// damage dealt reward; damage taken penalizes. Never negative.
func (c *Creature) Fitness() float64 {
	f := c.Centroid().Distance(c.spawnPos)*1.0 +
		float64(c.Kills)*100 +
		c.DamageDealt*0.5 -
		c.DamageTaken*0.3
	if f < 0 {
		return 0
	}
	return f
}

// AttackBonus scales attack damage linearly from 1.0x at age 0 to 2.0x
// at the configured age cap and beyond.
func (c *Creature) AttackBonus() float64 {
	t := c.Age / config.Cfg().Combat.AgeBonusCapSec
	if t > 1 {
		t = 1
	}
	return 1 + t
}

// DefenseFactor scales incoming damage linearly from 1.0x at age 0 down
// to 0.5x at the configured age cap and beyond.
func (c *Creature) DefenseFactor() float64 {
	t := c.Age / config.Cfg().Combat.AgeBonusCapSec
	if t > 1 {
		t = 1
	}
	return 1 - 0.5*t
}
