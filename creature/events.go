package creature

// DeathCause records why a creature died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseCombat
	CauseCulled // removed at generation turnover or recovery purge
)

// String returns a human-readable cause name.
func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseCombat:
		return "combat"
	case CauseCulled:
		return "culled"
	default:
		return "none"
	}
}

// EventSink receives discrete domain events. Creatures hold an injected
// sink rather than reaching into ambient simulation state; callers that
// don't care pass NopSink.
type EventSink interface {
	// Death fires once per creature. Killer is nil for starvation.
	Death(victim *Creature, killer *Creature, cause DeathCause)
	// Damage fires on every non-zero damage application.
	Damage(attacker *Creature, victim *Creature, amount float64)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Death(*Creature, *Creature, DeathCause) {}
func (NopSink) Damage(*Creature, *Creature, float64)   {}
