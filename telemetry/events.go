// Package telemetry tracks simulation health: windowed event counters,
// per-generation summaries, and CSV experiment output.
package telemetry

// BirthOrigin identifies how a creature came into existence.
type BirthOrigin uint8

const (
	OriginInitial BirthOrigin = iota
	OriginEvolved
	OriginReproduced
	OriginImported
)

// String returns the origin name used in logs.
func (o BirthOrigin) String() string {
	switch o {
	case OriginInitial:
		return "initial"
	case OriginEvolved:
		return "evolved"
	case OriginReproduced:
		return "reproduced"
	case OriginImported:
		return "imported"
	default:
		return "unknown"
	}
}
