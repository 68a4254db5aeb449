package world

import "fmt"

// DespawnReason records which rule removed an entity.
type DespawnReason uint8

const (
	ReasonExternal DespawnReason = iota
	ReasonProgramEnd
	ReasonDespawnEffect
	ReasonHit    // projectile consumed by an overlap
	ReasonKilled // health reached zero
	ReasonLifetime
	ReasonOutOfBounds
)

func (r DespawnReason) String() string {
	switch r {
	case ReasonExternal:
		return "external"
	case ReasonProgramEnd:
		return "program_end"
	case ReasonDespawnEffect:
		return "despawn_effect"
	case ReasonHit:
		return "hit"
	case ReasonKilled:
		return "killed"
	case ReasonLifetime:
		return "lifetime"
	case ReasonOutOfBounds:
		return "out_of_bounds"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}
