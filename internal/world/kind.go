package world

import "strings"

// Kind is the closed set of creatures that can live on the map.
type Kind uint8

const (
	KindOrc Kind = iota + 1
	KindBear
	KindSquirrel
)

// Kinds lists every kind in bootstrap order.
var Kinds = []Kind{KindOrc, KindBear, KindSquirrel}

func (k Kind) String() string {
	switch k {
	case KindOrc:
		return "Orc"

	case KindBear:
		return "Bear"

	case KindSquirrel:
		return "Squirrel"

	default:
		return "Unknown"
	}
}

// ParseKind matches the exact kind names used by the roster and the API.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}

	return 0, false
}

// Max distance at which this kind will fight
func (k Kind) KillDistance() int {
	switch k {
	case KindOrc, KindBear:
		return 10

	case KindSquirrel:
		return 5

	default:
		return 0
	}
}

// Informational only, a tick always steps at most one cell per axis
func (k Kind) MoveDistance() int {
	switch k {
	case KindOrc:
		return 20

	case KindBear, KindSquirrel:
		return 5

	default:
		return 0
	}
}

// Symbol is the map glyph: the uppercase first letter of the kind name.
func (k Kind) Symbol() byte {
	name := k.String()
	return strings.ToUpper(name[:1])[0]
}

type matchup struct {
	attacker Kind
	defender Kind
}

// Every legal (attacker, defender) pair. Squirrels never fight.
var legalMatchups = map[matchup]bool{
	{KindOrc, KindOrc}:  true,
	{KindOrc, KindBear}: true,
	{KindBear, KindOrc}: true,
}

// CanAttack reports whether attacker is allowed to resolve combat against defender.
func CanAttack(attacker, defender Kind) bool {
	return legalMatchups[matchup{attacker, defender}]
}
