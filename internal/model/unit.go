package model

// UnitType is the visibility class an entity is handled as.
type UnitType uint8

const (
	UnitPlayers UnitType = iota
	UnitPets
	UnitChocobos
	UnitMinions
	UnitHrothgars

	UnitTypeCount // total unit types
)

// UnitTypes lists every unit type in dispatch order.
var UnitTypes = [UnitTypeCount]UnitType{
	UnitPlayers, UnitPets, UnitChocobos, UnitMinions, UnitHrothgars,
}

// String returns unit type name for logs.
func (u UnitType) String() string {
	switch u {
	case UnitPlayers:
		return "players"
	case UnitPets:
		return "pets"
	case UnitChocobos:
		return "chocobos"
	case UnitMinions:
		return "minions"
	case UnitHrothgars:
		return "hrothgars"
	default:
		return "unknown"
	}
}

// Valid returns true if u is a known unit type.
func (u UnitType) Valid() bool {
	return u < UnitTypeCount
}

// ContainerType is the relationship set an entity can belong to.
type ContainerType uint8

const (
	ContainerAll ContainerType = iota
	ContainerFriend
	ContainerParty
	ContainerCompany

	ContainerTypeCount // total container types
)

// String returns container type name for logs.
func (c ContainerType) String() string {
	switch c {
	case ContainerAll:
		return "all"
	case ContainerFriend:
		return "friend"
	case ContainerParty:
		return "party"
	case ContainerCompany:
		return "company"
	default:
		return "unknown"
	}
}

// Valid returns true if c is a known container type.
func (c ContainerType) Valid() bool {
	return c < ContainerTypeCount
}

// UnitTypeOf classifies an entity into its unit type.
// Hrothgar players get their own class; kinds without a class return false.
func UnitTypeOf(e *Entity) (UnitType, bool) {
	switch e.Kind {
	case KindPlayer:
		if e.Race == RaceHrothgar {
			return UnitHrothgars, true
		}
		return UnitPlayers, true
	case KindPet:
		return UnitPets, true
	case KindMinion:
		return UnitMinions, true
	case KindChocobo:
		return UnitChocobos, true
	default:
		return 0, false
	}
}
