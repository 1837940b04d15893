package handler

import "github.com/SF-XIV/VisibilityPluginPlus/internal/model"

// Descriptor parametrizes the cascade for one entity class.
// Toggles are looked up through config.TerritoryConfig.Toggles(Unit).
type Descriptor struct {
	Unit model.UnitType
	// Owned classes (pets, minions, chocobos) take friend, party and
	// company relations from their owner.
	Owned bool
}

var (
	Players   = Descriptor{Unit: model.UnitPlayers}
	Hrothgars = Descriptor{Unit: model.UnitHrothgars}
	Pets      = Descriptor{Unit: model.UnitPets, Owned: true}
	Minions   = Descriptor{Unit: model.UnitMinions, Owned: true}
	Chocobos  = Descriptor{Unit: model.UnitChocobos, Owned: true}
)

// Descriptors returns every class descriptor.
func Descriptors() []Descriptor {
	return []Descriptor{Players, Hrothgars, Pets, Minions, Chocobos}
}

// Set holds one handler per unit type.
type Set struct {
	handlers [model.UnitTypeCount]*Handler
}

// NewSet creates handlers for every descriptor sharing the same collaborators.
func NewSet(containers Containers, lists Lists, visibility Visibility) *Set {
	s := &Set{}
	for _, d := range Descriptors() {
		s.handlers[d.Unit] = New(d, containers, lists, visibility)
	}
	return s
}

// For returns the handler for unit type u, or nil.
func (s *Set) For(u model.UnitType) *Handler {
	if !u.Valid() {
		return nil
	}
	return s.handlers[u]
}
