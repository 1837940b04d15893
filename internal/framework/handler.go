package framework

import "github.com/SF-XIV/VisibilityPluginPlus/internal/model"

// Facade answers the per-frame questions the visibility cascade asks the
// game client: party membership, reciprocal targeting and combat state.
type Facade interface {
	IsObjectIDInParty(id model.EntityID) bool
	CheckTargetOfTarget(e *model.Entity) bool
	InCombat() bool
}

// Lookup resolves an entity id in the current frame's table.
type Lookup interface {
	Lookup(id model.EntityID) (*model.Entity, bool)
}

// Snapshot is a Facade over one observed frame. Immutable after creation.
type Snapshot struct {
	observer   *model.Entity
	conditions model.ConditionFlags
	party      map[model.EntityID]struct{}
	entities   Lookup
}

// NewSnapshot builds the facade for one frame. observer may be nil, in which
// case every relation query fails closed.
func NewSnapshot(observer *model.Entity, conditions model.ConditionFlags, partyIDs []model.EntityID, entities Lookup) *Snapshot {
	party := make(map[model.EntityID]struct{}, len(partyIDs))
	for _, id := range partyIDs {
		if id == 0 || id == model.InvalidEntityID {
			continue
		}
		party[id] = struct{}{}
	}
	return &Snapshot{
		observer:   observer,
		conditions: conditions,
		party:      party,
		entities:   entities,
	}
}

// IsObjectIDInParty returns true if id is a member of the observer's party.
// The observer itself is not reported as a party member.
func (s *Snapshot) IsObjectIDInParty(id model.EntityID) bool {
	if s.observer != nil && id == s.observer.ID {
		return false
	}
	_, ok := s.party[id]
	return ok
}

// CheckTargetOfTarget returns true if e is targeted by the observer's target.
func (s *Snapshot) CheckTargetOfTarget(e *model.Entity) bool {
	if s.observer == nil || e == nil || s.entities == nil || !e.HasIdentity() {
		return false
	}
	if s.observer.TargetID == 0 || s.observer.TargetID == model.InvalidEntityID {
		return false
	}
	target, ok := s.entities.Lookup(s.observer.TargetID)
	if !ok {
		return false
	}
	return target.TargetID == e.ID
}

// InCombat returns true if the observer is in combat.
func (s *Snapshot) InCombat() bool {
	return s.conditions.InCombat()
}
