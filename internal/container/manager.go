package container

import (
	"sync"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// set is one (UnitType, ContainerType) slot. Each slot has its own lock so
// entities processed in parallel only contend on the slot they write.
type set struct {
	mu  sync.RWMutex
	ids map[model.EntityID]struct{}
}

// Manager keeps per-class relationship sets of entity ids.
// It holds no business logic; handlers decide what goes where.
type Manager struct {
	slots [model.UnitTypeCount][model.ContainerTypeCount]set
}

// NewManager creates an empty container registry.
func NewManager() *Manager {
	m := &Manager{}
	for u := range m.slots {
		for c := range m.slots[u] {
			m.slots[u][c].ids = make(map[model.EntityID]struct{}, 64)
		}
	}
	return m
}

func (m *Manager) slot(u model.UnitType, c model.ContainerType) *set {
	if !u.Valid() || !c.Valid() {
		return nil
	}
	return &m.slots[u][c]
}

// AddToContainer inserts id. Adding an existing id is a no-op.
func (m *Manager) AddToContainer(u model.UnitType, c model.ContainerType, id model.EntityID) {
	s := m.slot(u, c)
	if s == nil {
		return
	}
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

// RemoveFromContainer deletes id. Removing a missing id is a no-op.
func (m *Manager) RemoveFromContainer(u model.UnitType, c model.ContainerType, id model.EntityID) {
	s := m.slot(u, c)
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

// SetMembership adds id when member is true and removes it otherwise.
func (m *Manager) SetMembership(u model.UnitType, c model.ContainerType, id model.EntityID, member bool) {
	if member {
		m.AddToContainer(u, c, id)
		return
	}
	m.RemoveFromContainer(u, c, id)
}

// IsInContainer returns true if id is a member of the slot.
func (m *Manager) IsInContainer(u model.UnitType, c model.ContainerType, id model.EntityID) bool {
	s := m.slot(u, c)
	if s == nil {
		return false
	}
	s.mu.RLock()
	_, ok := s.ids[id]
	s.mu.RUnlock()
	return ok
}

// Count returns number of ids in the slot.
func (m *Manager) Count(u model.UnitType, c model.ContainerType) int {
	s := m.slot(u, c)
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Members returns a copy of the slot's ids in no particular order.
func (m *Manager) Members(u model.UnitType, c model.ContainerType) []model.EntityID {
	s := m.slot(u, c)
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ids) == 0 {
		return nil
	}
	out := make([]model.EntityID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Retain drops every id of unit type u for which keep returns false, in all
// container types. Called once per pass with the ids observed in that pass.
// Returns number of removed memberships.
func (m *Manager) Retain(u model.UnitType, keep func(model.EntityID) bool) int {
	if !u.Valid() {
		return 0
	}
	removed := 0
	for c := range m.slots[u] {
		s := &m.slots[u][c]
		s.mu.Lock()
		for id := range s.ids {
			if !keep(id) {
				delete(s.ids, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Clear empties every container of unit type u.
func (m *Manager) Clear(u model.UnitType) {
	m.Retain(u, func(model.EntityID) bool { return false })
}
