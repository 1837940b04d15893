package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

type mapLookup map[model.EntityID]*model.Entity

func (m mapLookup) Lookup(id model.EntityID) (*model.Entity, bool) {
	e, ok := m[id]
	return e, ok
}

func TestSnapshot_Party(t *testing.T) {
	observer := &model.Entity{ID: 1}
	s := NewSnapshot(observer, 0, []model.EntityID{1, 2, 3, model.InvalidEntityID}, nil)

	assert.True(t, s.IsObjectIDInParty(2))
	assert.True(t, s.IsObjectIDInParty(3))
	assert.False(t, s.IsObjectIDInParty(1), "observer is not its own party member")
	assert.False(t, s.IsObjectIDInParty(4))
	assert.False(t, s.IsObjectIDInParty(model.InvalidEntityID))
}

func TestSnapshot_TargetOfTarget(t *testing.T) {
	observer := &model.Entity{ID: 1, TargetID: 10}
	boss := &model.Entity{ID: 10, TargetID: 20}
	tank := &model.Entity{ID: 20}
	other := &model.Entity{ID: 30}
	table := mapLookup{1: observer, 10: boss, 20: tank, 30: other}

	s := NewSnapshot(observer, 0, nil, table)

	assert.True(t, s.CheckTargetOfTarget(tank))
	assert.False(t, s.CheckTargetOfTarget(other))
	assert.False(t, s.CheckTargetOfTarget(boss), "the target itself is not target-of-target")
}

func TestSnapshot_TargetOfTargetFailClosed(t *testing.T) {
	tank := &model.Entity{ID: 20}

	tests := []struct {
		name     string
		observer *model.Entity
		table    Lookup
	}{
		{"no observer", nil, mapLookup{}},
		{"no target", &model.Entity{ID: 1}, mapLookup{}},
		{"target not in table", &model.Entity{ID: 1, TargetID: 10}, mapLookup{}},
		{"nil table", &model.Entity{ID: 1, TargetID: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(tt.observer, 0, nil, tt.table)
			assert.False(t, s.CheckTargetOfTarget(tank))
		})
	}
}

func TestSnapshot_InCombat(t *testing.T) {
	assert.False(t, NewSnapshot(nil, model.ConditionBoundByDuty, nil, nil).InCombat())
	assert.True(t, NewSnapshot(nil, model.ConditionInCombat|model.ConditionMounted, nil, nil).InCombat())
}
