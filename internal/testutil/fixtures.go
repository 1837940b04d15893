package testutil

import (
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Общие константы для тестовых сцен.
const (
	HomeWorld  model.WorldID     = 73
	OtherWorld model.WorldID     = 79
	Territory  model.TerritoryID = 132
	Raid       model.TerritoryID = 1122
)

// Observer возвращает локального игрока с тегом компании на домашнем мире.
func Observer(id model.EntityID) model.Entity {
	return model.Entity{
		ID:           id,
		Name:         "Local Player",
		Kind:         model.KindPlayer,
		Race:         model.RaceHyur,
		HomeWorld:    HomeWorld,
		CurrentWorld: HomeWorld,
		CompanyTag:   model.NewCompanyTag("HOME"),
	}
}

// Player возвращает чужого игрока на домашнем мире наблюдателя.
func Player(id model.EntityID, name string) model.Entity {
	return model.Entity{
		ID:           id,
		Name:         name,
		Kind:         model.KindPlayer,
		Race:         model.RaceElezen,
		HomeWorld:    HomeWorld,
		CurrentWorld: HomeWorld,
	}
}

// Hrothgar возвращает игрока расы хротгар.
func Hrothgar(id model.EntityID, name string) model.Entity {
	e := Player(id, name)
	e.Race = model.RaceHrothgar
	return e
}

// Owned возвращает питомца, миньона или чокобо владельца owner.
func Owned(id model.EntityID, kind model.EntityKind, owner model.EntityID) model.Entity {
	return model.Entity{
		ID:      id,
		Name:    kind.String(),
		Kind:    kind,
		OwnerID: owner,
	}
}

// Frame собирает кадр с наблюдателем первым в списке сущностей.
func Frame(seq uint64, territory model.TerritoryID, observer model.Entity, others ...model.Entity) *model.Frame {
	entities := make([]model.Entity, 0, len(others)+1)
	entities = append(entities, observer)
	entities = append(entities, others...)
	return &model.Frame{
		Seq:        seq,
		Territory:  territory,
		ObserverID: observer.ID,
		Entities:   entities,
	}
}
