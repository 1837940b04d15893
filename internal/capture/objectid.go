package capture

import (
	"sync/atomic"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// objectIDs hands out synthetic object ids by range so players and the
// objects they own never collide.
//
// ID ranges (convention):
//
//	0x10000000 - 0x1FFFFFFF: players (0x10000000 is the observer)
//	0x40000000 - 0x4FFFFFFF: pets, minions, chocobos
//
// Both stay clear of model.InvalidEntityID.
type objectIDs struct {
	nextPlayer atomic.Uint32
	nextOwned  atomic.Uint32
}

func newObjectIDs() *objectIDs {
	g := &objectIDs{}
	g.nextPlayer.Store(uint32(observerID))
	g.nextOwned.Store(0x40000000)
	return g
}

// player returns the next player id. Thread-safe via atomic increment.
func (g *objectIDs) player() model.EntityID {
	return model.EntityID(g.nextPlayer.Add(1))
}

// owned returns the next companion id. Thread-safe via atomic increment.
func (g *objectIDs) owned() model.EntityID {
	return model.EntityID(g.nextOwned.Add(1))
}
