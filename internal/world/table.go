package world

import (
	"log/slog"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Handle addresses one entity of one frame. A handle from an older frame
// never resolves, so nothing can hold on to an entity past its pass.
type Handle struct {
	frame uint64
	index int32
}

// Table is the entity arena for the current frame.
// Written only by Reset; read concurrently during the pass.
type Table struct {
	frame    uint64
	entities []model.Entity
	index    map[model.EntityID]int32
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entities: make([]model.Entity, 0, 512),
		index:    make(map[model.EntityID]int32, 512),
	}
}

// Reset replaces the table contents with a copy of entities and invalidates
// every handle of the previous frame. Entities without a real id (0 or the
// sentinel) are kept so the pass can count them, but cannot be looked up.
func (t *Table) Reset(frame uint64, entities []model.Entity) {
	t.frame++
	if frame > t.frame {
		t.frame = frame
	}
	t.entities = append(t.entities[:0], entities...)
	clear(t.index)

	for i := range t.entities {
		e := &t.entities[i]
		if !e.HasIdentity() {
			continue
		}
		if _, dup := t.index[e.ID]; dup {
			slog.Debug("duplicate entity id in frame", "entity", e.ID, "frame", t.frame)
			continue
		}
		t.index[e.ID] = int32(i)
	}
}

// Frame returns the current frame number.
func (t *Table) Frame() uint64 {
	return t.frame
}

// Len returns number of entities in the frame.
func (t *Table) Len() int {
	return len(t.entities)
}

// Handle returns the handle of the i-th entity.
func (t *Table) Handle(i int) Handle {
	return Handle{frame: t.frame, index: int32(i)}
}

// Get resolves h. Returns false for handles of another frame or out of range.
func (t *Table) Get(h Handle) (*model.Entity, bool) {
	if h.frame != t.frame || h.index < 0 || int(h.index) >= len(t.entities) {
		return nil, false
	}
	return &t.entities[h.index], true
}

// Lookup resolves an entity id in the current frame.
func (t *Table) Lookup(id model.EntityID) (*model.Entity, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.entities[i], true
}

// Contains returns true if id is present in the current frame.
func (t *Table) Contains(id model.EntityID) bool {
	_, ok := t.index[id]
	return ok
}
