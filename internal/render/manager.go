package render

import (
	"log/slog"
	"sync"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Verdict is the per-frame decision for one entity.
type Verdict uint8

const (
	VerdictNone Verdict = iota // no command issued, render state untouched
	VerdictShow
	VerdictHide
)

// String returns verdict name for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictShow:
		return "show"
	case VerdictHide:
		return "hide"
	default:
		return "none"
	}
}

// Renderer is the client-side sink that actually toggles draw state.
// Implemented by the game binding; calls happen only from EndFrame.
type Renderer interface {
	SetVisible(id model.EntityID, visible bool)
}

// Changes summarizes what EndFrame applied to the renderer.
type Changes struct {
	Hidden   []model.EntityID // newly hidden this frame
	Restored []model.EntityID // hidden before, shown again this frame
	Dropped  int              // hidden entities that left the table
}

// Manager collects frame-scoped show/hide commands and applies the
// difference against the previous frame to a Renderer.
type Manager struct {
	mu       sync.Mutex
	renderer Renderer

	forced map[model.EntityID]map[string]struct{} // features keeping an entity visible
	show   map[model.EntityID]struct{}            // commands of the current frame
	hide   map[model.EntityID]struct{}
	hidden map[model.EntityID]struct{} // applied state
}

// NewManager creates a manager writing to renderer. A nil renderer discards.
func NewManager(renderer Renderer) *Manager {
	if renderer == nil {
		renderer = discard{}
	}
	return &Manager{
		renderer: renderer,
		forced:   make(map[model.EntityID]map[string]struct{}),
		show:     make(map[model.EntityID]struct{}, 256),
		hide:     make(map[model.EntityID]struct{}, 256),
		hidden:   make(map[model.EntityID]struct{}, 256),
	}
}

// Force marks id as kept visible by feature (e.g. a targeting or
// duty-recorder feature). Forced entities are skipped by the handlers.
func (m *Manager) Force(id model.EntityID, feature string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.forced[id]
	if !ok {
		set = make(map[string]struct{}, 1)
		m.forced[id] = set
	}
	set[feature] = struct{}{}
}

// Release removes feature's hold on id.
func (m *Manager) Release(id model.EntityID, feature string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.forced[id]
	if !ok {
		return
	}
	delete(set, feature)
	if len(set) == 0 {
		delete(m.forced, id)
	}
}

// ShowGameObject returns true if another feature already keeps e visible.
func (m *Manager) ShowGameObject(e *model.Entity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.forced[e.ID]
	return ok
}

// MarkObjectToShow schedules id to stay rendered this frame.
func (m *Manager) MarkObjectToShow(id model.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hide, id)
	m.show[id] = struct{}{}
}

// HideGameObject schedules e to be suppressed this frame.
func (m *Manager) HideGameObject(e *model.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.show, e.ID)
	m.hide[e.ID] = struct{}{}
}

// Verdict returns the command issued for id in the current frame.
func (m *Manager) Verdict(id model.EntityID) Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hide[id]; ok {
		return VerdictHide
	}
	if _, ok := m.show[id]; ok {
		return VerdictShow
	}
	return VerdictNone
}

// Hidden returns true if id is currently hidden on the client.
func (m *Manager) Hidden(id model.EntityID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.hidden[id]
	return ok
}

// HiddenCount returns number of currently hidden entities.
func (m *Manager) HiddenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hidden)
}

// BeginFrame drops the previous frame's commands.
func (m *Manager) BeginFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.show)
	clear(m.hide)
}

// EndFrame applies this frame's commands. present reports whether an id is
// still in the entity table. Entities without a command keep their state,
// except forced ones which are always restored.
func (m *Manager) EndFrame(present func(model.EntityID) bool) Changes {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ch Changes
	for id := range m.hide {
		if _, ok := m.hidden[id]; ok {
			continue
		}
		m.hidden[id] = struct{}{}
		m.renderer.SetVisible(id, false)
		ch.Hidden = append(ch.Hidden, id)
	}

	for id := range m.hidden {
		if !present(id) {
			delete(m.hidden, id)
			ch.Dropped++
			continue
		}
		_, shown := m.show[id]
		_, forced := m.forced[id]
		if shown || forced {
			delete(m.hidden, id)
			m.renderer.SetVisible(id, true)
			ch.Restored = append(ch.Restored, id)
		}
	}

	if len(ch.Hidden) > 0 || len(ch.Restored) > 0 {
		slog.Debug("render state changed",
			"hidden", len(ch.Hidden),
			"restored", len(ch.Restored),
			"dropped", ch.Dropped)
	}
	return ch
}

// RestoreAll shows every hidden entity, used when the filter is switched off
// or the daemon shuts down.
func (m *Manager) RestoreAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.hidden)
	for id := range m.hidden {
		m.renderer.SetVisible(id, true)
	}
	clear(m.hidden)
	return n
}

type discard struct{}

func (discard) SetVisible(model.EntityID, bool) {}
