package voidlist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

type memStore struct {
	mu    sync.Mutex
	saved map[Kind][]config.ListEntry
	fail  bool
}

func (s *memStore) SaveListEntry(_ context.Context, kind Kind, e config.ListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store unavailable")
	}
	if s.saved == nil {
		s.saved = make(map[Kind][]config.ListEntry)
	}
	s.saved[kind] = append(s.saved[kind], e)
	return nil
}

func entity(id model.EntityID, name string, world model.WorldID) *model.Entity {
	return &model.Entity{ID: id, Name: name, Kind: model.KindPlayer, HomeWorld: world, CurrentWorld: world}
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, IdentityKey("Alpha Beta", 73), IdentityKey("alpha beta", 73), "names are case-insensitive")
	assert.NotEqual(t, IdentityKey("Alpha Beta", 73), IdentityKey("Alpha Beta", 74))
	assert.NotEqual(t, IdentityKey("Alpha Beta", 73), IdentityKey("Alpha Bet", 73))
	assert.Len(t, IdentityKey("x", 1).String(), 64)
}

func TestManager_VoidListMatch(t *testing.T) {
	m := NewManager([]config.ListEntry{{Name: "Bad Actor", HomeWorld: 40}}, nil)

	assert.True(t, m.CheckAndProcessVoidList(entity(100, "Bad Actor", 40)))
	assert.False(t, m.CheckAndProcessVoidList(entity(101, "Bad Actor", 41)), "same name on another world")
	assert.False(t, m.CheckAndProcessWhitelist(entity(100, "Bad Actor", 40)), "lists are independent")
}

func TestManager_FailClosed(t *testing.T) {
	m := NewManager([]config.ListEntry{{Name: "Bad Actor", HomeWorld: 40, ObjectID: 100}}, nil)

	// Имя ещё не подгружено клиентом
	assert.False(t, m.CheckAndProcessVoidList(entity(100, "", 40)))
	assert.False(t, m.CheckAndProcessVoidList(entity(model.InvalidEntityID, "Bad Actor", 40)))
	assert.False(t, m.CheckAndProcessVoidList(nil))
}

func TestManager_IDReuse(t *testing.T) {
	m := NewManager([]config.ListEntry{{Name: "Bad Actor", HomeWorld: 40}}, nil)

	require.True(t, m.CheckAndProcessVoidList(entity(100, "Bad Actor", 40)))

	// Тот же id теперь принадлежит другому персонажу
	assert.False(t, m.CheckAndProcessVoidList(entity(100, "Good Person", 40)))

	// И обратно
	assert.True(t, m.CheckAndProcessVoidList(entity(100, "Bad Actor", 40)))
}

func TestManager_HitMarksDirtyAndFlushes(t *testing.T) {
	m := NewManager(nil, []config.ListEntry{{Name: "Buddy", HomeWorld: 21}})
	store := &memStore{}

	require.True(t, m.CheckAndProcessWhitelist(entity(555, "Buddy", 21)))
	assert.Equal(t, 1, m.DirtyCount())

	// Повторный hit с тем же id не создаёт новую запись
	require.True(t, m.CheckAndProcessWhitelist(entity(555, "Buddy", 21)))
	assert.Equal(t, 1, m.DirtyCount())

	require.NoError(t, m.Flush(context.Background(), store))
	assert.Equal(t, 0, m.DirtyCount())
	require.Len(t, store.saved[KindWhitelist], 1)
	assert.Equal(t, model.EntityID(555), store.saved[KindWhitelist][0].ObjectID)

	entries := m.Entries(KindWhitelist)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntityID(555), entries[0].ObjectID)
}

func TestManager_FlushFailureKeepsDirty(t *testing.T) {
	m := NewManager([]config.ListEntry{{Name: "Bad Actor", HomeWorld: 40}}, nil)
	store := &memStore{fail: true}

	require.True(t, m.CheckAndProcessVoidList(entity(1, "Bad Actor", 40)))
	err := m.Flush(context.Background(), store)
	require.Error(t, err)
	assert.Equal(t, 1, m.DirtyCount())

	store.fail = false
	require.NoError(t, m.Flush(context.Background(), store))
	assert.Equal(t, 0, m.DirtyCount())
}

func TestManager_AddRemoveInvalidatesCache(t *testing.T) {
	m := NewManager(nil, nil)
	e := entity(9, "Later Blocked", 33)

	assert.False(t, m.CheckAndProcessVoidList(e))

	require.NoError(t, m.Add(KindVoid, config.ListEntry{Name: "Later Blocked", HomeWorld: 33, Manual: true}))
	assert.True(t, m.CheckAndProcessVoidList(e), "cached negative verdict must be dropped on Add")

	assert.True(t, m.Remove(KindVoid, "later blocked", 33))
	assert.False(t, m.CheckAndProcessVoidList(e))
	assert.False(t, m.Remove(KindVoid, "later blocked", 33))

	assert.Error(t, m.Add(KindVoid, config.ListEntry{}))
	assert.Error(t, m.Add(Kind(9), config.ListEntry{Name: "x"}))
}

func TestManager_RetainCache(t *testing.T) {
	m := NewManager([]config.ListEntry{{Name: "Bad Actor", HomeWorld: 40}}, nil)
	require.True(t, m.CheckAndProcessVoidList(entity(1, "Bad Actor", 40)))
	require.False(t, m.CheckAndProcessVoidList(entity(2, "Other", 40)))

	m.RetainCache(func(id model.EntityID) bool { return id == 1 })

	m.mu.RLock()
	_, kept := m.cache[KindVoid][1]
	_, dropped := m.cache[KindVoid][2]
	m.mu.RUnlock()
	assert.True(t, kept)
	assert.False(t, dropped)
}

func TestFileStore_SaveListEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visibility.yaml")
	v := config.DefaultVisibility()
	v.VoidList = []config.ListEntry{{Name: "Spammer", HomeWorld: 73, Reason: "rmt"}}
	require.NoError(t, config.SaveVisibility(path, v))

	store := NewFileStore(path)
	m := NewManager(v.VoidList, nil)
	e := &model.Entity{ID: 500, Name: "SPAMMER", HomeWorld: 73}
	require.True(t, m.CheckAndProcessVoidList(e))
	require.NoError(t, m.Flush(context.Background(), store))

	require.NoError(t, store.SaveListEntry(context.Background(), KindWhitelist, config.ListEntry{Name: "Buddy", HomeWorld: 1}))

	got, err := config.LoadVisibility(path)
	require.NoError(t, err)
	require.Len(t, got.VoidList, 1)
	assert.Equal(t, model.EntityID(500), got.VoidList[0].ObjectID)
	assert.Equal(t, "rmt", got.VoidList[0].Reason)
	require.Len(t, got.Whitelist, 1)
	assert.Equal(t, "Buddy", got.Whitelist[0].Name)
}
