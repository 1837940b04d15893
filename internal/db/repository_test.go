package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/db"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/testutil"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/voidlist"
)

func TestVisibilityRepository_LoadEmptyReturnsDefaults(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	repo := db.NewVisibilityRepository(pool)
	v, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.True(t, v.Enabled)
	assert.False(t, v.AdvancedEnabled)
	assert.Empty(t, v.Territories)
	assert.Empty(t, v.TerritoryTypeWhitelist)
	assert.Empty(t, v.VoidList)
}

func TestVisibilityRepository_SaveLoad(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := db.NewVisibilityRepository(pool)

	v := config.DefaultVisibility()
	v.AdvancedEnabled = true
	v.TerritoryTypeWhitelist = []model.TerritoryID{testutil.Raid, testutil.Raid, 777}
	v.Default = config.TerritoryConfig{HidePlayer: true, ShowPartyPlayer: true}
	v.Territories[testutil.Raid] = config.TerritoryConfig{HideHrothgar: true, ShowDeadHrothgar: true}
	v.VoidList = []config.ListEntry{{Name: "Spammer", HomeWorld: testutil.HomeWorld, ObjectID: 42, Reason: "rmt", Manual: true}}
	v.Whitelist = []config.ListEntry{{Name: "Buddy", HomeWorld: testutil.OtherWorld}}

	require.NoError(t, repo.Save(ctx, v))

	got, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.True(t, got.AdvancedEnabled)
	assert.Equal(t, []model.TerritoryID{777, testutil.Raid}, got.TerritoryTypeWhitelist)
	assert.Equal(t, v.Default, got.Default)

	raid, ok := got.Territories[testutil.Raid]
	require.True(t, ok)
	assert.Equal(t, testutil.Raid, raid.TerritoryType)
	assert.True(t, raid.HideHrothgar)
	assert.True(t, raid.ShowDeadHrothgar)

	assert.Equal(t, v.VoidList, got.VoidList)
	assert.Equal(t, v.Whitelist, got.Whitelist)
}

func TestVisibilityRepository_SaveReplaces(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := db.NewVisibilityRepository(pool)

	v := config.DefaultVisibility()
	v.Territories[1] = config.TerritoryConfig{HidePet: true}
	v.VoidList = []config.ListEntry{{Name: "A", HomeWorld: 1}, {Name: "B", HomeWorld: 1}}
	require.NoError(t, repo.Save(ctx, v))

	v.Enabled = false
	v.Territories = map[model.TerritoryID]config.TerritoryConfig{2: {HideMinion: true}}
	v.VoidList = v.VoidList[:1]
	require.NoError(t, repo.Save(ctx, v))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Len(t, got.Territories, 1)
	assert.Contains(t, got.Territories, model.TerritoryID(2))
	assert.Len(t, got.VoidList, 1)
}

func TestVisibilityRepository_SaveTerritoryConfig(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := db.NewVisibilityRepository(pool)

	require.NoError(t, repo.SaveTerritoryConfig(ctx, 5, config.TerritoryConfig{HideChocobo: true}))
	require.NoError(t, repo.SaveTerritoryConfig(ctx, 5, config.TerritoryConfig{HideMinion: true}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	tc := got.Territories[5]
	assert.False(t, tc.HideChocobo)
	assert.True(t, tc.HideMinion)
}

func TestListRepository_FlushFromManager(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := db.NewListRepository(pool)

	lists := voidlist.NewManager([]config.ListEntry{{Name: "Spammer", HomeWorld: testutil.HomeWorld}}, nil)
	e := testutil.Player(900, "spammer")
	require.True(t, lists.CheckAndProcessVoidList(&e))
	require.Equal(t, 1, lists.DirtyCount())

	require.NoError(t, lists.Flush(ctx, repo))
	assert.Zero(t, lists.DirtyCount())

	entries, err := repo.LoadByKind(ctx, voidlist.KindVoid)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Spammer", entries[0].Name)
	assert.Equal(t, model.EntityID(900), entries[0].ObjectID)

	whitelist, err := repo.LoadByKind(ctx, voidlist.KindWhitelist)
	require.NoError(t, err)
	assert.Empty(t, whitelist)
}

func TestListRepository_DeleteListEntry(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := db.NewListRepository(pool)

	entry := config.ListEntry{Name: "Gone", HomeWorld: 3}
	require.NoError(t, repo.SaveListEntry(ctx, voidlist.KindWhitelist, entry))

	removed, err := repo.DeleteListEntry(ctx, voidlist.KindWhitelist, "gone", 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteListEntry(ctx, voidlist.KindWhitelist, "gone", 3)
	require.NoError(t, err)
	assert.False(t, removed)
}
