package capture

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

func TestSynthesize_Deterministic(t *testing.T) {
	scene := Scene{Seed: 7, Frames: 3, Players: 50, Territory: 132, World: 73, Combat: true}

	a, err := Synthesize(scene)
	require.NoError(t, err)
	b, err := Synthesize(scene)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.Len(t, a.Frames, 3)
	assert.False(t, a.Frames[0].Conditions.InCombat())
	assert.True(t, a.Frames[1].Conditions.InCombat())

	f := a.Frames[0]
	assert.Equal(t, f.ObserverID, f.Entities[0].ID)
	assert.GreaterOrEqual(t, len(f.Entities), 51)

	ids := make(map[model.EntityID]bool, len(f.Entities))
	for _, e := range f.Entities {
		assert.False(t, ids[e.ID], "duplicate id %d", e.ID)
		ids[e.ID] = true
	}
	for _, e := range f.Entities {
		if e.Kind == model.KindPet || e.Kind == model.KindMinion || e.Kind == model.KindChocobo {
			assert.True(t, ids[e.OwnerID], "owner %d of %d missing", e.OwnerID, e.ID)
		}
	}
}

func TestSynthesize_Errors(t *testing.T) {
	_, err := Synthesize(Scene{Frames: 0})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Synthesize(Scene{Frames: 1, Players: -1})
	assert.Error(t, err)
}

func TestSynthesize_RoundTripCompressed(t *testing.T) {
	file, err := Synthesize(Scene{Seed: 1, Frames: 2, Players: 20, Territory: 1122, World: 73, Bound: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "crowd.yaml.zst")
	require.NoError(t, Write(path, file))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got.Frames, 2)
	assert.True(t, got.Frames[0].Conditions.BoundByDuty())
	assert.Equal(t, len(file.Frames[0].Entities), len(got.Frames[0].Entities))
	assert.Equal(t, file.Frames[0].Entities[0].CompanyTag, got.Frames[0].Entities[0].CompanyTag)
}

func TestObjectIDs_Ranges(t *testing.T) {
	g := newObjectIDs()
	p := g.player()
	o := g.owned()

	assert.Equal(t, observerID+1, p)
	assert.Equal(t, model.EntityID(0x40000001), o)
	assert.NotEqual(t, model.InvalidEntityID, g.owned())
}
