package capture

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/testutil"
)

func TestRead_YAML(t *testing.T) {
	file, err := Read(filepath.Join("testdata", "raid.yaml"))
	require.NoError(t, err)
	require.Len(t, file.Frames, 2)

	f := file.Frames[0]
	assert.Equal(t, model.TerritoryID(132), f.Territory)
	assert.True(t, f.Conditions.InCombat())
	assert.Equal(t, []model.EntityID{1, 20}, f.PartyIDs)
	require.Len(t, f.Entities, 4)

	obs := f.Entities[0]
	assert.Equal(t, model.KindPlayer, obs.Kind)
	assert.Equal(t, model.NewCompanyTag("MOON"), obs.CompanyTag)

	tank := f.Entities[1]
	assert.Equal(t, model.RaceHrothgar, tank.Race)
	assert.Equal(t, model.KindChocobo, f.Entities[2].Kind)
	assert.Equal(t, model.EntityID(20), f.Entities[2].OwnerID)

	// Неизвестные условия пропускаются
	assert.True(t, file.Frames[1].Conditions.BoundByDuty())
	assert.False(t, file.Frames[1].Conditions.InCombat())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("version: 1\nframes: []\n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Decode(strings.NewReader("version: 99\nframes: [{territory: 1}]\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("frames:\n  - entities:\n      - id: 1\n        kind: dragon\n"))
	assert.Error(t, err, "unknown kind must fail")
}

func TestWriteRead_Compressed(t *testing.T) {
	src := &File{Frames: []model.Frame{{
		Territory:  400,
		ObserverID: 1,
		Conditions: model.ConditionInCombat | model.ConditionBoundByDuty95,
		Entities: []model.Entity{
			{ID: 1, Name: "Me", Kind: model.KindPlayer, CompanyTag: model.NewCompanyTag("ABC")},
			{ID: 2, Kind: model.KindMinion, OwnerID: 1, Dead: true},
		},
	}}}

	path := filepath.Join(t.TempDir(), "capture.yaml.zst")
	require.NoError(t, Write(path, src))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got.Frames, 1)
	assert.Equal(t, Version, got.Version)

	f := got.Frames[0]
	assert.Equal(t, model.TerritoryID(400), f.Territory)
	assert.Equal(t, src.Frames[0].Conditions, f.Conditions)
	assert.Equal(t, model.NewCompanyTag("ABC"), f.Entities[0].CompanyTag)
	assert.True(t, f.Entities[1].Dead)

	assert.Empty(t, src.Frames[0].Entities[0].CompanyTagText, "Write must not mutate the input")
}

func TestPlayer(t *testing.T) {
	file := &File{Frames: []model.Frame{
		{Territory: 1, Entities: []model.Entity{{ID: 1}}},
		{Territory: 2},
	}}

	p, err := NewPlayer(file, false)
	require.NoError(t, err)
	ctx := context.Background()

	f1, err := p.NextFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f1.Seq)
	f1.Entities[0].ID = 99

	f2, err := p.NextFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TerritoryID(2), f2.Territory)

	_, err = p.NextFrame(ctx)
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, model.EntityID(1), file.Frames[0].Entities[0].ID, "frames are handed out as copies")
}

func TestPlayer_Loop(t *testing.T) {
	p, err := NewPlayer(&File{Frames: []model.Frame{{Territory: 1}}}, true)
	require.NoError(t, err)

	for i := range 3 {
		f, err := p.NextFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), f.Seq)
	}

	ctx, cancel := testutil.ContextWithCancel(t)
	cancel()
	_, err = p.NextFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewPlayer(&File{}, true)
	assert.ErrorIs(t, err, ErrEmpty)
}
