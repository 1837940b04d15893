package world

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/capture"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/render"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/testutil"
)

func TestVisibilityManager_ReplaySyntheticCrowd(t *testing.T) {
	file, err := capture.Synthesize(capture.Scene{Seed: 42, Frames: 4, Players: 300, Territory: 132, World: 1, Combat: true})
	require.NoError(t, err)

	v := hideAll()
	for _, u := range model.UnitTypes {
		tg := v.Default.Toggles(u)
		tg.ShowParty = true
		tg.ShowFriend = true
		v.Default.SetToggles(u, tg)
	}

	env := newTestEnv(t, v, Options{Workers: 4, ParallelThreshold: 100})
	player, err := capture.NewPlayer(file, false)
	require.NoError(t, err)

	ctx := context.Background()
	for {
		f, err := player.NextFrame(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		stats, err := env.vm.RunPass(f)
		require.NoError(t, err)

		assert.Zero(t, stats.Failed)
		assert.Zero(t, stats.Skipped)
		assert.Zero(t, stats.Untouched)
		assert.Equal(t, stats.Entities-1, stats.Shown+stats.Hidden, "frame %d", f.Seq)

		party := make(map[model.EntityID]bool, len(f.PartyIDs))
		for _, id := range f.PartyIDs {
			party[id] = true
		}
		for _, e := range f.Entities[1:] {
			if e.Kind == model.KindPlayer && (party[e.ID] || e.Friend) {
				assert.Equal(t, render.VerdictShow, env.vis.Verdict(e.ID), "entity %d", e.ID)
				assert.False(t, env.vis.Hidden(e.ID))
			}
		}
	}
}

func TestVisibilityManager_CompanionsFollowOwner(t *testing.T) {
	v := hideAll()
	v.Default.ShowCompanyPet = true
	v.Default.ShowCompanyHrothgar = true
	env := newTestEnv(t, v, Options{})

	observer := testutil.Observer(1)
	mate := testutil.Hrothgar(10, "Company Mate")
	mate.CompanyTag = observer.CompanyTag
	stranger := testutil.Player(20, "Stranger")

	f := testutil.Frame(1, testutil.Territory, observer,
		mate,
		stranger,
		testutil.Owned(11, model.KindPet, mate.ID),
		testutil.Owned(21, model.KindPet, stranger.ID),
		testutil.Owned(31, model.KindPet, 999), // owner not in table
	)

	stats, err := env.vm.RunPass(f)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Shown)
	assert.Equal(t, 3, stats.Hidden)

	assert.Equal(t, render.VerdictShow, env.vis.Verdict(10))
	assert.Equal(t, render.VerdictShow, env.vis.Verdict(11))
	assert.Equal(t, render.VerdictHide, env.vis.Verdict(20))
	assert.Equal(t, render.VerdictHide, env.vis.Verdict(21))
	assert.Equal(t, render.VerdictHide, env.vis.Verdict(31))
	assert.True(t, env.containers.IsInContainer(model.UnitPets, model.ContainerCompany, 11))
	assert.False(t, env.containers.IsInContainer(model.UnitPets, model.ContainerCompany, 31))
}
