package capture

import (
	"fmt"
	"math/rand/v2"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Scene describes a synthetic crowd used for load testing the frame pass.
type Scene struct {
	Seed      uint64
	Frames    int
	Players   int
	Territory model.TerritoryID
	World     model.WorldID
	Bound     bool
	Combat    bool // observer in combat every other frame
}

const observerID model.EntityID = 0x10000000

// Synthesize generates frames for scene. Each player has a random race,
// a chance to own a pet, minion and chocobo, and a few relations to the
// observer. The same seed always yields the same capture.
func Synthesize(scene Scene) (*File, error) {
	if scene.Frames < 1 {
		return nil, ErrEmpty
	}
	if scene.Players < 0 {
		return nil, fmt.Errorf("players must not be negative, got %d", scene.Players)
	}

	rng := rand.New(rand.NewPCG(scene.Seed, scene.Seed^0x9e3779b97f4a7c15))

	observer := model.Entity{
		ID:           observerID,
		Name:         "Local Player",
		Kind:         model.KindPlayer,
		Race:         model.RaceHyur,
		HomeWorld:    scene.World,
		CurrentWorld: scene.World,
		CompanyTag:   model.NewCompanyTag("SFX"),
	}

	crowd := make([]model.Entity, 0, scene.Players*4)
	var party []model.EntityID
	ids := newObjectIDs()
	for i := range scene.Players {
		p := model.Entity{
			ID:           ids.player(),
			Name:         fmt.Sprintf("Player %04d", i),
			Kind:         model.KindPlayer,
			Race:         model.Race(1 + rng.IntN(int(model.RaceViera))),
			HomeWorld:    scene.World,
			CurrentWorld: scene.World,
			Friend:       rng.IntN(20) == 0,
			Dead:         rng.IntN(50) == 0,
		}
		if rng.IntN(10) == 0 {
			p.CompanyTag = observer.CompanyTag
		}
		if len(party) < 7 && rng.IntN(30) == 0 {
			party = append(party, p.ID)
		}
		crowd = append(crowd, p)

		for _, kind := range [...]model.EntityKind{model.KindPet, model.KindMinion, model.KindChocobo} {
			if rng.IntN(3) != 0 {
				continue
			}
			crowd = append(crowd, model.Entity{
				ID:      ids.owned(),
				Name:    fmt.Sprintf("%s of %s", kind, p.Name),
				Kind:    kind,
				OwnerID: p.ID,
			})
		}
	}
	if len(crowd) > 0 {
		observer.TargetID = crowd[rng.IntN(len(crowd))].ID
	}

	file := &File{Version: Version, Frames: make([]model.Frame, scene.Frames)}
	for i := range file.Frames {
		var cond model.ConditionFlags
		if scene.Bound {
			cond |= model.ConditionBoundByDuty
		}
		if scene.Combat && i%2 == 1 {
			cond |= model.ConditionInCombat
		}

		entities := make([]model.Entity, 0, len(crowd)+1)
		entities = append(entities, observer)
		entities = append(entities, crowd...)

		file.Frames[i] = model.Frame{
			Seq:        uint64(i + 1),
			Territory:  scene.Territory,
			ObserverID: observer.ID,
			Conditions: cond,
			PartyIDs:   party,
			Entities:   entities,
		}
	}
	return file, nil
}
