package model

import "fmt"

// EntityID is the game-assigned object id. Ids are opaque and may be recycled
// between sessions, so they are never used as a durable identity.
type EntityID uint32

// InvalidEntityID is the placeholder id the client reports for objects that
// have no server-side identity yet.
const InvalidEntityID EntityID = 0xE0000000

// TerritoryID identifies a zone (territory type).
type TerritoryID uint16

// WorldID identifies a game world (server).
type WorldID uint16

// CompanyTagSize is the size of the free company tag buffer, NUL padded.
const CompanyTagSize = 7

// CompanyTag holds the raw free company tag bytes as read from the client.
type CompanyTag [CompanyTagSize]byte

// NewCompanyTag converts a tag string into its fixed-size byte form.
// Longer tags are truncated; the last byte is always NUL.
func NewCompanyTag(tag string) CompanyTag {
	var t CompanyTag
	copy(t[:CompanyTagSize-1], tag)
	return t
}

// Empty returns true if the entity has no company tag.
func (t CompanyTag) Empty() bool {
	return t[0] == 0
}

// String returns the tag without NUL padding.
func (t CompanyTag) String() string {
	for i, b := range t {
		if b == 0 {
			return string(t[:i])
		}
	}
	return string(t[:])
}

// EntityKind is the object kind reported by the client.
type EntityKind uint8

const (
	KindUnknown EntityKind = iota
	KindPlayer
	KindPet      // battle pets and summons
	KindMinion   // companions
	KindChocobo  // chocobo companions
	KindBattleNpc
	KindEventNpc
)

// String returns kind name for logs.
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindPet:
		return "pet"
	case KindMinion:
		return "minion"
	case KindChocobo:
		return "chocobo"
	case KindBattleNpc:
		return "battle_npc"
	case KindEventNpc:
		return "event_npc"
	default:
		return "unknown"
	}
}

// Race is the playable race of a player entity.
type Race uint8

const (
	RaceUnknown Race = iota
	RaceHyur
	RaceElezen
	RaceLalafell
	RaceMiqote
	RaceRoegadyn
	RaceAuRa
	RaceHrothgar
	RaceViera
)

// Entity is a value snapshot of one live object for the current frame.
// It never points into client memory; the binding layer copies every field.
type Entity struct {
	ID             EntityID   `yaml:"id"`
	Name           string     `yaml:"name,omitempty"`
	Kind           EntityKind `yaml:"kind"`
	Race           Race       `yaml:"race,omitempty"`
	OwnerID        EntityID   `yaml:"owner_id,omitempty"`
	TargetID       EntityID   `yaml:"target_id,omitempty"`
	HomeWorld      WorldID    `yaml:"home_world,omitempty"`
	CurrentWorld   WorldID    `yaml:"current_world,omitempty"`
	CompanyTag     CompanyTag `yaml:"-"`
	CompanyTagText string     `yaml:"company_tag,omitempty"`
	Friend         bool       `yaml:"friend,omitempty"`
	Dead           bool       `yaml:"dead,omitempty"`
}

// IsDead returns true if the entity is dead.
func (e *Entity) IsDead() bool {
	return e.Dead
}

// HasIdentity returns true if the entity carries a real object id.
func (e *Entity) HasIdentity() bool {
	return e.ID != 0 && e.ID != InvalidEntityID
}

// OnHomeWorld returns true if the entity is currently on its home world.
func (e *Entity) OnHomeWorld() bool {
	return e.CurrentWorld == e.HomeWorld
}

// Normalize fills CompanyTag from CompanyTagText when only the text form was
// provided (capture files) and vice versa.
func (e *Entity) Normalize() {
	if e.CompanyTag.Empty() && e.CompanyTagText != "" {
		e.CompanyTag = NewCompanyTag(e.CompanyTagText)
	}
	if e.CompanyTagText == "" && !e.CompanyTag.Empty() {
		e.CompanyTagText = e.CompanyTag.String()
	}
}

// SameCompany reports whether e belongs to observer's free company.
// Only valid while the observer is on its home world and has a tag at all.
func (e *Entity) SameCompany(observer *Entity) bool {
	if observer == nil || observer.CompanyTag.Empty() || !observer.OnHomeWorld() {
		return false
	}
	return e.CompanyTag == observer.CompanyTag
}

var kindNames = map[string]EntityKind{
	"unknown":    KindUnknown,
	"player":     KindPlayer,
	"pet":        KindPet,
	"minion":     KindMinion,
	"chocobo":    KindChocobo,
	"battle_npc": KindBattleNpc,
	"event_npc":  KindEventNpc,
}

// MarshalText implements encoding.TextMarshaler.
func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EntityKind) UnmarshalText(text []byte) error {
	v, ok := kindNames[string(text)]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", text)
	}
	*k = v
	return nil
}

var raceNames = [...]string{
	RaceUnknown:  "unknown",
	RaceHyur:     "hyur",
	RaceElezen:   "elezen",
	RaceLalafell: "lalafell",
	RaceMiqote:   "miqote",
	RaceRoegadyn: "roegadyn",
	RaceAuRa:     "aura",
	RaceHrothgar: "hrothgar",
	RaceViera:    "viera",
}

// String returns race name.
func (r Race) String() string {
	if int(r) < len(raceNames) {
		return raceNames[r]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Race) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Race) UnmarshalText(text []byte) error {
	for i, name := range raceNames {
		if name == string(text) {
			*r = Race(i)
			return nil
		}
	}
	return fmt.Errorf("unknown race %q", text)
}
