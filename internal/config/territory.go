package config

import "github.com/SF-XIV/VisibilityPluginPlus/internal/model"

// TerritoryConfig is the rule bundle for one territory.
// All fields are plain values, so a struct copy never aliases another config.
type TerritoryConfig struct {
	// TerritoryType is filled from the map key and not persisted with the bundle.
	TerritoryType model.TerritoryID `yaml:"-" json:"-"`

	HidePet      bool `yaml:"hide_pet" json:"hide_pet"`
	HidePlayer   bool `yaml:"hide_player" json:"hide_player"`
	HideHrothgar bool `yaml:"hide_hrothgar" json:"hide_hrothgar"`
	HideMinion   bool `yaml:"hide_minion" json:"hide_minion"`
	HideChocobo  bool `yaml:"hide_chocobo" json:"hide_chocobo"`

	HidePetInCombat      bool `yaml:"hide_pet_in_combat" json:"hide_pet_in_combat"`
	HidePlayerInCombat   bool `yaml:"hide_player_in_combat" json:"hide_player_in_combat"`
	HideHrothgarInCombat bool `yaml:"hide_hrothgar_in_combat" json:"hide_hrothgar_in_combat"`
	HideMinionInCombat   bool `yaml:"hide_minion_in_combat" json:"hide_minion_in_combat"`
	HideChocoboInCombat  bool `yaml:"hide_chocobo_in_combat" json:"hide_chocobo_in_combat"`

	ShowCompanyPet      bool `yaml:"show_company_pet" json:"show_company_pet"`
	ShowCompanyPlayer   bool `yaml:"show_company_player" json:"show_company_player"`
	ShowCompanyHrothgar bool `yaml:"show_company_hrothgar" json:"show_company_hrothgar"`
	ShowCompanyMinion   bool `yaml:"show_company_minion" json:"show_company_minion"`
	ShowCompanyChocobo  bool `yaml:"show_company_chocobo" json:"show_company_chocobo"`

	ShowPartyPet      bool `yaml:"show_party_pet" json:"show_party_pet"`
	ShowPartyPlayer   bool `yaml:"show_party_player" json:"show_party_player"`
	ShowPartyHrothgar bool `yaml:"show_party_hrothgar" json:"show_party_hrothgar"`
	ShowPartyMinion   bool `yaml:"show_party_minion" json:"show_party_minion"`
	ShowPartyChocobo  bool `yaml:"show_party_chocobo" json:"show_party_chocobo"`

	ShowFriendPet      bool `yaml:"show_friend_pet" json:"show_friend_pet"`
	ShowFriendPlayer   bool `yaml:"show_friend_player" json:"show_friend_player"`
	ShowFriendHrothgar bool `yaml:"show_friend_hrothgar" json:"show_friend_hrothgar"`
	ShowFriendMinion   bool `yaml:"show_friend_minion" json:"show_friend_minion"`
	ShowFriendChocobo  bool `yaml:"show_friend_chocobo" json:"show_friend_chocobo"`

	ShowDeadPet      bool `yaml:"show_dead_pet" json:"show_dead_pet"`
	ShowDeadPlayer   bool `yaml:"show_dead_player" json:"show_dead_player"`
	ShowDeadHrothgar bool `yaml:"show_dead_hrothgar" json:"show_dead_hrothgar"`
	ShowDeadMinion   bool `yaml:"show_dead_minion" json:"show_dead_minion"`
	ShowDeadChocobo  bool `yaml:"show_dead_chocobo" json:"show_dead_chocobo"`
}

// Clone returns an independent copy of the config.
func (c TerritoryConfig) Clone() TerritoryConfig {
	return c
}

// ClassToggles is the per-class view of a TerritoryConfig.
type ClassToggles struct {
	Hide         bool
	HideInCombat bool
	ShowCompany  bool
	ShowParty    bool
	ShowFriend   bool
	ShowDead     bool
}

// Toggles returns the toggle set for unit type u.
// Unknown unit types get the zero value, which never hides anything.
func (c *TerritoryConfig) Toggles(u model.UnitType) ClassToggles {
	switch u {
	case model.UnitPlayers:
		return ClassToggles{c.HidePlayer, c.HidePlayerInCombat, c.ShowCompanyPlayer, c.ShowPartyPlayer, c.ShowFriendPlayer, c.ShowDeadPlayer}
	case model.UnitHrothgars:
		return ClassToggles{c.HideHrothgar, c.HideHrothgarInCombat, c.ShowCompanyHrothgar, c.ShowPartyHrothgar, c.ShowFriendHrothgar, c.ShowDeadHrothgar}
	case model.UnitPets:
		return ClassToggles{c.HidePet, c.HidePetInCombat, c.ShowCompanyPet, c.ShowPartyPet, c.ShowFriendPet, c.ShowDeadPet}
	case model.UnitMinions:
		return ClassToggles{c.HideMinion, c.HideMinionInCombat, c.ShowCompanyMinion, c.ShowPartyMinion, c.ShowFriendMinion, c.ShowDeadMinion}
	case model.UnitChocobos:
		return ClassToggles{c.HideChocobo, c.HideChocoboInCombat, c.ShowCompanyChocobo, c.ShowPartyChocobo, c.ShowFriendChocobo, c.ShowDeadChocobo}
	default:
		return ClassToggles{}
	}
}

// SetToggles writes t back into the fields of unit type u.
func (c *TerritoryConfig) SetToggles(u model.UnitType, t ClassToggles) {
	switch u {
	case model.UnitPlayers:
		c.HidePlayer, c.HidePlayerInCombat, c.ShowCompanyPlayer, c.ShowPartyPlayer, c.ShowFriendPlayer, c.ShowDeadPlayer =
			t.Hide, t.HideInCombat, t.ShowCompany, t.ShowParty, t.ShowFriend, t.ShowDead
	case model.UnitHrothgars:
		c.HideHrothgar, c.HideHrothgarInCombat, c.ShowCompanyHrothgar, c.ShowPartyHrothgar, c.ShowFriendHrothgar, c.ShowDeadHrothgar =
			t.Hide, t.HideInCombat, t.ShowCompany, t.ShowParty, t.ShowFriend, t.ShowDead
	case model.UnitPets:
		c.HidePet, c.HidePetInCombat, c.ShowCompanyPet, c.ShowPartyPet, c.ShowFriendPet, c.ShowDeadPet =
			t.Hide, t.HideInCombat, t.ShowCompany, t.ShowParty, t.ShowFriend, t.ShowDead
	case model.UnitMinions:
		c.HideMinion, c.HideMinionInCombat, c.ShowCompanyMinion, c.ShowPartyMinion, c.ShowFriendMinion, c.ShowDeadMinion =
			t.Hide, t.HideInCombat, t.ShowCompany, t.ShowParty, t.ShowFriend, t.ShowDead
	case model.UnitChocobos:
		c.HideChocobo, c.HideChocoboInCombat, c.ShowCompanyChocobo, c.ShowPartyChocobo, c.ShowFriendChocobo, c.ShowDeadChocobo =
			t.Hide, t.HideInCombat, t.ShowCompany, t.ShowParty, t.ShowFriend, t.ShowDead
	}
}
