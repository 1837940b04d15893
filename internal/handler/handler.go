package handler

import (
	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/framework"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/render"
)

// Containers is the relationship registry the handler keeps up to date.
type Containers interface {
	AddToContainer(u model.UnitType, c model.ContainerType, id model.EntityID)
	SetMembership(u model.UnitType, c model.ContainerType, id model.EntityID, member bool)
	IsInContainer(u model.UnitType, c model.ContainerType, id model.EntityID) bool
}

// Lists resolves void list and whitelist membership.
type Lists interface {
	CheckAndProcessVoidList(e *model.Entity) bool
	CheckAndProcessWhitelist(e *model.Entity) bool
}

// Visibility receives the verdicts.
type Visibility interface {
	ShowGameObject(e *model.Entity) bool
	MarkObjectToShow(id model.EntityID)
	HideGameObject(e *model.Entity)
}

// Env is the explicit per-frame context a handler evaluates against.
// It replaces global configuration and service lookups.
type Env struct {
	Settings  *config.Settings
	Framework framework.Facade
	Entities  framework.Lookup
}

// Handler runs the visibility cascade for one unit type.
type Handler struct {
	desc       Descriptor
	containers Containers
	lists      Lists
	visibility Visibility
}

// New creates a handler for desc.
func New(desc Descriptor, containers Containers, lists Lists, visibility Visibility) *Handler {
	return &Handler{
		desc:       desc,
		containers: containers,
		lists:      lists,
		visibility: visibility,
	}
}

// Descriptor returns the class this handler serves.
func (h *Handler) Descriptor() Descriptor {
	return h.desc
}

// Process decides whether e is shown this frame and records the verdict.
// The order of the gates is a priority cascade:
// sentinel/forced > containers > bound territory > void list > whitelist > rules.
func (h *Handler) Process(env *Env, e, observer *model.Entity, bound bool) render.Verdict {
	if !e.HasIdentity() || h.visibility.ShowGameObject(e) {
		return render.VerdictNone
	}

	h.updateContainers(env, e, observer)

	if bound && !env.Settings.TerritoryWhitelisted(env.Settings.Territory) {
		return render.VerdictNone
	}

	// Void list is checked first: an entity on both lists stays hidden.
	if h.lists.CheckAndProcessVoidList(e) {
		h.visibility.HideGameObject(e)
		return render.VerdictHide
	}

	if h.lists.CheckAndProcessWhitelist(e) {
		h.visibility.MarkObjectToShow(e.ID)
		return render.VerdictShow
	}

	if h.ShouldShow(env, e) {
		h.visibility.MarkObjectToShow(e.ID)
		return render.VerdictShow
	}

	h.visibility.HideGameObject(e)
	return render.VerdictHide
}

// updateContainers overwrites this entity's relation memberships with the
// current frame's truth. Owned classes take relations from their owner.
func (h *Handler) updateContainers(env *Env, e, observer *model.Entity) {
	u := h.desc.Unit
	h.containers.AddToContainer(u, model.ContainerAll, e.ID)

	subject := h.subject(env, e)

	var friend, party, company bool
	if subject != nil {
		friend = subject.Friend
		party = env.Framework.IsObjectIDInParty(subject.ID)
		company = subject.SameCompany(observer)
		// The observer's own companions belong to its party.
		if h.desc.Owned && observer != nil && subject.ID == observer.ID {
			party = true
		}
	}

	h.containers.SetMembership(u, model.ContainerFriend, e.ID, friend)
	h.containers.SetMembership(u, model.ContainerParty, e.ID, party)
	h.containers.SetMembership(u, model.ContainerCompany, e.ID, company)
}

// subject returns the entity whose relations count for e, or nil when an
// owner cannot be resolved.
func (h *Handler) subject(env *Env, e *model.Entity) *model.Entity {
	if !h.desc.Owned {
		return e
	}
	if env.Entities == nil || e.OwnerID == 0 || e.OwnerID == model.InvalidEntityID {
		return nil
	}
	owner, ok := env.Entities.Lookup(e.OwnerID)
	if !ok {
		return nil
	}
	return owner
}

// ShouldShow evaluates the show rules for e. Container membership must have
// been refreshed for this frame before the call.
func (h *Handler) ShouldShow(env *Env, e *model.Entity) bool {
	u := h.desc.Unit
	t := env.Settings.Current.Toggles(u)

	if !env.Settings.Enabled || !t.Hide {
		return true
	}

	if t.ShowDead && e.IsDead() {
		return true
	}

	if t.ShowFriend && h.containers.IsInContainer(u, model.ContainerFriend, e.ID) {
		return true
	}

	if t.ShowCompany && h.containers.IsInContainer(u, model.ContainerCompany, e.ID) {
		return true
	}

	if t.ShowParty && h.containers.IsInContainer(u, model.ContainerParty, e.ID) {
		return true
	}

	if env.Framework.CheckTargetOfTarget(e) {
		return true
	}

	// HideInCombat keeps the class visible only while the observer is out
	// of combat.
	return t.HideInCombat && !env.Framework.InCombat()
}
