package model

// ConditionFlags is the observer's client condition bitmask.
type ConditionFlags uint32

const ConditionNone ConditionFlags = 0

const (
	ConditionInCombat ConditionFlags = 1 << iota
	ConditionBoundByDuty
	ConditionBoundByDuty56
	ConditionBoundByDuty95
	ConditionBetweenAreas
	ConditionBetweenAreas51
	ConditionWatchingCutscene
	ConditionMounted
)

// Has checks if all bits of flag are set.
func (c ConditionFlags) Has(flag ConditionFlags) bool {
	return c&flag == flag
}

// Any checks if at least one bit of flag is set.
func (c ConditionFlags) Any(flag ConditionFlags) bool {
	return c&flag != 0
}

// InCombat returns true if the observer is in combat.
func (c ConditionFlags) InCombat() bool {
	return c.Has(ConditionInCombat)
}

// BoundByDuty returns true if the observer is inside duty content,
// which is what makes a territory "bound".
func (c ConditionFlags) BoundByDuty() bool {
	return c.Any(ConditionBoundByDuty | ConditionBoundByDuty56 | ConditionBoundByDuty95)
}

// BetweenAreas returns true while a zone transition is in progress.
func (c ConditionFlags) BetweenAreas() bool {
	return c.Any(ConditionBetweenAreas | ConditionBetweenAreas51)
}

var conditionNames = map[string]ConditionFlags{
	"in_combat":         ConditionInCombat,
	"bound_by_duty":     ConditionBoundByDuty,
	"bound_by_duty_56":  ConditionBoundByDuty56,
	"bound_by_duty_95":  ConditionBoundByDuty95,
	"between_areas":     ConditionBetweenAreas,
	"between_areas_51":  ConditionBetweenAreas51,
	"watching_cutscene": ConditionWatchingCutscene,
	"mounted":           ConditionMounted,
}

// ParseConditions folds condition names into a bitmask.
// Unknown names are returned so the caller can report them.
func ParseConditions(names []string) (ConditionFlags, []string) {
	var flags ConditionFlags
	var unknown []string
	for _, n := range names {
		f, ok := conditionNames[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		flags |= f
	}
	return flags, unknown
}

// Names returns the names of all set flags in a stable order.
func (c ConditionFlags) Names() []string {
	var names []string
	for _, n := range conditionOrder {
		if c.Has(conditionNames[n]) {
			names = append(names, n)
		}
	}
	return names
}

var conditionOrder = []string{
	"in_combat",
	"bound_by_duty",
	"bound_by_duty_56",
	"bound_by_duty_95",
	"between_areas",
	"between_areas_51",
	"watching_cutscene",
	"mounted",
}
