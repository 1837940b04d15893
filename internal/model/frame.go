package model

// Frame is everything the binding layer observed during one client tick.
// Entities are value copies; nothing in a Frame outlives the pass it feeds.
type Frame struct {
	Seq        uint64         `yaml:"seq"`
	Territory  TerritoryID    `yaml:"territory"`
	ObserverID EntityID       `yaml:"observer_id"`
	Conditions ConditionFlags `yaml:"-"`
	Condition  []string       `yaml:"conditions,omitempty"`
	PartyIDs   []EntityID     `yaml:"party,omitempty"`
	Entities   []Entity       `yaml:"entities"`
}

// Normalize resolves textual fields (condition names, company tags) into
// their binary form. Unknown condition names are returned.
func (f *Frame) Normalize() []string {
	flags, unknown := ParseConditions(f.Condition)
	f.Conditions |= flags
	for i := range f.Entities {
		f.Entities[i].Normalize()
	}
	return unknown
}
