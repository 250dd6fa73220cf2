package game

import "slices"

// Entity is a character in the world, player or NPC. Entities refer to
// each other by integer ID only; the ID-keyed map on FullGameState is the
// single owner. Direct pointers between entities would make the state
// graph cyclic and unserializable.
type Entity struct {
	ID                  int              `json:"id"`
	Name                string           `json:"name"`
	Age                 int              `json:"age"`
	MaxAge              int              `json:"maxAge"`
	Energy              int              `json:"energy"`
	MaxEnergy           int              `json:"maxEnergy"`
	Health              int              `json:"health"`
	MaxHealth           int              `json:"maxHealth"`
	Cultivation         CultivationLevel `json:"cultivation"`
	PhysicalDescription string           `json:"physicalDescription,omitempty"`
	Personality         string           `json:"personality,omitempty"`
	Goal                string           `json:"goal,omitempty"`
	Status              string           `json:"status,omitempty"`
	Satisfaction        int              `json:"satisfaction"` // 0-100
	Techniques          []Technique      `json:"techniques"`
	Items               []Item           `json:"items"`
	Relationships       []Relationship   `json:"relationships"`
	IsPlayer            bool             `json:"isPlayer"`
	Factions            []string         `json:"factions,omitempty"`
}

// CultivationLevel is the power-progression axis: a numeric level plus
// the stage name derived from it. See StageName.
type CultivationLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Technique is a learned ability. Techniques are appended to an entity's
// list and never removed.
type Technique struct {
	Name         string `json:"name"`
	MasteryLevel int    `json:"masteryLevel"`
	Description  string `json:"description,omitempty"`
	EnergyCost   int    `json:"energyCost,omitempty"`
}

// Item is carried inventory. Item usage is not consumed by the turn
// pipeline; items are tracked as data only.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

// Relationship is a non-owning link from one entity to another,
// identified by target entity ID.
type Relationship struct {
	TargetEntity int    `json:"targetEntity"`
	Bond         int    `json:"bond"` // 0-10
	Description  string `json:"description,omitempty"`
}

// Faction is a named group entities may belong to. Faction mechanics are
// not consumed by the turn pipeline.
type Faction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	// slices.Clone keeps nil nil and empty empty, so a round trip
	// through Clone never turns a seeded [] into null on the wire.
	out.Techniques = slices.Clone(e.Techniques)
	out.Items = slices.Clone(e.Items)
	out.Relationships = slices.Clone(e.Relationships)
	out.Factions = slices.Clone(e.Factions)
	return &out
}
