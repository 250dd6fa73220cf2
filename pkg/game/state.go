package game

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Act is a coarse story arc. Exactly one act is current at any time and
// it is replaced wholesale when it ends.
type Act struct {
	Name    string `json:"name"`
	Outline string `json:"outline"`
}

// Scene is the currently rendered narrative beat within an act. Text may
// embed semantic markup spans; the engine treats them as opaque.
type Scene struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

// NarrativeEntry is an immutable historical record of one turn. Entries
// are appended monotonically and never mutated.
type NarrativeEntry struct {
	SceneTitle  string    `json:"sceneTitle"`
	Text        string    `json:"text"`
	PlayerInput string    `json:"playerInput"`
	Timestamp   time.Time `json:"timestamp"`
}

// WorldData tracks the in-world calendar.
type WorldData struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// AdvanceDay moves the calendar forward one day, rolling months past 30
// days and years past 12 months.
func (w *WorldData) AdvanceDay() {
	w.Day++
	if w.Day > 30 {
		w.Day = 1
		w.Month++
		if w.Month > 12 {
			w.Month = 1
			w.Year++
		}
	}
}

// FullGameState is the unit of persistence and the unit of mutation per
// turn. It is mutated only through the turn pipeline, which operates on a
// deep copy and returns a fresh snapshot.
type FullGameState struct {
	GameID           *uuid.UUID         `json:"gameId,omitempty"` // assigned by storage, passed through unchanged
	PlayerID         int                `json:"playerId"`
	Entities         map[int]*Entity    `json:"entities"`
	Factions         map[string]Faction `json:"factions,omitempty"`
	WorldDescription string             `json:"worldDescription"`
	CurrentAct       Act                `json:"currentAct"`
	CurrentScene     Scene              `json:"currentScene"`
	WorldData        WorldData          `json:"worldData"`
	NarrativeHistory []NarrativeEntry   `json:"narrativeHistory"`
	UpdatedAt        time.Time          `json:"updatedAt,omitempty"`
}

// Player returns the player entity, or nil if the state is malformed.
func (gs *FullGameState) Player() *Entity {
	if gs == nil {
		return nil
	}
	return gs.Entities[gs.PlayerID]
}

// Companion resolves a relationship target to its entity, or nil when the
// ID is unknown.
func (gs *FullGameState) Companion(id int) *Entity {
	if gs == nil {
		return nil
	}
	return gs.Entities[id]
}

// DeepCopy returns a fully independent copy of the state. The narrative
// history backing array is copied as well, so appends on the copy never
// alias the original.
func (gs *FullGameState) DeepCopy() *FullGameState {
	if gs == nil {
		return nil
	}
	out := *gs
	if gs.GameID != nil {
		id := *gs.GameID
		out.GameID = &id
	}
	out.Entities = make(map[int]*Entity, len(gs.Entities))
	for id, e := range gs.Entities {
		out.Entities[id] = e.Clone()
	}
	if gs.Factions != nil {
		out.Factions = make(map[string]Faction, len(gs.Factions))
		for name, f := range gs.Factions {
			out.Factions[name] = f
		}
	}
	out.NarrativeHistory = slices.Clone(gs.NarrativeHistory)
	return &out
}

// NewGameState seeds a fresh game: one player entity, the opening act and
// scene, and the world calendar at its start date.
func NewGameState() *FullGameState {
	return &FullGameState{
		PlayerID: 1,
		Entities: map[int]*Entity{
			1: {
				ID:                  1,
				Name:                "Li Wei",
				Age:                 16,
				MaxAge:              150,
				Energy:              100,
				MaxEnergy:           100,
				Health:              100,
				MaxHealth:           100,
				Cultivation:         CultivationLevel{Name: StageName(1), Level: 1},
				PhysicalDescription: "A young man with sharp eyes and calloused hands from years of labor.",
				Personality:         "Determined and curious, with a hidden fierce streak.",
				Goal:                "Rise beyond mortal limits and uncover the truth behind my parents' disappearance.",
				Status:              "Eager",
				Satisfaction:        50,
				Techniques:          []Technique{},
				Items:               []Item{},
				Relationships:       []Relationship{},
				IsPlayer:            true,
			},
		},
		WorldDescription: "A world where cultivation determines one's fate. Sects war for resources, and the path to immortality is paved with tribulation.",
		CurrentAct: Act{
			Name:    "The Awakening",
			Outline: "Li Wei discovers a fragment of a cultivation manual in a collapsed mine. He begins his journey by finding a sect willing to accept a commoner. He must pass an entrance trial while hiding his unusual affinity.",
		},
		CurrentScene: Scene{
			Title:   "The Awakening",
			Context: "You stand at the foot of Azure Peak, where the Crimson Lotus Sect accepts new disciples once a year.",
			Text: `Dawn breaks over <span class="text-yellow-400">Azure Peak</span>, painting the mountain in shades of amber and gold. The path upward is carved from living stone, each step worn smooth by generations of hopeful cultivators.

You clutch the torn fragment of the manual you found in the mine collapse three days ago. The characters shimmer faintly when you focus, as if responding to something within you.

Ahead, a long line of young men and women stretches toward the sect gates. Some wear fine silks. Others, like you, wear the rough cloth of commoners. A disciple in crimson robes watches from above, her gaze sweeping the crowd like a hawk surveying prey.

<span class="text-blue-400">[The Crimson Lotus Sect entrance trials begin at noon. You have arrived early. The atmosphere is tense with ambition and fear.]</span>`,
		},
		WorldData:        WorldData{Year: 4024, Month: 3, Day: 1},
		NarrativeHistory: []NarrativeEntry{},
	}
}
