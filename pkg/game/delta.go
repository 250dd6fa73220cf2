package game

// StatChanges is the untrusted set of stat deltas proposed by the parser
// model for a single turn. Pointer fields distinguish "absent" from an
// explicit zero: absent means no change.
type StatChanges struct {
	Energy              *int                 `json:"energy,omitempty"`
	Health              *int                 `json:"health,omitempty"`
	Satisfaction        *int                 `json:"satisfaction,omitempty"`
	CultivationProgress *int                 `json:"cultivationProgress,omitempty"`
	NewTechnique        *Technique           `json:"newTechnique,omitempty"`
	RelationshipChanges []RelationshipChange `json:"relationshipChanges,omitempty"`
}

// RelationshipChange adjusts the bond of an existing relationship,
// matched by target entity ID.
type RelationshipChange struct {
	TargetID  int `json:"targetId"`
	BondDelta int `json:"bondDelta"`
}

const (
	maxStatDelta           = 20
	maxCultivationProgress = 5
)

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampPtr(p *int, min, max int) *int {
	if p == nil {
		return nil
	}
	v := clamp(*p, min, max)
	return &v
}

// SanitizeStatChanges clamps each present delta into its safe range and
// leaves absent fields absent. Energy, health and satisfaction deltas are
// limited to ±20 per turn; cultivation progress to [0, 5], since progress
// cannot be lost. The input is not modified.
func SanitizeStatChanges(ch StatChanges) StatChanges {
	out := ch
	out.Energy = clampPtr(ch.Energy, -maxStatDelta, maxStatDelta)
	out.Health = clampPtr(ch.Health, -maxStatDelta, maxStatDelta)
	out.Satisfaction = clampPtr(ch.Satisfaction, -maxStatDelta, maxStatDelta)
	out.CultivationProgress = clampPtr(ch.CultivationProgress, 0, maxCultivationProgress)
	return out
}

// ApplyStatChanges applies a sanitized delta set to the player entity and
// returns a new snapshot. The input state is never mutated, so callers
// retain a valid pre-mutation reference throughout.
//
// Bond deltas referencing a target the player has no relationship with
// are silently ignored; the rest of the batch still applies.
func ApplyStatChanges(gs *FullGameState, ch StatChanges) *FullGameState {
	out := gs.DeepCopy()
	player := out.Player()
	if player == nil {
		return out
	}

	if ch.Energy != nil {
		player.Energy = clamp(player.Energy+*ch.Energy, 0, player.MaxEnergy)
	}
	if ch.Health != nil {
		player.Health = clamp(player.Health+*ch.Health, 0, player.MaxHealth)
	}
	if ch.Satisfaction != nil {
		player.Satisfaction = clamp(player.Satisfaction+*ch.Satisfaction, 0, 100)
	}
	if ch.CultivationProgress != nil && *ch.CultivationProgress > 0 {
		player.Cultivation.Level += *ch.CultivationProgress
		player.Cultivation.Name = StageName(player.Cultivation.Level)
	}
	if ch.NewTechnique != nil {
		player.Techniques = append(player.Techniques, *ch.NewTechnique)
	}
	for _, rc := range ch.RelationshipChanges {
		for i := range player.Relationships {
			if player.Relationships[i].TargetEntity == rc.TargetID {
				player.Relationships[i].Bond = clamp(player.Relationships[i].Bond+rc.BondDelta, 0, 10)
				break
			}
		}
	}

	return out
}
