package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testState() *FullGameState {
	gs := NewGameState()
	player := gs.Player()
	gs.Entities[2] = &Entity{
		ID:          2,
		Name:        "Mei Lin",
		Energy:      80,
		MaxEnergy:   80,
		Health:      90,
		MaxHealth:   90,
		Cultivation: CultivationLevel{Name: StageName(12), Level: 12},
	}
	player.Relationships = []Relationship{
		{TargetEntity: 2, Bond: 5, Description: "Fellow outer disciple"},
	}
	return gs
}

func TestSanitizeStatChanges(t *testing.T) {
	tests := []struct {
		name     string
		in       StatChanges
		expected StatChanges
	}{
		{
			name: "extreme values clamped",
			in: StatChanges{
				Energy:              intPtr(-500),
				Health:              intPtr(999),
				Satisfaction:        intPtr(77),
				CultivationProgress: intPtr(100),
			},
			expected: StatChanges{
				Energy:              intPtr(-20),
				Health:              intPtr(20),
				Satisfaction:        intPtr(20),
				CultivationProgress: intPtr(5),
			},
		},
		{
			name: "negative cultivation progress floored at zero",
			in:   StatChanges{CultivationProgress: intPtr(-3)},
			expected: StatChanges{
				CultivationProgress: intPtr(0),
			},
		},
		{
			name: "in-range values untouched",
			in: StatChanges{
				Energy:       intPtr(-2),
				Satisfaction: intPtr(7),
			},
			expected: StatChanges{
				Energy:       intPtr(-2),
				Satisfaction: intPtr(7),
			},
		},
		{
			name:     "absent fields stay absent",
			in:       StatChanges{},
			expected: StatChanges{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeStatChanges(tt.in)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeStatChanges_DoesNotAliasInput(t *testing.T) {
	in := StatChanges{Energy: intPtr(-500)}
	out := SanitizeStatChanges(in)
	require.NotNil(t, out.Energy)
	assert.Equal(t, -500, *in.Energy, "input must not be modified")
	assert.Equal(t, -20, *out.Energy)
}

func TestApplyStatChanges_ClampsToEntityBounds(t *testing.T) {
	gs := testState()
	gs.Player().Energy = 10
	gs.Player().Health = 95
	gs.Player().Satisfaction = 95

	next := ApplyStatChanges(gs, StatChanges{
		Energy:       intPtr(-20),
		Health:       intPtr(20),
		Satisfaction: intPtr(20),
	})

	assert.Equal(t, 0, next.Player().Energy)
	assert.Equal(t, 100, next.Player().Health)
	assert.Equal(t, 100, next.Player().Satisfaction)

	// Original snapshot retains pre-mutation values.
	assert.Equal(t, 10, gs.Player().Energy)
	assert.Equal(t, 95, gs.Player().Health)
	assert.Equal(t, 95, gs.Player().Satisfaction)
}

func TestApplyStatChanges_EmptyDeltaIsIdentity(t *testing.T) {
	gs := testState()
	next := ApplyStatChanges(gs, StatChanges{})
	assert.Equal(t, gs, next)
	assert.NotSame(t, gs, next)
}

func TestApplyStatChanges_PreservesEmptySliceEncoding(t *testing.T) {
	gs := NewGameState()
	next := ApplyStatChanges(gs, StatChanges{})

	// Seeded empty lists must survive the copy as [] on the wire, not
	// null: save consumers index these arrays without nil checks.
	require.NotNil(t, next.Player().Techniques)
	require.NotNil(t, next.Player().Items)
	require.NotNil(t, next.Player().Relationships)
	require.NotNil(t, next.NarrativeHistory)

	data, err := json.Marshal(next)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"techniques":[]`)
	assert.Contains(t, string(data), `"items":[]`)
	assert.Contains(t, string(data), `"relationships":[]`)
	assert.Contains(t, string(data), `"narrativeHistory":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestApplyStatChanges_CultivationBreakthrough(t *testing.T) {
	gs := testState()
	gs.Player().Cultivation = CultivationLevel{Name: StageName(9), Level: 9}
	require.Equal(t, "Qi Condensation", gs.Player().Cultivation.Name)

	next := ApplyStatChanges(gs, StatChanges{CultivationProgress: intPtr(2)})

	assert.Equal(t, 11, next.Player().Cultivation.Level)
	assert.Equal(t, "Foundation Establishment", next.Player().Cultivation.Name)
}

func TestApplyStatChanges_StageClampedToFinalEntry(t *testing.T) {
	gs := testState()
	gs.Player().Cultivation = CultivationLevel{Name: StageName(68), Level: 68}

	next := ApplyStatChanges(gs, StatChanges{CultivationProgress: intPtr(5)})

	assert.Equal(t, 73, next.Player().Cultivation.Level)
	assert.Equal(t, "Immortal Ascension", next.Player().Cultivation.Name)
}

func TestApplyStatChanges_NewTechniqueAppended(t *testing.T) {
	gs := testState()
	tech := Technique{Name: "Frost Bite", MasteryLevel: 1, EnergyCost: 10}

	next := ApplyStatChanges(gs, StatChanges{NewTechnique: &tech})

	require.Len(t, next.Player().Techniques, 1)
	assert.Equal(t, "Frost Bite", next.Player().Techniques[0].Name)
	assert.Empty(t, gs.Player().Techniques, "input snapshot must not gain the technique")
}

func TestApplyStatChanges_RelationshipBond(t *testing.T) {
	gs := testState()

	next := ApplyStatChanges(gs, StatChanges{
		RelationshipChanges: []RelationshipChange{
			{TargetID: 2, BondDelta: 3},
		},
	})

	assert.Equal(t, 8, next.Player().Relationships[0].Bond)
	assert.Equal(t, 5, gs.Player().Relationships[0].Bond)
}

func TestApplyStatChanges_BondClampedToRange(t *testing.T) {
	gs := testState()

	next := ApplyStatChanges(gs, StatChanges{
		RelationshipChanges: []RelationshipChange{{TargetID: 2, BondDelta: 9}},
	})
	assert.Equal(t, 10, next.Player().Relationships[0].Bond)

	next = ApplyStatChanges(gs, StatChanges{
		RelationshipChanges: []RelationshipChange{{TargetID: 2, BondDelta: -9}},
	})
	assert.Equal(t, 0, next.Player().Relationships[0].Bond)
}

func TestApplyStatChanges_UnknownRelationshipTargetIgnored(t *testing.T) {
	gs := testState()

	next := ApplyStatChanges(gs, StatChanges{
		Energy: intPtr(-2),
		RelationshipChanges: []RelationshipChange{
			{TargetID: 999, BondDelta: 5},
		},
	})

	// Unknown target ignored, rest of the batch still applied.
	assert.Equal(t, gs.Player().Relationships, next.Player().Relationships)
	assert.Equal(t, 98, next.Player().Energy)
}

func TestStageName(t *testing.T) {
	tests := []struct {
		level    int
		expected string
	}{
		{0, "Qi Condensation"},
		{9, "Qi Condensation"},
		{10, "Foundation Establishment"},
		{25, "Core Formation"},
		{39, "Nascent Soul"},
		{45, "Spirit Severing"},
		{59, "Dao Seeking"},
		{60, "Immortal Ascension"},
		{999, "Immortal Ascension"},
		{-1, "Qi Condensation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StageName(tt.level), "level %d", tt.level)
	}
}
