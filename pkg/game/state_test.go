package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldData_AdvanceDay(t *testing.T) {
	tests := []struct {
		name     string
		in       WorldData
		expected WorldData
	}{
		{
			name:     "ordinary day",
			in:       WorldData{Year: 4024, Month: 3, Day: 1},
			expected: WorldData{Year: 4024, Month: 3, Day: 2},
		},
		{
			name:     "month rollover",
			in:       WorldData{Year: 4024, Month: 3, Day: 30},
			expected: WorldData{Year: 4024, Month: 4, Day: 1},
		},
		{
			name:     "year rollover",
			in:       WorldData{Year: 4024, Month: 12, Day: 30},
			expected: WorldData{Year: 4025, Month: 1, Day: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.in
			w.AdvanceDay()
			assert.Equal(t, tt.expected, w)
		})
	}
}

func TestNewGameState(t *testing.T) {
	gs := NewGameState()

	player := gs.Player()
	require.NotNil(t, player)
	assert.True(t, player.IsPlayer)
	assert.Equal(t, "Li Wei", player.Name)
	assert.Equal(t, "Qi Condensation", player.Cultivation.Name)

	assert.GreaterOrEqual(t, player.Energy, 0)
	assert.LessOrEqual(t, player.Energy, player.MaxEnergy)
	assert.GreaterOrEqual(t, player.Health, 0)
	assert.LessOrEqual(t, player.Health, player.MaxHealth)
	assert.GreaterOrEqual(t, player.Satisfaction, 0)
	assert.LessOrEqual(t, player.Satisfaction, 100)

	assert.NotEmpty(t, gs.CurrentAct.Name)
	assert.NotEmpty(t, gs.CurrentAct.Outline)
	assert.Equal(t, gs.CurrentAct.Name, gs.CurrentScene.Title)
	assert.Empty(t, gs.NarrativeHistory)
	assert.Nil(t, gs.GameID)
}

func TestFullGameState_DeepCopy(t *testing.T) {
	gs := testState()
	gs.NarrativeHistory = append(gs.NarrativeHistory, NarrativeEntry{
		SceneTitle:  "The Awakening",
		PlayerInput: "look around",
	})

	cp := gs.DeepCopy()
	require.Equal(t, gs, cp)

	// Mutating the copy must not reach the original.
	cp.Player().Energy = 1
	cp.Player().Techniques = append(cp.Player().Techniques, Technique{Name: "Iron Body"})
	cp.Player().Relationships[0].Bond = 0
	cp.NarrativeHistory = append(cp.NarrativeHistory, NarrativeEntry{PlayerInput: "meditate"})
	cp.WorldData.Day = 29

	assert.Equal(t, 100, gs.Player().Energy)
	assert.Empty(t, gs.Player().Techniques)
	assert.Equal(t, 5, gs.Player().Relationships[0].Bond)
	assert.Len(t, gs.NarrativeHistory, 1)
	assert.Equal(t, 1, gs.WorldData.Day)
}

func TestFullGameState_JSONRoundTrip(t *testing.T) {
	gs := testState()

	data, err := json.Marshal(gs)
	require.NoError(t, err)

	var back FullGameState
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, gs.PlayerID, back.PlayerID)
	require.Contains(t, back.Entities, 2)
	assert.Equal(t, "Mei Lin", back.Entities[2].Name)
	assert.Equal(t, gs.WorldData, back.WorldData)
}
