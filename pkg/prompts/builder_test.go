package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

func promptTestState() *game.FullGameState {
	gs := game.NewGameState()
	player := gs.Player()
	player.Techniques = []game.Technique{
		{Name: "Frost Bite", MasteryLevel: 3},
		{Name: "Iron Body", MasteryLevel: 2},
	}
	gs.Entities[2] = &game.Entity{ID: 2, Name: "Mei Lin"}
	player.Relationships = []game.Relationship{
		{TargetEntity: 2, Bond: 6, Description: "Fellow outer disciple"},
	}
	return gs
}

func TestParserPrompt(t *testing.T) {
	gs := promptTestState()
	p := ParserPrompt(gs, "climb the mountain path")

	assert.Equal(t, ParserSystemPrompt, p.System)

	// Player summary fields
	assert.Contains(t, p.User, "Li Wei")
	assert.Contains(t, p.User, "Qi Condensation (level 1)")
	assert.Contains(t, p.User, "Health: 100/100, Energy: 100/100")
	assert.Contains(t, p.User, "Goal: Rise beyond mortal limits")
	assert.Contains(t, p.User, "Frost Bite (mastery 3)")
	assert.Contains(t, p.User, "Iron Body (mastery 2)")
	assert.Contains(t, p.User, "Personality: Determined")

	// Act, scene context, companions, input
	assert.Contains(t, p.User, gs.CurrentAct.Name)
	assert.Contains(t, p.User, gs.CurrentAct.Outline)
	assert.Contains(t, p.User, gs.CurrentScene.Context)
	assert.Contains(t, p.User, "Mei Lin (bond 6/10): Fellow outer disciple")
	assert.Contains(t, p.User, "climb the mountain path")

	// Schema keys the parser must emit
	for _, key := range []string{"intent", "statChanges", "actEnded", "nextSceneHint", "cultivationProgress"} {
		assert.Contains(t, p.System, key)
	}
}

func TestScenePrompt(t *testing.T) {
	gs := promptTestState()
	p := ScenePrompt(gs, "attempt the trial", "The player steps onto the trial platform.")

	assert.Equal(t, SceneSystemPrompt, p.System)
	assert.Contains(t, p.User, "attempt the trial")
	assert.Contains(t, p.User, "The player steps onto the trial platform.")
	assert.Contains(t, p.User, gs.CurrentAct.Name)

	// This role must never be asked for JSON, and must carry the three
	// markup conventions.
	assert.Contains(t, p.System, "DO NOT output JSON")
	assert.Contains(t, p.System, "text-yellow-400")
	assert.Contains(t, p.System, "text-red-500")
	assert.Contains(t, p.System, "text-blue-400")
}

func TestActPrompt(t *testing.T) {
	gs := promptTestState()
	p := ActPrompt(gs)

	assert.Equal(t, ActSystemPrompt, p.System)
	assert.Contains(t, p.User, "Previous Act")
	assert.Contains(t, p.User, gs.CurrentAct.Name)
	assert.Contains(t, p.User, gs.CurrentAct.Outline)
	assert.Contains(t, p.User, "Mei Lin")
	assert.Contains(t, p.System, `"name"`)
	assert.Contains(t, p.System, `"outline"`)
}

func TestParserPrompt_NoCompanions(t *testing.T) {
	gs := game.NewGameState()
	p := ParserPrompt(gs, "meditate")

	assert.NotContains(t, p.User, "### Companions")
	assert.Contains(t, p.User, "meditate")
}

func TestMoodLabel(t *testing.T) {
	tests := []struct {
		satisfaction int
		expected     string
	}{
		{95, "Joyful"},
		{80, "Joyful"},
		{60, "Content"},
		{50, "Restless"},
		{25, "Troubled"},
		{0, "Despairing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, moodLabel(tt.satisfaction))
	}
}

func TestPlayerSummary_NilPlayer(t *testing.T) {
	gs := &game.FullGameState{PlayerID: 42, Entities: map[int]*game.Entity{}}
	p := ParserPrompt(gs, "look")
	require.True(t, strings.Contains(p.User, "(unknown player)"))
}
