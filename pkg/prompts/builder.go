package prompts

import (
	"fmt"
	"strings"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

// Prompt is one system+user instruction pair for a single LLM call.
type Prompt struct {
	System string
	User   string
}

// ParserPrompt builds the pair for interpreting a raw player input
// against the current state.
func ParserPrompt(gs *game.FullGameState, playerInput string) Prompt {
	var sb strings.Builder
	sb.WriteString("### Player\n")
	sb.WriteString(playerSummary(gs))
	sb.WriteString("\n### Current Act\n")
	sb.WriteString(actSummary(gs.CurrentAct))
	sb.WriteString("\n### Current Scene Context\n")
	sb.WriteString(gs.CurrentScene.Context)
	sb.WriteString("\n")
	if companions := companionSummary(gs); companions != "" {
		sb.WriteString("\n### Companions\n")
		sb.WriteString(companions)
	}
	sb.WriteString("\n### Player Input\n")
	sb.WriteString(playerInput)

	return Prompt{System: ParserSystemPrompt, User: sb.String()}
}

// ScenePrompt builds the pair for generating the next narrative scene
// from the parsed intent and scene hint.
func ScenePrompt(gs *game.FullGameState, intent, nextSceneHint string) Prompt {
	var sb strings.Builder
	sb.WriteString("### Player\n")
	sb.WriteString(playerSummary(gs))
	sb.WriteString("\n### Current Act\n")
	sb.WriteString(actSummary(gs.CurrentAct))
	sb.WriteString("\n### What Just Happened\n")
	sb.WriteString("The player's action: " + intent + "\n")
	sb.WriteString("Scene direction: " + nextSceneHint + "\n")
	sb.WriteString("\nWrite the next scene.")

	return Prompt{System: SceneSystemPrompt, User: sb.String()}
}

// ActPrompt builds the pair for generating a replacement act once the
// previous act's central conflict has resolved.
func ActPrompt(gs *game.FullGameState) Prompt {
	var sb strings.Builder
	sb.WriteString("### Player\n")
	sb.WriteString(playerSummary(gs))
	if companions := companionSummary(gs); companions != "" {
		sb.WriteString("\n### Companions\n")
		sb.WriteString(companions)
	}
	sb.WriteString("\n### Previous Act (just concluded)\n")
	sb.WriteString(actSummary(gs.CurrentAct))
	sb.WriteString("\nDesign the next act.")

	return Prompt{System: ActSystemPrompt, User: sb.String()}
}

// playerSummary renders the compact player block shared by all three
// roles. Kept textual rather than JSON so small models stay grounded.
func playerSummary(gs *game.FullGameState) string {
	p := gs.Player()
	if p == nil {
		return "(unknown player)\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "Cultivation: %s (level %d)\n", p.Cultivation.Name, p.Cultivation.Level)
	fmt.Fprintf(&sb, "Health: %d/%d, Energy: %d/%d\n", p.Health, p.MaxHealth, p.Energy, p.MaxEnergy)
	fmt.Fprintf(&sb, "Mood: %s\n", moodLabel(p.Satisfaction))
	if p.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", p.Goal)
	}
	if len(p.Techniques) > 0 {
		names := make([]string, len(p.Techniques))
		for i, t := range p.Techniques {
			names[i] = fmt.Sprintf("%s (mastery %d)", t.Name, t.MasteryLevel)
		}
		fmt.Fprintf(&sb, "Techniques: %s\n", strings.Join(names, ", "))
	}
	if p.Personality != "" {
		fmt.Fprintf(&sb, "Personality: %s\n", p.Personality)
	}
	return sb.String()
}

// companionSummary lists each relationship target with bond and
// description. Empty when the player has no relationships.
func companionSummary(gs *game.FullGameState) string {
	p := gs.Player()
	if p == nil || len(p.Relationships) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, rel := range p.Relationships {
		name := fmt.Sprintf("entity %d", rel.TargetEntity)
		if target := gs.Companion(rel.TargetEntity); target != nil {
			name = target.Name
		}
		fmt.Fprintf(&sb, "- %s (bond %d/10): %s\n", name, rel.Bond, rel.Description)
	}
	return sb.String()
}

func actSummary(act game.Act) string {
	return fmt.Sprintf("%s: %s\n", act.Name, act.Outline)
}

// moodLabel maps the 0-100 satisfaction score onto a word the model can
// narrate with.
func moodLabel(satisfaction int) string {
	switch {
	case satisfaction >= 80:
		return "Joyful"
	case satisfaction >= 60:
		return "Content"
	case satisfaction >= 40:
		return "Restless"
	case satisfaction >= 20:
		return "Troubled"
	default:
		return "Despairing"
	}
}
