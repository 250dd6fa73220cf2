package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

// Validates an exported save file: strict schema plus the stat and
// relationship invariants the turn pipeline maintains.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <save.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &SaveValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Save file is valid!")
}

type SaveValidator struct {
	errors []string
}

func (v *SaveValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var gs game.FullGameState
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&gs); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateState(&gs)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *SaveValidator) validateState(gs *game.FullGameState) {
	player := gs.Player()
	if player == nil {
		v.addError("no entity has isPlayer set")
	}

	playerCount := 0
	for id, entity := range gs.Entities {
		if entity == nil {
			v.addError(fmt.Sprintf("entity %d is null", id))
			continue
		}
		if entity.ID != id {
			v.addError(fmt.Sprintf("entity %d has mismatched id field %d", id, entity.ID))
		}
		if entity.IsPlayer {
			playerCount++
		}
		v.validateEntity(entity, gs)
	}
	if playerCount > 1 {
		v.addError(fmt.Sprintf("%d entities have isPlayer set, expected 1", playerCount))
	}

	if gs.CurrentAct.Name == "" {
		v.addError("current act has no name")
	}
	if gs.CurrentScene.Text == "" {
		v.addError("current scene has no text")
	}

	v.validateCalendar(gs.WorldData)
}

func (v *SaveValidator) validateEntity(e *game.Entity, gs *game.FullGameState) {
	if e.Name == "" {
		v.addError(fmt.Sprintf("entity %d has no name", e.ID))
	}
	v.validateRange(e.Name, "energy", e.Energy, 0, e.MaxEnergy)
	v.validateRange(e.Name, "health", e.Health, 0, e.MaxHealth)
	v.validateRange(e.Name, "satisfaction", e.Satisfaction, 0, 100)

	if e.Cultivation.Level < 0 {
		v.addError(fmt.Sprintf("entity %s has negative cultivation level %d", e.Name, e.Cultivation.Level))
	}
	if expected := game.StageName(e.Cultivation.Level); e.Cultivation.Name != "" && e.Cultivation.Name != expected {
		v.addError(fmt.Sprintf("entity %s has stage name %q, level %d implies %q", e.Name, e.Cultivation.Name, e.Cultivation.Level, expected))
	}

	for _, rel := range e.Relationships {
		if rel.Bond < 0 || rel.Bond > 10 {
			v.addError(fmt.Sprintf("entity %s has bond %d with entity %d, expected 0-10", e.Name, rel.Bond, rel.TargetEntity))
		}
		if _, ok := gs.Entities[rel.TargetEntity]; !ok {
			v.addError(fmt.Sprintf("entity %s has a relationship with unknown entity %d", e.Name, rel.TargetEntity))
		}
	}
}

func (v *SaveValidator) validateCalendar(wd game.WorldData) {
	if wd.Day < 1 || wd.Day > 30 {
		v.addError(fmt.Sprintf("day %d out of range 1-30", wd.Day))
	}
	if wd.Month < 1 || wd.Month > 12 {
		v.addError(fmt.Sprintf("month %d out of range 1-12", wd.Month))
	}
	if wd.Year < 1 {
		v.addError(fmt.Sprintf("year %d should be positive", wd.Year))
	}
}

func (v *SaveValidator) validateRange(name, field string, value, min, max int) {
	if value < min || value > max {
		v.addError(fmt.Sprintf("entity %s has %s %d, expected %d-%d", name, field, value, min, max))
	}
}

func (v *SaveValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
