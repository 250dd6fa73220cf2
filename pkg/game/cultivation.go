package game

// stageNames is the fixed cultivation stage table. The stage index is
// level/10, clamped to the final stage once the level grows past the table.
var stageNames = []string{
	"Qi Condensation",
	"Foundation Establishment",
	"Core Formation",
	"Nascent Soul",
	"Spirit Severing",
	"Dao Seeking",
	"Immortal Ascension",
}

// StageName returns the cultivation stage name for a numeric level.
func StageName(level int) string {
	if level < 0 {
		level = 0
	}
	idx := level / 10
	if idx >= len(stageNames) {
		idx = len(stageNames) - 1
	}
	return stageNames[idx]
}
