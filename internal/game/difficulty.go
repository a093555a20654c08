package game

import (
	"fmt"

	"github.com/gridironlink/backend/internal/graph"
)

// Mode distinguishes solo sessions from matched pairs.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeMultiplayer Mode = "multiplayer"
)

// Difficulty selects the endpoint pool, allowed edge types, strike budget and
// minimum path floor for a session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyParams are the authoritative per-difficulty game parameters.
type DifficultyParams struct {
	AllowedTypes graph.TypeSet
	Strikes      int
	MinPathEdges int
	// Pools is the endpoint tier fallback chain, widest last. A pool with
	// fewer than 10 candidates falls through to the next entry.
	Pools []graph.Tier
}

var difficultyParams = map[Difficulty]DifficultyParams{
	DifficultyEasy: {
		AllowedTypes: graph.NewTypeSet(graph.TypeTeammate, graph.TypeCollege, graph.TypeDraftClass, graph.TypePosition),
		Strikes:      10,
		MinPathEdges: 1,
		Pools:        []graph.Tier{graph.TierStar, graph.TierRecorded, graph.TierAll},
	},
	DifficultyMedium: {
		AllowedTypes: graph.NewTypeSet(graph.TypeTeammate, graph.TypeCollege),
		Strikes:      5,
		MinPathEdges: 2,
		Pools:        []graph.Tier{graph.TierStarter, graph.TierRecorded, graph.TierAll},
	},
	DifficultyHard: {
		AllowedTypes: graph.NewTypeSet(graph.TypeTeammate),
		Strikes:      3,
		MinPathEdges: 2,
		Pools:        []graph.Tier{graph.TierRecorded, graph.TierAll},
	},
}

// Params returns the parameter tuple for d. Unknown difficulties map to easy;
// ParseDifficulty is the validating entry point.
func (d Difficulty) Params() DifficultyParams {
	if p, ok := difficultyParams[d]; ok {
		return p
	}
	return difficultyParams[DifficultyEasy]
}

// ParseDifficulty validates a client-supplied difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}
