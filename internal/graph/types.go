package graph

import "errors"

// ErrNotFound is returned when a player id is not in the loaded snapshot.
var ErrNotFound = errors.New("graph: player not found")

// ConnectionType labels an edge between two players.
type ConnectionType string

const (
	TypeTeammate   ConnectionType = "teammate"
	TypeCollege    ConnectionType = "college"
	TypeDraftClass ConnectionType = "draft_class"
	TypePosition   ConnectionType = "position"
)

// TypeSet is the set of edge types a search or validation is allowed to traverse.
type TypeSet map[ConnectionType]bool

// NewTypeSet builds a TypeSet from its members.
func NewTypeSet(types ...ConnectionType) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

// Contains reports whether t is in the set.
func (s TypeSet) Contains(t ConnectionType) bool {
	return s[t]
}

// Player is the immutable in-memory view of a players row.
type Player struct {
	ID       string
	Name     string
	Position string
}

// Edge is one typed adjacency entry. The same neighbor may appear once per type.
type Edge struct {
	Neighbor string
	Type     ConnectionType
}

// Connection is an undirected typed edge, used to seed the store.
type Connection struct {
	Player1 string
	Player2 string
	Type    ConnectionType
}

// Tier is an endpoint candidate pool derived from fantasy production.
type Tier string

const (
	TierStar     Tier = "star"     // PPR >= 150 in some season
	TierStarter  Tier = "starter"  // 75 <= PPR < 150
	TierRecorded Tier = "recorded" // PPR >= 1
	TierAll      Tier = "all"      // every loaded player
)
