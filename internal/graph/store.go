package graph

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/jmoiron/sqlx"
)

const (
	starPPRFloor     = 150
	starterPPRFloor  = 75
	recordedPPRFloor = 1
)

// Store is a read-only snapshot of the connection graph. It is fully populated
// before the server accepts clients and never mutated afterwards, so lookups are
// safe from any number of goroutines.
type Store struct {
	players   map[string]Player
	adjacency map[string][]Edge
	pools     map[Tier][]string
}

// NewStore builds a snapshot from already-loaded rows. Self-loops and duplicate
// (pair, type) edges are dropped. bestPPR maps player id to the best seasonal
// fantasy_points_ppr on record and drives the tier pools.
func NewStore(players []Player, connections []Connection, bestPPR map[string]float64) *Store {
	s := &Store{
		players:   make(map[string]Player, len(players)),
		adjacency: make(map[string][]Edge, len(players)),
		pools:     make(map[Tier][]string),
	}

	for _, p := range players {
		s.players[p.ID] = p
	}

	type edgeKey struct {
		from, to string
		typ      ConnectionType
	}
	seen := make(map[edgeKey]bool, len(connections)*2)

	for _, c := range connections {
		if c.Player1 == c.Player2 {
			continue
		}
		if _, ok := s.players[c.Player1]; !ok {
			continue
		}
		if _, ok := s.players[c.Player2]; !ok {
			continue
		}
		// Undirected: store both directions, each (neighbor, type) pair once
		for _, dir := range [][2]string{{c.Player1, c.Player2}, {c.Player2, c.Player1}} {
			k := edgeKey{dir[0], dir[1], c.Type}
			if seen[k] {
				continue
			}
			seen[k] = true
			s.adjacency[dir[0]] = append(s.adjacency[dir[0]], Edge{Neighbor: dir[1], Type: c.Type})
		}
	}

	// Sort adjacency lists so searches are deterministic across runs
	for id := range s.adjacency {
		edges := s.adjacency[id]
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Neighbor != edges[j].Neighbor {
				return edges[i].Neighbor < edges[j].Neighbor
			}
			return edges[i].Type < edges[j].Type
		})
	}

	for _, p := range players {
		best := bestPPR[p.ID]
		if best >= starPPRFloor {
			s.pools[TierStar] = append(s.pools[TierStar], p.ID)
		}
		if best >= starterPPRFloor && best < starPPRFloor {
			s.pools[TierStarter] = append(s.pools[TierStarter], p.ID)
		}
		if best >= recordedPPRFloor {
			s.pools[TierRecorded] = append(s.pools[TierRecorded], p.ID)
		}
		s.pools[TierAll] = append(s.pools[TierAll], p.ID)
	}
	for tier := range s.pools {
		sort.Strings(s.pools[tier])
	}

	return s
}

// LoadStore reads the full snapshot from Postgres.
func LoadStore(ctx context.Context, db *sqlx.DB) (*Store, error) {
	var playerRows []struct {
		ID       string `db:"id"`
		Name     string `db:"name"`
		Position string `db:"position"`
	}
	if err := db.SelectContext(ctx, &playerRows, `SELECT id, name, position FROM players`); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	var connRows []struct {
		Player1 string `db:"player1_id"`
		Player2 string `db:"player2_id"`
		Type    string `db:"connection_type"`
	}
	if err := db.SelectContext(ctx, &connRows, `SELECT player1_id, player2_id, connection_type FROM player_connections`); err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}

	var pprRows []struct {
		PlayerID string  `db:"player_id"`
		Best     float64 `db:"best"`
	}
	if err := db.SelectContext(ctx, &pprRows, `
		SELECT player_id, MAX(fantasy_points_ppr) AS best
		FROM player_seasonal_stats
		GROUP BY player_id
	`); err != nil {
		return nil, fmt.Errorf("load seasonal stats: %w", err)
	}

	players := make([]Player, 0, len(playerRows))
	for _, r := range playerRows {
		players = append(players, Player{ID: r.ID, Name: r.Name, Position: r.Position})
	}
	connections := make([]Connection, 0, len(connRows))
	for _, r := range connRows {
		connections = append(connections, Connection{Player1: r.Player1, Player2: r.Player2, Type: ConnectionType(r.Type)})
	}
	bestPPR := make(map[string]float64, len(pprRows))
	for _, r := range pprRows {
		bestPPR[r.PlayerID] = r.Best
	}

	store := NewStore(players, connections, bestPPR)
	log.Printf("[GRAPH] Snapshot loaded: %d players, %d connections, pools star=%d starter=%d recorded=%d",
		len(players), len(connections),
		len(store.pools[TierStar]), len(store.pools[TierStarter]), len(store.pools[TierRecorded]))
	return store, nil
}

// GetPlayer returns the player for id or ErrNotFound.
func (s *Store) GetPlayer(id string) (Player, error) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, ErrNotFound
	}
	return p, nil
}

// Neighbors returns every directly connected neighbor whose edge type is in
// allowed. Each (neighbor, type) pair is yielded once, in deterministic order.
func (s *Store) Neighbors(id string, allowed TypeSet) []Edge {
	edges := s.adjacency[id]
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if allowed.Contains(e.Type) {
			out = append(out, e)
		}
	}
	return out
}

// Connected reports whether a and b share at least one edge whose type is in
// allowed. The error return exists for SQL-backed validators; the in-memory
// snapshot never fails.
func (s *Store) Connected(a, b string, allowed TypeSet) (bool, error) {
	for _, e := range s.adjacency[a] {
		if e.Neighbor == b && allowed.Contains(e.Type) {
			return true, nil
		}
	}
	return false, nil
}

// Pool returns the endpoint candidate pool for tier.
func (s *Store) Pool(tier Tier) []string {
	return s.pools[tier]
}

// NumPlayers reports the snapshot size.
func (s *Store) NumPlayers() int {
	return len(s.players)
}
