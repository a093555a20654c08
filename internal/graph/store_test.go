package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayers(ids ...string) []Player {
	players := make([]Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, Player{ID: id, Name: "Name " + id, Position: "WR"})
	}
	return players
}

func TestStoreDropsSelfLoopsAndDuplicates(t *testing.T) {
	store := NewStore(testPlayers("a", "b"), []Connection{
		{Player1: "a", Player2: "a", Type: TypeTeammate},
		{Player1: "a", Player2: "b", Type: TypeTeammate},
		{Player1: "b", Player2: "a", Type: TypeTeammate}, // same undirected edge
		{Player1: "a", Player2: "b", Type: TypeCollege},  // second type on same pair is fine
	}, nil)

	all := NewTypeSet(TypeTeammate, TypeCollege, TypeDraftClass, TypePosition)
	edges := store.Neighbors("a", all)
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{Neighbor: "b", Type: TypeCollege}, edges[0])
	assert.Equal(t, Edge{Neighbor: "b", Type: TypeTeammate}, edges[1])
}

func TestStoreNeighborsFilterByType(t *testing.T) {
	store := NewStore(testPlayers("a", "b", "c"), []Connection{
		{Player1: "a", Player2: "b", Type: TypeTeammate},
		{Player1: "a", Player2: "c", Type: TypeDraftClass},
	}, nil)

	edges := store.Neighbors("a", NewTypeSet(TypeTeammate))
	require.Len(t, edges, 1)
	assert.Equal(t, "b", edges[0].Neighbor)
}

func TestStoreConnected(t *testing.T) {
	store := NewStore(testPlayers("a", "b"), []Connection{
		{Player1: "a", Player2: "b", Type: TypeDraftClass},
	}, nil)

	ok, err := store.Connected("a", "b", NewTypeSet(TypeDraftClass))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Connected("a", "b", NewTypeSet(TypeTeammate))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Connected("a", "missing", NewTypeSet(TypeDraftClass))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreGetPlayer(t *testing.T) {
	store := NewStore(testPlayers("a"), nil, nil)

	p, err := store.GetPlayer("a")
	require.NoError(t, err)
	assert.Equal(t, "Name a", p.Name)

	_, err = store.GetPlayer("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreTierPools(t *testing.T) {
	store := NewStore(testPlayers("star", "starter", "depth", "unknown"), nil, map[string]float64{
		"star":    200,
		"starter": 100,
		"depth":   30,
	})

	assert.Equal(t, []string{"star"}, store.Pool(TierStar))
	assert.Equal(t, []string{"starter"}, store.Pool(TierStarter))
	// recorded includes everyone with at least one fantasy point
	assert.Equal(t, []string{"depth", "star", "starter"}, store.Pool(TierRecorded))
	assert.Len(t, store.Pool(TierAll), 4)
}
