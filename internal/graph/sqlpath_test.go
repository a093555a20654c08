package graph

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// TestSQLPathfinderMatchesBFS cross-checks the recursive SQL search against the
// in-memory BFS on the same fixture graph. Requires a scratch Postgres with the
// schema applied; skipped otherwise.
func TestSQLPathfinderMatchesBFS(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `TRUNCATE player_connections, player_seasonal_stats, players CASCADE`)
	require.NoError(t, err)

	store := fixtureStore()
	for id := range store.players {
		_, err = db.ExecContext(ctx, `INSERT INTO players (id, name, position) VALUES ($1, $2, 'WR')`, id, "Name "+id)
		require.NoError(t, err)
	}
	seed := []Connection{
		{Player1: "a", Player2: "b", Type: TypeTeammate},
		{Player1: "b", Player2: "c", Type: TypeTeammate},
		{Player1: "a", Player2: "d", Type: TypeTeammate},
		{Player1: "d", Player2: "c", Type: TypeTeammate},
		{Player1: "a", Player2: "c", Type: TypeCollege},
		{Player1: "e", Player2: "f", Type: TypeTeammate},
		{Player1: "f", Player2: "g", Type: TypeTeammate},
		{Player1: "g", Player2: "h", Type: TypeTeammate},
		{Player1: "h", Player2: "i", Type: TypeTeammate},
		{Player1: "i", Player2: "j", Type: TypeTeammate},
		{Player1: "j", Player2: "k", Type: TypeTeammate},
	}
	for _, c := range seed {
		_, err = db.ExecContext(ctx,
			`INSERT INTO player_connections (player1_id, player2_id, connection_type) VALUES ($1, $2, $3)`,
			c.Player1, c.Player2, string(c.Type))
		require.NoError(t, err)
	}

	bfs := NewPathfinder(store, 5)
	sqlPF := NewSQLPathfinder(db, 5)

	cases := []struct {
		name    string
		start   string
		end     string
		allowed TypeSet
	}{
		{"two routes teammate", "a", "c", NewTypeSet(TypeTeammate)},
		{"direct college", "a", "c", NewTypeSet(TypeTeammate, TypeCollege)},
		{"at depth bound", "e", "j", NewTypeSet(TypeTeammate)},
		{"beyond depth bound", "e", "k", NewTypeSet(TypeTeammate)},
		{"disconnected", "a", "e", NewTypeSet(TypeTeammate)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bfsPath := bfs.ShortestPath(tc.start, tc.end, tc.allowed)
			sqlPath, err := sqlPF.ShortestPath(ctx, tc.start, tc.end, tc.allowed)
			require.NoError(t, err)
			require.Equal(t, len(bfsPath), len(sqlPath), "path lengths must agree")

			bfsPaths := bfs.ShortestPaths(tc.start, tc.end, tc.allowed, 10)
			sqlPaths, err := sqlPF.ShortestPaths(ctx, tc.start, tc.end, tc.allowed, 10)
			require.NoError(t, err)
			require.ElementsMatch(t, bfsPaths, sqlPaths, "both searches must enumerate the same shortest paths")
		})
	}
}
