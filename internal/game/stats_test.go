package game

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a scratch Postgres with the schema applied; skipped otherwise.
func TestStatsWriterPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `TRUNCATE user_stats`)
	require.NoError(t, err)

	type row struct {
		Wins      int `db:"multiplayer_wins"`
		Losses    int `db:"multiplayer_losses"`
		HighScore int `db:"single_player_high_score"`
	}
	readRow := func(userID string) row {
		var r row
		require.NoError(t, db.GetContext(ctx, &r,
			`SELECT multiplayer_wins, multiplayer_losses, single_player_high_score FROM user_stats WHERE user_id = $1`, userID))
		return r
	}

	w := NewStatsWriter(db, nil)

	t.Run("multiplayer win and loss", func(t *testing.T) {
		err := w.RecordSessionOutcome(ctx, Outcome{
			SessionID:    "sess_mp1",
			Mode:         ModeMultiplayer,
			UserIDs:      []string{"alice", "bob"},
			WinnerUserID: "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, row{Wins: 1, Losses: 0}, readRow("alice"))
		assert.Equal(t, row{Wins: 0, Losses: 1}, readRow("bob"))
	})

	t.Run("replay is a no-op", func(t *testing.T) {
		err := w.RecordSessionOutcome(ctx, Outcome{
			SessionID:    "sess_mp1",
			Mode:         ModeMultiplayer,
			UserIDs:      []string{"alice", "bob"},
			WinnerUserID: "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, row{Wins: 1, Losses: 0}, readRow("alice"))
	})

	t.Run("draw records nothing", func(t *testing.T) {
		err := w.RecordSessionOutcome(ctx, Outcome{
			SessionID: "sess_mp2",
			Mode:      ModeMultiplayer,
			UserIDs:   []string{"alice", "bob"},
		})
		require.NoError(t, err)

		assert.Equal(t, row{Wins: 1, Losses: 0}, readRow("alice"))
		assert.Equal(t, row{Wins: 0, Losses: 1}, readRow("bob"))
	})

	t.Run("high score keeps the maximum", func(t *testing.T) {
		require.NoError(t, w.RecordSessionOutcome(ctx, Outcome{
			SessionID: "sess_sp1", Mode: ModeSingle, UserIDs: []string{"carol"},
			WinnerUserID: "carol", Score: 9200,
		}))
		require.NoError(t, w.RecordSessionOutcome(ctx, Outcome{
			SessionID: "sess_sp2", Mode: ModeSingle, UserIDs: []string{"carol"},
			WinnerUserID: "carol", Score: 8100,
		}))

		assert.Equal(t, 9200, readRow("carol").HighScore)
	})
}

func TestStatsWriterClaimInProcess(t *testing.T) {
	w := NewStatsWriter(nil, nil)
	ctx := context.Background()

	assert.True(t, w.claim(ctx, "sess_1"))
	assert.False(t, w.claim(ctx, "sess_1"))
	assert.True(t, w.claim(ctx, "sess_2"))
}
